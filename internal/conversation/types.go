// Package conversation implements the conversation memory compressor
// (spec component C9): rolling-summary, key-extraction, and hybrid
// strategies over a message transcript, plus a single process-wide memory
// slot holding the most recent compression.
package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of message roles.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Strategy selects a compression approach.
type Strategy string

const (
	StrategyRollingSummary Strategy = "rolling-summary"
	StrategyKeyExtraction  Strategy = "key-extraction"
	StrategyHybrid         Strategy = "hybrid"
)

// Options configures Compress.
type Options struct {
	Strategy       Strategy
	MaxTokens      uint32
	PreserveSystem bool
	PreserveLastN  int
}

// DefaultOptions matches spec §4.9 defaults.
func DefaultOptions() Options {
	return Options{Strategy: StrategyHybrid, PreserveSystem: true, PreserveLastN: 2}
}

func (o Options) normalized() Options {
	if o.Strategy == "" {
		o.Strategy = StrategyHybrid
	}
	if o.PreserveLastN < 0 {
		o.PreserveLastN = 0
	}
	return o
}

// Result is Compress's output. Decisions and CodeReferences are
// populated regardless of strategy; KeyPoints is the rendered bullet
// list only the key-extraction and hybrid strategies produce.
type Result struct {
	CompressedMessages []Message `json:"compressed_messages"`
	OriginalTokens     uint32    `json:"original_tokens"`
	CompressedTokens   uint32    `json:"compressed_tokens"`
	Savings            int       `json:"savings"`
	Summary            string    `json:"summary,omitempty"`
	KeyPoints          []string  `json:"key_points,omitempty"`
	Decisions          []string  `json:"decisions,omitempty"`
	CodeReferences     []string  `json:"code_references,omitempty"`
}

// ConversationMemory is a persisted compression outcome: the single slot
// the process holds at any time, per spec §4.9 ("the resulting
// ConversationMemory replaces the single process slot").
type ConversationMemory struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Result    Result    `json:"result"`
}

// Store holds the single process-wide memory slot.
//
// Thread Safety: Store is safe for concurrent use; writes are
// serialized, reads see the latest committed slot.
type Store struct {
	mu   sync.RWMutex
	slot *ConversationMemory
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the process slot with a new ConversationMemory built from
// result, returning the new slot.
func (s *Store) Set(result Result) ConversationMemory {
	mem := ConversationMemory{ID: uuid.NewString(), CreatedAt: time.Now(), Result: result}
	s.mu.Lock()
	s.slot = &mem
	s.mu.Unlock()
	return mem
}

// Get returns the current slot and whether one has been set.
func (s *Store) Get() (ConversationMemory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.slot == nil {
		return ConversationMemory{}, false
	}
	return *s.slot, true
}

// Clear empties the slot.
func (s *Store) Clear() {
	s.mu.Lock()
	s.slot = nil
	s.mu.Unlock()
}
