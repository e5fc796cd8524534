// Package index is the in-process symbol index backing the sandbox's
// `search.symbols` operation (`search.references` ranks grep hits with a
// hybrid.Index instead and does not use this package): byID/byName/
// byFile/byKind maps over parsed CodeElements, adapted from the teacher's
// SymbolIndex (AST-parsed `*ast.Symbol` generalized to C4's CodeElement).
package index

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ctxengine/ctxengine/internal/astx"
)

// DefaultMaxSymbols bounds an index's capacity absent an explicit option.
const DefaultMaxSymbols = 1_000_000

// searchCheckInterval is how often Search polls ctx for cancellation.
const searchCheckInterval = 1000

// Symbol is one indexed occurrence of a CodeElement in a file, carrying
// the stable ID the index keys symbols by.
type Symbol struct {
	ID       string
	FilePath string
	Element  astx.CodeElement
}

// Validate checks the invariants Add/AddBatch enforce before admitting a
// symbol: a non-empty ID/FilePath/Name and a well-formed line range.
func (s *Symbol) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("symbol has empty ID")
	}
	if s.FilePath == "" {
		return fmt.Errorf("symbol %q has empty file path", s.ID)
	}
	if s.Element.Name == "" {
		return fmt.Errorf("symbol %q has empty name", s.ID)
	}
	if s.Element.StartLine < 1 || s.Element.EndLine < s.Element.StartLine {
		return fmt.Errorf("symbol %q has invalid line range [%d,%d]", s.ID, s.Element.StartLine, s.Element.EndLine)
	}
	return nil
}

// NewSymbol builds a Symbol with its canonical ID: "file:line:kind:name",
// unique for any one parse of a non-degenerate file per spec §3's
// no-two-same-kind-same-name-same-line invariant.
func NewSymbol(filePath string, el astx.CodeElement) *Symbol {
	id := fmt.Sprintf("%s:%d:%s:%s", filePath, el.StartLine, el.Kind, el.Name)
	return &Symbol{ID: id, FilePath: filePath, Element: el}
}

// Options configures a SymbolIndex.
type Options struct {
	MaxSymbols int
}

// DefaultOptions returns DefaultMaxSymbols.
func DefaultOptions() Options {
	return Options{MaxSymbols: DefaultMaxSymbols}
}

// Option mutates Options during construction.
type Option func(*Options)

// WithMaxSymbols overrides the index's capacity.
func WithMaxSymbols(max int) Option {
	return func(o *Options) { o.MaxSymbols = max }
}

// Stats summarizes an index's contents.
type Stats struct {
	TotalSymbols int
	ByKind       map[astx.ElementKind]int
	FileCount    int
	MaxSymbols   int
}

var (
	// ErrInvalidSymbol means Validate failed.
	ErrInvalidSymbol = fmt.Errorf("invalid symbol")
	// ErrDuplicateSymbol means a symbol with the same ID already exists.
	ErrDuplicateSymbol = fmt.Errorf("duplicate symbol")
	// ErrMaxSymbolsExceeded means the index is at capacity.
	ErrMaxSymbolsExceeded = fmt.Errorf("max symbols exceeded")
)

// BatchError collects every validation/duplicate failure from AddBatch.
type BatchError struct {
	Errors []error
}

func (e *BatchError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d symbol error(s): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// SymbolIndex provides O(1) lookups of parsed code symbols by ID, name,
// file, or kind, plus a fuzzy-ranked Search.
//
// Thread Safety: SymbolIndex is safe for concurrent use.
//
// Ownership: the index stores symbol pointers but does not own them;
// symbols must not be mutated after Add/AddBatch.
type SymbolIndex struct {
	mu sync.RWMutex

	byID   map[string]*Symbol
	byName map[string][]*Symbol
	byFile map[string][]*Symbol
	byKind map[astx.ElementKind][]*Symbol

	totalCount int
	kindCounts map[astx.ElementKind]int

	options Options
}

// New builds an empty SymbolIndex.
func New(opts ...Option) *SymbolIndex {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &SymbolIndex{
		byID:       make(map[string]*Symbol),
		byName:     make(map[string][]*Symbol),
		byFile:     make(map[string][]*Symbol),
		byKind:     make(map[astx.ElementKind][]*Symbol),
		kindCounts: make(map[astx.ElementKind]int),
		options:    options,
	}
}

// Add inserts one symbol, rejecting a failed validation, a duplicate ID,
// or an index already at capacity.
func (idx *SymbolIndex) Add(symbol *Symbol) error {
	if symbol == nil {
		return fmt.Errorf("%w: symbol is nil", ErrInvalidSymbol)
	}
	if err := symbol.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSymbol, err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.totalCount >= idx.options.MaxSymbols {
		return ErrMaxSymbolsExceeded
	}
	if _, exists := idx.byID[symbol.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSymbol, symbol.ID)
	}
	idx.addLocked(symbol)
	return nil
}

// AddBatch validates and inserts symbols atomically: any failure aborts
// the whole batch with no partial insert.
func (idx *SymbolIndex) AddBatch(symbols []*Symbol) error {
	if len(symbols) == 0 {
		return nil
	}

	var errs []error
	seen := make(map[string]int)
	for i, sym := range symbols {
		if sym == nil {
			errs = append(errs, fmt.Errorf("symbol[%d]: %w: nil", i, ErrInvalidSymbol))
			continue
		}
		if err := sym.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("symbol[%d]: %w: %v", i, ErrInvalidSymbol, err))
			continue
		}
		if first, exists := seen[sym.ID]; exists {
			errs = append(errs, fmt.Errorf("symbol[%d]: duplicate of symbol[%d]: %s", i, first, sym.ID))
		} else {
			seen[sym.ID] = i
		}
	}
	if len(errs) > 0 {
		return &BatchError{Errors: errs}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.totalCount+len(symbols) > idx.options.MaxSymbols {
		return ErrMaxSymbolsExceeded
	}
	for i, sym := range symbols {
		if _, exists := idx.byID[sym.ID]; exists {
			errs = append(errs, fmt.Errorf("symbol[%d]: %w: %s", i, ErrDuplicateSymbol, sym.ID))
		}
	}
	if len(errs) > 0 {
		return &BatchError{Errors: errs}
	}
	for _, sym := range symbols {
		idx.addLocked(sym)
	}
	return nil
}

func (idx *SymbolIndex) addLocked(sym *Symbol) {
	idx.byID[sym.ID] = sym
	idx.byName[sym.Element.Name] = append(idx.byName[sym.Element.Name], sym)
	idx.byFile[sym.FilePath] = append(idx.byFile[sym.FilePath], sym)
	idx.byKind[sym.Element.Kind] = append(idx.byKind[sym.Element.Kind], sym)
	idx.totalCount++
	idx.kindCounts[sym.Element.Kind]++
}

// GetByID performs an O(1) primary-key lookup.
func (idx *SymbolIndex) GetByID(id string) (*Symbol, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	sym, ok := idx.byID[id]
	return sym, ok
}

// GetByName returns every symbol sharing name, a defensive copy.
func (idx *SymbolIndex) GetByName(name string) []*Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return copySlice(idx.byName[name])
}

// GetByFile returns every symbol indexed under filePath, a defensive copy.
func (idx *SymbolIndex) GetByFile(filePath string) []*Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return copySlice(idx.byFile[filePath])
}

// GetByKind returns every symbol of kind, a defensive copy.
func (idx *SymbolIndex) GetByKind(kind astx.ElementKind) []*Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return copySlice(idx.byKind[kind])
}

func copySlice(src []*Symbol) []*Symbol {
	if len(src) == 0 {
		return nil
	}
	out := make([]*Symbol, len(src))
	copy(out, src)
	return out
}

// Search ranks symbols by name against query: exact, then prefix, then
// substring, then a small Levenshtein-distance fuzzy tier. limit<=0 means
// unlimited. ctx is polled periodically so a caller can cancel a search
// over a very large index.
func (idx *SymbolIndex) Search(ctx context.Context, query string, limit int) ([]*Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, nil
	}
	q := strings.ToLower(query)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	type scored struct {
		sym   *Symbol
		score int
	}
	var results []scored
	count := 0
	for _, sym := range idx.byID {
		count++
		if count%searchCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		name := strings.ToLower(sym.Element.Name)
		score := -1
		switch {
		case name == q:
			score = 0
		case strings.HasPrefix(name, q):
			score = 1
		case strings.Contains(name, q):
			score = 2
		case levenshteinDistance(name, q) < 3:
			score = 3
		}
		if score >= 0 {
			results = append(results, scored{sym: sym, score: score})
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score < results[j].score
		}
		return results[i].sym.Element.Name < results[j].sym.Element.Name
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	out := make([]*Symbol, len(results))
	for i, r := range results {
		out[i] = r.sym
	}
	return out, nil
}

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// RemoveByFile drops every symbol indexed under filePath, returning the
// count removed. Call before re-adding a file's freshly parsed symbols.
func (idx *SymbolIndex) RemoveByFile(filePath string) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	symbols := idx.byFile[filePath]
	if len(symbols) == 0 {
		return 0
	}
	for _, sym := range symbols {
		delete(idx.byID, sym.ID)
		idx.byName[sym.Element.Name] = removeFromSlice(idx.byName[sym.Element.Name], sym)
		if len(idx.byName[sym.Element.Name]) == 0 {
			delete(idx.byName, sym.Element.Name)
		}
		idx.byKind[sym.Element.Kind] = removeFromSlice(idx.byKind[sym.Element.Kind], sym)
		if len(idx.byKind[sym.Element.Kind]) == 0 {
			delete(idx.byKind, sym.Element.Kind)
		}
		idx.totalCount--
		idx.kindCounts[sym.Element.Kind]--
		if idx.kindCounts[sym.Element.Kind] == 0 {
			delete(idx.kindCounts, sym.Element.Kind)
		}
	}
	delete(idx.byFile, filePath)
	return len(symbols)
}

func removeFromSlice(slice []*Symbol, sym *Symbol) []*Symbol {
	for i, s := range slice {
		if s == sym {
			slice[i] = slice[len(slice)-1]
			return slice[:len(slice)-1]
		}
	}
	return slice
}

// Clear empties the index.
func (idx *SymbolIndex) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.byID = make(map[string]*Symbol)
	idx.byName = make(map[string][]*Symbol)
	idx.byFile = make(map[string][]*Symbol)
	idx.byKind = make(map[astx.ElementKind][]*Symbol)
	idx.kindCounts = make(map[astx.ElementKind]int)
	idx.totalCount = 0
}

// Stats reports counts using the maintained O(1) counters.
func (idx *SymbolIndex) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	byKind := make(map[astx.ElementKind]int, len(idx.kindCounts))
	for k, v := range idx.kindCounts {
		byKind[k] = v
	}
	return Stats{
		TotalSymbols: idx.totalCount,
		ByKind:       byKind,
		FileCount:    len(idx.byFile),
		MaxSymbols:   idx.options.MaxSymbols,
	}
}
