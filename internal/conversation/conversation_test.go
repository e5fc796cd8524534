package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxengine/ctxengine/internal/tokens"
)

func sampleMessages() []Message {
	return []Message{
		{Role: RoleSystem, Content: "You are a helpful coding assistant."},
		{Role: RoleUser, Content: "I need you to add retry logic to the client. Can you do that?"},
		{Role: RoleAssistant, Content: "I added exponential backoff to `client.Do`. We will also cache results."},
		{Role: RoleUser, Content: "Good, but requests must not exceed 3 retries. What about rate limiting?"},
		{Role: RoleAssistant, Content: "Rate limiting is handled in `limiter.go:42`."},
		{Role: RoleUser, Content: "Thanks, that looks fine."},
	}
}

func TestCompress_PreservesSystemMessage(t *testing.T) {
	result := Compress(sampleMessages(), DefaultOptions())
	require.NotEmpty(t, result.CompressedMessages)
	assert.Equal(t, RoleSystem, result.CompressedMessages[0].Role)
	assert.Contains(t, result.CompressedMessages[0].Content, "helpful coding assistant")
}

func TestCompress_PreservesLastN(t *testing.T) {
	msgs := sampleMessages()
	opts := DefaultOptions()
	opts.PreserveLastN = 2
	result := Compress(msgs, opts)
	last := result.CompressedMessages[len(result.CompressedMessages)-1]
	assert.Equal(t, msgs[len(msgs)-1].Content, last.Content)
}

func TestCompress_LengthNeverExceedsOriginal(t *testing.T) {
	msgs := sampleMessages()
	opts := DefaultOptions()
	result := Compress(msgs, opts)
	assert.LessOrEqual(t, len(result.CompressedMessages), len(msgs))
}

func TestCompress_KeyExtractionFindsDecisionsConstraintsAndCode(t *testing.T) {
	opts := Options{Strategy: StrategyKeyExtraction, PreserveSystem: true, PreserveLastN: 0}
	result := Compress(sampleMessages(), opts)
	require.NotEmpty(t, result.KeyPoints)

	var hasDecision, hasConstraint, hasCode bool
	for _, kp := range result.KeyPoints {
		if strings.Contains(kp, "decision:") {
			hasDecision = true
		}
		if strings.Contains(kp, "constraint:") {
			hasConstraint = true
		}
		if strings.Contains(kp, "code:") {
			hasCode = true
		}
	}
	assert.True(t, hasDecision)
	assert.True(t, hasConstraint)
	assert.True(t, hasCode)
}

func TestCompress_RollingSummaryMentionsGoalsAndActions(t *testing.T) {
	opts := Options{Strategy: StrategyRollingSummary, PreserveSystem: true, PreserveLastN: 0}
	result := Compress(sampleMessages(), opts)
	assert.NotEmpty(t, result.Summary)
	assert.Contains(t, result.Summary, "goals")
	assert.Contains(t, result.Summary, "actions")
}

func TestCompress_HybridProducesBothSummaryAndKeyPoints(t *testing.T) {
	result := Compress(sampleMessages(), DefaultOptions())
	assert.NotEmpty(t, result.Summary)
	assert.NotEmpty(t, result.KeyPoints)
}

func TestCompress_TokensNeverExceedOriginal(t *testing.T) {
	for _, strategy := range []Strategy{StrategyRollingSummary, StrategyKeyExtraction, StrategyHybrid} {
		opts := Options{Strategy: strategy, PreserveSystem: true, PreserveLastN: 2}
		result := Compress(sampleMessages(), opts)
		assert.LessOrEqual(t, result.CompressedTokens, result.OriginalTokens, strategy)
		assert.GreaterOrEqual(t, result.Savings, 0, strategy)
	}
}

func TestCompress_ShortTranscriptPassesThroughInsteadOfGrowing(t *testing.T) {
	msgs := []Message{{Role: RoleUser, Content: "I need the design doc."}}
	opts := Options{Strategy: StrategyRollingSummary, PreserveSystem: true, PreserveLastN: 0}
	result := Compress(msgs, opts)

	assert.LessOrEqual(t, result.CompressedTokens, result.OriginalTokens)
	assert.GreaterOrEqual(t, result.Savings, 0)
	require.Len(t, result.CompressedMessages, 1)
	assert.Equal(t, msgs[0].Content, result.CompressedMessages[0].Content)
}

func TestCompress_AccountsExactlyWhatMessagesCarry(t *testing.T) {
	opts := Options{Strategy: StrategyHybrid, PreserveSystem: true, PreserveLastN: 0}
	result := Compress(sampleMessages(), opts)

	var joined []string
	for _, m := range result.CompressedMessages {
		joined = append(joined, m.Content)
	}
	usage := tokens.Measure("", strings.Join(joined, "\n"))
	assert.Equal(t, usage.CompressedTokens, result.CompressedTokens)
}

func TestCompress_DecisionsAndCodeRefsPopulatedOnEveryStrategy(t *testing.T) {
	for _, strategy := range []Strategy{StrategyRollingSummary, StrategyKeyExtraction, StrategyHybrid} {
		opts := Options{Strategy: strategy, PreserveSystem: true, PreserveLastN: 0}
		result := Compress(sampleMessages(), opts)
		assert.NotEmpty(t, result.Decisions, strategy)
		assert.NotEmpty(t, result.CodeReferences, strategy)
	}
}

func TestCompress_SummaryHasNoDoubledPeriod(t *testing.T) {
	opts := Options{Strategy: StrategyRollingSummary, PreserveSystem: true, PreserveLastN: 0}
	result := Compress(sampleMessages(), opts)
	require.NotEmpty(t, result.Summary)
	assert.NotContains(t, result.Summary, "..")
}

func TestCompress_EmptyMessagesRoundTrips(t *testing.T) {
	result := Compress(nil, DefaultOptions())
	assert.Empty(t, result.CompressedMessages)
	assert.Equal(t, uint32(0), result.OriginalTokens)
}

func TestStore_SetAndGet(t *testing.T) {
	store := NewStore()
	_, ok := store.Get()
	assert.False(t, ok)

	result := Compress(sampleMessages(), DefaultOptions())
	mem := store.Set(result)
	assert.NotEmpty(t, mem.ID)

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, mem.ID, got.ID)
}

func TestStore_SetReplacesSlot(t *testing.T) {
	store := NewStore()
	first := store.Set(Result{Summary: "first"})
	second := store.Set(Result{Summary: "second"})
	got, _ := store.Get()
	assert.Equal(t, second.ID, got.ID)
	assert.NotEqual(t, first.ID, got.ID)
	assert.Equal(t, "second", got.Result.Summary)
}
