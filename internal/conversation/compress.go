package conversation

import (
	"fmt"
	"strings"

	"github.com/ctxengine/ctxengine/internal/tokens"
)

// Compress reduces a message transcript per spec §4.9. Messages with
// role=system pass through unchanged iff opts.PreserveSystem, and the
// last opts.PreserveLastN non-system messages pass through unchanged
// regardless of strategy.
//
// Decisions and CodeReferences are populated on every strategy: they are
// properties of the transcript, not of the chosen rendering.
func Compress(messages []Message, opts Options) Result {
	opts = opts.normalized()

	preserved, rest := partition(messages, opts)
	c := classify(rest)

	var summaryText string
	var keyPoints []string
	switch opts.Strategy {
	case StrategyRollingSummary:
		summaryText = rollingSummary(c)
	case StrategyKeyExtraction:
		keyPoints = keyExtraction(c)
	case StrategyHybrid:
		summaryText = rollingSummary(c)
		keyPoints = keyExtraction(c)
	}

	// The summary and key points travel inside one synthesized system
	// message, so the token measurement below covers exactly what
	// CompressedMessages carries — nothing is counted twice.
	var synthesized []Message
	if content := synthesizedContent(summaryText, keyPoints); content != "" {
		synthesized = []Message{{Role: RoleSystem, Content: content}}
	}

	compressed := make([]Message, 0, len(preserved)+len(synthesized))
	compressed = append(compressed, preservedSystem(messages, opts)...)
	compressed = append(compressed, synthesized...)
	compressed = append(compressed, preserved...)

	if len(compressed) > len(messages) {
		compressed = compressed[:len(messages)]
	}

	originalText := joinContent(messages)
	usage := tokens.Measure(originalText, joinContent(compressed))

	// A transcript too short to compress can synthesize more text than it
	// drops. Pass it through unchanged rather than report negative
	// savings: compressedTokens never exceeds originalTokens.
	if usage.CompressedTokens > usage.OriginalTokens {
		compressed = append([]Message(nil), messages...)
		usage = tokens.Measure(originalText, originalText)
	}

	return Result{
		CompressedMessages: compressed,
		OriginalTokens:     usage.OriginalTokens,
		CompressedTokens:   usage.CompressedTokens,
		Savings:            int(usage.OriginalTokens) - int(usage.CompressedTokens),
		Summary:            summaryText,
		KeyPoints:          keyPoints,
		Decisions:          c.decisions,
		CodeReferences:     c.codeRefs,
	}
}

// synthesizedContent merges the rolling summary and the key-point bullets
// into the single synthesized message body — both, in that order, when
// the hybrid strategy produced both.
func synthesizedContent(summaryText string, keyPoints []string) string {
	parts := make([]string, 0, 2)
	if summaryText != "" {
		parts = append(parts, summaryText)
	}
	if len(keyPoints) > 0 {
		parts = append(parts, strings.Join(keyPoints, "\n"))
	}
	return strings.Join(parts, "\n")
}

// partition splits messages into (non-system messages preserved verbatim
// because they fall within the last PreserveLastN, everything else that
// is a candidate for summarization/extraction). System messages are
// handled separately by preservedSystem.
func partition(messages []Message, opts Options) (preserved, rest []Message) {
	var nonSystem []Message
	for _, m := range messages {
		if m.Role != RoleSystem {
			nonSystem = append(nonSystem, m)
		}
	}
	n := opts.PreserveLastN
	if n > len(nonSystem) {
		n = len(nonSystem)
	}
	if n > 0 {
		preserved = append(preserved, nonSystem[len(nonSystem)-n:]...)
		rest = nonSystem[:len(nonSystem)-n]
	} else {
		rest = nonSystem
	}
	return preserved, rest
}

func preservedSystem(messages []Message, opts Options) []Message {
	if !opts.PreserveSystem {
		return nil
	}
	var out []Message
	for _, m := range messages {
		if m.Role == RoleSystem {
			out = append(out, m)
		}
	}
	return out
}

// rollingSummary synthesizes one paragraph listing goals, actions, and
// unresolved questions from the classified transcript.
func rollingSummary(c classified) string {
	var parts []string
	if len(c.goals) > 0 {
		parts = append(parts, fmt.Sprintf("User goals: %s.", joinSentences(c.goals)))
	}
	if len(c.actions) > 0 {
		parts = append(parts, fmt.Sprintf("Assistant actions: %s.", joinSentences(c.actions)))
	}
	if len(c.questions) > 0 {
		parts = append(parts, fmt.Sprintf("Unresolved questions: %s.", joinSentences(c.questions)))
	}
	return strings.Join(parts, " ")
}

// joinSentences joins sentences with "; " after stripping each one's
// terminal punctuation — sentences() keeps it attached, and the caller
// supplies its own closing period.
func joinSentences(sentences []string) string {
	trimmed := make([]string, len(sentences))
	for i, s := range sentences {
		trimmed[i] = strings.TrimRight(s, ".!?")
	}
	return strings.Join(trimmed, "; ")
}

// keyExtraction emits one bullet per decision sentence, code reference,
// and explicit constraint in the classified transcript.
func keyExtraction(c classified) []string {
	var out []string
	for _, d := range c.decisions {
		out = append(out, "decision: "+d)
	}
	for _, ref := range c.codeRefs {
		out = append(out, "code: "+ref)
	}
	for _, con := range c.constraints {
		out = append(out, "constraint: "+con)
	}
	return out
}

func joinContent(messages []Message) string {
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = m.Content
	}
	return strings.Join(parts, "\n")
}
