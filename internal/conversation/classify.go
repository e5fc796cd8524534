package conversation

import (
	"regexp"
	"strings"
)

var (
	// A sentence break is terminal punctuation followed by whitespace (or
	// a newline run), so a "." inside `client.Do` never splits, and the
	// punctuation stays with its sentence for the question classifier.
	sentenceBreakRE = regexp.MustCompile(`[.!?]+\s+|\n+`)
	decisionRE      = regexp.MustCompile(`(?i)\b(we will|let's|decided to|we'll|going to)\b`)
	codeRefRE       = regexp.MustCompile("`[^`\n]+`(?::\\d+)?")
	constraintRE    = regexp.MustCompile(`(?i)\b(must|should not|shouldn't|must not|mustn't)\b`)
	questionRE      = regexp.MustCompile(`\?\s*$`)
	goalRE          = regexp.MustCompile(`(?i)\b(i want|i need|please|can you|help me)\b`)
	actionRE        = regexp.MustCompile(`(?i)\b(i (?:added|created|fixed|updated|removed|implemented|ran))\b`)
)

func sentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceBreakRE.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start:loc[1]]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// classified buckets a transcript's sentences into the categories the
// rolling-summary and key-extraction strategies draw from.
type classified struct {
	goals       []string
	actions     []string
	questions   []string
	decisions   []string
	codeRefs    []string
	constraints []string
}

// ExtractDecisions returns every decision sentence ("we will", "let's",
// "decided to") found in messages, independent of Compress.
func ExtractDecisions(messages []Message) []string {
	return classify(messages).decisions
}

// ExtractCodeRefs returns every backtick-delimited code reference found
// in messages, independent of Compress.
func ExtractCodeRefs(messages []Message) []string {
	return classify(messages).codeRefs
}

func classify(messages []Message) classified {
	var c classified
	for _, m := range messages {
		for _, s := range sentences(m.Content) {
			switch {
			case m.Role == RoleUser && questionRE.MatchString(s):
				c.questions = append(c.questions, s)
			case m.Role == RoleUser && goalRE.MatchString(s):
				c.goals = append(c.goals, s)
			case m.Role == RoleAssistant && actionRE.MatchString(s):
				c.actions = append(c.actions, s)
			}
			if decisionRE.MatchString(s) {
				c.decisions = append(c.decisions, s)
			}
			if constraintRE.MatchString(s) {
				c.constraints = append(c.constraints, s)
			}
			for _, ref := range codeRefRE.FindAllString(s, -1) {
				c.codeRefs = append(c.codeRefs, ref)
			}
		}
	}
	return c
}
