package logs

import "fmt"

// genericSummarizer is the final fallback: it always matches and applies
// no domain-specific signal detection beyond level keywords and the
// shared key-event pattern set.
type genericSummarizer struct{}

func (genericSummarizer) Name() string { return "generic" }

func (genericSummarizer) CanSummarize(blob string) bool { return true }

func (s genericSummarizer) Summarize(blob string, detail DetailLevel) Summary {
	lines := splitLines(blob)
	c := capsFor(detail)
	all := buildEntries(lines)

	return Summary{
		LogType:    s.Name(),
		Overview:   fmt.Sprintf("log: %d lines, %d distinct entries", len(lines), len(all)),
		Errors:     capEntries(filterLevel(all, LevelError), c.errors),
		Warnings:   capEntries(filterLevel(all, LevelWarning), c.warnings),
		KeyEvents:  capEntries(keyEvents(lines), c.events),
		Statistics: statistics(lines, all),
	}
}
