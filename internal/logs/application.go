package logs

import "fmt"

// applicationSummarizer matches generic leveled application logs (has
// recognizable log levels on most lines, but none of the more specific
// server/test/build signals). It sits just above genericSummarizer in the
// registry.
type applicationSummarizer struct{}

func (applicationSummarizer) Name() string { return "application" }

func (applicationSummarizer) CanSummarize(blob string) bool {
	lines := splitLines(blob)
	if len(lines) == 0 {
		return false
	}
	hits := 0
	for _, l := range lines {
		if levelRE.MatchString(l) {
			hits++
		}
	}
	return float64(hits)/float64(len(lines)) >= 0.3
}

func (s applicationSummarizer) Summarize(blob string, detail DetailLevel) Summary {
	lines := splitLines(blob)
	c := capsFor(detail)
	all := buildEntries(lines)

	return Summary{
		LogType:    s.Name(),
		Overview:   fmt.Sprintf("application log: %d lines, %d errors, %d warnings", len(lines), len(filterLevel(all, LevelError)), len(filterLevel(all, LevelWarning))),
		Errors:     capEntries(filterLevel(all, LevelError), c.errors),
		Warnings:   capEntries(filterLevel(all, LevelWarning), c.warnings),
		KeyEvents:  capEntries(keyEvents(lines), c.events),
		Statistics: statistics(lines, all),
	}
}
