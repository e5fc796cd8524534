package logs

import (
	"fmt"
	"regexp"
)

var buildSignalRE = regexp.MustCompile(`(?i)(go build|go vet|cargo (build|check)|make(\[\d+\])?|compiling|compilation (failed|succeeded)|npm run build|webpack|undefined reference|cannot find package)`)

// buildSummarizer matches compiler/build-tool output.
type buildSummarizer struct{}

func (buildSummarizer) Name() string { return "build" }

func (buildSummarizer) CanSummarize(blob string) bool {
	lines := splitLines(blob)
	if len(lines) == 0 {
		return false
	}
	hits := 0
	for _, l := range lines {
		if buildSignalRE.MatchString(l) {
			hits++
		}
	}
	return float64(hits)/float64(len(lines)) >= 0.1
}

func (s buildSummarizer) Summarize(blob string, detail DetailLevel) Summary {
	lines := splitLines(blob)
	c := capsFor(detail)
	all := buildEntries(lines)

	return Summary{
		LogType:    s.Name(),
		Overview:   fmt.Sprintf("build log: %d lines, %d errors, %d warnings", len(lines), len(filterLevel(all, LevelError)), len(filterLevel(all, LevelWarning))),
		Errors:     capEntries(filterLevel(all, LevelError), c.errors),
		Warnings:   capEntries(filterLevel(all, LevelWarning), c.warnings),
		KeyEvents:  capEntries(keyEvents(lines), c.events),
		Statistics: statistics(lines, all),
	}
}
