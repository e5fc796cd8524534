package logs

import (
	"fmt"
	"regexp"
)

var serverSignalRE = regexp.MustCompile(`(?i)(listening on|server started|bound to port|GET /|POST /|PUT /|DELETE /|HTTP/1\.[01]|status=\d{3}|\d{3} OK)`)

// serverSummarizer matches HTTP/application-server access and lifecycle
// logs: request lines, status codes, listen/bind announcements.
type serverSummarizer struct{}

func (serverSummarizer) Name() string { return "server" }

func (serverSummarizer) CanSummarize(blob string) bool {
	lines := splitLines(blob)
	if len(lines) == 0 {
		return false
	}
	hits := 0
	for _, l := range lines {
		if serverSignalRE.MatchString(l) {
			hits++
		}
	}
	return float64(hits)/float64(len(lines)) >= 0.2
}

func (s serverSummarizer) Summarize(blob string, detail DetailLevel) Summary {
	lines := splitLines(blob)
	c := capsFor(detail)
	all := buildEntries(lines)

	errors := capEntries(filterLevel(all, LevelError), c.errors)
	warnings := capEntries(filterLevel(all, LevelWarning), c.warnings)
	events := capEntries(keyEvents(lines), c.events)

	return Summary{
		LogType:    s.Name(),
		Overview:   fmt.Sprintf("server log: %d lines, %d errors, %d warnings", len(lines), len(filterLevel(all, LevelError)), len(filterLevel(all, LevelWarning))),
		Errors:     errors,
		Warnings:   warnings,
		KeyEvents:  events,
		Statistics: statistics(lines, all),
	}
}
