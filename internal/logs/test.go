package logs

import (
	"fmt"
	"regexp"
)

var testSignalRE = regexp.MustCompile(`(?i)(--- (PASS|FAIL|SKIP)|^(PASS|FAIL|ok|RUN)\b|\d+ (passed|failed|skipped)|AssertionError|Test(Case)?\.(test|assert))`)

// testSummarizer matches CI/test-runner output (go test, pytest, jest,
// junit-style PASS/FAIL blocks).
type testSummarizer struct{}

func (testSummarizer) Name() string { return "test" }

func (testSummarizer) CanSummarize(blob string) bool {
	lines := splitLines(blob)
	if len(lines) == 0 {
		return false
	}
	hits := 0
	for _, l := range lines {
		if testSignalRE.MatchString(l) {
			hits++
		}
	}
	return float64(hits)/float64(len(lines)) >= 0.1
}

func (s testSummarizer) Summarize(blob string, detail DetailLevel) Summary {
	lines := splitLines(blob)
	c := capsFor(detail)
	all := buildEntries(lines)

	failRE := regexp.MustCompile(`(?i)--- FAIL|FAILED|AssertionError`)
	var failures []string
	for _, l := range lines {
		if failRE.MatchString(l) {
			failures = append(failures, l)
		}
	}
	failEntries := capEntries(buildEntries(failures), c.errors)

	return Summary{
		LogType:    s.Name(),
		Overview:   fmt.Sprintf("test run: %d lines, %d failures", len(lines), len(failures)),
		Errors:     failEntries,
		Warnings:   capEntries(filterLevel(all, LevelWarning), c.warnings),
		KeyEvents:  capEntries(keyEvents(lines), c.events),
		Statistics: statistics(lines, all),
	}
}
