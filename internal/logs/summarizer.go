package logs

import (
	"regexp"
	"strings"
	"time"

	"github.com/ctxengine/ctxengine/internal/dedup"
)

var (
	levelRE    = regexp.MustCompile(`(?i)\b(ERROR|ERR|FATAL|PANIC|WARN(?:ING)?|INFO|DEBUG|TRACE)\b`)
	keyEventRE = regexp.MustCompile(`(?i)\b(start(?:ed|ing)?|stop(?:ped|ping)?|shut\s?down|crash(?:ed)?|panic|deploy(?:ed|ing|ment)?|listening on port\s*\d+|bound to port\s*\d+)\b`)
)

// Summary is the output of a Summarizer: a capped, deduplicated digest of
// a log blob (spec §4.6).
type Summary struct {
	LogType    string         `json:"log_type"`
	Overview   string         `json:"overview"`
	Errors     []LogEntry     `json:"errors"`
	Warnings   []LogEntry     `json:"warnings"`
	KeyEvents  []LogEntry     `json:"key_events"`
	Statistics map[string]any `json:"statistics"`
}

// Summarizer detects and summarizes one log family (server, test, build,
// application, or generic).
type Summarizer interface {
	// Name identifies the log type this summarizer emits (e.g. "server").
	Name() string
	// CanSummarize reports whether blob looks like this summarizer's log
	// family. The generic summarizer always returns true.
	CanSummarize(blob string) bool
	// Summarize produces the capped digest for the given detail level.
	Summarize(blob string, detail DetailLevel) Summary
}

// Registry is the priority-ordered summarizer list: server > test > build >
// application > generic. The first summarizer whose CanSummarize returns
// true wins.
var Registry = []Summarizer{
	serverSummarizer{},
	testSummarizer{},
	buildSummarizer{},
	applicationSummarizer{},
	genericSummarizer{},
}

// Summarize runs the registry in priority order and returns the first
// match's Summary. Since genericSummarizer always matches, this never
// fails to produce a result for non-empty input.
func Summarize(blob string, detail DetailLevel) Summary {
	for _, s := range Registry {
		if s.CanSummarize(blob) {
			return s.Summarize(blob, detail)
		}
	}
	return genericSummarizer{}.Summarize(blob, detail)
}

// splitLines splits on newlines and drops a single trailing empty line
// from a final "\n", matching how real log files are read.
func splitLines(blob string) []string {
	lines := strings.Split(blob, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func detectLevel(line string) Level {
	m := levelRE.FindString(line)
	switch strings.ToUpper(m) {
	case "ERROR", "ERR", "FATAL", "PANIC":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarning
	case "INFO":
		return LevelInfo
	case "DEBUG", "TRACE":
		return LevelDebug
	default:
		return LevelUnknown
	}
}

// buildEntries deduplicates lines via internal/dedup and turns each
// resulting group into a LogEntry, preserving Count and a representative
// timestamp/raw/message.
func buildEntries(lines []string) []LogEntry {
	result := dedup.Group(lines, dedup.DefaultOptions())
	entries := make([]LogEntry, 0, len(result.Groups))
	for _, g := range result.Groups {
		if len(g.Originals) == 0 {
			continue
		}
		raw := g.Originals[0]
		var ts *time.Time
		if t, ok := extractTimestamp(raw); ok {
			ts = t
		}
		entries = append(entries, LogEntry{
			Timestamp: ts,
			Level:     detectLevel(raw),
			Message:   strings.TrimSpace(raw),
			Count:     g.Occurrences,
			Raw:       raw,
		})
	}
	return entries
}

func filterLevel(entries []LogEntry, level Level) []LogEntry {
	out := make([]LogEntry, 0)
	for _, e := range entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

func keyEvents(lines []string) []LogEntry {
	matched := make([]string, 0)
	for _, l := range lines {
		if keyEventRE.MatchString(l) {
			matched = append(matched, l)
		}
	}
	return buildEntries(matched)
}

func statistics(lines []string, entries []LogEntry) map[string]any {
	start, end := timespan(lines)
	stats := map[string]any{
		"total_lines":   len(lines),
		"unique_events": len(entries),
	}
	if start != nil && end != nil {
		stats["start_time"] = start.Format(time.RFC3339)
		stats["end_time"] = end.Format(time.RFC3339)
		stats["duration_seconds"] = end.Sub(*start).Seconds()
	}
	return stats
}
