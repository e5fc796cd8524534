package logs

import (
	"regexp"
	"time"
)

// timestampPattern pairs a regex with the time.Parse layout matching what
// it captures. Five patterns, per spec §4.6, covering the formats that
// show up across server/test/build/application logs in practice.
type timestampPattern struct {
	re     *regexp.Regexp
	layout string
}

var timestampPatterns = []timestampPattern{
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2})`), time.RFC3339Nano},
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:\.\d+)?`), "2006-01-02 15:04:05.999999999"},
	{regexp.MustCompile(`\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\]`), "[2006-01-02 15:04:05]"},
	{regexp.MustCompile(`[A-Z][a-z]{2} [A-Z][a-z]{2}\s+\d{1,2} \d{2}:\d{2}:\d{2} \d{4}`), "Mon Jan 2 15:04:05 2006"},
	{regexp.MustCompile(`[A-Z][a-z]{2}\s+\d{1,2} \d{2}:\d{2}:\d{2}`), "Jan 2 15:04:05"},
}

// extractTimestamp finds the first match of any pattern in line and parses
// it. Returns (nil, false) when no pattern matches or parsing fails.
func extractTimestamp(line string) (*time.Time, bool) {
	for _, p := range timestampPatterns {
		m := p.re.FindString(line)
		if m == "" {
			continue
		}
		if t, err := time.Parse(p.layout, m); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// timespan returns the first and last parseable timestamp across lines, in
// the order they're found (not sorted), matching spec §4.6: "the first and
// last timestamp that match any of the five patterns".
func timespan(lines []string) (start, end *time.Time) {
	for _, line := range lines {
		if t, ok := extractTimestamp(line); ok {
			start = t
			break
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if t, ok := extractTimestamp(lines[i]); ok {
			end = t
			break
		}
	}
	return start, end
}
