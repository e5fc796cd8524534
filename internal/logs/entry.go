// Package logs implements the log summarizer set (spec component C6): a
// priority-ordered registry of domain-specific summarizers (server, test,
// build, application) falling back to a generic summarizer, each emitting
// a capped, deduplicated digest of a raw log blob.
package logs

import (
	"encoding/json"
	"fmt"
	"time"
)

// Level is the closed set of log severities a LogEntry can carry.
type Level int

const (
	LevelUnknown Level = iota
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
)

var levelNames = map[Level]string{
	LevelUnknown: "unknown",
	LevelDebug:   "debug",
	LevelInfo:    "info",
	LevelWarning: "warning",
	LevelError:   "error",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return "unknown"
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		for lvl, name := range levelNames {
			if name == s {
				*l = lvl
				return nil
			}
		}
		return fmt.Errorf("unknown log level %q", s)
	}
	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return fmt.Errorf("Level must be string or int: %w", err)
	}
	*l = Level(i)
	return nil
}

// LogEntry is one (possibly deduplicated) log line.
//
// Dedup invariant: entries sharing a normalized signature (internal/dedup)
// collapse into one entry with Count equal to the sum of occurrences.
type LogEntry struct {
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Count     int            `json:"count"`
	Context   map[string]any `json:"context,omitempty"`
	Raw       string         `json:"raw"`
}
