// Package dedup groups near-duplicate lines (log spam, repeated stack
// frames) by a canonicalized signature, so a caller can render one
// representative plus an occurrence count instead of every repeat.
package dedup

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	numberRE      = regexp.MustCompile(`-?\d+\.\d+|-?\d+`)
	hexRunRE      = regexp.MustCompile(`\b[0-9a-fA-F]{8,}\b`)
	unixPathRE    = regexp.MustCompile(`(?:\.{0,2}/[\w.\-]+){2,}/?`)
	windowsPathRE = regexp.MustCompile(`[A-Za-z]:\\(?:[\w.\-]+\\)*[\w.\-]*`)
	doubleQuoteRE = regexp.MustCompile(`"[^"]*"`)
	singleQuoteRE = regexp.MustCompile(`'[^']*'`)
)

// Options configures Group, defaulting to Threshold=2, KeepFirst=1 (spec
// §4.5: a line repeated twice or more collapses to its first occurrence
// plus a count).
type Options struct {
	Threshold     int
	KeepFirst     int
	CustomPattern *regexp.Regexp
}

// DefaultOptions returns the spec-mandated defaults.
func DefaultOptions() Options {
	return Options{Threshold: 2, KeepFirst: 1}
}

func (o Options) normalized() Options {
	if o.Threshold <= 0 {
		o.Threshold = 2
	}
	if o.KeepFirst <= 0 {
		o.KeepFirst = 1
	}
	return o
}

// LineGroup is every original line sharing one normalized signature.
type LineGroup struct {
	Pattern     string   `json:"pattern"`
	Occurrences int      `json:"occurrences"`
	Originals   []string `json:"originals"`
}

// Stats summarizes the reduction Group achieved.
type Stats struct {
	OriginalLines      int     `json:"original_lines"`
	DeduplicatedLines  int     `json:"deduplicated_lines"`
	UniquePatterns     int     `json:"unique_patterns"`
	DuplicatesRemoved  int     `json:"duplicates_removed"`
	ReductionPercent   float64 `json:"reduction_percent"`
}

// Result is Group's return value.
type Result struct {
	// Rendered is the final line sequence in original order: low-occurrence
	// groups verbatim, high-occurrence groups as KeepFirst originals
	// followed by an "... and N more occurrences" marker line.
	Rendered         []string    `json:"rendered"`
	Groups           []LineGroup `json:"groups"`
	DroppedLineCount int      `json:"dropped_line_count"`
	Stats            Stats    `json:"stats"`
}

type bucket struct {
	signature string
	originals []string
}

// Group normalizes every line, buckets by signature, and renders the
// compressed output. Lines that don't match CustomPattern (when given)
// are treated as non-errors and pass through unchanged, each its own
// singleton bucket so it is never collapsed or counted as a duplicate.
func Group(lines []string, opts Options) Result {
	opts = opts.normalized()

	order := make([]string, 0, len(lines))
	buckets := make(map[string]*bucket, len(lines))

	for i, line := range lines {
		var sig string
		if opts.CustomPattern != nil && !opts.CustomPattern.MatchString(line) {
			sig = fmt.Sprintf("\x00passthrough:%d", i)
		} else {
			sig = normalize(line)
		}
		b, ok := buckets[sig]
		if !ok {
			b = &bucket{signature: sig}
			buckets[sig] = b
			order = append(order, sig)
		}
		b.originals = append(b.originals, line)
	}

	rendered := make([]string, 0, len(lines))
	groups := make([]LineGroup, 0, len(order))
	dropped := 0
	duplicatesRemoved := 0

	for _, sig := range order {
		b := buckets[sig]
		occ := len(b.originals)
		groups = append(groups, LineGroup{Pattern: b.signature, Occurrences: occ, Originals: b.originals})

		if occ < opts.Threshold {
			rendered = append(rendered, b.originals...)
			continue
		}
		keep := opts.KeepFirst
		if keep > occ {
			keep = occ
		}
		rendered = append(rendered, b.originals[:keep]...)
		more := occ - keep
		if more > 0 {
			rendered = append(rendered, fmt.Sprintf("... and %d more occurrences", more))
			dropped += more
			duplicatesRemoved += more
		}
	}

	stats := Stats{
		OriginalLines:     len(lines),
		DeduplicatedLines: len(rendered),
		UniquePatterns:    len(groups),
		DuplicatesRemoved: duplicatesRemoved,
	}
	if stats.OriginalLines > 0 {
		stats.ReductionPercent = float64(stats.OriginalLines-stats.DeduplicatedLines) / float64(stats.OriginalLines) * 100
	}

	return Result{Rendered: rendered, Groups: groups, DroppedLineCount: dropped, Stats: stats}
}

// normalize applies the spec's substitution pipeline in order: numbers,
// then hex runs, then paths, then quoted strings, then lowercase+trim.
// The lowercase pass leaves the placeholder names (<N>, <HASH>, <PATH>,
// <STR>) in upper case.
// Numbers run first, so a hex run containing digits (most real hashes)
// has already had its digit span replaced by <N> and will not also match
// the hex pattern; this mirrors the documented ordering rather than
// reordering passes for "better" hex detection.
func normalize(line string) string {
	s := numberRE.ReplaceAllString(line, "<N>")
	s = hexRunRE.ReplaceAllString(s, "<HASH>")
	s = unixPathRE.ReplaceAllString(s, "<PATH>")
	s = windowsPathRE.ReplaceAllString(s, "<PATH>")
	s = doubleQuoteRE.ReplaceAllString(s, `"<STR>"`)
	s = singleQuoteRE.ReplaceAllString(s, `'<STR>'`)
	s = strings.ToLower(s)
	s = placeholderCase.Replace(s)
	s = strings.TrimSpace(s)
	return s
}

// placeholderCase restores the placeholder names after lowercasing.
var placeholderCase = strings.NewReplacer("<n>", "<N>", "<hash>", "<HASH>", "<path>", "<PATH>", "<str>", "<STR>")
