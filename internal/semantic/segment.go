// Package semantic implements the semantic compressor (spec component
// C8): it splits text into segments, scores them with TF-IDF plus
// position/anchor boosts, and selects a token-budget-constrained subset
// while preserving original reading order.
package semantic

import (
	"regexp"
	"strings"

	"github.com/ctxengine/ctxengine/internal/detect"
)

var (
	blankLineRE = regexp.MustCompile(`\n\s*\n`)
	braceOpenRE = regexp.MustCompile(`[{(\[]`)
)

// Segment is one unit of text considered for selection, in original
// reading order (Index).
type Segment struct {
	Index   int
	Content string
}

// Split divides text into segments using the preference order spec §4.8
// gives for the detected content type: paragraphs (blank-line) for
// prose/generic/config text, nested-brace blocks for code, and
// line-groups for logs.
func Split(text string, contentType detect.ContentType) []Segment {
	switch contentType {
	case detect.TypeCode:
		return splitByBraces(text)
	case detect.TypeLogs, detect.TypeStackTrace:
		return splitByLineGroups(text)
	default:
		return splitByParagraph(text)
	}
}

func splitByParagraph(text string) []Segment {
	parts := blankLineRE.Split(text, -1)
	segments := make([]Segment, 0, len(parts))
	for i, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		segments = append(segments, Segment{Index: i, Content: p})
	}
	return reindex(segments)
}

// splitByBraces groups code into segments delimited by matching
// top-level brace/paren/bracket nesting returning to depth 0, falling
// back to paragraph splitting when no braces are present at all.
func splitByBraces(text string) []Segment {
	if !braceOpenRE.MatchString(text) {
		return splitByParagraph(text)
	}
	lines := strings.Split(text, "\n")
	var segments []Segment
	var current strings.Builder
	depth := 0
	started := false

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			segments = append(segments, Segment{Content: current.String()})
		}
		current.Reset()
		started = false
	}

	for _, line := range lines {
		current.WriteString(line)
		current.WriteString("\n")
		for _, r := range line {
			switch r {
			case '{', '(', '[':
				depth++
				started = true
			case '}', ')', ']':
				if depth > 0 {
					depth--
				}
			}
		}
		if started && depth == 0 {
			flush()
		}
	}
	flush()
	return reindex(segments)
}

func splitByLineGroups(text string) []Segment {
	lines := strings.Split(text, "\n")
	const groupSize = 5
	var segments []Segment
	for i := 0; i < len(lines); i += groupSize {
		end := i + groupSize
		if end > len(lines) {
			end = len(lines)
		}
		group := strings.Join(lines[i:end], "\n")
		if strings.TrimSpace(group) == "" {
			continue
		}
		segments = append(segments, Segment{Content: group})
	}
	return reindex(segments)
}

func reindex(segments []Segment) []Segment {
	for i := range segments {
		segments[i].Index = i
	}
	return segments
}
