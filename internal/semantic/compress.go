package semantic

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ctxengine/ctxengine/internal/detect"
	"github.com/ctxengine/ctxengine/internal/tokens"
)

// Options configures Compress.
type Options struct {
	// TargetRatio is the fraction of original tokens the output should
	// retain. Defaults to 0.5.
	TargetRatio float64
	// PreservePatterns mark segments that must never be dropped.
	PreservePatterns []*regexp.Regexp
}

func (o Options) normalized() Options {
	if o.TargetRatio <= 0 || o.TargetRatio > 1 {
		o.TargetRatio = 0.5
	}
	return o
}

// Result is Compress's output.
type Result struct {
	Content          string
	SelectedSegments []Segment
	Usage            tokens.Usage
}

// Compress splits text by content type, scores every segment, and keeps
// segments (highest score first) until the cumulative original token
// count reaches TargetRatio*totalTokens, then re-orders the kept
// segments back into original reading order for output.
func Compress(text string, contentType detect.ContentType, opts Options) Result {
	opts = opts.normalized()
	segments := Split(text, contentType)
	if len(segments) == 0 {
		return Result{Content: text, Usage: tokens.MeasureCounts(tokens.Count(text), tokens.Count(text))}
	}

	totalTokens := tokens.Count(text)
	target := uint32(float64(totalTokens) * opts.TargetRatio)

	ranked := Score(segments, opts.PreservePatterns)

	// Anchored segments are kept unconditionally; the budget loop below
	// then fills the remaining room by score.
	var accumulated uint32
	selected := make(map[int]bool, len(segments))
	for _, seg := range segments {
		if anchorBoost(seg.Content, opts.PreservePatterns) > 0 {
			selected[seg.Index] = true
			accumulated += tokens.Count(seg.Content)
		}
	}
	for _, s := range ranked {
		if selected[s.Segment.Index] {
			continue
		}
		if accumulated >= target && len(selected) > 0 {
			break
		}
		selected[s.Segment.Index] = true
		accumulated += tokens.Count(s.Segment.Content)
	}

	kept := make([]Segment, 0, len(selected))
	for _, seg := range segments {
		if selected[seg.Index] {
			kept = append(kept, seg)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Index < kept[j].Index })

	parts := make([]string, 0, len(kept))
	for _, seg := range kept {
		parts = append(parts, strings.TrimRight(seg.Content, "\n"))
	}
	content := strings.Join(parts, "\n\n")

	return Result{
		Content:          content,
		SelectedSegments: kept,
		Usage:            tokens.Measure(text, content),
	}
}
