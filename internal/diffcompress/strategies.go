package diffcompress

import (
	"fmt"
	"strings"

	"github.com/ctxengine/ctxengine/internal/semantic"
	"github.com/ctxengine/ctxengine/internal/tokens"
)

// Strategy selects a diff reduction approach.
type Strategy string

const (
	StrategyHunksOnly Strategy = "hunks-only"
	StrategySummary   Strategy = "summary"
	StrategySemantic  Strategy = "semantic"
)

// CompressOptions configures Compress's semantic strategy.
type CompressOptions struct {
	// TargetRatio is the fraction of original tokens the semantic strategy
	// should retain. Defaults to 0.5 (spec §4.7: "default 50% of original").
	TargetRatio float64
}

func (o CompressOptions) normalized() CompressOptions {
	if o.TargetRatio <= 0 || o.TargetRatio > 1 {
		o.TargetRatio = 0.5
	}
	return o
}

// Compress renders a parsed diff under the given strategy.
func Compress(result ParseResult, strategy Strategy, opts CompressOptions) string {
	switch strategy {
	case StrategyHunksOnly:
		return hunksOnly(result)
	case StrategySummary:
		return summary(result)
	case StrategySemantic:
		return semanticStrategy(result, opts.normalized())
	default:
		return hunksOnly(result)
	}
}

func fileHeader(f DiffFileChange) string {
	switch {
	case f.IsNew:
		return fmt.Sprintf("diff --git a/%s b/%s\n--- /dev/null\n+++ b/%s", f.NewPath, f.NewPath, f.NewPath)
	case f.IsDelete:
		return fmt.Sprintf("diff --git a/%s b/%s\n--- a/%s\n+++ /dev/null", f.OldPath, f.OldPath, f.OldPath)
	default:
		return fmt.Sprintf("diff --git a/%s b/%s\n--- a/%s\n+++ b/%s", f.OldPath, f.NewPath, f.OldPath, f.NewPath)
	}
}

// hunksOnly drops context lines but keeps file and hunk headers (spec
// §4.7: typical reduction 50-70%).
func hunksOnly(result ParseResult) string {
	var b strings.Builder
	for _, f := range result.Files {
		b.WriteString(fileHeader(f))
		b.WriteString("\n")
		for _, h := range f.Hunks {
			b.WriteString(h.Header())
			b.WriteString("\n")
			for _, l := range h.Lines {
				if l.Type == LineContext {
					continue
				}
				b.WriteString(string(l.Type))
				b.WriteString(l.Content)
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// summary emits one line per file plus totals, no code (spec §4.7:
// 80-95% reduction).
func summary(result ParseResult) string {
	var b strings.Builder
	for _, f := range result.Files {
		mark := "M"
		switch f.Status {
		case StatusAdded:
			mark = "A"
		case StatusDeleted:
			mark = "D"
		case StatusRenamed:
			mark = "R"
		}
		fmt.Fprintf(&b, "%s %s (+%d/-%d)\n", mark, f.Path(), f.Additions, f.Deletions)
	}
	fmt.Fprintf(&b, "%d files changed, +%d/-%d\n", len(result.Files), result.Stats.Additions, result.Stats.Deletions)
	return strings.TrimRight(b.String(), "\n")
}

// semanticStrategy scores each hunk by the TF-IDF of its changed lines
// and keeps top-scoring hunks until reaching opts.TargetRatio of the
// original diff's token count, always keeping at least one hunk per file
// that has any (spec §4.7: 40-70% reduction).
func semanticStrategy(result ParseResult, opts CompressOptions) string {
	type scoredHunk struct {
		fileIdx, hunkIdx int
		score            float64
	}

	var segments []semantic.Segment
	var refs []struct{ fileIdx, hunkIdx int }
	for fi, f := range result.Files {
		for hi, h := range f.Hunks {
			segments = append(segments, semantic.Segment{Index: len(segments), Content: h.changedLines()})
			refs = append(refs, struct{ fileIdx, hunkIdx int }{fi, hi})
		}
	}
	if len(segments) == 0 {
		return hunksOnly(result)
	}

	ranked := semantic.Score(segments, nil)
	var scoredHunks []scoredHunk
	for _, r := range ranked {
		ref := refs[r.Segment.Index]
		scoredHunks = append(scoredHunks, scoredHunk{fileIdx: ref.fileIdx, hunkIdx: ref.hunkIdx, score: r.Score})
	}

	originalTokens := tokens.Count(result.Raw)
	targetTokens := uint32(float64(originalTokens) * opts.TargetRatio)

	keep := make(map[[2]int]bool)
	firstHunkPerFile := map[int]int{}
	for fi, f := range result.Files {
		if len(f.Hunks) > 0 {
			firstHunkPerFile[fi] = 0
		}
	}

	var accumulated uint32
	for _, sh := range scoredHunks {
		if accumulated >= targetTokens && len(keep) > 0 {
			break
		}
		key := [2]int{sh.fileIdx, sh.hunkIdx}
		keep[key] = true
		accumulated += tokens.Count(result.Files[sh.fileIdx].Hunks[sh.hunkIdx].changedLines())
	}
	for fi, hi := range firstHunkPerFile {
		keep[[2]int{fi, hi}] = true
	}

	var b strings.Builder
	for fi, f := range result.Files {
		kept := make([]Hunk, 0, len(f.Hunks))
		for hi, h := range f.Hunks {
			if keep[[2]int{fi, hi}] {
				kept = append(kept, h)
			}
		}
		if len(kept) == 0 {
			continue
		}
		b.WriteString(fileHeader(f))
		b.WriteString("\n")
		for _, h := range kept {
			b.WriteString(h.Header())
			b.WriteString("\n")
			for _, l := range h.Lines {
				b.WriteString(string(l.Type))
				b.WriteString(l.Content)
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
