package semantic

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var termRE = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]{1,}`)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "of": true, "to": true, "in": true, "for": true,
	"with": true, "on": true, "at": true, "by": true,
}

func tokenize(text string) []string {
	matches := termRE.FindAllString(strings.ToLower(text), -1)
	return matches
}

// ScoredSegment pairs a segment with its TF-IDF+boost score.
type ScoredSegment struct {
	Segment Segment
	Score   float64
}

// tfidfScores computes, for every segment, sum(TF*IDF) over its non-
// stopword terms, per spec §4.8: TF = count/segmentLength,
// IDF = ln(1 + N/df).
func tfidfScores(segments []Segment) []float64 {
	n := len(segments)
	df := map[string]int{}
	segTokens := make([][]string, n)
	segTermCounts := make([]map[string]int, n)

	for i, seg := range segments {
		tokens := tokenize(seg.Content)
		segTokens[i] = tokens
		counts := map[string]int{}
		seen := map[string]bool{}
		for _, tok := range tokens {
			if stopwords[tok] {
				continue
			}
			counts[tok]++
			if !seen[tok] {
				df[tok]++
				seen[tok] = true
			}
		}
		segTermCounts[i] = counts
	}

	scores := make([]float64, n)
	for i := range segments {
		length := len(segTokens[i])
		if length == 0 {
			continue
		}
		var sum float64
		for term, count := range segTermCounts[i] {
			tf := float64(count) / float64(length)
			idf := math.Log(1 + float64(n)/float64(df[term]))
			sum += tf * idf
		}
		scores[i] = sum
	}
	return scores
}

// positionBoost is 1.0 for the first 10% of segments by position,
// decaying linearly to 0.2 at the final segment.
func positionBoost(index, total int) float64 {
	if total <= 1 {
		return 1.0
	}
	frac := float64(index) / float64(total-1)
	if frac <= 0.1 {
		return 1.0
	}
	t := (frac - 0.1) / 0.9
	return 1.0 - t*0.8
}

func anchorBoost(content string, preservePatterns []*regexp.Regexp) float64 {
	for _, re := range preservePatterns {
		if re.MatchString(content) {
			return 1.0
		}
	}
	return 0
}

// Score ranks every segment by tfidf(segments) + positionBoost +
// anchorBoost, highest first.
func Score(segments []Segment, preservePatterns []*regexp.Regexp) []ScoredSegment {
	tfidf := tfidfScores(segments)
	out := make([]ScoredSegment, len(segments))
	for i, seg := range segments {
		s := tfidf[i] + positionBoost(i, len(segments)) + anchorBoost(seg.Content, preservePatterns)
		out[i] = ScoredSegment{Segment: seg, Score: s}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	return out
}
