// Package hybrid implements the BM25 + optional dense-embedding hybrid
// search index (spec component C10).
package hybrid

import (
	"math"
	"regexp"
	"strings"
)

var termRE = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]{1,}`)

// tokenize matches internal/semantic's English tokenization so BM25 and
// TF-IDF scoring agree on term boundaries.
func tokenize(text string) []string {
	matches := termRE.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if !stopwords[m] {
			out = append(out, m)
		}
	}
	return out
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "of": true, "to": true,
	"in": true, "for": true, "with": true, "on": true, "at": true, "by": true,
}

const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// bm25Doc is the precomputed term-frequency table for one indexed item.
type bm25Doc struct {
	termCounts map[string]int
	length     int
}

// bm25Index is the classic Okapi BM25 inverted index over a fixed item set.
type bm25Index struct {
	docs      []bm25Doc
	df        map[string]int
	avgDocLen float64
	totalDocs int
}

func newBM25Index(texts []string) *bm25Index {
	idx := &bm25Index{df: map[string]int{}}
	var totalLen int
	for _, text := range texts {
		terms := tokenize(text)
		counts := make(map[string]int, len(terms))
		for _, t := range terms {
			counts[t]++
		}
		idx.docs = append(idx.docs, bm25Doc{termCounts: counts, length: len(terms)})
		totalLen += len(terms)
		for t := range counts {
			idx.df[t]++
		}
	}
	idx.totalDocs = len(texts)
	if idx.totalDocs > 0 {
		idx.avgDocLen = float64(totalLen) / float64(idx.totalDocs)
	}
	return idx
}

func (idx *bm25Index) idf(term string) float64 {
	df := idx.df[term]
	if df == 0 {
		return 0
	}
	n := float64(idx.totalDocs)
	return math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
}

// score returns the BM25 score for docIdx against the query terms, plus
// the subset of query terms that actually matched the document.
func (idx *bm25Index) score(docIdx int, queryTerms []string) (float64, []string) {
	doc := idx.docs[docIdx]
	var score float64
	var matched []string
	for _, term := range queryTerms {
		tf, ok := doc.termCounts[term]
		if !ok || tf == 0 {
			continue
		}
		matched = append(matched, term)
		idf := idx.idf(term)
		numerator := float64(tf) * (bm25K1 + 1)
		denominator := float64(tf) + bm25K1*(1-bm25B+bm25B*float64(doc.length)/maxF(idx.avgDocLen, 1))
		score += idf * numerator / denominator
	}
	return score, matched
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func normalizeScores(scores []float64) []float64 {
	if len(scores) == 0 {
		return scores
	}
	max := scores[0]
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max <= 0 {
		return make([]float64, len(scores))
	}
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = s / max
	}
	return out
}
