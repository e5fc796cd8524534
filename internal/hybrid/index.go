package hybrid

import (
	"context"
	"sort"
	"sync"
)

// Weights fuses BM25 and semantic cosine scores. Defaults match spec
// §4.10: wB=0.4, wS=0.6.
type Weights struct {
	BM25     float64
	Semantic float64
}

// DefaultWeights returns the spec's fusion defaults.
func DefaultWeights() Weights {
	return Weights{BM25: 0.4, Semantic: 0.6}
}

// Hit is one scored result. SemanticScore is zero when no Embedder is
// configured or PrecomputeEmbeddings has not yet run for this item; Score
// then carries the BM25 signal alone (the raw BM25 score from
// SearchBM25Only, the weighted max-normalized BM25 score from Search).
type Hit[T any] struct {
	Item          T
	BM25Score     float64
	SemanticScore float64
	Score         float64
	MatchedTerms  []string
}

// Index builds a BM25 index over items on construction, with an optional
// Embedder for dense vectors computed lazily by PrecomputeEmbeddings.
type Index[T any] struct {
	items    []T
	texts    []string
	bm25     *bm25Index
	embedder Embedder
	weights  Weights

	mu         sync.RWMutex
	embeddings [][]float32 // nil entry until computed
	embedded   bool
}

// New builds an Index over items using searchableText to derive the text
// BM25 tokenizes. embedder may be nil, in which case Search degrades to
// BM25-only scoring.
func New[T any](items []T, searchableText func(T) string, embedder Embedder) *Index[T] {
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = searchableText(item)
	}
	return &Index[T]{
		items:      items,
		texts:      texts,
		bm25:       newBM25Index(texts),
		embedder:   embedder,
		weights:    DefaultWeights(),
		embeddings: make([][]float32, len(items)),
	}
}

// SetWeights overrides the fusion weights used by Search.
func (idx *Index[T]) SetWeights(w Weights) {
	idx.weights = w
}

// SearchBM25Only runs a synchronous lexical-only search. An empty query
// returns no hits.
func (idx *Index[T]) SearchBM25Only(q string) []Hit[T] {
	terms := tokenize(q)
	if len(terms) == 0 {
		return nil
	}

	hits := make([]Hit[T], 0, len(idx.items))
	for i := range idx.items {
		score, matched := idx.bm25.score(i, terms)
		if score <= 0 {
			continue
		}
		hits = append(hits, Hit[T]{Item: idx.items[i], BM25Score: score, Score: score, MatchedTerms: matched})
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].BM25Score > hits[b].BM25Score })
	return hits
}

// PrecomputeEmbeddings embeds every item's text once. Idempotent:
// repeated calls after a successful run are no-ops. If no Embedder is
// configured, it is a no-op.
func (idx *Index[T]) PrecomputeEmbeddings(ctx context.Context) error {
	if idx.embedder == nil {
		return nil
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.embedded {
		return nil
	}
	for i, text := range idx.texts {
		if idx.embeddings[i] != nil {
			continue
		}
		vec, err := idx.embedder.Embed(ctx, text)
		if err != nil {
			return err
		}
		idx.embeddings[i] = vec
	}
	idx.embedded = true
	return nil
}

// Search runs fused BM25 + semantic search. Semantic scores are only
// populated for items whose embedding has been precomputed; if
// PrecomputeEmbeddings has never run, Score is weights.BM25 times the
// max-normalized BM25 score, so hits rank as in SearchBM25Only.
func (idx *Index[T]) Search(ctx context.Context, q string) ([]Hit[T], error) {
	terms := tokenize(q)

	var queryVec []float32
	idx.mu.RLock()
	hasEmbeddings := idx.embedded
	idx.mu.RUnlock()

	if hasEmbeddings && idx.embedder != nil && q != "" {
		vec, err := idx.embedder.Embed(ctx, q)
		if err != nil {
			return nil, err
		}
		queryVec = vec
	}

	if len(terms) == 0 && queryVec == nil {
		return nil, nil
	}

	bm25Raw := make([]float64, len(idx.items))
	matchedTerms := make([][]string, len(idx.items))
	for i := range idx.items {
		if len(terms) > 0 {
			bm25Raw[i], matchedTerms[i] = idx.bm25.score(i, terms)
		}
	}
	bm25Norm := normalizeScores(bm25Raw)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	hits := make([]Hit[T], 0, len(idx.items))
	for i := range idx.items {
		semScore := 0.0
		if queryVec != nil && idx.embeddings[i] != nil {
			semScore = cosine(queryVec, idx.embeddings[i])
		}
		fused := idx.weights.BM25*bm25Norm[i] + idx.weights.Semantic*semScore
		if fused <= 0 {
			continue
		}
		hits = append(hits, Hit[T]{
			Item:          idx.items[i],
			BM25Score:     bm25Raw[i],
			SemanticScore: semScore,
			Score:         fused,
			MatchedTerms:  matchedTerms[i],
		})
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	return hits, nil
}
