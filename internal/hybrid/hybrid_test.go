package hybrid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	ID   string
	Text string
}

func sampleDocs() []doc {
	return []doc{
		{ID: "1", Text: "the quick brown fox jumps over the lazy dog"},
		{ID: "2", Text: "a fast fox runs through the forest"},
		{ID: "3", Text: "database migrations and schema changes"},
	}
}

func textOf(d doc) string { return d.Text }

func TestSearchBM25Only_EmptyQueryReturnsEmpty(t *testing.T) {
	idx := New(sampleDocs(), textOf, nil)
	hits := idx.SearchBM25Only("")
	assert.Empty(t, hits)
}

func TestSearchBM25Only_RanksMatchingDocsFirst(t *testing.T) {
	idx := New(sampleDocs(), textOf, nil)
	hits := idx.SearchBM25Only("fox")
	require.NotEmpty(t, hits)
	assert.Contains(t, hits[0].Item.Text, "fox")
	for _, h := range hits {
		assert.NotContains(t, h.Item.Text, "database")
	}
}

func TestSearchBM25Only_NoMatchReturnsEmpty(t *testing.T) {
	idx := New(sampleDocs(), textOf, nil)
	hits := idx.SearchBM25Only("xylophone")
	assert.Empty(t, hits)
}

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func TestSearch_WithoutPrecompute_NoSemanticContribution(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{}}
	idx := New(sampleDocs(), textOf, embedder)
	hits, err := idx.Search(context.Background(), "fox")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Equal(t, 0.0, h.SemanticScore)
	}
}

func TestPrecomputeEmbeddings_IsIdempotent(t *testing.T) {
	calls := 0
	embedder := embedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		calls++
		return []float32{1, 0, 0}, nil
	})
	idx := New(sampleDocs(), textOf, embedder)
	require.NoError(t, idx.PrecomputeEmbeddings(context.Background()))
	firstCalls := calls
	require.NoError(t, idx.PrecomputeEmbeddings(context.Background()))
	assert.Equal(t, firstCalls, calls)
}

func TestSearch_FusesScoresAfterPrecompute(t *testing.T) {
	embedder := embedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		if text == "forest" {
			return []float32{0, 1, 0}, nil
		}
		return []float32{1, 0, 0}, nil
	})
	idx := New(sampleDocs(), textOf, embedder)
	require.NoError(t, idx.PrecomputeEmbeddings(context.Background()))

	hits, err := idx.Search(context.Background(), "forest")
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	// Only doc 2 contains "forest", so its max-normalized BM25 score is 1.
	w := DefaultWeights()
	assert.Equal(t, "2", hits[0].Item.ID)
	assert.InDelta(t, w.BM25*1.0+w.Semantic*hits[0].SemanticScore, hits[0].Score, 1e-9)
}

type embedderFunc func(ctx context.Context, text string) ([]float32, error)

func (f embedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

func TestCosine_IdenticalVectorsScoreOne(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
}

func TestCosine_OrthogonalVectorsScoreZero(t *testing.T) {
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
}

func TestEmbeddingCache_RoundTrip(t *testing.T) {
	cache, err := OpenEmbeddingCache(CacheConfig{})
	require.NoError(t, err)
	defer cache.Close()

	_, hit, err := cache.Get("hello")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Put("hello", []float32{1, 2, 3}))
	vec, hit, err := cache.Get("hello")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, []float32{1, 2, 3}, vec)
}

func TestCachedEmbedder_CachesAfterFirstCall(t *testing.T) {
	cache, err := OpenEmbeddingCache(CacheConfig{})
	require.NoError(t, err)
	defer cache.Close()

	calls := 0
	inner := embedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		calls++
		return []float32{9, 9, 9}, nil
	})
	cached := &CachedEmbedder{Inner: inner, Cache: cache}

	v1, err := cached.Embed(context.Background(), "x")
	require.NoError(t, err)
	v2, err := cached.Embed(context.Background(), "x")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls)
}
