package hybrid

import (
	"context"
	"math"
)

// EmbeddingDims is the reference embedder's vector width (spec §4.10: "D=384").
const EmbeddingDims = 384

// Embedder is the optional dense-vector capability. An Index built without
// one still serves BM25-only search; Search degrades to BM25-only scores
// when no Embedder is configured.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
