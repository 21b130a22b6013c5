package knowledge

import (
	"hash/fnv"
	"math/rand"

	"github.com/salespage/chatkit/core"
)

// HashEmbedding is a PLACEHOLDER core.EmbeddingProvider: a pseudo-vector
// drawn from a PRNG seeded with the text's hash. The same text always maps
// to the same vector, but the geometry carries no semantic meaning
// whatsoever. It exists so the provider seam has a deterministic default;
// substitute a real model before relying on vector distance for anything.
type HashEmbedding struct {
	dim int
}

// NewHashEmbedding creates a placeholder provider of the given dimension
// (768 if non-positive, matching common sentence-embedding sizes).
func NewHashEmbedding(dim int) *HashEmbedding {
	if dim <= 0 {
		dim = 768
	}
	return &HashEmbedding{dim: dim}
}

// Embed returns the deterministic pseudo-vector for text.
func (h *HashEmbedding) Embed(text string) []float32 {
	hs := fnv.New64a()
	_, _ = hs.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(hs.Sum64())))
	v := make([]float32, h.dim)
	for i := range v {
		v[i] = rng.Float32()
	}
	return v
}

// Dimension returns the vector width.
func (h *HashEmbedding) Dimension() int { return h.dim }

var _ core.EmbeddingProvider = (*HashEmbedding)(nil)
