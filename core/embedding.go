package core

// EmbeddingProvider maps text to a fixed-dimension vector. The similarity
// index does not use embeddings for ranking today (it scores by token
// overlap); the interface exists so a real model can be plugged in without
// touching search or ranking logic. The bundled implementation is an
// explicitly labeled placeholder, not a semantic embedding.
type EmbeddingProvider interface {
	Embed(text string) []float32
	Dimension() int
}
