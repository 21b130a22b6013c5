// Package knowledge holds the process-local document index used to retrieve
// page context for answer generation. Scoring is deliberately simple: the
// Jaccard similarity of lower-cased word sets, no embeddings, no external
// services. That trades recall for deterministic, explainable, dependency
// free ranking, which is what the validation layer downstream needs.
//
// The index is append-only and rebuilt from scratch on restart; it makes no
// persistence guarantee. A pluggable core.EmbeddingProvider seam exists for
// substituting a real semantic model without touching search or ranking.
package knowledge
