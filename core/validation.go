package core

// ValidationResult is the outcome of running a candidate answer through the
// validator. Produced per call, never persisted. When Valid is false the
// caller substitutes Fallback (if non-empty) or a templated reply.
type ValidationResult struct {
	Valid          bool   `json:"valid"`
	MatchedSources int    `json:"matched_sources"`
	Fallback       string `json:"fallback,omitempty"`
}
