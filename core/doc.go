// Package core holds the shared data types and service contracts of the
// chatkit pipeline. Concrete implementations live in sibling packages
// (cache, conversation, knowledge, validate, extract, model); depend on the
// interfaces here and select implementations at wiring time.
//
// Rationale: keeps domain contracts centralized while allowing pluggable
// backends (remote key/value stores, real embedding models, alternative
// extractors) to be added without introducing dependency cycles.
package core
