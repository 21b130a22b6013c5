package core

// Document is an indexed page snapshot owned by the similarity index.
// Immutable once inserted; IDs are assigned monotonically on insert.
type Document struct {
	ID       int      `json:"id"`
	Metadata PageData `json:"metadata"`
	RawText  string   `json:"raw_text"`
}

// SearchResult pairs a retrieved document with its relevance score.
type SearchResult struct {
	Document Document
	Score    float64
}
