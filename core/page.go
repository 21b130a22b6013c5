package core

import (
	"encoding/json"
	"strings"
)

// PageData is the structured record produced by page extraction. It is the
// unit the cache persists, the similarity index ranks and the validator
// treats as its "structured" source. Fields not found on a page are left
// zero valued rather than erroring; downstream checks treat empty as absent.
type PageData struct {
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Price          string   `json:"price"`
	Benefits       []string `json:"benefits"`
	CTA            string   `json:"cta"`
	Guarantee      string   `json:"guarantee"`
	TargetAudience string   `json:"target_audience"`
	Testimonials   []string `json:"testimonials"`
	ProductType    string   `json:"product_type"`
}

// Serialize returns the canonical JSON form of the record. Used by the
// validator as the lower-cased "structured" corroboration source.
func (p PageData) Serialize() string {
	b, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(b)
}

// Searchable concatenates the free-text fields that participate in
// similarity scoring: title, description and benefits.
func (p PageData) Searchable() string {
	parts := make([]string, 0, 2+len(p.Benefits))
	if p.Title != "" {
		parts = append(parts, p.Title)
	}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	parts = append(parts, p.Benefits...)
	return strings.Join(parts, " ")
}
