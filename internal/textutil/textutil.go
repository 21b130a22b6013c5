// Package textutil holds the small text primitives shared by the similarity
// index and the validator: word tokenization, sentence splitting and numeric
// token extraction. Lives in internal to avoid committing to public API
// stability prematurely.
package textutil

import (
	"regexp"
	"strings"
)

var (
	wordRe     = regexp.MustCompile(`\p{L}[\p{L}\p{N}]*|\p{N}+`)
	numberRe   = regexp.MustCompile(`\d+`)
	sentenceRe = regexp.MustCompile(`[.!?]+`)
)

// Tokens returns the set of lower-cased word tokens in text. Unicode aware
// so accented Portuguese words tokenize as single words.
func Tokens(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		set[w] = struct{}{}
	}
	return set
}

// Numbers returns every run of digits in text, in order of appearance.
func Numbers(text string) []string {
	return numberRe.FindAllString(text, -1)
}

// Sentences splits text on sentence terminators (. ! ?), trimming
// whitespace and dropping empty fragments.
func Sentences(text string) []string {
	parts := sentenceRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Jaccard computes |a ∩ b| / |a ∪ b| over two token sets. Returns 0 when
// both sets are empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
