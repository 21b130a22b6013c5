// Package validate gates candidate answers against the page they claim to
// describe. Three independent checks compose: a literal re-search of the
// raw markup, corroboration across multiple sources, and claim-specific
// anti-hallucination rules for numbers and benefit/guarantee wording.
// Failing a check is not an error; it routes the caller to a deterministic
// fallback instead of the drafted answer.
package validate

import (
	"strings"

	"github.com/salespage/chatkit/core"
	"github.com/salespage/chatkit/internal/textutil"
	"github.com/salespage/chatkit/logging"
)

// Source names an independent corroboration source.
type Source string

// The three corroboration sources. Structured is the extracted record's
// JSON serialization, Text the page's flattened text, Markup the raw HTML.
const (
	SourceStructured Source = "structured"
	SourceText       Source = "text"
	SourceMarkup     Source = "markup"
)

// AllSources lists every corroboration source in canonical order.
var AllSources = []Source{SourceStructured, SourceText, SourceMarkup}

// Claim keywords that require the matching structured field to be present.
// Portuguese first (the original deployment language), English alongside.
var (
	benefitKeywords   = []string{"benefício", "beneficio", "benefit"}
	guaranteeKeywords = []string{"garantia", "guarantee", "warranty", "reembolso", "refund"}
)

// Options configure a Validator.
type Options struct {
	// MinSources is the corroboration threshold: an answer must have word
	// overlap with at least this many sources to be trusted.
	MinSources int
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Validator cross-checks answers against one page's sources. Construct one
// per page; it is immutable and safe for concurrent use.
type Validator struct {
	rawText    string
	structured core.PageData
	html       string

	lowerText       string
	lowerHTML       string
	lowerStructured string

	opts Options
}

// New builds a Validator from the page's raw text, structured record and
// (optionally) raw markup. Default corroboration threshold is 2 sources.
func New(rawText string, structured core.PageData, html string, optFns ...func(o *Options)) *Validator {
	opts := Options{
		MinSources: 2,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Validator{
		rawText:         rawText,
		structured:      structured,
		html:            html,
		lowerText:       strings.ToLower(rawText),
		lowerHTML:       strings.ToLower(html),
		lowerStructured: strings.ToLower(structured.Serialize()),
		opts:            opts,
	}
}

// LiteralSearch looks query up verbatim (case-insensitively) in the raw
// markup and, if present, returns the sentence of the raw text containing
// it. This simulates an exact-match lookup independent of any generative
// step; the caller may use it as a last-resort extractive answer. Returns
// "" when query is empty or absent.
func (v *Validator) LiteralSearch(query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}
	lq := strings.ToLower(query)
	haystack := v.lowerHTML
	if haystack == "" {
		haystack = v.lowerText
	}
	if !strings.Contains(haystack, lq) {
		return ""
	}
	for _, sentence := range textutil.Sentences(v.rawText) {
		if strings.Contains(strings.ToLower(sentence), lq) {
			return sentence + "."
		}
	}
	return ""
}

// Corroborate reports whether the answer's words appear in at least
// MinSources of the named sources. Each source counts at most once no
// matter how many words hit it. An empty answer or empty source set never
// corroborates.
func (v *Validator) Corroborate(answer string, sources []Source) bool {
	matched := v.matchedSources(answer, sources)
	ok := matched >= v.opts.MinSources
	v.opts.Logger.Debug("corroboration check",
		"matched_sources", matched, "threshold", v.opts.MinSources, "valid", ok)
	return ok
}

func (v *Validator) matchedSources(answer string, sources []Source) int {
	words := textutil.Tokens(answer)
	if len(words) == 0 {
		return 0
	}
	serialized := map[Source]string{
		SourceStructured: v.lowerStructured,
		SourceText:       v.lowerText,
		SourceMarkup:     v.lowerHTML,
	}
	matched := 0
	for _, src := range sources {
		body := serialized[src]
		if body == "" {
			continue
		}
		for w := range words {
			if strings.Contains(body, w) {
				matched++
				break
			}
		}
	}
	return matched
}

// AntiHallucination rejects answers making claims the page does not back:
// every numeric token must appear verbatim in the raw text, and mentions of
// benefits or guarantees require the corresponding structured field to be
// populated.
func (v *Validator) AntiHallucination(answer string) bool {
	for _, num := range textutil.Numbers(answer) {
		if !strings.Contains(v.rawText, num) {
			v.opts.Logger.Warn("answer cites number absent from source", "number", num)
			return false
		}
	}
	la := strings.ToLower(answer)
	if containsAny(la, benefitKeywords) && len(v.structured.Benefits) == 0 {
		v.opts.Logger.Warn("answer mentions benefits but none were extracted")
		return false
	}
	if containsAny(la, guaranteeKeywords) && v.structured.Guarantee == "" {
		v.opts.Logger.Warn("answer mentions a guarantee but none was extracted")
		return false
	}
	return true
}

// Check composes corroboration (over all sources) and the
// anti-hallucination rules into a single verdict. When the answer fails,
// Fallback carries the literal-search extract for query, if any, so the
// caller can substitute a deterministic reply.
func (v *Validator) Check(answer, query string) core.ValidationResult {
	matched := v.matchedSources(answer, AllSources)
	res := core.ValidationResult{
		MatchedSources: matched,
		Valid:          matched >= v.opts.MinSources && v.AntiHallucination(answer),
	}
	if !res.Valid {
		res.Fallback = v.LiteralSearch(query)
	}
	return res
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
