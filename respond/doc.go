// Package respond turns a visitor question into a vetted answer. A
// Generator drafts through a model.Model with the page's facts in the
// system prompt, polishes the draft, then gates it through the validator;
// rejected drafts are replaced by a literal extract from the page or, as a
// last resort, a deterministic intent-based fallback. The visitor never
// sees an unvetted model answer.
package respond
