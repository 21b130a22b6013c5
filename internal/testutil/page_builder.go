package testutil

import (
	"time"

	"github.com/salespage/chatkit/core"
)

// PageBuilder provides a fluent helper for constructing page records in
// tests. Example:
//
//	page := NewPageBuilder().Title("Curso de Go").Price("R$ 297,00").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type PageBuilder struct {
	page core.PageData
}

// NewPageBuilder creates a builder seeded with a plausible digital product.
func NewPageBuilder() *PageBuilder {
	return &PageBuilder{page: core.PageData{
		URL:         "https://example.com/curso",
		Title:       "Curso Completo de Marketing Digital",
		Description: "Aprenda marketing digital do zero com aulas práticas e suporte dedicado para acelerar seus resultados.",
		Price:       "R$ 497,00",
		Benefits:    []string{"Acesso vitalício a todas as aulas", "Suporte direto com o instrutor", "Certificado de conclusão"},
		Guarantee:   "garantia de 7 dias",
		ProductType: "curso online",
	}}
}

// URL sets the page URL (chainable).
func (b *PageBuilder) URL(u string) *PageBuilder { b.page.URL = u; return b }

// Title sets the product title (chainable).
func (b *PageBuilder) Title(t string) *PageBuilder { b.page.Title = t; return b }

// Description sets the description (chainable).
func (b *PageBuilder) Description(d string) *PageBuilder { b.page.Description = d; return b }

// Price sets the price string (chainable).
func (b *PageBuilder) Price(p string) *PageBuilder { b.page.Price = p; return b }

// Benefits replaces the benefits list (chainable).
func (b *PageBuilder) Benefits(items ...string) *PageBuilder { b.page.Benefits = items; return b }

// Guarantee sets the guarantee claim (chainable).
func (b *PageBuilder) Guarantee(g string) *PageBuilder { b.page.Guarantee = g; return b }

// CTA sets the call to action (chainable).
func (b *PageBuilder) CTA(c string) *PageBuilder { b.page.CTA = c; return b }

// Empty clears every field except the URL, modeling a page the extractor
// could not parse.
func (b *PageBuilder) Empty() *PageBuilder {
	b.page = core.PageData{URL: b.page.URL}
	return b
}

// Build returns the accumulated page record.
func (b *PageBuilder) Build() core.PageData { return b.page }

// Messages builds an alternating user/assistant history of n turns, oldest
// first, with deterministic timestamps.
func Messages(n int) []core.Message {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	out := make([]core.Message, 0, n)
	for i := 0; i < n; i++ {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		out = append(out, core.Message{
			Role:      role,
			Content:   "mensagem " + string(rune('a'+i%26)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

// SampleHTML is a small sales page used by extraction tests. Its facts
// match what NewPageBuilder produces.
const SampleHTML = `<!DOCTYPE html>
<html>
<head>
<title>Curso Completo de Marketing Digital</title>
<meta name="description" content="Aprenda marketing digital do zero com aulas práticas e suporte dedicado para acelerar seus resultados.">
<script>var tracking = "ignore me";</script>
<style>.hero { color: red; }</style>
</head>
<body>
<h1>Curso Completo de Marketing Digital</h1>
<p>Aprenda marketing digital do zero com aulas práticas e suporte dedicado para acelerar seus resultados. Este curso reúne anos de experiência em campanhas reais.</p>
<ul>
<li>✅ Acesso vitalício a todas as aulas gravadas</li>
<li>✅ Suporte direto com o instrutor por 12 meses</li>
<li>✅ Certificado de conclusão reconhecido</li>
</ul>
<p>Por apenas R$ 497,00 você começa hoje.</p>
<p>Você conta com garantia de 7 dias: satisfação garantida ou seu dinheiro de volta.</p>
<p>Ideal para quem quer migrar de carreira para o digital.</p>
<a href="#comprar">QUERO COMEÇAR AGORA!</a>
</body>
</html>`
