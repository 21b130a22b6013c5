package respond

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salespage/chatkit/core"
	"github.com/salespage/chatkit/internal/testutil"
)

func TestFallback_IntentRouting(t *testing.T) {
	page := testutil.NewPageBuilder().
		CTA("QUERO COMEÇAR AGORA!").
		Build()

	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"price", "quanto custa o curso?", "R$ 497,00"},
		{"benefits", "quais os benefícios?", "Acesso vitalício"},
		{"guarantee", "tem garantia?", "garantia de 7 dias"},
		{"purchase", "onde posso comprar?", "QUERO COMEÇAR AGORA!"},
		{"greeting", "olá, bom dia", "Como posso ajudar"},
		{"affirm", "sim, entendi", "Quer saber mais"},
		{"negate", "não, obrigado", "Sem problemas"},
		{"generic", "qual o horóscopo de hoje?", "preço, benefícios e garantia"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fallback(tt.question, page)
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestFallback_NeverFabricates(t *testing.T) {
	empty := core.PageData{URL: "https://example.com/x"}

	got := Fallback("quanto custa?", empty)
	assert.NotContains(t, got, "R$")

	got = Fallback("tem garantia?", empty)
	assert.Contains(t, got, "página do produto")

	got = Fallback("quais os benefícios?", empty)
	assert.Contains(t, got, "página do produto")
}

func TestFallback_BenefitsCappedAtThree(t *testing.T) {
	page := testutil.NewPageBuilder().
		Benefits("Um benefício longo", "Outro benefício", "Terceiro item", "Quarto item").
		Build()

	got := Fallback("quais as vantagens?", page)
	assert.Contains(t, got, "Terceiro item")
	assert.NotContains(t, got, "Quarto item")
}

func TestFallback_WholeWordMatching(t *testing.T) {
	page := testutil.NewPageBuilder().Build()

	// "simples" must not trigger the affirmation intent via "sim".
	got := Fallback("é simples de usar?", page)
	assert.False(t, strings.Contains(got, "Quer saber mais"), "got: %s", got)
}
