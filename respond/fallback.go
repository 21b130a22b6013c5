package respond

import (
	"strings"

	"github.com/salespage/chatkit/core"
	"github.com/salespage/chatkit/internal/textutil"
	"github.com/salespage/chatkit/internal/util"
)

// pageView is the template data for fallback replies. Benefits are capped
// so a template never dumps the whole list.
type pageView struct {
	Title     string
	Price     string
	Guarantee string
	CTA       string
	URL       string
	Benefits  []string
}

// intent pairs trigger keywords with a reply template. Single-word
// keywords match whole tokens of the question; multi-word keywords match
// as substrings. First intent with a hit wins, so specific intents come
// before conversational ones.
type intent struct {
	name     string
	keywords []string
	template string
}

var intents = []intent{
	{
		name:     "price",
		keywords: []string{"preço", "preco", "valor", "custa", "investimento", "quanto", "price", "cost"},
		template: `{{if .Price}}O investimento é de {{.Price}}.{{if .Guarantee}} E você conta com {{.Guarantee}}, então o risco é zero.{{end}}{{else}}O valor exato está na página do produto; posso ajudar com mais alguma coisa?{{end}}`,
	},
	{
		name:     "benefits",
		keywords: []string{"benefício", "beneficio", "benefícios", "beneficios", "vantagem", "vantagens", "inclui", "recebo", "benefit"},
		template: `{{if .Benefits}}Os principais benefícios são: {{join .Benefits ", "}}.{{else}}Tudo o que está incluído você encontra descrito na página do produto.{{end}}`,
	},
	{
		name:     "guarantee",
		keywords: []string{"garantia", "reembolso", "risco", "seguro", "guarantee", "refund"},
		template: `{{if .Guarantee}}Sim! Você conta com {{.Guarantee}}. Se não ficar satisfeito, é só pedir o reembolso.{{else}}As condições de garantia estão descritas na página do produto.{{end}}`,
	},
	{
		name:     "purchase",
		keywords: []string{"comprar", "adquirir", "link", "onde", "quero", "buy"},
		template: `{{if .CTA}}{{.CTA}} {{end}}Para garantir o seu, basta acessar {{default "a página do produto" .URL}} e concluir a compra.`,
	},
	{
		name:     "greeting",
		keywords: []string{"olá", "ola", "oi", "bom dia", "boa tarde", "boa noite", "hello", "hi"},
		template: `Olá! Sou consultor do {{default "produto" .Title}}. Como posso ajudar você hoje?`,
	},
	{
		name:     "affirm",
		keywords: []string{"sim", "ok", "certo", "entendi", "perfeito"},
		template: `Ótimo! Quer saber mais sobre o investimento, os benefícios ou a garantia?`,
	},
	{
		name:     "negate",
		keywords: []string{"não", "nao", "no"},
		template: `Sem problemas. Se surgir qualquer dúvida sobre o {{default "produto" .Title}}, estou à disposição.`,
	},
}

const genericTemplate = `Essa informação específica não consta na página do {{default "produto" .Title}}, mas posso falar sobre preço, benefícios e garantia. O que prefere?`

// Fallback returns a deterministic reply for the question built only from
// the page's extracted facts. It never errors and never fabricates a
// claim: templates fall back to pointing at the page when a fact is
// missing.
func Fallback(question string, page core.PageData) string {
	view := pageView{
		Title:     page.Title,
		Price:     page.Price,
		Guarantee: page.Guarantee,
		CTA:       page.CTA,
		URL:       page.URL,
		Benefits:  page.Benefits,
	}
	if len(view.Benefits) > 3 {
		view.Benefits = view.Benefits[:3]
	}

	lower := strings.ToLower(question)
	tokens := textutil.Tokens(question)
	tmpl := genericTemplate
	for _, in := range intents {
		if in.matches(lower, tokens) {
			tmpl = in.template
			break
		}
	}

	out, err := util.RenderTemplate(tmpl, view)
	if err != nil {
		return "Posso ajudar com informações sobre preço, benefícios e garantia do produto."
	}
	return out
}

func (in intent) matches(lower string, tokens map[string]struct{}) bool {
	for _, kw := range in.keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(lower, kw) {
				return true
			}
		} else if _, ok := tokens[kw]; ok {
			return true
		}
	}
	return false
}
