package extract

import (
	"regexp"
	"strings"

	"github.com/salespage/chatkit/core"
)

var (
	titleTagRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	h1Re       = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	ogTitleRe  = regexp.MustCompile(`(?is)<meta[^>]+property=["']og:title["'][^>]+content=["']([^"']+)["']`)
	metaDescRe = regexp.MustCompile(`(?is)<meta[^>]+name=["']description["'][^>]+content=["']([^"']+)["']`)
	ogDescRe   = regexp.MustCompile(`(?is)<meta[^>]+property=["']og:description["'][^>]+content=["']([^"']+)["']`)

	priceRe  = regexp.MustCompile(`(?i)(?:R\$|US\$|\$|€)\s*\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?`)
	bulletRe = regexp.MustCompile(`(?m)^[\s]*[✅✓•→▶-]\s*(.{20,200})$`)

	guaranteeRe = regexp.MustCompile(`(?i)(?:garantia\s+(?:incondicional\s+)?de\s+\d+\s+dias?|\d+\s+dias?\s+de\s+garantia|reembolso\s+em\s+\d+\s+dias?|satisfação\s+garantida|risco\s+zero|\d+[\s-]*day\s+(?:money[\s-]*back\s+)?guarantee)`)
	audienceRe  = regexp.MustCompile(`(?i)(?:ideal\s+para|para\s+quem|se\s+você\s+é|indicado\s+para|for\s+(?:those|people)\s+who)\s+([^.\n]{10,100})`)
	ctaRe       = regexp.MustCompile(`(?i)\b((?:QUERO|COMPRE|ADQUIRA|GARANTA|BUY|GET)\s[^!\n.]{5,60}!?)`)
	quoteRe     = regexp.MustCompile(`[“"]([^”"]{50,400})[”"]`)
)

// productTypes maps a product type label to the keywords that imply it.
// Order matters: first hit wins, so more specific types come first.
var productTypes = []struct {
	label    string
	keywords []string
}{
	{"curso online", []string{"curso", "treinamento", "aulas", "módulos", "course"}},
	{"livro", []string{"livro", "ebook", "e-book", "páginas", "book"}},
	{"software", []string{"software", "aplicativo", "sistema", "app "}},
	{"consultoria", []string{"consultoria", "mentoria", "coaching"}},
	{"produto físico", []string{"frete", "envio", "correios", "entrega em"}},
}

// ParsePage recovers the structured record from a page's markup and its
// flattened text. Fields the heuristics cannot find stay empty; the
// validator downstream treats an empty field as "the page does not make
// this claim", so nothing is ever fabricated here.
func ParsePage(url, markup, text string) core.PageData {
	return core.PageData{
		URL:            url,
		Title:          extractTitle(markup, text),
		Description:    extractDescription(markup, text),
		Price:          strings.TrimSpace(priceRe.FindString(text)),
		Benefits:       extractBenefits(text),
		CTA:            strings.TrimSpace(ctaRe.FindString(text)),
		Guarantee:      strings.TrimSpace(guaranteeRe.FindString(text)),
		TargetAudience: firstGroup(audienceRe, text),
		Testimonials:   extractTestimonials(text),
		ProductType:    extractProductType(text),
	}
}

func extractTitle(markup, text string) string {
	for _, re := range []*regexp.Regexp{titleTagRe, h1Re, ogTitleRe} {
		if m := re.FindStringSubmatch(markup); m != nil {
			if t := strings.TrimSpace(tagRe.ReplaceAllString(m[1], " ")); len(t) > 10 {
				return t
			}
		}
	}
	// First significant line of the text.
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if n := len([]rune(line)); n > 20 && n < 200 {
			return line
		}
	}
	return ""
}

func extractDescription(markup, text string) string {
	for _, re := range []*regexp.Regexp{metaDescRe, ogDescRe} {
		if m := re.FindStringSubmatch(markup); m != nil {
			if d := strings.TrimSpace(m[1]); len(d) > 50 {
				return d
			}
		}
	}
	// First paragraph-sized line that is not a price banner.
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if n := len([]rune(line)); n > 100 && n < 500 && !strings.HasPrefix(line, "R$") {
			return line
		}
	}
	return ""
}

var benefitSectionKeywords = []string{"benefícios", "vantagens", "você vai", "você terá", "what you get"}

func extractBenefits(text string) []string {
	var benefits []string
	seen := make(map[string]bool)
	add := func(b string) {
		b = strings.TrimSpace(b)
		if b != "" && !seen[b] && len(benefits) < 5 {
			seen[b] = true
			benefits = append(benefits, b)
		}
	}
	for _, m := range bulletRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	if len(benefits) > 0 {
		return benefits
	}
	// No bullets: take the lines following a benefits-section heading.
	inSection := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		if !inSection {
			for _, kw := range benefitSectionKeywords {
				if strings.Contains(lower, kw) {
					inSection = true
					break
				}
			}
			continue
		}
		if n := len([]rune(line)); n > 20 && n < 200 {
			add(line)
			if len(benefits) >= 5 {
				break
			}
		}
	}
	return benefits
}

func extractTestimonials(text string) []string {
	var out []string
	for _, m := range quoteRe.FindAllStringSubmatch(text, -1) {
		out = append(out, strings.TrimSpace(m[1]))
		if len(out) == 3 {
			break
		}
	}
	return out
}

func extractProductType(text string) string {
	lower := strings.ToLower(text)
	for _, pt := range productTypes {
		for _, kw := range pt.keywords {
			if strings.Contains(lower, kw) {
				return pt.label
			}
		}
	}
	return "produto digital"
}

func firstGroup(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
