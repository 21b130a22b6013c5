package knowledge

import (
	"strings"
	"testing"

	"github.com/salespage/chatkit/core"
	"github.com/salespage/chatkit/internal/testutil"
)

// Interface compliance (compile-time assertion)
var _ core.EmbeddingProvider = (*HashEmbedding)(nil)

func TestIndex_AddDocumentAssignsMonotonicIDs(t *testing.T) {
	ix := New()
	d0 := ix.AddDocument(testutil.NewPageBuilder().Build(), "texto")
	d1 := ix.AddDocument(testutil.NewPageBuilder().Build(), "texto")
	if d0.ID != 0 || d1.ID != 1 {
		t.Fatalf("expected ids 0,1 got %d,%d", d0.ID, d1.ID)
	}
	if ix.Len() != 2 {
		t.Fatalf("expected 2 documents, got %d", ix.Len())
	}
}

func TestIndex_SearchRanksByOverlap(t *testing.T) {
	ix := New()
	ix.AddDocument(testutil.NewPageBuilder().
		Title("Curso de Marketing Digital").Build(),
		"curso completo de marketing digital com aulas práticas")
	ix.AddDocument(testutil.NewPageBuilder().
		Title("Planilha de Finanças Pessoais").Build(),
		"planilha para organizar finanças pessoais e orçamento doméstico")

	results := ix.Search("curso de marketing digital", 5)
	if len(results) == 0 {
		t.Fatalf("expected at least one result")
	}
	if results[0].Document.Metadata.Title != "Curso de Marketing Digital" {
		t.Fatalf("expected the marketing course ranked first, got %q",
			results[0].Document.Metadata.Title)
	}
	for _, r := range results {
		if r.Score <= 0.1 {
			t.Fatalf("results must exceed the minimum score, got %v", r.Score)
		}
	}
}

func TestIndex_SearchEdgeCases(t *testing.T) {
	ix := New()
	if got := ix.Search("qualquer coisa", 5); len(got) != 0 {
		t.Fatalf("empty index must yield no results")
	}

	ix.AddDocument(testutil.NewPageBuilder().Build(), "texto do produto")
	if got := ix.Search("", 5); len(got) != 0 {
		t.Fatalf("empty query must yield no results")
	}
	if got := ix.Search("texto", 0); len(got) != 0 {
		t.Fatalf("non-positive topK must yield no results")
	}
	// Zero token overlap stays below the threshold.
	if got := ix.Search("zzz www qqq", 5); len(got) != 0 {
		t.Fatalf("disjoint query must yield no results, got %v", got)
	}
}

func TestIndex_SearchCapsAtTopK(t *testing.T) {
	ix := New()
	for i := 0; i < 5; i++ {
		ix.AddDocument(testutil.NewPageBuilder().Build(), "curso de marketing digital")
	}
	results := ix.Search("curso de marketing digital", 3)
	if len(results) != 3 {
		t.Fatalf("expected topK=3 results, got %d", len(results))
	}
	// Equal scores: insertion order must hold.
	for i, r := range results {
		if r.Document.ID != i {
			t.Fatalf("ties must preserve insertion order, got id %d at rank %d", r.Document.ID, i)
		}
	}
}

func TestIndex_ContextForRendersBlocks(t *testing.T) {
	ix := New()
	ix.AddDocument(testutil.NewPageBuilder().
		Title("Curso de Marketing").
		Price("R$ 497,00").
		Benefits("Aulas gravadas", "Suporte", "Certificado", "Bônus extra").
		Build(),
		"curso de marketing digital")

	got := ix.ContextFor("curso de marketing", 2000)
	if !strings.Contains(got, "Produto: Curso de Marketing") {
		t.Fatalf("missing product line: %q", got)
	}
	if !strings.Contains(got, "Preço: R$ 497,00") {
		t.Fatalf("missing price line: %q", got)
	}
	if !strings.Contains(got, "Benefícios: Aulas gravadas, Suporte, Certificado") {
		t.Fatalf("expected first three benefits: %q", got)
	}
	if strings.Contains(got, "Bônus extra") {
		t.Fatalf("benefits must be capped at three: %q", got)
	}
}

func TestIndex_ContextForMissingFields(t *testing.T) {
	ix := New()
	ix.AddDocument(core.PageData{Title: "Produto misterioso"}, "produto misterioso sem detalhes")

	got := ix.ContextFor("produto misterioso", 2000)
	if !strings.Contains(got, "Preço: N/A") {
		t.Fatalf("missing price must render as N/A: %q", got)
	}
	if strings.Contains(got, "Benefícios:") || strings.Contains(got, "Descrição:") {
		t.Fatalf("absent fields must be omitted entirely: %q", got)
	}
}

func TestIndex_ContextForBudget(t *testing.T) {
	ix := New()
	page := testutil.NewPageBuilder().Title("Curso de Marketing Digital").Build()
	ix.AddDocument(page, "curso de marketing digital")
	ix.AddDocument(page, "curso de marketing digital")

	full := ix.ContextFor("curso de marketing digital", 10000)
	tight := ix.ContextFor("curso de marketing digital", len(full)/2)
	if tight == "" {
		t.Fatalf("one whole block should fit in half the budget")
	}
	if len(tight) >= len(full) {
		t.Fatalf("tight budget must drop the second block")
	}

	if got := ix.ContextFor("curso de marketing digital", 1); got != "" {
		t.Fatalf("blocks are whole or not at all, got %q", got)
	}
}

func TestIndex_ContextForNoMatches(t *testing.T) {
	ix := New()
	if got := ix.ContextFor("qualquer", 2000); got != "" {
		t.Fatalf("no matches must yield empty context, got %q", got)
	}
}

func TestIndex_EmbedderComputesVectorsOnInsert(t *testing.T) {
	ix := New(func(o *Options) { o.Embedder = NewHashEmbedding(8) })
	doc := ix.AddDocument(testutil.NewPageBuilder().Build(), "curso de marketing digital")

	vec := ix.Vector(doc.ID)
	if len(vec) != 8 {
		t.Fatalf("expected an 8-dimension vector, got %d", len(vec))
	}
	if ix.Vector(42) != nil {
		t.Fatalf("unknown ids must yield nil")
	}
}

func TestIndex_NoEmbedderNoVectors(t *testing.T) {
	ix := New()
	doc := ix.AddDocument(testutil.NewPageBuilder().Build(), "texto")
	if ix.Vector(doc.ID) != nil {
		t.Fatalf("without an embedder, vectors must be nil")
	}
}

func TestHashEmbedding_Deterministic(t *testing.T) {
	e := NewHashEmbedding(0)
	a := e.Embed("curso de marketing")
	b := e.Embed("curso de marketing")
	c := e.Embed("outro texto")
	if len(a) != e.Dimension() {
		t.Fatalf("expected %d dimensions, got %d", e.Dimension(), len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same text must embed identically")
		}
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("distinct texts should not collide")
	}
}
