package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salespage/chatkit/core"
	"github.com/salespage/chatkit/internal/testutil"
)

// Interface compliance (compile-time assertion)
var _ core.Extractor = (*HTTPExtractor)(nil)

func TestFlatten(t *testing.T) {
	text := Flatten(testutil.SampleHTML)

	require.NotContains(t, text, "ignore me", "script bodies must be stripped")
	require.NotContains(t, text, ".hero", "style bodies must be stripped")
	require.NotContains(t, text, "<", "tags must be stripped")
	require.Contains(t, text, "R$ 497,00")
	require.Contains(t, text, "garantia de 7 dias")
	// Block closers become line breaks so line heuristics work.
	require.True(t, strings.Count(text, "\n") > 3, "expected multiple lines, got %q", text)
}

func TestFlatten_UnescapesEntities(t *testing.T) {
	require.Equal(t, "Tudo & mais por R$ 10", Flatten("<p>Tudo &amp; mais por R$ 10</p>"))
}

func TestParsePage_SampleHTML(t *testing.T) {
	text := Flatten(testutil.SampleHTML)
	data := ParsePage("https://example.com/curso", testutil.SampleHTML, text)

	require.Equal(t, "https://example.com/curso", data.URL)
	require.Equal(t, "Curso Completo de Marketing Digital", data.Title)
	require.Contains(t, data.Description, "Aprenda marketing digital do zero")
	require.Equal(t, "R$ 497,00", data.Price)
	require.NotEmpty(t, data.Benefits)
	require.Contains(t, data.Benefits[0], "Acesso vitalício")
	require.Contains(t, strings.ToLower(data.Guarantee), "garantia")
	require.Contains(t, data.CTA, "QUERO")
	require.Contains(t, data.TargetAudience, "quer migrar de carreira")
	require.Equal(t, "curso online", data.ProductType)
}

func TestParsePage_EmptyFieldsStayEmpty(t *testing.T) {
	markup := "<html><body><p>oi</p></body></html>"
	data := ParsePage("https://example.com/x", markup, Flatten(markup))

	require.Empty(t, data.Price)
	require.Empty(t, data.Benefits)
	require.Empty(t, data.Guarantee)
	require.Empty(t, data.CTA)
	require.Empty(t, data.Testimonials)
}

func TestParsePage_ProductTypes(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"um curso com aulas e módulos", "curso online"},
		{"baixe o ebook agora", "livro"},
		{"nosso software resolve tudo", "software"},
		{"mentoria individual comigo", "consultoria"},
		{"frete grátis pelos correios", "produto físico"},
		{"oferta imperdível", "produto digital"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, extractProductType(tt.text), "text: %s", tt.text)
	}
}

func TestParsePage_PriceFormats(t *testing.T) {
	for _, s := range []string{"R$ 497,00", "R$ 1.997,00", "US$ 49", "€ 99,90"} {
		data := ParsePage("u", "", "o valor é "+s+" à vista")
		require.Equal(t, s, data.Price, "price: %s", s)
	}
}

func TestExtract_EndToEnd(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(testutil.SampleHTML))
	}))
	defer srv.Close()

	e := New()
	data, text, err := e.Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "Curso Completo de Marketing Digital", data.Title)
	require.Contains(t, text, "R$ 497,00")
	require.Equal(t, int32(1), hits.Load())
}

func TestExtract_CoalescesConcurrentFetches(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(testutil.SampleHTML))
	}))
	defer srv.Close()

	e := New()
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := e.Extract(context.Background(), srv.URL)
			require.NoError(t, err)
		}()
	}
	// Give the goroutines a moment to pile onto the in-flight fetch.
	for hits.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()
	require.Equal(t, int32(1), hits.Load(), "concurrent extractions must share one fetch")
}

func TestExtract_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	e := New()
	_, _, err := e.Extract(context.Background(), srv.URL)
	require.Error(t, err)

	_, _, err = e.Extract(context.Background(), "  ")
	require.Error(t, err)
}
