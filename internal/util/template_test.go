package util

import (
	"testing"
)

func TestRenderTemplate_PlainTextFastPath(t *testing.T) {
	got, err := RenderTemplate("sem marcadores", nil)
	if err != nil || got != "sem marcadores" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestRenderTemplate_Fields(t *testing.T) {
	data := struct {
		Price string
		Items []string
	}{Price: "R$ 497,00", Items: []string{"a", "b"}}

	got, err := RenderTemplate(`{{.Price}}: {{join .Items ", "}}`, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "R$ 497,00: a, b" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderTemplate_DefaultHelper(t *testing.T) {
	data := struct{ Title string }{}
	got, err := RenderTemplate(`{{default "produto" .Title}}`, data)
	if err != nil || got != "produto" {
		t.Fatalf("got %q, %v", got, err)
	}

	data.Title = "Curso"
	got, _ = RenderTemplate(`{{default "produto" .Title}}`, data)
	if got != "Curso" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderTemplate_ParseError(t *testing.T) {
	if _, err := RenderTemplate("{{.Unclosed", nil); err == nil {
		t.Fatalf("expected parse error")
	}
}
