// Package util holds small shared helpers. Lives in internal to avoid
// committing to public API stability prematurely.
package util

import (
	"bytes"
	"strings"
	"text/template"
)

// RenderTemplate executes text as a Go text/template against data. A fast
// path skips parsing when the text carries no template markers.
func RenderTemplate(text string, data any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New("reply").Funcs(template.FuncMap{
		"join": strings.Join,
		"default": func(defaultVal, val string) string {
			if val == "" {
				return defaultVal
			}
			return val
		},
	}).Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
