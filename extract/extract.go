// Package extract fetches a sales page and distills it into the structured
// record the rest of the pipeline runs on. Parsing is heuristic by design:
// sales pages are template soup, so fields are recovered with targeted
// patterns over the flattened page text rather than a DOM walk. A field the
// heuristics cannot find is left empty; only an unreachable page is an
// error.
package extract

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/salespage/chatkit/core"
	"github.com/salespage/chatkit/logging"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxBodyBytes bounds how much of a page is read; sales pages past this
// point are testimonial walls and tracking pixels.
const maxBodyBytes = 4 << 20

// Options configure an HTTPExtractor.
type Options struct {
	// Client defaults to an http.Client with a 15s timeout.
	Client *http.Client
	// UserAgent defaults to a desktop browser string; many sales platforms
	// serve bot UAs an interstitial.
	UserAgent string
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// HTTPExtractor implements core.Extractor over plain HTTP fetches.
// Concurrent extractions of the same URL are coalesced into one fetch.
type HTTPExtractor struct {
	opts  Options
	group singleflight.Group
}

// New constructs an HTTPExtractor.
func New(optFns ...func(o *Options)) *HTTPExtractor {
	opts := Options{
		Client:    &http.Client{Timeout: 15 * time.Second},
		UserAgent: defaultUserAgent,
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &HTTPExtractor{opts: opts}
}

type extraction struct {
	data core.PageData
	text string
	html string
}

// Extract fetches url and returns the structured record plus the page's
// flattened raw text. Duplicate concurrent calls for one URL share a single
// fetch.
func (e *HTTPExtractor) Extract(ctx context.Context, url string) (core.PageData, string, error) {
	data, text, _, err := e.ExtractWithMarkup(ctx, url)
	return data, text, err
}

// ExtractWithMarkup is Extract plus the raw markup, which the validator
// uses as its third corroboration source.
func (e *HTTPExtractor) ExtractWithMarkup(ctx context.Context, url string) (core.PageData, string, string, error) {
	if strings.TrimSpace(url) == "" {
		return core.PageData{}, "", "", fmt.Errorf("empty url")
	}
	v, err, shared := e.group.Do(url, func() (any, error) {
		raw, err := e.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		text := Flatten(raw)
		return &extraction{data: ParsePage(url, raw, text), text: text, html: raw}, nil
	})
	if err != nil {
		return core.PageData{}, "", "", err
	}
	if shared {
		e.opts.Logger.Debug("extraction coalesced with in-flight fetch", "url", url)
	}
	ex := v.(*extraction)
	return ex.data, ex.text, ex.html, nil
}

func (e *HTTPExtractor) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", e.opts.UserAgent)
	resp, err := e.opts.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	e.opts.Logger.Info("page fetched", "url", url, "bytes", len(body))
	return string(body), nil
}

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	blockRe  = regexp.MustCompile(`(?i)</(p|div|li|h[1-6]|tr)>|<br\s*/?>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	blankRe  = regexp.MustCompile(`[ \t]+`)
	multiNL  = regexp.MustCompile(`\n{2,}`)
)

// Flatten strips scripts, styles and tags from markup and normalizes
// whitespace, yielding the "raw text" source used across the pipeline.
func Flatten(markup string) string {
	t := scriptRe.ReplaceAllString(markup, " ")
	// Block-level closers become newlines so line heuristics keep working.
	t = blockRe.ReplaceAllString(t, "\n")
	t = tagRe.ReplaceAllString(t, " ")
	t = html.UnescapeString(t)
	t = blankRe.ReplaceAllString(t, " ")
	var lines []string
	for _, l := range strings.Split(t, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return multiNL.ReplaceAllString(strings.Join(lines, "\n"), "\n")
}
