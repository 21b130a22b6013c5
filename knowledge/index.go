package knowledge

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/salespage/chatkit/core"
	"github.com/salespage/chatkit/internal/textutil"
	"github.com/salespage/chatkit/logging"
)

// Options configure an Index.
type Options struct {
	// MinScore excludes documents at or below this similarity from results.
	MinScore float64
	// Embedder, when set, computes an embedding for every document on
	// insert, retrievable via Vector. Not consulted for ranking.
	Embedder core.EmbeddingProvider
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Index is an in-memory, append-only document collection with token-overlap
// retrieval. Safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	docs    []core.Document
	vectors [][]float32 // parallel to docs; nil entries when no Embedder
	opts    Options
}

// New constructs an empty Index. Default minimum score is 0.1.
func New(optFns ...func(o *Options)) *Index {
	opts := Options{
		MinScore: 0.1,
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Index{opts: opts}
}

// AddDocument stores a page snapshot under the next monotonic id. Never
// rejects input; an empty record is indexable (it will simply never rank).
func (ix *Index) AddDocument(metadata core.PageData, rawText string) core.Document {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	doc := core.Document{ID: len(ix.docs), Metadata: metadata, RawText: rawText}
	ix.docs = append(ix.docs, doc)
	var vec []float32
	if ix.opts.Embedder != nil {
		vec = ix.opts.Embedder.Embed(doc.Metadata.Searchable() + " " + doc.RawText)
	}
	ix.vectors = append(ix.vectors, vec)
	ix.opts.Logger.Debug("document indexed", "id", doc.ID, "title", metadata.Title)
	return doc
}

// Vector returns the embedding computed for a document at insert time, or
// nil when the id is unknown or no Embedder is configured.
func (ix *Index) Vector(id int) []float32 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if id < 0 || id >= len(ix.vectors) {
		return nil
	}
	return ix.vectors[id]
}

// Len reports the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Search ranks documents by Jaccard similarity between the query's token
// set and each document's searchable text (title, description, benefits,
// raw text). Documents at or below MinScore are excluded. Results are
// ordered by descending score with ties broken by insertion order, at most
// topK of them. An empty query or empty index yields no results.
func (ix *Index) Search(query string, topK int) []core.SearchResult {
	if strings.TrimSpace(query) == "" || topK <= 0 {
		return nil
	}
	queryTokens := textutil.Tokens(query)
	if len(queryTokens) == 0 {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	results := make([]core.SearchResult, 0, len(ix.docs))
	for _, doc := range ix.docs {
		combined := doc.Metadata.Searchable() + " " + doc.RawText
		score := textutil.Jaccard(queryTokens, textutil.Tokens(combined))
		if score > ix.opts.MinScore {
			results = append(results, core.SearchResult{Document: doc, Score: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// ContextFor assembles retrieval context for a query: the top two matches
// rendered as structured blocks, concatenated in score order while the
// budget holds. Blocks are included whole or not at all; a block that would
// exceed maxLength ends assembly.
func (ix *Index) ContextFor(query string, maxLength int) string {
	matches := ix.Search(query, 2)
	if len(matches) == 0 {
		return ""
	}
	var blocks []string
	used := 0
	for _, m := range matches {
		block := renderBlock(m.Document.Metadata)
		if used+len(block) > maxLength {
			break
		}
		blocks = append(blocks, block)
		used += len(block)
	}
	return strings.Join(blocks, "\n")
}

// renderBlock formats a document's metadata as the Produto/Preço/
// Benefícios/Descrição context block fed to the generator.
func renderBlock(md core.PageData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Produto: %s\n", orNA(md.Title))
	fmt.Fprintf(&b, "Preço: %s\n", orNA(md.Price))
	if len(md.Benefits) > 0 {
		top := md.Benefits
		if len(top) > 3 {
			top = top[:3]
		}
		fmt.Fprintf(&b, "Benefícios: %s\n", strings.Join(top, ", "))
	}
	if md.Description != "" {
		desc := md.Description
		if r := []rune(desc); len(r) > 200 {
			desc = string(r[:200]) + "..."
		}
		fmt.Fprintf(&b, "Descrição: %s\n", desc)
	}
	b.WriteString("\n")
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
