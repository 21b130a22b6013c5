package core

import "context"

// Extractor turns a sales-page URL into a structured record plus the page's
// flattened raw text. Implementations should degrade to a minimal record
// rather than fail hard when a page resists parsing; an error is reserved
// for not being able to reach the page at all.
type Extractor interface {
	Extract(ctx context.Context, url string) (PageData, string, error)
}
