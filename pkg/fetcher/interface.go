// Package fetcher retrieves a page once and hands the parsed result to every
// content based heuristic.
package fetcher

import "context"

// Fetcher issues a single GET for a URL. The deadline comes from ctx; callers
// pick a longer one for graph roots than for discovered links.
//
//go:generate mockgen -package mockfetcher -source=interface.go -destination=mock/mockfetcher.go *
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Document, error)
}
