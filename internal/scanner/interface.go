package scanner

import (
	"context"

	"phishgraph/pkg/domain"
)

// Scanner classifies URLs and builds link graphs. Only the methods of this
// interface decide whether a failure is fatal to a request.
//
//go:generate mockgen -package mockscanner -source=interface.go -destination=mock/mockscanner.go *
type Scanner interface {
	// Features extracts the signals of rawURL without classifying it. It
	// fails only for URLs that are not absolute http(s) URLs.
	Features(ctx context.Context, rawURL string) (domain.Signals, error)
	// Classify fetches and classifies rawURL. A root page that cannot be
	// fetched fails the call.
	Classify(ctx context.Context, rawURL string) (*domain.Classification, error)
	// Graph classifies rawURL and every link found on its page.
	Graph(ctx context.Context, rawURL string) (*domain.LinkGraph, error)
}
