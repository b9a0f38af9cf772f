package features

import (
	"context"
	"time"

	"phishgraph/pkg/domain"
	"phishgraph/pkg/fetcher"
	"phishgraph/pkg/registration"
)

// Session is an Extractor bound to the caches of one graph build: every URL
// is fetched at most once and every host looked up at most once for as long
// as the session lives. Sessions are safe for concurrent use and must not
// outlive the build they were created for.
type Session struct {
	extractor     *Extractor
	documents     *fetcher.Cache
	registrations *registration.Cache
}

// NewSession starts a session with empty caches.
func (e *Extractor) NewSession() *Session {
	return &Session{
		extractor:     e,
		documents:     fetcher.NewCache(e.fetcher),
		registrations: registration.NewCache(e.resolver),
	}
}

// Fetch returns the document of rawURL, fetching it on first use. Extract
// calls for the same URL reuse it.
func (s *Session) Fetch(ctx context.Context, rawURL string) (*fetcher.Document, error) {
	return s.documents.Fetch(ctx, rawURL)
}

// Lookup returns the registration record of host, resolving it on first use.
func (s *Session) Lookup(ctx context.Context, host string) (*domain.RegistrationRecord, error) {
	return s.registrations.Lookup(ctx, host)
}

// Extract computes the signals of rawURL through the session caches.
func (s *Session) Extract(ctx context.Context, rawURL string) domain.Signals {
	return s.extractor.extract(ctx, rawURL, s.documents, s.registrations, s.extractor.opts.FetchTimeout)
}

// ExtractWithin is Extract with the page fetch bounded by fetchTimeout
// instead of the extractor's FetchTimeout. Zero leaves the fetch bounded by
// ctx only.
func (s *Session) ExtractWithin(ctx context.Context, rawURL string, fetchTimeout time.Duration) domain.Signals {
	return s.extractor.extract(ctx, rawURL, s.documents, s.registrations, fetchTimeout)
}
