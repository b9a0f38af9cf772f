package fetcher

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// Document is the result of one successful fetch. It is built once and
// shared read-only by every heuristic of a URL; nothing may modify it after
// construction.
type Document struct {
	// URL is the URL the fetch was requested for.
	URL string
	// FinalURL is the URL of the response after redirects.
	FinalURL string
	// Host is the network location of URL. Resources are compared against
	// it to decide whether they are external.
	Host string
	// Status is the HTTP status of the final response.
	Status int
	// Body is the raw, UTF-8 decoded page body.
	Body []byte
	// DOM is the parsed body.
	DOM *goquery.Document
	// Redirects is the number of redirect responses followed before the
	// final one.
	Redirects int

	base *url.URL
}

// NewDocument parses body as the page served for rawURL.
func NewDocument(rawURL string, status int, body []byte, redirects int) (*Document, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse document url: %w", err)
	}
	dom, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not parse html: %w", err)
	}

	return &Document{
		URL:       rawURL,
		FinalURL:  rawURL,
		Host:      base.Host,
		Status:    status,
		Body:      body,
		DOM:       dom,
		Redirects: redirects,
		base:      base,
	}, nil
}

// Resolve resolves ref against the URL the document was requested for.
func (d *Document) Resolve(ref string) (*url.URL, error) {
	u, err := d.base.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %q: %w", ref, err)
	}

	return u, nil
}
