package fetcher

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"phishgraph/pkg/logger"
	"phishgraph/pkg/metrics"
	"phishgraph/pkg/serrors"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// ErrTooManyRedirects is returned when a page redirects more than MaxRedirects times.
var ErrTooManyRedirects = errors.New("too many redirects")

// Options configures HTTPFetcher.
type Options struct {
	// UserAgent is sent with every request.
	UserAgent string
	// MaxRedirects caps the redirect chain, 10 when zero.
	MaxRedirects int
	// MaxBodyBytes caps how much of a body is read. Zero means no cap.
	MaxBodyBytes int64
	// Transport overrides the round tripper, mainly for tests.
	Transport http.RoundTripper
	// Metrics receives fetch latencies, may be nil.
	Metrics *metrics.Collectors
}

// HTTPFetcher implements Fetcher over net/http. It is safe for concurrent use.
type HTTPFetcher struct {
	client  *http.Client
	opts    Options
	metrics *metrics.Collectors
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport:     transport,
			CheckRedirect: redirectPolicy(opts.MaxRedirects),
		},
		opts:    opts,
		metrics: opts.Metrics,
	}
}

const defaultMaxRedirects = 10

func redirectPolicy(maxHops int) func(*http.Request, []*http.Request) error {
	if maxHops <= 0 {
		maxHops = defaultMaxRedirects
	}

	return func(_ *http.Request, via []*http.Request) error {
		if len(via) > maxHops {
			return ErrTooManyRedirects
		}

		return nil
	}
}

// Fetch performs exactly one GET for rawURL, following redirects. A transport
// failure or a non-2xx status is returned as an error; nothing is retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	start := time.Now()
	doc, err := f.fetch(ctx, rawURL)
	f.metrics.ObserveFetch(time.Since(start), err)
	if err != nil {
		logger.Debug(ctx, "fetch failed", zap.String("url", rawURL), zap.Error(err))

		return nil, err
	}

	return doc, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, rawURL string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "could not create request")
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serrors.With(serrors.ErrUnavailable, "unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	var body io.Reader = resp.Body
	if f.opts.MaxBodyBytes > 0 {
		body = io.LimitReader(body, f.opts.MaxBodyBytes)
	}
	utf8Body, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not detect charset")
	}
	b, err := io.ReadAll(utf8Body)
	if err != nil {
		return nil, transportError(ctx, err)
	}

	doc, err := NewDocument(rawURL, resp.StatusCode, b, redirectCount(resp))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not build document")
	}
	doc.FinalURL = resp.Request.URL.String()

	return doc, nil
}

// redirectCount walks back the chain of responses that led to resp.
func redirectCount(resp *http.Response) int {
	n := 0
	for r := resp.Request; r != nil && r.Response != nil; r = r.Response.Request {
		n++
	}

	return n
}

func transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return serrors.Wrap(serrors.ErrTimeout, err, "fetch timed out")
	}

	return serrors.Wrap(serrors.ErrUnavailable, err, "fetch failed")
}
