package fetcher_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"phishgraph/pkg/fetcher"
	"phishgraph/pkg/logger"
	"phishgraph/pkg/serrors"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func newRedirectServer(t *testing.T, hops int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/hop/", func(w http.ResponseWriter, r *http.Request) {
		var n int
		_, _ = fmt.Sscanf(r.URL.Path, "/hop/%d", &n)
		if n >= hops {
			http.Redirect(w, r, "/page", http.StatusFound)

			return
		}
		http.Redirect(w, r, fmt.Sprintf("/hop/%d", n+1), http.StatusFound)
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><a href="mailto:x@example.com">mail</a></body></html>`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	mux.HandleFunc("/latin1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><body><p>caf\xe9</p></body></html>"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := newRedirectServer(t, 2)
	f := fetcher.NewHTTPFetcher(fetcher.Options{UserAgent: "test"})

	doc, err := f.Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, doc.Status)
	require.Equal(t, 0, doc.Redirects)
	require.Equal(t, 1, doc.DOM.Find("a").Length())
	require.Contains(t, string(doc.Body), "mailto:")
	require.Equal(t, srv.Listener.Addr().String(), doc.Host)
}

func TestHTTPFetcher_CountsRedirects(t *testing.T) {
	srv := newRedirectServer(t, 3)
	f := fetcher.NewHTTPFetcher(fetcher.Options{})

	// /hop/1 -> /hop/2 -> /hop/3 -> /page
	doc, err := f.Fetch(context.Background(), srv.URL+"/hop/1")
	require.NoError(t, err)
	require.Equal(t, 3, doc.Redirects)
	require.Equal(t, srv.URL+"/page", doc.FinalURL)
	require.Equal(t, srv.URL+"/hop/1", doc.URL)
}

func TestHTTPFetcher_TooManyRedirects(t *testing.T) {
	srv := newRedirectServer(t, 10)
	f := fetcher.NewHTTPFetcher(fetcher.Options{MaxRedirects: 2})

	_, err := f.Fetch(context.Background(), srv.URL+"/hop/1")
	require.ErrorIs(t, err, fetcher.ErrTooManyRedirects)
	require.ErrorIs(t, err, serrors.ErrUnavailable)
}

func TestHTTPFetcher_NonSuccessStatus(t *testing.T) {
	srv := newRedirectServer(t, 0)
	f := fetcher.NewHTTPFetcher(fetcher.Options{})

	_, err := f.Fetch(context.Background(), srv.URL+"/missing")
	require.ErrorIs(t, err, serrors.ErrUnavailable)
	require.Contains(t, err.Error(), "404")
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	srv := newRedirectServer(t, 0)
	f := fetcher.NewHTTPFetcher(fetcher.Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Fetch(ctx, srv.URL+"/slow")
	require.ErrorIs(t, err, serrors.ErrTimeout)
	require.Less(t, time.Since(start), time.Second)
}

func TestHTTPFetcher_Unreachable(t *testing.T) {
	srv := newRedirectServer(t, 0)
	addr := srv.URL
	srv.Close()

	_, err := fetcher.NewHTTPFetcher(fetcher.Options{}).Fetch(context.Background(), addr+"/page")
	require.ErrorIs(t, err, serrors.ErrUnavailable)
}

func TestHTTPFetcher_DecodesCharset(t *testing.T) {
	srv := newRedirectServer(t, 0)
	f := fetcher.NewHTTPFetcher(fetcher.Options{})

	doc, err := f.Fetch(context.Background(), srv.URL+"/latin1")
	require.NoError(t, err)
	require.Equal(t, "café", doc.DOM.Find("p").Text())
}

func TestHTTPFetcher_BodyCap(t *testing.T) {
	srv := newRedirectServer(t, 0)
	f := fetcher.NewHTTPFetcher(fetcher.Options{MaxBodyBytes: 20})

	doc, err := f.Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	require.Len(t, doc.Body, 20)
}

func TestDocument_Resolve(t *testing.T) {
	doc, err := fetcher.NewDocument("https://example.com/a/b.html", 200, []byte("<html></html>"), 0)
	require.NoError(t, err)
	require.Equal(t, "example.com", doc.Host)

	u, err := doc.Resolve("../img/logo.png")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/img/logo.png", u.String())

	u, err = doc.Resolve("//cdn.example.net/x.js")
	require.NoError(t, err)
	require.Equal(t, "cdn.example.net", u.Host)

	_, err = doc.Resolve("http://[::1")
	require.Error(t, err)
}
