package registration_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"phishgraph/pkg/logger"
	"phishgraph/pkg/registration"
	"phishgraph/pkg/serrors"

	whoisparser "github.com/likexian/whois-parser"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

type fakeWhois struct {
	raw     string
	err     error
	delay   time.Duration
	queried atomic.Value
}

func (f *fakeWhois) Whois(domain string, _ ...string) (string, error) {
	f.queried.Store(domain)
	time.Sleep(f.delay)

	return f.raw, f.err
}

func parseAs(info whoisparser.WhoisInfo, err error) registration.ParseFunc {
	return func(string) (whoisparser.WhoisInfo, error) { return info, err }
}

func TestApexDomain(t *testing.T) {
	tests := []struct {
		host string
		want string
		ok   bool
	}{
		{"www.example.com", "example.com", true},
		{"a.b.example.co.uk", "example.co.uk", true},
		{"Login.Example.COM:8443", "example.com", true},
		{"bücher.example.de", "example.de", true},
		{"münchen.de", "xn--mnchen-3ya.de", true},
		{"192.168.1.1", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, err := registration.ApexDomain(tt.host)
		if !tt.ok {
			require.ErrorIs(t, err, serrors.ErrBadRequest, tt.host)

			continue
		}
		require.NoError(t, err, tt.host)
		require.Equal(t, tt.want, got)
	}
}

func TestWhoisResolver_Lookup(t *testing.T) {
	client := &fakeWhois{raw: "raw answer"}
	r := registration.NewWhoisResolver(registration.WhoisOptions{
		Client: client,
		Parse: parseAs(whoisparser.WhoisInfo{Domain: &whoisparser.Domain{
			Domain:      "example.com",
			CreatedDate: "1995-08-14T04:00:00Z",
		}}, nil),
	})

	rec, err := r.Lookup(context.Background(), "www.example.com")
	require.NoError(t, err)
	require.Equal(t, "example.com", client.queried.Load())
	require.Equal(t, "www.example.com", rec.Host)
	require.Equal(t, "example.com", rec.Queried)
	require.Equal(t, "example.com", rec.DomainName)
	require.Equal(t, 1995, rec.CreatedAt.Year())
	require.True(t, rec.HasCreationDate())
}

func TestWhoisResolver_MissingFields(t *testing.T) {
	r := registration.NewWhoisResolver(registration.WhoisOptions{
		Client: &fakeWhois{},
		Parse:  parseAs(whoisparser.WhoisInfo{}, nil),
	})

	rec, err := r.Lookup(context.Background(), "example.com")
	require.NoError(t, err)
	require.Empty(t, rec.DomainName)
	require.False(t, rec.HasCreationDate())

	r = registration.NewWhoisResolver(registration.WhoisOptions{
		Client: &fakeWhois{},
		Parse: parseAs(whoisparser.WhoisInfo{Domain: &whoisparser.Domain{
			Domain:      "example.com",
			CreatedDate: "sometime last year",
		}}, nil),
	})
	rec, err = r.Lookup(context.Background(), "example.com")
	require.NoError(t, err)
	require.False(t, rec.HasCreationDate())
}

func TestWhoisResolver_Errors(t *testing.T) {
	netErr := errors.New("dial tcp: connection refused")
	r := registration.NewWhoisResolver(registration.WhoisOptions{Client: &fakeWhois{err: netErr}})
	_, err := r.Lookup(context.Background(), "example.com")
	require.ErrorIs(t, err, netErr)
	require.ErrorIs(t, err, serrors.ErrUnavailable)

	parseErr := errors.New("domain is not found")
	r = registration.NewWhoisResolver(registration.WhoisOptions{
		Client: &fakeWhois{raw: "No match"},
		Parse:  parseAs(whoisparser.WhoisInfo{}, parseErr),
	})
	_, err = r.Lookup(context.Background(), "example.com")
	require.ErrorIs(t, err, parseErr)

	r = registration.NewWhoisResolver(registration.WhoisOptions{
		Client: &fakeWhois{raw: "garbage"},
		Parse: func(string) (whoisparser.WhoisInfo, error) {
			panic("index out of range")
		},
	})
	_, err = r.Lookup(context.Background(), "example.com")
	require.ErrorIs(t, err, serrors.ErrUnavailable)
	require.Contains(t, err.Error(), "panicked")
}

func TestWhoisResolver_Timeout(t *testing.T) {
	r := registration.NewWhoisResolver(registration.WhoisOptions{
		Client: &fakeWhois{delay: time.Second},
		Parse:  parseAs(whoisparser.WhoisInfo{}, nil),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Lookup(ctx, "example.com")
	require.ErrorIs(t, err, serrors.ErrTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}
