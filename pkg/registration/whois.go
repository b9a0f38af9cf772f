package registration

import (
	"context"
	"net"
	"strings"
	"time"

	"phishgraph/pkg/domain"
	"phishgraph/pkg/logger"
	"phishgraph/pkg/metrics"
	"phishgraph/pkg/serrors"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"go.uber.org/zap"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// WhoisClient is the part of *whois.Client the resolver needs.
type WhoisClient interface {
	Whois(domain string, servers ...string) (string, error)
}

// ParseFunc turns a raw WHOIS answer into structured data.
type ParseFunc func(text string) (whoisparser.WhoisInfo, error)

// WhoisOptions configures WhoisResolver.
type WhoisOptions struct {
	// Timeout bounds the WHOIS connection itself. The caller's context
	// bounds the whole lookup independently.
	Timeout time.Duration
	// Client overrides the WHOIS client, mainly for tests.
	Client WhoisClient
	// Parse overrides the WHOIS parser, mainly for tests.
	Parse ParseFunc
	// Metrics receives lookup latencies, may be nil.
	Metrics *metrics.Collectors
}

// WhoisResolver implements Resolver with a WHOIS query for the registrable
// domain of the host.
type WhoisResolver struct {
	client  WhoisClient
	parse   ParseFunc
	metrics *metrics.Collectors
}

// NewWhoisResolver creates a WhoisResolver.
func NewWhoisResolver(opts WhoisOptions) *WhoisResolver {
	client := opts.Client
	if client == nil {
		c := whois.NewClient()
		if opts.Timeout > 0 {
			c.SetTimeout(opts.Timeout)
		}
		client = c
	}
	parse := opts.Parse
	if parse == nil {
		parse = whoisparser.Parse
	}

	return &WhoisResolver{client: client, parse: parse, metrics: opts.Metrics}
}

// ApexDomain returns the registrable domain (eTLD+1) of host. Ports are
// stripped and internationalized names converted to their ASCII form.
func ApexDomain(host string) (string, error) {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return "", serrors.With(serrors.ErrBadRequest, "empty host")
	}
	if net.ParseIP(strings.Trim(host, "[]")) != nil {
		return "", serrors.With(serrors.ErrBadRequest, "ip address %s has no registration record", host)
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid host %q", host)
	}
	apex, err := publicsuffix.EffectiveTLDPlusOne(ascii)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, "no registrable domain for %q", host)
	}

	return apex, nil
}

// Lookup queries the registration data of host. The WHOIS round trip runs
// in its own goroutine so the lookup returns as soon as ctx is done.
func (r *WhoisResolver) Lookup(ctx context.Context, host string) (rec *domain.RegistrationRecord, err error) {
	start := time.Now()
	defer func() {
		r.metrics.ObserveLookup(time.Since(start), err)
	}()

	apex, err := ApexDomain(host)
	if err != nil {
		return nil, err
	}

	type whoisResult struct {
		rec *domain.RegistrationRecord
		err error
	}
	resultChan := make(chan whoisResult, 1)

	go func() {
		rec, err := r.query(host, apex)
		resultChan <- whoisResult{rec: rec, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, serrors.Wrap(serrors.ErrTimeout, ctx.Err(), "whois lookup for %s", apex)
	case res := <-resultChan:
		if res.err != nil {
			logger.Debug(ctx, "whois lookup failed", zap.String("domain", apex), zap.Error(res.err))
		}

		return res.rec, res.err
	}
}

func (r *WhoisResolver) query(host, apex string) (rec *domain.RegistrationRecord, err error) {
	// the parser is known to panic on some malformed answers.
	defer func() {
		if p := recover(); p != nil {
			rec, err = nil, serrors.With(serrors.ErrUnavailable, "whois parser panicked for %s: %v", apex, p)
		}
	}()

	raw, err := r.client.Whois(apex)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "whois lookup for %s failed", apex)
	}

	info, err := r.parse(raw)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not parse whois answer for %s", apex)
	}

	rec = &domain.RegistrationRecord{Host: host, Queried: apex}
	if info.Domain == nil {
		return rec, nil
	}
	rec.DomainName = info.Domain.Domain
	if created, ok := ParseDate(info.Domain.CreatedDate); ok {
		rec.CreatedAt = created
	}

	return rec, nil
}
