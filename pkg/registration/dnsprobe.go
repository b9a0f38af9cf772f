package registration

import (
	"context"
	"net"
	"strings"
	"time"

	"phishgraph/pkg/serrors"

	"github.com/miekg/dns"
)

// DefaultNameserver is queried when DNSProbeOptions.Server is empty.
const DefaultNameserver = "8.8.8.8:53"

// ErrNoSuchHost is returned by DNSProbe for hosts the nameserver answers NXDOMAIN for.
var ErrNoSuchHost = serrors.NewKind("NO_SUCH_HOST")

// DNSProbeOptions configures DNSProbe.
type DNSProbeOptions struct {
	// Server is the nameserver address, host:port.
	Server string
	// Timeout bounds a single exchange.
	Timeout time.Duration
}

// DNSProbe implements Prober with a single A query.
type DNSProbe struct {
	client *dns.Client
	server string
}

// NewDNSProbe creates a DNSProbe.
func NewDNSProbe(opts DNSProbeOptions) *DNSProbe {
	server := opts.Server
	if server == "" {
		server = DefaultNameserver
	}

	return &DNSProbe{client: &dns.Client{Timeout: opts.Timeout}, server: server}
}

// Probe fails with ErrNoSuchHost when the name does not exist. IP literals
// always pass. Any other rcode is accepted; only a definite NXDOMAIN rejects.
func (p *DNSProbe) Probe(ctx context.Context, host string) error {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "" || net.ParseIP(host) != nil {
		return nil
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), dns.TypeA)
	in, _, err := p.client.ExchangeContext(ctx, m, p.server)
	if err != nil {
		if ctx.Err() != nil {
			return serrors.Wrap(serrors.ErrTimeout, err, "dns probe for %s", host)
		}

		return serrors.Wrap(serrors.ErrUnavailable, err, "dns probe for %s", host)
	}
	if in.Rcode == dns.RcodeNameError {
		return serrors.With(ErrNoSuchHost, "host %s does not exist", host)
	}

	return nil
}
