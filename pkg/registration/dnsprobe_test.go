package registration_test

import (
	"context"
	"net"
	"testing"
	"time"

	"phishgraph/pkg/registration"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func startNameserver(t *testing.T) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &dns.Server{
		PacketConn:        pc,
		NotifyStartedFunc: func() { close(started) },
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(r)
			switch r.Question[0].Name {
			case "missing.test.":
				m.Rcode = dns.RcodeNameError
			case "broken.test.":
				m.Rcode = dns.RcodeServerFailure
			default:
				rr, _ := dns.NewRR(r.Question[0].Name + " 60 IN A 127.0.0.1")
				m.Answer = append(m.Answer, rr)
			}
			_ = w.WriteMsg(m)
		}),
	}
	go func() {
		_ = srv.ActivateAndServe()
	}()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })

	return pc.LocalAddr().String()
}

func TestDNSProbe(t *testing.T) {
	p := registration.NewDNSProbe(registration.DNSProbeOptions{
		Server:  startNameserver(t),
		Timeout: time.Second,
	})
	ctx := context.Background()

	require.NoError(t, p.Probe(ctx, "www.example.test"))
	require.NoError(t, p.Probe(ctx, "www.example.test:8080"))
	require.NoError(t, p.Probe(ctx, "broken.test"), "only NXDOMAIN rejects")
	require.NoError(t, p.Probe(ctx, "10.0.0.1"), "ip literals are not probed")
	require.NoError(t, p.Probe(ctx, "[::1]:443"))

	err := p.Probe(ctx, "missing.test")
	require.ErrorIs(t, err, registration.ErrNoSuchHost)
}

func TestDNSProbe_Unreachable(t *testing.T) {
	// nothing listens on this port, the exchange can only time out or be refused.
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := pc.LocalAddr().String()
	require.NoError(t, pc.Close())

	p := registration.NewDNSProbe(registration.DNSProbeOptions{Server: addr, Timeout: 200 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err = p.Probe(ctx, "example.test")
	require.Error(t, err)
	require.NotErrorIs(t, err, registration.ErrNoSuchHost)
}
