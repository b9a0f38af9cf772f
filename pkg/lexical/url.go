// Package lexical computes the features that can be derived from a URL string
// alone. Nothing in this package performs I/O or returns an error to callers
// of Analyze.
package lexical

import (
	"fmt"
	"net/url"
	"strconv"
)

// URL is a parsed, immutable view of a raw URL string.
type URL struct {
	// Raw is the string exactly as received.
	Raw    string
	Scheme string
	// Host is the network location as written, including an explicit port
	// but excluding user info.
	Host string
	// Hostname is Host without the port.
	Hostname string
	Path     string
	Query    string
	// Port is the explicit port, 0 when none was written.
	Port int
}

// Parse splits raw into its components.
func Parse(raw string) (URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URL{Raw: raw}, fmt.Errorf("could not parse url: %w", err)
	}

	out := URL{
		Raw:      raw,
		Scheme:   u.Scheme,
		Host:     u.Host,
		Hostname: u.Hostname(),
		Path:     u.Path,
		Query:    u.RawQuery,
	}
	if p := u.Port(); p != "" {
		out.Port, err = strconv.Atoi(p)
		if err != nil {
			return URL{Raw: raw}, fmt.Errorf("invalid port %q: %w", p, err)
		}
	}

	return out, nil
}

// IsWeb reports whether the URL is absolute with an http or https scheme.
func (u URL) IsWeb() bool {
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
