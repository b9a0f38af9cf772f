package scanner

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path"
	"sort"
	"strings"
)

var errNotAbsolute = errors.New("URL is not absolute")

//nolint: gochecknoglobals
var defaultPorts = map[string]string{"http": "80", "https": "443"}

// NormalizeURL returns the canonical form used to tell discovered links apart.
// Two links that only differ in case of scheme or host, default port,
// dot-segments, trailing slash, query parameter order or fragment normalize
// to the same string. User info is dropped. Relative URLs are rejected.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("could not parse URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errNotAbsolute
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = canonicalHost(u.Scheme, u.Host)
	u.User = nil
	u.Path = canonicalPath(u.Path)
	u.RawPath = ""
	u.RawQuery = canonicalQuery(u.Query())
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}

// canonicalHost lowercases host and drops the scheme's default port.
func canonicalHost(scheme, host string) string {
	host = strings.ToLower(host)

	h, port, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	if defaultPorts[scheme] == port {
		if strings.Contains(h, ":") {
			return "[" + h + "]"
		}

		return h
	}

	return net.JoinHostPort(h, port)
}

// canonicalPath resolves dot-segments and duplicate slashes. The root path
// is "/" and no other path ends with a slash.
func canonicalPath(p string) string {
	if p == "" {
		return "/"
	}

	cleaned := path.Clean("/" + p)
	if cleaned != "/" {
		cleaned = strings.TrimSuffix(cleaned, "/")
	}

	return cleaned
}

// canonicalQuery encodes q with keys and the values of every key sorted.
func canonicalQuery(q url.Values) string {
	for k := range q {
		sort.Strings(q[k])
	}

	return q.Encode()
}
