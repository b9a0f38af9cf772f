package lexical

import (
	"regexp"
	"strings"

	"phishgraph/pkg/domain"
)

const longURLThreshold = 75

var (
	// an IPv4 literal in host position, with an optional scheme in front.
	ipHostPattern = regexp.MustCompile(`^(https?://)?\d{1,3}(\.\d{1,3}){3}`) //nolint: gochecknoglobals

	shorteners = []string{ //nolint: gochecknoglobals
		"bit.ly", "goo.gl", "tinyurl.com", "ow.ly", "t.co", "is.gd", "buff.ly", "adf.ly",
	}
)

// Result holds the lexical features of one URL.
type Result struct {
	UsingIP        bool
	LongURL        bool
	ShortURL       bool
	SymbolAt       bool
	Redirecting    bool
	PrefixSuffix   bool
	SubDomains     int
	HTTPS          bool
	NonStdPort     bool
	HTTPSDomainURL bool
	AbnormalURL    bool
}

// Analyze computes the lexical features of raw. Features that need the host,
// path, scheme or port stay 0 when raw cannot be parsed; the ones computed on
// the string itself are always set.
func Analyze(raw string) Result {
	res := Result{
		UsingIP:  ipHostPattern.MatchString(raw),
		LongURL:  len(raw) > longURLThreshold,
		ShortURL: containsAny(raw, shorteners),
		SymbolAt: strings.Contains(raw, "@"),
	}
	res.AbnormalURL = res.LongURL || res.SymbolAt

	u, err := Parse(raw)
	if err != nil {
		return res
	}

	res.Redirecting = strings.Contains(u.Path, "//")
	res.PrefixSuffix = strings.Contains(u.Host, "-")
	// a plain dot count, not the subdomain depth.
	res.SubDomains = strings.Count(u.Host, ".")
	res.HTTPS = u.Scheme == "https"
	res.NonStdPort = u.Port != 0 && u.Port != 80 && u.Port != 443
	res.HTTPSDomainURL = strings.Contains(u.Host, "https")

	return res
}

// Fill writes the lexical slots of sigs.
func (r Result) Fill(sigs *domain.Signals) {
	sigs.Set(domain.UsingIP, domain.ComputedBool(r.UsingIP))
	sigs.Set(domain.LongURL, domain.ComputedBool(r.LongURL))
	sigs.Set(domain.ShortURL, domain.ComputedBool(r.ShortURL))
	sigs.Set(domain.SymbolAt, domain.ComputedBool(r.SymbolAt))
	sigs.Set(domain.Redirecting, domain.ComputedBool(r.Redirecting))
	sigs.Set(domain.PrefixSuffix, domain.ComputedBool(r.PrefixSuffix))
	sigs.Set(domain.SubDomains, domain.Computed(r.SubDomains))
	sigs.Set(domain.HTTPS, domain.ComputedBool(r.HTTPS))
	sigs.Set(domain.NonStdPort, domain.ComputedBool(r.NonStdPort))
	sigs.Set(domain.HTTPSDomainURL, domain.ComputedBool(r.HTTPSDomainURL))
	sigs.Set(domain.AbnormalURL, domain.ComputedBool(r.AbnormalURL))
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
