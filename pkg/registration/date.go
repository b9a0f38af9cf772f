package registration

import (
	"regexp"
	"strings"
	"time"
)

var (
	compactDate = regexp.MustCompile(`\b(\d{8})\b`) //nolint: gochecknoglobals

	dateLayouts = []string{ //nolint: gochecknoglobals
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05 MST",
		"2006-01-02",
		"02-Jan-2006",
		"2006/01/02",
		"2006.01.02",
		"02.01.2006",
		"Mon Jan 2 15:04:05 MST 2006",
		time.RFC1123,
		time.RFC1123Z,
	}
)

// ParseDate parses a WHOIS date field. Registries use many layouts; when the
// field holds several dates only the first one is considered.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '\n'); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}

	if m := compactDate.FindStringSubmatch(raw); len(m) > 1 {
		if t, err := time.Parse("20060102", m[1]); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
