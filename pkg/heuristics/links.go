package heuristics

import (
	"sort"

	"phishgraph/pkg/fetcher"

	"github.com/PuerkitoBio/goquery"
)

// Links returns the absolute http(s) targets of the page's anchors, without
// fragments, deduplicated and sorted. Anchors that cannot be resolved are
// skipped.
func Links(doc *fetcher.Document) []string {
	seen := make(map[string]struct{})
	doc.DOM.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		u, err := doc.Resolve(s.AttrOr("href", ""))
		if err != nil {
			return
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return
		}
		u.Fragment = ""
		u.RawFragment = ""
		seen[u.String()] = struct{}{}
	})

	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)

	return out
}
