// Package heuristics computes the content based features of a fetched page.
// Every heuristic runs on its own and a panic makes only that heuristic
// unavailable. A reference that does not resolve counts as same-host for its
// own tag and still belongs to the ratio's total.
package heuristics

import (
	"fmt"
	"regexp"
	"strings"

	"phishgraph/pkg/domain"
	"phishgraph/pkg/fetcher"

	"github.com/PuerkitoBio/goquery"
)

// forwardingThreshold is the number of redirects above which a page counts as forwarded.
const forwardingThreshold = 2

var schemeInScript = regexp.MustCompile(`https?://`) //nolint: gochecknoglobals

type heuristic struct {
	name domain.FeatureName
	fn   func(doc *fetcher.Document) (int, error)
}

var heuristics = []heuristic{ //nolint: gochecknoglobals
	{domain.Favicon, favicon},
	{domain.RequestURL, requestURL},
	{domain.AnchorURL, anchorURL},
	{domain.LinksInScriptTags, linksInScriptTags},
	{domain.ServerFormHandler, serverFormHandler},
	{domain.InfoEmail, infoEmail},
	{domain.WebsiteForwarding, websiteForwarding},
	{domain.IframeRedirection, iframeRedirection},
}

// Names returns the slots Analyze fills.
func Names() []domain.FeatureName {
	out := make([]domain.FeatureName, len(heuristics))
	for i, h := range heuristics {
		out[i] = h.name
	}

	return out
}

// Analyze runs every heuristic against doc and writes the outcome into sigs.
func Analyze(doc *fetcher.Document, sigs *domain.Signals) {
	for _, h := range heuristics {
		sigs.Set(h.name, run(h, doc))
	}
}

// Unavailable marks every slot Analyze would fill as unavailable, e.g.
// when the page could not be fetched.
func Unavailable(cause error, sigs *domain.Signals) {
	for _, h := range heuristics {
		sigs.Set(h.name, domain.Unavailable(cause))
	}
}

func run(h heuristic, doc *fetcher.Document) (sig domain.Signal) {
	defer func() {
		if p := recover(); p != nil {
			sig = domain.Unavailable(fmt.Errorf("%s panicked: %v", h.name, p))
		}
	}()

	v, err := h.fn(doc)
	if err != nil {
		return domain.Unavailable(fmt.Errorf("%s: %w", h.name, err))
	}

	return domain.Computed(v)
}

func b2i(b bool) int {
	if b {
		return 1
	}

	return 0
}

// majority reports part/total > 50%, false for an empty total.
func majority(part, total int) bool {
	return total > 0 && part*2 > total
}

// isExternal resolves ref against the page and reports whether it points to
// another host. References without a host count as external only when
// hostless is true. A ref that does not resolve is relative text in practice
// ("/sale-50%off") and is never external.
func isExternal(doc *fetcher.Document, ref string, hostless bool) bool {
	u, err := doc.Resolve(ref)
	if err != nil {
		return false
	}
	if u.Host == "" {
		return hostless
	}

	return u.Host != doc.Host
}

func favicon(doc *fetcher.Document) (int, error) {
	var icon *goquery.Selection
	doc.DOM.Find("link[rel]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		if strings.Join(strings.Fields(strings.ToLower(rel)), " ") == "shortcut icon" {
			icon = s

			return false
		}

		return true
	})
	if icon == nil {
		return 0, nil
	}

	href, ok := icon.Attr("href")
	if !ok {
		return 0, nil
	}

	return b2i(isExternal(doc, href, true)), nil
}

func requestURL(doc *fetcher.Document) (int, error) {
	tags := doc.DOM.Find("img, script, link")
	external := 0
	tags.Each(func(_ int, s *goquery.Selection) {
		ref := s.AttrOr("src", "")
		if ref == "" {
			ref = s.AttrOr("href", "")
		}
		if ref != "" && isExternal(doc, ref, false) {
			external++
		}
	})

	return b2i(majority(external, tags.Length())), nil
}

func anchorURL(doc *fetcher.Document) (int, error) {
	anchors := doc.DOM.Find("a[href]")
	external := 0
	anchors.Each(func(_ int, s *goquery.Selection) {
		if isExternal(doc, s.AttrOr("href", ""), false) {
			external++
		}
	})

	return b2i(majority(external, anchors.Length())), nil
}

func linksInScriptTags(doc *fetcher.Document) (int, error) {
	scripts := doc.DOM.Find("script")
	withLinks := 0
	scripts.Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		if schemeInScript.MatchString(s.Text()) {
			withLinks++
		}
	})

	return b2i(majority(withLinks, scripts.Length())), nil
}

func serverFormHandler(doc *fetcher.Document) (int, error) {
	forms := doc.DOM.Find("form")
	suspicious := 0
	forms.Each(func(_ int, s *goquery.Selection) {
		action := strings.TrimSpace(s.AttrOr("action", ""))
		if action == "" || isExternal(doc, action, false) {
			suspicious++
		}
	})

	return b2i(majority(suspicious, forms.Length())), nil
}

func infoEmail(doc *fetcher.Document) (int, error) {
	return b2i(strings.Contains(strings.ToLower(string(doc.Body)), "mailto:")), nil
}

func websiteForwarding(doc *fetcher.Document) (int, error) {
	return b2i(doc.Redirects > forwardingThreshold), nil
}

func iframeRedirection(doc *fetcher.Document) (int, error) {
	iframes := doc.DOM.Find("iframe[src]")
	external := 0
	iframes.Each(func(_ int, s *goquery.Selection) {
		// a src without a host (about:blank, data:) is not the page's host either.
		if isExternal(doc, s.AttrOr("src", ""), true) {
			external++
		}
	})

	return b2i(majority(external, iframes.Length())), nil
}
