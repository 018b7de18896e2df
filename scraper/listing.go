package scraper

import (
	"fmt"
	"log/slog"

	"github.com/aluiziolira/go-scrape-watches/models"
	"github.com/aluiziolira/go-scrape-watches/parser"
)

// collectListingURLs gathers the detail page URLs present on the currently
// loaded listing page. The bulk anchor query is tried first; only when it
// matches no anchors at all does the positional probe take over. A page
// where both strategies come up empty is dumped for inspection and yields
// no URLs, which callers treat as the end of the brand's pagination.
func (s *Scraper) collectListingURLs(brand models.Brand, pageURL string) []string {
	urls, matched := s.anchorURLs()
	if !matched {
		urls = s.probeURLs()
	}
	if len(urls) == 0 {
		s.dumpEmptyListing(brand, pageURL)
	}
	return urls
}

func (s *Scraper) anchorURLs() ([]string, bool) {
	links := resolveAll(s.session, s.selectors.ListingLinks)
	if len(links) == 0 {
		return nil, false
	}

	urls := make([]string, 0, len(links))
	for _, link := range links {
		href, err := link.Attribute("href")
		if err != nil || href == "" {
			continue
		}
		urls = append(urls, parser.AbsoluteURL(s.base, href))
	}
	return urls, true
}

// probeURLs walks listing positions one by one and stops at the first
// position with no element. Positions whose anchor carries no href are
// skipped without ending the walk.
func (s *Scraper) probeURLs() []string {
	var urls []string
	for n := 1; ; n++ {
		selector := fmt.Sprintf(s.selectors.ListingItemProbe, n)
		el, err := s.session.Query(selector)
		if err != nil || el == nil {
			break
		}
		href, err := el.Attribute("href")
		if err != nil || href == "" {
			continue
		}
		urls = append(urls, parser.AbsoluteURL(s.base, href))
	}
	return urls
}

func (s *Scraper) dumpEmptyListing(brand models.Brand, pageURL string) {
	var snapshot string
	markup, err := s.session.HTML()
	if err != nil {
		slog.Warn("capture listing markup", slog.String("url", pageURL), slog.Any("error", err))
	} else {
		snapshot, err = s.snapshots.SaveMarkup(brand.Name, "empty_listing", pageURL, markup)
		if err != nil {
			slog.Warn("write listing snapshot", slog.String("url", pageURL), slog.Any("error", err))
		} else if snapshot != "" {
			s.Metrics.IncSnapshot()
		}
	}

	s.Metrics.IncError("empty_listing")
	slog.Error("no watches found on listing page",
		slog.String("brand", brand.Name),
		slog.String("url", pageURL),
		slog.String("snapshot", snapshot),
	)
}
