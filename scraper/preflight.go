package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aluiziolira/go-scrape-watches/models"
	"github.com/aluiziolira/go-scrape-watches/parser"
)

// PreFlight validates the selector chains against a live sample: the brand's
// first listing page and the first watch it links to. A failure means the
// site markup drifted and a full run would extract garbage, so the caller
// must abort instead of crawling.
func (s *Scraper) PreFlight(ctx context.Context, brand models.Brand) error {
	slog.Info("running pre-flight check",
		slog.String("brand", brand.Name),
		slog.String("url", brand.URL),
	)

	if _, err := s.session.Navigate(ctx, brand.URL); err != nil {
		return fmt.Errorf("pre-flight: load listing page: %w", classifyNavError(err))
	}
	if err := s.session.WaitLoad(ctx); err != nil {
		return fmt.Errorf("pre-flight: listing page never settled: %w", classifyNavError(err))
	}
	if err := s.session.WaitForSelector(s.selectors.ListingContainer, s.cfg.SelectorTimeout); err != nil {
		return fmt.Errorf("pre-flight: listing container not found: %w", err)
	}

	firstLink := resolveElement(s.session, s.selectors.ListingLinks)
	if firstLink == nil {
		return fmt.Errorf("pre-flight: no listing link matched")
	}
	href, err := firstLink.Attribute("href")
	if err != nil || href == "" {
		return fmt.Errorf("pre-flight: first listing link has no href")
	}

	watchURL := parser.AbsoluteURL(s.base, href)
	if _, err := s.session.Navigate(ctx, watchURL); err != nil {
		return fmt.Errorf("pre-flight: load detail page: %w", classifyNavError(err))
	}
	if err := s.session.WaitLoad(ctx); err != nil {
		return fmt.Errorf("pre-flight: detail page never settled: %w", classifyNavError(err))
	}

	if resolveElement(s.session, s.selectors.DetailName) == nil {
		return fmt.Errorf("pre-flight: no detail name selector matched on %s", watchURL)
	}
	if resolveElement(s.session, s.selectors.DetailPrice) == nil {
		return fmt.Errorf("pre-flight: no detail price selector matched on %s", watchURL)
	}
	if resolveElement(s.session, s.selectors.SpecTables) == nil {
		return fmt.Errorf("pre-flight: no spec table selector matched on %s", watchURL)
	}

	slog.Info("pre-flight check passed", slog.String("brand", brand.Name))
	return nil
}
