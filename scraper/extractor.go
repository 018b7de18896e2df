package scraper

import (
	"context"
	"log/slog"

	"github.com/aluiziolira/go-scrape-watches/models"
	"github.com/aluiziolira/go-scrape-watches/parser"
)

// extractDetail loads one watch detail page and pulls its fields out. A page
// whose name cannot be resolved is snapshotted and reported as absent with
// nil watch and nil error, so the caller skips it without retrying.
func (s *Scraper) extractDetail(ctx context.Context, brand models.Brand, itemURL string) (*models.Watch, error) {
	watchURL := parser.AbsoluteURL(s.base, itemURL)

	resp, err := s.session.Navigate(ctx, watchURL)
	if err != nil {
		return nil, classifyNavError(err)
	}
	s.Metrics.IncNavigation("detail")
	s.Metrics.ObserveNavigation(resp.Elapsed)
	if err := s.session.WaitLoad(ctx); err != nil {
		return nil, classifyNavError(err)
	}

	name := elementText(resolveElement(s.session, s.selectors.DetailName))
	if name == "" {
		s.reportEmptyName(brand, watchURL)
		return nil, nil
	}

	price := elementText(resolveElement(s.session, s.selectors.DetailPrice))
	description := resolveText(s.session, s.selectors.DetailDescription)
	specs := s.extractSpecs()

	if description == "" {
		if fallback, ok := specs["Description"]; ok {
			description = fallback
			delete(specs, "Description")
		}
	}

	watch := &models.Watch{
		URL:            watchURL,
		Name:           name,
		Price:          price,
		Description:    description,
		Specifications: specs,
	}
	if err := parser.ValidateWatch(watch); err != nil {
		return nil, err
	}

	s.Metrics.IncItems()
	slog.Info("extracted watch",
		slog.String("name", name),
		slog.String("price", price),
		slog.Int("spec_count", len(specs)),
	)
	return watch, nil
}

// extractSpecs walks the spec table chain and keeps the first selector whose
// tables produce at least one usable row. Duplicate keys keep the value seen
// last in document order.
func (s *Scraper) extractSpecs() map[string]string {
	specs := make(map[string]string)
	for _, selector := range s.selectors.SpecTables {
		tables, err := s.session.QueryAll(selector)
		if err != nil || len(tables) == 0 {
			continue
		}

		for _, table := range tables {
			rows, err := table.QueryAll(s.selectors.SpecRow)
			if err != nil {
				continue
			}
			for _, row := range rows {
				key := elementText(resolveElement(row, s.selectors.SpecKey))
				valueEl := resolveElement(row, s.selectors.SpecValue)
				if valueEl == nil {
					continue
				}
				raw, err := valueEl.Text()
				if err != nil {
					continue
				}
				value := parser.StripLoaderScript(raw)
				if !parser.KeepSpecRow(key, value) {
					continue
				}
				specs[key] = value
			}
		}
		if len(specs) > 0 {
			break
		}
	}
	return specs
}

func (s *Scraper) reportEmptyName(brand models.Brand, watchURL string) {
	var snapshot string
	markup, err := s.session.HTML()
	if err != nil {
		slog.Warn("capture detail markup", slog.String("url", watchURL), slog.Any("error", err))
	} else {
		snapshot, err = s.snapshots.SaveMarkup(brand.Name, "empty_name", watchURL, markup)
		if err != nil {
			slog.Warn("write detail snapshot", slog.String("url", watchURL), slog.Any("error", err))
		} else if snapshot != "" {
			s.Metrics.IncSnapshot()
		}
	}

	s.Metrics.IncError("empty_name")
	slog.Warn("watch name not found, skipping",
		slog.String("brand", brand.Name),
		slog.String("url", watchURL),
		slog.String("snapshot", snapshot),
	)
}
