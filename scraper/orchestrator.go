package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/aluiziolira/go-scrape-watches/browser"
	"github.com/aluiziolira/go-scrape-watches/config"
	"github.com/aluiziolira/go-scrape-watches/models"
)

// ProgressStore persists per-brand resume cursors.
type ProgressStore interface {
	Load(brandName string) *models.Cursor
	Save(brandName string, cursor *models.Cursor) error
}

// DatasetStore persists extracted watches, deduplicated by URL.
type DatasetStore interface {
	Append(watches []*models.Watch) (int, error)
}

// SnapshotSink stores debugging artifacts captured on extraction failures.
type SnapshotSink interface {
	SaveMarkup(brandName, reason, key, markup string) (string, error)
	SaveScreenshot(brandName string, page int, png []byte) (string, error)
}

// Scraper walks brand listing pages through a single browser session,
// strictly sequentially, extracting watch details and persisting progress
// after every item so an interrupted run resumes where it stopped.
type Scraper struct {
	cfg       *config.Config
	selectors config.Selectors
	session   browser.Session
	base      *url.URL
	rate      *RateController
	retry     *retryPolicy
	progress  ProgressStore
	dataset   DatasetStore
	snapshots SnapshotSink
	Metrics   *Metrics
}

// NewScraper builds a scraper around an already-launched browser session.
// Session lifecycle stays with the caller.
func NewScraper(cfg *config.Config, selectors config.Selectors, session browser.Session, progress ProgressStore, dataset DatasetStore, snapshots SnapshotSink) (*Scraper, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	metrics := NewMetrics()
	return &Scraper{
		cfg:       cfg,
		selectors: selectors,
		session:   session,
		base:      parsed,
		rate:      NewRateController(cfg.PoliteMin, cfg.PoliteMax),
		retry:     newRetryPolicy(cfg, metrics),
		progress:  progress,
		dataset:   dataset,
		snapshots: snapshots,
		Metrics:   metrics,
	}, nil
}

// Run crawls each brand in order and merges the per-brand results. A brand
// whose pagination dies is logged and the run moves on to the next brand;
// only context cancellation ends the run itself.
func (s *Scraper) Run(ctx context.Context, brands []models.Brand) (*models.CrawlResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	run := &models.CrawlResult{
		StartTime:    time.Now(),
		ErrorsByType: make(map[string]int),
	}
	defer func() { run.EndTime = time.Now() }()

	for _, brand := range brands {
		result, err := s.CrawlBrand(ctx, brand)
		run.Merge(result)
		if err != nil {
			return run, err
		}
	}
	return run, nil
}

// CrawlBrand pages through one brand from its saved cursor. The returned
// result carries only records extracted during this call; records persisted
// by earlier runs stay in the dataset store. The error is non-nil only when
// the context ended the crawl early.
func (s *Scraper) CrawlBrand(ctx context.Context, brand models.Brand) (*models.CrawlResult, error) {
	result := &models.CrawlResult{
		StartTime:    time.Now(),
		BrandCount:   1,
		ErrorsByType: make(map[string]int),
	}
	defer func() { result.EndTime = time.Now() }()

	retriesBefore := s.retry.TotalRetries()
	defer func() { result.RetryCount = s.retry.TotalRetries() - retriesBefore }()

	cursor := s.progress.Load(brand.Name)
	processed := cursor.ProcessedSet()

	slog.Info("processing brand",
		slog.String("brand", brand.Name),
		slog.String("url", brand.URL),
		slog.Int("start_page", cursor.CurrentPage),
		slog.Int("processed", len(processed)),
	)

	for page := cursor.CurrentPage; page <= s.cfg.PageCeiling; page++ {
		if err := ctx.Err(); err != nil {
			s.saveCursor(brand, page, processed)
			return result, err
		}

		pageURL, err := PageURL(brand.URL, page)
		if err != nil {
			slog.Error("bad listing url, ending brand",
				slog.String("brand", brand.Name),
				slog.Any("error", err),
			)
			s.countError(result, err)
			break
		}

		if err := s.loadListingPage(ctx, brand, page, pageURL); err != nil {
			if ctx.Err() != nil {
				s.saveCursor(brand, page, processed)
				return result, ctx.Err()
			}
			slog.Error("listing page failed, stopping pagination",
				slog.String("brand", brand.Name),
				slog.Int("page", page),
				slog.Any("error", err),
			)
			s.countError(result, err)
			break
		}
		result.PageCount++

		urls := s.collectListingURLs(brand, pageURL)
		if len(urls) == 0 {
			slog.Info("no watches found on page",
				slog.String("brand", brand.Name),
				slog.Int("page", page),
			)
			break
		}

		newURLs := filterNew(urls, processed)
		if len(newURLs) == 0 {
			slog.Info("no new watches on page, stopping pagination",
				slog.String("brand", brand.Name),
				slog.Int("page", page),
			)
			break
		}
		slog.Info("found new watches",
			slog.String("brand", brand.Name),
			slog.Int("page", page),
			slog.Int("new", len(newURLs)),
			slog.Int("listed", len(urls)),
		)

		for _, itemURL := range newURLs {
			if err := sleepCtx(ctx, s.rate.PoliteDelay()); err != nil {
				s.saveCursor(brand, page, processed)
				return result, err
			}

			var watch *models.Watch
			err := s.retry.Do(ctx, "extract "+itemURL, func() error {
				w, err := s.extractDetail(ctx, brand, itemURL)
				if err != nil {
					return err
				}
				watch = w
				return nil
			})
			if err != nil {
				if ctx.Err() != nil {
					s.saveCursor(brand, page, processed)
					return result, ctx.Err()
				}
				slog.Error("watch extraction failed, skipping",
					slog.String("url", itemURL),
					slog.Any("error", err),
				)
				s.countError(result, err)
				result.SkippedCount++
				continue
			}
			if watch == nil {
				result.SkippedCount++
				continue
			}

			s.persistWatch(brand, page, watch, processed, result)
		}

		s.saveCursor(brand, page+1, processed)
	}

	slog.Info("brand done",
		slog.String("brand", brand.Name),
		slog.Int("pages", result.PageCount),
		slog.Int("items", result.ItemCount),
		slog.Int("skipped", result.SkippedCount),
	)
	return result, nil
}

// loadListingPage navigates to one listing page, verifies the document
// status, and waits for the listing container, retrying the whole sequence
// on failure. The adaptive delay runs once after a successful load.
func (s *Scraper) loadListingPage(ctx context.Context, brand models.Brand, page int, pageURL string) error {
	return s.retry.Do(ctx, fmt.Sprintf("load page %d", page), func() error {
		resp, err := s.session.Navigate(ctx, pageURL)
		if err != nil {
			return classifyNavError(err)
		}
		s.Metrics.IncNavigation("listing")
		s.Metrics.ObserveNavigation(resp.Elapsed)

		if err := statusError(resp.Status); err != nil {
			return err
		}
		if err := s.session.WaitForSelector(s.selectors.ListingContainer, s.cfg.SelectorTimeout); err != nil {
			s.captureListingTimeout(brand, page)
			return ErrMissingListing{Err: err}
		}

		return sleepCtx(ctx, s.rate.Delay(resp.Elapsed, resp.Status))
	})
}

func (s *Scraper) captureListingTimeout(brand models.Brand, page int) {
	var screenshot string
	png, err := s.session.Screenshot()
	if err != nil {
		slog.Warn("capture screenshot", slog.Int("page", page), slog.Any("error", err))
	} else {
		screenshot, err = s.snapshots.SaveScreenshot(brand.Name, page, png)
		if err != nil {
			slog.Warn("write screenshot", slog.Int("page", page), slog.Any("error", err))
		} else {
			s.Metrics.IncSnapshot()
		}
	}

	slog.Error("listing container not found",
		slog.String("brand", brand.Name),
		slog.Int("page", page),
		slog.String("screenshot", screenshot),
	)
}

func (s *Scraper) persistWatch(brand models.Brand, page int, watch *models.Watch, processed map[string]struct{}, result *models.CrawlResult) {
	if _, err := s.dataset.Append([]*models.Watch{watch}); err != nil {
		slog.Error("dataset write failed",
			slog.String("url", watch.URL),
			slog.Any("error", err),
		)
		s.countError(result, err)
		result.SkippedCount++
		return
	}

	processed[watch.URL] = struct{}{}
	result.ItemCount++
	result.Watches = append(result.Watches, watch)
	s.saveCursor(brand, page, processed)
}

func (s *Scraper) saveCursor(brand models.Brand, page int, processed map[string]struct{}) {
	urls := make([]string, 0, len(processed))
	for u := range processed {
		urls = append(urls, u)
	}
	cursor := &models.Cursor{CurrentPage: page, ProcessedURLs: urls}
	if err := s.progress.Save(brand.Name, cursor); err != nil {
		slog.Error("save progress",
			slog.String("brand", brand.Name),
			slog.Any("error", err),
		)
	}
}

func (s *Scraper) countError(result *models.CrawlResult, err error) {
	label := errorTypeLabel(err)
	result.ErrorCount++
	result.ErrorsByType[label]++
	s.Metrics.IncError(label)
}

// filterNew keeps the URLs not seen in earlier runs, preserving discovery
// order and dropping within-page duplicates.
func filterNew(urls []string, processed map[string]struct{}) []string {
	fresh := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if _, ok := processed[u]; ok {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		fresh = append(fresh, u)
	}
	return fresh
}
