package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aluiziolira/go-scrape-watches/bootstrap"
	"github.com/aluiziolira/go-scrape-watches/browser"
	"github.com/aluiziolira/go-scrape-watches/config"
	"github.com/aluiziolira/go-scrape-watches/models"
	"github.com/aluiziolira/go-scrape-watches/scraper"
	"github.com/aluiziolira/go-scrape-watches/store"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// .env is optional; already-set environment variables win
	_ = godotenv.Load()

	defaultCfg := config.DefaultConfig()
	ceilingDefault := defaultCfg.PageCeiling
	if value, ok, err := config.EnvInt("SCRAPER_PAGE_CEILING"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_PAGE_CEILING: %v\n", err)
		os.Exit(1)
	} else if ok {
		ceilingDefault = value
	}
	headlessDefault := defaultCfg.Headless
	if value, ok, err := config.EnvBool("SCRAPER_HEADLESS"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_HEADLESS: %v\n", err)
		os.Exit(1)
	} else if ok {
		headlessDefault = value
	}
	brandsDefault := defaultCfg.BrandsFile
	if value, ok := config.EnvString("SCRAPER_BRANDS_FILE"); ok {
		brandsDefault = value
	}
	datasetDefault := defaultCfg.DatasetFile
	if value, ok := config.EnvString("SCRAPER_DATASET_FILE"); ok {
		datasetDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SCRAPER_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	baseURL := flag.String("base-url", defaultCfg.BaseURL, "Marketplace origin to crawl")
	brandsFile := flag.String("brands", brandsDefault, "Brand list JSON produced by brandlist")
	datasetFile := flag.String("dataset", datasetDefault, "Dataset output file (JSON)")
	progressDir := flag.String("progress-dir", defaultCfg.ProgressDir, "Directory for per-brand resume cursors")
	errorsDir := flag.String("errors-dir", defaultCfg.ErrorsDir, "Directory for failure snapshots")
	selectorsFile := flag.String("selectors", "", "YAML file overriding the selector chains")
	brand := flag.String("brand", "", "Restrict the run to one brand by name")
	maxBrands := flag.Int("max-brands", 0, "Crawl at most this many brands (0 = all)")
	pageCeiling := flag.Int("page-ceiling", ceilingDefault, "Hard cap on listing pages per brand")
	maxRetries := flag.Int("max-retries", defaultCfg.MaxRetries, "Attempts per page load or item extraction")
	retryBackoffMs := flag.Int("retry-backoff", int(defaultCfg.RetryBackoff/time.Millisecond), "Initial retry backoff (milliseconds)")
	retryBackoffMaxMs := flag.Int("retry-backoff-max", int(defaultCfg.RetryBackoffMax/time.Millisecond), "Maximum retry backoff (milliseconds)")
	politeMinMs := flag.Int("polite-min", int(defaultCfg.PoliteMin/time.Millisecond), "Minimum delay before each item fetch (milliseconds)")
	politeMaxMs := flag.Int("polite-max", int(defaultCfg.PoliteMax/time.Millisecond), "Maximum delay before each item fetch (milliseconds)")
	headless := flag.Bool("headless", headlessDefault, "Run the browser headless")
	slowMoMs := flag.Int("slow-mo", 0, "Slow every browser action down (milliseconds)")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	logger = logger.With(slog.String("run_id", uuid.NewString()))
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	cfg.BaseURL = *baseURL
	cfg.BrandsFile = *brandsFile
	cfg.DatasetFile = *datasetFile
	cfg.ProgressDir = *progressDir
	cfg.ErrorsDir = *errorsDir
	cfg.SelectorsFile = *selectorsFile
	cfg.Brand = *brand
	cfg.MaxBrands = *maxBrands
	cfg.PageCeiling = *pageCeiling
	cfg.MaxRetries = *maxRetries
	cfg.RetryBackoff = time.Duration(*retryBackoffMs) * time.Millisecond
	cfg.RetryBackoffMax = time.Duration(*retryBackoffMaxMs) * time.Millisecond
	cfg.PoliteMin = time.Duration(*politeMinMs) * time.Millisecond
	cfg.PoliteMax = time.Duration(*politeMaxMs) * time.Millisecond
	cfg.Headless = *headless
	cfg.SlowMo = time.Duration(*slowMoMs) * time.Millisecond
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	selectors, err := config.LoadSelectors(cfg.SelectorsFile)
	if err != nil {
		slog.Error("loading selectors", slog.Any("error", err))
		os.Exit(1)
	}

	brands, err := bootstrap.LoadBrands(cfg.BrandsFile)
	if err != nil {
		slog.Error("loading brand list", slog.Any("error", err))
		os.Exit(1)
	}
	brands = bootstrap.FilterBrands(brands, cfg.Brand, cfg.MaxBrands)
	if len(brands) == 0 {
		slog.Error("no brands match the filter", slog.String("brand", cfg.Brand))
		os.Exit(1)
	}

	slog.Info("starting crawl",
		slog.String("base_url", cfg.BaseURL),
		slog.Int("brands", len(brands)),
		slog.Int("page_ceiling", cfg.PageCeiling),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, finishing the current item")
	}()

	sess, err := browser.Launch(browser.Options{
		Headless:       cfg.Headless,
		SlowMo:         cfg.SlowMo,
		UserAgent:      cfg.UserAgent,
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
		NavTimeout:     cfg.NavTimeout,
	})
	if err != nil {
		slog.Error("launching browser", slog.Any("error", err))
		os.Exit(1)
	}

	progress := store.NewProgressStore(cfg.ProgressDir)
	dataset := store.NewDatasetStore(cfg.DatasetFile)
	snapshots, err := store.NewSnapshotSink(cfg.ErrorsDir, cfg.SnapshotLimit)
	if err != nil {
		slog.Error("initialising snapshot sink", slog.Any("error", err))
		closeSession(sess)
		os.Exit(1)
	}

	s, err := scraper.NewScraper(cfg, selectors, sess, progress, dataset, snapshots)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		closeSession(sess)
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && s.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	if err := s.PreFlight(ctx, brands[0]); err != nil {
		slog.Error("pre-flight check failed, aborting run", slog.Any("error", err))
		closeSession(sess)
		os.Exit(1)
	}

	startTime := time.Now()
	result, runErr := s.Run(ctx, brands)
	if runErr != nil {
		slog.Error("crawl interrupted", slog.Any("error", runErr))
	}

	closeSession(sess)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(result, time.Since(startTime), cfg.DatasetFile)
	if runErr != nil {
		os.Exit(1)
	}
}

func closeSession(sess *browser.Rod) {
	if err := sess.Close(); err != nil {
		slog.Error("close browser", slog.Any("error", err))
	}
}

func printSummary(result *models.CrawlResult, duration time.Duration, datasetFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Crawl complete")
	fmt.Printf("  Brands:        %d\n", result.BrandCount)
	fmt.Printf("  Pages:         %d\n", result.PageCount)
	fmt.Printf("  Items:         %d\n", result.ItemCount)
	fmt.Printf("  Skipped:       %d\n", result.SkippedCount)
	fmt.Printf("  Errors:        %d\n", result.ErrorCount)
	fmt.Printf("  Retries:       %d\n", result.RetryCount)
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	itemsPerMin := 0.0
	if duration.Minutes() > 0 {
		itemsPerMin = float64(result.ItemCount) / duration.Minutes()
	}
	fmt.Printf("  Duration:      %v\n", duration.Round(time.Second))
	fmt.Printf("  Items/min:     %.1f\n", itemsPerMin)
	fmt.Printf("  Dataset:       %s\n", datasetFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
