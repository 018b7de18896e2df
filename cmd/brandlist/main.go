// Command brandlist harvests the marketplace's A-Z brand directory into
// the brand list JSON the scraper command consumes.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aluiziolira/go-scrape-watches/bootstrap"
	"github.com/aluiziolira/go-scrape-watches/config"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func main() {
	// .env is optional; already-set environment variables win
	_ = godotenv.Load()

	defaultCfg := config.DefaultConfig()
	outputDefault := defaultCfg.BrandsFile
	if value, ok := config.EnvString("SCRAPER_BRANDS_FILE"); ok {
		outputDefault = value
	}

	baseURL := flag.String("base-url", defaultCfg.BaseURL, "Marketplace origin hosting the brand directory")
	output := flag.String("output", outputDefault, "Brand list output file (JSON)")
	selectorsFile := flag.String("selectors", "", "YAML file overriding the selector chains")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	cfg.BaseURL = *baseURL
	cfg.BrandsFile = *output
	cfg.SelectorsFile = *selectorsFile
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

	h, err := bootstrap.NewHarvester(cfg, selectors)
	if err != nil {
		slog.Error("initialising harvester", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("fetching brand directory", slog.String("url", h.DirectoryURL()))
	brands, err := h.Collect()
	if err != nil {
		slog.Error("collecting brands", slog.Any("error", err))
		os.Exit(1)
	}

	// quick eyeball check of the harvest
	for i, b := range brands {
		if i == 5 {
			break
		}
		fmt.Printf("%d. %s - %s\n", i+1, b.Name, b.URL)
	}

	if err := bootstrap.SaveBrands(cfg.BrandsFile, brands); err != nil {
		slog.Error("saving brand list", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("brand list saved",
		slog.String("file", cfg.BrandsFile),
		slog.Int("count", len(brands)),
	)
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
