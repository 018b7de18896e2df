// Package bootstrap harvests the A-Z brand directory into the brand list
// the crawler consumes. The directory page is plain server-rendered HTML,
// so a simple HTTP fetch is enough and no browser session is involved.
package bootstrap

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-watches/config"
	"github.com/aluiziolira/go-scrape-watches/models"
	"github.com/gocolly/colly/v2"
)

// Harvester fetches the brand directory page and extracts its brand links.
// A harvester is single-use: build one per Collect call.
type Harvester struct {
	cfg       *config.Config
	selector  string
	collector *colly.Collector
}

// NewHarvester builds a harvester for the directory under cfg.BaseURL.
func NewHarvester(cfg *config.Config, selectors config.Selectors) (*Harvester, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Host),
		colly.UserAgent(cfg.UserAgent),
	)
	collector.SetRequestTimeout(cfg.NavTimeout)
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.NavTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	return &Harvester{cfg: cfg, selector: selectors.BrandLinks, collector: collector}, nil
}

// DirectoryURL returns the A-Z brand directory page under the site origin.
func (h *Harvester) DirectoryURL() string {
	return strings.TrimSuffix(h.cfg.BaseURL, "/") + "/search/browse.htm"
}

// Collect fetches the directory page and returns every brand link in
// document order. Anchors without an href or without text are dropped.
func (h *Harvester) Collect() ([]models.Brand, error) {
	var brands []models.Brand

	h.collector.OnHTML(h.selector, func(e *colly.HTMLElement) {
		name := strings.TrimSpace(e.Text)
		href := e.Attr("href")
		if name == "" || href == "" {
			return
		}
		brands = append(brands, models.Brand{
			Name: name,
			URL:  e.Request.AbsoluteURL(href),
		})
	})

	h.collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		slog.Error("brand directory fetch failed",
			slog.Int("status", status),
			slog.Any("error", err),
		)
	})

	if err := h.collector.Visit(h.DirectoryURL()); err != nil {
		return nil, fmt.Errorf("fetch brand directory: %w", err)
	}
	if len(brands) == 0 {
		return nil, fmt.Errorf("no brand links matched %q on %s", h.selector, h.DirectoryURL())
	}

	slog.Info("collected brands", slog.Int("count", len(brands)))
	return brands, nil
}

// FilterBrands narrows the list to the named brand, then caps it at max
// entries. An empty name keeps every brand; max <= 0 applies no cap.
func FilterBrands(brands []models.Brand, name string, max int) []models.Brand {
	out := brands
	if name != "" {
		out = nil
		for _, b := range brands {
			if strings.EqualFold(b.Name, name) {
				out = append(out, b)
			}
		}
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// SaveBrands writes the brand list as indented JSON.
func SaveBrands(path string, brands []models.Brand) error {
	data, err := json.MarshalIndent(brands, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal brands: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write brands file: %w", err)
	}
	return nil
}

// LoadBrands reads a brand list written by SaveBrands.
func LoadBrands(path string) ([]models.Brand, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read brands file: %w", err)
	}
	var brands []models.Brand
	if err := json.Unmarshal(data, &brands); err != nil {
		return nil, fmt.Errorf("parse brands file %s: %w", path, err)
	}
	if len(brands) == 0 {
		return nil, fmt.Errorf("brands file %s holds no brands", path)
	}
	return brands, nil
}
