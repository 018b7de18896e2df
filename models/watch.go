// Package models defines data structures for the crawler.
package models

import "time"

// Brand is one entry of the brand list the crawler walks.
type Brand struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Watch represents one extracted listing item. URL is the unique key
// across the dataset; Price is kept verbatim as displayed on the site.
type Watch struct {
	URL            string            `json:"url"`
	Name           string            `json:"name"`
	Price          string            `json:"price"`
	Description    string            `json:"description"`
	Specifications map[string]string `json:"specifications"`
}

// Cursor is the per-brand resume point. CurrentPage is the next listing
// page to (re)load; ProcessedURLs holds every item URL already persisted.
type Cursor struct {
	CurrentPage   int      `json:"current_page"`
	ProcessedURLs []string `json:"processed_urls"`
}

// NewCursor returns the cursor a brand starts from.
func NewCursor() *Cursor {
	return &Cursor{CurrentPage: 1}
}

// ProcessedSet converts the persisted URL list into a lookup set.
func (c *Cursor) ProcessedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.ProcessedURLs))
	for _, u := range c.ProcessedURLs {
		set[u] = struct{}{}
	}
	return set
}

// CrawlResult holds the overall result of one crawl run.
type CrawlResult struct {
	Watches      []*Watch
	StartTime    time.Time
	EndTime      time.Time
	BrandCount   int
	PageCount    int
	ItemCount    int
	SkippedCount int
	RetryCount   int
	ErrorCount   int
	ErrorsByType map[string]int
}

// Merge folds a per-brand result into the run total.
func (r *CrawlResult) Merge(other *CrawlResult) {
	if other == nil {
		return
	}
	r.Watches = append(r.Watches, other.Watches...)
	r.BrandCount += other.BrandCount
	r.PageCount += other.PageCount
	r.ItemCount += other.ItemCount
	r.SkippedCount += other.SkippedCount
	r.RetryCount += other.RetryCount
	r.ErrorCount += other.ErrorCount
	if len(other.ErrorsByType) > 0 && r.ErrorsByType == nil {
		r.ErrorsByType = make(map[string]int)
	}
	for k, v := range other.ErrorsByType {
		r.ErrorsByType[k] += v
	}
}
