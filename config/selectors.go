package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Selectors holds the CSS query chains used during extraction. Chains are
// ordered: the first query that matches wins. The site markup drifts, so
// these live in configuration rather than at the call sites.
type Selectors struct {
	ListingContainer string   `yaml:"listing_container"`
	ListingLinks     []string `yaml:"listing_links"`
	// ListingItemProbe is a template with a single %d placeholder, probed
	// position by position when the bulk listing query matches nothing.
	ListingItemProbe  string   `yaml:"listing_item_probe"`
	DetailName        []string `yaml:"detail_name"`
	DetailPrice       []string `yaml:"detail_price"`
	DetailDescription []string `yaml:"detail_description"`
	SpecTables        []string `yaml:"spec_tables"`
	SpecRow           string   `yaml:"spec_row"`
	SpecKey           []string `yaml:"spec_key"`
	SpecValue         []string `yaml:"spec_value"`
	BrandLinks        string   `yaml:"brand_links"`
}

// DefaultSelectors returns the chains known to work on the marketplace.
func DefaultSelectors() Selectors {
	return Selectors{
		ListingContainer: "#wt-watches",
		ListingLinks:     []string{"#wt-watches a"},
		ListingItemProbe: "#wt-watches > div:nth-child(%d) > a",
		DetailName: []string{
			"#detail-page-dealer section.data h1 span",
			"h1",
		},
		DetailPrice: []string{".detail-page-price span"},
		DetailDescription: []string{
			"#detail-page-dealer section.data .description-text",
			"#detail-page-dealer section.data .article-description",
			".dealer-listing__description",
			".detail-page__description",
		},
		SpecTables: []string{
			"#detail-page-dealer section.data table",
			"#detail-page-dealer section.data div table",
			"table.technical-details",
			"table",
		},
		SpecRow:    "tbody > tr",
		SpecKey:    []string{"th", "td:first-child"},
		SpecValue:  []string{"td:last-child", "td:nth-child(2)"},
		BrandLinks: "#main-content .letter-register section div nav ul li a",
	}
}

// LoadSelectors reads a YAML override file on top of the defaults. Fields
// absent from the file keep their default chains. An empty path returns
// the defaults unchanged.
func LoadSelectors(path string) (Selectors, error) {
	selectors := DefaultSelectors()
	if path == "" {
		return selectors, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return selectors, fmt.Errorf("read selectors file: %w", err)
	}
	if err := yaml.Unmarshal(data, &selectors); err != nil {
		return selectors, fmt.Errorf("parse selectors file: %w", err)
	}
	if err := selectors.Validate(); err != nil {
		return selectors, fmt.Errorf("selectors file %s: %w", path, err)
	}
	return selectors, nil
}

// Validate ensures every chain has at least one query.
func (s *Selectors) Validate() error {
	if strings.TrimSpace(s.ListingContainer) == "" {
		return fmt.Errorf("listing container selector cannot be empty")
	}
	if len(s.ListingLinks) == 0 {
		return fmt.Errorf("listing links chain cannot be empty")
	}
	if !strings.Contains(s.ListingItemProbe, "%d") {
		return fmt.Errorf("listing item probe must contain a %%d placeholder")
	}
	if len(s.DetailName) == 0 {
		return fmt.Errorf("detail name chain cannot be empty")
	}
	if len(s.DetailPrice) == 0 {
		return fmt.Errorf("detail price chain cannot be empty")
	}
	if len(s.DetailDescription) == 0 {
		return fmt.Errorf("detail description chain cannot be empty")
	}
	if len(s.SpecTables) == 0 {
		return fmt.Errorf("spec tables chain cannot be empty")
	}
	if strings.TrimSpace(s.SpecRow) == "" {
		return fmt.Errorf("spec row selector cannot be empty")
	}
	if len(s.SpecKey) == 0 {
		return fmt.Errorf("spec key chain cannot be empty")
	}
	if len(s.SpecValue) == 0 {
		return fmt.Errorf("spec value chain cannot be empty")
	}
	if strings.TrimSpace(s.BrandLinks) == "" {
		return fmt.Errorf("brand links selector cannot be empty")
	}
	return nil
}
