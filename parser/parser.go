package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/aluiziolira/go-scrape-watches/models"
)

// Marketplace spec tables embed a JS loader inside value cells; everything
// from the line containing the loader onward is noise.
var loaderScript = regexp.MustCompile(`.*function docReady(?s:.*)`)

// CleanText trims surrounding whitespace from extracted DOM text.
func CleanText(s string) string {
	return strings.TrimSpace(s)
}

// StripLoaderScript removes embedded loader boilerplate from a spec value.
func StripLoaderScript(s string) string {
	return strings.TrimSpace(loaderScript.ReplaceAllString(s, ""))
}

// KeepSpecRow decides whether a parsed specification row carries data.
// The generic "Basic Info" header row and the placeholder "Description"
// row (key and value both "description") are markup artifacts; a
// description row with real text is kept.
func KeepSpecRow(key, value string) bool {
	if key == "" {
		return false
	}
	keyLower := strings.ToLower(key)
	if keyLower == "basic info" {
		return false
	}
	if keyLower == "description" && strings.ToLower(strings.TrimSpace(value)) == "description" {
		return false
	}
	return true
}

// ValidateWatch ensures the extractor captured the required fields.
func ValidateWatch(w *models.Watch) error {
	if w == nil {
		return fmt.Errorf("watch is nil")
	}
	if strings.TrimSpace(w.URL) == "" {
		return fmt.Errorf("watch missing url")
	}
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("watch missing name for %s", w.URL)
	}
	return nil
}

// AbsoluteURL resolves href against the site origin. Absolute URLs pass
// through untouched; unparseable hrefs are returned as-is.
func AbsoluteURL(base *url.URL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
