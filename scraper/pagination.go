package scraper

import (
	"fmt"
	"net/url"
	"strings"
)

// PageURL derives the listing URL for a page number from the brand's base
// listing URL. Page 1 is always the base URL itself; later pages rewrite the
// path to the site's index-N.htm convention while keeping scheme, host and
// query untouched.
func PageURL(base string, page int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse listing url: %w", err)
	}
	if page <= 1 {
		return base, nil
	}

	path := parsed.Path
	switch {
	case strings.HasSuffix(path, "index.htm"):
		path = strings.TrimSuffix(path, "index.htm") + fmt.Sprintf("index-%d.htm", page)
	case strings.HasSuffix(path, "/"):
		path += fmt.Sprintf("index-%d.htm", page)
	default:
		path += fmt.Sprintf("/index-%d.htm", page)
	}

	parsed.Path = path
	return parsed.String(), nil
}
