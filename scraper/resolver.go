package scraper

import (
	"github.com/aluiziolira/go-scrape-watches/browser"
	"github.com/aluiziolira/go-scrape-watches/parser"
)

// queryable is the query surface shared by a page and an element, so the
// same chain resolution works at both scopes.
type queryable interface {
	Query(selector string) (browser.Element, error)
	QueryAll(selector string) ([]browser.Element, error)
}

// resolveElement walks an ordered selector chain and returns the first
// element any selector matches, or nil when the whole chain misses.
// Resolution never fails: query errors just move the chain along.
func resolveElement(q queryable, chain []string) browser.Element {
	for _, selector := range chain {
		el, err := q.Query(selector)
		if err != nil || el == nil {
			continue
		}
		return el
	}
	return nil
}

// resolveText walks the chain and returns the first non-empty trimmed text.
// Selectors that match an element with empty text are passed over.
func resolveText(q queryable, chain []string) string {
	for _, selector := range chain {
		el, err := q.Query(selector)
		if err != nil || el == nil {
			continue
		}
		text, err := el.Text()
		if err != nil {
			continue
		}
		if cleaned := parser.CleanText(text); cleaned != "" {
			return cleaned
		}
	}
	return ""
}

// resolveAll returns the matches of the first selector in the chain that
// yields any, or nil when none do.
func resolveAll(q queryable, chain []string) []browser.Element {
	for _, selector := range chain {
		els, err := q.QueryAll(selector)
		if err != nil || len(els) == 0 {
			continue
		}
		return els
	}
	return nil
}

func elementText(el browser.Element) string {
	if el == nil {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return parser.CleanText(text)
}
