// Package browser defines the page-session contract the crawler drives and
// its headless-Chrome implementation. Crawl logic depends only on Session,
// so tests can substitute a scripted fake.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNoElement reports that a query matched nothing. Plain lookups return
// it instead of waiting; callers treat it as "absent", not as a failure.
var ErrNoElement = errors.New("browser: no element matched")

// Response describes the document response of a navigation.
type Response struct {
	Status  int
	Elapsed time.Duration
}

// Element is a handle to one DOM node.
type Element interface {
	Text() (string, error)
	// Attribute returns the attribute value, or "" when the attribute is
	// not present on the node.
	Attribute(name string) (string, error)
	Query(selector string) (Element, error)
	QueryAll(selector string) ([]Element, error)
}

// Session is a single browser page the crawler navigates sequentially.
// Lifecycle (launching and closing the browser) belongs to the caller.
type Session interface {
	// Navigate loads url and waits for the load event. The returned
	// Response carries the document status and the observed load time.
	Navigate(ctx context.Context, url string) (*Response, error)
	// WaitLoad blocks until the current document settles.
	WaitLoad(ctx context.Context) error
	// WaitForSelector blocks until selector matches or timeout elapses.
	WaitForSelector(selector string, timeout time.Duration) error
	Query(selector string) (Element, error)
	QueryAll(selector string) ([]Element, error)
	HTML() (string, error)
	Screenshot() ([]byte, error)
}
