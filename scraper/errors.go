package scraper

import (
	"context"
	"errors"
	"fmt"
)

// ErrNavTimeout indicates a navigation or load wait ran out of time.
type ErrNavTimeout struct {
	Err error
}

func (e ErrNavTimeout) Error() string {
	return fmt.Errorf("nav_timeout: %w", e.Err).Error()
}

func (e ErrNavTimeout) Unwrap() error {
	return e.Err
}

// ErrRateLimited indicates the target rate-limited the request (HTTP 429).
type ErrRateLimited struct {
	Err error
}

func (e ErrRateLimited) Error() string {
	return fmt.Errorf("rate_limited: %w", e.Err).Error()
}

func (e ErrRateLimited) Unwrap() error {
	return e.Err
}

// ErrServerError indicates a 5xx document response.
type ErrServerError struct {
	Err error
}

func (e ErrServerError) Error() string {
	return fmt.Errorf("server_error: %w", e.Err).Error()
}

func (e ErrServerError) Unwrap() error {
	return e.Err
}

// ErrBadStatus indicates any other non-success document response.
type ErrBadStatus struct {
	Status int
	Err    error
}

func (e ErrBadStatus) Error() string {
	return fmt.Errorf("bad_status: %w", e.Err).Error()
}

func (e ErrBadStatus) Unwrap() error {
	return e.Err
}

// ErrMissingListing indicates the listing container never appeared on a
// loaded page.
type ErrMissingListing struct {
	Err error
}

func (e ErrMissingListing) Error() string {
	return fmt.Errorf("missing_listing: %w", e.Err).Error()
}

func (e ErrMissingListing) Unwrap() error {
	return e.Err
}

// statusError maps a document response status to a typed error, nil for a
// successful load. Anything but 200 fails the page; a zero status means no
// document response arrived at all.
func statusError(status int) error {
	switch {
	case status == 200:
		return nil
	case status == 0:
		return ErrBadStatus{Status: 0, Err: errors.New("no document response")}
	case status == 429:
		return ErrRateLimited{Err: fmt.Errorf("http status %d", status)}
	case status >= 500:
		return ErrServerError{Err: fmt.Errorf("http status %d", status)}
	default:
		return ErrBadStatus{Status: status, Err: fmt.Errorf("http status %d", status)}
	}
}

func classifyNavError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrNavTimeout{Err: err}
	}
	return err
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var navTimeout ErrNavTimeout
	if errors.As(err, &navTimeout) {
		return "nav_timeout"
	}
	var rateLimited ErrRateLimited
	if errors.As(err, &rateLimited) {
		return "rate_limited"
	}
	var serverError ErrServerError
	if errors.As(err, &serverError) {
		return "server_error"
	}
	var badStatus ErrBadStatus
	if errors.As(err, &badStatus) {
		return "bad_status"
	}
	var missingListing ErrMissingListing
	if errors.As(err, &missingListing) {
		return "missing_listing"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "nav_timeout"
	}
	return "other"
}
