package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gocolly/colly/v2"

	"github.com/gourish-mokashi/Scrape-Data/models"
)

// DomainError indicates the URL was refused by the domain allow-list
// before any request went out.
type DomainError struct {
	URL string
	Err error
}

func (e DomainError) Error() string {
	return fmt.Errorf("domain rejected for %s: %w", e.URL, e.Err).Error()
}

func (e DomainError) Unwrap() error {
	return e.Err
}

// TransportError indicates the request produced no usable response:
// connection failures, timeouts and non-success statuses.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("transport error for %s: http status %d (%v)", e.URL, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("transport error for %s: http status %d", e.URL, e.StatusCode)
	default:
		return fmt.Errorf("transport error for %s: %w", e.URL, e.Err).Error()
	}
}

func (e TransportError) Unwrap() error {
	return e.Err
}

// ParseError indicates the response body could not be turned into a
// product.
type ParseError struct {
	URL string
	Err error
}

func (e ParseError) Error() string {
	return fmt.Errorf("parse error for %s: %w", e.URL, e.Err).Error()
}

func (e ParseError) Unwrap() error {
	return e.Err
}

// KindOf maps an error to the failure kind reported for it. Unclassified
// errors count as transport failures.
func KindOf(err error) models.FailureKind {
	var domain DomainError
	if errors.As(err, &domain) {
		return models.KindDomainRejected
	}
	var parse ParseError
	if errors.As(err, &parse) {
		return models.KindParseError
	}
	return models.KindTransportError
}

func classify(url string, err error, statusCode int) error {
	if errors.Is(err, colly.ErrForbiddenDomain) {
		return DomainError{URL: url, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TransportError{URL: url, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TransportError{URL: url, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return TransportError{URL: url, Err: err}
	}
	if statusCode >= http.StatusBadRequest {
		return TransportError{URL: url, StatusCode: statusCode, Err: err}
	}
	if err == nil {
		return nil
	}
	return TransportError{URL: url, Err: err}
}
