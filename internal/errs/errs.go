// Package errs carries the error taxonomy shared across the pipeline.
// Callers branch on a Kind extracted from the error chain instead of
// matching concrete error types from third-party clients.
package errs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Kind classifies an error for retry and routing decisions.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransient is a network/connection-class failure worth one
	// bounded retry inside the extraction budget.
	KindTransient
	// KindRateLimited is a 429 from a remote service.
	KindRateLimited
	// KindServerSide is a 5xx from a remote service.
	KindServerSide
	// KindPermanent is any other 4xx or an unrecoverable client error.
	KindPermanent
	// KindSchema means model output violated the response contract.
	KindSchema
	// KindStaleTag means the store rejected a tag value the local
	// vocabulary cache believed valid.
	KindStaleTag
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate_limited"
	case KindServerSide:
		return "server_side"
	case KindPermanent:
		return "permanent"
	case KindSchema:
		return "schema"
	case KindStaleTag:
		return "stale_tag"
	}
	return "unknown"
}

// Error wraps an underlying error with a taxonomy kind and operation label.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a classified error.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the kind from an error chain, KindUnknown if absent.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindUnknown
}

// Transient reports whether an error is network/connection class.
// Explicitly classified errors win; otherwise the chain is inspected for
// the stdlib network error types.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case KindTransient:
		return true
	case KindRateLimited, KindServerSide, KindPermanent, KindSchema, KindStaleTag:
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// RetryableModel reports whether a model-call error is worth a backoff
// retry: server-side 5xx or rate limiting, nothing else.
func RetryableModel(err error) bool {
	switch KindOf(err) {
	case KindServerSide, KindRateLimited:
		return true
	}
	return false
}

// KindFromHTTPStatus maps a remote status code onto the taxonomy.
func KindFromHTTPStatus(code int) Kind {
	switch {
	case code == 429:
		return KindRateLimited
	case code >= 500:
		return KindServerSide
	case code >= 400:
		return KindPermanent
	}
	return KindUnknown
}
