package ingest

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three ways a fetch can fail.
var (
	// ErrNetwork indicates the request failed, timed out or returned a non-2xx status
	ErrNetwork = errors.New("network error")

	// ErrParse indicates the response body is not valid JSON
	ErrParse = errors.New("parse error")

	// ErrMalformedResponse indicates valid JSON without a list-valued "records" field
	ErrMalformedResponse = errors.New("malformed response")
)

// FetchError wraps a fetch failure with the operation and source it came from.
// errors.Is matches both the sentinel kind and the underlying cause.
type FetchError struct {
	// Op is the stage that failed ("get", "decode", "validate")
	Op string

	// Source is the URL or file path being read
	Source string

	// Kind is one of the sentinel errors above
	Kind error

	// Err is the underlying cause, if any
	Err error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Source, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Source, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newFetchError(op, source string, kind, err error) *FetchError {
	return &FetchError{Op: op, Source: source, Kind: kind, Err: err}
}

// KindName returns a short label for err's kind, for logs and the status line.
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrParse):
		return "parse_error"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	}
	return "unknown"
}
