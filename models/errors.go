package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeQueryTooShort = "QUERY_TOO_SHORT"
	ErrCodeSourceDown    = "SOURCE_UNAVAILABLE"
	ErrCodeMalformed     = "MALFORMED_RECORD"
	ErrCodeSessionInit   = "SESSION_INIT_FAILED"
	ErrCodeNoResults     = "NO_RESULTS"
	ErrCodeOrchestration = "ORCHESTRATION_FAILED"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// ErrMalformedRecord marks a single extracted item that cannot be turned
// into a listing. Callers skip the item and keep going.
var ErrMalformedRecord = errors.New("malformed record")

// SearchError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type SearchError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// NewSearchError creates a new SearchError.
func NewSearchError(code, message string, err error) *SearchError {
	return &SearchError{Code: code, Message: message, Err: err}
}

// CodeOf returns the code carried by err, or ErrCodeInternal when err is
// not a *SearchError.
func CodeOf(err error) string {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}
