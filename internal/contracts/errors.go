package contracts

import (
	"errors"
	"fmt"
)

// ErrRunNotFound is returned by RunStore lookups for unknown run IDs.
var ErrRunNotFound = errors.New("run not found")

// ValidationError is fatal to a run and surfaced to the caller before
// any fetch happens. The HTTP layer maps it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ProviderError is raised by real data providers on upstream failure.
// The gateway absorbs it with a mock fallback; it never reaches the
// external caller.
type ProviderError struct {
	Provider string
	Ticker   string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error for %s: %v", e.Provider, e.Ticker, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps an upstream failure with provider context.
func NewProviderError(provider, ticker string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Ticker: ticker, Err: err}
}

// PersistenceError is fatal: a scored run that cannot be saved cannot
// later be retrieved, so the run is reported as failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err is (or wraps) a PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// CacheError is recoverable: the gateway treats a failed read as a miss
// and a failed write as a skipped write-through.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
