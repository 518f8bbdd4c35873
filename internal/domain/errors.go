package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a section, version or suggestion was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input (e.g. empty content where
	// non-empty is required)
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates a missing or invalid identity token
	UnauthorizedError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConcurrencyConflict is returned when two version appends race to
	// claim the same version number. Recoverable: re-read the max version
	// number and retry once.
	ErrConcurrencyConflict = errors.New("version number conflict")

	// ErrOracleFailure is returned when a generation or judgment call to the
	// oracle fails or returns malformed output. Never auto-retried: oracle
	// calls are costly and not idempotent.
	ErrOracleFailure = errors.New("oracle call failed")

	// ErrGenerationInFlight is returned when a generation is requested for a
	// section key that already has one in flight.
	ErrGenerationInFlight = errors.New("generation already in flight for section")

	// ErrTerminalSuggestion is returned when accepting or rejecting a
	// suggestion that already left the pending state.
	ErrTerminalSuggestion = errors.New("suggestion already resolved")
)

// ConcurrencyConflictError carries the section and contested version number
// of a failed ledger append.
type ConcurrencyConflictError struct {
	SectionID     string
	VersionNumber int
}

func (e *ConcurrencyConflictError) Error() string {
	return "version number already claimed for section " + e.SectionID
}

func (e *ConcurrencyConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConcurrencyConflict
func (e *ConcurrencyConflictError) Is(target error) bool {
	return target == ErrConcurrencyConflict
}
