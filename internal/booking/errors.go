// Package booking holds the capacity reservation engine for private dining
// spaces: operating calendars, the slot grid, overlap detection, the
// capacity ledger, request validation and the reservation lifecycle.
package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks client-fixable request errors.  The concrete
	// value is always a *ValidationError.
	ErrValidation = errors.New("invalid reservation request")

	// ErrCapacityExceeded is the normal outcome of losing a race for the
	// last seats.  The concrete value is a *CapacityExceededError.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrStoreContention is returned when optimistic retries are exhausted.
	// Callers may retry the whole request.
	ErrStoreContention = errors.New("store contention, retry later")

	// ErrRevisionConflict is raised by stores when a conditional write sees
	// a revision other than the one the caller observed.  The ledger
	// retries on it; it never reaches service callers.
	ErrRevisionConflict = errors.New("revision conflict")

	ErrNotFound        = errors.New("reservation not found")
	ErrSpaceNotFound   = errors.New("space not found")
	ErrAlreadyTerminal = errors.New("reservation already in a terminal state")
)

// Validation error codes, stable for API clients.
const (
	CodeDateInPast         = "DATE_IN_PAST"
	CodeBeyondHorizon      = "BEYOND_BOOKING_HORIZON"
	CodeClosed             = "CLOSED"
	CodeOutsideHours       = "OUTSIDE_OPERATING_HOURS"
	CodeMidnightRollover   = "MIDNIGHT_ROLLOVER"
	CodeMisalignedStart    = "MISALIGNED_START"
	CodePartySizeRange     = "PARTY_SIZE_OUT_OF_RANGE"
	CodePartyOverCapacity  = "PARTY_EXCEEDS_CAPACITY"
	CodeInvalidRequestData = "INVALID_REQUEST"
)

// ValidationError describes the first rule a request failed.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(code, format string, args ...any) error {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CapacityExceededError carries what was observed when admission failed so
// callers can suggest a smaller party or another slot.
type CapacityExceededError struct {
	Requested int
	Available int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded: requested %d, available %d", e.Requested, e.Available)
}

func (e *CapacityExceededError) Is(target error) bool { return target == ErrCapacityExceeded }
