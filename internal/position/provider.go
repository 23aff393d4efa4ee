package position

import (
	"errors"
	"fmt"
	"time"

	"foodbank-finder/internal/models"
)

// FailureCode categorizes why a position request failed.
type FailureCode string

const (
	PermissionDenied    FailureCode = "PERMISSION_DENIED"
	PositionUnavailable FailureCode = "POSITION_UNAVAILABLE"
	Timeout             FailureCode = "TIMEOUT"
	Unknown             FailureCode = "UNKNOWN"
)

// Error is a categorized position failure.
type Error struct {
	Code FailureCode
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("position request failed (%s): %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the failure code from an error chain, defaulting to
// Unknown.
func CodeOf(err error) FailureCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return Unknown
}

// Message returns the user-facing text for a failure code.
func Message(code FailureCode) string {
	switch code {
	case PermissionDenied:
		return "Location access denied. Please enable location services."
	case PositionUnavailable:
		return "Location information is unavailable."
	case Timeout:
		return "Location request timed out."
	default:
		return "An unknown location error occurred."
	}
}

// Fix is a resolved position with the time it was acquired.
type Fix struct {
	Position models.Position
	At       time.Time
}
