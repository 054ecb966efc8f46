package selections

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrSelectionNotFound   = errors.New("selection not found")
	ErrSelectionConflict   = errors.New("selection is being modified concurrently")
	ErrPlanNotFound        = errors.New("plan not found for listing")
	ErrSessionNotFound     = errors.New("session is not bookable for listing")
	ErrSessionsUnavailable = errors.New("some selected sessions are no longer available")
	ErrCatalogUnavailable  = errors.New("catalog unavailable")
	ErrRateLimited         = errors.New("rate limited")
)

type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}

// UnavailableError lists the sessions dropped from a selection because they
// stopped being bookable.
type UnavailableError struct {
	SessionIDs []int64
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("sessions no longer available: %v", e.SessionIDs)
}

func (e *UnavailableError) Unwrap() error {
	return ErrSessionsUnavailable
}
