package booking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSlotNoLongerAvailable is the expected race outcome when another
	// booking claims the slot between the availability check and commit.
	// Callers should immediately offer freshly computed alternatives.
	ErrSlotNoLongerAvailable = errors.New("requested time slot is no longer available")

	// ErrInvalidLocation is returned for a location outside the catalog.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidDateRange is returned for a past date or one beyond the
	// booking horizon.
	ErrInvalidDateRange = errors.New("date is in the past or beyond the booking horizon")
)

// IncompleteInfoError reports which required booking fields the session is
// still missing.
type IncompleteInfoError struct {
	Missing []string
}

func (e IncompleteInfoError) Error() string {
	return fmt.Sprintf("missing required information: %s", strings.Join(e.Missing, ", "))
}
