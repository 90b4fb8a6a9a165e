package booking

import (
	"fmt"
	"time"
)

// Overlaps reports whether two stay intervals collide. Boundaries are
// inclusive: a stay ending at the exact instant another begins still
// conflicts, so check-out and check-in may not coincide on one apartment.
func Overlaps(aFrom, aTo, bFrom, bTo time.Time) bool {
	return !aFrom.After(bTo) && !aTo.Before(bFrom)
}

// ConflictQuery describes an availability probe. ExcludeID carries the
// booking's own id on the update path so it never collides with itself.
type ConflictQuery struct {
	ApartmentID uint
	From        time.Time
	To          time.Time
	ExcludeID   uint
}

// ConflictError reports the bookings that occupy the requested interval.
type ConflictError struct {
	Conflicts []Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking: apartment already booked for this period (%d conflicting)", len(e.Conflicts))
}
