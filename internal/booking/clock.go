package booking

import (
	"time"

	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// Clock supplies the current time.  Production code uses RealClock; tests
// pin "today" with FixedClock.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in the process's local zone, which is
// the restaurant's zone.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Today returns the calendar date of the clock's current instant.
func Today(c Clock) model.Date {
	return model.DateOf(c.Now())
}
