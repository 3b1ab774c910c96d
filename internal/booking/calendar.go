package booking

import (
	"context"
	"time"

	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// WindowSource supplies configured operating windows.  OperatingWindow
// returns (nil, nil) when no window exists for the weekday.
type WindowSource interface {
	OperatingWindow(ctx context.Context, restaurantID uint64, weekday time.Weekday) (*model.OperatingWindow, error)
	OperatingWindows(ctx context.Context, restaurantID uint64) ([]model.OperatingWindow, error)
}

// Calendar answers whether a restaurant is open on a date and when.
type Calendar struct {
	windows WindowSource
}

func NewCalendar(windows WindowSource) *Calendar {
	return &Calendar{windows: windows}
}

// WindowFor returns the operating window for the weekday of date, or nil
// when none is configured.  A nil window means closed.
func (c *Calendar) WindowFor(ctx context.Context, restaurantID uint64, date model.Date) (*model.OperatingWindow, error) {
	return c.windows.OperatingWindow(ctx, restaurantID, date.Weekday())
}

// Week returns all configured windows of a restaurant ordered by weekday.
func (c *Calendar) Week(ctx context.Context, restaurantID uint64) ([]model.OperatingWindow, error) {
	return c.windows.OperatingWindows(ctx, restaurantID)
}
