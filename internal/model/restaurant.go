package model

import "time"

// Restaurant owns private dining spaces and a weekly operating calendar.
// This struct corresponds to a row in the `restaurants` table.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the restaurant.
//  CreatedAt – timestamp when the restaurant was created.
//  UpdatedAt – timestamp of last update.
type Restaurant struct {
	ID        uint64    `json:"id" yaml:"id"`        // restaurants.id
	Name      string    `json:"name" yaml:"name"`    // restaurants.name
	CreatedAt time.Time `json:"created_at" yaml:"-"` // restaurants.created_at
	UpdatedAt time.Time `json:"updated_at" yaml:"-"` // restaurants.updated_at
}

// OperatingWindow is the opening interval of a restaurant for one weekday.
// There is at most one window per (restaurant, weekday).  A window that is
// closed, or that lacks an open or close time, accepts no reservations.
//
// Fields:
//  RestaurantID – owning restaurant.
//  Weekday      – 0=Sunday .. 6=Saturday.
//  OpenTime     – first instant of the day a slot may start (nil if unset).
//  CloseTime    – last instant a slot may end (nil if unset).
//  Closed       – explicit closed flag for the weekday.
type OperatingWindow struct {
	RestaurantID uint64       `json:"restaurant_id"`        // operating_windows.restaurant_id
	Weekday      time.Weekday `json:"weekday"`              // operating_windows.weekday
	OpenTime     *TimeOfDay   `json:"open_time,omitempty"`  // operating_windows.open_minute (nullable)
	CloseTime    *TimeOfDay   `json:"close_time,omitempty"` // operating_windows.close_minute (nullable)
	Closed       bool         `json:"closed"`               // operating_windows.closed
}

// Accepting reports whether the window can take reservations at all.
func (w *OperatingWindow) Accepting() bool {
	return w != nil && !w.Closed && w.OpenTime != nil && w.CloseTime != nil
}
