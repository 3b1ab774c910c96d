package model

import "time"

// Space is a bookable private dining room.  Several reservations may share
// a space at the same time as long as their combined party size stays
// within MaxCapacity.
//
// Fields:
//  ID                  – primary key identifier.
//  RestaurantID        – restaurant that owns the space.
//  Name                – display name of the room.
//  SlotDurationMinutes – length of every reservation in this space (> 0).
//  BufferMinutes       – informational spacing for scheduling UIs; never
//                        used in overlap or capacity math.
//  MaxCapacity         – ceiling on the sum of overlapping party sizes.
//  MinCapacity         – advisory minimum party size; never blocks a booking.
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
type Space struct {
	ID                  uint64    `json:"id" yaml:"id"`                                      // spaces.id
	RestaurantID        uint64    `json:"restaurant_id" yaml:"-"`                            // spaces.restaurant_id
	Name                string    `json:"name" yaml:"name"`                                  // spaces.name
	SlotDurationMinutes int       `json:"slot_duration_minutes" yaml:"slot_duration_minutes"` // spaces.slot_duration_minutes
	BufferMinutes       int       `json:"buffer_minutes" yaml:"buffer_minutes"`               // spaces.buffer_minutes
	MaxCapacity         int       `json:"max_capacity" yaml:"max_capacity"`                   // spaces.max_capacity
	MinCapacity         int       `json:"min_capacity" yaml:"min_capacity"`                   // spaces.min_capacity
	CreatedAt           time.Time `json:"created_at" yaml:"-"`                               // spaces.created_at
	UpdatedAt           time.Time `json:"updated_at" yaml:"-"`                               // spaces.updated_at
}
