package model

import "time"

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
	StatusNoShow    Status = "NO_SHOW"
)

// Terminal reports whether no further transitions may leave s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Reservation records a party's booking of a space for one slot.  EndTime
// is always StartTime plus the space's slot duration.  Reservations are
// never removed on cancellation; only an administrative delete removes the
// row.  Revision increases on every write and guards concurrent updates.
//
// Fields:
//  ID                 – opaque identifier (UUID).
//  SpaceID            – space being reserved.
//  RestaurantID       – restaurant owning the space.
//  Date               – restaurant-local calendar date.
//  StartTime          – start of the reserved window, aligned to the slot grid.
//  EndTime            – exclusive end of the reserved window.
//  PartySize          – number of guests (1..100).
//  Status             – CONFIRMED, CANCELLED, COMPLETED or NO_SHOW.
//  CustomerName       – name of the booking customer.
//  CustomerEmail      – contact email.
//  CustomerPhone      – contact phone (optional).
//  SpecialRequests    – free text (optional).
//  CancellationReason – reason supplied on cancel (nullable).
//  CancelledAt        – when the reservation was cancelled (nullable).
//  Revision           – optimistic concurrency counter.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Reservation struct {
	ID                 string     `json:"id"`                            // reservations.id
	SpaceID            uint64     `json:"space_id"`                      // reservations.space_id
	RestaurantID       uint64     `json:"restaurant_id"`                 // reservations.restaurant_id
	Date               Date       `json:"date"`                          // reservations.reservation_date
	StartTime          TimeOfDay  `json:"start_time"`                    // reservations.start_minute
	EndTime            TimeOfDay  `json:"end_time"`                      // reservations.end_minute
	PartySize          int        `json:"party_size"`                    // reservations.party_size
	Status             Status     `json:"status"`                        // reservations.status
	CustomerName       string     `json:"customer_name"`                 // reservations.customer_name
	CustomerEmail      string     `json:"customer_email"`                // reservations.customer_email
	CustomerPhone      string     `json:"customer_phone,omitempty"`      // reservations.customer_phone
	SpecialRequests    string     `json:"special_requests,omitempty"`    // reservations.special_requests
	CancellationReason *string    `json:"cancellation_reason,omitempty"` // reservations.cancellation_reason (nullable)
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`        // reservations.cancelled_at (nullable)
	Revision           int64      `json:"revision"`                      // reservations.revision
	CreatedAt          time.Time  `json:"created_at"`                    // reservations.created_at
	UpdatedAt          time.Time  `json:"updated_at"`                    // reservations.updated_at
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (r *Reservation) Clone() *Reservation {
	if r == nil {
		return nil
	}
	cp := *r
	if r.CancellationReason != nil {
		reason := *r.CancellationReason
		cp.CancellationReason = &reason
	}
	if r.CancelledAt != nil {
		at := *r.CancelledAt
		cp.CancelledAt = &at
	}
	return &cp
}
