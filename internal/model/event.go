package model

import "time"

// Event types published after a reservation changes.
const (
	EventConfirmed = "reservation.confirmed"
	EventCancelled = "reservation.cancelled"
	EventCompleted = "reservation.completed"
	EventNoShow    = "reservation.no_show"
	EventDeleted   = "reservation.deleted"
)

// ReservationEvent is the message body written to the events queue and
// appended to the audit log by the consumer.
//
// Fields:
//  Type          – one of the Event* constants.
//  ReservationID – affected reservation.
//  SpaceID       – space of the reservation.
//  RestaurantID  – restaurant owning the space.
//  Date          – reservation date.
//  StartTime     – window start.
//  EndTime       – window end.
//  PartySize     – guests in the party.
//  Status        – status after the change.
//  OccurredAt    – when the change was committed.
type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	SpaceID       uint64    `json:"space_id"`
	RestaurantID  uint64    `json:"restaurant_id"`
	Date          Date      `json:"date"`
	StartTime     TimeOfDay `json:"start_time"`
	EndTime       TimeOfDay `json:"end_time"`
	PartySize     int       `json:"party_size"`
	Status        Status    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewReservationEvent snapshots r for an event of the given type.
func NewReservationEvent(eventType string, r *Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID,
		SpaceID:       r.SpaceID,
		RestaurantID:  r.RestaurantID,
		Date:          r.Date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		PartySize:     r.PartySize,
		Status:        r.Status,
		OccurredAt:    at.UTC(),
	}
}
