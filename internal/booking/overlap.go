package booking

import (
	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// Overlaps is the single overlap predicate for half-open intervals
// [aStart, aEnd) and [bStart, bEnd).  Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd model.TimeOfDay) bool {
	return aStart < bEnd && aEnd > bStart
}

// Overlapping returns the reservations whose window intersects
// [start, end), regardless of status.
func Overlapping(reservations []model.Reservation, start, end model.TimeOfDay) []model.Reservation {
	var out []model.Reservation
	for _, r := range reservations {
		if Overlaps(r.StartTime, r.EndTime, start, end) {
			out = append(out, r)
		}
	}
	return out
}

// BookedCapacity sums party sizes of CONFIRMED reservations overlapping
// [start, end).
func BookedCapacity(reservations []model.Reservation, start, end model.TimeOfDay) int {
	total := 0
	for _, r := range Overlapping(reservations, start, end) {
		if r.Status == model.StatusConfirmed {
			total += r.PartySize
		}
	}
	return total
}

// OverlapCount counts CONFIRMED reservations overlapping [start, end).
func OverlapCount(reservations []model.Reservation, start, end model.TimeOfDay) int {
	n := 0
	for _, r := range Overlapping(reservations, start, end) {
		if r.Status == model.StatusConfirmed {
			n++
		}
	}
	return n
}
