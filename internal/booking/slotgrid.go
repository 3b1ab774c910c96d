package booking

import (
	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// Slot is a half-open candidate booking window [Start, End).
type Slot struct {
	Start model.TimeOfDay `json:"start"`
	End   model.TimeOfDay `json:"end"`
}

// SlotsFor enumerates the fixed grid of a space for one operating window.
// The grid starts at the opening time and steps by the slot duration; it
// stops before the first slot whose end would pass the closing time or
// roll over midnight.  The buffer never narrows a slot.
func SlotsFor(window *model.OperatingWindow, space *model.Space) []Slot {
	if !window.Accepting() || space == nil || space.SlotDurationMinutes <= 0 {
		return nil
	}
	open, closing := *window.OpenTime, *window.CloseTime
	var slots []Slot
	for cursor := open; ; {
		end, wrapped := cursor.Add(space.SlotDurationMinutes)
		if wrapped || end > closing {
			break
		}
		slots = append(slots, Slot{Start: cursor, End: end})
		cursor = end
	}
	return slots
}

// Aligned reports whether start sits exactly on a grid boundary rooted at
// the window's opening time.
func Aligned(window *model.OperatingWindow, space *model.Space, start model.TimeOfDay) bool {
	if !window.Accepting() || space.SlotDurationMinutes <= 0 {
		return false
	}
	offset := start.Minutes() - window.OpenTime.Minutes()
	return offset >= 0 && offset%space.SlotDurationMinutes == 0
}
