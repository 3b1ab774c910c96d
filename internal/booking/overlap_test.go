package booking

import (
	"testing"

	"github.com/iliyamo/private-dining-reservation/internal/model"
)

func tod(s string) model.TimeOfDay { return model.MustTimeOfDay(s) }

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"touchingEndpointsDoNotOverlap", "17:00", "18:00", "18:00", "19:30", false},
		{"partialOverlap", "17:30", "18:45", "18:00", "19:30", true},
		{"identical", "18:00", "19:30", "18:00", "19:30", true},
		{"contained", "18:30", "19:00", "18:00", "19:30", true},
		{"containing", "17:00", "20:00", "18:00", "19:30", true},
		{"touchingAfter", "19:30", "21:00", "18:00", "19:30", false},
		{"disjoint", "12:00", "13:00", "18:00", "19:30", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tod(tt.aStart), tod(tt.aEnd), tod(tt.bStart), tod(tt.bEnd))
			if got != tt.want {
				t.Fatalf("Overlaps = %v, want %v", got, tt.want)
			}
			// The predicate is symmetric.
			if back := Overlaps(tod(tt.bStart), tod(tt.bEnd), tod(tt.aStart), tod(tt.aEnd)); back != got {
				t.Fatalf("Overlaps not symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestBookedCapacityCountsConfirmedOnly(t *testing.T) {
	rs := []model.Reservation{
		{StartTime: tod("18:00"), EndTime: tod("19:30"), PartySize: 4, Status: model.StatusConfirmed},
		{StartTime: tod("18:00"), EndTime: tod("19:30"), PartySize: 3, Status: model.StatusCancelled},
		{StartTime: tod("17:30"), EndTime: tod("18:45"), PartySize: 2, Status: model.StatusConfirmed},
		{StartTime: tod("19:30"), EndTime: tod("21:00"), PartySize: 5, Status: model.StatusConfirmed},
		{StartTime: tod("18:00"), EndTime: tod("19:30"), PartySize: 6, Status: model.StatusNoShow},
	}
	if got := BookedCapacity(rs, tod("18:00"), tod("19:30")); got != 6 {
		t.Errorf("BookedCapacity = %d, want 6", got)
	}
	if got := OverlapCount(rs, tod("18:00"), tod("19:30")); got != 2 {
		t.Errorf("OverlapCount = %d, want 2", got)
	}
	if got := len(Overlapping(rs, tod("18:00"), tod("19:30"))); got != 4 {
		t.Errorf("Overlapping returned %d, want 4 of any status", got)
	}
}

func TestProjectStatuses(t *testing.T) {
	slots := []Slot{{tod("18:00"), tod("19:30")}, {tod("19:30"), tod("21:00")}, {tod("21:00"), tod("22:30")}}
	rs := []model.Reservation{
		{StartTime: tod("18:00"), EndTime: tod("19:30"), PartySize: 9, Status: model.StatusConfirmed},
		{StartTime: tod("19:30"), EndTime: tod("21:00"), PartySize: 7, Status: model.StatusConfirmed},
	}
	got := Project(slots, rs, 9, DefaultLimitedRatio)
	want := []struct {
		booked, available int
		status            SlotStatus
	}{
		{9, 0, SlotFull},
		{7, 2, SlotLimited},
		{0, 9, SlotAvailable},
	}
	for i, w := range want {
		if got[i].BookedCapacity != w.booked || got[i].AvailableCapacity != w.available || got[i].Status != w.status {
			t.Errorf("slot %d = %+v, want booked %d available %d %s", i, got[i], w.booked, w.available, w.status)
		}
	}
}
