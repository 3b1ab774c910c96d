package booking

import (
	"testing"

	"github.com/iliyamo/private-dining-reservation/internal/model"
)

func window(openAt, closeAt string) *model.OperatingWindow {
	o, c := model.MustTimeOfDay(openAt), model.MustTimeOfDay(closeAt)
	return &model.OperatingWindow{RestaurantID: 1, OpenTime: &o, CloseTime: &c}
}

func TestSlotsFor(t *testing.T) {
	tests := []struct {
		name     string
		window   *model.OperatingWindow
		duration int
		want     []string
	}{
		{"eveningNinetyMinutes", window("18:00", "23:00"), 90, []string{"18:00-19:30", "19:30-21:00", "21:00-22:30"}},
		{"exactFit", window("18:00", "22:30"), 90, []string{"18:00-19:30", "19:30-21:00", "21:00-22:30"}},
		{"hourly", window("12:00", "15:00"), 60, []string{"12:00-13:00", "13:00-14:00", "14:00-15:00"}},
		{"neverCrossesMidnight", window("21:00", "23:59"), 90, []string{"21:00-22:30"}},
		{"slotLongerThanWindow", window("18:00", "19:00"), 90, nil},
		{"closedDay", &model.OperatingWindow{Closed: true}, 90, nil},
		{"missingWindow", nil, 90, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SlotsFor(tt.window, &model.Space{SlotDurationMinutes: tt.duration})
			if len(got) != len(tt.want) {
				t.Fatalf("got %d slots %v, want %v", len(got), got, tt.want)
			}
			for i, s := range got {
				if s.Start.String()+"-"+s.End.String() != tt.want[i] {
					t.Errorf("slot %d = %s-%s, want %s", i, s.Start, s.End, tt.want[i])
				}
			}
		})
	}
}

func TestSlotsForNeverEmitsMidnightSlot(t *testing.T) {
	for _, s := range SlotsFor(window("18:00", "23:00"), &model.Space{SlotDurationMinutes: 90}) {
		if s.Start == model.MustTimeOfDay("22:30") {
			t.Fatalf("emitted slot starting 22:30: %v", s)
		}
		if s.End <= s.Start {
			t.Fatalf("slot %v wraps past midnight", s)
		}
	}
}

func TestAligned(t *testing.T) {
	w := window("18:00", "23:00")
	space := &model.Space{SlotDurationMinutes: 90}
	tests := []struct {
		start string
		want  bool
	}{
		{"18:00", true},
		{"19:30", true},
		{"21:00", true},
		{"18:47", false},
		{"19:00", false},
		{"16:30", false}, // on the 90-minute rhythm but before opening
	}
	for _, tt := range tests {
		if got := Aligned(w, space, model.MustTimeOfDay(tt.start)); got != tt.want {
			t.Errorf("Aligned(%s) = %v, want %v", tt.start, got, tt.want)
		}
	}
}
