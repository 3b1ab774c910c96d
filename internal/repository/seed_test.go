package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/private-dining-reservation/internal/model"
)

const sampleSeed = `
restaurants:
  - id: 1
    name: Harbor House
    hours:
      - {weekday: 0, closed: true}
      - {weekday: mon, open: "18:00", close: "23:00"}
      - {weekday: Friday, open: "17:30:00", close: "00:00"}
    spaces:
      - {id: 10, name: Wine Cellar, slot_duration_minutes: 90, buffer_minutes: 15, max_capacity: 12, min_capacity: 4}
`

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed([]byte(sampleSeed))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(seed.Restaurants) != 1 {
		t.Fatalf("restaurants = %+v", seed.Restaurants)
	}
	r := seed.Restaurants[0]
	if r.ID != 1 || r.Name != "Harbor House" {
		t.Fatalf("restaurant = %+v", r.Restaurant)
	}
	wantDays := []time.Weekday{time.Sunday, time.Monday, time.Friday}
	for i, d := range wantDays {
		if time.Weekday(r.Hours[i].Weekday) != d {
			t.Fatalf("hours[%d] weekday = %d, want %s", i, r.Hours[i].Weekday, d)
		}
	}
	if !r.Hours[0].Closed {
		t.Fatal("sunday should be closed")
	}
	if fri := r.Hours[2]; *fri.Open != model.MustTimeOfDay("17:30") || *fri.Close != 0 {
		t.Fatalf("friday = %s-%s", fri.Open, fri.Close)
	}
	sp := r.Spaces[0]
	if sp.SlotDurationMinutes != 90 || sp.MaxCapacity != 12 || sp.BufferMinutes != 15 || sp.MinCapacity != 4 {
		t.Fatalf("space = %+v", sp)
	}
}

func TestParseSeedRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknownWeekday",
			yaml: "restaurants: [{id: 1, hours: [{weekday: someday}]}]",
			want: "unknown weekday",
		},
		{
			name: "weekdayOutOfRange",
			yaml: "restaurants: [{id: 1, hours: [{weekday: 7}]}]",
			want: "out of range",
		},
		{
			name: "badTime",
			yaml: `restaurants: [{id: 1, hours: [{weekday: 1, open: "25:00", close: "23:00"}]}]`,
			want: "invalid time of day",
		},
		{
			name: "missingRestaurantID",
			yaml: "restaurants: [{name: Nameless}]",
			want: "has no id",
		},
		{
			name: "duplicateWeekday",
			yaml: "restaurants: [{id: 1, hours: [{weekday: 1, closed: true}, {weekday: monday, closed: true}]}]",
			want: "twice",
		},
		{
			name: "closesBeforeOpening",
			yaml: `restaurants: [{id: 1, hours: [{weekday: 1, open: "22:00", close: "18:00"}]}]`,
			want: "closes before it opens",
		},
		{
			name: "zeroSlotDuration",
			yaml: "restaurants: [{id: 1, spaces: [{id: 10, max_capacity: 5}]}]",
			want: "slot duration",
		},
		{
			name: "slotLongerThanADay",
			yaml: "restaurants: [{id: 1, spaces: [{id: 10, slot_duration_minutes: 1440, max_capacity: 5}]}]",
			want: "slot duration between 1 and 1439",
		},
		{
			name: "zeroCapacity",
			yaml: "restaurants: [{id: 1, spaces: [{id: 10, slot_duration_minutes: 60}]}]",
			want: "max capacity",
		},
		{
			name: "duplicateSpace",
			yaml: `restaurants:
  - {id: 1, spaces: [{id: 10, slot_duration_minutes: 60, max_capacity: 4}]}
  - {id: 2, spaces: [{id: 10, slot_duration_minutes: 60, max_capacity: 4}]}`,
			want: "duplicate space id 10",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestSeedValidationErrorsWrapErrInvalidSeed(t *testing.T) {
	_, err := ParseSeed([]byte("restaurants: [{id: 1, spaces: [{id: 10, max_capacity: 5}]}]"))
	if !errors.Is(err, ErrInvalidSeed) {
		t.Fatalf("err = %v", err)
	}
}

func TestSeedApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(sampleSeed), 0o600); err != nil {
		t.Fatal(err)
	}
	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s := NewMemoryStore()
	ctx := context.Background()
	if err := seed.Apply(ctx, s); err != nil {
		t.Fatalf("apply: %v", err)
	}
	// Applying twice must not fail or duplicate anything.
	if err := seed.Apply(ctx, s); err != nil {
		t.Fatalf("re-apply: %v", err)
	}

	sp, err := s.Space(ctx, 10)
	if err != nil || sp.RestaurantID != 1 || sp.Name != "Wine Cellar" {
		t.Fatalf("space = %+v, %v", sp, err)
	}
	week, _ := s.OperatingWindows(ctx, 1)
	if len(week) != 3 {
		t.Fatalf("week = %+v", week)
	}
	mon, _ := s.OperatingWindow(ctx, 1, time.Monday)
	if !mon.Accepting() || *mon.OpenTime != model.MustTimeOfDay("18:00") {
		t.Fatalf("monday = %+v", mon)
	}
	sun, _ := s.OperatingWindow(ctx, 1, time.Sunday)
	if sun.Accepting() {
		t.Fatalf("sunday accepts bookings: %+v", sun)
	}
}

func TestLoadSeedMissingFile(t *testing.T) {
	if _, err := LoadSeed(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
