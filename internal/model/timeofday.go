package model

import (
	"fmt"
	"time"
)

// MinutesPerDay is the length of a calendar day in minutes.
const MinutesPerDay = 24 * 60

// TimeOfDay is a restaurant-local wall clock time expressed as minutes
// since midnight.  Valid values are in [0, MinutesPerDay).
type TimeOfDay int

// ParseTimeOfDay accepts "HH:MM", or "HH:MM:SS" with zero seconds as
// MySQL prints TIME columns.  Anything finer than a minute is rejected
// rather than truncated onto the slot grid.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	layouts := []string{"15:04", "15:04:05"}
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Second() != 0 {
			return 0, fmt.Errorf("time of day %q has seconds", s)
		}
		return TimeOfDay(t.Hour()*60 + t.Minute()), nil
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// MustTimeOfDay is ParseTimeOfDay for literals; it panics on bad input.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Add returns t shifted by the given number of minutes wrapped onto the
// 24h clock, mirroring how a wall clock rolls over at midnight.  The
// second return value reports whether the wrap happened.
func (t TimeOfDay) Add(minutes int) (TimeOfDay, bool) {
	sum := int(t) + minutes
	wrapped := sum >= MinutesPerDay || sum < 0
	sum %= MinutesPerDay
	if sum < 0 {
		sum += MinutesPerDay
	}
	return TimeOfDay(sum), wrapped
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int { return int(t) }

// Valid reports whether t lies within a single day.
func (t TimeOfDay) Valid() bool { return t >= 0 && t < MinutesPerDay }

// String formats t as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
