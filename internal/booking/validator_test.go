package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// 2026-03-02 is a Monday.
var testNow = time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)

func TestValidate(t *testing.T) {
	today := model.DateOf(testNow)
	v := NewValidator(FixedClock(testNow), DefaultRules)
	space := &model.Space{ID: 10, RestaurantID: 1, SlotDurationMinutes: 90, MaxCapacity: 9}
	big := &model.Space{ID: 11, RestaurantID: 1, SlotDurationMinutes: 90, MaxCapacity: 200}
	overnight := &model.Space{ID: 12, RestaurantID: 1, SlotDurationMinutes: 1500, MaxCapacity: 9}
	open := window("18:00", "23:00")

	tests := []struct {
		name   string
		date   model.Date
		start  string
		party  int
		space  *model.Space
		window *model.OperatingWindow
		code   string
	}{
		{"valid", today.AddDays(7), "19:30", 4, space, open, ""},
		{"today", today, "18:00", 1, space, open, ""},
		{"yesterday", today.AddDays(-1), "19:30", 4, space, open, CodeDateInPast},
		{"exactlyAtHorizon", today.AddDays(90), "19:30", 4, space, open, ""},
		{"pastHorizon", today.AddDays(91), "19:30", 4, space, open, CodeBeyondHorizon},
		{"noWindow", today.AddDays(1), "19:30", 4, space, nil, CodeClosed},
		{"closedFlag", today.AddDays(1), "19:30", 4, space, &model.OperatingWindow{Closed: true}, CodeClosed},
		{"missingCloseTime", today.AddDays(1), "19:30", 4, space, &model.OperatingWindow{OpenTime: open.OpenTime}, CodeClosed},
		{"beforeOpening", today.AddDays(1), "16:30", 4, space, open, CodeOutsideHours},
		{"endsAfterClose", today.AddDays(1), "22:00", 4, space, open, CodeOutsideHours},
		{"wouldCrossMidnight", today.AddDays(1), "22:30", 4, space, window("18:00", "23:59"), CodeMidnightRollover},
		{"slotLongerThanADay", today.AddDays(1), "18:00", 4, overnight, open, CodeMidnightRollover},
		{"misaligned", today.AddDays(1), "18:47", 4, space, open, CodeMisalignedStart},
		{"alignedSecondSlot", today.AddDays(1), "19:30", 4, space, open, ""},
		{"emptyParty", today.AddDays(1), "19:30", 0, space, open, CodePartySizeRange},
		{"partyOverHundred", today.AddDays(1), "19:30", 101, big, open, CodePartySizeRange},
		{"partyOverSpace", today.AddDays(1), "19:30", 10, space, open, CodePartyOverCapacity},
		{"pastDateWinsOverMisalignment", today.AddDays(-3), "18:47", 0, space, nil, CodeDateInPast},
		{"hoursWinOverMisalignment", today.AddDays(1), "22:15", 4, space, open, CodeOutsideHours},
		{"alignmentWinsOverParty", today.AddDays(1), "18:47", 0, space, open, CodeMisalignedStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{Date: tt.date, StartTime: tod(tt.start), PartySize: tt.party}
			end, err := v.Validate(req, tt.space, tt.window)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if want, _ := tod(tt.start).Add(tt.space.SlotDurationMinutes); end != want {
					t.Fatalf("end = %s, want %s", end, want)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError %s", err, tt.code)
			}
			if ve.Code != tt.code {
				t.Fatalf("code = %s, want %s (%s)", ve.Code, tt.code, ve.Message)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatal("validation error does not match ErrValidation")
			}
		})
	}
}

func TestValidateMidnightCloseRejectsLastSlot(t *testing.T) {
	v := NewValidator(FixedClock(testNow), DefaultRules)
	space := &model.Space{SlotDurationMinutes: 90, MaxCapacity: 9}
	// A window that closes exactly at midnight cannot take a slot ending
	// at 00:00.
	_, err := v.Validate(Request{Date: model.DateOf(testNow).AddDays(1), StartTime: tod("22:30"), PartySize: 2},
		space, window("19:30", "00:00"))
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Code != CodeMidnightRollover {
		t.Fatalf("err = %v, want %s", err, CodeMidnightRollover)
	}
}

func TestValidatorCustomRules(t *testing.T) {
	v := NewValidator(FixedClock(testNow), Rules{HorizonDays: 30, MinPartySize: 2, MaxPartySize: 12})
	space := &model.Space{SlotDurationMinutes: 60, MaxCapacity: 20}
	today := model.DateOf(testNow)

	if _, err := v.Validate(Request{Date: today.AddDays(31), StartTime: tod("18:00"), PartySize: 4}, space, window("18:00", "22:00")); !errors.Is(err, ErrValidation) {
		t.Errorf("31 days with a 30-day horizon: err = %v", err)
	}
	if _, err := v.Validate(Request{Date: today.AddDays(1), StartTime: tod("18:00"), PartySize: 1}, space, window("18:00", "22:00")); !errors.Is(err, ErrValidation) {
		t.Errorf("party below minimum: err = %v", err)
	}
}
