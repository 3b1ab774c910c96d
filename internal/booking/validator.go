package booking

import (
	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// Rules holds the tunable limits of the validator.
type Rules struct {
	HorizonDays  int
	MinPartySize int
	MaxPartySize int
}

// DefaultRules are the production limits.
var DefaultRules = Rules{HorizonDays: 90, MinPartySize: 1, MaxPartySize: 100}

// Request is a booking attempt as seen by the validator.
type Request struct {
	Date      model.Date
	StartTime model.TimeOfDay
	PartySize int
}

// Validator rejects invalid requests before they reach the ledger.  It is
// deterministic given its clock.
type Validator struct {
	clock Clock
	rules Rules
}

func NewValidator(clock Clock, rules Rules) *Validator {
	if rules.HorizonDays <= 0 {
		rules.HorizonDays = DefaultRules.HorizonDays
	}
	if rules.MinPartySize <= 0 {
		rules.MinPartySize = DefaultRules.MinPartySize
	}
	if rules.MaxPartySize <= 0 {
		rules.MaxPartySize = DefaultRules.MaxPartySize
	}
	return &Validator{clock: clock, rules: rules}
}

// Validate runs the rules in a fixed order and returns the first failure
// as a *ValidationError.  On success it returns the computed end time.
// The order is part of the contract: the same request always fails with
// the same code.
func (v *Validator) Validate(req Request, space *model.Space, window *model.OperatingWindow) (model.TimeOfDay, error) {
	today := Today(v.clock)

	if req.Date.Before(today) {
		return 0, invalid(CodeDateInPast, "date %s is in the past", req.Date)
	}
	if today.DaysUntil(req.Date) > v.rules.HorizonDays {
		return 0, invalid(CodeBeyondHorizon, "date %s is more than %d days ahead", req.Date, v.rules.HorizonDays)
	}

	end, err := v.checkHours(req, space, window)
	if err != nil {
		return 0, err
	}

	if !Aligned(window, space, req.StartTime) {
		return 0, invalid(CodeMisalignedStart, "start %s is not on the %d-minute grid from %s",
			req.StartTime, space.SlotDurationMinutes, window.OpenTime)
	}

	if req.PartySize < v.rules.MinPartySize || req.PartySize > v.rules.MaxPartySize {
		return 0, invalid(CodePartySizeRange, "party size must be between %d and %d", v.rules.MinPartySize, v.rules.MaxPartySize)
	}
	if req.PartySize > space.MaxCapacity {
		return 0, invalid(CodePartyOverCapacity, "party size %d exceeds space capacity %d", req.PartySize, space.MaxCapacity)
	}
	return end, nil
}

func (v *Validator) checkHours(req Request, space *model.Space, window *model.OperatingWindow) (model.TimeOfDay, error) {
	if !window.Accepting() {
		return 0, invalid(CodeClosed, "closed on %s", req.Date.Weekday())
	}
	if !req.StartTime.Valid() {
		return 0, invalid(CodeOutsideHours, "start %d is not a time of day", req.StartTime.Minutes())
	}
	end, wrapped := req.StartTime.Add(space.SlotDurationMinutes)
	// A slot longer than a day wraps past the start again, so the flag
	// matters as much as the comparison.
	if wrapped || end <= req.StartTime {
		return 0, invalid(CodeMidnightRollover, "reservation starting %s would end after midnight", req.StartTime)
	}
	if req.StartTime < *window.OpenTime || end > *window.CloseTime {
		return 0, invalid(CodeOutsideHours, "%s-%s is outside operating hours %s-%s",
			req.StartTime, end, window.OpenTime, window.CloseTime)
	}
	return end, nil
}
