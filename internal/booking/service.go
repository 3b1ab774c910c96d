package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// AvailabilityCache stores availability projections per (space, date)
// under a generation counter.  Get reports the generation it looked under
// and Put stores only under that generation, so a projection computed
// before an Invalidate is never served after it.  Implementations treat
// every failure as a miss; the cache is never consulted for admission.
type AvailabilityCache interface {
	Get(ctx context.Context, spaceID uint64, date model.Date) (slots []SlotAvailability, generation int64, ok bool)
	Put(ctx context.Context, spaceID uint64, date model.Date, generation int64, slots []SlotAvailability)
	Invalidate(ctx context.Context, spaceID uint64, date model.Date)
}

// EventPublisher receives an event after every committed mutation.
type EventPublisher interface {
	Publish(ctx context.Context, ev model.ReservationEvent) error
}

// Options configures a Service.  Zero values select the defaults.
type Options struct {
	Rules        Rules
	Ledger       LedgerOptions
	LimitedRatio float64
	Cache        AvailabilityCache
	Events       EventPublisher
	Logger       *log.Logger
}

// CreateRequest is a booking attempt with its customer details.
type CreateRequest struct {
	SpaceID         uint64
	Date            model.Date
	StartTime       model.TimeOfDay
	PartySize       int
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	SpecialRequests string
}

// Drift reports a ledger entry whose total disagrees with the live
// CONFIRMED reservations of its window.
type Drift struct {
	Key    model.SlotKey `json:"key"`
	Ledger int           `json:"ledger_booked"`
	Live   int           `json:"live_booked"`
}

// Service is the entry point of the reservation engine.  It is safe for
// concurrent use; the only synchronization between callers happens inside
// the capacity ledger.
type Service struct {
	store        Store
	clock        Clock
	calendar     *Calendar
	validator    *Validator
	ledger       *CapacityLedger
	lifecycle    *Lifecycle
	limitedRatio float64
	cache        AvailabilityCache
	events       EventPublisher
	logger       *log.Logger
}

func NewService(store Store, clock Clock, opts Options) *Service {
	if clock == nil {
		clock = RealClock{}
	}
	if opts.LimitedRatio <= 0 || opts.LimitedRatio >= 1 {
		opts.LimitedRatio = DefaultLimitedRatio
	}
	if opts.Logger == nil {
		opts.Logger = log.New("booking")
		opts.Logger.SetLevel(log.OFF)
	}
	ledger := NewCapacityLedger(store, opts.Ledger)
	return &Service{
		store:        store,
		clock:        clock,
		calendar:     NewCalendar(store),
		validator:    NewValidator(clock, opts.Rules),
		ledger:       ledger,
		lifecycle:    NewLifecycle(ledger, store, clock),
		limitedRatio: opts.LimitedRatio,
		cache:        opts.Cache,
		events:       opts.Events,
		logger:       opts.Logger,
	}
}

// CheckAvailability projects every grid slot of the space on date.  A
// closed day yields an empty projection.
func (s *Service) CheckAvailability(ctx context.Context, spaceID uint64, date model.Date) ([]SlotAvailability, error) {
	space, err := s.store.Space(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	var generation int64
	if s.cache != nil {
		slots, gen, ok := s.cache.Get(ctx, spaceID, date)
		if ok {
			return slots, nil
		}
		generation = gen
	}

	window, err := s.calendar.WindowFor(ctx, space.RestaurantID, date)
	if err != nil {
		return nil, fmt.Errorf("load operating window: %w", err)
	}
	grid := SlotsFor(window, space)
	reservations, err := s.store.ReservationsForDay(ctx, spaceID, date)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	slots := Project(grid, reservations, space.MaxCapacity, s.limitedRatio)

	if s.cache != nil {
		s.cache.Put(ctx, spaceID, date, generation, slots)
	}
	return slots, nil
}

// CreateReservation validates req and, when capacity allows, stores a
// CONFIRMED reservation in the same atomic unit as the allocation.
func (s *Service) CreateReservation(ctx context.Context, req CreateRequest) (*model.Reservation, error) {
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerEmail) == "" {
		return nil, invalid(CodeInvalidRequestData, "customer name and email are required")
	}
	space, err := s.store.Space(ctx, req.SpaceID)
	if err != nil {
		return nil, err
	}
	window, err := s.calendar.WindowFor(ctx, space.RestaurantID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("load operating window: %w", err)
	}
	end, err := s.validator.Validate(Request{Date: req.Date, StartTime: req.StartTime, PartySize: req.PartySize}, space, window)
	if err != nil {
		return nil, err
	}

	r := &model.Reservation{
		ID:              uuid.NewString(),
		SpaceID:         space.ID,
		RestaurantID:    space.RestaurantID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         end,
		PartySize:       req.PartySize,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		SpecialRequests: req.SpecialRequests,
	}
	if err := s.lifecycle.Create(ctx, r, space.MaxCapacity); err != nil {
		s.logFailure("create", fmt.Sprintf("space %d %s %s", space.ID, req.Date, req.StartTime), err)
		return nil, err
	}
	s.logger.Infof("reservation %s confirmed: space %d %s %s-%s party %d",
		r.ID, r.SpaceID, r.Date, r.StartTime, r.EndTime, r.PartySize)
	s.afterCommit(ctx, model.EventConfirmed, r)
	return r.Clone(), nil
}

// CancelReservation moves a CONFIRMED reservation to CANCELLED and
// returns its capacity.
func (s *Service) CancelReservation(ctx context.Context, id string, reason *string) (*model.Reservation, error) {
	if reason != nil {
		trimmed := strings.TrimSpace(*reason)
		if trimmed == "" {
			reason = nil
		} else {
			reason = &trimmed
		}
	}
	r, err := s.lifecycle.Cancel(ctx, id, reason)
	return s.finished(ctx, "cancel", model.EventCancelled, id, r, err)
}

// CompleteReservation marks a CONFIRMED reservation as COMPLETED.
func (s *Service) CompleteReservation(ctx context.Context, id string) (*model.Reservation, error) {
	r, err := s.lifecycle.Complete(ctx, id)
	return s.finished(ctx, "complete", model.EventCompleted, id, r, err)
}

// MarkNoShow marks a CONFIRMED reservation as NO_SHOW.
func (s *Service) MarkNoShow(ctx context.Context, id string) (*model.Reservation, error) {
	r, err := s.lifecycle.NoShow(ctx, id)
	return s.finished(ctx, "no-show", model.EventNoShow, id, r, err)
}

// DeleteReservation hard-deletes a reservation, releasing its capacity if
// it was still CONFIRMED.
func (s *Service) DeleteReservation(ctx context.Context, id string) error {
	r, err := s.lifecycle.Delete(ctx, id)
	if err != nil {
		s.logFailure("delete", id, err)
		return err
	}
	s.logger.Infof("reservation %s deleted (was %s)", r.ID, r.Status)
	s.afterCommit(ctx, model.EventDeleted, r)
	return nil
}

// GetReservation returns one reservation by id.
func (s *Service) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	return s.store.Reservation(ctx, id)
}

// ListReservations returns every reservation of a space on date, ordered
// by start time.
func (s *Service) ListReservations(ctx context.Context, spaceID uint64, date model.Date) ([]model.Reservation, error) {
	if _, err := s.store.Space(ctx, spaceID); err != nil {
		return nil, err
	}
	list, err := s.store.ReservationsForDay(ctx, spaceID, date)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(list, func(a, b model.Reservation) int {
		if a.StartTime != b.StartTime {
			return int(a.StartTime) - int(b.StartTime)
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return list, nil
}

func (s *Service) Space(ctx context.Context, id uint64) (*model.Space, error) {
	return s.store.Space(ctx, id)
}

// OperatingHours returns the configured weekly windows of a restaurant.
func (s *Service) OperatingHours(ctx context.Context, restaurantID uint64) ([]model.OperatingWindow, error) {
	return s.calendar.Week(ctx, restaurantID)
}

// LedgerEntries exposes the raw ledger of a space on date.
func (s *Service) LedgerEntries(ctx context.Context, spaceID uint64, date model.Date) ([]model.LedgerEntry, error) {
	if _, err := s.store.Space(ctx, spaceID); err != nil {
		return nil, err
	}
	return s.ledger.Entries(ctx, spaceID, date)
}

// Reconcile compares every ledger entry of a space on date with the sum
// of CONFIRMED party sizes overlapping its window and reports the keys
// that disagree.  It changes nothing.
func (s *Service) Reconcile(ctx context.Context, spaceID uint64, date model.Date) ([]Drift, error) {
	entries, err := s.LedgerEntries(ctx, spaceID, date)
	if err != nil {
		return nil, err
	}
	reservations, err := s.store.ReservationsForDay(ctx, spaceID, date)
	if err != nil {
		return nil, err
	}

	seen := make(map[model.SlotKey]bool, len(entries))
	var drift []Drift
	for _, e := range entries {
		seen[e.Key] = true
		if live := BookedCapacity(reservations, e.Key.Start, e.Key.End); live != e.Booked {
			drift = append(drift, Drift{Key: e.Key, Ledger: e.Booked, Live: live})
		}
	}
	// CONFIRMED reservations whose window has no entry at all.
	for _, r := range reservations {
		if r.Status != model.StatusConfirmed {
			continue
		}
		key := AllocationOf(&r, 0).Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		drift = append(drift, Drift{Key: key, Live: BookedCapacity(reservations, key.Start, key.End)})
	}
	return drift, nil
}

func (s *Service) finished(ctx context.Context, op, eventType, id string, r *model.Reservation, err error) (*model.Reservation, error) {
	if err != nil {
		s.logFailure(op, id, err)
		return nil, err
	}
	s.logger.Infof("reservation %s %s: released %d on space %d %s %s-%s",
		r.ID, strings.ToLower(string(r.Status)), r.PartySize, r.SpaceID, r.Date, r.StartTime, r.EndTime)
	s.afterCommit(ctx, eventType, r)
	return r, nil
}

// afterCommitTimeout bounds the side effects once they are detached from
// the request.
const afterCommitTimeout = 5 * time.Second

// afterCommit runs the best-effort side effects of a committed mutation.
// Neither can undo or fail the mutation.  They run detached from the
// caller's cancellation: a client that hangs up after the commit must not
// leave the availability cache stale or drop the event.
func (s *Service) afterCommit(ctx context.Context, eventType string, r *model.Reservation) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), afterCommitTimeout)
	defer cancel()
	if s.cache != nil {
		s.cache.Invalidate(ctx, r.SpaceID, r.Date)
	}
	if s.events == nil {
		return
	}
	ev := model.NewReservationEvent(eventType, r, s.clock.Now())
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Errorf("publish %s for %s: %v", eventType, r.ID, err)
	}
}

func (s *Service) logFailure(op, subject string, err error) {
	switch {
	case errors.Is(err, ErrCapacityExceeded):
		s.logger.Debugf("%s %s: %v", op, subject, err)
	case errors.Is(err, ErrStoreContention):
		s.logger.Warnf("%s %s: %v", op, subject, err)
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrSpaceNotFound), errors.Is(err, ErrAlreadyTerminal),
		errors.Is(err, context.Canceled):
		s.logger.Debugf("%s %s: %v", op, subject, err)
	default:
		s.logger.Errorf("%s %s: %v", op, subject, err)
	}
}
