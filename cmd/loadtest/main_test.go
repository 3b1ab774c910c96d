package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/private-dining-reservation/internal/booking"
	"github.com/iliyamo/private-dining-reservation/internal/repository"
	"github.com/iliyamo/private-dining-reservation/internal/router"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := repository.NewMemoryStore()
	seed, err := repository.ParseSeed([]byte(`
restaurants:
  - id: 1
    name: Harbor House
    hours:
      - {weekday: monday, open: "18:00", close: "23:00"}
    spaces:
      - {id: 10, name: Wine Cellar, slot_duration_minutes: 90, max_capacity: 9}
`))
	if err != nil {
		t.Fatal(err)
	}
	if err := seed.Apply(context.Background(), store); err != nil {
		t.Fatal(err)
	}
	clock := booking.FixedClock(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	e := echo.New()
	router.RegisterRoutes(e, router.Deps{Service: booking.NewService(store, clock, booking.Options{})})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunNeverOverbooks(t *testing.T) {
	for _, concurrency := range []int{0, 4} {
		srv := newServer(t)
		rep, err := run(context.Background(), srv.Client(), options{
			BaseURL:     srv.URL,
			SpaceID:     10,
			Date:        "2026-03-09",
			Start:       "19:30",
			PartySize:   3,
			Requests:    10,
			Concurrency: concurrency,
		})
		if err != nil {
			t.Fatalf("concurrency %d: %v", concurrency, err)
		}
		if rep.ByStatus[http.StatusCreated] != 3 || rep.ByStatus[http.StatusConflict] != 7 {
			t.Fatalf("concurrency %d: statuses = %v", concurrency, rep.ByStatus)
		}
		if rep.Confirmed != 9 || rep.MaxCapacity != 9 || rep.overbooked() {
			t.Fatalf("concurrency %d: report = %+v", concurrency, rep)
		}
	}
}

func TestRunReportsUnreachableServer(t *testing.T) {
	srv := newServer(t)
	srv.Close()
	_, err := run(context.Background(), http.DefaultClient, options{
		BaseURL: srv.URL, SpaceID: 10, Date: "2026-03-09", Start: "19:30", PartySize: 3, Requests: 2,
	})
	if err == nil {
		t.Fatal("expected an error against a closed server")
	}
}
