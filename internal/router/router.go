// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/private-dining-reservation/internal/booking"
	"github.com/iliyamo/private-dining-reservation/internal/config"
	"github.com/iliyamo/private-dining-reservation/internal/handler"
	"github.com/iliyamo/private-dining-reservation/internal/middleware"
)

// Deps carries what the routes need.  Redis may be nil, which turns rate
// limiting off; Health may be nil for the memory store.
type Deps struct {
	Service   *booking.Service
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Health    handler.Pinger
	Logger    *log.Logger
}

// RegisterRoutes registers the health check and the /v1 API.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.Health))

	spaces := &handler.SpaceHandler{Svc: d.Service}
	reservations := &handler.ReservationHandler{Svc: d.Service}

	v1 := e.Group("/v1")
	v1.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Logger))

	v1.GET("/restaurants/:id/hours", spaces.GetOperatingHours)
	v1.GET("/spaces/:id", spaces.GetSpace)
	v1.GET("/spaces/:id/availability", spaces.GetAvailability)
	v1.GET("/spaces/:id/reservations", reservations.ListReservations)
	v1.POST("/spaces/:id/reservations", reservations.CreateReservation)

	v1.GET("/reservations/:id", reservations.GetReservation)
	v1.POST("/reservations/:id/cancel", reservations.CancelReservation)
	v1.POST("/reservations/:id/complete", reservations.CompleteReservation)
	v1.POST("/reservations/:id/no-show", reservations.MarkNoShow)
	v1.DELETE("/reservations/:id", reservations.DeleteReservation)

	// Diagnostics.  Authentication is out of scope; deployments are
	// expected to keep /v1/admin off the public ingress.
	admin := v1.Group("/admin")
	admin.GET("/spaces/:id/ledger", spaces.GetLedger)
	admin.GET("/spaces/:id/reconcile", spaces.GetReconcile)
}
