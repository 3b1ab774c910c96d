package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is anything whose reachability decides readiness, typically the
// *sql.DB behind the store.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health returns a health-check handler for load balancers.  With a
// nil pinger (memory store) it always answers "ok"; otherwise a failed
// ping answers 503.
func Health(p Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if p != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := p.PingContext(ctx); err != nil {
				return c.String(http.StatusServiceUnavailable, "database unavailable")
			}
		}
		return c.String(http.StatusOK, "ok")
	}
}
