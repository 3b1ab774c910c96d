package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/private-dining-reservation/internal/booking"
	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// writeError maps booking errors onto HTTP responses.  Every body carries
// "error"; validation failures add a stable "code" and capacity rejections
// add the capacity that was still free.
func writeError(c echo.Context, err error) error {
	var ve *booking.ValidationError
	var ce *booking.CapacityExceededError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message, "code": ve.Code})
	case errors.As(err, &ce):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":              "capacity exceeded",
			"code":               "CAPACITY_EXCEEDED",
			"requested":          ce.Requested,
			"available_capacity": ce.Available,
		})
	case errors.Is(err, booking.ErrAlreadyTerminal):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "code": "ALREADY_TERMINAL"})
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, booking.ErrSpaceNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error(), "code": "NOT_FOUND"})
	case errors.Is(err, booking.ErrStoreContention):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "busy, retry shortly", "code": "STORE_CONTENTION"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "request cancelled", "code": "CANCELLED"})
	}
	c.Logger().Errorf("unhandled error on %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "code": booking.CodeInvalidRequestData})
}

// pathID parses the :id path parameter as a positive integer.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// queryDate reads the required ?date=YYYY-MM-DD parameter.
func queryDate(c echo.Context) (model.Date, bool) {
	d, err := model.ParseDate(c.QueryParam("date"))
	return d, err == nil
}
