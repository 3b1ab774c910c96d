package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/private-dining-reservation/internal/booking"
	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// SpaceHandler serves the read-only views of spaces and restaurants.
type SpaceHandler struct {
	Svc *booking.Service
}

// GetSpace returns the configuration of one space.
func (h *SpaceHandler) GetSpace(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid space id")
	}
	sp, err := h.Svc.Space(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sp)
}

// GetOperatingHours lists the weekly windows of a restaurant.
func (h *SpaceHandler) GetOperatingHours(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid restaurant id")
	}
	windows, err := h.Svc.OperatingHours(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"restaurant_id": id, "items": windows})
}

// GetAvailability projects the slot grid of a space for ?date=.
func (h *SpaceHandler) GetAvailability(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid space id")
	}
	date, ok := queryDate(c)
	if !ok {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	slots, err := h.Svc.CheckAvailability(c.Request().Context(), id, date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"space_id": id, "date": date, "slots": slots})
}

// GetLedger exposes the raw capacity ledger for ?date=.
func (h *SpaceHandler) GetLedger(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid space id")
	}
	date, ok := queryDate(c)
	if !ok {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	entries, err := h.Svc.LedgerEntries(c.Request().Context(), id, date)
	if err != nil {
		return writeError(c, err)
	}
	if entries == nil {
		entries = []model.LedgerEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"space_id": id, "date": date, "items": entries})
}

// GetReconcile reports ledger entries that disagree with the live
// reservations.  An empty list means the ledger is consistent.
func (h *SpaceHandler) GetReconcile(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid space id")
	}
	date, ok := queryDate(c)
	if !ok {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	drift, err := h.Svc.Reconcile(c.Request().Context(), id, date)
	if err != nil {
		return writeError(c, err)
	}
	if drift == nil {
		drift = []booking.Drift{}
	}
	return c.JSON(http.StatusOK, echo.Map{"space_id": id, "date": date, "consistent": len(drift) == 0, "drift": drift})
}
