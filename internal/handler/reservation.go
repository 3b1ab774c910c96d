package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/private-dining-reservation/internal/booking"
	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// ReservationHandler serves reservation creation and lifecycle endpoints.
type ReservationHandler struct {
	Svc *booking.Service
}

// CreateReservationRequest is the body of POST /v1/spaces/:id/reservations.
// The end time is never accepted from clients; it is derived from the
// space's slot duration.
type CreateReservationRequest struct {
	Date            string `json:"date"`       // YYYY-MM-DD
	StartTime       string `json:"start_time"` // HH:MM
	PartySize       int    `json:"party_size"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	SpecialRequests string `json:"special_requests"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// CreateReservation books a slot.  201 with the reservation on success,
// 400 for invalid requests and 409 when the slot lacks room.
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	spaceID, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid space id")
	}
	var req CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	date, err := model.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	start, err := model.ParseTimeOfDay(strings.TrimSpace(req.StartTime))
	if err != nil {
		return badRequest(c, "start_time must be HH:MM")
	}

	r, err := h.Svc.CreateReservation(c.Request().Context(), booking.CreateRequest{
		SpaceID:         spaceID,
		Date:            date,
		StartTime:       start,
		PartySize:       req.PartySize,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// ListReservations lists every reservation of a space for ?date=.
func (h *ReservationHandler) ListReservations(c echo.Context) error {
	spaceID, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid space id")
	}
	date, ok := queryDate(c)
	if !ok {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	list, err := h.Svc.ListReservations(c.Request().Context(), spaceID, date)
	if err != nil {
		return writeError(c, err)
	}
	if list == nil {
		list = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, echo.Map{"space_id": spaceID, "date": date, "items": list})
}

func (h *ReservationHandler) GetReservation(c echo.Context) error {
	r, err := h.Svc.GetReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// CancelReservation accepts an optional {"reason": "..."} body.
func (h *ReservationHandler) CancelReservation(c echo.Context) error {
	var body cancelRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	var reason *string
	if body.Reason != "" {
		reason = &body.Reason
	}
	r, err := h.Svc.CancelReservation(c.Request().Context(), c.Param("id"), reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) CompleteReservation(c echo.Context) error {
	r, err := h.Svc.CompleteReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) MarkNoShow(c echo.Context) error {
	r, err := h.Svc.MarkNoShow(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// DeleteReservation hard-deletes a reservation; 204 on success.
func (h *ReservationHandler) DeleteReservation(c echo.Context) error {
	if err := h.Svc.DeleteReservation(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
