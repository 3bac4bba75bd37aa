package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arjaysison/library-room-reservation/internal/booking"
)

// ReservationHandler exposes the booking endpoints available to regular
// users: creating and inspecting their reservations, pre-flight checks,
// cancellation, early end, extensions and roster edits.
type ReservationHandler struct {
	Svc *booking.Service
}

func NewReservationHandler(svc *booking.Service) *ReservationHandler {
	return &ReservationHandler{Svc: svc}
}

type createReservationReq struct {
	RoomID         uint64    `json:"room_id"`
	StartTime      time.Time `json:"start_time"`
	Purpose        string    `json:"purpose"`
	ParticipantIDs []string  `json:"participant_ids"` // campus id_numbers, excluding the requester
}

// Create books a one-hour slot.  The authenticated user becomes the
// primary reserver.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	res, err := h.Svc.CreateReservation(c.Request().Context(), booking.CreateRequest{
		PrimaryUserID:  currentUserID(c),
		RoomID:         req.RoomID,
		StartTime:      req.StartTime,
		ParticipantIDs: req.ParticipantIDs,
		Purpose:        req.Purpose,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, viewOf(res))
}

// ListMine returns the caller's reservations, newest first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	out, err := h.Svc.ListByUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": viewsOf(out)})
}

// Get returns one reservation.  Users see only their own; staff see all.
func (h *ReservationHandler) Get(c echo.Context) error {
	res, err := h.Svc.Get(c.Request().Context(), c.Param("id"), currentUserID(c), isStaff(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(res))
}

type checkLimitReq struct {
	StartTime time.Time `json:"start_time"`
	AsMain    bool      `json:"as_main"` // whether the weekly quota applies
}

// CheckLimit is the read-only pre-flight: would this user be blocked by
// the weekly quota or an overlapping commitment at the given time?
func (h *ReservationHandler) CheckLimit(c echo.Context) error {
	var req checkLimitReq
	if err := c.Bind(&req); err != nil || req.StartTime.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time required"})
	}
	out, err := h.Svc.CheckLimit(c.Request().Context(), currentUserID(c), req.StartTime, req.AsMain)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type validateFloorReq struct {
	Location       string   `json:"location"`
	ParticipantIDs []string `json:"participant_ids"`
}

// ValidateFloorAccess splits candidate participants into allowed and
// denied for a floor, so the booking form can flag problems before
// submission.
func (h *ReservationHandler) ValidateFloorAccess(c echo.Context) error {
	var req validateFloorReq
	if err := c.Bind(&req); err != nil || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location required"})
	}
	out, err := h.Svc.ValidateFloorAccess(c.Request().Context(), req.Location, req.ParticipantIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Cancel withdraws a pending or approved reservation.  Primary reserver
// only.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	res, err := h.Svc.CancelReservation(c.Request().Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(res))
}

// End closes an ongoing reservation early, freeing the room.
func (h *ReservationHandler) End(c echo.Context) error {
	res, err := h.Svc.EndReservationEarly(c.Request().Context(), c.Param("id"), currentUserID(c), isStaff(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(res))
}

type extensionReq struct {
	Reason string `json:"reason"`
}

// RequestExtension asks for the maximum safely available extra time.
// The response carries the granted candidate end; when a later booking
// capped the grant, conflict_time names its start.
func (h *ReservationHandler) RequestExtension(c echo.Context) error {
	var req extensionReq
	_ = c.Bind(&req)
	offer, err := h.Svc.RequestExtension(c.Request().Context(), c.Param("id"), currentUserID(c), req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	body := echo.Map{"reservation": viewOf(offer.Reservation)}
	if offer.ConflictTime != nil {
		body["conflict_time"] = offer.ConflictTime.UTC().Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, body)
}

type participantReq struct {
	IDNumber string `json:"id_number"`
}

// AddParticipant appends one person to the roster.
func (h *ReservationHandler) AddParticipant(c echo.Context) error {
	var req participantReq
	if err := c.Bind(&req); err != nil || req.IDNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id_number required"})
	}
	res, err := h.Svc.AddParticipant(c.Request().Context(), c.Param("id"), currentUserID(c), req.IDNumber)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(res))
}

// RemoveParticipant drops one person from the roster.
func (h *ReservationHandler) RemoveParticipant(c echo.Context) error {
	res, err := h.Svc.RemoveParticipant(c.Request().Context(), c.Param("id"), currentUserID(c), c.Param("id_number"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(res))
}
