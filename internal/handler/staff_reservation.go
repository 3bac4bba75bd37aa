package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arjaysison/library-room-reservation/internal/booking"
	"github.com/arjaysison/library-room-reservation/internal/repository"
	"github.com/arjaysison/library-room-reservation/internal/schedule"
)

// StaffReservationHandler exposes the staff workflow: reviewing the
// queue, approve/reject decisions, check-in, extension decisions, the
// manual sweep trigger, archiving and account verification.
type StaffReservationHandler struct {
	Svc   *booking.Service
	Users *repository.UserRepo
}

func NewStaffReservationHandler(svc *booking.Service, users *repository.UserRepo) *StaffReservationHandler {
	return &StaffReservationHandler{Svc: svc, Users: users}
}

// List returns reservations matching the optional status, room_id and
// day (YYYY-MM-DD) query filters, soonest first.
func (h *StaffReservationHandler) List(c echo.Context) error {
	var f repository.ReservationFilter
	if s := strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))); s != "" {
		st := schedule.Status(s)
		if !st.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		f.Status = st
	}
	if s := c.QueryParam("room_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room_id"})
		}
		f.RoomID = id
	}
	if s := c.QueryParam("day"); s != "" {
		day, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid day, want YYYY-MM-DD"})
		}
		f.Day = day
	}
	out, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": viewsOf(out)})
}

type statusReq struct {
	Status string `json:"status"` // APPROVED | REJECTED
}

// UpdateStatus applies the approve/reject decision on a pending
// reservation.
func (h *StaffReservationHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	res, err := h.Svc.UpdateStatus(c.Request().Context(), c.Param("id"),
		schedule.Status(strings.ToUpper(strings.TrimSpace(req.Status))))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(res))
}

// Start confirms the group's presence and marks the reservation ONGOING.
func (h *StaffReservationHandler) Start(c echo.Context) error {
	res, err := h.Svc.StartReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(res))
}

type extensionDecisionReq struct {
	Approve bool `json:"approve"`
}

// ResolveExtension applies the staff decision on a pending extension
// request.
func (h *StaffReservationHandler) ResolveExtension(c echo.Context) error {
	var req extensionDecisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	res, err := h.Svc.HandleExtension(c.Request().Context(), c.Param("id"), req.Approve)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(res))
}

// Sweep triggers the expiry sweep immediately, outside the periodic
// schedule.  Returns how many reservations were expired.
func (h *StaffReservationHandler) Sweep(c echo.Context) error {
	n, err := h.Svc.SweepExpired(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"expired": n})
}

// Archive soft-deletes a reservation into the archive table.
func (h *StaffReservationHandler) Archive(c echo.Context) error {
	if err := h.Svc.ArchiveReservation(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Restore reinstates an archived reservation under a fresh identity.
func (h *StaffReservationHandler) Restore(c echo.Context) error {
	res, err := h.Svc.RestoreReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, viewOf(res))
}

type verifyReq struct {
	Verified bool `json:"verified"`
}

// VerifyUser flips the verification gate on an account.  Only verified
// accounts may appear on reservations.
func (h *StaffReservationHandler) VerifyUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	req := verifyReq{Verified: true}
	_ = c.Bind(&req)
	ok, err := h.Users.SetVerified(c.Request().Context(), id, req.Verified)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": id, "verified": req.Verified})
}
