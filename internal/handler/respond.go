package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arjaysison/library-room-reservation/internal/booking"
	"github.com/arjaysison/library-room-reservation/internal/middleware"
	"github.com/arjaysison/library-room-reservation/internal/model"
	"github.com/arjaysison/library-room-reservation/internal/repository"
)

// respondError maps engine errors onto HTTP responses.  Every category
// the booking package can return has a stable status code so clients can
// branch without parsing messages.
func respondError(c echo.Context, err error) error {
	var (
		ve *booking.ValidationError
		ce *booking.ConflictError
		pe *booking.PolicyError
		se *booking.StateError
		nf *booking.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
	case errors.As(err, &ce):
		body := echo.Map{"error": ce.Error()}
		if ce.Window.Valid() {
			body["conflict_window"] = echo.Map{
				"start": ce.Window.Start.UTC().Format(time.RFC3339),
				"end":   ce.Window.End.UTC().Format(time.RFC3339),
			}
		}
		return c.JSON(http.StatusConflict, body)
	case errors.As(err, &pe):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": pe.Error()})
	case errors.As(err, &se):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":          se.Error(),
			"current_status": string(se.Current),
		})
	case errors.As(err, &nf):
		return c.JSON(http.StatusNotFound, echo.Map{"error": nf.Error()})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	log.Printf("handler: internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// currentUserID reads the authenticated user ID stored by the JWT
// middleware.
func currentUserID(c echo.Context) uint64 {
	if v, ok := c.Get(middleware.CtxUserID).(uint64); ok {
		return v
	}
	return 0
}

// isStaff reports whether the request carries a staff-capable role.
func isStaff(c echo.Context) bool {
	role, _ := c.Get(middleware.CtxRole).(string)
	return model.Staff(role)
}

// reservationView is the JSON shape of a reservation in responses.
type reservationView struct {
	ID                 string              `json:"id"`
	PrimaryUserID      uint64              `json:"primary_user_id"`
	RoomID             uint64              `json:"room_id"`
	RoomName           string              `json:"room_name"`
	Location           string              `json:"location"`
	StartTime          time.Time           `json:"start_time"`
	EndTime            time.Time           `json:"end_time"`
	ExtendedEndTime    *time.Time          `json:"extended_end_time,omitempty"`
	MaxExtendedEndTime *time.Time          `json:"max_extended_end_time,omitempty"`
	Purpose            string              `json:"purpose"`
	Status             string              `json:"status"`
	ExtensionStatus    *string             `json:"extension_status,omitempty"`
	ExtensionReason    *string             `json:"extension_reason,omitempty"`
	ActualStartTime    *time.Time          `json:"actual_start_time,omitempty"`
	ActualEndTime      *time.Time          `json:"actual_end_time,omitempty"`
	CheckedIn          bool                `json:"checked_in"`
	GroupSize          int                 `json:"group_size"`
	Participants       []model.Participant `json:"participants"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func viewOf(r *model.Reservation) reservationView {
	v := reservationView{
		ID:                 r.ID,
		PrimaryUserID:      r.PrimaryUserID,
		RoomID:             r.RoomID,
		RoomName:           r.RoomName,
		Location:           r.Location,
		StartTime:          r.StartTime,
		EndTime:            r.EndTime,
		ExtendedEndTime:    r.ExtendedEndTime,
		MaxExtendedEndTime: r.MaxExtendedEndTime,
		Purpose:            r.Purpose,
		Status:             string(r.Status),
		ExtensionReason:    r.ExtensionReason,
		ActualStartTime:    r.ActualStartTime,
		ActualEndTime:      r.ActualEndTime,
		CheckedIn:          r.CheckedIn,
		GroupSize:          r.GroupSize(),
		Participants:       r.Participants,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if v.Participants == nil {
		v.Participants = []model.Participant{}
	}
	if r.ExtensionStatus != nil {
		s := string(*r.ExtensionStatus)
		v.ExtensionStatus = &s
	}
	return v
}

func viewsOf(rs []model.Reservation) []reservationView {
	out := make([]reservationView, 0, len(rs))
	for i := range rs {
		out = append(out, viewOf(&rs[i]))
	}
	return out
}
