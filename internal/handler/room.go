package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/arjaysison/library-room-reservation/internal/model"
	"github.com/arjaysison/library-room-reservation/internal/repository"
)

// RoomHandler serves the room catalogue.  These routes are public and
// sit behind the response cache.
type RoomHandler struct {
	Rooms *repository.RoomRepo
}

func NewRoomHandler(rooms *repository.RoomRepo) *RoomHandler {
	return &RoomHandler{Rooms: rooms}
}

type roomView struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Floor    string `json:"floor"`
	Capacity uint32 `json:"capacity"`
	IsActive bool   `json:"is_active"`
}

func roomViewOf(r *model.Room) roomView {
	return roomView{ID: r.ID, Name: r.Name, Floor: r.Floor, Capacity: r.Capacity, IsActive: r.IsActive}
}

// List returns rooms, by default only bookable ones.  Pass ?all=true to
// include inactive rooms.
func (h *RoomHandler) List(c echo.Context) error {
	activeOnly := c.QueryParam("all") != "true"
	rooms, err := h.Rooms.List(c.Request().Context(), activeOnly)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]roomView, 0, len(rooms))
	for i := range rooms {
		out = append(out, roomViewOf(&rooms[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": out})
}

// Get returns one room by id.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	room, err := h.Rooms.ByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, roomViewOf(room))
}
