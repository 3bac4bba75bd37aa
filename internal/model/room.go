package model

import "time"

// Room represents a bookable shared room in the `rooms` table.  Rooms are
// read-only from the reservation engine's point of view: bookings
// reference them but never modify them.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – room name unique per floor (e.g. "Discussion Room 101").
//  Floor     – floor identifier used by the access rules (e.g. "Ground",
//              "2nd", "4th").
//  Capacity  – maximum group size the room accommodates.
//  IsActive  – whether the room is currently bookable.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Room struct {
	ID        uint64    // rooms.id
	Name      string    // rooms.name
	Floor     string    // rooms.floor
	Capacity  uint32    // rooms.capacity
	IsActive  bool      // rooms.is_active
	CreatedAt time.Time // rooms.created_at
	UpdatedAt time.Time // rooms.updated_at
}
