package repository

import (
	"context"
	"database/sql"

	"github.com/arjaysison/library-room-reservation/internal/model"
)

// RoomRepo provides read access to the rooms catalogue.  Room management
// lives outside this service; bookings only need to resolve and list
// rooms.
type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

const roomCols = `id, name, floor, capacity, is_active, created_at, updated_at`

func scanRoom(s rowScanner) (*model.Room, error) {
	var rm model.Room
	err := s.Scan(&rm.ID, &rm.Name, &rm.Floor, &rm.Capacity, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

// ByID fetches a room.  Returns ErrNotFound when absent.
func (r *RoomRepo) ByID(ctx context.Context, id uint64) (*model.Room, error) {
	rm, err := scanRoom(r.DB.QueryRowContext(ctx,
		`SELECT `+roomCols+` FROM rooms WHERE id = ? LIMIT 1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return rm, err
}

// List returns rooms ordered by floor then name.  When activeOnly is set,
// inactive rooms are filtered out.
func (r *RoomRepo) List(ctx context.Context, activeOnly bool) ([]model.Room, error) {
	q := `SELECT ` + roomCols + ` FROM rooms`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY floor, name`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	return out, rows.Err()
}
