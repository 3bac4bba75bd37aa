package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arjaysison/library-room-reservation/internal/model"
	"github.com/arjaysison/library-room-reservation/internal/schedule"
)

// ReservationRepo provides all persistence for reservations and their
// participant snapshots.  All timestamp columns are stored in UTC
// (the connection uses loc=UTC and parseTime=true).  Write operations that
// depend on current state are guarded: they either run inside a
// transaction that locks the rows they read, or they repeat the state
// predicate in the UPDATE's WHERE clause so a concurrent change makes the
// update match zero rows instead of clobbering it.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = `id, primary_user_id, room_id, room_name, location,
	start_time, end_time, extended_end_time, max_extended_end_time, purpose,
	status, extension_status, extension_reason, actual_start_time,
	actual_end_time, checked_in, created_at, updated_at`

// rowScanner lets scanReservation work with both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var res model.Reservation
	var status string
	var extEnd, maxExtEnd, actualStart, actualEnd sql.NullTime
	var extStatus, extReason sql.NullString
	err := s.Scan(
		&res.ID, &res.PrimaryUserID, &res.RoomID, &res.RoomName, &res.Location,
		&res.StartTime, &res.EndTime, &extEnd, &maxExtEnd, &res.Purpose,
		&status, &extStatus, &extReason, &actualStart,
		&actualEnd, &res.CheckedIn, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.Status = schedule.Status(status)
	if extEnd.Valid {
		t := extEnd.Time
		res.ExtendedEndTime = &t
	}
	if maxExtEnd.Valid {
		t := maxExtEnd.Time
		res.MaxExtendedEndTime = &t
	}
	if extStatus.Valid {
		es := schedule.ExtensionStatus(extStatus.String)
		res.ExtensionStatus = &es
	}
	if extReason.Valid {
		reason := extReason.String
		res.ExtensionReason = &reason
	}
	if actualStart.Valid {
		t := actualStart.Time
		res.ActualStartTime = &t
	}
	if actualEnd.Valid {
		t := actualEnd.Time
		res.ActualEndTime = &t
	}
	return &res, nil
}

func statusPlaceholders(statuses []schedule.Status) (string, []interface{}) {
	ph := make([]string, 0, len(statuses))
	args := make([]interface{}, 0, len(statuses))
	for _, s := range statuses {
		ph = append(ph, "?")
		args = append(args, string(s))
	}
	return strings.Join(ph, ","), args
}

// Create inserts a new reservation together with its participant
// snapshots.  The room-conflict predicate is re-evaluated inside the
// transaction with the matching rows locked, so two concurrent inserts
// for overlapping slots on the same room cannot both pass: the second
// blocks on the row locks and then sees the winner's row.  Returns
// ErrRoomTaken when the re-check finds an overlap.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	taken, err := r.roomConflictTx(ctx, tx, res.RoomID, res.Interval(), res.ID, true)
	if err != nil {
		return err
	}
	if taken {
		return ErrRoomTaken
	}
	const ins = `INSERT INTO reservations
		(id, primary_user_id, room_id, room_name, location, start_time, end_time,
		 purpose, status, checked_in)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins,
		res.ID, res.PrimaryUserID, res.RoomID, res.RoomName, res.Location,
		res.StartTime, res.EndTime, res.Purpose, string(res.Status), res.CheckedIn,
	); err != nil {
		return err
	}
	if err := insertParticipantsTx(ctx, tx, res.ID, res.Participants); err != nil {
		return err
	}
	// Query back timestamps so the caller sees the stored row.
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func insertParticipantsTx(ctx context.Context, tx *sql.Tx, reservationID string, parts []model.Participant) error {
	if len(parts) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_participants
		(reservation_id, position, id_number, full_name, course, year_level, department) VALUES `
	args := make([]interface{}, 0, len(parts)*7)
	for i, p := range parts {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, reservationID, i, p.IDNumber, p.FullName, p.Course, p.YearLevel, p.Department)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// roomConflictTx runs the half-open overlap predicate against
// APPROVED/ONGOING bookings on the room.  With lock=true the matching
// rows are read FOR UPDATE so the caller's transaction serializes against
// concurrent admissions.
func (r *ReservationRepo) roomConflictTx(ctx context.Context, tx *sql.Tx, roomID uint64, iv schedule.Interval, excludeID string, lock bool) (bool, error) {
	ph, stArgs := statusPlaceholders(schedule.RoomBlocking)
	q := `SELECT id FROM reservations
	      WHERE room_id = ? AND status IN (` + ph + `)
	        AND start_time < ? AND ? < end_time AND id <> ?`
	if lock {
		q += " FOR UPDATE"
	}
	args := append([]interface{}{roomID}, stArgs...)
	args = append(args, iv.End, iv.Start, excludeID)
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, err
	}
	return found, nil
}

// Get loads a reservation and its participants.  Returns ErrNotFound when
// no row exists.
func (r *ReservationRepo) Get(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadParticipants(ctx, []*model.Reservation{res}); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *ReservationRepo) loadParticipants(ctx context.Context, list []*model.Reservation) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]interface{}, 0, len(list))
	ph := make([]string, 0, len(list))
	index := make(map[string]*model.Reservation, len(list))
	for _, res := range list {
		ids = append(ids, res.ID)
		ph = append(ph, "?")
		index[res.ID] = res
	}
	q := `SELECT reservation_id, id_number, full_name, course, year_level, department
	      FROM reservation_participants
	      WHERE reservation_id IN (` + strings.Join(ph, ",") + `)
	      ORDER BY reservation_id, position`
	rows, err := r.db.QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var rid string
		var p model.Participant
		if err := rows.Scan(&rid, &p.IDNumber, &p.FullName, &p.Course, &p.YearLevel, &p.Department); err != nil {
			return err
		}
		if res, ok := index[rid]; ok {
			res.Participants = append(res.Participants, p)
		}
	}
	return rows.Err()
}

// ListByUser returns the user's reservations as primary reserver, newest
// first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return r.query(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE primary_user_id = ? ORDER BY created_at DESC`,
		userID)
}

// ReservationFilter narrows staff listings.  Zero values mean "any".
type ReservationFilter struct {
	Status schedule.Status
	RoomID uint64
	Day    time.Time // matches bookings whose start falls on this UTC day
}

// List returns reservations matching the filter, soonest first.
func (r *ReservationRepo) List(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	q := `SELECT ` + reservationCols + ` FROM reservations WHERE 1=1`
	args := []interface{}{}
	if f.Status != "" {
		q += " AND status = ?"
		args = append(args, string(f.Status))
	}
	if f.RoomID != 0 {
		q += " AND room_id = ?"
		args = append(args, f.RoomID)
	}
	if !f.Day.IsZero() {
		day := time.Date(f.Day.Year(), f.Day.Month(), f.Day.Day(), 0, 0, 0, 0, time.UTC)
		q += " AND start_time >= ? AND start_time < ?"
		args = append(args, day, day.AddDate(0, 0, 1))
	}
	q += " ORDER BY start_time ASC"
	return r.query(ctx, q, args...)
}

func (r *ReservationRepo) query(ctx context.Context, q string, args ...interface{}) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	refs := make([]*model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		refs = append(refs, &out[i])
	}
	if err := r.loadParticipants(ctx, refs); err != nil {
		return nil, err
	}
	return out, nil
}

// StatusUpdate carries the optional fields written alongside a status
// change.
type StatusUpdate struct {
	ActualStart *time.Time
	ActualEnd   *time.Time
	CheckedIn   *bool
}

// SetStatus moves a reservation to a new status only if its current
// status is one of the expected values.  The predicate lives in the
// UPDATE itself, so a concurrent transition makes this a no-op and the
// method reports false.
func (r *ReservationRepo) SetStatus(ctx context.Context, id string, from []schedule.Status, to schedule.Status, upd StatusUpdate) (bool, error) {
	set := "status = ?"
	args := []interface{}{string(to)}
	if upd.ActualStart != nil {
		set += ", actual_start_time = ?"
		args = append(args, *upd.ActualStart)
	}
	if upd.ActualEnd != nil {
		set += ", actual_end_time = ?"
		args = append(args, *upd.ActualEnd)
	}
	if upd.CheckedIn != nil {
		set += ", checked_in = ?"
		args = append(args, *upd.CheckedIn)
	}
	ph, stArgs := statusPlaceholders(from)
	args = append(args, id)
	args = append(args, stArgs...)
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET `+set+` WHERE id = ? AND status IN (`+ph+`)`, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Approve transitions PENDING -> APPROVED after re-checking, inside one
// transaction, that no APPROVED/ONGOING booking overlaps the slot.  Room
// conflicts only bind between approved bookings, so approval is the point
// where two competing pending requests for the same slot get serialized.
// Returns ErrNotFound, ErrStateChanged or ErrRoomTaken accordingly.
func (r *ReservationRepo) Approve(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const sel = `SELECT room_id, start_time, end_time, status FROM reservations WHERE id = ? FOR UPDATE`
	var roomID uint64
	var start, end time.Time
	var status string
	if err := tx.QueryRowContext(ctx, sel, id).Scan(&roomID, &start, &end, &status); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	if schedule.Status(status) != schedule.StatusPending {
		return ErrStateChanged
	}
	taken, err := r.roomConflictTx(ctx, tx, roomID, schedule.Interval{Start: start, End: end}, id, true)
	if err != nil {
		return err
	}
	if taken {
		return ErrRoomTaken
	}
	const upd = `UPDATE reservations SET status = ? WHERE id = ? AND status = ?`
	if _, err := tx.ExecContext(ctx, upd,
		string(schedule.StatusApproved), id, string(schedule.StatusPending)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// HasRoomConflict reports whether any other APPROVED/ONGOING booking on
// the room overlaps the interval.  Read-only pre-flight; the insert and
// approval paths repeat this check under locks.
func (r *ReservationRepo) HasRoomConflict(ctx context.Context, roomID uint64, iv schedule.Interval, excludeID string) (bool, error) {
	ph, stArgs := statusPlaceholders(schedule.RoomBlocking)
	q := `SELECT EXISTS(
	        SELECT 1 FROM reservations
	        WHERE room_id = ? AND status IN (` + ph + `)
	          AND start_time < ? AND ? < end_time AND id <> ?)`
	args := append([]interface{}{roomID}, stArgs...)
	args = append(args, iv.End, iv.Start, excludeID)
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// HasPersonConflict reports whether the person appears on any
// PENDING/APPROVED/ONGOING booking overlapping the interval, either as
// primary reserver (matched by user ID) or as a participant (matched by
// campus ID number).
func (r *ReservationRepo) HasPersonConflict(ctx context.Context, userID uint64, idNumber string, iv schedule.Interval, excludeID string) (bool, error) {
	ph, stArgs := statusPlaceholders(schedule.PersonBlocking)
	q := `SELECT EXISTS(
	        SELECT 1 FROM reservations r
	        LEFT JOIN reservation_participants p ON p.reservation_id = r.id
	        WHERE (r.primary_user_id = ? OR p.id_number = ?)
	          AND r.status IN (` + ph + `)
	          AND r.start_time < ? AND ? < r.end_time AND r.id <> ?)`
	args := append([]interface{}{userID, idNumber}, stArgs...)
	args = append(args, iv.End, iv.Start, excludeID)
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// DistinctDays returns the distinct UTC calendar days within [from, to)
// on which the user holds PENDING/APPROVED bookings as primary reserver.
func (r *ReservationRepo) DistinctDays(ctx context.Context, userID uint64, from, to time.Time) ([]string, error) {
	ph, stArgs := statusPlaceholders(schedule.QuotaCounting)
	q := `SELECT DISTINCT DATE(start_time) FROM reservations
	      WHERE primary_user_id = ? AND status IN (` + ph + `)
	        AND start_time >= ? AND start_time < ?`
	args := append([]interface{}{userID}, stArgs...)
	args = append(args, from, to)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	days := make([]string, 0, 2)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// NextOnRoom returns the earliest PENDING/APPROVED booking on the room
// starting at or after the given time, or nil when the room is free for
// the rest of the horizon.  Used to bound extension grants.
func (r *ReservationRepo) NextOnRoom(ctx context.Context, roomID uint64, after time.Time) (*model.Reservation, error) {
	q := `SELECT ` + reservationCols + ` FROM reservations
	      WHERE room_id = ? AND status IN (?, ?) AND start_time >= ?
	      ORDER BY start_time ASC LIMIT 1`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q,
		roomID, string(schedule.StatusApproved), string(schedule.StatusPending), after))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

// RequestExtension records a pending continuous-extension request.  The
// WHERE clause enforces that the booking is APPROVED/ONGOING and has no
// extension already pending, so a duplicate request matches zero rows.
func (r *ReservationRepo) RequestExtension(ctx context.Context, id string, candidate, max time.Time, reason string) (bool, error) {
	const q = `UPDATE reservations
	           SET extended_end_time = ?, max_extended_end_time = ?,
	               extension_status = ?, extension_reason = ?
	           WHERE id = ? AND status IN (?, ?)
	             AND (extension_status IS NULL OR extension_status <> ?)`
	res, err := r.db.ExecContext(ctx, q,
		candidate, max, string(schedule.ExtensionPending), reason, id,
		string(schedule.StatusApproved), string(schedule.StatusOngoing),
		string(schedule.ExtensionPending))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ApproveExtension commits the candidate end time as the effective end.
// The new end was capped at request time, and the capping booking cannot
// have moved earlier, so committing in a single guarded UPDATE is safe.
// The status predicate keeps the commit off bookings that were cancelled
// or swept while the request sat pending.
func (r *ReservationRepo) ApproveExtension(ctx context.Context, id string) (bool, error) {
	const q = `UPDATE reservations
	           SET end_time = extended_end_time, extension_status = ?
	           WHERE id = ? AND extension_status = ? AND extended_end_time IS NOT NULL
	             AND status IN (?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		string(schedule.ExtensionApproved), id, string(schedule.ExtensionPending),
		string(schedule.StatusApproved), string(schedule.StatusOngoing))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RejectExtension clears the candidate fields but keeps the REJECTED
// marker so the requester can be informed once.
func (r *ReservationRepo) RejectExtension(ctx context.Context, id string) (bool, error) {
	const q = `UPDATE reservations
	           SET extended_end_time = NULL, max_extended_end_time = NULL,
	               extension_status = ?
	           WHERE id = ? AND extension_status = ?`
	res, err := r.db.ExecContext(ctx, q,
		string(schedule.ExtensionRejected), id, string(schedule.ExtensionPending))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddParticipant appends a snapshot at the end of the roster.  The unique
// key on (reservation_id, id_number) turns duplicates into
// ErrDuplicateParticipant.
func (r *ReservationRepo) AddParticipant(ctx context.Context, id string, p model.Participant) error {
	const q = `INSERT INTO reservation_participants
	           (reservation_id, position, id_number, full_name, course, year_level, department)
	           SELECT ?, COALESCE(MAX(position), -1) + 1, ?, ?, ?, ?, ?
	           FROM reservation_participants WHERE reservation_id = ?`
	_, err := r.db.ExecContext(ctx, q, id, p.IDNumber, p.FullName, p.Course, p.YearLevel, p.Department, id)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrDuplicateParticipant
	}
	return err
}

// RemoveParticipant deletes a snapshot by campus ID number.  Reports
// whether a row was removed.
func (r *ReservationRepo) RemoveParticipant(ctx context.Context, id string, idNumber string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reservation_participants WHERE reservation_id = ? AND id_number = ?`, id, idNumber)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ExpireDue transitions every overdue reservation to EXPIRED in one pass
// and returns the pre-transition snapshots so the caller can derive
// notification reasons.  The selection and the update share one
// transaction and one predicate; rerunning on an already-swept store
// matches nothing, which makes the sweep idempotent.
func (r *ReservationRepo) ExpireDue(ctx context.Context, now time.Time, grace time.Duration) ([]model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	ph, stArgs := statusPlaceholders(schedule.Sweepable)
	noShowCutoff := now.Add(-grace)
	pred := ` WHERE status IN (` + ph + `)
	          AND (end_time <= ?
	               OR (start_time <= ? AND checked_in = 0 AND status IN (?, ?)))`
	predArgs := append(append([]interface{}{}, stArgs...),
		now, noShowCutoff, string(schedule.StatusPending), string(schedule.StatusApproved))

	rows, err := tx.QueryContext(ctx,
		`SELECT `+reservationCols+` FROM reservations`+pred+` FOR UPDATE`, predArgs...)
	if err != nil {
		return nil, err
	}
	expired := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		expired = append(expired, *res)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	if len(expired) > 0 {
		updArgs := append([]interface{}{string(schedule.StatusExpired)}, predArgs...)
		if _, err := tx.ExecContext(ctx, `UPDATE reservations SET status = ?`+pred, updArgs...); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return expired, nil
}

// Archive moves a reservation into archived_reservations as a JSON
// payload and deletes the live row (cascade removes participants).
func (r *ReservationRepo) Archive(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	// Participants ride along inside the payload.
	prows, err := tx.QueryContext(ctx,
		`SELECT id_number, full_name, course, year_level, department
		 FROM reservation_participants WHERE reservation_id = ? ORDER BY position`, id)
	if err != nil {
		return err
	}
	for prows.Next() {
		var p model.Participant
		if err := prows.Scan(&p.IDNumber, &p.FullName, &p.Course, &p.YearLevel, &p.Department); err != nil {
			prows.Close()
			return err
		}
		res.Participants = append(res.Participants, p)
	}
	if err := prows.Err(); err != nil {
		prows.Close()
		return err
	}
	prows.Close()
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO archived_reservations (id, payload) VALUES (?, ?)`, id, payload); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Restore reinstates an archived reservation under a freshly generated
// identity, preserving the business fields, and removes the archive row.
func (r *ReservationRepo) Restore(ctx context.Context, id string) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var payload []byte
	err = tx.QueryRowContext(ctx,
		`SELECT payload FROM archived_reservations WHERE id = ? FOR UPDATE`, id).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var res model.Reservation
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, err
	}
	res.ID = uuid.NewString()
	const ins = `INSERT INTO reservations
		(id, primary_user_id, room_id, room_name, location, start_time, end_time,
		 extended_end_time, max_extended_end_time, purpose, status,
		 extension_status, extension_reason, actual_start_time, actual_end_time, checked_in)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var extStatus, extReason interface{}
	if res.ExtensionStatus != nil {
		extStatus = string(*res.ExtensionStatus)
	}
	if res.ExtensionReason != nil {
		extReason = *res.ExtensionReason
	}
	if _, err := tx.ExecContext(ctx, ins,
		res.ID, res.PrimaryUserID, res.RoomID, res.RoomName, res.Location,
		res.StartTime, res.EndTime, res.ExtendedEndTime, res.MaxExtendedEndTime,
		res.Purpose, string(res.Status), extStatus, extReason,
		res.ActualStartTime, res.ActualEndTime, res.CheckedIn,
	); err != nil {
		return nil, err
	}
	if err := insertParticipantsTx(ctx, tx, res.ID, res.Participants); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM archived_reservations WHERE id = ?`, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &res, nil
}
