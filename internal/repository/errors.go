// Package repository defines error values reused across repositories.
// These sentinels let the booking service and handlers distinguish
// failure scenarios without string matching.  ErrRoomTaken in particular
// is how the insert transaction reports that the conflict re-check inside
// the transaction found an overlapping booking that the pre-flight check
// missed.
package repository

import "errors"

// ErrNotFound is returned when a requested reservation, user or room does
// not exist.  Handlers translate this into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrRoomTaken is returned when an insert or approval finds an
// overlapping APPROVED/ONGOING booking on the same room inside its own
// transaction.  Handlers translate this into HTTP 409.
var ErrRoomTaken = errors.New("room already booked for this time")

// ErrStateChanged is returned when a guarded status update matched no
// row, meaning the reservation moved to a different status concurrently.
var ErrStateChanged = errors.New("reservation state changed")

// ErrDuplicateParticipant is returned when inserting a participant whose
// id_number already exists on the reservation.
var ErrDuplicateParticipant = errors.New("participant already on reservation")
