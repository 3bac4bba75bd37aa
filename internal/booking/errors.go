// Package booking implements the reservation scheduling and lifecycle
// engine: admission checks, the status state machine, extension
// negotiation, group composition and the expiry sweep.  It is the only
// package with write access to the reservation store.
package booking

import (
	"fmt"
	"time"

	"github.com/arjaysison/library-room-reservation/internal/schedule"
)

// ValidationError reports a malformed or missing input field.  Always
// recoverable; handlers map it to HTTP 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports a room or person time overlap.  Recoverable by
// choosing another slot; handlers map it to HTTP 409 and include the
// window the conflict was detected against when known.
type ConflictError struct {
	Resource string            // "room" or "person:<id_number>"
	Window   schedule.Interval // window the conflict overlaps, zero when unknown
}

func (e *ConflictError) Error() string {
	if e.Window.Valid() {
		return fmt.Sprintf("%s has a conflicting reservation between %s and %s",
			e.Resource,
			e.Window.Start.UTC().Format(time.RFC3339),
			e.Window.End.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("%s has a conflicting reservation", e.Resource)
}

// PolicyError reports a policy denial (floor access, weekly quota,
// unverified account).  Recoverable by adjusting the request; handlers
// map it to HTTP 422 with the human-readable reason.
type PolicyError struct {
	Policy string // "floor_access", "weekly_quota", "verification"
	Reason string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s policy: %s", e.Policy, e.Reason)
}

// StateError reports an illegal status transition.  The current state is
// included so clients can resync; handlers map it to HTTP 409.
type StateError struct {
	Op      string
	Current schedule.Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s a reservation in status %s", e.Op, e.Current)
}

// NotFoundError reports an unknown reservation, user or room.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}
