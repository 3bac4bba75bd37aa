package schedule

// Status enumerates the lifecycle states of a reservation.  The values
// match the `status` enum column of the reservations table.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
	StatusOngoing   Status = "ONGOING"
	StatusCompleted Status = "COMPLETED"
	StatusExpired   Status = "EXPIRED"
)

// ExtensionStatus tracks the state of an extension request on a
// reservation.  It is only present while or after an extension has been
// requested.
type ExtensionStatus string

const (
	ExtensionPending  ExtensionStatus = "PENDING"
	ExtensionApproved ExtensionStatus = "APPROVED"
	ExtensionRejected ExtensionStatus = "REJECTED"
)

// transitions is the full table of legal status moves.  Expiry is listed
// here even though it is reserved for the sweep; handlers never request it
// directly.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusApproved:  true,
		StatusRejected:  true,
		StatusCancelled: true,
		StatusExpired:   true,
	},
	StatusApproved: {
		StatusCancelled: true,
		StatusOngoing:   true,
		StatusExpired:   true,
	},
	StatusOngoing: {
		StatusCompleted: true,
		StatusExpired:   true,
	},
}

// CanTransition reports whether moving a reservation from one status to
// another is legal.  Terminal states have no outgoing transitions, so any
// move out of them returns false.  No transition re-enters PENDING.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// Terminal reports whether the status is final.  Terminal reservations are
// never touched again by staff actions or the sweep.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted, StatusExpired:
		return true
	}
	return false
}

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled,
		StatusOngoing, StatusCompleted, StatusExpired:
		return true
	}
	return false
}

// RoomBlocking are the statuses that make a reservation count against room
// availability: only bookings that hold or will hold the physical room.
var RoomBlocking = []Status{StatusApproved, StatusOngoing}

// PersonBlocking are the statuses that make a reservation count against a
// person's time: a pending request already commits the person to the slot.
var PersonBlocking = []Status{StatusPending, StatusApproved, StatusOngoing}

// QuotaCounting are the statuses counted by the weekly quota.
var QuotaCounting = []Status{StatusPending, StatusApproved}

// Sweepable are the statuses the expiry sweep may transition to EXPIRED.
var Sweepable = []Status{StatusPending, StatusApproved, StatusOngoing}
