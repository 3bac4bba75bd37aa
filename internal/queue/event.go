// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types published to the reservation.events queue.
const (
	EventCreated            = "reservation.created"
	EventStatusChanged      = "reservation.status_changed"
	EventExtensionRequested = "reservation.extension_requested"
	EventExtensionDecided   = "reservation.extension_decided"
	EventExpired            = "reservation.expired"
)

// ReservationEvent is published on every reservation lifecycle change.
// It carries enough information for downstream consumers (notification
// and email senders, audit logs) to act without querying the primary
// database.  Delivery is best-effort: the engine never rolls back a state
// transition because a publish failed.
type ReservationEvent struct {
	Type          string   `json:"type"`
	ReservationID string   `json:"reservation_id"`
	PrimaryUserID uint64   `json:"primary_user_id"`
	RoomID        uint64   `json:"room_id"`
	RoomName      string   `json:"room_name"`
	Location      string   `json:"location"`
	StartsAt      string   `json:"starts_at"`
	EndsAt        string   `json:"ends_at"`
	Status        string   `json:"status"`
	Participants  []string `json:"participants,omitempty"` // id_numbers
	Reason        string   `json:"reason,omitempty"`
	OccurredAt    string   `json:"occurred_at"`
}
