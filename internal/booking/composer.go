package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/arjaysison/library-room-reservation/internal/model"
	"github.com/arjaysison/library-room-reservation/internal/policy"
	"github.com/arjaysison/library-room-reservation/internal/repository"
	"github.com/arjaysison/library-room-reservation/internal/schedule"
)

// ConflictChecker is the slice of the store the composer needs: whether a
// person already sits on a blocking reservation overlapping a window.
type ConflictChecker interface {
	HasPersonConflict(ctx context.Context, userID uint64, idNumber string, iv schedule.Interval, excludeID string) (bool, error)
}

// Composer builds the participant roster for a reservation.  Every
// candidate must resolve to a verified account, be distinct from the
// primary reserver and the other members, clear the floor policy for the
// room's location, and be free of overlapping commitments.  Failures are
// attributed to the specific ID number so the requester can fix the
// roster.
type Composer struct {
	Users     UserDirectory
	Floor     policy.FloorPolicy
	Conflicts ConflictChecker
}

// Compose validates the candidate ID numbers and returns their profile
// snapshots in request order.  The primary reserver is not part of the
// roster but counts toward the group size.
func (c *Composer) Compose(ctx context.Context, primary *model.User, idNumbers []string, location string, iv schedule.Interval) ([]model.Participant, error) {
	size := len(idNumbers) + 1
	if size < model.MinGroupSize || size > model.MaxGroupSize {
		return nil, &ValidationError{Field: "participants",
			Reason: fmt.Sprintf("group size must be between %d and %d, got %d", model.MinGroupSize, model.MaxGroupSize, size)}
	}

	taken := map[string]bool{primary.IDNumber: true}
	out := make([]model.Participant, 0, len(idNumbers))
	for _, idn := range idNumbers {
		snap, err := c.vet(ctx, idn, taken, location, iv)
		if err != nil {
			return nil, err
		}
		taken[idn] = true
		out = append(out, snap)
	}
	return out, nil
}

// vet checks a single candidate and returns their snapshot.  taken holds
// the ID numbers already on the roster, primary included.
func (c *Composer) vet(ctx context.Context, idNumber string, taken map[string]bool, location string, iv schedule.Interval) (model.Participant, error) {
	var zero model.Participant
	if idNumber == "" {
		return zero, &ValidationError{Field: "participants", Reason: "empty id_number"}
	}
	if taken[idNumber] {
		return zero, &ValidationError{Field: "participants", Reason: idNumber + " appears more than once"}
	}
	u, err := c.Users.ByIDNumber(ctx, idNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, &ValidationError{Field: "participants", Reason: idNumber + " does not match any account"}
		}
		return zero, err
	}
	if !u.Verified {
		return zero, &PolicyError{Policy: "verification", Reason: idNumber + " is not a verified account"}
	}
	if !c.Floor.Allowed(u, location) {
		return zero, &PolicyError{Policy: "floor_access", Reason: idNumber + ": " + c.Floor.Explain(location)}
	}
	busy, err := c.Conflicts.HasPersonConflict(ctx, u.ID, u.IDNumber, iv, "")
	if err != nil {
		return zero, err
	}
	if busy {
		return zero, &ConflictError{Resource: "person:" + idNumber, Window: iv}
	}
	return model.Snapshot(u), nil
}
