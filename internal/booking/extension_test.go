package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjaysison/library-room-reservation/internal/queue"
	"github.com/arjaysison/library-room-reservation/internal/schedule"
)

// startOngoing creates, approves and starts a booking for users 1..4 on
// room 1 at tomorrow 10:00 and advances the clock into the slot.
func startOngoing(t *testing.T, f *fixture) string {
	t.Helper()
	ctx := context.Background()
	res := f.create(t, f.baseRequest())
	_, err := f.svc.UpdateStatus(ctx, res.ID, schedule.StatusApproved)
	require.NoError(t, err)
	f.now = f.tomorrowAt(10).Add(5 * time.Minute)
	_, err = f.svc.StartReservation(ctx, res.ID)
	require.NoError(t, err)
	return res.ID
}

func TestRequestExtensionFreeRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := startOngoing(t, f)

	offer, err := f.svc.RequestExtension(ctx, id, 1, "presentation ran long")
	require.NoError(t, err)

	res := offer.Reservation
	require.NotNil(t, res.ExtensionStatus)
	assert.Equal(t, schedule.ExtensionPending, *res.ExtensionStatus)
	require.NotNil(t, res.ExtendedEndTime)
	// No later booking: grant the fixed ceiling past the current end.
	assert.Equal(t, f.tomorrowAt(11).Add(ExtensionCeiling), *res.ExtendedEndTime)
	assert.Nil(t, offer.ConflictTime)
	require.NotNil(t, res.ExtensionReason)
	assert.Equal(t, "presentation ran long", *res.ExtensionReason)
}

func TestRequestExtensionCappedByNextBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A later booking holds [12:00, 13:00) on the same room, requested
	// while the clock is still a day ahead of the slot.
	f.create(t, CreateRequest{
		PrimaryUserID:  5,
		RoomID:         1,
		StartTime:      f.tomorrowAt(12),
		ParticipantIDs: f.ids(6, 8),
		Purpose:        "standup",
	})
	id := startOngoing(t, f)

	offer, err := f.svc.RequestExtension(ctx, id, 1, "need more time")
	require.NoError(t, err)

	res := offer.Reservation
	require.NotNil(t, res.ExtendedEndTime)
	// Cap is the next start minus the changeover gap: 12:00 - 15m = 11:45.
	assert.Equal(t, f.tomorrowAt(12).Add(-ExtensionGap), *res.ExtendedEndTime)
	require.NotNil(t, offer.ConflictTime)
	assert.Equal(t, f.tomorrowAt(12), *offer.ConflictTime)
}

func TestRequestExtensionAdjacentNextBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// The next booking starts exactly at the current end: the gap leaves
	// nothing to grant.
	f.create(t, CreateRequest{
		PrimaryUserID:  5,
		RoomID:         1,
		StartTime:      f.tomorrowAt(11),
		ParticipantIDs: f.ids(6, 8),
		Purpose:        "standup",
	})
	id := startOngoing(t, f)

	_, err := f.svc.RequestExtension(ctx, id, 1, "need more time")
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
}

func TestRequestExtensionGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := startOngoing(t, f)

	// Only the primary reserver may request.
	_, err := f.svc.RequestExtension(ctx, id, 2, "more time")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.RequestExtension(ctx, id, 1, "more time")
	require.NoError(t, err)

	// A second request while one is pending is refused.
	_, err = f.svc.RequestExtension(ctx, id, 1, "even more time")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Reason, "already pending")
}

func TestRequestExtensionRequiresActiveStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.baseRequest()) // still PENDING
	_, err := f.svc.RequestExtension(ctx, res.ID, 1, "more time")
	var se *StateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schedule.StatusPending, se.Current)
}

func TestHandleExtensionApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := startOngoing(t, f)

	offer, err := f.svc.RequestExtension(ctx, id, 1, "more time")
	require.NoError(t, err)
	granted := *offer.Reservation.ExtendedEndTime

	res, err := f.svc.HandleExtension(ctx, id, true)
	require.NoError(t, err)
	assert.Equal(t, granted, res.EndTime, "approval commits the candidate end")
	require.NotNil(t, res.ExtensionStatus)
	assert.Equal(t, schedule.ExtensionApproved, *res.ExtensionStatus)

	// A follow-up extension from the new end is allowed.
	offer, err = f.svc.RequestExtension(ctx, id, 1, "still going")
	require.NoError(t, err)
	assert.Equal(t, granted.Add(ExtensionCeiling), *offer.Reservation.ExtendedEndTime)
}

func TestHandleExtensionReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := startOngoing(t, f)

	_, err := f.svc.RequestExtension(ctx, id, 1, "more time")
	require.NoError(t, err)

	res, err := f.svc.HandleExtension(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, f.tomorrowAt(11), res.EndTime, "rejection leaves the end time untouched")
	assert.Nil(t, res.ExtendedEndTime)
	require.NotNil(t, res.ExtensionStatus)
	assert.Equal(t, schedule.ExtensionRejected, *res.ExtensionStatus)

	// The rejected marker does not block a new request.
	_, err = f.svc.RequestExtension(ctx, id, 1, "trying again")
	require.NoError(t, err)
}

func TestHandleExtensionAfterBookingExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := startOngoing(t, f)

	_, err := f.svc.RequestExtension(ctx, id, 1, "more time")
	require.NoError(t, err)

	// The slot elapses and the sweep closes the booking before staff get
	// to the request.
	f.now = f.tomorrowAt(11).Add(time.Minute)
	n, err := f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = f.svc.HandleExtension(ctx, id, true)
	var se *StateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schedule.StatusExpired, se.Current)

	got, err := f.svc.Get(ctx, id, 0, true)
	require.NoError(t, err)
	assert.Equal(t, f.tomorrowAt(11), got.EndTime, "a decision after expiry must not move the end time")
}

func TestHandleExtensionWithoutRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := startOngoing(t, f)

	_, err := f.svc.HandleExtension(ctx, id, true)
	var se *StateError
	require.ErrorAs(t, err, &se)
}

func TestExtensionEventsPublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := startOngoing(t, f)
	f.events = nil

	_, err := f.svc.RequestExtension(ctx, id, 1, "more time")
	require.NoError(t, err)
	_, err = f.svc.HandleExtension(ctx, id, true)
	require.NoError(t, err)

	require.Len(t, f.events, 2)
	assert.Equal(t, queue.EventExtensionRequested, f.events[0].Type)
	assert.Equal(t, queue.EventExtensionDecided, f.events[1].Type)
	assert.Equal(t, "extension approved", f.events[1].Reason)
}
