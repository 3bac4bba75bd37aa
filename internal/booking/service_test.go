package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjaysison/library-room-reservation/internal/model"
	"github.com/arjaysison/library-room-reservation/internal/policy"
	"github.com/arjaysison/library-room-reservation/internal/queue"
	"github.com/arjaysison/library-room-reservation/internal/repository"
	"github.com/arjaysison/library-room-reservation/internal/schedule"
)

// memStore is an in-memory Store mirroring the SQL repository's guarded
// semantics, including the conflict re-check inside Create and Approve.
type memStore struct {
	mu       sync.Mutex
	seq      int
	res      map[string]*model.Reservation
	archived map[string]*model.Reservation
}

func newMemStore() *memStore {
	return &memStore{
		res:      make(map[string]*model.Reservation),
		archived: make(map[string]*model.Reservation),
	}
}

func statusIn(s schedule.Status, set []schedule.Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func (m *memStore) roomTaken(roomID uint64, iv schedule.Interval, excludeID string) bool {
	for _, r := range m.res {
		if r.ID == excludeID || r.RoomID != roomID || !statusIn(r.Status, schedule.RoomBlocking) {
			continue
		}
		if r.Interval().Overlaps(iv) {
			return true
		}
	}
	return false
}

func (m *memStore) Create(_ context.Context, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roomTaken(res.RoomID, res.Interval(), "") {
		return repository.ErrRoomTaken
	}
	m.seq++
	res.ID = fmt.Sprintf("res-%04d", m.seq)
	cp := *res
	m.res[res.ID] = &cp
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.res[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	cp.Participants = append([]model.Participant(nil), r.Participants...)
	return &cp, nil
}

func (m *memStore) ListByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.res {
		if r.PrimaryUserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (m *memStore) List(_ context.Context, f repository.ReservationFilter) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.res {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.RoomID != 0 && r.RoomID != f.RoomID {
			continue
		}
		if !f.Day.IsZero() && r.StartTime.UTC().Format("2006-01-02") != f.Day.UTC().Format("2006-01-02") {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *memStore) SetStatus(_ context.Context, id string, from []schedule.Status, to schedule.Status, upd repository.StatusUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.res[id]
	if !ok || !statusIn(r.Status, from) {
		return false, nil
	}
	r.Status = to
	if upd.ActualStart != nil {
		r.ActualStartTime = upd.ActualStart
	}
	if upd.ActualEnd != nil {
		r.ActualEndTime = upd.ActualEnd
	}
	if upd.CheckedIn != nil {
		r.CheckedIn = *upd.CheckedIn
	}
	return true, nil
}

func (m *memStore) Approve(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.res[id]
	if !ok {
		return repository.ErrNotFound
	}
	if r.Status != schedule.StatusPending {
		return repository.ErrStateChanged
	}
	if m.roomTaken(r.RoomID, r.Interval(), r.ID) {
		return repository.ErrRoomTaken
	}
	r.Status = schedule.StatusApproved
	return nil
}

func (m *memStore) HasRoomConflict(_ context.Context, roomID uint64, iv schedule.Interval, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roomTaken(roomID, iv, excludeID), nil
}

func (m *memStore) HasPersonConflict(_ context.Context, userID uint64, idNumber string, iv schedule.Interval, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.res {
		if r.ID == excludeID || !statusIn(r.Status, schedule.PersonBlocking) || !r.Interval().Overlaps(iv) {
			continue
		}
		if r.PrimaryUserID == userID {
			return true, nil
		}
		for _, p := range r.Participants {
			if p.IDNumber == idNumber {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memStore) NextOnRoom(_ context.Context, roomID uint64, after time.Time) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var next *model.Reservation
	for _, r := range m.res {
		if r.RoomID != roomID || r.StartTime.Before(after) {
			continue
		}
		if r.Status != schedule.StatusApproved && r.Status != schedule.StatusPending {
			continue
		}
		if next == nil || r.StartTime.Before(next.StartTime) {
			next = r
		}
	}
	if next == nil {
		return nil, nil
	}
	cp := *next
	return &cp, nil
}

func (m *memStore) RequestExtension(_ context.Context, id string, candidate, max time.Time, reason string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.res[id]
	if !ok {
		return false, nil
	}
	if r.Status != schedule.StatusApproved && r.Status != schedule.StatusOngoing {
		return false, nil
	}
	if r.ExtensionStatus != nil && *r.ExtensionStatus == schedule.ExtensionPending {
		return false, nil
	}
	st := schedule.ExtensionPending
	r.ExtensionStatus = &st
	r.ExtendedEndTime = &candidate
	r.MaxExtendedEndTime = &max
	r.ExtensionReason = &reason
	return true, nil
}

func (m *memStore) ApproveExtension(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.res[id]
	if !ok || r.ExtensionStatus == nil || *r.ExtensionStatus != schedule.ExtensionPending {
		return false, nil
	}
	if r.Status != schedule.StatusApproved && r.Status != schedule.StatusOngoing {
		return false, nil
	}
	r.EndTime = *r.ExtendedEndTime
	st := schedule.ExtensionApproved
	r.ExtensionStatus = &st
	return true, nil
}

func (m *memStore) RejectExtension(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.res[id]
	if !ok || r.ExtensionStatus == nil || *r.ExtensionStatus != schedule.ExtensionPending {
		return false, nil
	}
	r.ExtendedEndTime = nil
	r.MaxExtendedEndTime = nil
	st := schedule.ExtensionRejected
	r.ExtensionStatus = &st
	return true, nil
}

func (m *memStore) AddParticipant(_ context.Context, id string, p model.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.res[id]
	if !ok {
		return repository.ErrNotFound
	}
	for _, existing := range r.Participants {
		if existing.IDNumber == p.IDNumber {
			return repository.ErrDuplicateParticipant
		}
	}
	r.Participants = append(r.Participants, p)
	return nil
}

func (m *memStore) RemoveParticipant(_ context.Context, id string, idNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.res[id]
	if !ok {
		return false, nil
	}
	for i, p := range r.Participants {
		if p.IDNumber == idNumber {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ExpireDue(_ context.Context, now time.Time, grace time.Duration) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	noShowCutoff := now.Add(-grace)
	var expired []model.Reservation
	for _, r := range m.res {
		if !statusIn(r.Status, schedule.Sweepable) {
			continue
		}
		elapsed := !r.EndTime.After(now)
		noShow := !r.StartTime.After(noShowCutoff) && !r.CheckedIn &&
			(r.Status == schedule.StatusPending || r.Status == schedule.StatusApproved)
		if !elapsed && !noShow {
			continue
		}
		expired = append(expired, *r)
		r.Status = schedule.StatusExpired
	}
	return expired, nil
}

func (m *memStore) Archive(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.res[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.archived[id] = r
	delete(m.res, id)
	return nil
}

func (m *memStore) Restore(_ context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.archived[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.seq++
	cp := *r
	cp.ID = fmt.Sprintf("res-%04d", m.seq)
	m.res[cp.ID] = &cp
	delete(m.archived, id)
	out := cp
	return &out, nil
}

// memDirectory serves users by id and id_number, and rooms by id.
type memDirectory struct {
	users map[uint64]*model.User
	rooms map[uint64]*model.Room
}

func (d *memDirectory) ByID(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := d.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (d *memDirectory) ByIDNumber(_ context.Context, idNumber string) (*model.User, error) {
	for _, u := range d.users {
		if u.IDNumber == idNumber {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (d *memDirectory) RoomByID(_ context.Context, id uint64) (*model.Room, error) {
	if r, ok := d.rooms[id]; ok {
		return r, nil
	}
	return nil, repository.ErrNotFound
}

type roomDir struct{ d *memDirectory }

func (rd roomDir) ByID(ctx context.Context, id uint64) (*model.Room, error) {
	return rd.d.RoomByID(ctx, id)
}

// quotaFunc adapts a function to policy.QuotaChecker.
type quotaFunc func(ctx context.Context, userID uint64, day time.Time) (bool, string, error)

func (f quotaFunc) CheckWeekly(ctx context.Context, userID uint64, day time.Time) (bool, string, error) {
	return f(ctx, userID, day)
}

func allowAll(context.Context, uint64, time.Time) (bool, string, error) { return false, "", nil }

// fixture wires a Service over the in-memory fakes with a frozen clock.
// base keeps the starting instant so that helpers deriving calendar days
// stay stable when a test advances now mid-scenario.
type fixture struct {
	svc    *Service
	store  *memStore
	dir    *memDirectory
	events []queue.ReservationEvent
	now    time.Time
	base   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: newMemStore(),
		// Monday 2026-09-14, 09:00 UTC.
		now: time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC),
	}
	f.base = f.now
	f.dir = &memDirectory{
		users: map[uint64]*model.User{},
		rooms: map[uint64]*model.Room{
			1: {ID: 1, Name: "Discussion Room A", Floor: "4th", Capacity: 8, IsActive: true},
			2: {ID: 2, Name: "Graduate Commons", Floor: "Ground", Capacity: 8, IsActive: true},
			3: {ID: 3, Name: "Closed Room", Floor: "5th", Capacity: 8, IsActive: false},
		},
	}
	for i := uint64(1); i <= 10; i++ {
		f.dir.users[i] = &model.User{
			ID:       i,
			Role:     model.RoleStudent,
			IDNumber: fmt.Sprintf("2023-%05d", i),
			FullName: fmt.Sprintf("Student %d", i),
			Course:   "BS Computer Science",
			Verified: true,
			IsActive: true,
		}
	}
	publish := func(_ context.Context, ev queue.ReservationEvent) error {
		f.events = append(f.events, ev)
		return nil
	}
	f.svc = NewService(f.store, f.dir, roomDir{f.dir}, policy.FloorAccess{}, quotaFunc(allowAll), publish)
	f.svc.SetClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) ids(from, to uint64) []string {
	var out []string
	for i := from; i <= to; i++ {
		out = append(out, f.dir.users[i].IDNumber)
	}
	return out
}

// tomorrowAt returns the given hour on the day after the fixture's
// starting day.  Anchoring on base rather than now keeps the referenced
// day fixed even after a test advances the clock.
func (f *fixture) tomorrowAt(h int) time.Time {
	d := f.base.AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), h, 0, 0, 0, time.UTC)
}

func (f *fixture) create(t *testing.T, req CreateRequest) *model.Reservation {
	t.Helper()
	res, err := f.svc.CreateReservation(context.Background(), req)
	require.NoError(t, err)
	return res
}

func (f *fixture) baseRequest() CreateRequest {
	return CreateRequest{
		PrimaryUserID:  1,
		RoomID:         1,
		StartTime:      f.tomorrowAt(10),
		ParticipantIDs: f.ids(2, 4),
		Purpose:        "thesis group study",
	}
}

func TestCreateReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateReservation(ctx, f.baseRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, schedule.StatusPending, res.Status)
	assert.Equal(t, f.tomorrowAt(10), res.StartTime)
	assert.Equal(t, f.tomorrowAt(11), res.EndTime, "slot is exactly one hour")
	assert.Equal(t, 4, res.GroupSize())
	assert.Equal(t, "Discussion Room A", res.RoomName)
	assert.Equal(t, "4th", res.Location)

	require.Len(t, f.events, 1)
	assert.Equal(t, queue.EventCreated, f.events[0].Type)
	assert.Equal(t, res.ID, f.events[0].ReservationID)
}

func TestCreateReservationValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture, req *CreateRequest)
		wantErr func(t *testing.T, err error)
	}{
		{
			name:   "same-day booking rejected",
			mutate: func(f *fixture, req *CreateRequest) { req.StartTime = f.now.Add(2 * time.Hour) },
			wantErr: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "start_time", ve.Field)
			},
		},
		{
			name:   "group below minimum",
			mutate: func(f *fixture, req *CreateRequest) { req.ParticipantIDs = f.ids(2, 3) },
			wantErr: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "participants", ve.Field)
			},
		},
		{
			name:   "group above maximum",
			mutate: func(f *fixture, req *CreateRequest) { req.ParticipantIDs = f.ids(2, 9) },
			wantErr: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
			},
		},
		{
			name: "duplicate participant",
			mutate: func(f *fixture, req *CreateRequest) {
				req.ParticipantIDs = []string{f.dir.users[2].IDNumber, f.dir.users[2].IDNumber, f.dir.users[3].IDNumber}
			},
			wantErr: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Contains(t, ve.Reason, "more than once")
			},
		},
		{
			name: "primary listed as participant",
			mutate: func(f *fixture, req *CreateRequest) {
				req.ParticipantIDs = append(f.ids(2, 3), f.dir.users[1].IDNumber)
			},
			wantErr: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
			},
		},
		{
			name: "unknown participant",
			mutate: func(f *fixture, req *CreateRequest) {
				req.ParticipantIDs = append(f.ids(2, 3), "9999-00000")
			},
			wantErr: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Contains(t, ve.Reason, "9999-00000")
			},
		},
		{
			name: "unverified participant",
			mutate: func(f *fixture, req *CreateRequest) {
				f.dir.users[4].Verified = false
			},
			wantErr: func(t *testing.T, err error) {
				var pe *PolicyError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, "verification", pe.Policy)
			},
		},
		{
			name: "unverified primary",
			mutate: func(f *fixture, req *CreateRequest) {
				f.dir.users[1].Verified = false
			},
			wantErr: func(t *testing.T, err error) {
				var pe *PolicyError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, "verification", pe.Policy)
			},
		},
		{
			name:   "inactive room",
			mutate: func(f *fixture, req *CreateRequest) { req.RoomID = 3 },
			wantErr: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "room_id", ve.Field)
			},
		},
		{
			name:   "unknown room",
			mutate: func(f *fixture, req *CreateRequest) { req.RoomID = 99 },
			wantErr: func(t *testing.T, err error) {
				var nf *NotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, "room", nf.Kind)
			},
		},
		{
			name:   "missing purpose",
			mutate: func(f *fixture, req *CreateRequest) { req.Purpose = "" },
			wantErr: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "purpose", ve.Field)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := f.baseRequest()
			tt.mutate(f, &req)
			_, err := f.svc.CreateReservation(context.Background(), req)
			require.Error(t, err)
			tt.wantErr(t, err)
			assert.Empty(t, f.events, "failed admission must not publish")
		})
	}
}

func TestCreateReservationFloorPolicy(t *testing.T) {
	f := newFixture(t)
	req := f.baseRequest()
	req.RoomID = 2 // Ground floor, graduate students only

	_, err := f.svc.CreateReservation(context.Background(), req)
	var pe *PolicyError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "floor_access", pe.Policy)

	// The same group with graduate programs passes.
	for i := uint64(1); i <= 4; i++ {
		f.dir.users[i].Course = "Master of Science in Data Science"
	}
	_, err = f.svc.CreateReservation(context.Background(), req)
	require.NoError(t, err)
}

func TestCreateReservationQuotaBlocked(t *testing.T) {
	f := newFixture(t)
	blocked := quotaFunc(func(context.Context, uint64, time.Time) (bool, string, error) {
		return true, "weekly limit of 2 reservation days reached", nil
	})
	f.svc = NewService(f.store, f.dir, roomDir{f.dir}, policy.FloorAccess{}, blocked, nil)
	f.svc.SetClock(func() time.Time { return f.now })

	_, err := f.svc.CreateReservation(context.Background(), f.baseRequest())
	var pe *PolicyError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "weekly_quota", pe.Policy)
}

func TestCreateReservationRoomConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.create(t, f.baseRequest())
	_, err := f.svc.UpdateStatus(ctx, first.ID, schedule.StatusApproved)
	require.NoError(t, err)

	// Overlapping slot on the same room, different group.
	req := CreateRequest{
		PrimaryUserID:  5,
		RoomID:         1,
		StartTime:      f.tomorrowAt(10),
		ParticipantIDs: f.ids(6, 8),
		Purpose:        "project meeting",
	}
	_, err = f.svc.CreateReservation(ctx, req)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "room", ce.Resource)

	// The adjacent slot [11:00, 12:00) is free: half-open windows.
	req.StartTime = f.tomorrowAt(11)
	_, err = f.svc.CreateReservation(ctx, req)
	require.NoError(t, err)
}

func TestCreateReservationPersonConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, f.baseRequest()) // users 1..4 hold [10:00, 11:00) as PENDING

	// User 2 is on that pending roster; a different room at the same time
	// must still refuse them.
	req := CreateRequest{
		PrimaryUserID:  5,
		RoomID:         2,
		StartTime:      f.tomorrowAt(10),
		ParticipantIDs: []string{f.dir.users[2].IDNumber, f.dir.users[6].IDNumber, f.dir.users[7].IDNumber},
		Purpose:        "review session",
	}
	for i := uint64(2); i <= 7; i++ {
		f.dir.users[i].Course = "Master of Arts in History"
	}
	f.dir.users[5].Course = "Master of Arts in History"
	_, err := f.svc.CreateReservation(ctx, req)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "person:"+f.dir.users[2].IDNumber, ce.Resource)
	// The window names the requested slot the conflict overlaps, not the
	// other party's booking, and the message says so.
	assert.Equal(t, schedule.NewSlot(f.tomorrowAt(10)), ce.Window)
	assert.Contains(t, ce.Error(), "has a conflicting reservation between")
}

func TestTwoPendingRequestsCollideAtApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Two pending requests may coexist on the same slot: PENDING does not
	// block the room.  The loser surfaces at approval time.
	a := f.create(t, f.baseRequest())
	b := f.create(t, CreateRequest{
		PrimaryUserID:  5,
		RoomID:         1,
		StartTime:      f.tomorrowAt(10),
		ParticipantIDs: f.ids(6, 8),
		Purpose:        "project meeting",
	})

	_, err := f.svc.UpdateStatus(ctx, a.ID, schedule.StatusApproved)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, b.ID, schedule.StatusApproved)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "room", ce.Resource)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.baseRequest())

	approved, err := f.svc.UpdateStatus(ctx, res.ID, schedule.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusApproved, approved.Status)

	// Approving again is an illegal transition.
	_, err = f.svc.UpdateStatus(ctx, res.ID, schedule.StatusApproved)
	var se *StateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schedule.StatusApproved, se.Current)

	// Only APPROVED and REJECTED are valid decisions.
	_, err = f.svc.UpdateStatus(ctx, res.ID, schedule.StatusCompleted)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = f.svc.UpdateStatus(ctx, "missing", schedule.StatusApproved)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestRejectReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.baseRequest())
	rejected, err := f.svc.UpdateStatus(ctx, res.ID, schedule.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusRejected, rejected.Status)

	// Terminal: no further decisions.
	_, err = f.svc.UpdateStatus(ctx, res.ID, schedule.StatusApproved)
	var se *StateError
	require.ErrorAs(t, err, &se)
}

func TestApproveAfterWindowElapsed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.baseRequest())

	// Jump past the scheduled end; the pending request is now dead weight
	// for the sweep, not for approval.
	f.now = f.tomorrowAt(12)
	_, err := f.svc.UpdateStatus(ctx, res.ID, schedule.StatusApproved)
	var se *StateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schedule.StatusPending, se.Current)
}

func TestStartAndEndReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.baseRequest())
	_, err := f.svc.UpdateStatus(ctx, res.ID, schedule.StatusApproved)
	require.NoError(t, err)

	// Starting a pending booking is illegal; this one is approved.
	f.now = f.tomorrowAt(10).Add(5 * time.Minute)
	started, err := f.svc.StartReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusOngoing, started.Status)
	assert.True(t, started.CheckedIn)
	require.NotNil(t, started.ActualStartTime)
	assert.Equal(t, f.now, *started.ActualStartTime)

	// Primary ends early.
	f.now = f.now.Add(20 * time.Minute)
	ended, err := f.svc.EndReservationEarly(ctx, res.ID, 1, false)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusCompleted, ended.Status)
	require.NotNil(t, ended.ActualEndTime)
	assert.Equal(t, f.now, *ended.ActualEndTime)
}

func TestEndReservationAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.baseRequest())
	_, err := f.svc.UpdateStatus(ctx, res.ID, schedule.StatusApproved)
	require.NoError(t, err)
	_, err = f.svc.StartReservation(ctx, res.ID)
	require.NoError(t, err)

	// A participant (not the primary) cannot end it.
	_, err = f.svc.EndReservationEarly(ctx, res.ID, 2, false)
	assert.ErrorIs(t, err, ErrForbidden)

	// Staff can.
	_, err = f.svc.EndReservationEarly(ctx, res.ID, 42, true)
	require.NoError(t, err)
}

func TestCancelReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.baseRequest())

	_, err := f.svc.CancelReservation(ctx, res.ID, 2)
	assert.ErrorIs(t, err, ErrForbidden, "only the primary reserver may cancel")

	cancelled, err := f.svc.CancelReservation(ctx, res.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusCancelled, cancelled.Status)

	_, err = f.svc.CancelReservation(ctx, res.ID, 1)
	var se *StateError
	require.ErrorAs(t, err, &se)
}

func TestCheckLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, f.baseRequest())

	// User 1 already holds [10:00, 11:00): overlapping check is blocked.
	out, err := f.svc.CheckLimit(ctx, 1, f.tomorrowAt(10), false)
	require.NoError(t, err)
	assert.True(t, out.Blocked)

	// The adjacent hour is free.
	out, err = f.svc.CheckLimit(ctx, 1, f.tomorrowAt(11), false)
	require.NoError(t, err)
	assert.False(t, out.Blocked)

	// Quota applies only when checking as primary reserver.
	blocked := quotaFunc(func(context.Context, uint64, time.Time) (bool, string, error) {
		return true, "weekly limit of 2 reservation days reached", nil
	})
	f.svc = NewService(f.store, f.dir, roomDir{f.dir}, policy.FloorAccess{}, blocked, nil)
	f.svc.SetClock(func() time.Time { return f.now })

	out, err = f.svc.CheckLimit(ctx, 5, f.tomorrowAt(13), true)
	require.NoError(t, err)
	assert.True(t, out.Blocked)

	out, err = f.svc.CheckLimit(ctx, 5, f.tomorrowAt(13), false)
	require.NoError(t, err)
	assert.False(t, out.Blocked, "participants are not bound by the weekly quota")
}

func TestValidateFloorAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.users[2].Course = "Master of Science in Physics"

	out, err := f.svc.ValidateFloorAccess(ctx, "Ground",
		[]string{f.dir.users[1].IDNumber, f.dir.users[2].IDNumber, "9999-00000"})
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Equal(t, []string{f.dir.users[2].IDNumber}, out.ValidParticipants)
	assert.ElementsMatch(t, []string{f.dir.users[1].IDNumber, "9999-00000"}, out.InvalidParticipants)
	assert.Contains(t, out.Restriction, "graduate")

	out, err = f.svc.ValidateFloorAccess(ctx, "4th", []string{f.dir.users[1].IDNumber})
	require.NoError(t, err)
	assert.True(t, out.Valid)
	assert.Empty(t, out.Restriction)
}

func TestParticipantEditing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.baseRequest()) // group of 4

	// Non-primary cannot edit.
	_, err := f.svc.AddParticipant(ctx, res.ID, 2, f.dir.users[5].IDNumber)
	assert.ErrorIs(t, err, ErrForbidden)

	// Removing below the minimum is refused.
	_, err = f.svc.RemoveParticipant(ctx, res.ID, 1, f.dir.users[2].IDNumber)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	// Add one, then removal is possible.
	updated, err := f.svc.AddParticipant(ctx, res.ID, 1, f.dir.users[5].IDNumber)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.GroupSize())

	updated, err = f.svc.RemoveParticipant(ctx, res.ID, 1, f.dir.users[2].IDNumber)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.GroupSize())

	// Duplicate add is refused.
	_, err = f.svc.AddParticipant(ctx, res.ID, 1, f.dir.users[5].IDNumber)
	require.ErrorAs(t, err, &ve)

	// Growing past the maximum is refused.
	for i := uint64(6); i <= 9; i++ {
		_, err = f.svc.AddParticipant(ctx, res.ID, 1, f.dir.users[i].IDNumber)
		require.NoError(t, err)
	}
	_, err = f.svc.AddParticipant(ctx, res.ID, 1, f.dir.users[10].IDNumber)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Reason, "cannot exceed")
}

func TestParticipantEditingLockedAfterStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.baseRequest())
	_, err := f.svc.UpdateStatus(ctx, res.ID, schedule.StatusApproved)
	require.NoError(t, err)
	_, err = f.svc.StartReservation(ctx, res.ID)
	require.NoError(t, err)

	_, err = f.svc.AddParticipant(ctx, res.ID, 1, f.dir.users[5].IDNumber)
	var se *StateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schedule.StatusOngoing, se.Current)
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.baseRequest())

	_, err := f.svc.Get(ctx, res.ID, 1, false)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, res.ID, 5, false)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Get(ctx, res.ID, 5, true)
	require.NoError(t, err, "staff see every reservation")

	var nf *NotFoundError
	_, err = f.svc.Get(ctx, "missing", 1, true)
	require.ErrorAs(t, err, &nf)
}

func TestArchiveAndRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.create(t, f.baseRequest())
	_, err := f.svc.UpdateStatus(ctx, res.ID, schedule.StatusRejected)
	require.NoError(t, err)

	require.NoError(t, f.svc.ArchiveReservation(ctx, res.ID))
	var nf *NotFoundError
	_, err = f.svc.Get(ctx, res.ID, 1, true)
	require.ErrorAs(t, err, &nf)

	restored, err := f.svc.RestoreReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.NotEqual(t, res.ID, restored.ID, "restore issues a fresh identity")
	assert.Equal(t, res.StartTime, restored.StartTime)

	err = f.svc.ArchiveReservation(ctx, "missing")
	require.ErrorAs(t, err, &nf)
	_, err = f.svc.RestoreReservation(ctx, "missing")
	require.ErrorAs(t, err, &nf)
}
