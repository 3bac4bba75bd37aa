package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/arjaysison/library-room-reservation/internal/model"
	"github.com/arjaysison/library-room-reservation/internal/policy"
	"github.com/arjaysison/library-room-reservation/internal/queue"
	"github.com/arjaysison/library-room-reservation/internal/repository"
	"github.com/arjaysison/library-room-reservation/internal/schedule"
)

// Engine tunables.  The grace window doubles as the no-show cutoff and
// the mandatory gap left before the next booking when extending.
const (
	NoShowGrace      = 15 * time.Minute
	ExtensionGap     = 15 * time.Minute
	ExtensionCeiling = 2 * time.Hour
)

// ErrForbidden is returned when the caller is neither the primary
// reserver nor staff for an operation that requires it.
var ErrForbidden = errors.New("forbidden")

// Store is the persistence surface the engine writes through.  The SQL
// implementation lives in the repository package; tests substitute an
// in-memory fake.
type Store interface {
	Create(ctx context.Context, res *model.Reservation) error
	Get(ctx context.Context, id string) (*model.Reservation, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	List(ctx context.Context, f repository.ReservationFilter) ([]model.Reservation, error)

	SetStatus(ctx context.Context, id string, from []schedule.Status, to schedule.Status, upd repository.StatusUpdate) (bool, error)
	Approve(ctx context.Context, id string) error

	HasRoomConflict(ctx context.Context, roomID uint64, iv schedule.Interval, excludeID string) (bool, error)
	HasPersonConflict(ctx context.Context, userID uint64, idNumber string, iv schedule.Interval, excludeID string) (bool, error)
	NextOnRoom(ctx context.Context, roomID uint64, after time.Time) (*model.Reservation, error)

	RequestExtension(ctx context.Context, id string, candidate, max time.Time, reason string) (bool, error)
	ApproveExtension(ctx context.Context, id string) (bool, error)
	RejectExtension(ctx context.Context, id string) (bool, error)

	AddParticipant(ctx context.Context, id string, p model.Participant) error
	RemoveParticipant(ctx context.Context, id string, idNumber string) (bool, error)

	ExpireDue(ctx context.Context, now time.Time, grace time.Duration) ([]model.Reservation, error)

	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) (*model.Reservation, error)
}

// UserDirectory resolves accounts for eligibility checks.
type UserDirectory interface {
	ByID(ctx context.Context, id uint64) (*model.User, error)
	ByIDNumber(ctx context.Context, idNumber string) (*model.User, error)
}

// RoomDirectory resolves rooms at booking time.
type RoomDirectory interface {
	ByID(ctx context.Context, id uint64) (*model.Room, error)
}

// Publisher sends a lifecycle event to the outbound queue.  Publish
// failures are logged and swallowed; they never fail the operation.
type Publisher func(ctx context.Context, ev queue.ReservationEvent) error

// Service orchestrates every reservation operation.  It validates with
// the policies, admits through the conflict detector, drives the status
// state machine and emits events.  A per-room mutex serializes same-room
// admissions in-process; the store repeats the conflict predicate inside
// its insert/approve transactions to cover concurrent processes.
type Service struct {
	store   Store
	users   UserDirectory
	rooms   RoomDirectory
	floor   policy.FloorPolicy
	quota   policy.QuotaChecker
	compose *Composer
	publish Publisher
	now     func() time.Time

	mu        sync.Mutex
	roomLocks map[uint64]*sync.Mutex
}

// NewService wires a Service.  publish may be nil when no broker is
// configured; now defaults to time.Now.
func NewService(store Store, users UserDirectory, rooms RoomDirectory, floor policy.FloorPolicy, quota policy.QuotaChecker, publish Publisher) *Service {
	s := &Service{
		store:     store,
		users:     users,
		rooms:     rooms,
		floor:     floor,
		quota:     quota,
		publish:   publish,
		now:       func() time.Time { return time.Now().UTC() },
		roomLocks: make(map[uint64]*sync.Mutex),
	}
	s.compose = &Composer{Users: users, Floor: floor, Conflicts: store}
	return s
}

// SetClock overrides the engine clock.  Intended for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) roomLock(roomID uint64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.roomLocks[roomID]
	if !ok {
		l = &sync.Mutex{}
		s.roomLocks[roomID] = l
	}
	return l
}

// CreateRequest carries the inputs of a booking request.  The slot is
// always one hour from StartTime; ParticipantIDs are campus ID numbers
// excluding the primary reserver.
type CreateRequest struct {
	PrimaryUserID  uint64
	RoomID         uint64
	StartTime      time.Time
	ParticipantIDs []string
	Purpose        string
}

// CreateReservation runs the full admission pipeline: group composition,
// floor access, weekly quota and conflict detection, then inserts the
// PENDING reservation.  All checks must pass; the first failure aborts
// with a specific, attributable error.
func (s *Service) CreateReservation(ctx context.Context, req CreateRequest) (*model.Reservation, error) {
	now := s.now()
	if req.StartTime.IsZero() {
		return nil, &ValidationError{Field: "start_time", Reason: "required"}
	}
	if req.Purpose == "" {
		return nil, &ValidationError{Field: "purpose", Reason: "required"}
	}
	start := req.StartTime.UTC()
	if !startsAtLeastNextDay(now, start) {
		return nil, &ValidationError{Field: "start_time", Reason: "reservations must be made at least one day in advance"}
	}
	slot := schedule.NewSlot(start)

	room, err := s.rooms.ByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Kind: "room", ID: fmt.Sprint(req.RoomID)}
		}
		return nil, err
	}
	if !room.IsActive {
		return nil, &ValidationError{Field: "room_id", Reason: "room is not open for booking"}
	}

	primary, err := s.users.ByID(ctx, req.PrimaryUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Kind: "user", ID: fmt.Sprint(req.PrimaryUserID)}
		}
		return nil, err
	}
	if !primary.Verified {
		return nil, &PolicyError{Policy: "verification", Reason: "your account is not verified"}
	}
	if !s.floor.Allowed(primary, room.Floor) {
		return nil, &PolicyError{Policy: "floor_access", Reason: s.floor.Explain(room.Floor)}
	}

	blocked, reason, err := s.quota.CheckWeekly(ctx, primary.ID, start)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, &PolicyError{Policy: "weekly_quota", Reason: reason}
	}

	conflict, err := s.store.HasPersonConflict(ctx, primary.ID, primary.IDNumber, slot, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, &ConflictError{Resource: "person:" + primary.IDNumber, Window: slot}
	}

	participants, err := s.compose.Compose(ctx, primary, req.ParticipantIDs, room.Floor, slot)
	if err != nil {
		return nil, err
	}

	res := &model.Reservation{
		PrimaryUserID: primary.ID,
		RoomID:        room.ID,
		RoomName:      room.Name,
		Location:      room.Floor,
		StartTime:     slot.Start,
		EndTime:       slot.End,
		Purpose:       req.Purpose,
		Status:        schedule.StatusPending,
		Participants:  participants,
	}

	// Same-room admissions are serialized in-process; the store repeats
	// the conflict predicate inside the insert transaction for
	// cross-process writers.
	lock := s.roomLock(room.ID)
	lock.Lock()
	defer lock.Unlock()

	taken, err := s.store.HasRoomConflict(ctx, room.ID, slot, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ConflictError{Resource: "room", Window: slot}
	}
	if err := s.store.Create(ctx, res); err != nil {
		if errors.Is(err, repository.ErrRoomTaken) {
			return nil, &ConflictError{Resource: "room", Window: slot}
		}
		return nil, err
	}

	s.emit(ctx, queue.EventCreated, res, "")
	return res, nil
}

// startsAtLeastNextDay applies the one-day-advance rule on calendar days:
// the reservation day must be strictly after the current UTC day.
func startsAtLeastNextDay(now, start time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !start.Before(today.AddDate(0, 0, 1))
}

// LimitCheck is the result of the read-only pre-flight.
type LimitCheck struct {
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason,omitempty"`
}

// CheckLimit runs the same quota and person-conflict checks as creation
// without writing anything.  asMain selects whether the weekly quota
// (which only binds primary reservers) applies.
func (s *Service) CheckLimit(ctx context.Context, userID uint64, start time.Time, asMain bool) (LimitCheck, error) {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LimitCheck{}, &NotFoundError{Kind: "user", ID: fmt.Sprint(userID)}
		}
		return LimitCheck{}, err
	}
	if asMain {
		blocked, reason, err := s.quota.CheckWeekly(ctx, u.ID, start.UTC())
		if err != nil {
			return LimitCheck{}, err
		}
		if blocked {
			return LimitCheck{Blocked: true, Reason: reason}, nil
		}
	}
	slot := schedule.NewSlot(start.UTC())
	conflict, err := s.store.HasPersonConflict(ctx, u.ID, u.IDNumber, slot, "")
	if err != nil {
		return LimitCheck{}, err
	}
	if conflict {
		return LimitCheck{Blocked: true, Reason: "you already have a reservation overlapping this time"}, nil
	}
	return LimitCheck{}, nil
}

// UpdateStatus applies the staff approve/reject decision.  Approving a
// reservation whose scheduled window has already elapsed fails with a
// StateError; approval also re-verifies room availability, since two
// competing pending requests only collide at this point.
func (s *Service) UpdateStatus(ctx context.Context, id string, to schedule.Status) (*model.Reservation, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	switch to {
	case schedule.StatusApproved:
		if !schedule.CanTransition(res.Status, to) {
			return nil, &StateError{Op: "approve", Current: res.Status}
		}
		if res.Interval().Elapsed(s.now()) {
			return nil, &StateError{Op: "approve", Current: res.Status}
		}
		if err := s.store.Approve(ctx, id); err != nil {
			switch {
			case errors.Is(err, repository.ErrRoomTaken):
				return nil, &ConflictError{Resource: "room", Window: res.Interval()}
			case errors.Is(err, repository.ErrStateChanged):
				return s.stateError(ctx, id, "approve")
			case errors.Is(err, repository.ErrNotFound):
				return nil, &NotFoundError{Kind: "reservation", ID: id}
			}
			return nil, err
		}
	case schedule.StatusRejected:
		if !schedule.CanTransition(res.Status, to) {
			return nil, &StateError{Op: "reject", Current: res.Status}
		}
		ok, err := s.store.SetStatus(ctx, id, []schedule.Status{schedule.StatusPending}, to, repository.StatusUpdate{})
		if err != nil {
			return nil, err
		}
		if !ok {
			return s.stateError(ctx, id, "reject")
		}
	default:
		return nil, &ValidationError{Field: "status", Reason: "only APPROVED or REJECTED may be requested"}
	}
	updated, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, queue.EventStatusChanged, updated, "")
	return updated, nil
}

// StartReservation confirms presence and opens the occupancy: APPROVED ->
// ONGOING with the actual start recorded and the check-in flag set so the
// no-show sweep leaves it alone.
func (s *Service) StartReservation(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !schedule.CanTransition(res.Status, schedule.StatusOngoing) {
		return nil, &StateError{Op: "start", Current: res.Status}
	}
	now := s.now()
	checked := true
	ok, err := s.store.SetStatus(ctx, id,
		[]schedule.Status{schedule.StatusApproved}, schedule.StatusOngoing,
		repository.StatusUpdate{ActualStart: &now, CheckedIn: &checked})
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.stateError(ctx, id, "start")
	}
	updated, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, queue.EventStatusChanged, updated, "")
	return updated, nil
}

// EndReservationEarly closes an ongoing occupancy: ONGOING -> COMPLETED
// with the actual end recorded.  Allowed for staff and for the primary
// reserver.
func (s *Service) EndReservationEarly(ctx context.Context, id string, callerID uint64, staff bool) (*model.Reservation, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !staff && res.PrimaryUserID != callerID {
		return nil, ErrForbidden
	}
	if !schedule.CanTransition(res.Status, schedule.StatusCompleted) {
		return nil, &StateError{Op: "end", Current: res.Status}
	}
	now := s.now()
	ok, err := s.store.SetStatus(ctx, id,
		[]schedule.Status{schedule.StatusOngoing}, schedule.StatusCompleted,
		repository.StatusUpdate{ActualEnd: &now})
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.stateError(ctx, id, "end")
	}
	updated, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, queue.EventStatusChanged, updated, "")
	return updated, nil
}

// CancelReservation withdraws a booking.  Only the primary reserver may
// cancel, and only while the booking is PENDING or APPROVED.
func (s *Service) CancelReservation(ctx context.Context, id string, callerID uint64) (*model.Reservation, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.PrimaryUserID != callerID {
		return nil, ErrForbidden
	}
	if !schedule.CanTransition(res.Status, schedule.StatusCancelled) {
		return nil, &StateError{Op: "cancel", Current: res.Status}
	}
	ok, err := s.store.SetStatus(ctx, id,
		[]schedule.Status{schedule.StatusPending, schedule.StatusApproved},
		schedule.StatusCancelled, repository.StatusUpdate{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.stateError(ctx, id, "cancel")
	}
	updated, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, queue.EventStatusChanged, updated, "")
	return updated, nil
}

// ExtensionOffer is the outcome of a continuous-extension request.  When
// the grant was capped by a later booking, ConflictTime carries that
// booking's start so the requester understands the bound.
type ExtensionOffer struct {
	Reservation  *model.Reservation
	ConflictTime *time.Time
}

// RequestExtension negotiates a continuous extension: the engine grants
// the maximum safely available additional time in one step.  The cap is
// the next PENDING/APPROVED booking's start minus the changeover gap, or
// the current end plus the fixed ceiling when the room is free.  Only the
// primary reserver may request, only while APPROVED/ONGOING, and only one
// request may be outstanding.
func (s *Service) RequestExtension(ctx context.Context, id string, callerID uint64, reason string) (*ExtensionOffer, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.PrimaryUserID != callerID {
		return nil, ErrForbidden
	}
	if res.Status != schedule.StatusApproved && res.Status != schedule.StatusOngoing {
		return nil, &StateError{Op: "extend", Current: res.Status}
	}
	if res.ExtensionStatus != nil && *res.ExtensionStatus == schedule.ExtensionPending {
		return nil, &ValidationError{Field: "extension", Reason: "an extension request is already pending"}
	}

	currentEnd := res.EndTime
	next, err := s.store.NextOnRoom(ctx, res.RoomID, currentEnd)
	if err != nil {
		return nil, err
	}
	var limit time.Time
	var conflictTime *time.Time
	if next != nil {
		limit = next.StartTime.Add(-ExtensionGap)
		t := next.StartTime
		conflictTime = &t
	} else {
		limit = currentEnd.Add(ExtensionCeiling)
	}
	if !limit.After(currentEnd) {
		// The next booking starts within the changeover gap; nothing can
		// be granted.
		return nil, &ConflictError{Resource: "room", Window: next.Interval()}
	}

	ok, err := s.store.RequestExtension(ctx, id, limit, limit, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ValidationError{Field: "extension", Reason: "an extension request is already pending"}
	}
	updated, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, queue.EventExtensionRequested, updated, reason)
	return &ExtensionOffer{Reservation: updated, ConflictTime: conflictTime}, nil
}

// HandleExtension applies the staff decision on a pending extension.
// Approval commits the candidate end as the effective end time; rejection
// clears the candidate but leaves the rejected marker so the requester
// can be informed once.
func (s *Service) HandleExtension(ctx context.Context, id string, approve bool) (*model.Reservation, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.ExtensionStatus == nil || *res.ExtensionStatus != schedule.ExtensionPending {
		return nil, &StateError{Op: "resolve extension for", Current: res.Status}
	}
	// The booking may have been cancelled or swept while the request sat
	// pending; a decision must not touch a terminal record.
	if res.Status != schedule.StatusApproved && res.Status != schedule.StatusOngoing {
		return nil, &StateError{Op: "resolve extension for", Current: res.Status}
	}
	var ok bool
	if approve {
		ok, err = s.store.ApproveExtension(ctx, id)
	} else {
		ok, err = s.store.RejectExtension(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.stateError(ctx, id, "resolve extension for")
	}
	updated, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	decision := "rejected"
	if approve {
		decision = "approved"
	}
	s.emit(ctx, queue.EventExtensionDecided, updated, "extension "+decision)
	return updated, nil
}

// AddParticipant appends one person to the roster while the booking is
// still PENDING or APPROVED, running the same eligibility checks as
// composition.  Only the primary reserver may edit the roster.
func (s *Service) AddParticipant(ctx context.Context, id string, callerID uint64, idNumber string) (*model.Reservation, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.PrimaryUserID != callerID {
		return nil, ErrForbidden
	}
	if res.Status != schedule.StatusPending && res.Status != schedule.StatusApproved {
		return nil, &StateError{Op: "edit participants of", Current: res.Status}
	}
	if res.GroupSize()+1 > model.MaxGroupSize {
		return nil, &ValidationError{Field: "participants",
			Reason: fmt.Sprintf("group size cannot exceed %d", model.MaxGroupSize)}
	}
	primary, err := s.users.ByID(ctx, res.PrimaryUserID)
	if err != nil {
		return nil, err
	}
	taken := map[string]bool{primary.IDNumber: true}
	for _, p := range res.Participants {
		taken[p.IDNumber] = true
	}
	snap, err := s.compose.vet(ctx, idNumber, taken, res.Location, res.Interval())
	if err != nil {
		return nil, err
	}
	if err := s.store.AddParticipant(ctx, id, snap); err != nil {
		if errors.Is(err, repository.ErrDuplicateParticipant) {
			return nil, &ValidationError{Field: "participants", Reason: idNumber + " is already on this reservation"}
		}
		return nil, err
	}
	return s.getReservation(ctx, id)
}

// RemoveParticipant drops a person from the roster while PENDING or
// APPROVED, provided the group stays at the minimum size.
func (s *Service) RemoveParticipant(ctx context.Context, id string, callerID uint64, idNumber string) (*model.Reservation, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.PrimaryUserID != callerID {
		return nil, ErrForbidden
	}
	if res.Status != schedule.StatusPending && res.Status != schedule.StatusApproved {
		return nil, &StateError{Op: "edit participants of", Current: res.Status}
	}
	if res.GroupSize()-1 < model.MinGroupSize {
		return nil, &ValidationError{Field: "participants",
			Reason: fmt.Sprintf("group size cannot drop below %d", model.MinGroupSize)}
	}
	ok, err := s.store.RemoveParticipant(ctx, id, idNumber)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Kind: "participant", ID: idNumber}
	}
	return s.getReservation(ctx, id)
}

// SweepExpired transitions every overdue reservation to EXPIRED in one
// atomic pass and emits an expiry event per reservation with a derived
// reason.  Rerunning the sweep on an already-swept store is a no-op.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.store.ExpireDue(ctx, now, NoShowGrace)
	if err != nil {
		return 0, err
	}
	for i := range expired {
		res := expired[i]
		reason := expiryReason(&res, now)
		res.Status = schedule.StatusExpired
		s.emit(ctx, queue.EventExpired, &res, reason)
	}
	return len(expired), nil
}

// expiryReason derives the human-readable explanation handed to the
// notification collaborator, from the reservation's pre-sweep state.
func expiryReason(res *model.Reservation, now time.Time) string {
	if res.Interval().Elapsed(now) {
		switch res.Status {
		case schedule.StatusOngoing:
			return "the scheduled window elapsed while the room was still in use"
		case schedule.StatusApproved:
			return "the reservation was approved but the scheduled window elapsed"
		default:
			return "the reservation was never approved before the scheduled window elapsed"
		}
	}
	return "no check-in within the grace period after the scheduled start"
}

// FloorValidation is the result of the pre-flight participant
// eligibility check for the booking form.
type FloorValidation struct {
	Valid               bool     `json:"valid"`
	ValidParticipants   []string `json:"valid_participants"`
	InvalidParticipants []string `json:"invalid_participants"`
	Restriction         string   `json:"restriction_message,omitempty"`
}

// ValidateFloorAccess splits the given ID numbers into allowed and
// denied for the floor and surfaces the restriction message when anyone
// is denied.
func (s *Service) ValidateFloorAccess(ctx context.Context, location string, idNumbers []string) (*FloorValidation, error) {
	out := &FloorValidation{
		ValidParticipants:   make([]string, 0, len(idNumbers)),
		InvalidParticipants: make([]string, 0),
	}
	for _, idn := range idNumbers {
		u, err := s.users.ByIDNumber(ctx, idn)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				out.InvalidParticipants = append(out.InvalidParticipants, idn)
				continue
			}
			return nil, err
		}
		if s.floor.Allowed(u, location) {
			out.ValidParticipants = append(out.ValidParticipants, idn)
		} else {
			out.InvalidParticipants = append(out.InvalidParticipants, idn)
		}
	}
	out.Valid = len(out.InvalidParticipants) == 0
	if !out.Valid {
		out.Restriction = s.floor.Explain(location)
	}
	return out, nil
}

// Get returns a reservation visible to the caller: staff see everything,
// users only their own bookings.
func (s *Service) Get(ctx context.Context, id string, callerID uint64, staff bool) (*model.Reservation, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !staff && res.PrimaryUserID != callerID {
		return nil, ErrForbidden
	}
	return res, nil
}

// ListByUser returns the caller's reservations, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return s.store.ListByUser(ctx, userID)
}

// List returns reservations matching the staff filter.
func (s *Service) List(ctx context.Context, f repository.ReservationFilter) ([]model.Reservation, error) {
	return s.store.List(ctx, f)
}

// ArchiveReservation soft-deletes a reservation into the archive store.
func (s *Service) ArchiveReservation(ctx context.Context, id string) error {
	if err := s.store.Archive(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Kind: "reservation", ID: id}
		}
		return err
	}
	return nil
}

// RestoreReservation reinstates an archived reservation under a freshly
// generated identity, preserving its business fields.
func (s *Service) RestoreReservation(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := s.store.Restore(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Kind: "archived reservation", ID: id}
		}
		return nil, err
	}
	return res, nil
}

func (s *Service) getReservation(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Kind: "reservation", ID: id}
		}
		return nil, err
	}
	return res, nil
}

// stateError re-reads the reservation after a guarded update matched
// nothing and reports the state the caller lost to.
func (s *Service) stateError(ctx context.Context, id, op string) (*model.Reservation, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, &StateError{Op: op, Current: res.Status}
}

// emit publishes a lifecycle event.  Failures are logged and swallowed;
// notification delivery is never allowed to fail the primary operation.
func (s *Service) emit(ctx context.Context, eventType string, res *model.Reservation, reason string) {
	if s.publish == nil {
		return
	}
	ids := make([]string, 0, len(res.Participants))
	for _, p := range res.Participants {
		ids = append(ids, p.IDNumber)
	}
	ev := queue.ReservationEvent{
		Type:          eventType,
		ReservationID: res.ID,
		PrimaryUserID: res.PrimaryUserID,
		RoomID:        res.RoomID,
		RoomName:      res.RoomName,
		Location:      res.Location,
		StartsAt:      res.StartTime.UTC().Format(time.RFC3339),
		EndsAt:        res.EndTime.UTC().Format(time.RFC3339),
		Status:        string(res.Status),
		Participants:  ids,
		Reason:        reason,
		OccurredAt:    s.now().Format(time.RFC3339),
	}
	if err := s.publish(ctx, ev); err != nil {
		log.Printf("booking: publish %s for %s failed: %v", eventType, res.ID, err)
	}
}
