package model

import (
	"time"

	"github.com/arjaysison/library-room-reservation/internal/schedule"
)

// Reservation records a one-hour group booking of a room.  It is the
// primary entity of the scheduling engine; all status movement goes
// through the state machine in the schedule package and is persisted by
// guarded updates in the repository layer.
//
// Fields:
//  ID                 – opaque UUID identity.
//  PrimaryUserID      – user who created the booking; sole holder of
//                       cancel and extension-request rights.
//  RoomID             – room being booked.
//  RoomName, Location – denormalized room name and floor for display and
//                       floor-rule evaluation without a join.
//  StartTime, EndTime – scheduled window; EndTime is StartTime+1h at
//                       creation and only grows via an approved extension.
//  ExtendedEndTime    – candidate end while an extension is pending.
//  MaxExtendedEndTime – hard ceiling computed when the extension was
//                       requested.
//  Purpose            – free-text reason for the booking.
//  Status             – lifecycle state (see schedule.Status).
//  ExtensionStatus    – state of the outstanding/last extension request.
//  ExtensionReason    – requester's stated reason for the extension.
//  ActualStartTime    – wall-clock time the room was occupied.
//  ActualEndTime      – wall-clock time the room was vacated.
//  CheckedIn          – whether presence was confirmed within the grace
//                       window; unchecked bookings are swept as no-shows.
//  Participants       – snapshot roster, 3–7 entries (group of 4–8
//                       counting the primary).
//  CreatedAt/UpdatedAt – bookkeeping timestamps.
type Reservation struct {
	ID                 string                    // reservations.id (uuid)
	PrimaryUserID      uint64                    // reservations.primary_user_id
	RoomID             uint64                    // reservations.room_id
	RoomName           string                    // reservations.room_name
	Location           string                    // reservations.location (floor)
	StartTime          time.Time                 // reservations.start_time
	EndTime            time.Time                 // reservations.end_time
	ExtendedEndTime    *time.Time                // reservations.extended_end_time (nullable)
	MaxExtendedEndTime *time.Time                // reservations.max_extended_end_time (nullable)
	Purpose            string                    // reservations.purpose
	Status             schedule.Status           // reservations.status
	ExtensionStatus    *schedule.ExtensionStatus // reservations.extension_status (nullable)
	ExtensionReason    *string                   // reservations.extension_reason (nullable)
	ActualStartTime    *time.Time                // reservations.actual_start_time (nullable)
	ActualEndTime      *time.Time                // reservations.actual_end_time (nullable)
	CheckedIn          bool                      // reservations.checked_in
	Participants       []Participant             // reservation_participants rows
	CreatedAt          time.Time                 // reservations.created_at
	UpdatedAt          time.Time                 // reservations.updated_at
}

// Interval returns the scheduled window as a half-open interval.
func (r *Reservation) Interval() schedule.Interval {
	return schedule.Interval{Start: r.StartTime, End: r.EndTime}
}

// GroupSize is the number of people on the booking including the primary
// reserver.
func (r *Reservation) GroupSize() int {
	return len(r.Participants) + 1
}

// Participant is a denormalized snapshot of a user at booking time.  The
// snapshot is authoritative for historical display; live lookups by
// IDNumber are used only for current-state checks such as verification
// and time conflicts.
//
// Fields:
//  IDNumber   – campus ID, unique within a reservation and disjoint from
//               the primary reserver's.
//  FullName   – name at booking time.
//  Course     – academic program at booking time.
//  YearLevel  – year level at booking time.
//  Department – department at booking time.
type Participant struct {
	IDNumber   string `json:"id_number"`  // reservation_participants.id_number
	FullName   string `json:"full_name"`  // reservation_participants.full_name
	Course     string `json:"course"`     // reservation_participants.course
	YearLevel  string `json:"year_level"` // reservation_participants.year_level
	Department string `json:"department"` // reservation_participants.department
}

// Snapshot copies the participant-facing fields of a user.
func Snapshot(u *User) Participant {
	return Participant{
		IDNumber:   u.IDNumber,
		FullName:   u.FullName,
		Course:     u.Course,
		YearLevel:  u.YearLevel,
		Department: u.Department,
	}
}

// Group size bounds, counting the primary reserver.
const (
	MinGroupSize = 4
	MaxGroupSize = 8
)
