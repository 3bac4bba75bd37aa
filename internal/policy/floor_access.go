// Package policy holds the stateless booking policies: who may use which
// floor and how many reservation days a person gets per week.  Policies
// are plain objects behind small interfaces so the booking service can
// swap them out in tests.
package policy

import (
	"strings"

	"github.com/arjaysison/library-room-reservation/internal/model"
)

// FloorPolicy decides whether a person may use a given floor and explains
// denials in user-facing language.
type FloorPolicy interface {
	Allowed(u *model.User, floor string) bool
	Explain(floor string) string
}

// FloorAccess implements the facility's floor rules:
//   - Ground floor is reserved for graduate students.
//   - The 2nd floor is reserved for the College of Law.
//   - The 4th and 5th floors are open to everyone.
//   - Unrecognized floors default to allowed.
//
// The predicate is pure.  A nil user always evaluates to false so that a
// failed lookup upstream denies rather than grants.
type FloorAccess struct{}

// graduateMarkers are the program-name fragments that identify a graduate
// student.  Matching is case-insensitive against the user's course text.
var graduateMarkers = []string{
	"master",
	"doctor",
	"ph.d",
	"phd",
	"graduate",
	"mba",
	"m.a.",
	"m.s.",
	"msc",
	"ll.m",
	"llm",
	"d.b.a",
	"ed.d",
}

// lawMarkers identify the College of Law by department or course text.
var lawMarkers = []string{
	"college of law",
	"school of law",
	"juris doctor",
	"bachelor of laws",
	"jd",
	"llb",
}

// Allowed reports whether the user may book or join a reservation on the
// given floor.  Faculty, staff and admin accounts are exempt from the
// program-based rules since they carry no course data.
func (FloorAccess) Allowed(u *model.User, floor string) bool {
	if u == nil {
		return false
	}
	if model.Staff(u.Role) || u.Role == model.RoleFaculty {
		return true
	}
	switch normalizeFloor(floor) {
	case "ground":
		return containsAny(u.Course, graduateMarkers)
	case "2nd", "second":
		return containsAny(u.Department, lawMarkers) || containsAny(u.Course, lawMarkers)
	case "4th", "fourth", "5th", "fifth":
		return true
	default:
		// Unknown floors fail open; new floors become restricted only
		// once a rule is added here.
		return true
	}
}

// Explain returns the restriction message surfaced to users when access
// to the floor is denied.
func (FloorAccess) Explain(floor string) string {
	switch normalizeFloor(floor) {
	case "ground":
		return "the Ground floor is reserved for graduate students"
	case "2nd", "second":
		return "the 2nd floor is reserved for College of Law students"
	default:
		return "this floor has no booking restriction"
	}
}

// normalizeFloor lowers the floor name and strips whitespace and a
// trailing "floor" word so "Ground Floor", " ground " and "ground" all
// compare equal.
func normalizeFloor(floor string) string {
	f := strings.ToLower(strings.TrimSpace(floor))
	f = strings.TrimSuffix(f, "floor")
	return strings.TrimSpace(f)
}

func containsAny(text string, markers []string) bool {
	t := strings.ToLower(text)
	if strings.TrimSpace(t) == "" {
		return false
	}
	for _, m := range markers {
		if strings.Contains(t, m) {
			return true
		}
	}
	return false
}
