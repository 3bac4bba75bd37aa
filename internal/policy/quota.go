package policy

import (
	"context"
	"fmt"
	"time"
)

// DayLister returns the distinct calendar days (formatted "2006-01-02",
// UTC) on which a user already has reservations as primary reserver with
// status PENDING or APPROVED, within [from, to).
type DayLister interface {
	DistinctDays(ctx context.Context, userID uint64, from, to time.Time) ([]string, error)
}

// QuotaChecker is the interface the booking service consumes.
type QuotaChecker interface {
	CheckWeekly(ctx context.Context, userID uint64, day time.Time) (blocked bool, reason string, err error)
}

// WeeklyDayLimit caps how many distinct calendar days per week a person
// may hold reservations for as primary reserver.
const WeeklyDayLimit = 2

// Quota enforces the weekly fairness rule: at most WeeklyDayLimit
// distinct reservation days inside the Monday-aligned week containing the
// requested day, and never two reservations on the same day.  Only
// bookings where the person is the primary reserver count; joining a
// group as a participant is unlimited.
type Quota struct {
	Days DayLister
}

// NewQuota returns a Quota backed by the given day lister.
func NewQuota(days DayLister) *Quota { return &Quota{Days: days} }

// CheckWeekly reports whether booking on day would break the weekly
// quota.  The week runs Monday 00:00 UTC through the following Monday.
func (q *Quota) CheckWeekly(ctx context.Context, userID uint64, day time.Time) (bool, string, error) {
	from := WeekStart(day)
	to := from.AddDate(0, 0, 7)
	days, err := q.Days.DistinctDays(ctx, userID, from, to)
	if err != nil {
		return false, "", err
	}
	target := day.UTC().Format(dayLayout)
	for _, d := range days {
		if d == target {
			return true, "you already have a reservation on this day", nil
		}
	}
	if len(days) >= WeeklyDayLimit {
		return true, fmt.Sprintf("weekly limit of %d reservation days reached", WeeklyDayLimit), nil
	}
	return false, "", nil
}

const dayLayout = "2006-01-02"

// WeekStart returns midnight UTC of the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(u.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return midnight.AddDate(0, 0, -offset)
}
