package schedule

import "time"

// Interval is a half-open time range [Start, End).  All reservation slots
// and extension windows are expressed as intervals so that adjacent
// bookings (one ending exactly when the next starts) never count as a
// clash.  Times are expected to be UTC.
//
// Fields:
//  Start – inclusive lower bound.
//  End   – exclusive upper bound; must be after Start for a valid interval.
type Interval struct {
	Start time.Time
	End   time.Time
}

// SlotDuration is the fixed length of a reservation slot at creation time.
const SlotDuration = time.Hour

// NewSlot returns the one-hour interval beginning at start.
func NewSlot(start time.Time) Interval {
	return Interval{Start: start, End: start.Add(SlotDuration)}
}

// Valid reports whether the interval is well formed (End strictly after Start).
func (iv Interval) Valid() bool {
	return iv.End.After(iv.Start)
}

// Overlaps reports whether iv and other share any instant.  Half-open
// semantics: a.Start < b.End && b.Start < a.End, so [10:00,11:00) and
// [11:00,12:00) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether t falls inside the interval.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Duration returns End − Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Elapsed reports whether the whole interval lies in the past relative to now.
func (iv Interval) Elapsed(now time.Time) bool {
	return !iv.End.After(now)
}
