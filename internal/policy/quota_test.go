package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDayLister struct {
	days []string
	from time.Time
	to   time.Time
	err  error
}

func (s *stubDayLister) DistinctDays(_ context.Context, _ uint64, from, to time.Time) ([]string, error) {
	s.from, s.to = from, to
	return s.days, s.err
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday maps to itself", day(2026, 9, 14), time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)},
		{"wednesday maps back to monday", day(2026, 9, 16), time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)},
		{"sunday belongs to the preceding monday", day(2026, 9, 20), time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)},
		{"next monday starts a new week", day(2026, 9, 21), time.Date(2026, 9, 21, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(tt.in))
		})
	}
}

func TestCheckWeekly(t *testing.T) {
	tests := []struct {
		name       string
		existing   []string
		target     time.Time
		wantBlock  bool
		wantReason string
	}{
		{
			name:      "empty week allows",
			existing:  nil,
			target:    day(2026, 9, 16),
			wantBlock: false,
		},
		{
			name:      "one prior day allows a second",
			existing:  []string{"2026-09-15"},
			target:    day(2026, 9, 17),
			wantBlock: false,
		},
		{
			name:       "second booking on the same day is blocked",
			existing:   []string{"2026-09-16"},
			target:     day(2026, 9, 16),
			wantBlock:  true,
			wantReason: "you already have a reservation on this day",
		},
		{
			name:       "third distinct day is blocked",
			existing:   []string{"2026-09-15", "2026-09-17"},
			target:     day(2026, 9, 18),
			wantBlock:  true,
			wantReason: "weekly limit of 2 reservation days reached",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &stubDayLister{days: tt.existing}
			q := NewQuota(lister)
			blocked, reason, err := q.CheckWeekly(context.Background(), 1, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBlock, blocked)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, reason)
			}
		})
	}
}

func TestCheckWeeklyQueriesTheMondayAlignedWeek(t *testing.T) {
	lister := &stubDayLister{}
	q := NewQuota(lister)
	_, _, err := q.CheckWeekly(context.Background(), 1, day(2026, 9, 20)) // a Sunday
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), lister.from)
	assert.Equal(t, time.Date(2026, 9, 21, 0, 0, 0, 0, time.UTC), lister.to)
}

func TestCheckWeeklySundayThenMondayAreSeparateWeeks(t *testing.T) {
	// Two days already used in the week ending Sunday 2026-09-20; booking
	// Monday 2026-09-21 falls in the next week and must be allowed.
	lister := &stubDayLister{days: nil}
	q := NewQuota(lister)
	blocked, _, err := q.CheckWeekly(context.Background(), 1, day(2026, 9, 21))
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.Equal(t, time.Date(2026, 9, 21, 0, 0, 0, 0, time.UTC), lister.from)
}
