package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(h, m int) time.Time {
	return time.Date(2026, 9, 14, h, m, 0, 0, time.UTC)
}

func TestIntervalOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{
			name: "identical slots clash",
			a:    NewSlot(at(10, 0)),
			b:    NewSlot(at(10, 0)),
			want: true,
		},
		{
			name: "partial overlap clashes",
			a:    NewSlot(at(10, 0)),
			b:    NewSlot(at(10, 30)),
			want: true,
		},
		{
			name: "adjacent slots do not clash",
			a:    NewSlot(at(10, 0)),
			b:    NewSlot(at(11, 0)),
			want: false,
		},
		{
			name: "disjoint slots do not clash",
			a:    NewSlot(at(10, 0)),
			b:    NewSlot(at(13, 0)),
			want: false,
		},
		{
			name: "containment clashes",
			a:    Interval{Start: at(9, 0), End: at(13, 0)},
			b:    NewSlot(at(10, 0)),
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestAdjacentSlotsDoNotOverlap(t *testing.T) {
	a := NewSlot(at(10, 0))
	b := NewSlot(at(11, 0))
	assert.False(t, a.Overlaps(b), "[10,11) and [11,12) share no instant")
	assert.False(t, b.Overlaps(a))
}

func TestNewSlotIsOneHour(t *testing.T) {
	iv := NewSlot(at(14, 0))
	assert.Equal(t, time.Hour, iv.Duration())
	assert.True(t, iv.Valid())
}

func TestContainsHalfOpen(t *testing.T) {
	iv := NewSlot(at(10, 0))
	assert.True(t, iv.Contains(at(10, 0)), "start is inclusive")
	assert.True(t, iv.Contains(at(10, 59)))
	assert.False(t, iv.Contains(at(11, 0)), "end is exclusive")
	assert.False(t, iv.Contains(at(9, 59)))
}

func TestElapsed(t *testing.T) {
	iv := NewSlot(at(10, 0))
	assert.False(t, iv.Elapsed(at(10, 30)))
	assert.True(t, iv.Elapsed(at(11, 0)), "interval has fully elapsed at its exclusive end")
	assert.True(t, iv.Elapsed(at(12, 0)))
}
