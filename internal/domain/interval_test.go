package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2026, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	testCases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{name: "identical", a: NewInterval(day(1), day(3)), b: NewInterval(day(1), day(3)), want: true},
		{name: "partial left", a: NewInterval(day(1), day(3)), b: NewInterval(day(2), day(4)), want: true},
		{name: "contained", a: NewInterval(day(1), day(10)), b: NewInterval(day(4), day(5)), want: true},
		{name: "adjacent", a: NewInterval(day(1), day(2)), b: NewInterval(day(2), day(3)), want: false},
		{name: "adjacent reversed", a: NewInterval(day(2), day(3)), b: NewInterval(day(1), day(2)), want: false},
		{name: "disjoint", a: NewInterval(day(1), day(2)), b: NewInterval(day(5), day(6)), want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestIntervalValid(t *testing.T) {
	assert.True(t, NewInterval(day(1), day(2)).Valid())
	assert.False(t, NewInterval(day(2), day(2)).Valid())
	assert.False(t, NewInterval(day(3), day(2)).Valid())
	assert.Equal(t, 24*time.Hour, NewInterval(day(1), day(2)).Duration())
}
