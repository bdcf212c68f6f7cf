package domain

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Valid reports whether the interval is non-empty. Zero-length intervals are invalid.
func (i Interval) Valid() bool {
	return ValidInterval(i.Start, i.End)
}

// Overlaps reports whether i and other share at least one instant.
// Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i.Start, i.End, other.Start, other.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func ValidInterval(start, end time.Time) bool {
	return start.Before(end)
}

func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
