package domain

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	ID        uuid.UUID
	RoomID    int64
	UserID    int64
	DateStart time.Time
	DateEnd   time.Time
	CreatedAt time.Time
}

func (b Booking) Interval() Interval {
	return Interval{Start: b.DateStart, End: b.DateEnd}
}

// BookingWithRoom carries the current state of the booked room, not a historical snapshot.
type BookingWithRoom struct {
	Booking
	Room Room
}

type DeleteConfirmation struct {
	ID     uuid.UUID
	Detail string
}
