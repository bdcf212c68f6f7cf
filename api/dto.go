package api

import (
	"strings"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
)

const dateLayout = "2006-01-02"

// parseTime accepts RFC 3339 timestamps and plain dates, which mean midnight UTC.
// Timestamps keep microsecond precision, the resolution of the ledger.
func parseTime(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, domain.NewValidationError(field + " is required")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC().Truncate(time.Microsecond), nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError(field + " must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
}

type roomResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PricePerDay string `json:"price_per_day"`
	Capacity    int    `json:"capacity"`
}

func newRoomResponse(r domain.Room) roomResponse {
	return roomResponse{
		ID:          r.ID,
		Name:        r.Name,
		PricePerDay: domain.FormatPrice(r.PriceCents),
		Capacity:    r.Capacity,
	}
}

func newRoomsResponse(rooms []domain.Room) []roomResponse {
	out := make([]roomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, newRoomResponse(r))
	}
	return out
}

type bookingResponse struct {
	ID        string        `json:"id"`
	RoomID    int64         `json:"room_id"`
	UserID    int64         `json:"user_id"`
	DateStart string        `json:"date_start"`
	DateEnd   string        `json:"date_end"`
	CreatedAt string        `json:"created_at"`
	Room      *roomResponse `json:"room,omitempty"`
}

func newBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:        b.ID.String(),
		RoomID:    b.RoomID,
		UserID:    b.UserID,
		DateStart: b.DateStart.UTC().Format(time.RFC3339Nano),
		DateEnd:   b.DateEnd.UTC().Format(time.RFC3339Nano),
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func newBookingWithRoomResponse(b domain.BookingWithRoom) bookingResponse {
	resp := newBookingResponse(b.Booking)
	room := newRoomResponse(b.Room)
	resp.Room = &room
	return resp
}

func newBookingsResponse(bookings []domain.BookingWithRoom) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, newBookingWithRoomResponse(b))
	}
	return out
}

type deleteResponse struct {
	ID     string `json:"id"`
	Detail string `json:"detail"`
}
