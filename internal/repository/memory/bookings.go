package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository"
	"github.com/google/uuid"
)

type BookingRepository struct {
	store *Store
}

// Insert checks for overlap and appends while holding the room's lock, so no other
// writer for the same room can observe the ledger between the check and the insert.
func (r *BookingRepository) Insert(ctx context.Context, booking *domain.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	booking.DateStart = booking.DateStart.UTC().Truncate(time.Microsecond)
	booking.DateEnd = booking.DateEnd.UTC().Truncate(time.Microsecond)
	if !booking.Interval().Valid() {
		return domain.ErrInvalidInterval
	}

	s := r.store
	e, ok := s.entry(booking.RoomID)
	if !ok {
		return domain.ErrRoomNotFound
	}

	e.ledger.mu.Lock()
	defer e.ledger.mu.Unlock()

	if e.ledger.deleted {
		return domain.ErrRoomNotFound
	}
	candidate := booking.Interval()
	for _, existing := range e.ledger.bookings {
		if existing.Interval().Overlaps(candidate) {
			return domain.ErrBookingConflict
		}
	}

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.CreatedAt = s.now()
	e.ledger.bookings = append(e.ledger.bookings, *booking)

	s.mu.Lock()
	s.bookings[booking.ID] = booking.RoomID
	s.mu.Unlock()
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.RLock()
	roomID, ok := s.bookings[id]
	var e *roomEntry
	if ok {
		e = s.rooms[roomID]
	}
	s.mu.RUnlock()
	if !ok || e == nil {
		return domain.ErrBookingNotFound
	}

	e.ledger.mu.Lock()
	defer e.ledger.mu.Unlock()

	for i, b := range e.ledger.bookings {
		if b.ID == id {
			e.ledger.bookings = append(e.ledger.bookings[:i], e.ledger.bookings[i+1:]...)
			s.mu.Lock()
			delete(s.bookings, id)
			s.mu.Unlock()
			return nil
		}
	}
	return domain.ErrBookingNotFound
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BookingWithRoom, error) {
	for _, b := range r.collect(func(b domain.Booking) bool { return b.ID == id }) {
		return &b, nil
	}
	return nil, domain.ErrBookingNotFound
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BookingWithRoom, error) {
	out := r.collect(func(b domain.Booking) bool { return b.UserID == userID })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateStart.Equal(out[j].DateStart) {
			return out[i].DateStart.Before(out[j].DateStart)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]domain.BookingWithRoom, error) {
	out := r.collect(func(domain.Booking) bool { return true })
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoomID != out[j].RoomID {
			return out[i].RoomID < out[j].RoomID
		}
		return out[i].DateStart.Before(out[j].DateStart)
	})
	return out, nil
}

// Count returns the number of bookings across all rooms.
func (r *BookingRepository) Count() int {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.bookings)
}

func (r *BookingRepository) collect(match func(domain.Booking) bool) []domain.BookingWithRoom {
	s := r.store
	s.mu.RLock()
	entries := make([]*roomEntry, 0, len(s.rooms))
	rooms := make(map[*roomEntry]domain.Room, len(s.rooms))
	for _, e := range s.rooms {
		entries = append(entries, e)
		rooms[e] = e.room
	}
	s.mu.RUnlock()

	out := make([]domain.BookingWithRoom, 0)
	for _, e := range entries {
		e.ledger.mu.Lock()
		for _, b := range e.ledger.bookings {
			if match(b) {
				out = append(out, domain.BookingWithRoom{Booking: b, Room: rooms[e]})
			}
		}
		e.ledger.mu.Unlock()
	}
	return out
}

var _ repository.BookingRepository = (*BookingRepository)(nil)
