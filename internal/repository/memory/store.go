// Package memory is an in-process implementation of the repositories.
//
// It has no exclusion constraint to lean on, so the ledger serializes writers per room:
// the overlap re-check and the insert run under the room's mutex. Writers of different
// rooms never contend.
package memory

import (
	"sync"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	rooms    map[int64]*roomEntry
	bookings map[uuid.UUID]int64 // booking id -> room id
	users    map[int64]domain.User
	nextRoom int64
	nextUser int64
	now      func() time.Time
}

type roomEntry struct {
	room   domain.Room
	ledger *roomLedger
}

type roomLedger struct {
	mu       sync.Mutex
	deleted  bool
	bookings []domain.Booking
}

func NewStore() *Store {
	return &Store{
		rooms:    make(map[int64]*roomEntry),
		bookings: make(map[uuid.UUID]int64),
		users:    make(map[int64]domain.User),
		now:      time.Now,
	}
}

func (s *Store) Rooms() *RoomRepository {
	return &RoomRepository{store: s}
}

func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{store: s}
}

func (s *Store) Availability() *AvailabilityIndex {
	return &AvailabilityIndex{store: s}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

func (s *Store) entry(roomID int64) (*roomEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.rooms[roomID]
	return e, ok
}
