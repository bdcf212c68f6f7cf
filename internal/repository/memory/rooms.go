package memory

import (
	"context"
	"strings"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository"
)

type RoomRepository struct {
	store *Store
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	s := r.store
	name := strings.TrimSpace(room.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.rooms {
		if e.room.Name == name {
			return domain.ErrRoomNameTaken
		}
	}
	s.nextRoom++
	now := s.now()
	room.ID = s.nextRoom
	room.Name = name
	room.CreatedAt = now
	room.UpdatedAt = now
	s.rooms[room.ID] = &roomEntry{room: *room, ledger: &roomLedger{}}
	return nil
}

func (r *RoomRepository) List(ctx context.Context, filter domain.RoomFilter, order domain.RoomOrder) ([]domain.Room, error) {
	s := r.store
	s.mu.RLock()
	rooms := make([]domain.Room, 0, len(s.rooms))
	for _, e := range s.rooms {
		if filter.Match(e.room) {
			rooms = append(rooms, e.room)
		}
	}
	s.mu.RUnlock()

	domain.SortRooms(rooms, order)
	return rooms, nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	e, ok := r.store.entry(id)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	r.store.mu.RLock()
	room := e.room
	r.store.mu.RUnlock()
	return &room, nil
}

func (r *RoomRepository) Update(ctx context.Context, id int64, upd domain.RoomUpdate) (*domain.Room, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if upd.PriceCents != nil {
		e.room.PriceCents = *upd.PriceCents
	}
	if upd.Capacity != nil {
		e.room.Capacity = *upd.Capacity
	}
	e.room.UpdatedAt = s.now()
	room := e.room
	return &room, nil
}

// Delete cascades to the room's bookings.
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	e, ok := s.rooms[id]
	if ok {
		delete(s.rooms, id)
	}
	s.mu.Unlock()
	if !ok {
		return domain.ErrRoomNotFound
	}

	e.ledger.mu.Lock()
	defer e.ledger.mu.Unlock()
	e.ledger.deleted = true

	s.mu.Lock()
	for _, b := range e.ledger.bookings {
		delete(s.bookings, b.ID)
	}
	s.mu.Unlock()
	e.ledger.bookings = nil
	return nil
}

var _ repository.RoomRepository = (*RoomRepository)(nil)
