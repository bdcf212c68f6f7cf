package memory

import (
	"context"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository"
)

type AvailabilityIndex struct {
	store *Store
}

// FindFree takes a point-in-time view per room; it may race a concurrent insert.
func (a *AvailabilityIndex) FindFree(ctx context.Context, interval domain.Interval, filter domain.RoomFilter, order domain.RoomOrder) ([]domain.Room, error) {
	s := a.store
	s.mu.RLock()
	candidates := make([]*roomEntry, 0, len(s.rooms))
	rooms := make(map[*roomEntry]domain.Room, len(s.rooms))
	for _, e := range s.rooms {
		if filter.Match(e.room) {
			candidates = append(candidates, e)
			rooms[e] = e.room
		}
	}
	s.mu.RUnlock()

	free := make([]domain.Room, 0, len(candidates))
	for _, e := range candidates {
		if !e.ledger.busy(interval) {
			free = append(free, rooms[e])
		}
	}
	domain.SortRooms(free, order)
	return free, nil
}

func (l *roomLedger) busy(interval domain.Interval) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.deleted {
		return true
	}
	for _, b := range l.bookings {
		if b.Interval().Overlaps(interval) {
			return true
		}
	}
	return false
}

var _ repository.AvailabilityIndex = (*AvailabilityIndex)(nil)
