package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AvailabilityIndex answers which rooms have no booking overlapping an interval.
// The caller validates the interval; the index only computes the set.
type AvailabilityIndex interface {
	FindFree(ctx context.Context, interval domain.Interval, filter domain.RoomFilter, order domain.RoomOrder) ([]domain.Room, error)
}

type PGAvailabilityIndex struct {
	db *pgxpool.Pool
}

func NewAvailabilityIndex(db *pgxpool.Pool) AvailabilityIndex {
	return &PGAvailabilityIndex{db: db}
}

// freeRoomsQuery is rooms minus rooms-with-overlap, using the same half-open predicate as domain.Overlaps.
// Filter conditions start at $3.
const freeRoomsQuery = `SELECT r.id, r.name, r.price_cents, r.capacity, r.created_at, r.updated_at
	FROM rooms r
	WHERE NOT EXISTS (
	      SELECT 1 FROM bookings b
	      WHERE b.room_id = r.id
	        AND b.date_start < $2
	        AND b.date_end > $1
	  )`

func (a *PGAvailabilityIndex) FindFree(ctx context.Context, interval domain.Interval, filter domain.RoomFilter, order domain.RoomOrder) ([]domain.Room, error) {
	where, filterArgs := roomFilterClause(filter, 3)
	query := freeRoomsQuery
	if where != "" {
		query += ` AND ` + where
	}
	query += ` ORDER BY ` + roomOrderClause(order, "r")

	args := append([]any{
		interval.Start.UTC().Truncate(time.Microsecond),
		interval.End.UTC().Truncate(time.Microsecond),
	}, filterArgs...)
	rows, err := a.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

var _ AvailabilityIndex = (*PGAvailabilityIndex)(nil)
