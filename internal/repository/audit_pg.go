package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog stores booking events. Appending the same event twice is a no-op, so
// a redelivered Kafka message does not duplicate history.
type AuditLog interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
}

type PGAuditLog struct {
	db *pgxpool.Pool
}

func NewAuditLog(db *pgxpool.Pool) AuditLog {
	return &PGAuditLog{db: db}
}

func (l *PGAuditLog) Append(ctx context.Context, entry domain.AuditEntry) error {
	_, err := l.db.Exec(ctx, `INSERT INTO booking_audit
		(event_type, booking_id, room_id, user_id, actor_id, date_start, date_end, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT booking_audit_event_key DO NOTHING`,
		entry.EventType, entry.BookingID, entry.RoomID, entry.UserID, entry.ActorID,
		entry.DateStart.UTC().Truncate(time.Microsecond),
		entry.DateEnd.UTC().Truncate(time.Microsecond),
		entry.OccurredAt.UTC().Truncate(time.Microsecond))
	return err
}

// ListByBooking returns the recorded history of one booking, oldest first.
func (l *PGAuditLog) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.AuditEntry, error) {
	rows, err := l.db.Query(ctx, `SELECT event_type, booking_id, room_id, user_id, actor_id, date_start, date_end, occurred_at
		FROM booking_audit WHERE booking_id=$1 ORDER BY occurred_at, id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.EventType, &e.BookingID, &e.RoomID, &e.UserID, &e.ActorID, &e.DateStart, &e.DateEnd, &e.OccurredAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ AuditLog = (*PGAuditLog)(nil)
