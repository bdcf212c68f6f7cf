package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingRepository is the booking ledger. Insert must never let two bookings of the
// same room overlap, whatever the interleaving of concurrent callers.
type BookingRepository interface {
	Insert(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BookingWithRoom, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.BookingWithRoom, error)
	ListAll(ctx context.Context) ([]domain.BookingWithRoom, error)
}

// PGBookingRepository relies on the exclude_overlapping_booking constraint: the check and
// the insert are one statement, and a conflicting concurrent insert waits on the GiST index
// entry until the first transaction commits or rolls back.
type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingWithRoomQuery = `SELECT b.id, b.room_id, b.user_id, b.date_start, b.date_end, b.created_at,
		r.id, r.name, r.price_cents, r.capacity, r.created_at, r.updated_at
	FROM bookings b
	JOIN rooms r ON r.id = b.room_id`

func (r *PGBookingRepository) Insert(ctx context.Context, booking *domain.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.DateStart = booking.DateStart.UTC().Truncate(time.Microsecond)
	booking.DateEnd = booking.DateEnd.UTC().Truncate(time.Microsecond)

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, room_id, user_id, date_start, date_end)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`, booking.ID, booking.RoomID, booking.UserID, booking.DateStart, booking.DateEnd).
		Scan(&booking.CreatedAt); err != nil {
		return translatePGError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return translatePGError(err)
	}
	return nil
}

func (r *PGBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BookingWithRoom, error) {
	row := r.db.QueryRow(ctx, bookingWithRoomQuery+` WHERE b.id=$1`, id)
	b, err := scanBookingWithRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BookingWithRoom, error) {
	rows, err := r.db.Query(ctx, bookingWithRoomQuery+` WHERE b.user_id=$1 ORDER BY b.date_start, b.id`, userID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListAll(ctx context.Context) ([]domain.BookingWithRoom, error) {
	rows, err := r.db.Query(ctx, bookingWithRoomQuery+` ORDER BY b.room_id, b.date_start`)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func scanBookingWithRoom(row pgx.Row) (*domain.BookingWithRoom, error) {
	var b domain.BookingWithRoom
	if err := row.Scan(&b.ID, &b.RoomID, &b.UserID, &b.DateStart, &b.DateEnd, &b.CreatedAt,
		&b.Room.ID, &b.Room.Name, &b.Room.PriceCents, &b.Room.Capacity, &b.Room.CreatedAt, &b.Room.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.BookingWithRoom, error) {
	defer rows.Close()

	bookings := make([]domain.BookingWithRoom, 0)
	for rows.Next() {
		b, err := scanBookingWithRoom(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
