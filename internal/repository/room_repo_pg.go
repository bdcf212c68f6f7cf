package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	List(ctx context.Context, filter domain.RoomFilter, order domain.RoomOrder) ([]domain.Room, error)
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	Update(ctx context.Context, id int64, upd domain.RoomUpdate) (*domain.Room, error)
	Delete(ctx context.Context, id int64) error
}

type PGRoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) RoomRepository {
	return &PGRoomRepository{db: db}
}

const roomColumns = `id, name, price_cents, capacity, created_at, updated_at`

func (r *PGRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	err := r.db.QueryRow(ctx, `INSERT INTO rooms (name, price_cents, capacity) VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`, strings.TrimSpace(room.Name), room.PriceCents, room.Capacity).
		Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return translatePGError(err)
	}
	room.Name = strings.TrimSpace(room.Name)
	return nil
}

func (r *PGRoomRepository) List(ctx context.Context, filter domain.RoomFilter, order domain.RoomOrder) ([]domain.Room, error) {
	where, args := roomFilterClause(filter, 1)
	query := `SELECT ` + roomColumns + ` FROM rooms`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY ` + roomOrderClause(order, "")

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

func (r *PGRoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, id)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (r *PGRoomRepository) Update(ctx context.Context, id int64, upd domain.RoomUpdate) (*domain.Room, error) {
	row := r.db.QueryRow(ctx, `UPDATE rooms
		SET price_cents = COALESCE($2, price_cents),
		    capacity = COALESCE($3, capacity),
		    updated_at = now()
		WHERE id=$1
		RETURNING `+roomColumns, id, upd.PriceCents, upd.Capacity)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, translatePGError(err)
	}
	return room, nil
}

// Delete removes the room together with its bookings (ON DELETE CASCADE).
func (r *PGRoomRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM rooms WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

// roomFilterClause builds the WHERE body for filter with placeholders starting at $next.
func roomFilterClause(filter domain.RoomFilter, next int) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		conds = append(conds, fmt.Sprintf(cond, next))
		args = append(args, arg)
		next++
	}
	if filter.MinPriceCents != nil {
		add("price_cents >= $%d", *filter.MinPriceCents)
	}
	if filter.MaxPriceCents != nil {
		add("price_cents <= $%d", *filter.MaxPriceCents)
	}
	if filter.MinCapacity != nil {
		add("capacity >= $%d", *filter.MinCapacity)
	}
	return strings.Join(conds, " AND "), args
}

// roomOrderClause only emits whitelisted column names.
func roomOrderClause(order domain.RoomOrder, alias string) string {
	col := "price_cents"
	switch order.Field {
	case domain.RoomOrderCapacity:
		col = "capacity"
	case domain.RoomOrderID:
		col = "id"
	}
	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}
	if alias != "" {
		return fmt.Sprintf("%s.%s %s, %s.id ASC", alias, col, dir, alias)
	}
	return fmt.Sprintf("%s %s, id ASC", col, dir)
}

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var room domain.Room
	if err := row.Scan(&room.ID, &room.Name, &room.PriceCents, &room.Capacity, &room.CreatedAt, &room.UpdatedAt); err != nil {
		return nil, err
	}
	return &room, nil
}

func collectRooms(rows pgx.Rows) ([]domain.Room, error) {
	defer rows.Close()

	rooms := make([]domain.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *room)
	}
	return rooms, rows.Err()
}

var _ RoomRepository = (*PGRoomRepository)(nil)
