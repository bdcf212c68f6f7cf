package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslatePGError(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "exclusion violation is a booking conflict",
			err:  &pgconn.PgError{Code: pgExclusionViolation, ConstraintName: constraintBookingExclusion},
			want: domain.ErrBookingConflict,
		},
		{
			name: "wrapped exclusion violation",
			err:  fmt.Errorf("commit: %w", &pgconn.PgError{Code: pgExclusionViolation}),
			want: domain.ErrBookingConflict,
		},
		{
			name: "room foreign key",
			err:  &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: constraintBookingRoomFK},
			want: domain.ErrRoomNotFound,
		},
		{
			name: "user foreign key",
			err:  &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: constraintBookingUserFK},
			want: domain.ErrUserNotFound,
		},
		{
			name: "interval check",
			err:  &pgconn.PgError{Code: pgCheckViolation, ConstraintName: constraintBookingInterval},
			want: domain.ErrInvalidInterval,
		},
		{
			name: "duplicate room name",
			err:  &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraintRoomName},
			want: domain.ErrRoomNameTaken,
		},
		{
			name: "duplicate email",
			err:  &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraintUserEmail},
			want: domain.ErrUserExists,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, translatePGError(tc.err))
		})
	}
}

func TestTranslatePGError_PassThrough(t *testing.T) {
	plain := errors.New("connection refused")
	assert.Same(t, plain, translatePGError(plain))

	other := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(other), translatePGError(other))

	check := translatePGError(&pgconn.PgError{Code: pgCheckViolation, ConstraintName: "rooms_capacity_check"})
	assert.ErrorIs(t, check, domain.ErrValidation)
}

func TestRoomFilterClause(t *testing.T) {
	minPrice, capacity := int64(100), 2
	where, args := roomFilterClause(domain.RoomFilter{MinPriceCents: &minPrice, MinCapacity: &capacity}, 1)
	assert.Equal(t, "price_cents >= $1 AND capacity >= $2", where)
	assert.Equal(t, []any{int64(100), 2}, args)

	where, args = roomFilterClause(domain.RoomFilter{}, 1)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestRoomOrderClause(t *testing.T) {
	assert.Equal(t, "price_cents ASC, id ASC", roomOrderClause(domain.DefaultRoomOrder, ""))
	assert.Equal(t, "r.capacity DESC, r.id ASC", roomOrderClause(domain.RoomOrder{Field: domain.RoomOrderCapacity, Desc: true}, "r"))
}

func TestSchemaDeclaresExclusionConstraint(t *testing.T) {
	schema := Schema()
	assert.True(t, strings.Contains(schema, "EXCLUDE USING gist"))
	assert.Contains(t, schema, constraintBookingExclusion)
	assert.Contains(t, schema, "tstzrange(date_start, date_end, '[)') WITH &&")
	assert.Contains(t, schema, "ON DELETE CASCADE")
}
