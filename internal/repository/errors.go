package repository

import (
	"errors"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgExclusionViolation  = "23P01"
)

const (
	constraintRoomName         = "rooms_name_key"
	constraintBookingRoomFK    = "bookings_room_id_fkey"
	constraintBookingUserFK    = "bookings_user_id_fkey"
	constraintBookingInterval  = "bookings_interval_check"
	constraintBookingExclusion = "exclude_overlapping_booking"
	constraintUsername         = "users_username_key"
	constraintUserEmail        = "users_email_key"
)

// translatePGError maps constraint violations to domain errors and returns any other error unchanged.
func translatePGError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgExclusionViolation:
		return domain.ErrBookingConflict
	case pgForeignKeyViolation:
		switch pgErr.ConstraintName {
		case constraintBookingRoomFK:
			return domain.ErrRoomNotFound
		case constraintBookingUserFK:
			return domain.ErrUserNotFound
		}
	case pgCheckViolation:
		if pgErr.ConstraintName == constraintBookingInterval {
			return domain.ErrInvalidInterval
		}
		return domain.NewValidationError("value violates " + pgErr.ConstraintName)
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintRoomName:
			return domain.ErrRoomNameTaken
		case constraintUsername, constraintUserEmail:
			return domain.ErrUserExists
		}
	}
	return err
}
