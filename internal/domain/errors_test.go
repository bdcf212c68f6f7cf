package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClasses(t *testing.T) {
	assert.ErrorIs(t, ErrBookingConflict, ErrConflict)
	assert.ErrorIs(t, fmt.Errorf("insert: %w", ErrBookingConflict), ErrConflict)
	assert.ErrorIs(t, ErrRoomNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrBookingNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrInvalidInterval, ErrValidation)
	assert.False(t, errors.Is(ErrBookingConflict, ErrValidation))

	unavailable := &UnavailableError{Op: "insert booking", Err: errors.New("connection reset")}
	assert.ErrorIs(t, unavailable, ErrUnavailable)
	assert.Equal(t, "insert booking: connection reset", unavailable.Error())
}

func TestCanAccess(t *testing.T) {
	assert.True(t, CanAccess(Actor{UserID: 1}, 1))
	assert.False(t, CanAccess(Actor{UserID: 2}, 1))
	assert.True(t, CanAccess(Actor{UserID: 2, IsAdmin: true}, 1))
}
