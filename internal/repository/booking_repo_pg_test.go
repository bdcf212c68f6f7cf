package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewRoomRepositories(t *testing.T) {
	pool := &pgxpool.Pool{}
	assert.NotNil(t, NewRoomRepository(pool))
	assert.NotNil(t, NewAvailabilityIndex(pool))
	assert.NotNil(t, NewUserRepository(pool))
}
