package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomValidate(t *testing.T) {
	valid := Room{Name: "Double", PriceCents: 10000, Capacity: 2}
	assert.NoError(t, valid.Validate())

	testCases := []struct {
		name string
		room Room
		msg  string
	}{
		{name: "empty name", room: Room{Name: "  ", PriceCents: 1, Capacity: 1}, msg: "room name is required"},
		{name: "zero price", room: Room{Name: "A", PriceCents: 0, Capacity: 1}, msg: "price per day must be at least 0.01"},
		{name: "zero capacity", room: Room{Name: "A", PriceCents: 1, Capacity: 0}, msg: "capacity must be at least 1"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.room.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Equal(t, tc.msg, err.Error())
		})
	}
}

func TestParsePrice(t *testing.T) {
	testCases := map[string]int64{
		"100":    10000,
		"100.00": 10000,
		"99.9":   9990,
		"0.01":   1,
		".5":     50,
	}
	for in, want := range testCases {
		got, err := ParsePrice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "1.234", "-1", "1.", "+1", "1.+5", "1.-5", "1. 5"} {
		_, err := ParsePrice(in)
		assert.ErrorIs(t, err, ErrValidation, in)
	}
}

func TestParsePrice_Overflow(t *testing.T) {
	testCases := []string{
		"92233720368547759",
		"184467440737095517.00",
		"9223372036854775807",
		"99999999999999999999",
	}
	for _, in := range testCases {
		t.Run(in, func(t *testing.T) {
			cents, err := ParsePrice(in)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, cents)
		})
	}

	cents, err := ParsePrice("92233720368547757.99")
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775799), cents)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "100.00", FormatPrice(10000))
	assert.Equal(t, "0.01", FormatPrice(1))
	assert.Equal(t, "3500.50", FormatPrice(350050))
}

func TestParseRoomOrder(t *testing.T) {
	o, err := ParseRoomOrder("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRoomOrder, o)

	o, err = ParseRoomOrder("-price_per_day")
	require.NoError(t, err)
	assert.Equal(t, RoomOrder{Field: RoomOrderPrice, Desc: true}, o)

	o, err = ParseRoomOrder("capacity")
	require.NoError(t, err)
	assert.Equal(t, RoomOrder{Field: RoomOrderCapacity}, o)

	_, err = ParseRoomOrder("name")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRoomFilterMatch(t *testing.T) {
	minPrice, maxPrice, capacity := int64(5000), int64(10000), 2
	f := RoomFilter{MinPriceCents: &minPrice, MaxPriceCents: &maxPrice, MinCapacity: &capacity}

	assert.True(t, f.Match(Room{PriceCents: 10000, Capacity: 2}))
	assert.False(t, f.Match(Room{PriceCents: 4999, Capacity: 2}))
	assert.False(t, f.Match(Room{PriceCents: 10001, Capacity: 3}))
	assert.False(t, f.Match(Room{PriceCents: 6000, Capacity: 1}))
	assert.True(t, RoomFilter{}.Match(Room{}))
}

func TestSortRooms(t *testing.T) {
	rooms := []Room{
		{ID: 3, PriceCents: 15000, Capacity: 3},
		{ID: 1, PriceCents: 10000, Capacity: 2},
		{ID: 2, PriceCents: 5000, Capacity: 2},
	}

	SortRooms(rooms, DefaultRoomOrder)
	assert.Equal(t, []int64{2, 1, 3}, roomIDs(rooms))

	SortRooms(rooms, RoomOrder{Field: RoomOrderCapacity, Desc: true})
	assert.Equal(t, []int64{3, 1, 2}, roomIDs(rooms))

	SortRooms(rooms, RoomOrder{Field: RoomOrderCapacity})
	assert.Equal(t, []int64{1, 2, 3}, roomIDs(rooms), "ties broken by id")
}

func roomIDs(rooms []Room) []int64 {
	ids := make([]int64, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestRoomFilterValidate(t *testing.T) {
	neg, low, high := int64(-1), int64(50), int64(100)
	negCapacity := -1
	assert.NoError(t, RoomFilter{}.Validate())
	assert.NoError(t, RoomFilter{MinPriceCents: &low, MaxPriceCents: &high}.Validate())

	testCases := []struct {
		name   string
		filter RoomFilter
		msg    string
	}{
		{name: "negative min", filter: RoomFilter{MinPriceCents: &neg}, msg: "min_price must not be negative"},
		{name: "negative max", filter: RoomFilter{MaxPriceCents: &neg}, msg: "max_price must not be negative"},
		{name: "min above max", filter: RoomFilter{MinPriceCents: &high, MaxPriceCents: &low}, msg: "min_price must not exceed max_price"},
		{name: "negative capacity", filter: RoomFilter{MinCapacity: &negCapacity}, msg: "capacity must not be negative"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filter.Validate()
			assert.ErrorIs(t, err, ErrValidation)
			assert.EqualError(t, err, tc.msg)
		})
	}
}
