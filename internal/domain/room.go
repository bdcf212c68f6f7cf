package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	MinPriceCents  int64 = 1
	MinCapacity          = 1
	MaxRoomNameLen       = 100
)

type Room struct {
	ID         int64
	Name       string
	PriceCents int64
	Capacity   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the room attributes an admin is allowed to set.
func (r Room) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return NewValidationError("room name is required")
	}
	if len(name) > MaxRoomNameLen {
		return NewValidationError(fmt.Sprintf("room name must be at most %d characters", MaxRoomNameLen))
	}
	if r.PriceCents < MinPriceCents {
		return NewValidationError("price per day must be at least 0.01")
	}
	if r.Capacity < MinCapacity {
		return NewValidationError("capacity must be at least 1")
	}
	return nil
}

type RoomOrderField string

const (
	RoomOrderPrice    RoomOrderField = "price"
	RoomOrderCapacity RoomOrderField = "capacity"
	RoomOrderID       RoomOrderField = "id"
)

type RoomOrder struct {
	Field RoomOrderField
	Desc  bool
}

// DefaultRoomOrder is price ascending.
var DefaultRoomOrder = RoomOrder{Field: RoomOrderPrice}

// ParseRoomOrder accepts price_per_day, -price_per_day, capacity, -capacity and id.
// An empty value yields DefaultRoomOrder.
func ParseRoomOrder(s string) (RoomOrder, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultRoomOrder, nil
	}
	var o RoomOrder
	if strings.HasPrefix(s, "-") {
		o.Desc = true
		s = s[1:]
	}
	switch s {
	case "price_per_day", "price":
		o.Field = RoomOrderPrice
	case "capacity":
		o.Field = RoomOrderCapacity
	case "id":
		o.Field = RoomOrderID
	default:
		return RoomOrder{}, NewValidationError("unsupported ordering: " + s)
	}
	return o, nil
}

type RoomFilter struct {
	MinPriceCents *int64
	MaxPriceCents *int64
	MinCapacity   *int
}

func (f RoomFilter) Validate() error {
	if f.MinPriceCents != nil && *f.MinPriceCents < 0 {
		return NewValidationError("min_price must not be negative")
	}
	if f.MaxPriceCents != nil && *f.MaxPriceCents < 0 {
		return NewValidationError("max_price must not be negative")
	}
	if f.MinPriceCents != nil && f.MaxPriceCents != nil && *f.MinPriceCents > *f.MaxPriceCents {
		return NewValidationError("min_price must not exceed max_price")
	}
	if f.MinCapacity != nil && *f.MinCapacity < 0 {
		return NewValidationError("capacity must not be negative")
	}
	return nil
}

func (f RoomFilter) Match(r Room) bool {
	if f.MinPriceCents != nil && r.PriceCents < *f.MinPriceCents {
		return false
	}
	if f.MaxPriceCents != nil && r.PriceCents > *f.MaxPriceCents {
		return false
	}
	if f.MinCapacity != nil && r.Capacity < *f.MinCapacity {
		return false
	}
	return true
}

type RoomUpdate struct {
	PriceCents *int64
	Capacity   *int
}

// FormatPrice renders cents as a decimal string with two fraction digits.
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ParsePrice converts a decimal string such as "100", "99.9" or "100.00" to cents.
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, NewValidationError("price is empty")
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) {
		return 0, NewValidationError("invalid price: " + s)
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > maxPriceUnits {
		return 0, NewValidationError("invalid price: " + s)
	}
	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, NewValidationError("price must have at most two decimal places")
		}
		if !isDigits(frac) {
			return 0, NewValidationError("invalid price: " + s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		c, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, NewValidationError("invalid price: " + s)
		}
		cents = c
	}
	return units*100 + cents, nil
}

// maxPriceUnits keeps units*100+99 within int64.
const maxPriceUnits = (math.MaxInt64 - 99) / 100

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// SortRooms orders rooms by the requested key, breaking ties by id.
func SortRooms(rooms []Room, order RoomOrder) {
	key := func(r Room) int64 {
		switch order.Field {
		case RoomOrderCapacity:
			return int64(r.Capacity)
		case RoomOrderID:
			return r.ID
		default:
			return r.PriceCents
		}
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		ki, kj := key(rooms[i]), key(rooms[j])
		if ki != kj {
			if order.Desc {
				return ki > kj
			}
			return ki < kj
		}
		return rooms[i].ID < rooms[j].ID
	})
}
