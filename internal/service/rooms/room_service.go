package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/metrics"
	"github.com/Domenick1991/roombooking/internal/repository"
	"github.com/rs/zerolog"
)

type RoomUseCase interface {
	Create(ctx context.Context, input CreateRoomInput) (*domain.Room, error)
	List(ctx context.Context, filter domain.RoomFilter, order domain.RoomOrder) ([]domain.Room, error)
	Get(ctx context.Context, id int64) (*domain.Room, error)
	Update(ctx context.Context, id int64, upd domain.RoomUpdate) (*domain.Room, error)
	Delete(ctx context.Context, id int64) error
}

// Cache is the subset of cache.RedisCache the room registry needs.
type Cache interface {
	GetRooms(ctx context.Context, query string) ([]domain.Room, int64, error)
	SetRooms(ctx context.Context, gen int64, query string, rooms []domain.Room) error
	InvalidateRooms(ctx context.Context) error
}

type CreateRoomInput struct {
	Name       string
	PriceCents int64
	Capacity   int
}

type RoomService struct {
	repo  repository.RoomRepository
	cache Cache
	log   zerolog.Logger
}

type RoomServiceOption func(*RoomService)

func WithCache(cache Cache) RoomServiceOption {
	return func(s *RoomService) {
		s.cache = cache
	}
}

func WithLogger(log zerolog.Logger) RoomServiceOption {
	return func(s *RoomService) {
		s.log = log
	}
}

func NewRoomService(repo repository.RoomRepository, opts ...RoomServiceOption) *RoomService {
	s := &RoomService{repo: repo, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RoomService) Create(ctx context.Context, input CreateRoomInput) (*domain.Room, error) {
	room := &domain.Room{
		Name:       strings.TrimSpace(input.Name),
		PriceCents: input.PriceCents,
		Capacity:   input.Capacity,
	}
	if err := room.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, s.storeError("create_room", err)
	}
	s.invalidate(ctx)
	return room, nil
}

func (s *RoomService) List(ctx context.Context, filter domain.RoomFilter, order domain.RoomOrder) ([]domain.Room, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query := cacheQuery(filter, order)
	var (
		gen      int64
		fillable bool
	)
	if s.cache != nil {
		cached, g, err := s.cache.GetRooms(ctx, query)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("rooms cache read failed")
		case cached != nil:
			metrics.RoomsCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			gen, fillable = g, true
		}
		metrics.RoomsCacheTotal.WithLabelValues("miss").Inc()
	}

	rooms, err := s.repo.List(ctx, filter, order)
	if err != nil {
		return nil, s.storeError("list_rooms", err)
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	// The listing is stored under the generation of the miss; a concurrent
	// invalidation makes it unreachable instead of serving it as fresh.
	if fillable {
		if err := s.cache.SetRooms(ctx, gen, query, rooms); err != nil {
			s.log.Warn().Err(err).Msg("rooms cache write failed")
		}
	}
	return rooms, nil
}

func (s *RoomService) Get(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("get_room", err)
	}
	return room, nil
}

func (s *RoomService) Update(ctx context.Context, id int64, upd domain.RoomUpdate) (*domain.Room, error) {
	if upd.PriceCents == nil && upd.Capacity == nil {
		return nil, domain.NewValidationError("nothing to update")
	}
	if upd.PriceCents != nil && *upd.PriceCents < domain.MinPriceCents {
		return nil, domain.NewValidationError("price per day must be at least 0.01")
	}
	if upd.Capacity != nil && *upd.Capacity < domain.MinCapacity {
		return nil, domain.NewValidationError("capacity must be at least 1")
	}

	room, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, s.storeError("update_room", err)
	}
	s.invalidate(ctx)
	return room, nil
}

func (s *RoomService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeError("delete_room", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *RoomService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRooms(ctx); err != nil {
		s.log.Warn().Err(err).Msg("rooms cache invalidation failed")
	}
}

// storeError passes classified errors through and hides everything else behind ErrUnavailable.
func (s *RoomService) storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrConflict) {
		return err
	}
	metrics.StoreErrorsTotal.WithLabelValues(op).Inc()
	s.log.Error().Err(err).Str("op", op).Msg("room store failure")
	return &domain.UnavailableError{Op: op, Err: err}
}

func cacheQuery(f domain.RoomFilter, o domain.RoomOrder) string {
	part := func(v *int64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprint(*v)
	}
	capacity := "-"
	if f.MinCapacity != nil {
		capacity = fmt.Sprint(*f.MinCapacity)
	}
	dir := "asc"
	if o.Desc {
		dir = "desc"
	}
	return fmt.Sprintf("min=%s:max=%s:cap=%s:order=%s.%s", part(f.MinPriceCents), part(f.MaxPriceCents), capacity, o.Field, dir)
}

var _ RoomUseCase = (*RoomService)(nil)
