package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/roombooking/config"
	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/kafka"
	"github.com/Domenick1991/roombooking/internal/metrics"
	"github.com/Domenick1991/roombooking/internal/repository"
	"github.com/Domenick1991/roombooking/pkg/logger"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, actor domain.Actor, input CreateBookingInput) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.DeleteConfirmation, error)
	GetBooking(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.BookingWithRoom, error)
	ListMyBookings(ctx context.Context, actor domain.Actor) ([]domain.BookingWithRoom, error)
	ListAllBookings(ctx context.Context, actor domain.Actor) ([]domain.BookingWithRoom, error)
	SearchFreeRooms(ctx context.Context, input SearchInput) ([]domain.Room, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	RoomID    int64
	DateStart time.Time
	DateEnd   time.Time
}

// SearchInput combines the booking window with the room listing filters.
type SearchInput struct {
	DateStart time.Time
	DateEnd   time.Time
	Filter    domain.RoomFilter
	Order     domain.RoomOrder
}

const publishTimeout = 5 * time.Second

type BookingService struct {
	bookings        repository.BookingRepository
	availability    repository.AvailabilityIndex
	producer        Producer
	bookingTopic    string
	pastStartPolicy string
	now             func() time.Time
}

type BookingServiceOption func(*BookingService)

// WithProducer enables booking events on topic. Publishing is best effort.
func WithProducer(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = topic
	}
}

// WithPastStartPolicy is config.PastStartAllow or config.PastStartReject.
func WithPastStartPolicy(policy string) BookingServiceOption {
	return func(s *BookingService) {
		s.pastStartPolicy = policy
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	availability repository.AvailabilityIndex,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:        bookings,
		availability:    availability,
		pastStartPolicy: config.PastStartAllow,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, actor domain.Actor, input CreateBookingInput) (*domain.Booking, error) {
	if err := s.validateWindow(input.DateStart, input.DateEnd); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		RoomID:    input.RoomID,
		UserID:    actor.UserID,
		DateStart: input.DateStart,
		DateEnd:   input.DateEnd,
	}
	if err := s.bookings.Insert(ctx, booking); err != nil {
		switch {
		case errors.Is(err, domain.ErrBookingConflict):
			metrics.BookingConflictsTotal.Inc()
			return nil, domain.ErrBookingConflict
		case errors.Is(err, domain.ErrRoomNotFound):
			return nil, domain.NewValidationError("unknown room")
		}
		return nil, s.storeError(ctx, "create_booking", err)
	}

	metrics.BookingsCreatedTotal.Inc()
	s.publish(ctx, kafka.EventBookingCreated, *booking, actor)
	return booking, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.DeleteConfirmation, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError(ctx, "delete_booking", err)
	}
	if !domain.CanAccess(actor, current.UserID) {
		return nil, domain.ErrForbidden
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return nil, s.storeError(ctx, "delete_booking", err)
	}

	metrics.BookingsDeletedTotal.Inc()
	s.publish(ctx, kafka.EventBookingDeleted, current.Booking, actor)
	return &domain.DeleteConfirmation{
		ID:     id,
		Detail: fmt.Sprintf("booking %s deleted", id),
	}, nil
}

func (s *BookingService) GetBooking(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.BookingWithRoom, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError(ctx, "get_booking", err)
	}
	if !domain.CanAccess(actor, booking.UserID) {
		return nil, domain.ErrForbidden
	}
	return booking, nil
}

func (s *BookingService) ListMyBookings(ctx context.Context, actor domain.Actor) ([]domain.BookingWithRoom, error) {
	bookings, err := s.bookings.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, s.storeError(ctx, "list_bookings", err)
	}
	if bookings == nil {
		bookings = []domain.BookingWithRoom{}
	}
	return bookings, nil
}

func (s *BookingService) ListAllBookings(ctx context.Context, actor domain.Actor) ([]domain.BookingWithRoom, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrForbidden
	}
	bookings, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, s.storeError(ctx, "list_all_bookings", err)
	}
	if bookings == nil {
		bookings = []domain.BookingWithRoom{}
	}
	return bookings, nil
}

// SearchFreeRooms lists rooms with no booking overlapping the window. The result is a
// snapshot: a later CreateBooking may still conflict.
func (s *BookingService) SearchFreeRooms(ctx context.Context, input SearchInput) ([]domain.Room, error) {
	if err := s.validateWindow(input.DateStart, input.DateEnd); err != nil {
		return nil, err
	}
	if err := input.Filter.Validate(); err != nil {
		return nil, err
	}

	order := input.Order
	if order.Field == "" {
		order = domain.DefaultRoomOrder
	}
	rooms, err := s.availability.FindFree(ctx, domain.NewInterval(input.DateStart, input.DateEnd), input.Filter, order)
	if err != nil {
		return nil, s.storeError(ctx, "search_free_rooms", err)
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	return rooms, nil
}

func (s *BookingService) validateWindow(start, end time.Time) error {
	if !domain.ValidInterval(start, end) {
		return domain.ErrInvalidInterval
	}
	now := s.now()
	if end.Before(now) {
		return domain.NewValidationError("end date cannot be in the past")
	}
	if s.pastStartPolicy == config.PastStartReject && start.Before(now) {
		return domain.NewValidationError("start date cannot be in the past")
	}
	return nil
}

// storeError passes classified errors through and hides everything else behind ErrUnavailable.
func (s *BookingService) storeError(ctx context.Context, op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrForbidden) {
		return err
	}
	metrics.StoreErrorsTotal.WithLabelValues(op).Inc()
	log := logger.FromContext(ctx)
	log.Error().Err(err).Str("op", op).Msg("booking store failure")
	return &domain.UnavailableError{Op: op, Err: err}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking domain.Booking, actor domain.Actor) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, booking, actor.UserID, s.now())

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.producer.Publish(pubCtx, s.bookingTopic, event.Key(), event); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).
			Str("event", eventType).
			Str("booking_id", booking.ID.String()).
			Msg("failed to publish booking event")
	}
}

var _ BookingUseCase = (*BookingService)(nil)
