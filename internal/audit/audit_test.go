package audit

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/kafka"
	"github.com/Domenick1991/roombooking/internal/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Append(ctx context.Context, entry domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func createdEvent(id uuid.UUID) kafka.BookingEvent {
	return kafka.BookingEvent{
		Type:       kafka.EventBookingCreated,
		BookingID:  id.String(),
		RoomID:     4,
		UserID:     7,
		ActorID:    7,
		DateStart:  time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC),
		DateEnd:    time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC),
		OccurredAt: time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecorder_Record(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(zerolog.New(&buf))
	id := uuid.New()

	require.NoError(t, r.Record(context.Background(), createdEvent(id)))
	assert.Contains(t, buf.String(), `"booking_id":"`+id.String()+`"`)
	assert.Contains(t, buf.String(), `"room_id":4`)

	buf.Reset()
	require.NoError(t, r.Record(context.Background(), kafka.BookingEvent{Type: "booking_teleported"}))
	assert.Contains(t, buf.String(), "unknown booking event type")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Record(ctx, kafka.BookingEvent{Type: kafka.EventBookingDeleted}), context.Canceled)
}

func TestRecorder_PersistsEntry(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	id := uuid.New()
	event := createdEvent(id)
	store.On("Append", ctx, domain.AuditEntry{
		EventType:  kafka.EventBookingCreated,
		BookingID:  id,
		RoomID:     4,
		UserID:     7,
		ActorID:    7,
		DateStart:  event.DateStart,
		DateEnd:    event.DateEnd,
		OccurredAt: event.OccurredAt,
	}).Return(nil).Once()

	before := testutil.ToFloat64(metrics.AuditEventsTotal.WithLabelValues(kafka.EventBookingCreated))
	require.NoError(t, NewRecorder(zerolog.Nop(), WithStore(store)).Record(ctx, event))

	store.AssertExpectations(t)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.AuditEventsTotal.WithLabelValues(kafka.EventBookingCreated)))
}

func TestRecorder_SkipsInvalidBookingID(t *testing.T) {
	var buf bytes.Buffer
	store := new(MockStore)
	r := NewRecorder(zerolog.New(&buf), WithStore(store))

	require.NoError(t, r.Record(context.Background(), kafka.BookingEvent{Type: kafka.EventBookingDeleted, BookingID: "b-1"}))
	assert.Contains(t, buf.String(), "without a valid booking id")
	store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRecorder_StoreFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	down := errors.New("connection refused")
	store.On("Append", ctx, mock.Anything).Return(down).Twice()
	store.On("Append", ctx, mock.Anything).Return(nil).Once()

	handle := WithRetry(3, time.Millisecond, NewRecorder(zerolog.Nop(), WithStore(store)).Record)
	require.NoError(t, handle(ctx, createdEvent(uuid.New())))
	store.AssertNumberOfCalls(t, "Append", 3)
}

func TestRecorder_StoreFailureExhaustsRetries(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	down := errors.New("connection refused")
	store.On("Append", ctx, mock.Anything).Return(down)

	handle := WithRetry(2, time.Millisecond, NewRecorder(zerolog.Nop(), WithStore(store)).Record)
	err := handle(ctx, createdEvent(uuid.New()))
	assert.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), "after 2 attempts")
	store.AssertNumberOfCalls(t, "Append", 2)
}

func TestWithRetry(t *testing.T) {
	calls := 0
	flaky := func(context.Context, kafka.BookingEvent) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}
	require.NoError(t, WithRetry(3, time.Millisecond, flaky)(context.Background(), kafka.BookingEvent{}))
	assert.Equal(t, 3, calls)

	calls = 0
	boom := errors.New("boom")
	err := WithRetry(2, time.Millisecond, func(context.Context, kafka.BookingEvent) error {
		calls++
		return boom
	})(context.Background(), kafka.BookingEvent{BookingID: "x"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
