// Package audit records booking events consumed from Kafka.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/kafka"
	"github.com/Domenick1991/roombooking/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store persists audit entries. repository.PGAuditLog implements it.
type Store interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
}

type Recorder struct {
	store Store
	log   zerolog.Logger
}

type RecorderOption func(*Recorder)

// WithStore makes Record persist every event. Without a store events are only logged.
func WithStore(store Store) RecorderOption {
	return func(r *Recorder) {
		r.store = store
	}
}

func NewRecorder(log zerolog.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record persists and logs one event. Events that can never be stored are skipped
// with a warning; a store failure is returned so the caller can retry.
func (r *Recorder) Record(ctx context.Context, event kafka.BookingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch event.Type {
	case kafka.EventBookingCreated, kafka.EventBookingDeleted:
	default:
		r.log.Warn().Str("type", event.Type).Str("booking_id", event.BookingID).Msg("unknown booking event type")
		metrics.AuditEventsTotal.WithLabelValues("unknown").Inc()
		return nil
	}
	bookingID, err := uuid.Parse(event.BookingID)
	if err != nil {
		r.log.Warn().Str("type", event.Type).Str("booking_id", event.BookingID).Msg("booking event without a valid booking id")
		metrics.AuditEventsTotal.WithLabelValues("invalid").Inc()
		return nil
	}

	if r.store != nil {
		if err := r.store.Append(ctx, entryFromEvent(bookingID, event)); err != nil {
			return fmt.Errorf("append audit entry: %w", err)
		}
	}

	metrics.AuditEventsTotal.WithLabelValues(event.Type).Inc()
	r.log.Info().
		Str("type", event.Type).
		Str("booking_id", event.BookingID).
		Int64("room_id", event.RoomID).
		Int64("user_id", event.UserID).
		Int64("actor_id", event.ActorID).
		Time("date_start", event.DateStart).
		Time("date_end", event.DateEnd).
		Time("occurred_at", event.OccurredAt).
		Msg("booking event")
	return nil
}

func entryFromEvent(bookingID uuid.UUID, event kafka.BookingEvent) domain.AuditEntry {
	return domain.AuditEntry{
		EventType:  event.Type,
		BookingID:  bookingID,
		RoomID:     event.RoomID,
		UserID:     event.UserID,
		ActorID:    event.ActorID,
		DateStart:  event.DateStart,
		DateEnd:    event.DateEnd,
		OccurredAt: event.OccurredAt,
	}
}

// WithRetry calls handle up to attempts times, backing off linearly between tries.
func WithRetry(attempts int, backoff time.Duration, handle func(context.Context, kafka.BookingEvent) error) func(context.Context, kafka.BookingEvent) error {
	if attempts < 1 {
		attempts = 1
	}
	return func(ctx context.Context, event kafka.BookingEvent) error {
		var err error
		for i := 0; i < attempts; i++ {
			if err = handle(ctx, event); err == nil {
				return nil
			}
			if i == attempts-1 {
				break
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff * time.Duration(i+1)):
			}
		}
		return fmt.Errorf("booking event %s after %d attempts: %w", event.BookingID, attempts, err)
	}
}
