package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one booking lifecycle event as persisted by the audit worker.
type AuditEntry struct {
	EventType  string
	BookingID  uuid.UUID
	RoomID     int64
	UserID     int64
	ActorID    int64
	DateStart  time.Time
	DateEnd    time.Time
	OccurredAt time.Time
}
