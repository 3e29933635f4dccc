package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

type RescheduleStatus string

const (
	RescheduleStatusPending      RescheduleStatus = "PENDING"
	RescheduleStatusAcknowledged RescheduleStatus = "ACKNOWLEDGED"
)

// RescheduleRequest (décalage) proposes shifting an existing confirmed
// appointment. It is advisory: routed to a human recipient, never
// auto-applied. NewTime is always OriginalTime + OffsetMinutes.
type RescheduleRequest struct {
	ID             uuid.UUID        `db:"id"`
	RecordID       uint64           `db:"record_id"`
	ProposerID     uint64           `db:"proposer_id"`
	RecipientID    uint64           `db:"recipient_id"`
	OriginalTime   time.Time        `db:"original_time"`
	OffsetMinutes  int              `db:"offset_minutes"`
	NewTime        time.Time        `db:"new_time"`
	Message        string           `db:"message"`
	Status         RescheduleStatus `db:"status"`
	AcknowledgedAt null.Time        `db:"acknowledged_at"`
	CreatedAt      time.Time        `db:"created_at"`
}
