package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"lead-system/pkg/constants"
)

// Record is a sales lead under management. Assigned users are weak references
// (ids only); commercials and confirmers are bounded slots.
type Record struct {
	ID          uint64                 `db:"id"`
	State       constants.RecordState  `db:"state"`
	SubState    null.String            `db:"sub_state"`
	CentreID    uint64                 `db:"centre_id"`
	ProductType constants.ProductType  `db:"product_type"`
	ClientName  string                 `db:"client_name"`
	ClientPhone string                 `db:"client_phone"`

	AgentID       null.Uint64 `db:"agent_id"`
	CommercialIDs []int64     `db:"commercial_ids"`
	ConfirmerIDs  []int64     `db:"confirmer_ids"`

	AppointmentAt    null.Time              `db:"appointment_at"`
	IsUrgent         bool                   `db:"is_urgent"`
	StructuredFields map[string]interface{} `db:"structured_fields"`

	Version   int64     `db:"version"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	DeletedAt null.Time `db:"deleted_at"`
}

// IsAssignedCommercial reports whether userID holds one of the record's
// commercial slots.
func (r *Record) IsAssignedCommercial(userID uint64) bool {
	for _, id := range r.CommercialIDs {
		if uint64(id) == userID {
			return true
		}
	}
	return false
}

// FirstConfirmer returns the primary confirmer, if any.
func (r *Record) FirstConfirmer() (uint64, bool) {
	if len(r.ConfirmerIDs) == 0 {
		return 0, false
	}
	return uint64(r.ConfirmerIDs[0]), true
}

// RecordHistory is one append-only transition snapshot. The record's current
// state must always equal the last entry.
type RecordHistory struct {
	ID        uint64                 `db:"id"`
	RecordID  uint64                 `db:"record_id"`
	ActorID   uint64                 `db:"actor_id"`
	State     constants.RecordState  `db:"state"`
	SubState  null.String            `db:"sub_state"`
	Payload   map[string]interface{} `db:"payload"`
	CreatedAt time.Time              `db:"created_at"`
}
