package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"lead-system/pkg/constants"
)

type PendingChangeStatus string

const (
	PendingStatusPending  PendingChangeStatus = "PENDING"
	PendingStatusApproved PendingChangeStatus = "APPROVED"
	PendingStatusRejected PendingChangeStatus = "REJECTED"
)

// PendingChange is a proposed transition (compte-rendu) submitted by a
// commercial and held for an administrator's decision. At most one PENDING
// row may exist per record. ProposedFields keeps the raw submitted form
// values so approval re-runs the full payload validation against data that
// may have changed since submission.
type PendingChange struct {
	ID             uuid.UUID             `db:"id"`
	RecordID       uint64                `db:"record_id"`
	ProposerID     uint64                `db:"proposer_id"`
	TargetState    constants.RecordState `db:"target_state"`
	TargetSubState null.String           `db:"target_sub_state"`
	ProposedFields map[string]string     `db:"proposed_fields"`
	FreeComment    null.String            `db:"free_comment"`
	Status         PendingChangeStatus    `db:"status"`
	AdminComment   null.String            `db:"admin_comment"`
	DecidedBy      null.Uint64            `db:"decided_by"`
	DecidedAt      null.Time              `db:"decided_at"`
	CreatedAt      time.Time              `db:"created_at"`
}

func (p *PendingChange) IsDecided() bool {
	return p.Status != PendingStatusPending
}
