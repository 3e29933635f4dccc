package dto

type PendingChangeDTO struct {
	ID             string                 `json:"id"`
	RecordToken    string                 `json:"record_token"`
	Proposer       ShortUserDTO           `json:"proposer"`
	TargetState    string                 `json:"target_state"`
	TargetSubState *string                `json:"target_sub_state,omitempty"`
	ProposedFields map[string]string      `json:"proposed_fields"`
	FreeComment    *string                `json:"free_comment,omitempty"`
	Status         string                 `json:"status"`
	AdminComment   *string                `json:"admin_comment,omitempty"`
	DecidedBy      *ShortUserDTO          `json:"decided_by,omitempty"`
	DecidedAt      *string                `json:"decided_at,omitempty"`
	CreatedAt      string                 `json:"created_at"`
}

// EditPendingChangeDTO lets an administrator adjust a proposal while it is
// still pending. Raw fields are re-validated against the target state before
// being stored.
type EditPendingChangeDTO struct {
	TargetState string            `json:"target_state" validate:"required"`
	SubState    string            `json:"sub_state"`
	Fields      map[string]string `json:"fields"`
	FreeComment string            `json:"free_comment"`
}

type DecidePendingChangeDTO struct {
	Comment string `json:"comment"`
}

type DecisionOutcomeDTO struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
