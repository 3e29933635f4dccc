package dto

// SubmitTransitionDTO carries one transition attempt. Fields is the raw
// state-specific form data; the payload validator shapes it against the
// target state's schema.
type SubmitTransitionDTO struct {
	TargetState string            `json:"target_state" validate:"required"`
	SubState    string            `json:"sub_state"`
	Fields      map[string]string `json:"fields"`
	FreeComment string            `json:"free_comment"`
}

// TransitionOutcomeDTO reports whether the change was applied directly or
// queued as a pending change.
type TransitionOutcomeDTO struct {
	Status          string  `json:"status"` // APPLIED | QUEUED
	RecordToken     string  `json:"record_token"`
	PendingChangeID *string `json:"pending_change_id,omitempty"`
}
