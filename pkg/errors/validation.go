package errors

import "fmt"

// ValidationKind classifies payload validation failures so callers can show
// a field-level reason.
type ValidationKind string

const (
	MissingField           ValidationKind = "MISSING_FIELD"
	InvalidNumber          ValidationKind = "INVALID_NUMBER"
	InvalidDate            ValidationKind = "INVALID_DATE"
	InvalidSubState        ValidationKind = "INVALID_SUB_STATE"
	UnknownState           ValidationKind = "UNKNOWN_STATE"
	MissingReschedulePoint ValidationKind = "MISSING_RESCHEDULE_POINT"
)

type ValidationError struct {
	Kind  ValidationKind
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid payload: %s (%s)", e.Kind, e.Field)
	}
	return fmt.Sprintf("invalid payload: %s", e.Kind)
}

func NewValidationError(kind ValidationKind, field string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field}
}
