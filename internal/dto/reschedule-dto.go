package dto

import "time"

type ProposeRescheduleDTO struct {
	OffsetMinutes int    `json:"offset_minutes" validate:"required,reschedule_offset"`
	Message       string `json:"message" validate:"required"`

	// RecipientID is mandatory for administrative callers, ignored otherwise.
	RecipientID uint64 `json:"recipient_id"`

	// ObservedTime is the appointment time the caller's UI last displayed;
	// when set and stale the proposal is rejected with a conflict.
	ObservedTime *time.Time `json:"observed_time"`
}

type RescheduleRequestDTO struct {
	ID             string        `json:"id"`
	RecordToken    string        `json:"record_token"`
	Proposer       ShortUserDTO  `json:"proposer"`
	Recipient      ShortUserDTO  `json:"recipient"`
	OriginalTime   time.Time     `json:"original_time"`
	OffsetMinutes  int           `json:"offset_minutes"`
	NewTime        time.Time     `json:"new_time"`
	Message        string        `json:"message"`
	Status         string        `json:"status"`
	AcknowledgedAt *string       `json:"acknowledged_at,omitempty"`
	CreatedAt      string        `json:"created_at"`
}
