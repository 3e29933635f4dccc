package dto

import "time"

// RecordDTO exposes a record with its opaque token; the numeric id never
// leaves the core.
type RecordDTO struct {
	Token            string                 `json:"token"`
	State            string                 `json:"state"`
	SubState         *string                `json:"sub_state,omitempty"`
	CentreID         uint64                 `json:"centre_id"`
	ProductType      string                 `json:"product_type"`
	ClientName       string                 `json:"client_name"`
	ClientPhone      string                 `json:"client_phone"`
	Agent            *ShortUserDTO          `json:"agent,omitempty"`
	Commercials      []ShortUserDTO         `json:"commercials"`
	Confirmers       []ShortUserDTO         `json:"confirmers"`
	AppointmentAt    *time.Time             `json:"appointment_at,omitempty"`
	IsUrgent         bool                   `json:"is_urgent"`
	StructuredFields map[string]interface{} `json:"structured_fields"`
	CreatedAt        string                 `json:"created_at"`
	UpdatedAt        string                 `json:"updated_at"`
}

type RecordFilter struct {
	State        string
	CentreID     uint64
	CommercialID uint64
	UrgentOnly   bool
	Limit        uint64
	Offset       uint64
}

type RecordHistoryDTO struct {
	ID        uint64                 `json:"id"`
	State     string                 `json:"state"`
	SubState  *string                `json:"sub_state,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
	Actor     ShortUserDTO           `json:"actor"`
	CreatedAt string                 `json:"created_at"`
}
