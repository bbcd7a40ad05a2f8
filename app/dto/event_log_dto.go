package dto

import "encoding/json"

// EventLogDTO is an audit entry of a debtor interaction
type EventLogDTO struct {
	ID        uint            `json:"id"`
	DebtorID  *uint           `json:"debtor_id,omitempty"`
	UserID    *uint           `json:"user_id,omitempty"`
	UserRole  string          `json:"user_role"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// CreateEventLogRequest records a UI or outreach action on a debtor
type CreateEventLogRequest struct {
	Action  string          `json:"action" validate:"required,max=64"`
	Details json.RawMessage `json:"details,omitempty"`
}
