package dto

// FollowUpDTO is a contact note
type FollowUpDTO struct {
	ID               uint    `json:"id"`
	DebtorID         uint    `json:"debtor_id"`
	DebtorName       string  `json:"debtor_name,omitempty"`
	AgentID          *uint   `json:"agent_id,omitempty"`
	FollowUpDate     string  `json:"follow_up_date"`
	Notes            string  `json:"notes"`
	DealStage        string  `json:"deal_stage"`
	DealStageLabel   string  `json:"deal_stage_label"`
	NextFollowupDate *string `json:"next_followup_date,omitempty"`
	UpdatedAt        string  `json:"updated_at"`
}

// CreateFollowUpRequest records a contact and moves the debtor to a new stage
type CreateFollowUpRequest struct {
	DealStage        string  `json:"deal_stage" validate:"required,deal_stage"`
	Notes            string  `json:"notes" validate:"max=5000"`
	NextFollowupDate *string `json:"next_followup_date,omitempty"`
}

// ListFollowUpsRequest filters the follow-up report
type ListFollowUpsRequest struct {
	DebtorID  *uint  `query:"debtor_id"`
	AgentID   *uint  `query:"agent_id"`
	DealStage string `query:"deal_stage"`
	Period    string `query:"period" validate:"omitempty,oneof=week month this_week this_month"`
	Page      uint   `query:"page"`
	PageSize  uint   `query:"page_size"`
}

// ListFollowUpsResponse is a page of follow-ups
type ListFollowUpsResponse struct {
	FollowUps  []FollowUpDTO `json:"follow_ups"`
	Pagination Pagination    `json:"pagination"`
}
