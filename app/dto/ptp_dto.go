package dto

import "github.com/shopspring/decimal"

// PTPDTO is a promise to pay
type PTPDTO struct {
	ID         uint            `json:"id"`
	DebtorID   uint            `json:"debtor_id"`
	DebtorName string          `json:"debtor_name,omitempty"`
	AgentID    *uint           `json:"agent_id,omitempty"`
	PTPDate    string          `json:"ptp_date"`
	PTPAmount  decimal.Decimal `json:"ptp_amount"`
	TotalDebt  decimal.Decimal `json:"total_debt"`
	Status     string          `json:"status"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	UpdatedAt  string          `json:"updated_at"`
}

// CreatePTPRequest logs a promise to pay
type CreatePTPRequest struct {
	PTPDate   string          `json:"ptp_date" validate:"required"`
	PTPAmount decimal.Decimal `json:"ptp_amount"`
}

// UpdatePTPRequest records how far a promise was honored
type UpdatePTPRequest struct {
	Status     *string          `json:"status,omitempty" validate:"omitempty,oneof=pending partially_honored fully_honored"`
	AmountPaid *decimal.Decimal `json:"amount_paid,omitempty"`
}

// ListPTPsRequest filters the PTP report
type ListPTPsRequest struct {
	DebtorID *uint  `query:"debtor_id"`
	AgentID  *uint  `query:"agent_id"`
	Status   string `query:"status" validate:"omitempty,oneof=pending partially_honored fully_honored"`
	Period   string `query:"period" validate:"omitempty,oneof=week month this_week this_month"`
	Page     uint   `query:"page"`
	PageSize uint   `query:"page_size"`
}

// ListPTPsResponse is a page of PTPs
type ListPTPsResponse struct {
	PTPs       []PTPDTO   `json:"ptps"`
	Pagination Pagination `json:"pagination"`
}
