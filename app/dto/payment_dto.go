package dto

import "github.com/shopspring/decimal"

// PaymentDTO is a payment with its proof of payment links
type PaymentDTO struct {
	ID              uint            `json:"id"`
	DebtorID        uint            `json:"debtor_id"`
	DebtorName      string          `json:"debtor_name,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     string          `json:"payment_date"`
	UploadedAt      string          `json:"uploaded_at"`
	PopURL          *string         `json:"pop_url,omitempty"`
	PopThumbnailURL *string         `json:"pop_thumbnail_url,omitempty"`
	Verified        bool            `json:"verified"`
	Invoiced        bool            `json:"invoiced"`
	UploadedBy      *uint           `json:"uploaded_by,omitempty"`
	VerifiedBy      *uint           `json:"verified_by,omitempty"`
	VerifiedAt      *string         `json:"verified_at,omitempty"`
	UpdatedAt       string          `json:"updated_at"`
}

// UploadPaymentRequest records a payment with its proof of payment file
type UploadPaymentRequest struct {
	Amount      string `json:"amount" validate:"required"`
	PaymentDate string `json:"payment_date" validate:"required"`
	FileName    string `json:"-"`
	FileSize    int64  `json:"-"`
	Content     []byte `json:"-"`
}

// UploadPaymentResponse confirms a pending payment
type UploadPaymentResponse struct {
	Message string     `json:"message"`
	Payment PaymentDTO `json:"payment"`
}

// UpdatePaymentRequest is the admin correction of a payment
type UpdatePaymentRequest struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	PaymentDate *string          `json:"payment_date,omitempty"`
	Invoiced    *bool            `json:"invoiced,omitempty"`
}

// ListPaymentsRequest filters the scoped payment list
type ListPaymentsRequest struct {
	DebtorID *uint  `query:"debtor_id"`
	AgentID  *uint  `query:"agent_id"`
	Status   string `query:"status" validate:"omitempty,oneof=verified pending"`
	Period   string `query:"period" validate:"omitempty,oneof=week month this_week this_month"`
	Page     uint   `query:"page"`
	PageSize uint   `query:"page_size"`
}

// ListPaymentsResponse is a page of payments with its total
type ListPaymentsResponse struct {
	Payments   []PaymentDTO    `json:"payments"`
	Total      decimal.Decimal `json:"total"`
	Pagination Pagination      `json:"pagination"`
}
