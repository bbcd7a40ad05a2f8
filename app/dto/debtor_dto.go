package dto

import "github.com/shopspring/decimal"

// DebtorDTO is a debtor row with its derived financials
type DebtorDTO struct {
	ID               uint            `json:"id"`
	UUID             string          `json:"uuid"`
	Name             string          `json:"name"`
	Phone            *string         `json:"phone,omitempty"`
	Email            *string         `json:"email,omitempty"`
	IDNumber         *string         `json:"id_number,omitempty"`
	AccountNumber    *string         `json:"account_number,omitempty"`
	BranchManager    *string         `json:"branch_manager,omitempty"`
	DebtAmount       decimal.Decimal `json:"debt_amount"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	BalanceDue       decimal.Decimal `json:"balance_due"`
	AssignedTo       *uint           `json:"assigned_to,omitempty"`
	AgentName        *string         `json:"agent_name,omitempty"`
	Client           string          `json:"client"`
	ClientUserID     *uint           `json:"client_user_id,omitempty"`
	DealStage        string          `json:"deal_stage"`
	DealStageLabel   string          `json:"deal_stage_label"`
	NextFollowupDate *string         `json:"next_followup_date,omitempty"`
	CollectionUpdate *string         `json:"collection_update,omitempty"`
	Tags             []string        `json:"tags"`
	Overdue          bool            `json:"overdue"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

// DebtorSummaryDTO is the financial position of a single debtor
type DebtorSummaryDTO struct {
	DebtAmount      decimal.Decimal `json:"debt_amount"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	ApprovedPaid    decimal.Decimal `json:"approved_paid"`
	BalanceDue      decimal.Decimal `json:"balance_due"`
	WinPercentage   decimal.Decimal `json:"win_percentage"`
	PaymentsCount   int             `json:"payments_count"`
	LastPaymentDate *string         `json:"last_payment_date,omitempty"`
}

// DebtorDetailResponse is the debtor page payload
type DebtorDetailResponse struct {
	Debtor  DebtorDTO        `json:"debtor"`
	Summary DebtorSummaryDTO `json:"summary"`
}

// ListDebtorsRequest filters the scoped debtor list
type ListDebtorsRequest struct {
	AgentID   *uint  `query:"agent_id"`
	DealStage string `query:"deal_stage" validate:"omitempty,max=8"`
	Client    string `query:"client" validate:"omitempty,max=255"`
	Overdue   bool   `query:"overdue"`
	Search    string `query:"search" validate:"omitempty,max=255"`
	Page      uint   `query:"page"`
	PageSize  uint   `query:"page_size"`
}

// ListDebtorsResponse is a page of debtors
type ListDebtorsResponse struct {
	Debtors    []DebtorDTO `json:"debtors"`
	Pagination Pagination  `json:"pagination"`
}

// CreateDebtorRequest adds a debtor to the book
type CreateDebtorRequest struct {
	Name          string          `json:"name" validate:"required,min=1,max=255"`
	Phone         *string         `json:"phone,omitempty" validate:"omitempty,max=32"`
	Email         *string         `json:"email,omitempty" validate:"omitempty,max=255"`
	IDNumber      *string         `json:"id_number,omitempty" validate:"omitempty,max=64"`
	AccountNumber *string         `json:"account_number,omitempty" validate:"omitempty,max=64"`
	BranchManager *string         `json:"branch_manager,omitempty" validate:"omitempty,max=255"`
	DebtAmount    decimal.Decimal `json:"debt_amount"`
	AssignedTo    *uint           `json:"assigned_to,omitempty"`
	Client        string          `json:"client" validate:"max=255"`
	DealStage     string          `json:"deal_stage,omitempty" validate:"omitempty,deal_stage"`
	Tags          []string        `json:"tags,omitempty"`
}

// UpdateDebtorRequest edits a debtor. Empty strings clear optional columns.
type UpdateDebtorRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Phone         *string          `json:"phone,omitempty" validate:"omitempty,max=32"`
	Email         *string          `json:"email,omitempty" validate:"omitempty,max=255"`
	IDNumber      *string          `json:"id_number,omitempty" validate:"omitempty,max=64"`
	AccountNumber *string          `json:"account_number,omitempty" validate:"omitempty,max=64"`
	BranchManager *string          `json:"branch_manager,omitempty" validate:"omitempty,max=255"`
	DebtAmount    *decimal.Decimal `json:"debt_amount,omitempty"`
	AssignedTo    *uint            `json:"assigned_to,omitempty"`
	Unassign      bool             `json:"unassign,omitempty"`
	Client        *string          `json:"client,omitempty" validate:"omitempty,max=255"`
	DealStage     *string          `json:"deal_stage,omitempty" validate:"omitempty,deal_stage"`
	Tags          []string         `json:"tags,omitempty"`
}

// BulkDeleteDebtorsRequest removes several debtors at once
type BulkDeleteDebtorsRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1,max=1000"`
}

// BulkReassignDebtorsRequest moves debtors to an agent, or unassigns them when AgentID is nil
type BulkReassignDebtorsRequest struct {
	IDs     []uint `json:"ids" validate:"required,min=1,max=1000"`
	AgentID *uint  `json:"agent_id"`
}

// BulkResult reports how many rows a bulk action touched
type BulkResult struct {
	Affected int64 `json:"affected"`
}

// ImportDebtorsRequest carries an uploaded CSV or XLSX sheet
type ImportDebtorsRequest struct {
	FileName string `json:"-"`
	Content  []byte `json:"-"`
}

// ImportRowError is one rejected row of an import
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportDebtorsResponse summarizes an import
type ImportDebtorsResponse struct {
	Inserted int              `json:"inserted"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors"`
}

// DealStageDTO is one entry of the deal-stage vocabulary
type DealStageDTO struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}
