package dto

import "github.com/shopspring/decimal"

// DashboardResponse is the scoped portfolio summary
type DashboardResponse struct {
	DebtorsCount      int             `json:"debtors_count"`
	TotalDebt         decimal.Decimal `json:"total_debt"`
	TotalRecovered    decimal.Decimal `json:"total_recovered"`
	ApprovedRecovered decimal.Decimal `json:"approved_recovered"`
	TotalBalance      decimal.Decimal `json:"total_balance"`
	WinPercentage     decimal.Decimal `json:"win_percentage"`
	MTDCollected      decimal.Decimal `json:"mtd_collected"`
	OverdueCount      int             `json:"overdue_count"`
	UnassignedCount   int             `json:"unassigned_count"`
	PendingPayments   int             `json:"pending_payments"`
	GeneratedAt       string          `json:"generated_at"`
}

// MonthlyBucket is one month of collections
type MonthlyBucket struct {
	Month    string          `json:"month"`
	Total    decimal.Decimal `json:"total"`
	Verified decimal.Decimal `json:"verified"`
	Count    int             `json:"count"`
}

// MonthlyReportResponse covers the trailing twelve months
type MonthlyReportResponse struct {
	Months []MonthlyBucket `json:"months"`
}

// CountByKey is a labeled counter
type CountByKey struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	Count int64  `json:"count"`
}

// AmountByKey is a labeled money total
type AmountByKey struct {
	Key    string          `json:"key"`
	Label  string          `json:"label,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// PerformanceReportRequest bounds the performance report
type PerformanceReportRequest struct {
	Since string `query:"since"`
}

// PerformanceReportResponse compares agents
type PerformanceReportResponse struct {
	Since            string          `json:"since"`
	FollowUpsByAgent []CountByKey    `json:"follow_ups_by_agent"`
	PTPsByStatus     []CountByKey    `json:"ptps_by_status"`
	CollectedByAgent []AmountByKey   `json:"collected_by_agent"`
	CallsByAgent     []CountByKey    `json:"calls_by_agent"`
	TotalCollected   decimal.Decimal `json:"total_collected"`
}

// PTPReportResponse summarizes promises to pay
type PTPReportResponse struct {
	ByStatus       []CountByKey    `json:"by_status"`
	TotalPromised  decimal.Decimal `json:"total_promised"`
	TotalHonored   decimal.Decimal `json:"total_honored"`
	DueThisWeek    []PTPDTO        `json:"due_this_week"`
	BrokenPromises int             `json:"broken_promises"`
}

// AgentActivity is the activity of one agent
type AgentActivity struct {
	AgentID           uint   `json:"agent_id"`
	AgentName         string `json:"agent_name"`
	FollowUps         int64  `json:"follow_ups"`
	CollectionUpdates int64  `json:"collection_updates"`
	Events            int64  `json:"events"`
}

// AgentActivitiesRequest bounds the activity report
type AgentActivitiesRequest struct {
	Period string `query:"period" validate:"omitempty,oneof=week month this_week this_month"`
}

// AgentActivitiesResponse lists the activity of every agent
type AgentActivitiesResponse struct {
	Agents []AgentActivity `json:"agents"`
}
