package businessflow

import (
	"time"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/shopspring/decimal"
)

// ClientMetadata holds the request origin, recorded in logs and event details
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.DateOnly)
	return &s
}

// ToUserDTO converts a user model to its public view
func ToUserDTO(user models.User) dto.UserDTO {
	return dto.UserDTO{
		ID:            user.ID,
		UUID:          user.UUID.String(),
		FullName:      user.FullName,
		Email:         user.Email,
		Role:          user.Role,
		Phone:         user.Phone,
		ClientCompany: user.ClientCompany,
		IsActive:      user.IsActive == nil || *user.IsActive,
		LastLoginAt:   formatTimePtr(user.LastLoginAt),
		CreatedAt:     formatTime(user.CreatedAt),
		UpdatedAt:     formatTime(user.UpdatedAt),
	}
}

// ToDebtorDTO converts a debtor with the sum of its payments
func ToDebtorDTO(debtor models.Debtor, totalPaid decimal.Decimal, agentName *string, now time.Time) dto.DebtorDTO {
	tags := []string(debtor.Tags)
	if tags == nil {
		tags = []string{}
	}
	return dto.DebtorDTO{
		ID:               debtor.ID,
		UUID:             debtor.UUID.String(),
		Name:             debtor.Name,
		Phone:            debtor.Phone,
		Email:            debtor.Email,
		IDNumber:         debtor.IDNumber,
		AccountNumber:    debtor.AccountNumber,
		BranchManager:    debtor.BranchManager,
		DebtAmount:       debtor.DebtAmount,
		TotalPaid:        totalPaid,
		BalanceDue:       debtor.DebtAmount.Sub(totalPaid),
		AssignedTo:       debtor.AssignedTo,
		AgentName:        agentName,
		Client:           debtor.Client,
		ClientUserID:     debtor.ClientUserID,
		DealStage:        debtor.DealStage,
		DealStageLabel:   models.DealStageLabel(debtor.DealStage),
		NextFollowupDate: formatDatePtr(debtor.NextFollowupDate),
		CollectionUpdate: debtor.CollectionUpdate,
		Tags:             tags,
		Overdue:          debtor.IsOverdue(now),
		CreatedAt:        formatTime(debtor.CreatedAt),
		UpdatedAt:        formatTime(debtor.UpdatedAt),
	}
}

// ToDebtorSummaryDTO converts the pure summary into its transport form
func ToDebtorSummaryDTO(s DebtorSummary) dto.DebtorSummaryDTO {
	return dto.DebtorSummaryDTO{
		DebtAmount:      s.DebtAmount,
		TotalPaid:       s.TotalPaid,
		ApprovedPaid:    s.ApprovedPaid,
		BalanceDue:      s.BalanceDue,
		WinPercentage:   s.WinPercentage,
		PaymentsCount:   s.PaymentsCount,
		LastPaymentDate: formatDatePtr(s.LastPaymentDate),
	}
}

func ToFollowUpDTO(f models.FollowUp) dto.FollowUpDTO {
	out := dto.FollowUpDTO{
		ID:               f.ID,
		DebtorID:         f.DebtorID,
		AgentID:          f.AgentID,
		FollowUpDate:     formatTime(f.FollowUpDate),
		Notes:            f.Notes,
		DealStage:        f.DealStage,
		DealStageLabel:   models.DealStageLabel(f.DealStage),
		NextFollowupDate: formatDatePtr(f.NextFollowupDate),
		UpdatedAt:        formatTime(f.UpdatedAt),
	}
	if f.Debtor != nil {
		out.DebtorName = f.Debtor.Name
	}
	return out
}

func ToPaymentDTO(p models.Payment) dto.PaymentDTO {
	out := dto.PaymentDTO{
		ID:              p.ID,
		DebtorID:        p.DebtorID,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate.UTC().Format(time.DateOnly),
		UploadedAt:      formatTime(p.UploadedAt),
		PopURL:          p.PopURL,
		PopThumbnailURL: p.PopThumbnailURL,
		Verified:        p.IsVerified(),
		Invoiced:        utils.IsTrue(p.Invoiced),
		UploadedBy:      p.UploadedBy,
		VerifiedBy:      p.VerifiedBy,
		VerifiedAt:      formatTimePtr(p.VerifiedAt),
		UpdatedAt:       formatTime(p.UpdatedAt),
	}
	if p.Debtor != nil {
		out.DebtorName = p.Debtor.Name
	}
	return out
}

func ToPTPDTO(p models.PTP) dto.PTPDTO {
	out := dto.PTPDTO{
		ID:         p.ID,
		DebtorID:   p.DebtorID,
		AgentID:    p.AgentID,
		PTPDate:    p.PTPDate.UTC().Format(time.DateOnly),
		PTPAmount:  p.PTPAmount,
		TotalDebt:  p.TotalDebt,
		Status:     p.Status,
		AmountPaid: p.AmountPaid,
		UpdatedAt:  formatTime(p.UpdatedAt),
	}
	if p.Debtor != nil {
		out.DebtorName = p.Debtor.Name
	}
	return out
}

func ToCollectionUpdateDTO(c models.CollectionUpdate) dto.CollectionUpdateDTO {
	out := dto.CollectionUpdateDTO{
		ID:              c.ID,
		DebtorID:        c.DebtorID,
		AgentID:         c.AgentID,
		UpdateDate:      formatTime(c.UpdateDate),
		CollectionNotes: c.CollectionNotes,
	}
	if c.Debtor != nil {
		out.DebtorName = c.Debtor.Name
	}
	return out
}

func ToEventLogDTO(e models.EventLog) dto.EventLogDTO {
	return dto.EventLogDTO{
		ID:        e.ID,
		DebtorID:  e.DebtorID,
		UserID:    e.UserID,
		UserRole:  e.UserRole,
		Action:    e.Action,
		Details:   e.Details,
		Timestamp: formatTime(e.Timestamp),
	}
}

func ToCallLogDTO(c models.CallLog) dto.CallLogDTO {
	return dto.CallLogDTO{
		ID:               c.ID,
		CallSID:          c.CallSID,
		EventType:        c.EventType,
		CallGroup:        c.CallGroup,
		Direction:        c.Direction,
		AgentNumber:      c.AgentNumber,
		AgentName:        c.AgentName,
		ReceiverNumber:   c.ReceiverNumber,
		Status:           c.Status,
		CallDuration:     c.CallDuration,
		StartTime:        formatTime(c.StartTime),
		EndTime:          formatTimePtr(c.EndTime),
		CallRecordingURL: c.CallRecordingURL,
		Coins:            c.Coins,
		DebtorID:         c.DebtorID,
	}
}
