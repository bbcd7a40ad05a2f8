package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/app/services"
	"github.com/amirphl/debt-collection-crm/logger"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/repository"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxProofOfPaymentBytes bounds a proof-of-payment upload
const MaxProofOfPaymentBytes = 10 << 20

// PaymentAwaitingApproval is returned with every freshly uploaded payment
const PaymentAwaitingApproval = "Payment uploaded successfully. Awaiting admin approval."

// PaymentFlow handles payments and their proofs of payment
type PaymentFlow interface {
	ListDebtorPayments(ctx context.Context, userID, debtorID uint) ([]dto.PaymentDTO, error)
	UploadPayment(ctx context.Context, userID, debtorID uint, req *dto.UploadPaymentRequest) (*dto.UploadPaymentResponse, error)
	ListPayments(ctx context.Context, userID uint, req *dto.ListPaymentsRequest) (*dto.ListPaymentsResponse, error)
	UpdatePayment(ctx context.Context, userID, paymentID uint, req *dto.UpdatePaymentRequest) (*dto.PaymentDTO, error)
	VerifyPayment(ctx context.Context, userID, paymentID uint) (*dto.PaymentDTO, error)
	DeletePayment(ctx context.Context, userID, paymentID uint) error
}

// PaymentFlowImpl implements the payment business flow
type PaymentFlowImpl struct {
	userRepo    repository.UserRepository
	debtorRepo  repository.DebtorRepository
	paymentRepo repository.PaymentRepository
	storage     services.StorageService
	maxBytes    int64
	now         func() time.Time
}

func NewPaymentFlow(
	userRepo repository.UserRepository,
	debtorRepo repository.DebtorRepository,
	paymentRepo repository.PaymentRepository,
	storage services.StorageService,
	maxBytes int64,
) PaymentFlow {
	if maxBytes <= 0 || maxBytes > MaxProofOfPaymentBytes {
		maxBytes = MaxProofOfPaymentBytes
	}
	return &PaymentFlowImpl{
		userRepo:    userRepo,
		debtorRepo:  debtorRepo,
		paymentRepo: paymentRepo,
		storage:     storage,
		maxBytes:    maxBytes,
		now:         utils.UTCNow,
	}
}

func (f *PaymentFlowImpl) ListDebtorPayments(ctx context.Context, userID, debtorID uint) ([]dto.PaymentDTO, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	debtor, err := visibleDebtor(ctx, f.debtorRepo, scope, debtorID)
	if err != nil {
		return nil, err
	}
	payments, err := f.paymentRepo.ByFilter(ctx, models.PaymentFilter{DebtorID: &debtor.ID}, "", 0, 0)
	if err != nil {
		return nil, err
	}
	return paymentDTOs(payments), nil
}

// UploadPayment stores the proof of payment and records an unverified payment
func (f *PaymentFlowImpl) UploadPayment(ctx context.Context, userID, debtorID uint, req *dto.UploadPaymentRequest) (*dto.UploadPaymentResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	debtor, err := writableDebtor(ctx, f.debtorRepo, scope, debtorID)
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	paidOn, err := utils.ParseDate(strings.TrimSpace(req.PaymentDate))
	if err != nil {
		return nil, ErrInvalidDate
	}
	if len(req.Content) == 0 {
		return nil, ErrFileRequired
	}
	if int64(len(req.Content)) > f.maxBytes || req.FileSize > f.maxBytes {
		return nil, ErrFileTooLarge
	}
	if !services.IsAllowedProofExtension(req.FileName) {
		return nil, ErrInvalidFileType
	}

	now := f.now()
	stored, err := f.storage.SaveProofOfPayment(ctx, req.FileName, req.Content, now)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedUpload) {
			return nil, ErrInvalidFileType
		}
		return nil, fmt.Errorf("failed to store proof of payment: %w", err)
	}

	payment := &models.Payment{
		DebtorID:        debtor.ID,
		Amount:          amount,
		PaymentDate:     paidOn,
		UploadedAt:      now,
		PopURL:          utils.ToPtr(stored.URL),
		PopThumbnailURL: stored.ThumbnailURL,
		Verified:        utils.ToPtr(false),
		Invoiced:        utils.ToPtr(false),
		UploadedBy:      utils.ToPtr(scope.UserID),
	}
	if err := f.paymentRepo.Save(ctx, payment); err != nil {
		if derr := f.storage.Delete(ctx, stored.URL); derr != nil {
			logger.FromContext(ctx).Warn("failed to remove orphaned upload", zap.String("url", stored.URL), zap.Error(derr))
		}
		return nil, err
	}

	logger.FromContext(ctx).Info("payment uploaded",
		zap.Uint("payment_id", payment.ID),
		zap.Uint("debtor_id", debtor.ID),
		zap.String("amount", amount.StringFixed(2)),
		zap.Uint("uploaded_by", scope.UserID),
	)
	payment.Debtor = debtor
	return &dto.UploadPaymentResponse{
		Message: PaymentAwaitingApproval,
		Payment: ToPaymentDTO(*payment),
	}, nil
}

// ListPayments is the scoped payment list. Total sums the whole filtered set, not just the page.
func (f *PaymentFlowImpl) ListPayments(ctx context.Context, userID uint, req *dto.ListPaymentsRequest) (*dto.ListPaymentsResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}

	filter := models.PaymentFilter{DebtorID: req.DebtorID, Scope: scope}
	if scope.IsAdmin() {
		filter.AgentID = req.AgentID
	}
	switch req.Status {
	case "":
	case "verified":
		filter.Verified = utils.ToPtr(true)
	case "pending":
		filter.Verified = utils.ToPtr(false)
	default:
		return nil, ErrInvalidStatusFilter
	}
	if req.Period != "" {
		start, ok := utils.PeriodStart(req.Period, f.now())
		if !ok {
			return nil, ErrInvalidPeriod
		}
		filter.PaidAfter = &start
	}

	limit, offset, page, pageSize := pageBounds(req.Page, req.PageSize)
	count, err := f.paymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := f.paymentRepo.SumAmount(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows, err := f.paymentRepo.ByFilter(ctx, filter, "", limit, offset)
	if err != nil {
		return nil, err
	}

	return &dto.ListPaymentsResponse{
		Payments:   paymentDTOs(rows),
		Total:      total,
		Pagination: dto.NewPagination(page, pageSize, count),
	}, nil
}

func (f *PaymentFlowImpl) UpdatePayment(ctx context.Context, userID, paymentID uint, req *dto.UpdatePaymentRequest) (*dto.PaymentDTO, error) {
	payment, err := f.adminPayment(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, ErrInvalidAmount
		}
		payment.Amount = *req.Amount
	}
	if req.PaymentDate != nil {
		paidOn, err := utils.ParseDate(strings.TrimSpace(*req.PaymentDate))
		if err != nil {
			return nil, ErrInvalidDate
		}
		payment.PaymentDate = paidOn
	}
	if req.Invoiced != nil {
		payment.Invoiced = utils.ToPtr(*req.Invoiced)
	}

	if err := f.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}
	out := ToPaymentDTO(*payment)
	return &out, nil
}

// VerifyPayment approves a payment. Verifying twice keeps the first approval.
func (f *PaymentFlowImpl) VerifyPayment(ctx context.Context, userID, paymentID uint) (*dto.PaymentDTO, error) {
	payment, err := f.adminPayment(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}
	if !payment.IsVerified() {
		payment.Verified = utils.ToPtr(true)
		payment.VerifiedBy = utils.ToPtr(userID)
		payment.VerifiedAt = utils.ToPtr(f.now())
		if err := f.paymentRepo.Update(ctx, payment); err != nil {
			return nil, err
		}
		logger.FromContext(ctx).Info("payment verified", zap.Uint("payment_id", payment.ID), zap.Uint("verified_by", userID))
	}
	out := ToPaymentDTO(*payment)
	return &out, nil
}

func (f *PaymentFlowImpl) DeletePayment(ctx context.Context, userID, paymentID uint) error {
	payment, err := f.adminPayment(ctx, userID, paymentID)
	if err != nil {
		return err
	}
	deleted, err := f.paymentRepo.Delete(ctx, payment.ID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrPaymentNotFound
	}
	if payment.PopURL != nil && f.storage != nil {
		if err := f.storage.Delete(ctx, *payment.PopURL); err != nil {
			logger.FromContext(ctx).Warn("failed to delete proof of payment", zap.Uint("payment_id", payment.ID), zap.Error(err))
		}
	}
	logger.FromContext(ctx).Info("payment deleted", zap.Uint("payment_id", payment.ID), zap.Uint("deleted_by", userID))
	return nil
}

func (f *PaymentFlowImpl) adminPayment(ctx context.Context, userID, paymentID uint) (*models.Payment, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(scope); err != nil {
		return nil, err
	}
	payment, err := f.paymentRepo.ByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// parseAmount accepts "1,500.50" style input and requires a positive value
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

func paymentDTOs(rows []*models.Payment) []dto.PaymentDTO {
	out := make([]dto.PaymentDTO, 0, len(rows))
	for _, p := range rows {
		out = append(out, ToPaymentDTO(*p))
	}
	return out
}
