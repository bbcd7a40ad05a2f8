package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/logger"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/repository"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Export formats
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"

	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	debtorExportHeader  = []string{"Debtor Name", "Branch (Manager)", "Phone", "Total Debt", "Total Paid", "Remaining Balance", "Next Follow-Up", "Assigned Agent", "Deal Stage"}
	paymentExportHeader = []string{"Debtor Name", "Amount", "Payment Date", "Uploaded At", "Verified", "Invoiced", "Proof of Payment"}
)

// ExportFlow produces spreadsheet exports of the caller's portfolio and
// records every export in the download log.
type ExportFlow interface {
	ExportDebtors(ctx context.Context, userID uint, req *dto.ExportRequest) (*dto.ExportFile, error)
	ExportPayments(ctx context.Context, userID uint, req *dto.ExportRequest) (*dto.ExportFile, error)
	RecordExportLog(ctx context.Context, userID uint, req *dto.ExportLogRequest) (*dto.ExportLogResponse, error)
}

type ExportFlowImpl struct {
	userRepo        repository.UserRepository
	debtorRepo      repository.DebtorRepository
	paymentRepo     repository.PaymentRepository
	downloadLogRepo repository.DownloadLogRepository
	exportLogRepo   repository.ExportLogRepository
	now             func() time.Time
}

func NewExportFlow(
	userRepo repository.UserRepository,
	debtorRepo repository.DebtorRepository,
	paymentRepo repository.PaymentRepository,
	downloadLogRepo repository.DownloadLogRepository,
	exportLogRepo repository.ExportLogRepository,
) ExportFlow {
	return &ExportFlowImpl{
		userRepo:        userRepo,
		debtorRepo:      debtorRepo,
		paymentRepo:     paymentRepo,
		downloadLogRepo: downloadLogRepo,
		exportLogRepo:   exportLogRepo,
		now:             utils.UTCNow,
	}
}

func (f *ExportFlowImpl) ExportDebtors(ctx context.Context, userID uint, req *dto.ExportRequest) (*dto.ExportFile, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	format, err := exportFormat(req)
	if err != nil {
		return nil, err
	}

	debtors, err := f.debtorRepo.ByFilter(ctx, models.DebtorFilter{Scope: scope}, "name ASC, id ASC", 0, 0)
	if err != nil {
		return nil, err
	}
	payments, err := f.paymentRepo.ByFilter(ctx, models.PaymentFilter{Scope: scope}, "", 0, 0)
	if err != nil {
		return nil, err
	}
	names, err := agentNames(ctx, f.userRepo, debtors)
	if err != nil {
		return nil, err
	}

	paid := PaidByDebtor(payments)
	rows := make([][]string, 0, len(debtors))
	for _, d := range debtors {
		total := paid[d.ID]
		agent := "Unassigned"
		if name := nameOf(names, d.AssignedTo); name != nil {
			agent = *name
		}
		rows = append(rows, []string{
			d.Name,
			deref(d.BranchManager),
			deref(d.Phone),
			d.DebtAmount.StringFixed(2),
			total.StringFixed(2),
			d.DebtAmount.Sub(total).StringFixed(2),
			dateOrEmpty(d.NextFollowupDate),
			agent,
			models.DealStageLabel(d.DealStage),
		})
	}

	file, err := f.render("debtors", format, debtorExportHeader, rows)
	if err != nil {
		return nil, err
	}
	f.logDownload(ctx, scope.UserID, format, fmt.Sprintf("Exported %d debtors", len(rows)))
	return file, nil
}

// ExportPayments exports the scoped payments. Approved keeps only verified rows.
func (f *ExportFlowImpl) ExportPayments(ctx context.Context, userID uint, req *dto.ExportRequest) (*dto.ExportFile, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	format, err := exportFormat(req)
	if err != nil {
		return nil, err
	}

	payments, err := f.paymentRepo.ByFilter(ctx, models.PaymentFilter{Scope: scope}, "payment_date DESC, id DESC", 0, 0)
	if err != nil {
		return nil, err
	}
	if req != nil && req.Approved {
		payments = ApprovedPayments(payments)
	}

	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		debtorName := ""
		if p.Debtor != nil {
			debtorName = p.Debtor.Name
		}
		rows = append(rows, []string{
			debtorName,
			p.Amount.StringFixed(2),
			p.PaymentDate.UTC().Format(time.DateOnly),
			p.UploadedAt.UTC().Format(time.RFC3339),
			yesNo(p.IsVerified()),
			yesNo(utils.IsTrue(p.Invoiced)),
			deref(p.PopURL),
		})
	}

	name := "payments"
	if req != nil && req.Approved {
		name = "approved_payments"
	}
	file, err := f.render(name, format, paymentExportHeader, rows)
	if err != nil {
		return nil, err
	}
	f.logDownload(ctx, scope.UserID, format, fmt.Sprintf("Exported %d payments", len(rows)))
	return file, nil
}

// RecordExportLog stores an export reported by a client application. Only an
// admin may report on behalf of another user.
func (f *ExportFlowImpl) RecordExportLog(ctx context.Context, userID uint, req *dto.ExportLogRequest) (*dto.ExportLogResponse, error) {
	if req == nil || req.UserID == 0 || strings.TrimSpace(req.Action) == "" || strings.TrimSpace(req.Details) == "" {
		return nil, ErrMissingRequiredFields
	}
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if req.UserID != scope.UserID && !scope.IsAdmin() {
		return nil, ErrAdminOnly
	}

	entry := &models.ExportLog{
		UserID:    req.UserID,
		Action:    strings.TrimSpace(req.Action),
		Details:   strings.TrimSpace(req.Details),
		Timestamp: f.now(),
	}
	if err := f.exportLogRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return &dto.ExportLogResponse{ID: entry.ID}, nil
}

func (f *ExportFlowImpl) render(name, format string, header []string, rows [][]string) (*dto.ExportFile, error) {
	stamp := f.now().Format("20060102")
	switch format {
	case ExportFormatXLSX:
		content, err := WriteXLSX(name, header, rows)
		if err != nil {
			return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
		}
		return &dto.ExportFile{
			FileName:    fmt.Sprintf("%s_%s.xlsx", name, stamp),
			ContentType: contentTypeXLSX,
			Content:     content,
			Rows:        len(rows),
		}, nil
	default:
		content, err := WriteCSV(header, rows)
		if err != nil {
			return nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV file", err)
		}
		return &dto.ExportFile{
			FileName:    fmt.Sprintf("%s_%s.csv", name, stamp),
			ContentType: contentTypeCSV,
			Content:     content,
			Rows:        len(rows),
		}, nil
	}
}

// logDownload records the export. A failure is logged, the file is still returned.
func (f *ExportFlowImpl) logDownload(ctx context.Context, userID uint, format, details string) {
	action := models.ExportActionCSV
	if format == ExportFormatXLSX {
		action = models.ExportActionXLSX
	}
	entry := &models.DownloadLog{UserID: userID, Action: action, Details: details, Timestamp: f.now()}
	if err := f.downloadLogRepo.Save(ctx, entry); err != nil {
		logger.FromContext(ctx).Warn("failed to record download log",
			zap.Uint("user_id", userID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// WriteCSV renders a header and rows as CSV
func WriteCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteXLSX renders a header and rows into a single-sheet workbook
func WriteXLSX(sheet string, header []string, rows [][]string) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	xl.SetSheetName(xl.GetSheetName(0), sheet)
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, record := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := xl.SetSheetRow(sheet, cell, &record); err != nil {
			return nil, err
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportFormat(req *dto.ExportRequest) (string, error) {
	if req == nil || req.Format == "" {
		return ExportFormatCSV, nil
	}
	switch strings.ToLower(req.Format) {
	case ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatXLSX:
		return ExportFormatXLSX, nil
	}
	return "", ErrUnsupportedFormat
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
