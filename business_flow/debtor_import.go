package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/logger"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Import columns, matched case-insensitively against the header row
const (
	importColName            = "name"
	importColPhone           = "phone"
	importColEmail           = "email"
	importColDebtAmount      = "debt_amount"
	importColClient          = "client"
	importColAssignedToEmail = "assigned_to_email"
	importColAccountNumber   = "account_number"
	importColIDNumber        = "id_number"
	importColBranchManager   = "branch_manager"
)

const maxImportRows = 10000

// ImportDebtors loads a CSV or XLSX sheet. Rows that fail validation are
// reported and skipped; the rest are inserted together.
func (f *DebtorFlowImpl) ImportDebtors(ctx context.Context, userID uint, req *dto.ImportDebtorsRequest) (*dto.ImportDebtorsResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(scope); err != nil {
		return nil, err
	}
	if len(req.Content) == 0 {
		return nil, ErrFileRequired
	}

	rows, err := readSheet(req.FileName, req.Content)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, NewValidationError("EMPTY_SHEET", "the file has no data rows")
	}
	if len(rows)-1 > maxImportRows {
		return nil, NewValidationError("TOO_MANY_ROWS", fmt.Sprintf("at most %d rows can be imported at once", maxImportRows))
	}

	header := indexHeader(rows[0])
	if _, ok := header[importColName]; !ok {
		return nil, NewValidationError("MISSING_NAME_COLUMN", "the header must contain a name column")
	}

	resp := &dto.ImportDebtorsResponse{Errors: []dto.ImportRowError{}}
	agents := map[string]*uint{}
	clients := map[string]*uint{}
	debtors := make([]*models.Debtor, 0, len(rows)-1)

	for i, row := range rows[1:] {
		line := i + 2
		cell := func(col string) string {
			idx, ok := header[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		if isBlankRow(row) {
			continue
		}

		debtor, rowErr := f.importRow(ctx, cell, agents, clients)
		if rowErr != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, dto.ImportRowError{Row: line, Message: rowErr.Error()})
			continue
		}
		debtors = append(debtors, debtor)
	}

	if err := f.debtorRepo.SaveBatch(ctx, debtors); err != nil {
		return nil, err
	}
	resp.Inserted = len(debtors)

	logger.FromContext(ctx).Info("debtors imported",
		zap.String("file", req.FileName),
		zap.Int("inserted", resp.Inserted),
		zap.Int("skipped", resp.Skipped),
		zap.Uint("imported_by", userID),
	)
	return resp, nil
}

func (f *DebtorFlowImpl) importRow(
	ctx context.Context,
	cell func(string) string,
	agents, clients map[string]*uint,
) (*models.Debtor, error) {
	name := cell(importColName)
	if name == "" {
		return nil, errors.New("name is required")
	}

	amount := decimal.Zero
	if raw := strings.ReplaceAll(cell(importColDebtAmount), ",", ""); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid debt_amount %q", raw)
		}
		if parsed.IsNegative() {
			return nil, errors.New("debt_amount cannot be negative")
		}
		amount = parsed
	}

	var assignedTo *uint
	if email := strings.ToLower(cell(importColAssignedToEmail)); email != "" {
		id, cached := agents[email]
		if !cached {
			agent, err := f.userRepo.ByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if agent != nil && agent.IsAgent() {
				id = utils.ToPtr(agent.ID)
			}
			agents[email] = id
		}
		if id == nil {
			return nil, fmt.Errorf("no agent with email %s", email)
		}
		assignedTo = id
	}

	client := cell(importColClient)
	clientID, cached := clients[client]
	if !cached {
		var err error
		if clientID, err = f.clientIDFor(ctx, client); err != nil {
			return nil, err
		}
		clients[client] = clientID
	}

	return &models.Debtor{
		Name:          name,
		Phone:         optionalCell(cell(importColPhone)),
		Email:         optionalCell(cell(importColEmail)),
		IDNumber:      optionalCell(cell(importColIDNumber)),
		AccountNumber: optionalCell(cell(importColAccountNumber)),
		BranchManager: optionalCell(cell(importColBranchManager)),
		DebtAmount:    amount,
		AssignedTo:    assignedTo,
		Client:        client,
		ClientUserID:  clientID,
		DealStage:     models.DealStageSelect,
	}, nil
}

// readSheet returns the rows of a CSV file or of the first XLSX worksheet
func readSheet(fileName string, content []byte) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", "":
		r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))))
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true
		var rows [][]string
		for {
			rec, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, NewValidationError("INVALID_CSV", fmt.Sprintf("invalid CSV: %v", err))
			}
			rows = append(rows, rec)
		}
		return rows, nil
	case ".xlsx":
		book, err := excelize.OpenReader(bytes.NewReader(content))
		if err != nil {
			return nil, NewValidationError("INVALID_XLSX", fmt.Sprintf("invalid XLSX: %v", err))
		}
		defer book.Close()
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, NewValidationError("EMPTY_SHEET", "the workbook has no sheets")
		}
		rows, err := book.GetRows(sheets[0])
		if err != nil {
			return nil, NewValidationError("INVALID_XLSX", fmt.Sprintf("invalid XLSX: %v", err))
		}
		return rows, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

func indexHeader(row []string) map[string]int {
	out := make(map[string]int, len(row))
	for i, h := range row {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.ReplaceAll(key, " ", "_")
		if _, dup := out[key]; !dup && key != "" {
			out[key] = i
		}
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func optionalCell(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
