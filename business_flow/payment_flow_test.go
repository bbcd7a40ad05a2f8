package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentFlow(w *testWorld) PaymentFlow {
	return NewPaymentFlow(w.users, w.debtors, w.payments, w.storage, 0)
}

func upload(amount, date, file string, size int) *dto.UploadPaymentRequest {
	return &dto.UploadPaymentRequest{
		Amount:      amount,
		PaymentDate: date,
		FileName:    file,
		FileSize:    int64(size),
		Content:     bytes.Repeat([]byte{0x1}, size),
	}
}

// The collection scenario: a 10000 debt with a verified 3000 and a pending 2000
func TestPaymentFlow_VerifiedAndPendingScenario(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld()
	d := w.addDebtor("Jane Doe", 10000, w.agent, "Acme Bank")
	payments := newPaymentFlow(w)

	first, err := payments.UploadPayment(ctx, w.agent.ID, d.ID, upload("3,000", "2026-05-02", "receipt.jpg", 128))
	require.NoError(t, err)
	assert.Equal(t, PaymentAwaitingApproval, first.Message)
	assert.False(t, first.Payment.Verified)

	_, err = payments.UploadPayment(ctx, w.agent.ID, d.ID, upload("2000", "2026-05-03", "receipt.pdf", 64))
	require.NoError(t, err)

	verified, err := payments.VerifyPayment(ctx, w.admin.ID, first.Payment.ID)
	require.NoError(t, err)
	assert.True(t, verified.Verified)

	detail, err := newDebtorFlow(w).GetDebtor(ctx, w.admin.ID, d.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5000).Equal(detail.Summary.TotalPaid), detail.Summary.TotalPaid.String())
	assert.True(t, decimal.NewFromInt(5000).Equal(detail.Summary.BalanceDue))
	assert.True(t, decimal.NewFromInt(3000).Equal(detail.Summary.ApprovedPaid))

	list, err := payments.ListPayments(ctx, w.agent.ID, &dto.ListPaymentsRequest{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, list.Payments, 1)
	assert.True(t, decimal.NewFromInt(2000).Equal(list.Total))

	exports := NewExportFlow(w.users, w.debtors, w.payments, w.downloads, w.exports)
	file, err := exports.ExportPayments(ctx, w.admin.ID, &dto.ExportRequest{Format: "csv", Approved: true})
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(file.Content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, paymentExportHeader, records[0])
	assert.Equal(t, "3000.00", records[1][1])
	assert.Equal(t, "Yes", records[1][4])
}

func TestPaymentFlow_UploadValidation(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld()
	d := w.addDebtor("Jane Doe", 10000, w.agent, "Acme Bank")
	payments := newPaymentFlow(w)

	tests := []struct {
		name string
		user *models.User
		req  *dto.UploadPaymentRequest
		want error
	}{
		{"ZeroAmount", w.agent, upload("0", "2026-05-02", "a.png", 10), ErrInvalidAmount},
		{"TextAmount", w.agent, upload("abc", "2026-05-02", "a.png", 10), ErrInvalidAmount},
		{"BadDate", w.agent, upload("10", "02/05/2026", "a.png", 10), ErrInvalidDate},
		{"NoFile", w.agent, upload("10", "2026-05-02", "a.png", 0), ErrFileRequired},
		{"WrongType", w.agent, upload("10", "2026-05-02", "a.exe", 10), ErrInvalidFileType},
		{"TooLarge", w.agent, &dto.UploadPaymentRequest{Amount: "10", PaymentDate: "2026-05-02", FileName: "a.png", FileSize: MaxProofOfPaymentBytes + 1, Content: []byte{1}}, ErrFileTooLarge},
		{"Client", w.client, upload("10", "2026-05-02", "a.png", 10), ErrReadOnlyRole},
		{"OtherAgent", w.agent2, upload("10", "2026-05-02", "a.png", 10), ErrDebtorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := payments.UploadPayment(ctx, tt.user.ID, d.ID, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	n, _ := w.payments.Count(ctx, models.PaymentFilter{})
	assert.Zero(t, n)
	assert.Empty(t, w.storage.saved)
}

func TestPaymentFlow_AdminActions(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld()
	d := w.addDebtor("Jane Doe", 10000, w.agent, "Acme Bank")
	payments := newPaymentFlow(w)

	up, err := payments.UploadPayment(ctx, w.agent.ID, d.ID, upload("1500", "2026-05-02", "r.webp", 16))
	require.NoError(t, err)
	id := up.Payment.ID

	_, err = payments.VerifyPayment(ctx, w.agent.ID, id)
	assert.ErrorIs(t, err, ErrAdminOnly)

	first, err := payments.VerifyPayment(ctx, w.admin.ID, id)
	require.NoError(t, err)
	again, err := payments.VerifyPayment(ctx, w.admin.ID, id)
	require.NoError(t, err)
	assert.Equal(t, first.VerifiedAt, again.VerifiedAt)

	edited, err := payments.UpdatePayment(ctx, w.admin.ID, id, &dto.UpdatePaymentRequest{
		Amount:   utils.ToPtr(decimal.NewFromInt(1750)),
		Invoiced: utils.ToPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1750).Equal(edited.Amount))
	assert.True(t, edited.Invoiced)

	_, err = payments.UpdatePayment(ctx, w.admin.ID, id, &dto.UpdatePaymentRequest{Amount: utils.ToPtr(decimal.NewFromInt(-1))})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	require.NoError(t, payments.DeletePayment(ctx, w.admin.ID, id))
	assert.Len(t, w.storage.deleted, 1)
	assert.ErrorIs(t, payments.DeletePayment(ctx, w.admin.ID, id), ErrPaymentNotFound)
}

func TestPaymentFlow_ListTotalsCoverAllPages(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld()
	d := w.addDebtor("Jane Doe", 10000, w.agent, "Acme Bank")
	other := w.addDebtor("Other", 10000, w.agent2, "Beta Sacco")
	now := utils.UTCNow()
	for i := 0; i < 5; i++ {
		w.addPayment(d, 100, i%2 == 0, now.Add(-time.Duration(i)*time.Hour))
	}
	w.addPayment(other, 999, true, now)

	out, err := newPaymentFlow(w).ListPayments(ctx, w.agent.ID, &dto.ListPaymentsRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, out.Payments, 2)
	assert.Equal(t, int64(5), out.Pagination.Total)
	assert.Equal(t, int64(3), out.Pagination.TotalPages)
	assert.True(t, decimal.NewFromInt(500).Equal(out.Total))

	_, err = newPaymentFlow(w).ListPayments(ctx, w.agent.ID, &dto.ListPaymentsRequest{Status: "refunded"})
	assert.ErrorIs(t, err, ErrInvalidStatusFilter)
}

type pageRecordingPaymentRepo struct {
	*fakePaymentRepo
	limits []int
}

func (r *pageRecordingPaymentRepo) ByFilter(ctx context.Context, filter models.PaymentFilter, orderBy string, limit, offset int) ([]*models.Payment, error) {
	r.limits = append(r.limits, limit)
	return r.fakePaymentRepo.ByFilter(ctx, filter, orderBy, limit, offset)
}

func TestPaymentFlow_ListPaymentsFetchesOnePage(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld()
	d := w.addDebtor("Jane Doe", 10000, w.agent, "Acme Bank")
	now := utils.UTCNow()
	for i := 0; i < 3; i++ {
		w.addPayment(d, 250, true, now.Add(-time.Duration(i)*time.Hour))
	}
	repo := &pageRecordingPaymentRepo{fakePaymentRepo: w.payments}
	flow := NewPaymentFlow(w.users, w.debtors, repo, w.storage, 0)

	out, err := flow.ListPayments(ctx, w.admin.ID, &dto.ListPaymentsRequest{Page: 2, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, out.Payments, 1)
	assert.Equal(t, int64(3), out.Pagination.Total)
	assert.True(t, decimal.NewFromInt(750).Equal(out.Total))
	assert.Equal(t, []int{1}, repo.limits)
}
