package businessflow

import (
	"testing"
	"time"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func payment(debtorID uint, amount string, verified bool, date time.Time) *models.Payment {
	return &models.Payment{
		DebtorID:    debtorID,
		Amount:      dec(amount),
		Verified:    utils.ToPtr(verified),
		PaymentDate: date,
	}
}

func TestFinance_VerifiedAndPendingPayments(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	debtor := &models.Debtor{ID: 1, DebtAmount: dec("10000")}
	payments := []*models.Payment{
		payment(1, "3000", true, now.AddDate(0, 0, -3)),
		payment(1, "2000", false, now.AddDate(0, 0, -1)),
	}

	assert.True(t, TotalPaid(payments).Equal(dec("5000")))
	assert.True(t, BalanceDue(debtor.DebtAmount, payments).Equal(dec("5000")))

	approved := ApprovedPayments(payments)
	require.Len(t, approved, 1)
	assert.True(t, approved[0].Amount.Equal(dec("3000")))

	summary := SummarizeDebtor(debtor, payments)
	assert.True(t, summary.TotalPaid.Equal(dec("5000")))
	assert.True(t, summary.ApprovedPaid.Equal(dec("3000")))
	assert.True(t, summary.BalanceDue.Equal(dec("5000")))
	assert.True(t, summary.WinPercentage.Equal(dec("50")))
	assert.Equal(t, 2, summary.PaymentsCount)
	require.NotNil(t, summary.LastPaymentDate)
	assert.Equal(t, now.AddDate(0, 0, -1), *summary.LastPaymentDate)
}

func TestBalanceDue_Recomputed(t *testing.T) {
	debt := dec("1500.50")
	var payments []*models.Payment
	assert.True(t, BalanceDue(debt, payments).Equal(debt))

	payments = append(payments, payment(1, "500.25", false, time.Now()))
	assert.True(t, BalanceDue(debt, payments).Equal(dec("1000.25")))

	payments[0].Amount = dec("1500.50")
	assert.True(t, BalanceDue(debt, payments).IsZero())

	payments = append(payments, payment(1, "100", true, time.Now()))
	assert.True(t, BalanceDue(debt, payments).Equal(dec("-100")), "overpayment is not clamped")

	payments = payments[:0]
	assert.True(t, BalanceDue(debt, payments).Equal(debt))
}

func TestWinPercentage(t *testing.T) {
	tests := []struct {
		name      string
		recovered string
		total     string
		want      string
	}{
		{"zero debt", "500", "0", "0"},
		{"nothing recovered", "0", "1000", "0"},
		{"half", "500", "1000", "50"},
		{"rounded", "1", "3", "33.33"},
		{"over-recovered", "1500", "1000", "150"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WinPercentage(dec(tt.recovered), dec(tt.total))
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}
}

func TestMTDPayments(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	payments := []*models.Payment{
		payment(1, "100", true, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		payment(1, "200", false, time.Date(2026, 3, 15, 11, 59, 0, 0, time.UTC)),
		payment(1, "400", true, time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC)),
		payment(1, "800", true, time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)),
		nil,
	}
	assert.True(t, MTDPayments(payments, now).Equal(dec("300")))
}

func TestSummarizePortfolio(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	agent := uint(7)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	debtors := []*models.Debtor{
		{ID: 1, DebtAmount: dec("10000"), AssignedTo: &agent, NextFollowupDate: &yesterday},
		{ID: 2, DebtAmount: dec("5000"), NextFollowupDate: &tomorrow},
	}
	payments := []*models.Payment{
		payment(1, "3000", true, now.AddDate(0, 0, -2)),
		payment(2, "2000", false, now.AddDate(0, -2, 0)),
		payment(3, "9999", true, now.AddDate(0, 0, -1)),
	}

	s := SummarizePortfolio(debtors, payments, now)
	assert.Equal(t, 2, s.DebtorsCount)
	assert.True(t, s.TotalDebt.Equal(dec("15000")))
	assert.True(t, s.TotalRecovered.Equal(dec("5000")), "payments of other debtors are ignored")
	assert.True(t, s.ApprovedRecovered.Equal(dec("3000")))
	assert.True(t, s.TotalBalance.Equal(dec("10000")))
	assert.True(t, s.WinPercentage.Equal(dec("33.33")))
	assert.True(t, s.MTDCollected.Equal(dec("3000")))
	assert.Equal(t, 1, s.OverdueCount)
	assert.Equal(t, 1, s.UnassignedCount)

	empty := SummarizePortfolio(nil, nil, now)
	assert.True(t, empty.WinPercentage.IsZero())
	assert.True(t, empty.TotalBalance.IsZero())
}

func TestPaidByDebtor(t *testing.T) {
	now := time.Now()
	paid := PaidByDebtor([]*models.Payment{
		payment(1, "10", true, now),
		payment(1, "15", false, now),
		payment(2, "7", true, now),
	})
	assert.True(t, paid[1].Equal(dec("25")))
	assert.True(t, paid[2].Equal(dec("7")))
	assert.True(t, paid[3].IsZero())
}
