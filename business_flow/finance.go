package businessflow

import (
	"time"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TotalPaid sums every payment, verified or not
func TotalPaid(payments []*models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p == nil {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total
}

// ApprovedPayments keeps the verified payments only
func ApprovedPayments(payments []*models.Payment) []*models.Payment {
	out := make([]*models.Payment, 0, len(payments))
	for _, p := range payments {
		if p != nil && p.IsVerified() {
			out = append(out, p)
		}
	}
	return out
}

// BalanceDue is debt minus everything paid. It is not clamped: a negative
// balance is an overpayment.
func BalanceDue(debt decimal.Decimal, payments []*models.Payment) decimal.Decimal {
	return debt.Sub(TotalPaid(payments))
}

// WinPercentage is recovered/totalDebt*100 rounded to two places, 0 for an empty book
func WinPercentage(recovered, totalDebt decimal.Decimal) decimal.Decimal {
	if totalDebt.IsZero() {
		return decimal.Zero
	}
	return recovered.Div(totalDebt).Mul(hundred).Round(2)
}

// MTDPayments sums payments dated from the first of now's month up to now
func MTDPayments(payments []*models.Payment, now time.Time) decimal.Decimal {
	start := utils.StartOfMonth(now)
	total := decimal.Zero
	for _, p := range payments {
		if p == nil {
			continue
		}
		if !p.PaymentDate.Before(start) && p.PaymentDate.Before(now) {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// PaidByDebtor groups TotalPaid per debtor id
func PaidByDebtor(payments []*models.Payment) map[uint]decimal.Decimal {
	out := make(map[uint]decimal.Decimal)
	for _, p := range payments {
		if p == nil {
			continue
		}
		out[p.DebtorID] = out[p.DebtorID].Add(p.Amount)
	}
	return out
}

// DebtorSummary is the financial position of one debtor
type DebtorSummary struct {
	DebtAmount      decimal.Decimal
	TotalPaid       decimal.Decimal
	ApprovedPaid    decimal.Decimal
	BalanceDue      decimal.Decimal
	WinPercentage   decimal.Decimal
	PaymentsCount   int
	LastPaymentDate *time.Time
}

func SummarizeDebtor(debtor *models.Debtor, payments []*models.Payment) DebtorSummary {
	debt := decimal.Zero
	if debtor != nil {
		debt = debtor.DebtAmount
	}
	paid := TotalPaid(payments)

	var last *time.Time
	for _, p := range payments {
		if p == nil {
			continue
		}
		if last == nil || p.PaymentDate.After(*last) {
			d := p.PaymentDate
			last = &d
		}
	}

	return DebtorSummary{
		DebtAmount:      debt,
		TotalPaid:       paid,
		ApprovedPaid:    TotalPaid(ApprovedPayments(payments)),
		BalanceDue:      debt.Sub(paid),
		WinPercentage:   WinPercentage(paid, debt),
		PaymentsCount:   len(payments),
		LastPaymentDate: last,
	}
}

// PortfolioSummary aggregates a set of debtors and their payments
type PortfolioSummary struct {
	DebtorsCount      int
	TotalDebt         decimal.Decimal
	TotalRecovered    decimal.Decimal
	ApprovedRecovered decimal.Decimal
	TotalBalance      decimal.Decimal
	WinPercentage     decimal.Decimal
	MTDCollected      decimal.Decimal
	OverdueCount      int
	UnassignedCount   int
}

// SummarizePortfolio only counts payments that belong to one of the given debtors
func SummarizePortfolio(debtors []*models.Debtor, payments []*models.Payment, now time.Time) PortfolioSummary {
	ids := make(map[uint]struct{}, len(debtors))
	s := PortfolioSummary{TotalDebt: decimal.Zero}
	for _, d := range debtors {
		if d == nil {
			continue
		}
		ids[d.ID] = struct{}{}
		s.DebtorsCount++
		s.TotalDebt = s.TotalDebt.Add(d.DebtAmount)
		if d.IsOverdue(now) {
			s.OverdueCount++
		}
		if d.AssignedTo == nil {
			s.UnassignedCount++
		}
	}

	owned := make([]*models.Payment, 0, len(payments))
	for _, p := range payments {
		if p == nil {
			continue
		}
		if _, ok := ids[p.DebtorID]; ok {
			owned = append(owned, p)
		}
	}

	s.TotalRecovered = TotalPaid(owned)
	s.ApprovedRecovered = TotalPaid(ApprovedPayments(owned))
	s.TotalBalance = s.TotalDebt.Sub(s.TotalRecovered)
	s.WinPercentage = WinPercentage(s.TotalRecovered, s.TotalDebt)
	s.MTDCollected = MTDPayments(owned, now)
	return s
}
