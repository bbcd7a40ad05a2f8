package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPTPFlow(w *testWorld, now time.Time) *PTPFlowImpl {
	flow := NewPTPFlow(w.users, w.debtors, w.ptps).(*PTPFlowImpl)
	flow.now = fixedClock(now)
	return flow
}

func (w *testWorld) addPTP(debtor *models.Debtor, agent *models.User, amount int64, due time.Time) *models.PTP {
	p := &models.PTP{
		DebtorID:  debtor.ID,
		AgentID:   utils.ToPtr(agent.ID),
		PTPDate:   due,
		PTPAmount: decimal.NewFromInt(amount),
		TotalDebt: debtor.DebtAmount,
		Status:    models.PTPStatusPending,
	}
	_ = w.ptps.Save(context.Background(), p)
	return p
}

func TestPTPFlow_CreatePTP(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

	t.Run("SnapshotsDebtAndStartsPending", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane Doe", 10000, w.agent, "Acme Bank")

		out, err := newPTPFlow(w, now).CreatePTP(ctx, w.agent.ID, d.ID, &dto.CreatePTPRequest{
			PTPDate:   " 2026-05-20 ",
			PTPAmount: decimal.NewFromInt(2500),
		})
		require.NoError(t, err)
		assert.Equal(t, models.PTPStatusPending, out.Status)
		assert.True(t, out.TotalDebt.Equal(decimal.NewFromInt(10000)))
		assert.True(t, out.AmountPaid.IsZero())
		assert.Equal(t, "2026-05-20", out.PTPDate)
		assert.Equal(t, "Jane Doe", out.DebtorName)
		assert.Equal(t, utils.ToPtr(w.agent.ID), out.AgentID)

		// later debt changes do not move the snapshot
		d.DebtAmount = decimal.NewFromInt(12000)
		stored, _ := w.ptps.ByID(ctx, out.ID)
		require.NotNil(t, stored)
		assert.True(t, stored.TotalDebt.Equal(decimal.NewFromInt(10000)))
	})

	cases := []struct {
		name    string
		as      func(w *testWorld) *models.User
		owner   func(w *testWorld) *models.User
		amount  int64
		date    string
		wantErr error
	}{
		{"ZeroAmount", func(w *testWorld) *models.User { return w.agent }, func(w *testWorld) *models.User { return w.agent }, 0, "2026-05-20", ErrInvalidAmount},
		{"BadDate", func(w *testWorld) *models.User { return w.agent }, func(w *testWorld) *models.User { return w.agent }, 100, "next friday", ErrInvalidDate},
		{"OtherAgentsDebtor", func(w *testWorld) *models.User { return w.agent }, func(w *testWorld) *models.User { return w.agent2 }, 100, "2026-05-20", ErrDebtorNotFound},
		{"ClientIsReadOnly", func(w *testWorld) *models.User { return w.client }, func(w *testWorld) *models.User { return w.agent }, 100, "2026-05-20", ErrReadOnlyRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld()
			d := w.addDebtor("Jane Doe", 10000, tc.owner(w), "Acme Bank")

			_, err := newPTPFlow(w, now).CreatePTP(ctx, tc.as(w).ID, d.ID, &dto.CreatePTPRequest{
				PTPDate:   tc.date,
				PTPAmount: decimal.NewFromInt(tc.amount),
			})
			assert.ErrorIs(t, err, tc.wantErr)
			n, _ := w.ptps.Count(ctx, models.PTPFilter{})
			assert.Zero(t, n)
		})
	}
}

func TestPTPFlow_UpdatePTP(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	due := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	honored := &dto.UpdatePTPRequest{
		Status:     utils.ToPtr(models.PTPStatusFullyHonored),
		AmountPaid: utils.ToPtr(decimal.NewFromInt(500)),
	}

	t.Run("AssignedAgentRecordsPayment", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane Doe", 10000, w.agent, "Acme Bank")
		p := w.addPTP(d, w.agent, 500, due)

		out, err := newPTPFlow(w, now).UpdatePTP(ctx, w.agent.ID, p.ID, honored)
		require.NoError(t, err)
		assert.Equal(t, models.PTPStatusFullyHonored, out.Status)
		assert.True(t, out.AmountPaid.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, "Jane Doe", out.DebtorName)
	})

	t.Run("ReassignedDebtorIsHiddenFromFormerAgent", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane Doe", 10000, w.agent, "Acme Bank")
		p := w.addPTP(d, w.agent, 500, due)
		_, err := w.debtors.Reassign(ctx, []uint{d.ID}, utils.ToPtr(w.agent2.ID))
		require.NoError(t, err)

		out, err := newPTPFlow(w, now).UpdatePTP(ctx, w.agent.ID, p.ID, honored)
		assert.ErrorIs(t, err, ErrPTPNotFound)
		assert.Nil(t, out)

		stored, _ := w.ptps.ByID(ctx, p.ID)
		assert.Equal(t, models.PTPStatusPending, stored.Status)
		assert.True(t, stored.AmountPaid.IsZero())
	})

	t.Run("NewAgentTakesOverPromise", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane Doe", 10000, w.agent, "Acme Bank")
		p := w.addPTP(d, w.agent, 500, due)
		_, err := w.debtors.Reassign(ctx, []uint{d.ID}, utils.ToPtr(w.agent2.ID))
		require.NoError(t, err)

		out, err := newPTPFlow(w, now).UpdatePTP(ctx, w.agent2.ID, p.ID, &dto.UpdatePTPRequest{
			Status: utils.ToPtr(models.PTPStatusPartiallyHonored),
		})
		require.NoError(t, err)
		assert.Equal(t, models.PTPStatusPartiallyHonored, out.Status)
	})

	t.Run("ClientIsReadOnly", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane Doe", 10000, w.agent, w.client.FullName)
		p := w.addPTP(d, w.agent, 500, due)

		_, err := newPTPFlow(w, now).UpdatePTP(ctx, w.client.ID, p.ID, honored)
		assert.ErrorIs(t, err, ErrReadOnlyRole)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("AdminEditsAnyPromise", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane Doe", 10000, w.agent2, "Acme Bank")
		p := w.addPTP(d, w.agent2, 500, due)

		_, err := newPTPFlow(w, now).UpdatePTP(ctx, w.admin.ID, p.ID, honored)
		assert.NoError(t, err)
	})

	t.Run("Validation", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane Doe", 10000, w.agent, "Acme Bank")
		p := w.addPTP(d, w.agent, 500, due)
		flow := newPTPFlow(w, now)

		_, err := flow.UpdatePTP(ctx, w.agent.ID, p.ID, &dto.UpdatePTPRequest{Status: utils.ToPtr("broken")})
		assert.ErrorIs(t, err, ErrInvalidPTPStatus)

		_, err = flow.UpdatePTP(ctx, w.agent.ID, p.ID, &dto.UpdatePTPRequest{AmountPaid: utils.ToPtr(decimal.NewFromInt(-1))})
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = flow.UpdatePTP(ctx, w.agent.ID, 9999, honored)
		assert.ErrorIs(t, err, ErrPTPNotFound)
	})
}

func TestPTPFlow_ListPTPsIsScoped(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	due := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

	w := newTestWorld()
	mine := w.addDebtor("Mine", 1000, w.agent, w.client.FullName)
	theirs := w.addDebtor("Theirs", 1000, w.agent2, "Other Bank")
	w.addPTP(mine, w.agent, 100, due)
	w.addPTP(mine, w.agent, 200, due)
	w.addPTP(theirs, w.agent2, 300, due)
	flow := newPTPFlow(w, now)

	cases := []struct {
		name string
		user *models.User
		req  dto.ListPTPsRequest
		want int
	}{
		{"Admin", w.admin, dto.ListPTPsRequest{}, 3},
		{"AdminByAgent", w.admin, dto.ListPTPsRequest{AgentID: utils.ToPtr(w.agent2.ID)}, 1},
		{"Agent", w.agent, dto.ListPTPsRequest{}, 2},
		{"AgentCannotWidenByAgentID", w.agent, dto.ListPTPsRequest{AgentID: utils.ToPtr(w.agent2.ID)}, 2},
		{"AgentAskingForHiddenDebtor", w.agent, dto.ListPTPsRequest{DebtorID: utils.ToPtr(theirs.ID)}, 0},
		{"Client", w.client, dto.ListPTPsRequest{}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := flow.ListPTPs(ctx, tc.user.ID, &tc.req)
			require.NoError(t, err)
			assert.Len(t, out.PTPs, tc.want)
			assert.EqualValues(t, tc.want, out.Pagination.Total)
		})
	}

	t.Run("DebtorPTPsHiddenFromOtherAgent", func(t *testing.T) {
		_, err := flow.ListDebtorPTPs(ctx, w.agent2.ID, mine.ID)
		assert.ErrorIs(t, err, ErrDebtorNotFound)
	})
}
