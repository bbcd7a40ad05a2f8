package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFollowUpFlow(w *testWorld, now time.Time) *FollowUpFlowImpl {
	flow := NewFollowUpFlow(w.users, w.debtors, w.followUps, nil).(*FollowUpFlowImpl)
	flow.now = fixedClock(now)
	return flow
}

func TestFollowUpFlow_CreateFollowUp(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	plus := func(days int) *string {
		return utils.ToPtr(now.AddDate(0, 0, days).Format(time.DateOnly))
	}

	t.Run("PromiseStageAllowsThirtyDays", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane", 10000, w.agent, "Acme Bank")

		out, err := newFollowUpFlow(w, now).CreateFollowUp(ctx, w.agent.ID, d.ID, &dto.CreateFollowUpRequest{
			DealStage:        "23",
			Notes:            "  promised on payday ",
			NextFollowupDate: plus(25),
		})
		require.NoError(t, err)
		assert.Equal(t, "23", out.DealStage)
		assert.Equal(t, "promised on payday", out.Notes)

		assert.Equal(t, "23", d.DealStage)
		require.NotNil(t, d.NextFollowupDate)
		assert.Equal(t, time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC), *d.NextFollowupDate)
		assert.Equal(t, utils.ToPtr("promised on payday"), d.CollectionUpdate)

		rows, _ := w.followUps.ByFilter(ctx, models.FollowUpFilter{DebtorID: &d.ID}, "", 0, 0)
		require.Len(t, rows, 1)
		assert.Equal(t, utils.ToPtr(w.agent.ID), rows[0].AgentID)
		assert.Equal(t, now, rows[0].FollowUpDate)
	})

	t.Run("DefaultStageRejectsTwentyFiveDays", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane", 10000, w.agent, "Acme Bank")

		_, err := newFollowUpFlow(w, now).CreateFollowUp(ctx, w.agent.ID, d.ID, &dto.CreateFollowUpRequest{
			DealStage:        "2",
			NextFollowupDate: plus(25),
		})
		assert.ErrorIs(t, err, ErrFollowUpDateTooFar)
		assert.Equal(t, models.DealStageSelect, d.DealStage)
		assert.Nil(t, d.NextFollowupDate)

		n, _ := w.followUps.Count(ctx, models.FollowUpFilter{})
		assert.Zero(t, n)
	})

	t.Run("PastDateRejected", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane", 10000, w.agent, "Acme Bank")
		_, err := newFollowUpFlow(w, now).CreateFollowUp(ctx, w.admin.ID, d.ID, &dto.CreateFollowUpRequest{
			DealStage:        "45",
			NextFollowupDate: plus(-1),
		})
		assert.ErrorIs(t, err, ErrFollowUpDateInPast)
	})

	t.Run("GarbageDate", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane", 10000, w.agent, "Acme Bank")
		_, err := newFollowUpFlow(w, now).CreateFollowUp(ctx, w.admin.ID, d.ID, &dto.CreateFollowUpRequest{
			DealStage:        "2",
			NextFollowupDate: utils.ToPtr("next tuesday"),
		})
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("OnlyAssignedAgentOrAdmin", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane", 10000, w.agent, "Acme Bank")
		flow := newFollowUpFlow(w, now)

		_, err := flow.CreateFollowUp(ctx, w.agent2.ID, d.ID, &dto.CreateFollowUpRequest{DealStage: "2"})
		assert.ErrorIs(t, err, ErrDebtorNotFound)

		_, err = flow.CreateFollowUp(ctx, w.client.ID, d.ID, &dto.CreateFollowUpRequest{DealStage: "2"})
		assert.ErrorIs(t, err, ErrReadOnlyRole)

		_, err = flow.CreateFollowUp(ctx, w.admin.ID, d.ID, &dto.CreateFollowUpRequest{DealStage: "2"})
		assert.NoError(t, err)
	})
}

func TestFollowUpFlow_ListFollowUps(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	w := newTestWorld()
	mine := w.addDebtor("Mine", 100, w.agent, "Acme Bank")
	theirs := w.addDebtor("Theirs", 100, w.agent2, "Acme Bank")
	for _, fu := range []*models.FollowUp{
		{DebtorID: mine.ID, AgentID: utils.ToPtr(w.agent.ID), DealStage: "2", FollowUpDate: now.AddDate(0, 0, -1)},
		{DebtorID: mine.ID, AgentID: utils.ToPtr(w.agent.ID), DealStage: "2", FollowUpDate: now.AddDate(0, -2, 0)},
		{DebtorID: theirs.ID, AgentID: utils.ToPtr(w.agent2.ID), DealStage: "3", FollowUpDate: now.AddDate(0, 0, -2)},
	} {
		require.NoError(t, w.followUps.Save(ctx, fu))
	}
	flow := newFollowUpFlow(w, now)

	out, err := flow.ListFollowUps(ctx, w.agent.ID, &dto.ListFollowUpsRequest{AgentID: utils.ToPtr(w.agent2.ID)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Pagination.Total)

	out, err = flow.ListFollowUps(ctx, w.admin.ID, &dto.ListFollowUpsRequest{AgentID: utils.ToPtr(w.agent2.ID)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Pagination.Total)

	out, err = flow.ListFollowUps(ctx, w.admin.ID, &dto.ListFollowUpsRequest{Period: "week"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Pagination.Total)

	_, err = flow.ListFollowUps(ctx, w.admin.ID, &dto.ListFollowUpsRequest{Period: "decade"})
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}
