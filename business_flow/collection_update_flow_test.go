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

func newCollectionUpdateFlow(w *testWorld, now time.Time) *CollectionUpdateFlowImpl {
	flow := NewCollectionUpdateFlow(w.users, w.debtors, w.updates).(*CollectionUpdateFlowImpl)
	flow.now = fixedClock(now)
	return flow
}

func (w *testWorld) addUpdate(debtor *models.Debtor, agent *models.User, notes string, on time.Time) *models.CollectionUpdate {
	c := &models.CollectionUpdate{
		DebtorID:        debtor.ID,
		AgentID:         utils.ToPtr(agent.ID),
		UpdateDate:      on,
		CollectionNotes: notes,
	}
	_ = w.updates.Save(context.Background(), c)
	return c
}

func TestCollectionUpdateFlow_CreateUpdate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

	t.Run("AssignedAgent", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane Doe", 10000, w.agent, "Acme Bank")

		out, err := newCollectionUpdateFlow(w, now).CreateUpdate(ctx, w.agent.ID, d.ID, &dto.CreateCollectionUpdateRequest{
			CollectionNotes: "  asked for statement  ",
		})
		require.NoError(t, err)
		assert.Equal(t, "asked for statement", out.CollectionNotes)
		assert.Equal(t, "Jane Doe", out.DebtorName)
		assert.Equal(t, utils.ToPtr(w.agent.ID), out.AgentID)

		rows, _ := w.updates.ByFilter(ctx, models.CollectionUpdateFilter{DebtorID: &d.ID}, "", 0, 0)
		require.Len(t, rows, 1)
		assert.Equal(t, now, rows[0].UpdateDate)
	})

	cases := []struct {
		name    string
		as      func(w *testWorld) *models.User
		owner   func(w *testWorld) *models.User
		notes   string
		wantErr error
	}{
		{"BlankNotes", func(w *testWorld) *models.User { return w.agent }, func(w *testWorld) *models.User { return w.agent }, "   ", ErrValidation},
		{"OtherAgentsDebtor", func(w *testWorld) *models.User { return w.agent }, func(w *testWorld) *models.User { return w.agent2 }, "note", ErrDebtorNotFound},
		{"UnassignedDebtor", func(w *testWorld) *models.User { return w.agent }, func(w *testWorld) *models.User { return nil }, "note", ErrDebtorNotFound},
		{"ClientIsReadOnly", func(w *testWorld) *models.User { return w.client }, func(w *testWorld) *models.User { return w.agent }, "note", ErrReadOnlyRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld()
			d := w.addDebtor("Jane Doe", 10000, tc.owner(w), w.client.FullName)

			_, err := newCollectionUpdateFlow(w, now).CreateUpdate(ctx, tc.as(w).ID, d.ID, &dto.CreateCollectionUpdateRequest{
				CollectionNotes: tc.notes,
			})
			assert.ErrorIs(t, err, tc.wantErr)
			n, _ := w.updates.Count(ctx, models.CollectionUpdateFilter{})
			assert.Zero(t, n)
		})
	}

	t.Run("AdminWritesAnyDebtor", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane Doe", 10000, nil, "Acme Bank")
		_, err := newCollectionUpdateFlow(w, now).CreateUpdate(ctx, w.admin.ID, d.ID, &dto.CreateCollectionUpdateRequest{CollectionNotes: "escalated"})
		assert.NoError(t, err)
	})
}

func TestCollectionUpdateFlow_ListUpdatesIsScoped(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

	w := newTestWorld()
	mine := w.addDebtor("Mine", 1000, w.agent, w.client.FullName)
	theirs := w.addDebtor("Theirs", 1000, w.agent2, "Other Bank")
	w.addUpdate(mine, w.agent, "called", now.AddDate(0, 0, -1))
	w.addUpdate(mine, w.agent, "old note", now.AddDate(0, -2, 0))
	w.addUpdate(theirs, w.agent2, "visited", now.AddDate(0, 0, -2))
	flow := newCollectionUpdateFlow(w, now)

	cases := []struct {
		name string
		user *models.User
		req  dto.ListCollectionUpdatesRequest
		want int
	}{
		{"Admin", w.admin, dto.ListCollectionUpdatesRequest{}, 3},
		{"AdminByAgent", w.admin, dto.ListCollectionUpdatesRequest{AgentID: utils.ToPtr(w.agent2.ID)}, 1},
		{"AdminThisMonth", w.admin, dto.ListCollectionUpdatesRequest{Period: "this_month"}, 2},
		{"Agent", w.agent, dto.ListCollectionUpdatesRequest{}, 2},
		{"AgentCannotWidenByAgentID", w.agent, dto.ListCollectionUpdatesRequest{AgentID: utils.ToPtr(w.agent2.ID)}, 2},
		{"AgentAskingForHiddenDebtor", w.agent, dto.ListCollectionUpdatesRequest{DebtorID: utils.ToPtr(theirs.ID)}, 0},
		{"Client", w.client, dto.ListCollectionUpdatesRequest{}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := flow.ListUpdates(ctx, tc.user.ID, &tc.req)
			require.NoError(t, err)
			assert.Len(t, out.Updates, tc.want)
			assert.EqualValues(t, tc.want, out.Pagination.Total)
		})
	}

	t.Run("UnknownPeriod", func(t *testing.T) {
		_, err := flow.ListUpdates(ctx, w.admin.ID, &dto.ListCollectionUpdatesRequest{Period: "decade"})
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("DebtorUpdatesHiddenFromOtherAgent", func(t *testing.T) {
		_, err := flow.ListDebtorUpdates(ctx, w.agent2.ID, mine.ID)
		assert.ErrorIs(t, err, ErrDebtorNotFound)

		rows, err := flow.ListDebtorUpdates(ctx, w.client.ID, mine.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})
}
