package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type fakeAgents struct {
	users []*models.User
	err   error
}

func (f *fakeAgents) ByFilter(ctx context.Context, filter models.UserFilter, orderBy string, limit, offset int) ([]*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.User
	for _, u := range f.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.IsActive != nil && (u.IsActive == nil || *u.IsActive != *filter.IsActive) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

type fakeDebtors struct {
	rows []*models.Debtor
}

func (f *fakeDebtors) match(filter models.DebtorFilter) []*models.Debtor {
	var out []*models.Debtor
	for _, d := range f.rows {
		if filter.AssignedTo != nil && (d.AssignedTo == nil || *d.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if filter.OverdueBefore != nil && (d.NextFollowupDate == nil || !d.NextFollowupDate.Before(*filter.OverdueBefore)) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (f *fakeDebtors) ByFilter(ctx context.Context, filter models.DebtorFilter, orderBy string, limit, offset int) ([]*models.Debtor, error) {
	rows := f.match(filter)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeDebtors) Count(ctx context.Context, filter models.DebtorFilter) (int64, error) {
	return int64(len(f.match(filter))), nil
}

type sentEmail struct {
	to, subject, body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentEmail
	fail map[string]bool
}

func (f *fakeSender) SendEmail(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[to] {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func dayAt(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := utils.ParseDate(value)
	require.NoError(t, err)
	return d
}

func reminderFixture(t *testing.T) (*fakeAgents, *fakeDebtors) {
	agentA := &models.User{ID: 1, FullName: "Agent A", Email: "a@example.com", Role: models.RoleAgent, IsActive: utils.ToPtr(true)}
	agentB := &models.User{ID: 2, FullName: "Agent B", Email: "b@example.com", Role: models.RoleAgent, IsActive: utils.ToPtr(true)}
	inactive := &models.User{ID: 3, FullName: "Gone", Email: "c@example.com", Role: models.RoleAgent, IsActive: utils.ToPtr(false)}
	admin := &models.User{ID: 4, FullName: "Admin", Email: "admin@example.com", Role: models.RoleAdmin, IsActive: utils.ToPtr(true)}

	debtors := []*models.Debtor{
		{ID: 10, Name: "Overdue", AssignedTo: utils.ToPtr(uint(1)), DebtAmount: decimal.NewFromInt(500), NextFollowupDate: utils.ToPtr(dayAt(t, "2026-03-01"))},
		{ID: 11, Name: "Today", AssignedTo: utils.ToPtr(uint(1)), DebtAmount: decimal.NewFromInt(250), NextFollowupDate: utils.ToPtr(dayAt(t, "2026-03-10"))},
		{ID: 12, Name: "Later", AssignedTo: utils.ToPtr(uint(1)), DebtAmount: decimal.NewFromInt(100), NextFollowupDate: utils.ToPtr(dayAt(t, "2026-03-20"))},
		{ID: 13, Name: "Not due", AssignedTo: utils.ToPtr(uint(2)), DebtAmount: decimal.NewFromInt(100), NextFollowupDate: utils.ToPtr(dayAt(t, "2026-04-01"))},
		{ID: 14, Name: "Inactive agent", AssignedTo: utils.ToPtr(uint(3)), DebtAmount: decimal.NewFromInt(100), NextFollowupDate: utils.ToPtr(dayAt(t, "2026-03-01"))},
	}
	return &fakeAgents{users: []*models.User{agentA, agentB, inactive, admin}}, &fakeDebtors{rows: debtors}
}

func TestFollowUpReminder_SendsDueAndOverdueToActiveAgents(t *testing.T) {
	agents, debtors := reminderFixture(t)
	sender := &fakeSender{}
	r := NewFollowUpReminder(agents, debtors, sender, nil, "crm:", time.Hour, zap.NewNop())
	r.now = func() time.Time { return dayAt(t, "2026-03-10").Add(9 * time.Hour) }

	r.runOnce(context.Background())

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "a@example.com", msg.to)
	assert.Equal(t, "2 follow-ups due", msg.subject)
	assert.Contains(t, msg.body, "- Overdue, 500.00, 2026-03-01 (overdue)")
	assert.Contains(t, msg.body, "- Today, 250.00, 2026-03-10\n")
	assert.NotContains(t, msg.body, "Later")
}

func TestFollowUpReminder_RunsOncePerDay(t *testing.T) {
	agents, debtors := reminderFixture(t)
	sender := &fakeSender{}
	r := NewFollowUpReminder(agents, debtors, sender, nil, "crm:", time.Hour, zap.NewNop())
	now := dayAt(t, "2026-03-10").Add(9 * time.Hour)
	r.now = func() time.Time { return now }

	r.runOnce(context.Background())
	r.runOnce(context.Background())
	assert.Equal(t, 1, sender.count())

	now = now.Add(24 * time.Hour)
	r.runOnce(context.Background())
	assert.Equal(t, 2, sender.count())
}

func TestFollowUpReminder_ContinuesAfterSendFailure(t *testing.T) {
	agents, debtors := reminderFixture(t)
	debtors.rows[3].NextFollowupDate = utils.ToPtr(dayAt(t, "2026-03-09"))
	sender := &fakeSender{fail: map[string]bool{"a@example.com": true}}
	r := NewFollowUpReminder(agents, debtors, sender, nil, "crm:", time.Hour, zap.NewNop())
	r.now = func() time.Time { return dayAt(t, "2026-03-10") }

	sent, err := r.sendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "b@example.com", sender.sent[0].to)
}

func TestFollowUpReminder_ListErrorIsReported(t *testing.T) {
	sender := &fakeSender{}
	r := NewFollowUpReminder(&fakeAgents{err: errors.New("db down")}, &fakeDebtors{}, sender, nil, "", time.Hour, nil)

	_, err := r.sendReminders(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Zero(t, sender.count())
}

func TestReminderBody_TruncatesLongLists(t *testing.T) {
	agent := &models.User{FullName: "Agent A"}
	due := []*models.Debtor{{Name: "One", DebtAmount: decimal.NewFromInt(1)}}
	body := reminderBody(agent, due, 3, dayAt(t, "2026-03-10"))
	assert.Contains(t, body, "Hello Agent A")
	assert.Contains(t, body, "... and 2 more")
}

func TestFollowUpReminder_StartStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	agents, debtors := reminderFixture(t)
	sender := &fakeSender{}
	r := NewFollowUpReminder(agents, debtors, sender, nil, "", time.Hour, zap.NewNop())
	r.now = func() time.Time { return dayAt(t, "2026-03-10") }

	stop := r.Start(context.Background())
	require.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, 10*time.Millisecond)
	stop()
}
