// Package scheduler runs periodic background jobs next to the API server
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const maxListedDebtors = 50

// ReminderSender is the slice of NotificationService the reminder needs
type ReminderSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type agentLister interface {
	ByFilter(ctx context.Context, filter models.UserFilter, orderBy string, limit, offset int) ([]*models.User, error)
}

type debtorLister interface {
	ByFilter(ctx context.Context, filter models.DebtorFilter, orderBy string, limit, offset int) ([]*models.Debtor, error)
	Count(ctx context.Context, filter models.DebtorFilter) (int64, error)
}

// FollowUpReminder emails every active agent the debtors whose next follow-up
// is due today or already overdue. Each day is sent at most once; with redis
// the guard is shared across instances.
type FollowUpReminder struct {
	users    agentLister
	debtors  debtorLister
	sender   ReminderSender
	rc       redis.UniversalClient
	prefix   string
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	lastDay string
}

func NewFollowUpReminder(
	users agentLister,
	debtors debtorLister,
	sender ReminderSender,
	rc redis.UniversalClient,
	prefix string,
	interval time.Duration,
	log *zap.Logger,
) *FollowUpReminder {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FollowUpReminder{
		users:    users,
		debtors:  debtors,
		sender:   sender,
		rc:       rc,
		prefix:   prefix,
		interval: interval,
		log:      log.Named("follow_up_reminder"),
		now:      utils.UTCNow,
	}
}

// Start launches the loop in a background goroutine and returns a stop function
func (s *FollowUpReminder) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *FollowUpReminder) runOnce(ctx context.Context) {
	day := s.now().Format(time.DateOnly)
	claimed, err := s.claimDay(ctx, day)
	if err != nil {
		s.log.Warn("failed to claim reminder day", zap.String("day", day), zap.Error(err))
		return
	}
	if !claimed {
		return
	}

	sent, err := s.sendReminders(ctx)
	if err != nil {
		s.log.Error("reminder run failed", zap.String("day", day), zap.Error(err))
		return
	}
	s.log.Info("reminders sent", zap.String("day", day), zap.Int("agents", sent))
}

// claimDay reports whether this process owns today's run
func (s *FollowUpReminder) claimDay(ctx context.Context, day string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastDay == day {
		return false, nil
	}
	if s.rc != nil {
		ok, err := s.rc.SetNX(ctx, s.prefix+"scheduler:follow_up_reminder:"+day, "1", 36*time.Hour).Result()
		if err != nil {
			return false, err
		}
		if !ok {
			s.lastDay = day
			return false, nil
		}
	}
	s.lastDay = day
	return true, nil
}

func (s *FollowUpReminder) sendReminders(ctx context.Context) (int, error) {
	role := models.RoleAgent
	agents, err := s.users.ByFilter(ctx, models.UserFilter{Role: &role, IsActive: utils.ToPtr(true)}, "id ASC", 0, 0)
	if err != nil {
		return 0, fmt.Errorf("list agents: %w", err)
	}

	tomorrow := utils.StartOfDay(s.now()).AddDate(0, 0, 1)
	sent := 0
	for _, agent := range agents {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if strings.TrimSpace(agent.Email) == "" {
			continue
		}
		filter := models.DebtorFilter{AssignedTo: &agent.ID, OverdueBefore: &tomorrow}
		total, err := s.debtors.Count(ctx, filter)
		if err != nil {
			s.log.Warn("count due debtors failed", zap.Uint("agent_id", agent.ID), zap.Error(err))
			continue
		}
		if total == 0 {
			continue
		}
		due, err := s.debtors.ByFilter(ctx, filter, "debtors.next_followup_date ASC", maxListedDebtors, 0)
		if err != nil {
			s.log.Warn("list due debtors failed", zap.Uint("agent_id", agent.ID), zap.Error(err))
			continue
		}

		subject := fmt.Sprintf("%d follow-ups due", total)
		if err := s.sender.SendEmail(ctx, agent.Email, subject, reminderBody(agent, due, total, s.now())); err != nil {
			s.log.Warn("reminder email failed", zap.Uint("agent_id", agent.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

func reminderBody(agent *models.User, due []*models.Debtor, total int64, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nYou have %d debtors with a follow-up due on or before %s.\n\n",
		agent.FullName, total, now.Format(time.DateOnly))
	for _, d := range due {
		marker := ""
		if d.IsOverdue(now) {
			marker = " (overdue)"
		}
		date := ""
		if d.NextFollowupDate != nil {
			date = d.NextFollowupDate.Format(time.DateOnly)
		}
		fmt.Fprintf(&b, "- %s, %s, %s%s\n", d.Name, d.DebtAmount.StringFixed(2), date, marker)
	}
	if int64(len(due)) < total {
		fmt.Fprintf(&b, "... and %d more\n", total-int64(len(due)))
	}
	return b.String()
}
