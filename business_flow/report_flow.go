package businessflow

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/repository"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	monthlyReportMonths     = 12
	defaultPerformanceRange = 30 * 24 * time.Hour
	unassignedKey           = "unassigned"
)

// ReportFlow builds the dashboard and the management reports. Every figure
// is recomputed from the current rows.
type ReportFlow interface {
	Dashboard(ctx context.Context, userID uint) (*dto.DashboardResponse, error)
	MonthlyReport(ctx context.Context, userID uint) (*dto.MonthlyReportResponse, error)
	PerformanceReport(ctx context.Context, userID uint, req *dto.PerformanceReportRequest) (*dto.PerformanceReportResponse, error)
	PTPReport(ctx context.Context, userID uint) (*dto.PTPReportResponse, error)
	AgentActivities(ctx context.Context, userID uint, req *dto.AgentActivitiesRequest) (*dto.AgentActivitiesResponse, error)
}

type ReportFlowImpl struct {
	userRepo     repository.UserRepository
	debtorRepo   repository.DebtorRepository
	paymentRepo  repository.PaymentRepository
	followUpRepo repository.FollowUpRepository
	ptpRepo      repository.PTPRepository
	updateRepo   repository.CollectionUpdateRepository
	eventRepo    repository.EventLogRepository
	callRepo     repository.CallLogRepository
	now          func() time.Time
}

func NewReportFlow(
	userRepo repository.UserRepository,
	debtorRepo repository.DebtorRepository,
	paymentRepo repository.PaymentRepository,
	followUpRepo repository.FollowUpRepository,
	ptpRepo repository.PTPRepository,
	updateRepo repository.CollectionUpdateRepository,
	eventRepo repository.EventLogRepository,
	callRepo repository.CallLogRepository,
) ReportFlow {
	return &ReportFlowImpl{
		userRepo:     userRepo,
		debtorRepo:   debtorRepo,
		paymentRepo:  paymentRepo,
		followUpRepo: followUpRepo,
		ptpRepo:      ptpRepo,
		updateRepo:   updateRepo,
		eventRepo:    eventRepo,
		callRepo:     callRepo,
		now:          utils.UTCNow,
	}
}

// Dashboard loads the scoped debtors and payments in parallel and aggregates them
func (f *ReportFlowImpl) Dashboard(ctx context.Context, userID uint) (*dto.DashboardResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}

	var (
		debtors  []*models.Debtor
		payments []*models.Payment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		debtors, err = f.debtorRepo.ByFilter(gctx, models.DebtorFilter{Scope: scope}, "", 0, 0)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = f.paymentRepo.ByFilter(gctx, models.PaymentFilter{Scope: scope}, "", 0, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := f.now()
	s := SummarizePortfolio(debtors, payments, now)
	pending := 0
	for _, p := range payments {
		if !p.IsVerified() {
			pending++
		}
	}
	return &dto.DashboardResponse{
		DebtorsCount:      s.DebtorsCount,
		TotalDebt:         s.TotalDebt,
		TotalRecovered:    s.TotalRecovered,
		ApprovedRecovered: s.ApprovedRecovered,
		TotalBalance:      s.TotalBalance,
		WinPercentage:     s.WinPercentage,
		MTDCollected:      s.MTDCollected,
		OverdueCount:      s.OverdueCount,
		UnassignedCount:   s.UnassignedCount,
		PendingPayments:   pending,
		GeneratedAt:       formatTime(now),
	}, nil
}

// MonthlyReport buckets the scoped payments of the trailing twelve months by payment_date
func (f *ReportFlowImpl) MonthlyReport(ctx context.Context, userID uint) (*dto.MonthlyReportResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireStaff(scope); err != nil {
		return nil, err
	}

	now := f.now()
	first := utils.StartOfMonth(now).AddDate(0, -(monthlyReportMonths - 1), 0)
	payments, err := f.paymentRepo.ByFilter(ctx, models.PaymentFilter{Scope: scope, PaidAfter: &first}, "", 0, 0)
	if err != nil {
		return nil, err
	}

	return &dto.MonthlyReportResponse{Months: MonthlyBuckets(payments, first, monthlyReportMonths)}, nil
}

// MonthlyBuckets groups payments into consecutive calendar months starting at first
func MonthlyBuckets(payments []*models.Payment, first time.Time, months int) []dto.MonthlyBucket {
	buckets := make([]dto.MonthlyBucket, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		buckets[i] = dto.MonthlyBucket{Month: key, Total: decimal.Zero, Verified: decimal.Zero}
		index[key] = i
	}
	for _, p := range payments {
		i, ok := index[p.PaymentDate.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		buckets[i].Total = buckets[i].Total.Add(p.Amount)
		buckets[i].Count++
		if p.IsVerified() {
			buckets[i].Verified = buckets[i].Verified.Add(p.Amount)
		}
	}
	return buckets
}

// PerformanceReport compares agents since a date (default: the last 30 days)
func (f *ReportFlowImpl) PerformanceReport(ctx context.Context, userID uint, req *dto.PerformanceReportRequest) (*dto.PerformanceReportResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(scope); err != nil {
		return nil, err
	}

	since := f.now().Add(-defaultPerformanceRange)
	if req != nil && strings.TrimSpace(req.Since) != "" {
		parsed, err := utils.ParseDate(strings.TrimSpace(req.Since))
		if err != nil {
			return nil, ErrInvalidDate
		}
		since = parsed
	}

	var (
		followUps []repository.GroupCount
		ptps      []repository.GroupCount
		calls     []repository.GroupCount
		payments  []*models.Payment
		names     map[uint]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		followUps, err = f.followUpRepo.CountByAgent(gctx, models.FollowUpFilter{CreatedAfter: &since})
		return err
	})
	g.Go(func() error {
		var err error
		ptps, err = f.ptpRepo.CountByStatus(gctx, models.PTPFilter{DueAfter: &since})
		return err
	})
	g.Go(func() error {
		var err error
		calls, err = f.callRepo.CountByAgent(gctx, models.CallLogFilter{StartedAfter: &since})
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = f.paymentRepo.ByFilter(gctx, models.PaymentFilter{PaidAfter: &since}, "", 0, 0)
		return err
	})
	g.Go(func() error {
		var err error
		names, err = f.agentDirectory(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	collected := map[string]decimal.Decimal{}
	for _, p := range payments {
		key := unassignedKey
		if p.Debtor != nil && p.Debtor.AssignedTo != nil {
			key = strconv.FormatUint(uint64(*p.Debtor.AssignedTo), 10)
		}
		collected[key] = collected[key].Add(p.Amount)
	}
	byAgent := make([]dto.AmountByKey, 0, len(collected))
	for key, amount := range collected {
		byAgent = append(byAgent, dto.AmountByKey{Key: key, Label: agentLabel(names, key), Amount: amount})
	}
	sort.Slice(byAgent, func(i, j int) bool { return byAgent[i].Amount.GreaterThan(byAgent[j].Amount) })

	statuses := make([]dto.CountByKey, 0, len(ptps))
	for _, row := range ptps {
		statuses = append(statuses, dto.CountByKey{Key: row.Key, Count: row.Count})
	}
	callRows := make([]dto.CountByKey, 0, len(calls))
	for _, row := range calls {
		callRows = append(callRows, dto.CountByKey{Key: row.Key, Label: row.Key, Count: row.Count})
	}

	return &dto.PerformanceReportResponse{
		Since:            formatTime(since),
		FollowUpsByAgent: labelCounts(followUps, names),
		PTPsByStatus:     statuses,
		CollectedByAgent: byAgent,
		CallsByAgent:     callRows,
		TotalCollected:   TotalPaid(payments),
	}, nil
}

// PTPReport summarizes the scoped promises to pay
func (f *ReportFlowImpl) PTPReport(ctx context.Context, userID uint) (*dto.PTPReportResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireStaff(scope); err != nil {
		return nil, err
	}

	rows, err := f.ptpRepo.ByFilter(ctx, models.PTPFilter{Scope: scope}, "ptp_date ASC, id ASC", 0, 0)
	if err != nil {
		return nil, err
	}

	today := utils.StartOfDay(f.now())
	weekEnd := today.AddDate(0, 0, 7)
	counts := map[string]int64{}
	resp := &dto.PTPReportResponse{
		TotalPromised: decimal.Zero,
		TotalHonored:  decimal.Zero,
		DueThisWeek:   []dto.PTPDTO{},
	}
	for _, p := range rows {
		counts[p.Status]++
		resp.TotalPromised = resp.TotalPromised.Add(p.PTPAmount)
		resp.TotalHonored = resp.TotalHonored.Add(p.AmountPaid)
		if p.Status != models.PTPStatusPending {
			continue
		}
		switch {
		case p.PTPDate.Before(today):
			resp.BrokenPromises++
		case p.PTPDate.Before(weekEnd):
			resp.DueThisWeek = append(resp.DueThisWeek, ToPTPDTO(*p))
		}
	}
	for _, status := range []string{models.PTPStatusPending, models.PTPStatusPartiallyHonored, models.PTPStatusFullyHonored} {
		resp.ByStatus = append(resp.ByStatus, dto.CountByKey{Key: status, Count: counts[status]})
	}
	return resp, nil
}

// AgentActivities counts follow-ups, collection updates and events per agent
func (f *ReportFlowImpl) AgentActivities(ctx context.Context, userID uint, req *dto.AgentActivitiesRequest) (*dto.AgentActivitiesResponse, error) {
	_, scope, err := sessionScope(ctx, f.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(scope); err != nil {
		return nil, err
	}

	var after *time.Time
	if req != nil && req.Period != "" {
		start, ok := utils.PeriodStart(req.Period, f.now())
		if !ok {
			return nil, ErrInvalidPeriod
		}
		after = &start
	}

	var (
		agents    []*models.User
		followUps []repository.GroupCount
		updates   []repository.GroupCount
		events    []repository.GroupCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		agents, err = f.userRepo.ByFilter(gctx, models.UserFilter{Role: utils.ToPtr(models.RoleAgent)}, "full_name ASC", 0, 0)
		return err
	})
	g.Go(func() error {
		var err error
		followUps, err = f.followUpRepo.CountByAgent(gctx, models.FollowUpFilter{CreatedAfter: after})
		return err
	})
	g.Go(func() error {
		var err error
		updates, err = f.updateRepo.CountByAgent(gctx, models.CollectionUpdateFilter{UpdatedAfter: after})
		return err
	})
	g.Go(func() error {
		var err error
		events, err = f.eventRepo.CountByUser(gctx, models.EventLogFilter{After: after})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fu, cu, ev := countIndex(followUps), countIndex(updates), countIndex(events)
	out := make([]dto.AgentActivity, 0, len(agents))
	for _, a := range agents {
		key := strconv.FormatUint(uint64(a.ID), 10)
		out = append(out, dto.AgentActivity{
			AgentID:           a.ID,
			AgentName:         a.FullName,
			FollowUps:         fu[key],
			CollectionUpdates: cu[key],
			Events:            ev[key],
		})
	}
	return &dto.AgentActivitiesResponse{Agents: out}, nil
}

func (f *ReportFlowImpl) agentDirectory(ctx context.Context) (map[uint]string, error) {
	users, err := f.userRepo.ByFilter(ctx, models.UserFilter{}, "", 0, 0)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	return names, nil
}

func agentLabel(names map[uint]string, key string) string {
	if key == "" || key == unassignedKey {
		return "Unassigned"
	}
	id, err := utils.ParseUint(key)
	if err != nil {
		return key
	}
	if name, ok := names[id]; ok {
		return name
	}
	return key
}

func labelCounts(rows []repository.GroupCount, names map[uint]string) []dto.CountByKey {
	out := make([]dto.CountByKey, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.CountByKey{Key: r.Key, Label: agentLabel(names, r.Key), Count: r.Count})
	}
	return out
}

func countIndex(rows []repository.GroupCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] += r.Count
	}
	return out
}
