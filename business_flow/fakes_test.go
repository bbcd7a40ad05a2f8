package businessflow

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/debt-collection-crm/app/services"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/repository"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// memRepo is an in-memory table keyed by the entity id, ordered by insertion
type memRepo[T any, F any] struct {
	mu    sync.Mutex
	rows  []*T
	next  uint
	id    func(*T) *uint
	match func(*T, F) bool
}

func newMemRepo[T any, F any](id func(*T) *uint, match func(*T, F) bool) *memRepo[T, F] {
	return &memRepo[T, F]{id: id, match: match}
}

func (r *memRepo[T, F]) ByID(ctx context.Context, id uint) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if *r.id(row) == id {
			return row, nil
		}
	}
	return nil, nil
}

func (r *memRepo[T, F]) ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error) {
	all := r.find(func(row *T) bool { return r.match(row, filter) })
	if offset > 0 {
		if offset >= len(all) {
			return []*T{}, nil
		}
		all = all[offset:]
	}
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memRepo[T, F]) Save(ctx context.Context, entity *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(entity)
	return nil
}

func (r *memRepo[T, F]) SaveBatch(ctx context.Context, entities []*T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entities {
		r.insertLocked(e)
	}
	return nil
}

func (r *memRepo[T, F]) Count(ctx context.Context, filter F) (int64, error) {
	rows, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), nil
}

func (r *memRepo[T, F]) Exists(ctx context.Context, filter F) (bool, error) {
	n, _ := r.Count(ctx, filter)
	return n > 0, nil
}

func (r *memRepo[T, F]) insertLocked(entity *T) {
	id := r.id(entity)
	if *id == 0 {
		r.next++
		*id = r.next
	} else if *id > r.next {
		r.next = *id
	}
	r.rows = append(r.rows, entity)
}

func (r *memRepo[T, F]) find(keep func(*T) bool) []*T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*T, 0, len(r.rows))
	for _, row := range r.rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (r *memRepo[T, F]) remove(keep func(*T) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	var removed int64
	for _, row := range r.rows {
		if keep(row) {
			kept = append(kept, row)
		} else {
			removed++
		}
	}
	r.rows = kept
	return removed
}

func (r *memRepo[T, F]) each(fn func(*T)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		fn(row)
	}
}

func idKey(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}

func groupBy[T any](rows []*T, key func(*T) string) []repository.GroupCount {
	counts := map[string]int64{}
	order := []string{}
	for _, row := range rows {
		k := key(row)
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}
	out := make([]repository.GroupCount, 0, len(order))
	for _, k := range order {
		out = append(out, repository.GroupCount{Key: k, Count: counts[k]})
	}
	return out
}

func inWindow(t time.Time, after, before *time.Time) bool {
	if after != nil && t.Before(*after) {
		return false
	}
	if before != nil && !t.Before(*before) {
		return false
	}
	return true
}

func uintEq(v *uint, want *uint) bool {
	return want == nil || (v != nil && *v == *want)
}

// users

type fakeUserRepo struct {
	*memRepo[models.User, models.UserFilter]
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{newMemRepo(
		func(u *models.User) *uint { return &u.ID },
		func(u *models.User, f models.UserFilter) bool {
			if f.ID != nil && u.ID != *f.ID {
				return false
			}
			if len(f.IDs) > 0 && !containsID(f.IDs, u.ID) {
				return false
			}
			if f.Email != nil && !strings.EqualFold(u.Email, *f.Email) {
				return false
			}
			if f.Role != nil && u.Role != *f.Role {
				return false
			}
			if f.IsActive != nil && utils.IsTrue(u.IsActive) != *f.IsActive {
				return false
			}
			return true
		},
	)}
}

func (r *fakeUserRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	rows := r.find(func(u *models.User) bool { return strings.EqualFold(u.Email, strings.TrimSpace(email)) })
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *fakeUserRepo) ClientByFullName(ctx context.Context, fullName string) (*models.User, error) {
	rows := r.find(func(u *models.User) bool { return u.Role == models.RoleClient && u.FullName == fullName })
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.rows {
		if u.ID == user.ID {
			r.rows[i] = user
		}
	}
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	r.each(func(u *models.User) {
		if u.ID == id {
			u.LastLoginAt = &at
		}
	})
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uint) (int64, error) {
	return r.remove(func(u *models.User) bool { return u.ID != id }), nil
}

// debtors

type fakeDebtorRepo struct {
	*memRepo[models.Debtor, models.DebtorFilter]
}

func newFakeDebtorRepo() *fakeDebtorRepo {
	return &fakeDebtorRepo{newMemRepo(
		func(d *models.Debtor) *uint { return &d.ID },
		func(d *models.Debtor, f models.DebtorFilter) bool {
			if f.Scope != nil && !f.Scope.Allows(d) {
				return false
			}
			if f.ID != nil && d.ID != *f.ID {
				return false
			}
			if len(f.IDs) > 0 && !containsID(f.IDs, d.ID) {
				return false
			}
			if !uintEq(d.AssignedTo, f.AssignedTo) {
				return false
			}
			if f.Unassigned != nil && *f.Unassigned != (d.AssignedTo == nil) {
				return false
			}
			if f.Client != nil && d.Client != *f.Client {
				return false
			}
			if f.DealStage != nil && d.DealStage != *f.DealStage {
				return false
			}
			if f.OverdueBefore != nil && (d.NextFollowupDate == nil || !d.NextFollowupDate.Before(*f.OverdueBefore)) {
				return false
			}
			if f.Search != nil {
				q := strings.ToLower(*f.Search)
				hay := strings.ToLower(d.Name + " " + deref(d.Phone) + " " + deref(d.AccountNumber))
				if !strings.Contains(hay, q) {
					return false
				}
			}
			return true
		},
	)}
}

func (r *fakeDebtorRepo) Update(ctx context.Context, debtor *models.Debtor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.rows {
		if d.ID == debtor.ID {
			r.rows[i] = debtor
		}
	}
	return nil
}

func (r *fakeDebtorRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) (bool, error) {
	found := false
	r.each(func(d *models.Debtor) {
		if d.ID != id {
			return
		}
		found = true
		for k, v := range fields {
			switch k {
			case "name":
				d.Name = v.(string)
			case "phone":
				d.Phone = v.(*string)
			case "email":
				d.Email = v.(*string)
			case "id_number":
				d.IDNumber = v.(*string)
			case "account_number":
				d.AccountNumber = v.(*string)
			case "branch_manager":
				d.BranchManager = v.(*string)
			case "debt_amount":
				d.DebtAmount = v.(decimal.Decimal)
			case "deal_stage":
				d.DealStage = v.(string)
			case "client":
				d.Client = v.(string)
			case "client_user_id":
				d.ClientUserID = v.(*uint)
			case "tags":
				d.Tags = v.(pq.StringArray)
			case "assigned_to":
				d.AssignedTo = v.(*uint)
			case "next_followup_date":
				d.NextFollowupDate = v.(*time.Time)
			case "collection_update":
				d.CollectionUpdate = v.(*string)
			case "updated_at":
				d.UpdatedAt = v.(time.Time)
			}
		}
	})
	return found, nil
}

func (r *fakeDebtorRepo) Delete(ctx context.Context, ids ...uint) (int64, error) {
	return r.remove(func(d *models.Debtor) bool { return !containsID(ids, d.ID) }), nil
}

func (r *fakeDebtorRepo) Reassign(ctx context.Context, ids []uint, agentID *uint) (int64, error) {
	var n int64
	r.each(func(d *models.Debtor) {
		if containsID(ids, d.ID) {
			d.AssignedTo = agentID
			n++
		}
	})
	return n, nil
}

func (r *fakeDebtorRepo) UnassignAgent(ctx context.Context, agentID uint) (int64, error) {
	var n int64
	r.each(func(d *models.Debtor) {
		if d.AssignedTo != nil && *d.AssignedTo == agentID {
			d.AssignedTo = nil
			n++
		}
	})
	return n, nil
}

func (r *fakeDebtorRepo) RenameClient(ctx context.Context, clientUserID uint, fullName string) (int64, error) {
	var n int64
	r.each(func(d *models.Debtor) {
		if d.ClientUserID != nil && *d.ClientUserID == clientUserID {
			d.Client = fullName
			n++
		}
	})
	return n, nil
}

func (r *fakeDebtorRepo) LinkClient(ctx context.Context, clientName string, clientUserID uint) (int64, error) {
	var n int64
	r.each(func(d *models.Debtor) {
		if d.ClientUserID == nil && d.Client == clientName {
			d.ClientUserID = utils.ToPtr(clientUserID)
			n++
		}
	})
	return n, nil
}

func (r *fakeDebtorRepo) ByPhone(ctx context.Context, phone string) (*models.Debtor, error) {
	tail := func(s string) string {
		s = utils.DigitsOnly(s)
		if len(s) > 9 {
			return s[len(s)-9:]
		}
		return s
	}
	want := tail(phone)
	if want == "" {
		return nil, nil
	}
	rows := r.find(func(d *models.Debtor) bool { return d.Phone != nil && tail(*d.Phone) == want })
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// debtorScoped matches a child row against the scope of its debtor
func debtorScoped(debtors *fakeDebtorRepo, debtorID uint, scope *models.AccessScope) bool {
	if scope == nil {
		return true
	}
	d, _ := debtors.ByID(context.Background(), debtorID)
	return d != nil && scope.Allows(d)
}

// payments

type fakePaymentRepo struct {
	*memRepo[models.Payment, models.PaymentFilter]
	debtors *fakeDebtorRepo
}

func newFakePaymentRepo(debtors *fakeDebtorRepo) *fakePaymentRepo {
	r := &fakePaymentRepo{debtors: debtors}
	r.memRepo = newMemRepo(
		func(p *models.Payment) *uint { return &p.ID },
		func(p *models.Payment, f models.PaymentFilter) bool {
			if !debtorScoped(debtors, p.DebtorID, f.Scope) {
				return false
			}
			if f.ID != nil && p.ID != *f.ID {
				return false
			}
			if f.DebtorID != nil && p.DebtorID != *f.DebtorID {
				return false
			}
			if len(f.DebtorIDs) > 0 && !containsID(f.DebtorIDs, p.DebtorID) {
				return false
			}
			if f.AgentID != nil {
				d, _ := debtors.ByID(context.Background(), p.DebtorID)
				if d == nil || !uintEq(d.AssignedTo, f.AgentID) {
					return false
				}
			}
			if f.Verified != nil && p.IsVerified() != *f.Verified {
				return false
			}
			return inWindow(p.PaymentDate, f.PaidAfter, f.PaidBefore)
		},
	)
	return r
}

func (r *fakePaymentRepo) ByFilter(ctx context.Context, filter models.PaymentFilter, orderBy string, limit, offset int) ([]*models.Payment, error) {
	rows, err := r.memRepo.ByFilter(ctx, filter, orderBy, limit, offset)
	for _, p := range rows {
		p.Debtor, _ = r.debtors.ByID(ctx, p.DebtorID)
	}
	return rows, err
}

func (r *fakePaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.rows {
		if p.ID == payment.ID {
			r.rows[i] = payment
		}
	}
	return nil
}

func (r *fakePaymentRepo) SumAmount(ctx context.Context, filter models.PaymentFilter) (decimal.Decimal, error) {
	rows, err := r.memRepo.ByFilter(ctx, filter, "", 0, 0)
	return TotalPaid(rows), err
}

func (r *fakePaymentRepo) Delete(ctx context.Context, id uint) (int64, error) {
	return r.remove(func(p *models.Payment) bool { return p.ID != id }), nil
}

// follow-ups

type fakeFollowUpRepo struct {
	*memRepo[models.FollowUp, models.FollowUpFilter]
}

func newFakeFollowUpRepo(debtors *fakeDebtorRepo) *fakeFollowUpRepo {
	return &fakeFollowUpRepo{newMemRepo(
		func(f *models.FollowUp) *uint { return &f.ID },
		func(fu *models.FollowUp, f models.FollowUpFilter) bool {
			if !debtorScoped(debtors, fu.DebtorID, f.Scope) {
				return false
			}
			if f.DebtorID != nil && fu.DebtorID != *f.DebtorID {
				return false
			}
			if !uintEq(fu.AgentID, f.AgentID) {
				return false
			}
			if f.DealStage != nil && fu.DealStage != *f.DealStage {
				return false
			}
			return inWindow(fu.FollowUpDate, f.CreatedAfter, f.CreatedBefore)
		},
	)}
}

func (r *fakeFollowUpRepo) ReassignAgent(ctx context.Context, debtorID uint, agentID *uint) (int64, error) {
	var n int64
	r.each(func(f *models.FollowUp) {
		if f.DebtorID == debtorID {
			f.AgentID = agentID
			n++
		}
	})
	return n, nil
}

func (r *fakeFollowUpRepo) CountByAgent(ctx context.Context, filter models.FollowUpFilter) ([]repository.GroupCount, error) {
	rows, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return groupBy(rows, func(f *models.FollowUp) string { return idKey(f.AgentID) }), nil
}

// PTPs

type fakePTPRepo struct {
	*memRepo[models.PTP, models.PTPFilter]
}

func newFakePTPRepo(debtors *fakeDebtorRepo) *fakePTPRepo {
	return &fakePTPRepo{newMemRepo(
		func(p *models.PTP) *uint { return &p.ID },
		func(p *models.PTP, f models.PTPFilter) bool {
			if !debtorScoped(debtors, p.DebtorID, f.Scope) {
				return false
			}
			if f.ID != nil && p.ID != *f.ID {
				return false
			}
			if f.DebtorID != nil && p.DebtorID != *f.DebtorID {
				return false
			}
			if !uintEq(p.AgentID, f.AgentID) {
				return false
			}
			if f.Status != nil && p.Status != *f.Status {
				return false
			}
			return inWindow(p.PTPDate, f.DueAfter, f.DueBefore)
		},
	)}
}

func (r *fakePTPRepo) Update(ctx context.Context, ptp *models.PTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.rows {
		if p.ID == ptp.ID {
			r.rows[i] = ptp
		}
	}
	return nil
}

func (r *fakePTPRepo) Delete(ctx context.Context, id uint) (int64, error) {
	return r.remove(func(p *models.PTP) bool { return p.ID != id }), nil
}

func (r *fakePTPRepo) CountByStatus(ctx context.Context, filter models.PTPFilter) ([]repository.GroupCount, error) {
	rows, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return groupBy(rows, func(p *models.PTP) string { return p.Status }), nil
}

// collection updates

type fakeCollectionUpdateRepo struct {
	*memRepo[models.CollectionUpdate, models.CollectionUpdateFilter]
}

func newFakeCollectionUpdateRepo(debtors *fakeDebtorRepo) *fakeCollectionUpdateRepo {
	return &fakeCollectionUpdateRepo{newMemRepo(
		func(c *models.CollectionUpdate) *uint { return &c.ID },
		func(c *models.CollectionUpdate, f models.CollectionUpdateFilter) bool {
			if !debtorScoped(debtors, c.DebtorID, f.Scope) {
				return false
			}
			if f.DebtorID != nil && c.DebtorID != *f.DebtorID {
				return false
			}
			if !uintEq(c.AgentID, f.AgentID) {
				return false
			}
			return inWindow(c.UpdateDate, f.UpdatedAfter, f.UpdatedBefore)
		},
	)}
}

func (r *fakeCollectionUpdateRepo) CountByAgent(ctx context.Context, filter models.CollectionUpdateFilter) ([]repository.GroupCount, error) {
	rows, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return groupBy(rows, func(c *models.CollectionUpdate) string { return idKey(c.AgentID) }), nil
}

// events

type fakeEventLogRepo struct {
	*memRepo[models.EventLog, models.EventLogFilter]
}

func newFakeEventLogRepo() *fakeEventLogRepo {
	return &fakeEventLogRepo{newMemRepo(
		func(e *models.EventLog) *uint { return &e.ID },
		func(e *models.EventLog, f models.EventLogFilter) bool {
			if !uintEq(e.DebtorID, f.DebtorID) || !uintEq(e.UserID, f.UserID) {
				return false
			}
			if f.Action != nil && e.Action != *f.Action {
				return false
			}
			return inWindow(e.Timestamp, f.After, nil)
		},
	)}
}

func (r *fakeEventLogRepo) CountByUser(ctx context.Context, filter models.EventLogFilter) ([]repository.GroupCount, error) {
	rows, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return groupBy(rows, func(e *models.EventLog) string { return idKey(e.UserID) }), nil
}

// call logs

type fakeCallLogRepo struct {
	*memRepo[models.CallLog, models.CallLogFilter]
}

func newFakeCallLogRepo() *fakeCallLogRepo {
	return &fakeCallLogRepo{newMemRepo(
		func(c *models.CallLog) *uint { return &c.ID },
		func(c *models.CallLog, f models.CallLogFilter) bool {
			if f.CallSID != nil && c.CallSID != *f.CallSID {
				return false
			}
			if f.AgentNumber != nil && deref(c.AgentNumber) != *f.AgentNumber {
				return false
			}
			if !uintEq(c.DebtorID, f.DebtorID) {
				return false
			}
			if f.Status != nil && deref(c.Status) != *f.Status {
				return false
			}
			return inWindow(c.StartTime, f.StartedAfter, nil)
		},
	)}
}

func (r *fakeCallLogRepo) Upsert(ctx context.Context, call *models.CallLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.rows {
		if c.CallSID == call.CallSID {
			call.ID = c.ID
			r.rows[i] = call
			return nil
		}
	}
	r.insertLocked(call)
	return nil
}

func (r *fakeCallLogRepo) CountByAgent(ctx context.Context, filter models.CallLogFilter) ([]repository.GroupCount, error) {
	rows, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return groupBy(rows, func(c *models.CallLog) string { return deref(c.AgentName) }), nil
}

// download and export logs

type fakeDownloadLogRepo struct {
	*memRepo[models.DownloadLog, models.ActivityLogFilter]
}

type fakeExportLogRepo struct {
	*memRepo[models.ExportLog, models.ActivityLogFilter]
}

func newFakeDownloadLogRepo() *fakeDownloadLogRepo {
	return &fakeDownloadLogRepo{newMemRepo(
		func(d *models.DownloadLog) *uint { return &d.ID },
		func(d *models.DownloadLog, f models.ActivityLogFilter) bool {
			return (f.UserID == nil || d.UserID == *f.UserID) && (f.Action == nil || d.Action == *f.Action)
		},
	)}
}

func newFakeExportLogRepo() *fakeExportLogRepo {
	return &fakeExportLogRepo{newMemRepo(
		func(e *models.ExportLog) *uint { return &e.ID },
		func(e *models.ExportLog, f models.ActivityLogFilter) bool {
			return (f.UserID == nil || e.UserID == *f.UserID) && (f.Action == nil || e.Action == *f.Action)
		},
	)}
}

// storage

type fakeStorage struct {
	mu      sync.Mutex
	saved   map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: map[string][]byte{}}
}

func (s *fakeStorage) SaveProofOfPayment(ctx context.Context, fileName string, content []byte, now time.Time) (*services.StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url := "/uploads/payments/" + now.Format(time.DateOnly) + "/" + strconv.Itoa(len(s.saved)+1) + "-" + fileName
	s.saved[url] = content
	return &services.StoredFile{URL: url, Size: int64(len(content))}, nil
}

func (s *fakeStorage) Delete(ctx context.Context, publicURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, publicURL)
	s.deleted = append(s.deleted, publicURL)
	return nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// testWorld wires every fake repository and seeds one user per role
type testWorld struct {
	users     *fakeUserRepo
	debtors   *fakeDebtorRepo
	payments  *fakePaymentRepo
	followUps *fakeFollowUpRepo
	ptps      *fakePTPRepo
	updates   *fakeCollectionUpdateRepo
	events    *fakeEventLogRepo
	calls     *fakeCallLogRepo
	downloads *fakeDownloadLogRepo
	exports   *fakeExportLogRepo
	storage   *fakeStorage

	admin  *models.User
	agent  *models.User
	agent2 *models.User
	client *models.User
}

const testPassword = "s3cret-pass"

func newTestWorld() *testWorld {
	debtors := newFakeDebtorRepo()
	w := &testWorld{
		users:     newFakeUserRepo(),
		debtors:   debtors,
		payments:  newFakePaymentRepo(debtors),
		followUps: newFakeFollowUpRepo(debtors),
		ptps:      newFakePTPRepo(debtors),
		updates:   newFakeCollectionUpdateRepo(debtors),
		events:    newFakeEventLogRepo(),
		calls:     newFakeCallLogRepo(),
		downloads: newFakeDownloadLogRepo(),
		exports:   newFakeExportLogRepo(),
		storage:   newFakeStorage(),
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	mk := func(name, email, role string, phone *string) *models.User {
		u := &models.User{FullName: name, Email: email, Role: role, Phone: phone, PasswordHash: string(hash), IsActive: utils.ToPtr(true)}
		_ = w.users.Save(context.Background(), u)
		return u
	}
	w.admin = mk("Grace Admin", "admin@example.com", models.RoleAdmin, nil)
	w.agent = mk("Otieno Agent", "agent@example.com", models.RoleAgent, utils.ToPtr("+254700000001"))
	w.agent2 = mk("Wanjiru Agent", "agent2@example.com", models.RoleAgent, nil)
	w.client = mk("Acme Bank", "client@example.com", models.RoleClient, nil)
	return w
}

func (w *testWorld) addDebtor(name string, debt int64, agent *models.User, client string) *models.Debtor {
	d := &models.Debtor{
		Name:       name,
		DebtAmount: decimal.NewFromInt(debt),
		Client:     client,
		DealStage:  models.DealStageSelect,
		Tags:       pq.StringArray{},
	}
	if agent != nil {
		d.AssignedTo = utils.ToPtr(agent.ID)
	}
	_ = w.debtors.Save(context.Background(), d)
	return d
}

func (w *testWorld) addPayment(debtor *models.Debtor, amount int64, verified bool, on time.Time) *models.Payment {
	p := &models.Payment{
		DebtorID:    debtor.ID,
		Amount:      decimal.NewFromInt(amount),
		PaymentDate: on,
		UploadedAt:  on,
		Verified:    utils.ToPtr(verified),
		Invoiced:    utils.ToPtr(false),
	}
	_ = w.payments.Save(context.Background(), p)
	return p
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
