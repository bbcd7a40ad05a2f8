package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/repository"
	"github.com/amirphl/debt-collection-crm/utils"
)

// ResolveScope derives the visibility bound of a user. Unknown roles are
// rejected instead of falling through to an unrestricted query.
func ResolveScope(user *models.User) (*models.AccessScope, error) {
	if user == nil {
		return nil, ErrSessionUserNotFound
	}
	if !models.IsValidRole(user.Role) {
		return nil, ErrUnknownRole
	}
	return &models.AccessScope{
		Role:     user.Role,
		UserID:   user.ID,
		FullName: user.FullName,
	}, nil
}

// FilterDebtors keeps the debtors the scope may see
func FilterDebtors(scope *models.AccessScope, debtors []*models.Debtor) []*models.Debtor {
	out := make([]*models.Debtor, 0, len(debtors))
	for _, d := range debtors {
		if scope.Allows(d) {
			out = append(out, d)
		}
	}
	return out
}

// sessionScope loads the caller fresh from the store so that role changes and
// deactivation take effect on the next request
func sessionScope(ctx context.Context, userRepo repository.UserRepository, userID uint) (*models.User, *models.AccessScope, error) {
	user, err := userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrSessionUserNotFound
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, nil, ErrAccountInactive
	}
	scope, err := ResolveScope(user)
	if err != nil {
		return nil, nil, err
	}
	return user, scope, nil
}

func requireAdmin(scope *models.AccessScope) error {
	if !scope.IsAdmin() {
		return ErrAdminOnly
	}
	return nil
}

// requireStaff rejects the read-only client role
func requireStaff(scope *models.AccessScope) error {
	if scope.IsAdmin() || scope.IsAgent() {
		return nil
	}
	return ErrReadOnlyRole
}

// visibleDebtor returns the debtor when the scope may see it. Hidden debtors
// are reported as missing.
func visibleDebtor(ctx context.Context, debtorRepo repository.DebtorRepository, scope *models.AccessScope, id uint) (*models.Debtor, error) {
	debtor, err := debtorRepo.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load debtor %d: %w", id, err)
	}
	if debtor == nil || !scope.Allows(debtor) {
		return nil, ErrDebtorNotFound
	}
	return debtor, nil
}

// writableDebtor returns the debtor when the scope may add notes, payments or events to it
func writableDebtor(ctx context.Context, debtorRepo repository.DebtorRepository, scope *models.AccessScope, id uint) (*models.Debtor, error) {
	debtor, err := visibleDebtor(ctx, debtorRepo, scope, id)
	if err != nil {
		return nil, err
	}
	if !scope.CanWriteNotes(debtor) {
		if scope.IsClient() {
			return nil, ErrReadOnlyRole
		}
		return nil, ErrDebtorAccessDenied
	}
	return debtor, nil
}

// pageBounds normalizes page/page_size into limit and offset
func pageBounds(page, pageSize uint) (limit, offset int, p, ps uint) {
	p = page
	if p == 0 {
		p = 1
	}
	ps = pageSize
	if ps == 0 || ps > 500 {
		ps = 50
	}
	return int(ps), int((p - 1) * ps), p, ps
}

// agentFilter narrows an admin query to one agent; agents are always narrowed
// to themselves by their scope.
func agentFilter(scope *models.AccessScope, requested *uint) *uint {
	if scope.IsAgent() {
		return utils.ToPtr(scope.UserID)
	}
	return requested
}
