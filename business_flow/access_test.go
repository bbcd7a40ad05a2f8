package businessflow

import (
	"testing"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveScope(t *testing.T) {
	scope, err := ResolveScope(&models.User{ID: 4, Role: models.RoleClient, FullName: "Acme Bank"})
	require.NoError(t, err)
	assert.Equal(t, &models.AccessScope{Role: models.RoleClient, UserID: 4, FullName: "Acme Bank"}, scope)

	_, err = ResolveScope(&models.User{ID: 4, Role: "supervisor"})
	assert.ErrorIs(t, err, ErrUnknownRole)
	assert.True(t, IsUnauthorized(err))

	_, err = ResolveScope(&models.User{ID: 4})
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = ResolveScope(nil)
	assert.ErrorIs(t, err, ErrSessionUserNotFound)
}

func TestFilterDebtors(t *testing.T) {
	agentID := uint(3)
	debtors := []*models.Debtor{
		{ID: 1, AssignedTo: &agentID, Client: "Acme Bank"},
		{ID: 2, AssignedTo: utils.ToPtr(uint(9)), Client: "Acme Bank"},
		{ID: 3, Client: "Beta Sacco"},
	}

	ids := func(ds []*models.Debtor) []uint {
		out := []uint{}
		for _, d := range ds {
			out = append(out, d.ID)
		}
		return out
	}

	assert.Equal(t, []uint{1, 2, 3}, ids(FilterDebtors(&models.AccessScope{Role: models.RoleAdmin}, debtors)))
	assert.Equal(t, []uint{1}, ids(FilterDebtors(&models.AccessScope{Role: models.RoleAgent, UserID: agentID}, debtors)))
	assert.Equal(t, []uint{1, 2}, ids(FilterDebtors(&models.AccessScope{Role: models.RoleClient, UserID: 50, FullName: "Acme Bank"}, debtors)))
	assert.Empty(t, FilterDebtors(&models.AccessScope{Role: "guest"}, debtors))

	for _, d := range FilterDebtors(&models.AccessScope{Role: models.RoleAgent, UserID: agentID}, debtors) {
		require.NotNil(t, d.AssignedTo)
		assert.Equal(t, agentID, *d.AssignedTo)
	}
	for _, d := range FilterDebtors(&models.AccessScope{Role: models.RoleClient, UserID: 50, FullName: "Acme Bank"}, debtors) {
		assert.Equal(t, "Acme Bank", d.Client)
	}
}

func TestErrorCodeAndMessage(t *testing.T) {
	assert.Equal(t, "UNKNOWN_ROLE", ErrorCode(ErrUnknownRole))
	assert.Equal(t, "NOT_FOUND", ErrorCode(ErrDebtorNotFound))
	assert.Equal(t, "debtor not found", ErrorMessage(ErrDebtorNotFound))
	assert.Equal(t, "User with this email already exists", ErrorMessage(ErrEmailAlreadyExists))
	assert.Equal(t, "INVALID_NAME", ErrorCode(NewValidationError("INVALID_NAME", "name is required")))
	assert.Equal(t, "name is required", ErrorMessage(NewValidationError("INVALID_NAME", "name is required")))
	assert.Equal(t, "INTERNAL_ERROR", ErrorCode(assert.AnError))
}
