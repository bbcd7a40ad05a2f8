package businessflow

import (
	"context"
	"testing"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserFlow(w *testWorld) UserFlow {
	return NewUserFlow(w.users, w.debtors, nil, bcrypt.MinCost)
}

func TestUserFlow_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("AdminCreatesAgent", func(t *testing.T) {
		w := newTestWorld()
		out, err := newUserFlow(w).CreateUser(ctx, w.admin.ID, &dto.CreateUserRequest{
			FullName: "Kamau Agent",
			Email:    "Kamau@Example.com",
			Password: "changeme1",
			Role:     models.RoleAgent,
		})
		require.NoError(t, err)
		assert.Equal(t, "kamau@example.com", out.Email)
		assert.Equal(t, models.RoleAgent, out.Role)

		stored, _ := w.users.ByEmail(ctx, "kamau@example.com")
		require.NotNil(t, stored)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("changeme1")))
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		w := newTestWorld()
		_, err := newUserFlow(w).CreateUser(ctx, w.admin.ID, &dto.CreateUserRequest{
			FullName: "Someone Else",
			Email:    "agent@example.com",
			Password: "changeme1",
			Role:     models.RoleAgent,
		})
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
		assert.Equal(t, "User with this email already exists", ErrorMessage(err))
	})

	t.Run("AgentIsRejected", func(t *testing.T) {
		w := newTestWorld()
		_, err := newUserFlow(w).CreateUser(ctx, w.agent.ID, &dto.CreateUserRequest{
			FullName: "Sneaky", Email: "sneaky@example.com", Password: "changeme1", Role: models.RoleAdmin,
		})
		assert.ErrorIs(t, err, ErrAdminOnly)
	})

	t.Run("NewClientIsLinkedToDebtors", func(t *testing.T) {
		w := newTestWorld()
		d := w.addDebtor("Jane Doe", 1000, nil, "Beta Sacco")
		out, err := newUserFlow(w).CreateUser(ctx, w.admin.ID, &dto.CreateUserRequest{
			FullName: "Beta Sacco", Email: "beta@example.com", Password: "changeme1", Role: models.RoleClient,
		})
		require.NoError(t, err)
		require.NotNil(t, d.ClientUserID)
		assert.Equal(t, out.ID, *d.ClientUserID)
	})
}

func TestUserFlow_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("GuardRunsBeforeLookup", func(t *testing.T) {
		w := newTestWorld()
		_, err := newUserFlow(w).DeleteUser(ctx, w.agent.ID, 9999)
		assert.ErrorIs(t, err, ErrAdminOnly)
	})

	t.Run("UnknownTarget", func(t *testing.T) {
		w := newTestWorld()
		_, err := newUserFlow(w).DeleteUser(ctx, w.admin.ID, 9999)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("AdminCannotDeleteAnotherAdmin", func(t *testing.T) {
		w := newTestWorld()
		other := &models.User{FullName: "Second Admin", Email: "admin2@example.com", Role: models.RoleAdmin, IsActive: utils.ToPtr(true)}
		require.NoError(t, w.users.Save(ctx, other))
		d := w.addDebtor("Escalated", 100, other, "Acme Bank")

		out, err := newUserFlow(w).DeleteUser(ctx, w.admin.ID, other.ID)
		assert.ErrorIs(t, err, ErrAdminUndeletable)
		assert.Nil(t, out)

		still, _ := w.users.ByID(ctx, other.ID)
		require.NotNil(t, still)
		assert.Equal(t, models.RoleAdmin, still.Role)
		assert.Equal(t, utils.ToPtr(other.ID), d.AssignedTo)
		n, _ := w.users.Count(ctx, models.UserFilter{})
		assert.Equal(t, int64(5), n)
	})

	t.Run("AdminCannotDeleteSelf", func(t *testing.T) {
		w := newTestWorld()
		_, err := newUserFlow(w).DeleteUser(ctx, w.admin.ID, w.admin.ID)
		assert.ErrorIs(t, err, ErrAdminUndeletable)
		still, _ := w.users.ByID(ctx, w.admin.ID)
		assert.NotNil(t, still)
	})

	t.Run("AgentDebtorsAreUnassigned", func(t *testing.T) {
		w := newTestWorld()
		d1 := w.addDebtor("One", 100, w.agent, "Acme Bank")
		d2 := w.addDebtor("Two", 100, w.agent, "Acme Bank")
		other := w.addDebtor("Three", 100, w.agent2, "Acme Bank")

		out, err := newUserFlow(w).DeleteUser(ctx, w.admin.ID, w.agent.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), out.UnassignedDebtors)
		assert.Nil(t, d1.AssignedTo)
		assert.Nil(t, d2.AssignedTo)
		assert.Equal(t, utils.ToPtr(w.agent2.ID), other.AssignedTo)

		gone, _ := w.users.ByID(ctx, w.agent.ID)
		assert.Nil(t, gone)
	})
}

func TestUserFlow_UpdateUserRenamesClientDebtors(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld()
	d := w.addDebtor("Linked", 500, nil, w.client.FullName)
	d.ClientUserID = utils.ToPtr(w.client.ID)

	_, err := newUserFlow(w).UpdateUser(ctx, w.admin.ID, w.client.ID, &dto.UpdateUserRequest{FullName: utils.ToPtr("Acme Bank Ltd")})
	require.NoError(t, err)
	assert.Equal(t, "Acme Bank Ltd", d.Client)
}

func TestUserFlow_DeactivatedUserLosesSession(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld()
	w.agent.IsActive = utils.ToPtr(false)

	_, err := NewDebtorFlow(w.users, w.debtors, w.payments, w.followUps, nil).ListDebtors(ctx, w.agent.ID, &dto.ListDebtorsRequest{})
	assert.ErrorIs(t, err, ErrAccountInactive)
}
