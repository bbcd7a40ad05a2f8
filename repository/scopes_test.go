package repository

import (
	"testing"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=dry dbname=dry sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func debtorSQL(t *testing.T, scope *models.AccessScope) string {
	var rows []models.Debtor
	stmt := dryRunDB(t).Model(&models.Debtor{}).Scopes(DebtorScope(scope)).Find(&rows).Statement
	return stmt.SQL.String()
}

func TestDebtorScope_SQL(t *testing.T) {
	t.Run("nil scope is unrestricted", func(t *testing.T) {
		assert.NotContains(t, debtorSQL(t, nil), "WHERE")
	})

	t.Run("admin is unrestricted", func(t *testing.T) {
		assert.NotContains(t, debtorSQL(t, &models.AccessScope{Role: models.RoleAdmin, UserID: 1}), "WHERE")
	})

	t.Run("agent sees assigned debtors", func(t *testing.T) {
		sql := debtorSQL(t, &models.AccessScope{Role: models.RoleAgent, UserID: 7})
		assert.Contains(t, sql, "debtors.assigned_to = $1")
	})

	t.Run("client matches link or name", func(t *testing.T) {
		sql := debtorSQL(t, &models.AccessScope{Role: models.RoleClient, UserID: 3, FullName: "Acme"})
		assert.Contains(t, sql, "debtors.client_user_id = $1")
		assert.Contains(t, sql, "debtors.client_user_id IS NULL AND debtors.client = $2")
	})

	t.Run("unknown role matches nothing", func(t *testing.T) {
		assert.Contains(t, debtorSQL(t, &models.AccessScope{Role: "auditor"}), "1 = 0")
	})
}

func TestDebtorChildScope_SQL(t *testing.T) {
	var rows []models.Payment
	scope := &models.AccessScope{Role: models.RoleAgent, UserID: 9}
	sql := dryRunDB(t).Model(&models.Payment{}).
		Scopes(DebtorChildScope(scope, "payments.debtor_id")).
		Find(&rows).Statement.SQL.String()

	assert.Contains(t, sql, "payments.debtor_id IN (SELECT debtors.id FROM")
	assert.Contains(t, sql, "debtors.assigned_to = $1")

	admin := &models.AccessScope{Role: models.RoleAdmin, UserID: 1}
	sql = dryRunDB(t).Model(&models.Payment{}).
		Scopes(DebtorChildScope(admin, "payments.debtor_id")).
		Find(&rows).Statement.SQL.String()
	assert.NotContains(t, sql, "IN (SELECT")
}
