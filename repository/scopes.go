package repository

import (
	"github.com/amirphl/debt-collection-crm/models"
	"gorm.io/gorm"
)

// DebtorScope restricts a debtors query to what the scope may see.
// A nil scope is a system query and is not restricted; an unknown role matches nothing.
func DebtorScope(scope *models.AccessScope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if scope == nil {
			return db
		}
		switch scope.Role {
		case models.RoleAdmin:
			return db
		case models.RoleAgent:
			return db.Where("debtors.assigned_to = ?", scope.UserID)
		case models.RoleClient:
			return db.Where(
				"(debtors.client_user_id = ? OR (debtors.client_user_id IS NULL AND debtors.client = ? AND debtors.client <> ''))",
				scope.UserID, scope.FullName,
			)
		default:
			return db.Where("1 = 0")
		}
	}
}

// DebtorChildScope restricts rows owning a debtor_id column to debtors inside the scope
func DebtorChildScope(scope *models.AccessScope, column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if scope == nil || scope.IsAdmin() {
			return db
		}
		return db.Where(column+" IN (?)", visibleDebtorIDs(db, scope))
	}
}

// AssignedDebtorScope restricts child rows to debtors currently assigned to agentID
func AssignedDebtorScope(agentID uint, column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		sub := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Debtor{}).
			Select("debtors.id").
			Where("debtors.assigned_to = ?", agentID)
		return db.Where(column+" IN (?)", sub)
	}
}

func visibleDebtorIDs(db *gorm.DB, scope *models.AccessScope) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Debtor{}).
		Select("debtors.id").
		Scopes(DebtorScope(scope))
}

// groupCount runs SELECT <key>, COUNT(*) ... GROUP BY <key>
func groupCount(query *gorm.DB, keyExpr string) ([]GroupCount, error) {
	var rows []GroupCount
	err := query.
		Select("COALESCE(CAST(" + keyExpr + " AS TEXT), '') AS group_key, COUNT(*) AS total").
		Group(keyExpr).
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}
