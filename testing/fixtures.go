package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/debt-collection-crm/models"
	"github.com/amirphl/debt-collection-crm/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plain-text password of every fixture user
const TestPassword = "TestPass123!"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates an active user with the given role
func (tf *TestFixtures) CreateTestUser(role, fullName string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FullName:     fullName,
		Email:        fmt.Sprintf("%s.%09d@example.com", role, rand.Intn(1000000000)),
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}
	return user, nil
}

// CreateTestDebtor creates a debtor owned by client and optionally assigned to an agent
func (tf *TestFixtures) CreateTestDebtor(name, client string, agentID *uint, debt int64) (*models.Debtor, error) {
	phone := fmt.Sprintf("+2547%08d", rand.Intn(100000000))
	debtor := &models.Debtor{
		Name:       name,
		Phone:      &phone,
		DebtAmount: decimal.NewFromInt(debt),
		AssignedTo: agentID,
		Client:     client,
	}
	if err := tf.DB.DB.Create(debtor).Error; err != nil {
		return nil, fmt.Errorf("failed to create test debtor: %w", err)
	}
	return debtor, nil
}

// CreateTestPayment records a payment against a debtor
func (tf *TestFixtures) CreateTestPayment(debtorID uint, amount int64, paidAt time.Time, verified bool) (*models.Payment, error) {
	payment := &models.Payment{
		DebtorID:    debtorID,
		Amount:      decimal.NewFromInt(amount),
		PaymentDate: paidAt,
		Verified:    utils.ToPtr(verified),
	}
	if err := tf.DB.DB.Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test payment: %w", err)
	}
	return payment, nil
}

// CreateTestFollowUp logs a follow-up by agentID on a debtor
func (tf *TestFixtures) CreateTestFollowUp(debtorID uint, agentID *uint, stage string) (*models.FollowUp, error) {
	followUp := &models.FollowUp{
		DebtorID:     debtorID,
		AgentID:      agentID,
		FollowUpDate: utils.UTCNow(),
		Notes:        "called, left a message",
		DealStage:    stage,
	}
	if err := tf.DB.DB.Create(followUp).Error; err != nil {
		return nil, fmt.Errorf("failed to create test follow-up: %w", err)
	}
	return followUp, nil
}
