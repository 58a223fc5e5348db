package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"finboard/internal/models"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestAdmin creates an administrator.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return createUser(t, db, fmt.Sprintf("admin%d@test.com", nextID()), true)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	return createUser(t, db, email, false)
}

func createUser(t *testing.T, db *gorm.DB, email string, admin bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: string(hash),
		IsAdmin:  admin,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// SetTestSalary stores salary on the user row.
func SetTestSalary(t *testing.T, db *gorm.DB, user *models.User, salary string) {
	t.Helper()

	amount := decimal.RequireFromString(salary)
	if err := db.Model(user).Update("salary", amount).Error; err != nil {
		t.Fatalf("failed to set salary: %v", err)
	}
	user.Salary = amount
}

// CreateTestAccount creates a checking account with the given balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID, balance string) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:  userID,
		Name:    fmt.Sprintf("Test Account %d", nextID()),
		Type:    models.AccountTypeChecking,
		Balance: decimal.RequireFromString(balance),
		Bank:    "Test Bank",
		Color:   "#3b82f6",
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestTransaction creates a one-off transaction dated date.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, category models.Category, amount string, date time.Time) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		UserID:      userID,
		Amount:      decimal.RequireFromString(amount),
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
		Category:    category,
		Date:        date,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}

// CreateTestRecurringTransaction creates a recurring transaction.
func CreateTestRecurringTransaction(t *testing.T, db *gorm.DB, userID string, category models.Category, amount string, freq models.Frequency) *models.Transaction {
	t.Helper()

	logo := category.Icon()
	txn := &models.Transaction{
		UserID:      userID,
		Amount:      decimal.RequireFromString(amount),
		Description: fmt.Sprintf("Test Subscription %d", nextID()),
		Category:    category,
		Date:        time.Now().UTC(),
		IsRecurring: true,
		Frequency:   &freq,
		Logo:        &logo,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test recurring transaction: %v", err)
	}
	return txn
}

// CreateTestBudget creates a fixed-amount budget for category.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, category models.Category, allocated string) *models.Budget {
	t.Helper()
	return createBudget(t, db, userID, category, models.AllocationFixed, allocated)
}

// CreateTestPercentBudget creates a budget allocated as a percentage of salary.
func CreateTestPercentBudget(t *testing.T, db *gorm.DB, userID string, category models.Category, percentage string) *models.Budget {
	t.Helper()
	return createBudget(t, db, userID, category, models.AllocationPercentOfSalary, percentage)
}

func createBudget(t *testing.T, db *gorm.DB, userID string, category models.Category, kind models.AllocationKind, value string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:          userID,
		Category:        category,
		AllocationKind:  kind,
		AllocationValue: decimal.RequireFromString(value),
		Color:           "#10b981",
		Emoji:           category.Icon(),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestEmailTemplate creates an active template.
func CreateTestEmailTemplate(t *testing.T, db *gorm.DB, key, subject, html string) *models.EmailTemplate {
	t.Helper()

	tmpl := &models.EmailTemplate{
		TemplateKey:        key,
		TemplateName:       key,
		Subject:            subject,
		HTMLContent:        html,
		TextContent:        html,
		AvailableVariables: []string{"userName"},
		IsActive:           true,
	}
	if err := db.Create(tmpl).Error; err != nil {
		t.Fatalf("failed to create test email template: %v", err)
	}
	return tmpl
}

// SetTestEmailConfig upserts email configuration rows.
func SetTestEmailConfig(t *testing.T, db *gorm.DB, values map[string]string) {
	t.Helper()

	for k, v := range values {
		if err := db.Save(&models.EmailConfig{ConfigKey: k, ConfigValue: v}).Error; err != nil {
			t.Fatalf("failed to set email config %s: %v", k, err)
		}
	}
}
