package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/finance"
	"finboard/internal/models"
	"finboard/internal/pagination"
	"finboard/internal/queue"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Setup(name, email, password string) (*models.User, error)
	AdminExists() (bool, error)
	Register(name, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	UpdateEmail(userID, currentEmail, newEmail string) (*models.User, error)
	ChangePassword(userID, currentPassword, newPassword string) error
	DeleteAccount(userID, password, confirmText string) error
}

// SalaryServicer reads and writes the salary scalar stored on the user.
type SalaryServicer interface {
	GetSalary(userID string) (decimal.Decimal, error)
	SetSalary(userID string, salary decimal.Decimal) (decimal.Decimal, error)
	AddIncome(userID string, amount decimal.Decimal) (decimal.Decimal, error)
}

// TransactionInput holds the fields of a new transaction.
type TransactionInput struct {
	Amount      decimal.Decimal
	Description string
	Category    models.Category
	Date        time.Time
	Notes       string
	IsRecurring bool
	Frequency   *models.Frequency
	Logo        *string
}

// TransactionPatch holds the fields to change on a transaction; nil fields
// are left untouched.
type TransactionPatch struct {
	Amount      *decimal.Decimal
	Description *string
	Category    *models.Category
	Date        *time.Time
	Notes       *string
	IsRecurring *bool
	Frequency   *models.Frequency
	Logo        *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Recurring *bool
	Category  *models.Category
	FromDate  *time.Time
	ToDate    *time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, patch TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// BudgetInput is the body of a budget create or update. Exactly one of
// Allocated and Percentage must be set.
type BudgetInput struct {
	Category   models.Category
	Allocated  *decimal.Decimal
	Percentage *decimal.Decimal
	Color      string
	Emoji      string
}

// BudgetView is a stored budget together with its derived figures.
type BudgetView struct {
	models.Budget
	finance.BudgetStatus
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, in BudgetInput) (*BudgetView, error)
	GetUserBudgets(userID string) ([]BudgetView, error)
	GetBudget(userID, budgetID string) (*BudgetView, error)
	UpdateBudget(userID, budgetID string, in BudgetInput) (*BudgetView, error)
	DeleteBudget(userID, budgetID string) error
}

// AccountInput holds the fields of a new manual account.
type AccountInput struct {
	Name    string
	Type    models.AccountType
	Balance decimal.Decimal
	Bank    string
	Color   string
}

// AccountPatch holds the account fields to change; nil fields are left untouched.
type AccountPatch struct {
	Name    *string
	Type    *models.AccountType
	Balance *decimal.Decimal
	Bank    *string
	Color   *string
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID string, in AccountInput) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, patch AccountPatch) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
}

// ExpenseBreakdown is the expense chart plus the months that can be picked.
type ExpenseBreakdown struct {
	finance.Breakdown
	AvailableMonths []string `json:"available_months"`
}

// DashboardServicer computes the dashboard aggregates.
type DashboardServicer interface {
	GetSummary(userID string) (*finance.Summary, error)
	GetExpenseBreakdown(userID string, period finance.Period) (*ExpenseBreakdown, error)
}

// PasswordResetServicer issues and redeems password reset codes.
type PasswordResetServicer interface {
	RequestReset(ctx context.Context, email string) error
	ConfirmReset(email, code, newPassword string) (string, error)
}

// EmailSettings is the editable email transport configuration.
type EmailSettings struct {
	BrevoAPIKey string `json:"brevo_api_key"`
	SenderName  string `json:"brevo_sender_name"`
	SenderEmail string `json:"brevo_sender_email"`
	SMTPEnabled bool   `json:"smtp_enabled"`
}

// TemplateInput creates a template when ID is empty and updates it otherwise.
type TemplateInput struct {
	ID                 string
	TemplateKey        string
	TemplateName       string
	Subject            string
	HTMLContent        string
	TextContent        string
	AvailableVariables []string
	IsActive           bool
}

// MailPublisher queues mail jobs for asynchronous delivery.
type MailPublisher interface {
	PublishMail(ctx context.Context, job *queue.MailJob) error
}

// EmailServicer manages email settings and templates and sends templated mail.
type EmailServicer interface {
	GetConfig() (*EmailSettings, error)
	UpdateConfig(settings EmailSettings) error
	ListTemplates() ([]models.EmailTemplate, error)
	SaveTemplate(in TemplateInput) (*models.EmailTemplate, error)
	EnsureDefaultTemplates() error
	SendTemplate(ctx context.Context, templateKey, to string, vars map[string]string) error
	SendAccountCreation(ctx context.Context, user *models.User) error
	SendPasswordReset(ctx context.Context, user *models.User, code string, ttl time.Duration) error
	SendTestEmail(ctx context.Context, to, templateKey string) error
}

// AdminStats are the counters shown on the admin dashboard.
type AdminStats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalAdmins       int64 `json:"total_admins"`
	TotalTransactions int64 `json:"total_transactions"`
	TotalBudgets      int64 `json:"total_budgets"`
	NewUsersLast30    int64 `json:"new_users_last_30_days"`
	NewUsersThisMonth int64 `json:"new_users_this_month"`
}

// AdminServicer defines the contract for admin-only queries.
type AdminServicer interface {
	GetStats() (*AdminStats, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
