// Package app wires services, handlers and middleware into the HTTP router.
package app

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"finboard/internal/config"
	_ "finboard/internal/docs" // Import swagger docs
	"finboard/internal/handlers"
	"finboard/internal/mail"
	"finboard/internal/middleware"
	"finboard/internal/services"
	"finboard/internal/validator"
)

// Services holds every business service the router needs.
type Services struct {
	User          services.UserServicer
	Salary        services.SalaryServicer
	Transaction   services.TransactionServicer
	Budget        services.BudgetServicer
	Account       services.AccountServicer
	Dashboard     services.DashboardServicer
	Email         services.EmailServicer
	PasswordReset services.PasswordResetServicer
	Admin         services.AdminServicer
	Audit         services.AuditServicer
}

// NewServices builds the services over db. publisher may be nil, in which
// case emails are delivered inline.
func NewServices(db *gorm.DB, cfg *config.Config, sender mail.Sender, publisher services.MailPublisher) (*Services, error) {
	emailService, err := services.NewEmailService(db, sender, publisher)
	if err != nil {
		return nil, fmt.Errorf("failed to create email service: %w", err)
	}

	return &Services{
		User:          services.NewUserService(db),
		Salary:        services.NewSalaryService(db),
		Transaction:   services.NewTransactionService(db),
		Budget:        services.NewBudgetService(db),
		Account:       services.NewAccountService(db),
		Dashboard:     services.NewDashboardService(db),
		Email:         emailService,
		PasswordReset: services.NewPasswordResetService(db, emailService, cfg.PasswordResetTTL),
		Admin:         services.NewAdminService(db),
		Audit:         services.NewAuditService(db),
	}, nil
}

// NewRouter registers every route under /api/v1.
func NewRouter(cfg *config.Config, svc *Services) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.User, svc.Email, svc.Audit)
	profileHandler := handlers.NewProfileHandler(svc.User, svc.Audit)
	resetHandler := handlers.NewPasswordResetHandler(svc.PasswordReset, svc.Audit)
	salaryHandler := handlers.NewSalaryHandler(svc.Salary, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transaction, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budget, svc.Audit)
	accountHandler := handlers.NewAccountHandler(svc.Account, svc.Audit)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	adminHandler := handlers.NewAdminHandler(svc.Email, svc.Admin, svc.Audit)

	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigin))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.GET("/setup", authHandler.SetupStatus)
	auth.POST("/setup", authHandler.Setup)
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)
	auth.POST("/password-reset", resetHandler.RequestReset)
	auth.PUT("/password-reset", resetHandler.ConfirmReset)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	profile := protected.Group("/profile")
	profile.GET("", profileHandler.GetProfile)
	profile.PUT("/email", profileHandler.UpdateEmail)
	profile.PUT("/password", profileHandler.ChangePassword)
	profile.DELETE("", profileHandler.DeleteAccount)

	salary := protected.Group("/salary")
	salary.GET("", salaryHandler.GetSalary)
	salary.PUT("", salaryHandler.SetSalary)
	salary.POST("/income", salaryHandler.AddIncome)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PATCH("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PATCH("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/summary", dashboardHandler.GetSummary)
	dashboard.GET("/expenses", dashboardHandler.GetExpenses)

	// Admin routes re-check the role on every request
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin(svc.User))
	admin.GET("/email-config", adminHandler.GetEmailConfig)
	admin.PUT("/email-config", adminHandler.UpdateEmailConfig)
	admin.GET("/email-templates", adminHandler.GetTemplates)
	admin.POST("/email-templates", adminHandler.SaveTemplate)
	admin.POST("/test-email", adminHandler.SendTestEmail)
	admin.GET("/stats", adminHandler.GetStats)

	return router
}
