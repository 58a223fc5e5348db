package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finboard/internal/errors"
	"finboard/internal/finance"
	"finboard/internal/models"
)

// recentMonthOptions is how many past months the expense chart offers.
const recentMonthOptions = 6

type dashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db, now: time.Now}
}

// GetSummary computes the financial summary from one consistent read of
// salary, accounts and transactions.
func (s *dashboardService) GetSummary(userID string) (*finance.Summary, error) {
	var (
		salary   decimal.Decimal
		accounts []models.Account
		txns     []models.Transaction
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if salary, err = loadSalary(tx, userID); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Find(&accounts).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("user_id = ?", userID).Find(&txns).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := finance.Summarize(salary, accounts, txns)
	return &summary, nil
}

// GetExpenseBreakdown groups the user's expenses of period by category.
func (s *dashboardService) GetExpenseBreakdown(userID string, period finance.Period) (*ExpenseBreakdown, error) {
	var txns []models.Transaction
	if err := s.db.Where("user_id = ?", userID).Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &ExpenseBreakdown{
		Breakdown:       finance.ExpensesByCategory(txns, period),
		AvailableMonths: finance.RecentMonths(txns, s.now(), recentMonthOptions),
	}, nil
}
