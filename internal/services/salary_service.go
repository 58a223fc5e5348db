package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finboard/internal/errors"
	"finboard/internal/models"
)

type salaryService struct {
	db *gorm.DB
}

// NewSalaryService creates a new SalaryServicer.
func NewSalaryService(db *gorm.DB) SalaryServicer {
	return &salaryService{db: db}
}

func loadSalary(tx *gorm.DB, userID string) (decimal.Decimal, error) {
	var user models.User
	if err := tx.Select("id", "salary").Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, apperrors.ErrUserNotFound
		}
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user.Salary, nil
}

// GetSalary returns the user's salary.
func (s *salaryService) GetSalary(userID string) (decimal.Decimal, error) {
	return loadSalary(s.db, userID)
}

// SetSalary overwrites the salary. Negative values are rejected.
func (s *salaryService) SetSalary(userID string, salary decimal.Decimal) (decimal.Decimal, error) {
	if salary.IsNegative() {
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrInvalidInput, "salary must not be negative")
	}

	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("salary", salary)
	if result.Error != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return decimal.Zero, apperrors.ErrUserNotFound
	}
	return salary, nil
}

// AddIncome adds amount to the salary in a single UPDATE so concurrent
// additions are not lost.
func (s *salaryService) AddIncome(userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	var salary decimal.Decimal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("salary", gorm.Expr("salary + ?", amount))
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrUserNotFound
		}

		var err error
		salary, err = loadSalary(tx, userID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return salary, nil
}
