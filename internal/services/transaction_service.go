package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "finboard/internal/errors"
	"finboard/internal/models"
	"finboard/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// normalizeRecurrence enforces that recurring rows carry a frequency and
// one-off rows carry neither frequency nor logo. A missing logo on a
// recurring row defaults to the category icon.
func normalizeRecurrence(t *models.Transaction) error {
	if !t.IsRecurring {
		if t.Frequency != nil {
			return apperrors.ErrInvalidRecurrence
		}
		t.Logo = nil
		return nil
	}

	if t.Frequency == nil || !t.Frequency.Valid() {
		return apperrors.ErrInvalidRecurrence
	}
	if t.Logo == nil || *t.Logo == "" {
		icon := t.Category.Icon()
		t.Logo = &icon
	}
	return nil
}

func validateTransaction(t *models.Transaction) error {
	category, ok := models.ParseCategory(string(t.Category))
	if !ok {
		return apperrors.ErrInvalidCategory
	}
	t.Category = category
	if t.Amount.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount is required")
	}
	if t.Date.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}
	return normalizeRecurrence(t)
}

// CreateTransaction records a one-off or recurring transaction.
func (s *transactionService) CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error) {
	txn := &models.Transaction{
		UserID:      userID,
		Amount:      in.Amount,
		Description: in.Description,
		Category:    in.Category,
		Date:        in.Date.UTC(),
		Notes:       in.Notes,
		IsRecurring: in.IsRecurring,
		Frequency:   in.Frequency,
		Logo:        in.Logo,
	}
	if err := validateTransaction(txn); err != nil {
		return nil, err
	}

	if err := s.db.Create(txn).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txn, nil
}

// GetUserTransactions lists the user's transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	query := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if filter.Recurring != nil {
		query = query.Where("is_recurring = ?", *filter.Recurring)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", filter.FromDate.UTC())
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", filter.ToDate.UTC())
	}

	resp, err := pagination.Find[models.Transaction](query, page, "date DESC, id DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return resp, nil
}

func (s *transactionService) findTransaction(tx *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := tx.Where("id = ? AND user_id = ?", transactionID, userID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &txn, nil
}

// GetTransactionByID retrieves a transaction owned by the user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	return s.findTransaction(s.db, userID, transactionID)
}

// UpdateTransaction applies patch and re-checks the recurrence rules on the
// result. Turning recurrence off clears frequency and logo.
func (s *transactionService) UpdateTransaction(userID, transactionID string, patch TransactionPatch) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = s.findTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}

		applyTransactionPatch(txn, patch)
		if err := validateTransaction(txn); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"amount":       txn.Amount,
			"description":  txn.Description,
			"category":     txn.Category,
			"date":         txn.Date,
			"notes":        txn.Notes,
			"is_recurring": txn.IsRecurring,
			"frequency":    txn.Frequency,
			"logo":         txn.Logo,
		}
		if err := tx.Model(txn).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func applyTransactionPatch(t *models.Transaction, p TransactionPatch) {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = p.Date.UTC()
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.IsRecurring != nil {
		t.IsRecurring = *p.IsRecurring
		if !t.IsRecurring && p.Frequency == nil {
			t.Frequency = nil
		}
	}
	if p.Frequency != nil {
		f := *p.Frequency
		t.Frequency = &f
	}
	if p.Logo != nil {
		l := *p.Logo
		t.Logo = &l
	}
}

// DeleteTransaction removes a transaction owned by the user.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	result := s.db.Where("id = ? AND user_id = ?", transactionID, userID).Delete(&models.Transaction{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}
