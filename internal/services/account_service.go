package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "finboard/internal/errors"
	"finboard/internal/models"
	"finboard/internal/pagination"
)

// accountService handles the manually maintained account balances.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

func validateAccount(a *models.Account) error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if !a.Type.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account type must be checking, savings, credit or cash")
	}
	return nil
}

// CreateAccount creates a manual account with an opening balance.
func (s *accountService) CreateAccount(userID string, in AccountInput) (*models.Account, error) {
	account := &models.Account{
		UserID:  userID,
		Name:    in.Name,
		Type:    in.Type,
		Balance: in.Balance,
		Bank:    in.Bank,
		Color:   in.Color,
	}
	if err := validateAccount(account); err != nil {
		return nil, err
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetUserAccounts lists the user's accounts by name.
func (s *accountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	query := s.db.Model(&models.Account{}).Where("user_id = ?", userID)
	resp, err := pagination.Find[models.Account](query, page, "name ASC, id ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return resp, nil
}

// GetAccountByID retrieves an account owned by the user.
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount applies the non-nil fields of patch.
func (s *accountService) UpdateAccount(userID, accountID string, patch AccountPatch) (*models.Account, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		account.Name = *patch.Name
	}
	if patch.Type != nil {
		account.Type = *patch.Type
	}
	if patch.Balance != nil {
		account.Balance = *patch.Balance
	}
	if patch.Bank != nil {
		account.Bank = *patch.Bank
	}
	if patch.Color != nil {
		account.Color = *patch.Color
	}
	if err := validateAccount(account); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":    account.Name,
		"type":    account.Type,
		"balance": account.Balance,
		"bank":    account.Bank,
		"color":   account.Color,
	}
	if err := s.db.Model(account).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// DeleteAccount removes an account owned by the user.
func (s *accountService) DeleteAccount(userID, accountID string) error {
	result := s.db.Where("id = ? AND user_id = ?", accountID, userID).Delete(&models.Account{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}
