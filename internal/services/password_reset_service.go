package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finboard/internal/errors"
	"finboard/internal/logger"
	"finboard/internal/models"
)

// DefaultResetCodeTTL is how long a reset code stays valid unless configured.
const DefaultResetCodeTTL = 15 * time.Minute

type passwordResetService struct {
	db           *gorm.DB
	email        EmailServicer
	ttl          time.Duration
	now          func() time.Time
	generateCode func() (string, error)
}

// NewPasswordResetService creates a new PasswordResetServicer whose codes
// expire after ttl.
func NewPasswordResetService(db *gorm.DB, email EmailServicer, ttl time.Duration) PasswordResetServicer {
	if ttl <= 0 {
		ttl = DefaultResetCodeTTL
	}
	return &passwordResetService{
		db:           db,
		email:        email,
		ttl:          ttl,
		now:          time.Now,
		generateCode: generateResetCode,
	}
}

// generateResetCode returns a uniformly random code in 100000-999999.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func (s *passwordResetService) findUser(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ? AND is_active = ?", normalizeEmail(email), true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// RequestReset issues a fresh code for email and mails it. Unknown emails
// succeed silently so callers cannot probe which accounts exist.
func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	user, err := s.findUser(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			logger.Named("password-reset").Infow("reset requested for unknown email")
			return nil
		}
		return err
	}

	code, err := s.generateCode()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	reset := &models.PasswordReset{
		UserID:    user.ID,
		ResetCode: code,
		ExpiresAt: s.now().Add(s.ttl),
	}
	// One outstanding code per user; a new request replaces the old one.
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reset_code", "expires_at", "updated_at"}),
	}).Create(reset).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.email.SendPasswordReset(ctx, user, code, s.ttl)
}

// ConfirmReset sets a new password when code matches the outstanding,
// unexpired code and returns the user's ID. The password change and the code
// removal commit together.
func (s *passwordResetService) ConfirmReset(email, code, newPassword string) (string, error) {
	hashed, err := hashPassword(newPassword)
	if err != nil {
		return "", err
	}

	user, err := s.findUser(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", apperrors.ErrInvalidResetCode
		}
		return "", err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var reset models.PasswordReset
		if err := tx.Where("user_id = ?", user.ID).First(&reset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrInvalidResetCode
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if subtle.ConstantTimeCompare([]byte(reset.ResetCode), []byte(code)) != 1 ||
			!reset.ExpiresAt.After(s.now()) {
			return apperrors.ErrInvalidResetCode
		}

		updates := map[string]interface{}{
			"password":              hashed,
			"refresh_token_hash":    "",
			"failed_login_attempts": 0,
			"locked_until":          nil,
		}
		if err := tx.Model(user).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&reset).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
