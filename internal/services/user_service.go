package services

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"finboard/internal/database"
	apperrors "finboard/internal/errors"
	"finboard/internal/models"
)

const (
	maxFailedLogins   = 5
	lockoutDuration   = 15 * time.Minute
	minPasswordLength = 6

	// DeleteConfirmation must be typed by the user to delete their account.
	DeleteConfirmation = "DELETE"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", apperrors.ErrPasswordTooShort
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return string(hashed), nil
}

// newUser validates the registration fields and builds an unsaved user.
func newUser(name, email, password string, admin bool) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name, email and password are required")
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		IsAdmin:  admin,
		IsActive: true,
	}, nil
}

func createUser(tx *gorm.DB, user *models.User) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateEmail
	}

	if err := tx.Create(user).Error; err != nil {
		// Lost a race with a concurrent registration.
		if database.IsUniqueViolation(err) {
			return apperrors.ErrDuplicateEmail
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func countAdmins(tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.Model(&models.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

// Setup creates the first administrator. It fails once any admin exists.
func (s *userService) Setup(name, email, password string) (*models.User, error) {
	user, err := newUser(name, email, password, true)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		admins, err := countAdmins(tx)
		if err != nil {
			return err
		}
		if admins > 0 {
			return apperrors.ErrAdminExists
		}
		return createUser(tx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// AdminExists reports whether setup has been completed.
func (s *userService) AdminExists() (bool, error) {
	admins, err := countAdmins(s.db)
	if err != nil {
		return false, err
	}
	return admins > 0, nil
}

// Register creates a regular user. Registration is closed until setup has
// created an administrator.
func (s *userService) Register(name, email, password string) (*models.User, error) {
	exists, err := s.AdminExists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ErrSetupRequired
	}

	user, err := newUser(name, email, password, false)
	if err != nil {
		return nil, err
	}
	if err := createUser(s.db, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ? AND is_active = ?", normalizeEmail(email), true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin checks credentials and applies the lockout policy: after
// maxFailedLogins consecutive failures the account is locked for
// lockoutDuration. Unknown emails and wrong passwords are indistinguishable.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, apperrors.ErrAccountLocked
	}

	if !s.VerifyPassword(user, password) {
		attempts := user.FailedLoginAttempts
		if user.LockedUntil != nil {
			// The previous lock has expired; start counting again.
			attempts = 0
		}
		attempts++

		updates := map[string]interface{}{"failed_login_attempts": attempts, "locked_until": nil}
		if attempts >= maxFailedLogins {
			updates["locked_until"] = now.Add(lockoutDuration)
		}
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	updates := map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         now,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	return user, nil
}

// StoreRefreshTokenHash saves the hash of the user's current refresh token.
func (s *userService) StoreRefreshTokenHash(userID, tokenHash string) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("refresh_token_hash", tokenHash)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash.
func (s *userService) GetRefreshTokenHash(userID string) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	return user.RefreshTokenHash, nil
}

// UpdateEmail changes the login email after confirming the current one.
func (s *userService) UpdateEmail(userID, currentEmail, newEmail string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Email != normalizeEmail(currentEmail) {
		return nil, apperrors.ErrEmailMismatch
	}

	newEmail = normalizeEmail(newEmail)
	if newEmail == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "new email is required")
	}
	if newEmail == user.Email {
		return user, nil
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ? AND id <> ?", newEmail, userID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	if err := s.db.Model(user).Update("email", newEmail).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.Email = newEmail
	return user, nil
}

// ChangePassword replaces the password after verifying the current one and
// revokes the stored refresh token.
func (s *userService) ChangePassword(userID, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if !s.VerifyPassword(user, currentPassword) {
		return apperrors.ErrIncorrectPassword
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{"password": hashed, "refresh_token_hash": ""}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DeleteAccount removes the user and everything they own in one database
// transaction. Audit entries are kept.
func (s *userService) DeleteAccount(userID, password, confirmText string) error {
	if confirmText != DeleteConfirmation {
		return apperrors.ErrInvalidConfirmation
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if !s.VerifyPassword(user, password) {
		return apperrors.ErrIncorrectPassword
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, owned := range []interface{}{
			&models.Budget{},
			&models.Transaction{},
			&models.Account{},
			&models.PasswordReset{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(owned).Error; err != nil {
				return err
			}
		}

		result := tx.Where("id = ?", userID).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
