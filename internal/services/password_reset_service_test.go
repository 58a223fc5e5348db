package services

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "finboard/internal/errors"
	"finboard/internal/models"
	"finboard/internal/testutil"
)

// newTestResetService pins the clock to now and hands out codes in order.
func newTestResetService(t *testing.T, db *gorm.DB, email EmailServicer, now time.Time, codes ...string) *passwordResetService {
	t.Helper()
	svc := NewPasswordResetService(db, email, 15*time.Minute).(*passwordResetService)
	svc.now = func() time.Time { return now }
	i := 0
	svc.generateCode = func() (string, error) {
		code := codes[i%len(codes)]
		i++
		return code, nil
	}
	return svc
}

func TestGenerateResetCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateResetCode()
		testutil.AssertNoError(t, err)
		if len(code) != 6 || code[0] == '0' {
			t.Fatalf("expected six digits without a leading zero, got %q", code)
		}
	}
}

func TestRequestReset(t *testing.T) {
	now := time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)

	t.Run("stores_code_and_sends_it", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		sender := &fakeSender{}
		email := newTestEmailService(t, db, sender, nil)
		configureEmail(t, db, email)
		user := testutil.CreateTestUser(t, db)

		svc := newTestResetService(t, db, email, now, "111111")

		testutil.AssertNoError(t, svc.RequestReset(context.Background(), "  "+user.Email+" "))

		var reset models.PasswordReset
		if err := db.Where("user_id = ?", user.ID).First(&reset).Error; err != nil {
			t.Fatalf("expected a reset row: %v", err)
		}
		if reset.ResetCode != "111111" || !reset.ExpiresAt.Equal(now.Add(15*time.Minute)) {
			t.Errorf("unexpected reset row: %+v", reset)
		}
		if sent := sender.messages(); len(sent) != 1 || sent[0].msg.To != user.Email {
			t.Errorf("expected one email to %s, got %+v", user.Email, sent)
		}
	})

	t.Run("second_request_replaces_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		email := newTestEmailService(t, db, &fakeSender{}, nil)
		configureEmail(t, db, email)
		user := testutil.CreateTestUser(t, db)

		svc := newTestResetService(t, db, email, now, "111111", "222222")

		testutil.AssertNoError(t, svc.RequestReset(context.Background(), user.Email))
		testutil.AssertNoError(t, svc.RequestReset(context.Background(), user.Email))

		if n := countRows(t, db, &models.PasswordReset{}, "user_id = ?", user.ID); n != 1 {
			t.Fatalf("expected one outstanding code, got %d", n)
		}
		var reset models.PasswordReset
		db.Where("user_id = ?", user.ID).First(&reset)
		if reset.ResetCode != "222222" {
			t.Errorf("expected newest code, got %s", reset.ResetCode)
		}
	})

	t.Run("unknown_email_is_silent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		sender := &fakeSender{}
		email := newTestEmailService(t, db, sender, nil)
		configureEmail(t, db, email)

		svc := newTestResetService(t, db, email, now, "111111")

		testutil.AssertNoError(t, svc.RequestReset(context.Background(), "nobody@test.com"))
		if len(sender.messages()) != 0 || countRows(t, db, &models.PasswordReset{}, "") != 0 {
			t.Error("unknown emails must not produce codes or mail")
		}
	})

	t.Run("email_not_configured", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		email := newTestEmailService(t, db, &fakeSender{}, nil)
		user := testutil.CreateTestUser(t, db)

		svc := newTestResetService(t, db, email, now, "111111")

		err := svc.RequestReset(context.Background(), user.Email)
		testutil.AssertAppError(t, err, "EMAIL_NOT_CONFIGURED")
	})

	t.Run("delivery_failure", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		email := newTestEmailService(t, db, &fakeSender{err: errBrevoDown}, nil)
		configureEmail(t, db, email)
		user := testutil.CreateTestUser(t, db)

		svc := newTestResetService(t, db, email, now, "111111")

		err := svc.RequestReset(context.Background(), user.Email)
		testutil.AssertAppError(t, err, "EMAIL_DELIVERY_FAILED")
	})
}

func TestConfirmReset(t *testing.T) {
	now := time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*passwordResetService, *models.User, func()) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		email := newTestEmailService(t, db, &fakeSender{}, nil)
		configureEmail(t, db, email)
		user := testutil.CreateTestUser(t, db)

		svc := newTestResetService(t, db, email, now, "654321")
		testutil.AssertNoError(t, svc.RequestReset(context.Background(), user.Email))
		return svc, user, func() { testutil.TeardownTestDB(t, db) }
	}

	t.Run("success", func(t *testing.T) {
		svc, user, teardown := setup(t)
		defer teardown()

		locked := now.Add(time.Hour)
		svc.db.Model(user).Updates(map[string]interface{}{
			"refresh_token_hash":    "abc",
			"failed_login_attempts": 5,
			"locked_until":          &locked,
		})

		userID, err := svc.ConfirmReset(user.Email, "654321", "brand-new-pass")
		testutil.AssertNoError(t, err)
		if userID != user.ID {
			t.Errorf("expected user ID %q, got %q", user.ID, userID)
		}

		var reloaded models.User
		svc.db.First(&reloaded, "id = ?", user.ID)
		if bcrypt.CompareHashAndPassword([]byte(reloaded.Password), []byte("brand-new-pass")) != nil {
			t.Error("expected the new password to be stored")
		}
		if reloaded.RefreshTokenHash != "" || reloaded.FailedLoginAttempts != 0 || reloaded.LockedUntil != nil {
			t.Errorf("expected session and lockout state cleared, got %+v", reloaded)
		}
		if countRows(t, svc.db, &models.PasswordReset{}, "") != 0 {
			t.Error("expected the code to be consumed")
		}

		_, err = svc.ConfirmReset(user.Email, "654321", "another-pass")
		testutil.AssertAppError(t, err, "INVALID_RESET_CODE")
	})

	t.Run("wrong_code", func(t *testing.T) {
		svc, user, teardown := setup(t)
		defer teardown()

		_, err := svc.ConfirmReset(user.Email, "000000", "brand-new-pass")
		testutil.AssertAppError(t, err, "INVALID_RESET_CODE")

		if countRows(t, svc.db, &models.PasswordReset{}, "") != 1 {
			t.Error("a wrong guess must not consume the code")
		}
	})

	t.Run("expired_code", func(t *testing.T) {
		svc, user, teardown := setup(t)
		defer teardown()

		svc.now = func() time.Time { return now.Add(15 * time.Minute) }
		_, err := svc.ConfirmReset(user.Email, "654321", "brand-new-pass")
		testutil.AssertAppError(t, err, "INVALID_RESET_CODE")
	})

	t.Run("unknown_email", func(t *testing.T) {
		svc, _, teardown := setup(t)
		defer teardown()

		_, err := svc.ConfirmReset("nobody@test.com", "654321", "brand-new-pass")
		testutil.AssertAppError(t, err, "INVALID_RESET_CODE")
	})

	t.Run("short_password", func(t *testing.T) {
		svc, user, teardown := setup(t)
		defer teardown()

		_, err := svc.ConfirmReset(user.Email, "654321", "123")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		testutil.AssertAppErrorIs(t, err, apperrors.ErrPasswordTooShort)
	})
}
