package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"finboard/internal/models"
	"finboard/internal/testutil"
)

func TestSetup(t *testing.T) {
	t.Run("creates_first_admin", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.Setup("Ada", " Ada@Example.COM ", "secret1")
		testutil.AssertNoError(t, err)

		if !user.IsAdmin {
			t.Error("expected setup user to be admin")
		}
		if user.Email != "ada@example.com" {
			t.Errorf("expected normalized email, got %s", user.Email)
		}
		if user.Password == "secret1" {
			t.Error("password must be hashed")
		}
	})

	t.Run("second_setup_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.Setup("Ada", "ada@example.com", "secret1")
		testutil.AssertNoError(t, err)

		_, err = svc.Setup("Eve", "eve@example.com", "secret1")
		testutil.AssertAppError(t, err, "ADMIN_EXISTS")
	})

	t.Run("short_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.Setup("Ada", "ada@example.com", "12345")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.Setup("  ", "ada@example.com", "secret1")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestRegister(t *testing.T) {
	t.Run("setup_required", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.Register("Bob", "bob@example.com", "password123")
		testutil.AssertAppError(t, err, "SETUP_REQUIRED")

		if n := countRows(t, db, &models.User{}, ""); n != 0 {
			t.Errorf("expected no users, got %d", n)
		}
	})

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		testutil.CreateTestAdmin(t, db)

		user, err := svc.Register("Bob", "Bob@Example.com", "password123")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected user ID")
		}
		if user.IsAdmin {
			t.Error("registered user must not be admin")
		}
		if !user.IsActive {
			t.Error("expected user to be active")
		}
		if !user.Salary.IsZero() {
			t.Errorf("expected zero salary, got %s", user.Salary)
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		testutil.CreateTestAdmin(t, db)

		_, err := svc.Register("Bob", "dup@example.com", "password123")
		testutil.AssertNoError(t, err)

		_, err = svc.Register("Bobby", "DUP@example.com", "password456")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})
}

func TestAdminExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	exists, err := svc.AdminExists()
	testutil.AssertNoError(t, err)
	if exists {
		t.Fatal("expected no admin in empty database")
	}

	testutil.CreateTestUser(t, db)
	exists, _ = svc.AdminExists()
	if exists {
		t.Fatal("regular users do not count as admins")
	}

	testutil.CreateTestAdmin(t, db)
	exists, _ = svc.AdminExists()
	if !exists {
		t.Fatal("expected admin to exist")
	}
}

func TestGetUserByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		created := testutil.CreateTestUserWithEmail(t, db, "found@example.com")
		user, err := svc.GetUserByEmail("FOUND@example.com")
		testutil.AssertNoError(t, err)

		if user.ID != created.ID {
			t.Errorf("expected user ID %s, got %s", created.ID, user.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.GetUserByEmail("nonexistent@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("inactive_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUserWithEmail(t, db, "inactive@example.com")
		db.Model(user).Update("is_active", false)

		_, err := svc.GetUserByEmail("inactive@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestGetUserByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	created := testutil.CreateTestUser(t, db)
	user, err := svc.GetUserByID(created.ID)
	testutil.AssertNoError(t, err)
	if user.Email != created.Email {
		t.Errorf("expected %s, got %s", created.Email, user.Email)
	}

	_, err = svc.GetUserByID("0190a0b4-7c2e-7d1a-9f1e-3b1c2d3e4f50")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestAttemptLogin(t *testing.T) {
	t.Run("success_resets_attempts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		created := testutil.CreateTestUserWithEmail(t, db, "login@example.com")
		db.Model(created).Update("failed_login_attempts", 3)

		user, err := svc.AttemptLogin("login@example.com", testutil.TestPassword)
		testutil.AssertNoError(t, err)

		if user.FailedLoginAttempts != 0 {
			t.Errorf("expected 0 failed attempts, got %d", user.FailedLoginAttempts)
		}
		if user.LastLoginAt == nil {
			t.Error("expected last login to be stamped")
		}

		reloaded, _ := svc.GetUserByID(created.ID)
		if reloaded.FailedLoginAttempts != 0 {
			t.Errorf("expected stored attempts reset, got %d", reloaded.FailedLoginAttempts)
		}
	})

	t.Run("wrong_password_increments", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		created := testutil.CreateTestUserWithEmail(t, db, "fail@example.com")

		_, err := svc.AttemptLogin("fail@example.com", "wrongpassword")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

		reloaded, _ := svc.GetUserByID(created.ID)
		if reloaded.FailedLoginAttempts != 1 {
			t.Errorf("expected 1 failed attempt, got %d", reloaded.FailedLoginAttempts)
		}
	})

	t.Run("lockout_after_five_failures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		testutil.CreateTestUserWithEmail(t, db, "lockout@example.com")
		for i := 0; i < 5; i++ {
			_, err := svc.AttemptLogin("lockout@example.com", "wrong")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		}

		user, _ := svc.GetUserByEmail("lockout@example.com")
		if user.LockedUntil == nil || !user.LockedUntil.After(time.Now()) {
			t.Fatal("expected LockedUntil in the future after 5 failures")
		}

		_, err := svc.AttemptLogin("lockout@example.com", testutil.TestPassword)
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")
	})

	t.Run("expired_lock_restarts_counting", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		created := testutil.CreateTestUserWithEmail(t, db, "expired@example.com")
		db.Model(created).Updates(map[string]interface{}{
			"failed_login_attempts": 5,
			"locked_until":          time.Now().Add(-time.Minute),
		})

		_, err := svc.AttemptLogin("expired@example.com", "wrong")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

		reloaded, _ := svc.GetUserByID(created.ID)
		if reloaded.FailedLoginAttempts != 1 || reloaded.LockedUntil != nil {
			t.Errorf("expected fresh count without lock, got %d / %v", reloaded.FailedLoginAttempts, reloaded.LockedUntil)
		}
	})

	t.Run("unknown_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.AttemptLogin("nobody@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestStoreAndGetRefreshTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	user := testutil.CreateTestUser(t, db)
	hash := "3a7bd3e2360a3d29eea436fcfb7e44c735d117c42d1c1835420b6b9942dd4f1b"

	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, hash))

	got, err := svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)
	if got != hash {
		t.Errorf("expected %s, got %s", hash, got)
	}

	err = svc.StoreRefreshTokenHash("0190a0b4-7c2e-7d1a-9f1e-3b1c2d3e4f50", hash)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestUpdateEmail(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUserWithEmail(t, db, "old@example.com")
		updated, err := svc.UpdateEmail(user.ID, "OLD@example.com", " New@Example.com")
		testutil.AssertNoError(t, err)

		if updated.Email != "new@example.com" {
			t.Errorf("expected new@example.com, got %s", updated.Email)
		}
		if _, err := svc.GetUserByEmail("new@example.com"); err != nil {
			t.Errorf("expected lookup by new email to succeed: %v", err)
		}
	})

	t.Run("current_email_mismatch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUserWithEmail(t, db, "old@example.com")
		_, err := svc.UpdateEmail(user.ID, "other@example.com", "new@example.com")
		testutil.AssertAppError(t, err, "EMAIL_MISMATCH")
	})

	t.Run("email_taken", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUserWithEmail(t, db, "old@example.com")
		testutil.CreateTestUserWithEmail(t, db, "taken@example.com")

		_, err := svc.UpdateEmail(user.ID, "old@example.com", "taken@example.com")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})
}

func TestChangePassword(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUser(t, db)
		_ = svc.StoreRefreshTokenHash(user.ID, "somehash")

		testutil.AssertNoError(t, svc.ChangePassword(user.ID, testutil.TestPassword, "newsecret"))

		reloaded, _ := svc.GetUserByID(user.ID)
		if !svc.VerifyPassword(reloaded, "newsecret") {
			t.Error("expected new password to verify")
		}
		if svc.VerifyPassword(reloaded, testutil.TestPassword) {
			t.Error("old password must no longer verify")
		}
		if reloaded.RefreshTokenHash != "" {
			t.Error("expected refresh token to be revoked")
		}
	})

	t.Run("incorrect_current_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUser(t, db)
		err := svc.ChangePassword(user.ID, "nope", "newsecret")
		testutil.AssertAppError(t, err, "INCORRECT_PASSWORD")
	})

	t.Run("new_password_too_short", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := testutil.CreateTestUser(t, db)
		err := svc.ChangePassword(user.ID, testutil.TestPassword, "abc")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDeleteAccount(t *testing.T) {
	seed := func(t *testing.T, db *gorm.DB) *models.User {
		t.Helper()
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestBudget(t, db, user.ID, models.CategoryFood, "300")
		testutil.CreateTestTransaction(t, db, user.ID, models.CategoryFood, "42", time.Now())
		testutil.CreateTestRecurringTransaction(t, db, user.ID, models.CategoryUtilities, "60", models.FrequencyMonthly)
		testutil.CreateTestAccount(t, db, user.ID, "1000")
		db.Create(&models.PasswordReset{UserID: user.ID, ResetCode: "123456", ExpiresAt: time.Now().Add(time.Hour)})
		NewAuditService(db).Log(user.ID, "LOGIN", "user", user.ID, "127.0.0.1", nil)
		return user
	}

	t.Run("removes_everything_owned", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := seed(t, db)
		other := testutil.CreateTestUser(t, db)
		testutil.CreateTestBudget(t, db, other.ID, models.CategoryFood, "100")

		testutil.AssertNoError(t, svc.DeleteAccount(user.ID, testutil.TestPassword, "DELETE"))

		for _, m := range []interface{}{&models.Budget{}, &models.Transaction{}, &models.Account{}, &models.PasswordReset{}} {
			if n := countRows(t, db, m, "user_id = ?", user.ID); n != 0 {
				t.Errorf("expected no %T rows left, got %d", m, n)
			}
		}
		if n := countRows(t, db, &models.User{}, "id = ?", user.ID); n != 0 {
			t.Error("expected user row deleted")
		}
		if n := countRows(t, db, &models.Budget{}, "user_id = ?", other.ID); n != 1 {
			t.Errorf("other user's budget must survive, got %d", n)
		}
		if n := countRows(t, db, &models.AuditLog{}, "user_id = ?", user.ID); n != 1 {
			t.Errorf("expected audit trail kept, got %d", n)
		}
	})

	t.Run("confirmation_must_be_exact", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := seed(t, db)
		for _, confirm := range []string{"", "delete", "DELETE ", "yes"} {
			err := svc.DeleteAccount(user.ID, testutil.TestPassword, confirm)
			testutil.AssertAppError(t, err, "INVALID_CONFIRMATION")
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := seed(t, db)
		err := svc.DeleteAccount(user.ID, "wrong", "DELETE")
		testutil.AssertAppError(t, err, "INCORRECT_PASSWORD")

		if n := countRows(t, db, &models.Budget{}, "user_id = ?", user.ID); n != 1 {
			t.Errorf("expected budget untouched, got %d", n)
		}
	})

	t.Run("failure_rolls_back_all_deletes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user := seed(t, db)

		// Fail only the final delete of the user row, after budgets,
		// transactions and accounts have been deleted in the same transaction.
		err := db.Callback().Delete().Before("gorm:delete").Register("test:fail_user_delete", func(tx *gorm.DB) {
			if tx.Statement.Table == "users" {
				_ = tx.AddError(errors.New("induced failure"))
			}
		})
		testutil.AssertNoError(t, err)

		err = svc.DeleteAccount(user.ID, testutil.TestPassword, "DELETE")
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")

		checks := []struct {
			model interface{}
			want  int64
		}{
			{&models.Budget{}, 1},
			{&models.Transaction{}, 2},
			{&models.Account{}, 1},
			{&models.PasswordReset{}, 1},
		}
		for _, c := range checks {
			if n := countRows(t, db, c.model, "user_id = ?", user.ID); n != c.want {
				t.Errorf("expected %d %T rows after rollback, got %d", c.want, c.model, n)
			}
		}
		if n := countRows(t, db, &models.User{}, "id = ?", user.ID); n != 1 {
			t.Error("expected user row to survive")
		}
	})
}
