package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/models"
	"finboard/internal/pagination"
	"finboard/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestCreateTransaction(t *testing.T) {
	t.Run("one_off", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		txn, err := svc.CreateTransaction(user.ID, TransactionInput{
			Amount:      decimal.RequireFromString("12.50"),
			Description: "Lunch",
			Category:    models.CategoryFood,
			Date:        date(2025, time.March, 3),
			Logo:        ptr("🍕"),
		})
		testutil.AssertNoError(t, err)

		if txn.ID == "" || txn.UserID != user.ID {
			t.Fatalf("unexpected transaction: %+v", txn)
		}
		if txn.Frequency != nil || txn.Logo != nil {
			t.Error("one-off transactions carry neither frequency nor logo")
		}
	})

	t.Run("recurring_defaults_logo_to_category_icon", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		txn, err := svc.CreateTransaction(user.ID, TransactionInput{
			Amount:      decimal.RequireFromString("15.99"),
			Description: "Streaming",
			Category:    models.CategoryEntertainment,
			Date:        date(2025, time.March, 1),
			IsRecurring: true,
			Frequency:   ptr(models.FrequencyMonthly),
		})
		testutil.AssertNoError(t, err)

		if txn.Logo == nil || *txn.Logo != models.CategoryEntertainment.Icon() {
			t.Errorf("expected default logo, got %v", txn.Logo)
		}
	})

	t.Run("recurring_without_frequency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Amount: decimal.NewFromInt(10), Category: models.CategoryOther,
			Date: date(2025, time.March, 1), IsRecurring: true,
		})
		testutil.AssertAppError(t, err, "INVALID_RECURRENCE")
	})

	t.Run("one_off_with_frequency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Amount: decimal.NewFromInt(10), Category: models.CategoryOther,
			Date: date(2025, time.March, 1), Frequency: ptr(models.FrequencyWeekly),
		})
		testutil.AssertAppError(t, err, "INVALID_RECURRENCE")
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Amount: decimal.NewFromInt(10), Category: models.Category("Groceries"),
			Date: date(2025, time.March, 1),
		})
		testutil.AssertAppError(t, err, "INVALID_CATEGORY")
	})

	t.Run("missing_amount_or_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{Category: models.CategoryFood, Date: date(2025, 1, 1)})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateTransaction(user.ID, TransactionInput{Category: models.CategoryFood, Amount: decimal.NewFromInt(1)})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)

	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	testutil.CreateTestTransaction(t, db, user.ID, models.CategoryFood, "10", date(2025, time.January, 5))
	testutil.CreateTestTransaction(t, db, user.ID, models.CategoryFood, "20", date(2025, time.February, 5))
	testutil.CreateTestTransaction(t, db, user.ID, models.CategoryTransport, "30", date(2025, time.March, 5))
	testutil.CreateTestRecurringTransaction(t, db, user.ID, models.CategoryUtilities, "40", models.FrequencyMonthly)
	testutil.CreateTestTransaction(t, db, other.ID, models.CategoryFood, "99", date(2025, time.March, 5))

	t.Run("scoped_to_user", func(t *testing.T) {
		resp, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if resp.TotalItems != 4 {
			t.Errorf("expected 4 transactions, got %d", resp.TotalItems)
		}
		for _, txn := range resp.Data {
			if txn.UserID != user.ID {
				t.Errorf("leaked transaction of %s", txn.UserID)
			}
		}
	})

	t.Run("newest_first_with_pages", func(t *testing.T) {
		resp, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{Page: 1, PageSize: 2}, TransactionFilter{Recurring: ptr(false)})
		testutil.AssertNoError(t, err)
		if resp.TotalItems != 3 || resp.TotalPages != 2 || len(resp.Data) != 2 {
			t.Fatalf("unexpected page: total=%d pages=%d len=%d", resp.TotalItems, resp.TotalPages, len(resp.Data))
		}
		if !resp.Data[0].Amount.Equal(decimal.NewFromInt(30)) {
			t.Errorf("expected newest first, got %s", resp.Data[0].Amount)
		}
	})

	t.Run("filters", func(t *testing.T) {
		resp, _ := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{Category: ptr(models.CategoryFood)})
		if resp.TotalItems != 2 {
			t.Errorf("expected 2 food transactions, got %d", resp.TotalItems)
		}

		resp, _ = svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{Recurring: ptr(true)})
		if resp.TotalItems != 1 {
			t.Errorf("expected 1 recurring transaction, got %d", resp.TotalItems)
		}

		from, to := date(2025, time.January, 1), date(2025, time.February, 28)
		resp, _ = svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{FromDate: &from, ToDate: &to})
		if resp.TotalItems != 2 {
			t.Errorf("expected 2 transactions in range, got %d", resp.TotalItems)
		}
	})
}

func TestGetTransactionByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)

	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	txn := testutil.CreateTestTransaction(t, db, user.ID, models.CategoryFood, "10", date(2025, 1, 1))

	got, err := svc.GetTransactionByID(user.ID, txn.ID)
	testutil.AssertNoError(t, err)
	if got.ID != txn.ID {
		t.Errorf("expected %s, got %s", txn.ID, got.ID)
	}

	_, err = svc.GetTransactionByID(other.ID, txn.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		txn := testutil.CreateTestTransaction(t, db, user.ID, models.CategoryFood, "10", date(2025, 1, 1))

		updated, err := svc.UpdateTransaction(user.ID, txn.ID, TransactionPatch{
			Amount: ptr(decimal.RequireFromString("11.25")),
			Notes:  ptr("with tip"),
		})
		testutil.AssertNoError(t, err)

		if !updated.Amount.Equal(decimal.RequireFromString("11.25")) || updated.Notes != "with tip" {
			t.Errorf("unexpected update result: %+v", updated)
		}
		if updated.Description != txn.Description || updated.Category != models.CategoryFood {
			t.Error("untouched fields must be preserved")
		}

		reloaded, _ := svc.GetTransactionByID(user.ID, txn.ID)
		if reloaded.Notes != "with tip" {
			t.Errorf("expected stored notes, got %q", reloaded.Notes)
		}
	})

	t.Run("stop_recurring_clears_frequency_and_logo", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		txn := testutil.CreateTestRecurringTransaction(t, db, user.ID, models.CategoryUtilities, "60", models.FrequencyMonthly)

		_, err := svc.UpdateTransaction(user.ID, txn.ID, TransactionPatch{IsRecurring: ptr(false)})
		testutil.AssertNoError(t, err)

		reloaded, _ := svc.GetTransactionByID(user.ID, txn.ID)
		if reloaded.IsRecurring || reloaded.Frequency != nil || reloaded.Logo != nil {
			t.Errorf("expected plain transaction, got %+v", reloaded)
		}
	})

	t.Run("start_recurring_requires_frequency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		txn := testutil.CreateTestTransaction(t, db, user.ID, models.CategoryFood, "10", date(2025, 1, 1))

		_, err := svc.UpdateTransaction(user.ID, txn.ID, TransactionPatch{IsRecurring: ptr(true)})
		testutil.AssertAppError(t, err, "INVALID_RECURRENCE")

		updated, err := svc.UpdateTransaction(user.ID, txn.ID, TransactionPatch{
			IsRecurring: ptr(true),
			Frequency:   ptr(models.FrequencyYearly),
		})
		testutil.AssertNoError(t, err)
		if updated.Frequency == nil || *updated.Frequency != models.FrequencyYearly {
			t.Errorf("expected yearly, got %v", updated.Frequency)
		}
	})

	t.Run("other_users_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		txn := testutil.CreateTestTransaction(t, db, user.ID, models.CategoryFood, "10", date(2025, 1, 1))

		_, err := svc.UpdateTransaction(other.ID, txn.ID, TransactionPatch{Notes: ptr("mine now")})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)

	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	txn := testutil.CreateTestTransaction(t, db, user.ID, models.CategoryFood, "10", date(2025, 1, 1))

	err := svc.DeleteTransaction(other.ID, txn.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

	testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, txn.ID))

	err = svc.DeleteTransaction(user.ID, txn.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}
