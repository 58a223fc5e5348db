package services

import (
	"testing"
	"time"

	"finboard/internal/finance"
	"finboard/internal/models"
	"finboard/internal/testutil"
)

func TestGetSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDashboardService(db)

	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	testutil.SetTestSalary(t, db, user, "3000")
	testutil.CreateTestAccount(t, db, user.ID, "500")
	testutil.CreateTestAccount(t, db, user.ID, "250.50")
	testutil.CreateTestRecurringTransaction(t, db, user.ID, models.CategoryEntertainment, "15", models.FrequencyMonthly)
	testutil.CreateTestTransaction(t, db, user.ID, models.CategoryFood, "100", time.Now())
	testutil.CreateTestTransaction(t, db, user.ID, models.CategoryOther, "-20", time.Now())
	testutil.CreateTestAccount(t, db, other.ID, "9999")
	testutil.CreateTestTransaction(t, db, other.ID, models.CategoryFood, "9999", time.Now())

	summary, err := svc.GetSummary(user.ID)
	testutil.AssertNoError(t, err)

	checks := map[string]struct{ got, want string }{
		"salary":       {summary.Salary.String(), "3000"},
		"accounts":     {summary.TotalAccountBalance.String(), "750.5"},
		"recurring":    {summary.TotalRecurringExpenses.String(), "15"},
		"transactions": {summary.TotalTransactionExpenses.String(), "80"},
		"expenses":     {summary.TotalExpenses.String(), "95"},
		"balance":      {summary.TotalBalance.String(), "3655.5"},
	}
	for name, c := range checks {
		if !dec(c.got).Equal(dec(c.want)) {
			t.Errorf("%s: expected %s, got %s", name, c.want, c.got)
		}
	}
}

func TestGetSummaryEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDashboardService(db)
	user := testutil.CreateTestUser(t, db)

	summary, err := svc.GetSummary(user.ID)
	testutil.AssertNoError(t, err)
	if !summary.TotalBalance.IsZero() || !summary.TotalExpenses.IsZero() {
		t.Errorf("expected zero summary, got %+v", summary)
	}
}

func TestGetSummaryUnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDashboardService(db)

	_, err := svc.GetSummary("0190a0b4-7c2e-7d1a-9f1e-3b1c2d3e4f50")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestGetExpenseBreakdown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDashboardService(db)
	svc.(*dashboardService).now = func() time.Time { return date(2025, time.April, 15) }

	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestTransaction(t, db, user.ID, models.CategoryFood, "40", date(2025, time.March, 2))
	testutil.CreateTestTransaction(t, db, user.ID, models.CategoryFood, "10", date(2025, time.March, 20))
	testutil.CreateTestTransaction(t, db, user.ID, models.CategoryTransport, "60", date(2025, time.March, 21))
	testutil.CreateTestTransaction(t, db, user.ID, models.CategoryShopping, "25", date(2025, time.February, 1))
	testutil.CreateTestTransaction(t, db, user.ID, models.CategoryFood, "5", date(2025, time.April, 1))

	t.Run("single_month", func(t *testing.T) {
		b, err := svc.GetExpenseBreakdown(user.ID, finance.Month(2025, time.March))
		testutil.AssertNoError(t, err)

		if b.Period != "2025-03" || !b.Total.Equal(dec("110")) {
			t.Fatalf("unexpected breakdown: %s %s", b.Period, b.Total)
		}
		if len(b.Categories) != 2 || b.Categories[0].Category != models.CategoryTransport {
			t.Errorf("expected transport first, got %+v", b.Categories)
		}
	})

	t.Run("all_time", func(t *testing.T) {
		b, err := svc.GetExpenseBreakdown(user.ID, finance.AllTime())
		testutil.AssertNoError(t, err)
		if !b.Total.Equal(dec("140")) {
			t.Errorf("expected 140, got %s", b.Total)
		}
	})

	t.Run("available_months_exclude_current", func(t *testing.T) {
		b, err := svc.GetExpenseBreakdown(user.ID, finance.AllTime())
		testutil.AssertNoError(t, err)

		want := []string{"2025-03", "2025-02"}
		if len(b.AvailableMonths) != len(want) {
			t.Fatalf("expected %v, got %v", want, b.AvailableMonths)
		}
		for i := range want {
			if b.AvailableMonths[i] != want[i] {
				t.Errorf("expected %v, got %v", want, b.AvailableMonths)
			}
		}
	})

	t.Run("empty_month", func(t *testing.T) {
		b, err := svc.GetExpenseBreakdown(user.ID, finance.Month(2024, time.January))
		testutil.AssertNoError(t, err)
		if !b.Total.IsZero() || len(b.Categories) != 0 {
			t.Errorf("expected empty breakdown, got %+v", b.Breakdown)
		}
	})
}
