package finance

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/models"
)

// ErrInvalidPeriod is returned by ParsePeriod for anything other than
// "all", "current" or a YYYY-MM month.
var ErrInvalidPeriod = errors.New(`period must be "all", "current" or YYYY-MM`)

// Period selects the transactions shown in the expense breakdown.
type Period struct {
	all   bool
	year  int
	month time.Month
}

// AllTime covers every transaction, recurring ones included.
func AllTime() Period { return Period{all: true} }

// Month covers the one-off transactions dated in the given month.
func Month(year int, month time.Month) Period {
	return Period{year: year, month: month}
}

// ParsePeriod parses "all", "current" (the month containing now) or a
// YYYY-MM month. An empty string means "all".
func ParsePeriod(s string, now time.Time) (Period, error) {
	switch s {
	case "", "all":
		return AllTime(), nil
	case "current":
		now = now.UTC()
		return Month(now.Year(), now.Month()), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, ErrInvalidPeriod
	}
	return Month(t.Year(), t.Month()), nil
}

// IsAll reports whether p covers all time.
func (p Period) IsAll() bool { return p.all }

// String returns the period in the form accepted by ParsePeriod.
func (p Period) String() string {
	if p.all {
		return "all"
	}
	return fmt.Sprintf("%04d-%02d", p.year, int(p.month))
}

// Includes reports whether t belongs to the period.
func (p Period) Includes(t models.Transaction) bool {
	if p.all {
		return true
	}
	if t.IsRecurring {
		return false
	}
	d := t.Date.UTC()
	return d.Year() == p.year && d.Month() == p.month
}

// CategoryTotal is one slice of the expense breakdown.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Breakdown is the expense chart for one period.
type Breakdown struct {
	Period     string          `json:"period"`
	Total      decimal.Decimal `json:"total"`
	Categories []CategoryTotal `json:"categories"`
}

// ExpensesByCategory groups the transactions of the period by category,
// largest total first.
func ExpensesByCategory(txns []models.Transaction, p Period) Breakdown {
	totals := make(map[models.Category]decimal.Decimal)
	for i := range txns {
		if !p.Includes(txns[i]) {
			continue
		}
		totals[txns[i].Category] = totals[txns[i].Category].Add(txns[i].Amount)
	}

	b := Breakdown{Period: p.String(), Total: decimal.Zero, Categories: make([]CategoryTotal, 0, len(totals))}
	for c, amount := range totals {
		b.Categories = append(b.Categories, CategoryTotal{Category: c, Amount: amount})
		b.Total = b.Total.Add(amount)
	}
	sort.Slice(b.Categories, func(i, j int) bool {
		if cmp := b.Categories[i].Amount.Cmp(b.Categories[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return b.Categories[i].Category < b.Categories[j].Category
	})
	return b
}

// RecentMonths lists up to limit months, newest first, that contain at least
// one transaction, excluding the month of now.
func RecentMonths(txns []models.Transaction, now time.Time, limit int) []string {
	now = now.UTC()
	current := Month(now.Year(), now.Month()).String()
	seen := make(map[string]bool)
	months := []string{}
	for i := range txns {
		d := txns[i].Date.UTC()
		key := Month(d.Year(), d.Month()).String()
		if key == current || seen[key] {
			continue
		}
		seen[key] = true
		months = append(months, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	if len(months) > limit {
		months = months[:limit]
	}
	return months
}
