package finance

import (
	"github.com/shopspring/decimal"

	"finboard/internal/models"
)

// Summary is the dashboard's headline figures.
type Summary struct {
	Salary                   decimal.Decimal `json:"salary"`
	TotalAccountBalance      decimal.Decimal `json:"total_account_balance"`
	TotalRecurringExpenses   decimal.Decimal `json:"total_recurring_expenses"`
	TotalTransactionExpenses decimal.Decimal `json:"total_transaction_expenses"`
	TotalExpenses            decimal.Decimal `json:"total_expenses"`
	TotalBalance             decimal.Decimal `json:"total_balance"`
}

// Summarize computes the dashboard totals. Each transaction is counted once,
// as recurring or as one-off, never both.
func Summarize(salary decimal.Decimal, accounts []models.Account, txns []models.Transaction) Summary {
	s := Summary{
		Salary:                   salary,
		TotalAccountBalance:      decimal.Zero,
		TotalRecurringExpenses:   decimal.Zero,
		TotalTransactionExpenses: decimal.Zero,
	}

	for i := range accounts {
		s.TotalAccountBalance = s.TotalAccountBalance.Add(accounts[i].Balance)
	}
	for i := range txns {
		if txns[i].IsRecurring {
			s.TotalRecurringExpenses = s.TotalRecurringExpenses.Add(txns[i].Amount)
		} else {
			s.TotalTransactionExpenses = s.TotalTransactionExpenses.Add(txns[i].Amount)
		}
	}

	s.TotalExpenses = s.TotalRecurringExpenses.Add(s.TotalTransactionExpenses)
	s.TotalBalance = salary.Add(s.TotalAccountBalance).Sub(s.TotalExpenses)
	return s
}
