package finance

import (
	"github.com/shopspring/decimal"

	"finboard/internal/models"
)

// ComputeSpent sums the amounts of every transaction in category, over all
// time and regardless of recurrence.
func ComputeSpent(category models.Category, txns []models.Transaction) decimal.Decimal {
	spent := decimal.Zero
	for i := range txns {
		if txns[i].Category == category {
			spent = spent.Add(txns[i].Amount)
		}
	}
	return spent
}

// BudgetStatus is the derived state of a budget at read time.
type BudgetStatus struct {
	Allocated       decimal.Decimal  `json:"allocated"`
	Percentage      *decimal.Decimal `json:"percentage,omitempty"`
	Spent           decimal.Decimal  `json:"spent"`
	Remaining       decimal.Decimal  `json:"remaining"`
	UsagePercentage decimal.Decimal  `json:"usage_percentage"`
	OverBudget      bool             `json:"over_budget"`
}

// Evaluate resolves a budget's allocation against salary and its spend
// against txns.
func Evaluate(b *models.Budget, salary decimal.Decimal, txns []models.Transaction) BudgetStatus {
	alloc := AllocationOf(b)
	allocated := ResolveAllocated(alloc, salary)
	spent := ComputeSpent(b.Category, txns)

	usage := decimal.Zero
	if allocated.IsPositive() {
		usage = spent.Div(allocated).Mul(hundred).Round(2)
	}

	return BudgetStatus{
		Allocated:       allocated,
		Percentage:      alloc.Percentage(),
		Spent:           spent,
		Remaining:       allocated.Sub(spent),
		UsagePercentage: usage,
		OverBudget:      spent.GreaterThan(allocated),
	}
}
