// Package finance holds the pure computations behind budgets and the
// dashboard. Nothing here touches the database; callers pass in the rows
// they loaded.
package finance

import (
	"errors"

	"github.com/shopspring/decimal"

	"finboard/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Allocation validation errors.
var (
	ErrAllocationAmbiguous = errors.New("provide exactly one of allocated or percentage")
	ErrAllocationAmount    = errors.New("allocated amount must be greater than zero")
	ErrAllocationPercent   = errors.New("percentage must be greater than 0 and at most 100")
)

// Allocation is the amount a budget may spend: either a fixed amount or a
// share of the owner's salary. The zero value allocates nothing.
type Allocation struct {
	kind  models.AllocationKind
	value decimal.Decimal
}

// Fixed returns an allocation of exactly amount.
func Fixed(amount decimal.Decimal) (Allocation, error) {
	if !amount.IsPositive() {
		return Allocation{}, ErrAllocationAmount
	}
	return Allocation{kind: models.AllocationFixed, value: amount}, nil
}

// PercentOfSalary returns an allocation of pct percent of the salary at the
// time the budget is read.
func PercentOfSalary(pct decimal.Decimal) (Allocation, error) {
	if !pct.IsPositive() || pct.GreaterThan(hundred) {
		return Allocation{}, ErrAllocationPercent
	}
	return Allocation{kind: models.AllocationPercentOfSalary, value: pct}, nil
}

// NewAllocation builds an allocation from a request where exactly one of
// allocated and percentage must be set.
func NewAllocation(allocated, percentage *decimal.Decimal) (Allocation, error) {
	switch {
	case allocated != nil && percentage == nil:
		return Fixed(*allocated)
	case percentage != nil && allocated == nil:
		return PercentOfSalary(*percentage)
	default:
		return Allocation{}, ErrAllocationAmbiguous
	}
}

// AllocationOf restores the allocation stored on a budget row.
func AllocationOf(b *models.Budget) Allocation {
	switch b.AllocationKind {
	case models.AllocationFixed, models.AllocationPercentOfSalary:
		return Allocation{kind: b.AllocationKind, value: b.AllocationValue}
	}
	return Allocation{}
}

// Kind returns the allocation kind, empty for the zero value.
func (a Allocation) Kind() models.AllocationKind { return a.kind }

// Value returns the stored amount or percentage.
func (a Allocation) Value() decimal.Decimal { return a.value }

// Percentage returns the percentage for salary-based allocations and nil
// otherwise.
func (a Allocation) Percentage() *decimal.Decimal {
	if a.kind != models.AllocationPercentOfSalary {
		return nil
	}
	p := a.value
	return &p
}

// ResolveAllocated returns the effective allocated amount for the given
// salary. No rounding is applied.
func ResolveAllocated(a Allocation, salary decimal.Decimal) decimal.Decimal {
	switch a.kind {
	case models.AllocationFixed:
		return a.value
	case models.AllocationPercentOfSalary:
		return salary.Mul(a.value).Div(hundred)
	}
	return decimal.Zero
}
