package models

import "github.com/shopspring/decimal"

// AllocationKind says how a budget's allocated amount is derived.
type AllocationKind string

const (
	AllocationFixed           AllocationKind = "fixed"
	AllocationPercentOfSalary AllocationKind = "percent_of_salary"
)

// Budget caps spending for one category. The spent amount is never stored;
// it is derived from transactions whenever the budget is read.
type Budget struct {
	Base
	UserID          string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Category        Category        `gorm:"not null" json:"category"`
	AllocationKind  AllocationKind  `gorm:"not null" json:"allocation_kind"`
	AllocationValue decimal.Decimal `gorm:"type:DECIMAL(20,8);not null" json:"allocation_value"`
	Color           string          `json:"color"`
	Emoji           string          `json:"emoji"`
}
