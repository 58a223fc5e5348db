package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the repeat interval of a recurring transaction.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Transaction is a single money movement. Positive amounts are expenses,
// negative amounts act as income. Recurring rows carry a frequency.
type Transaction struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8);not null" json:"amount"`
	Description string          `json:"description"`
	Category    Category        `gorm:"not null;index" json:"category"`
	Date        time.Time       `gorm:"not null" json:"date"`
	Notes       string          `json:"notes"`
	IsRecurring bool            `gorm:"not null;default:false" json:"is_recurring"`
	Frequency   *Frequency      `json:"frequency,omitempty"`
	Logo        *string         `json:"logo,omitempty"`
}
