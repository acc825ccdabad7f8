package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is an operating cost paid out of the business.
type Expense struct {
	ID          string          `gorm:"primaryKey;size:64" json:"id"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"amount"`
	Category    string          `gorm:"size:100;index" json:"category"` // free-text label
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Notes       string          `gorm:"type:text" json:"notes"`

	Position int `gorm:"not null;default:0" json:"-"`
}
