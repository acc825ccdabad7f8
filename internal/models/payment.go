package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was received.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodOther    PaymentMethod = "other"
)

// Valid reports whether m is one of the known methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is money received against an invoice. Payments are immutable.
type Payment struct {
	ID        string          `gorm:"primaryKey;size:64" json:"id"`
	InvoiceID string          `gorm:"size:64;index;not null" json:"invoice_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"amount"`
	Method    PaymentMethod   `gorm:"size:20;not null" json:"method"`
	Date      time.Time       `gorm:"not null;index" json:"date"`
	Notes     string          `gorm:"type:text" json:"notes"`

	Position int `gorm:"not null;default:0" json:"-"`
}
