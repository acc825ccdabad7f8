package services

import (
	"time"

	"github.com/diewo77/cashpro/internal/models"
	"github.com/shopspring/decimal"
)

// NextStatus classifies an invoice after a payment has been recorded against
// it. A paid invoice stays paid. Otherwise full (or over-) payment settles it,
// any payment makes it partial, and without payments the current status is
// kept. Overdue is never produced here.
func NextStatus(current models.InvoiceStatus, total, totalPaid decimal.Decimal) models.InvoiceStatus {
	switch {
	case current == models.InvoiceStatusPaid:
		return current
	case totalPaid.GreaterThanOrEqual(total):
		return models.InvoiceStatusPaid
	case totalPaid.IsPositive():
		return models.InvoiceStatusPartial
	default:
		return current
	}
}

// IsOverdue reports whether an unpaid invoice is past its due date.
func IsOverdue(inv *models.Invoice, today time.Time) bool {
	if inv.IsPaid() || inv.DueDate.IsZero() {
		return false
	}
	return models.Day(inv.DueDate).Before(models.Day(today))
}

// EffectiveStatus is the status shown to users: the stored status, or
// overdue when an unpaid invoice is past due. The stored status is not
// modified, so receivables keep working off the payment-driven state.
func EffectiveStatus(inv *models.Invoice, today time.Time) models.InvoiceStatus {
	if IsOverdue(inv, today) {
		return models.InvoiceStatusOverdue
	}
	return inv.Status
}
