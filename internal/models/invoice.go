package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPartial InvoiceStatus = "partial"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// Invoice represents a sale to a client. Items and client name are frozen
// copies taken at sale time; later product or client edits do not reach them.
type Invoice struct {
	ID         string        `gorm:"primaryKey;size:64" json:"id"`
	Number     string        `gorm:"size:50;index" json:"number"`
	ClientID   string        `gorm:"size:64;index" json:"client_id"`
	ClientName string        `gorm:"size:255" json:"client_name"`
	Items      []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`

	// Totals are computed once at creation and never recomputed from items.
	Subtotal  decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"subtotal"`
	TaxTotal  decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"tax_total"`
	Total     decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"total"`
	CostTotal decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"cost_total"`

	Status    InvoiceStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt time.Time     `gorm:"not null;index" json:"created_at"`
	DueDate   time.Time     `gorm:"not null" json:"due_date"`
	Notes     string        `gorm:"type:text" json:"notes"`

	Position int `gorm:"not null;default:0" json:"-"`
}

// IsPaid returns true if the invoice has been fully settled.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// ComputeTotals fills Subtotal, TaxTotal, Total and CostTotal from the items.
func (i *Invoice) ComputeTotals() {
	subtotal, tax, cost := decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range i.Items {
		subtotal = subtotal.Add(item.LineSubtotal())
		tax = tax.Add(item.LineTax())
		cost = cost.Add(item.LineCost())
	}
	i.Subtotal = subtotal
	i.TaxTotal = tax
	i.Total = subtotal.Add(tax)
	i.CostTotal = cost
}

// GrossProfit is the tax-exclusive revenue minus cost of goods.
func (i *Invoice) GrossProfit() decimal.Decimal {
	return i.Subtotal.Sub(i.CostTotal)
}

// Clone copies the invoice including its items slice.
func (i Invoice) Clone() Invoice {
	i.Items = append([]InvoiceItem(nil), i.Items...)
	return i
}

// InvoiceItem is a line on an invoice: a snapshot of the product economics
// at the time of sale.
type InvoiceItem struct {
	ID          string          `gorm:"primaryKey;size:64" json:"id"`
	InvoiceID   string          `gorm:"size:64;index;not null" json:"-"`
	ProductID   string          `gorm:"size:64" json:"product_id"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unit_price"`
	CostPrice   decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"cost_price"`
	TaxRate     decimal.Decimal `gorm:"type:numeric(6,4);not null" json:"tax_rate"`

	// Position for ordering
	Position int `gorm:"default:0" json:"-"`
}

// ItemFromProduct freezes the product's current price, cost and tax rate
// into a new line.
func ItemFromProduct(p Product, qty int) InvoiceItem {
	return InvoiceItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    qty,
		UnitPrice:   p.SalePrice,
		CostPrice:   p.PurchasePrice,
		TaxRate:     p.TaxRate,
	}
}

func (item *InvoiceItem) qty() decimal.Decimal {
	return decimal.NewFromInt(int64(item.Quantity))
}

// LineSubtotal is unit price times quantity, excluding tax.
func (item *InvoiceItem) LineSubtotal() decimal.Decimal {
	return item.UnitPrice.Mul(item.qty())
}

// LineTax is the tax charged on the line.
func (item *InvoiceItem) LineTax() decimal.Decimal {
	return item.LineSubtotal().Mul(item.TaxRate)
}

// LineCost is cost price times quantity.
func (item *InvoiceItem) LineCost() decimal.Decimal {
	return item.CostPrice.Mul(item.qty())
}

// FormatInvoiceNumber renders a sequence as INV-001, INV-002, ...
func FormatInvoiceNumber(seq int) string {
	return fmt.Sprintf("INV-%03d", seq)
}

// ParseInvoiceNumber extracts the sequence from an INV-NNN label.
func ParseInvoiceNumber(number string) (int, bool) {
	rest, ok := strings.CutPrefix(number, "INV-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
