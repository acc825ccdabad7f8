package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalogue entry with its stock level.
type Product struct {
	ID            string          `gorm:"primaryKey;size:64" json:"id"`
	Code          string          `gorm:"size:40;index" json:"code"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Unit          string          `gorm:"size:20" json:"unit"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"purchase_price"`
	SalePrice     decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"sale_price"`
	TaxRate       decimal.Decimal `gorm:"type:numeric(6,4);not null" json:"tax_rate"` // e.g. 0.16 for 16%
	Stock         int             `gorm:"not null;default:0" json:"stock"`
	MinStock      int             `gorm:"not null;default:0" json:"min_stock"`
	Active        bool            `gorm:"not null" json:"active"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`

	// Position keeps the collection order across persistence round-trips.
	Position int `gorm:"not null;default:0" json:"-"`
}

// LowStock reports whether stock has fallen under the configured minimum.
// It is a display flag only; nothing prevents stock going lower.
func (p *Product) LowStock() bool {
	return p.Stock < p.MinStock
}

// PriceWithTax returns the sale price including tax.
func (p *Product) PriceWithTax() decimal.Decimal {
	return p.SalePrice.Add(p.SalePrice.Mul(p.TaxRate))
}
