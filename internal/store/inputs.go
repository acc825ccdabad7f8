package store

import (
	"time"

	"github.com/diewo77/cashpro/internal/models"
	"github.com/shopspring/decimal"
)

// ProductInput is the caller-supplied part of a new product.
type ProductInput struct {
	Code          string          `json:"code"`
	Name          string          `json:"name" validate:"required,notblank"`
	Description   string          `json:"description"`
	Unit          string          `json:"unit"`
	PurchasePrice decimal.Decimal `json:"purchase_price" validate:"gte=0"`
	SalePrice     decimal.Decimal `json:"sale_price" validate:"gte=0"`
	TaxRate       decimal.Decimal `json:"tax_rate" validate:"gte=0"`
	Stock         int             `json:"stock" validate:"gte=0"`
	MinStock      int             `json:"min_stock" validate:"gte=0"`
	Active        *bool           `json:"active"`
}

// ProductPatch updates the non-nil fields of a product.
type ProductPatch struct {
	Code          *string          `json:"code"`
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Unit          *string          `json:"unit"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	TaxRate       *decimal.Decimal `json:"tax_rate"`
	Stock         *int             `json:"stock"`
	MinStock      *int             `json:"min_stock"`
	Active        *bool            `json:"active"`
}

func (p ProductPatch) apply(dst *models.Product) {
	setIf(&dst.Code, p.Code)
	setIf(&dst.Name, p.Name)
	setIf(&dst.Description, p.Description)
	setIf(&dst.Unit, p.Unit)
	setIf(&dst.PurchasePrice, p.PurchasePrice)
	setIf(&dst.SalePrice, p.SalePrice)
	setIf(&dst.TaxRate, p.TaxRate)
	setIf(&dst.Stock, p.Stock)
	setIf(&dst.MinStock, p.MinStock)
	setIf(&dst.Active, p.Active)
}

func productInputOf(p models.Product) ProductInput {
	return ProductInput{
		Code: p.Code, Name: p.Name, Description: p.Description, Unit: p.Unit,
		PurchasePrice: p.PurchasePrice, SalePrice: p.SalePrice, TaxRate: p.TaxRate,
		Stock: p.Stock, MinStock: p.MinStock, Active: &p.Active,
	}
}

// ClientInput is the caller-supplied part of a new client.
type ClientInput struct {
	Name    string `json:"name" validate:"required,notblank"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// ClientPatch updates the non-nil fields of a client.
type ClientPatch struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

func (p ClientPatch) apply(dst *models.Client) {
	setIf(&dst.Name, p.Name)
	setIf(&dst.Email, p.Email)
	setIf(&dst.Phone, p.Phone)
	setIf(&dst.Address, p.Address)
	setIf(&dst.Notes, p.Notes)
}

func clientInputOf(c models.Client) ClientInput {
	return ClientInput{Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address, Notes: c.Notes}
}

// ItemInput is one invoice line. The product fields are copied as given.
type ItemInput struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name" validate:"required,notblank"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
	CostPrice   decimal.Decimal `json:"cost_price" validate:"gte=0"`
	TaxRate     decimal.Decimal `json:"tax_rate" validate:"gte=0"`
}

// ItemFromProduct freezes the product's current prices into a line.
func ItemFromProduct(p models.Product, qty int) ItemInput {
	it := models.ItemFromProduct(p, qty)
	return ItemInput{
		ProductID: it.ProductID, ProductName: it.ProductName, Quantity: it.Quantity,
		UnitPrice: it.UnitPrice, CostPrice: it.CostPrice, TaxRate: it.TaxRate,
	}
}

// InvoiceInput is the caller-supplied part of a new invoice. Number,
// creation date and totals are assigned by the store.
type InvoiceInput struct {
	ClientID   string               `json:"client_id"`
	ClientName string               `json:"client_name"`
	Items      []ItemInput          `json:"items" validate:"required,min=1,dive"`
	Status     models.InvoiceStatus `json:"status" validate:"omitempty,oneof=pending partial paid overdue"`
	DueDate    time.Time            `json:"due_date"`
	Notes      string               `json:"notes"`
}

// PaymentInput records money received. A zero Date means today.
type PaymentInput struct {
	InvoiceID string               `json:"invoice_id" validate:"required,notblank"`
	Amount    decimal.Decimal      `json:"amount" validate:"gt=0"`
	Method    models.PaymentMethod `json:"method" validate:"omitempty,oneof=cash card transfer other"`
	Date      time.Time            `json:"date"`
	Notes     string               `json:"notes"`
}

// ExpenseInput records money paid out. A zero Date means today.
type ExpenseInput struct {
	Description string          `json:"description" validate:"required,notblank"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	Notes       string          `json:"notes"`
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
