package services

import (
	"strings"
	"time"

	"github.com/diewo77/cashpro/internal/models"
	"github.com/shopspring/decimal"
)

// ProductFilter narrows product listings.
type ProductFilter string

const (
	ProductFilterAll    ProductFilter = "all"
	ProductFilterActive ProductFilter = "active"
	ProductFilterLow    ProductFilter = "low"
)

// ProductView is a product with its derived display values.
type ProductView struct {
	models.Product
	Margin       decimal.Decimal `json:"margin"`
	PriceWithTax decimal.Decimal `json:"price_with_tax"`
	LowStock     bool            `json:"low_stock"`
}

func NewProductView(p models.Product) ProductView {
	return ProductView{
		Product:      p,
		Margin:       Margin(p.SalePrice, p.PurchasePrice),
		PriceWithTax: p.PriceWithTax(),
		LowStock:     p.LowStock(),
	}
}

// ListProducts applies the name/code search and filter, keeping input order.
func ListProducts(products []models.Product, query string, filter ProductFilter) []ProductView {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []ProductView{}
	for _, p := range products {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Code), q) {
			continue
		}
		switch filter {
		case ProductFilterActive:
			if !p.Active {
				continue
			}
		case ProductFilterLow:
			if !p.LowStock() {
				continue
			}
		}
		out = append(out, NewProductView(p))
	}
	return out
}

// LowStockCount counts products under their minimum stock.
func LowStockCount(products []models.Product) int {
	n := 0
	for i := range products {
		if products[i].LowStock() {
			n++
		}
	}
	return n
}

// ClientView is a client with its outstanding balance.
type ClientView struct {
	models.Client
	Balance      decimal.Decimal `json:"balance"`
	InvoiceCount int             `json:"invoice_count"`
}

// ListClients searches clients by name, email or phone and attaches balances.
func ListClients(snap models.Snapshot, query string) []ClientView {
	l := NewLedger(snap)
	q := strings.ToLower(strings.TrimSpace(query))
	out := []ClientView{}
	for _, c := range snap.Clients {
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.Email), q) && !strings.Contains(c.Phone, q) {
			continue
		}
		out = append(out, ClientView{Client: c, Balance: l.ClientBalance(c.ID), InvoiceCount: l.ClientInvoiceCount(c.ID)})
	}
	return out
}

// InvoiceView is an invoice with its payment position as of a given day.
type InvoiceView struct {
	models.Invoice
	Paid            decimal.Decimal      `json:"paid"`
	Balance         decimal.Decimal      `json:"balance"`
	EffectiveStatus models.InvoiceStatus `json:"effective_status"`
}

// NewInvoiceView derives the payment position of inv from snap.
func NewInvoiceView(snap models.Snapshot, inv models.Invoice, today time.Time) InvoiceView {
	paid := PaidTotal(snap.Payments, inv.ID)
	return InvoiceView{
		Invoice:         inv,
		Paid:            paid,
		Balance:         inv.Total.Sub(paid),
		EffectiveStatus: EffectiveStatus(&inv, today),
	}
}

// ListInvoices filters by effective status ("" or "all" for any) and by a
// number or client-name search.
func ListInvoices(snap models.Snapshot, query string, status string, today time.Time) []InvoiceView {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []InvoiceView{}
	for _, inv := range snap.Invoices {
		v := NewInvoiceView(snap, inv, today)
		if status != "" && status != "all" && string(v.EffectiveStatus) != status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(inv.Number), q) && !strings.Contains(strings.ToLower(inv.ClientName), q) {
			continue
		}
		out = append(out, v)
	}
	return out
}
