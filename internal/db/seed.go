package db

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/cashpro/internal/models"
)

// SampleSnapshot returns the demo data set with dates relative to today.
func SampleSnapshot(today time.Time) models.Snapshot {
	today = models.Day(today)
	ago := func(n int) time.Time { return today.AddDate(0, 0, -n) }
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	tax := price("0.16")

	products := []models.Product{
		{ID: "p1", Code: "CAM-001", Name: "Camiseta Básica", Description: "Camiseta algodón 100%", Unit: "und", PurchasePrice: price("5"), SalePrice: price("15"), TaxRate: tax, Stock: 120, MinStock: 20, Active: true, CreatedAt: ago(30)},
		{ID: "p2", Code: "PAN-002", Name: "Pantalón Casual", Description: "Pantalón denim slim fit", Unit: "und", PurchasePrice: price("12"), SalePrice: price("35"), TaxRate: tax, Stock: 45, MinStock: 10, Active: true, CreatedAt: ago(28)},
		{ID: "p3", Code: "ZAP-003", Name: "Zapatos Deportivos", Description: "Zapatos running ergonómicos", Unit: "par", PurchasePrice: price("25"), SalePrice: price("70"), TaxRate: tax, Stock: 8, MinStock: 10, Active: true, CreatedAt: ago(25)},
		{ID: "p4", Code: "GOR-004", Name: "Gorra Snapback", Description: "Gorra ajustable bordada", Unit: "und", PurchasePrice: price("3"), SalePrice: price("12"), TaxRate: tax, Stock: 200, MinStock: 30, Active: true, CreatedAt: ago(20)},
		{ID: "p5", Code: "BOL-005", Name: "Bolso de Cuero", Description: "Bolso crossbody genuino", Unit: "und", PurchasePrice: price("18"), SalePrice: price("55"), TaxRate: tax, Stock: 5, MinStock: 8, Active: true, CreatedAt: ago(15)},
		{ID: "p6", Code: "CIN-006", Name: "Cinturón Premium", Description: "Cinturón cuero italiano", Unit: "und", PurchasePrice: price("8"), SalePrice: price("28"), TaxRate: tax, Stock: 60, MinStock: 15, Active: true, CreatedAt: ago(10)},
	}
	clients := []models.Client{
		{ID: "c1", Name: "María González", Email: "maria@email.com", Phone: "+58 412-555-0101", Address: "Av. Libertador 123", Notes: "Cliente frecuente", CreatedAt: ago(60)},
		{ID: "c2", Name: "Carlos Rodríguez", Email: "carlos@email.com", Phone: "+58 414-555-0202", Address: "Calle Bolívar 456", CreatedAt: ago(45)},
		{ID: "c3", Name: "Ana Martínez", Email: "ana@email.com", Phone: "+58 416-555-0303", Address: "Centro Comercial Plaza", Notes: "Mayorista", CreatedAt: ago(30)},
		{ID: "c4", Name: "Pedro Sánchez", Email: "pedro@email.com", Phone: "+58 424-555-0404", Address: "Zona Industrial Norte", CreatedAt: ago(20)},
	}

	item := func(id string, p models.Product, qty int) models.InvoiceItem {
		it := models.ItemFromProduct(p, qty)
		it.ID = id
		return it
	}
	invoice := func(id, number string, c models.Client, status models.InvoiceStatus, created, due time.Time, notes string, items ...models.InvoiceItem) models.Invoice {
		inv := models.Invoice{
			ID: id, Number: number, ClientID: c.ID, ClientName: c.Name, Items: items,
			Status: status, CreatedAt: created, DueDate: due, Notes: notes,
		}
		for i := range inv.Items {
			inv.Items[i].InvoiceID = id
		}
		inv.ComputeTotals()
		return inv
	}
	invoices := []models.Invoice{
		invoice("inv1", "INV-001", clients[0], models.InvoiceStatusPaid, ago(5), ago(0), "",
			item("ii1", products[0], 3), item("ii2", products[3], 2)),
		invoice("inv2", "INV-002", clients[1], models.InvoiceStatusPending, ago(3), ago(-7), "",
			item("ii3", products[1], 1)),
		invoice("inv3", "INV-003", clients[2], models.InvoiceStatusPartial, ago(7), ago(-3), "Entrega parcial",
			item("ii4", products[2], 5), item("ii5", products[5], 10)),
		invoice("inv4", "INV-004", clients[0], models.InvoiceStatusOverdue, ago(15), ago(5), "",
			item("ii6", products[4], 2)),
		invoice("inv5", "INV-005", clients[3], models.InvoiceStatusPaid, ago(0), ago(0), "Pago de contado",
			item("ii7", products[0], 10), item("ii8", products[1], 5)),
	}

	payments := []models.Payment{
		{ID: "pay1", InvoiceID: "inv1", Amount: price("80.04"), Method: models.PaymentMethodCash, Date: ago(5)},
		{ID: "pay2", InvoiceID: "inv3", Amount: price("300"), Method: models.PaymentMethodTransfer, Date: ago(4), Notes: "Pago parcial"},
		{ID: "pay3", InvoiceID: "inv5", Amount: price("377"), Method: models.PaymentMethodCard, Date: ago(0)},
	}
	expenses := []models.Expense{
		{ID: "e1", Description: "Alquiler local", Amount: price("200"), Category: "Alquiler", Date: ago(1)},
		{ID: "e2", Description: "Servicio de internet", Amount: price("30"), Category: "Servicios", Date: ago(2)},
		{ID: "e3", Description: "Compra de inventario", Amount: price("450"), Category: "Inventario", Date: ago(3)},
		{ID: "e4", Description: "Publicidad redes sociales", Amount: price("50"), Category: "Marketing", Date: ago(0)},
	}

	return models.Snapshot{Products: products, Clients: clients, Invoices: invoices, Payments: payments, Expenses: expenses}
}

// LoadOrSeed returns the stored snapshot, replacing it with the sample data
// when nothing is stored yet or force is set.
func LoadOrSeed(ctx context.Context, repo *Repository, today time.Time, force bool) (models.Snapshot, bool, error) {
	snap, err := repo.LoadSnapshot(ctx)
	if err != nil {
		return models.Snapshot{}, false, err
	}
	if !force && !IsEmpty(snap) {
		return snap, false, nil
	}
	snap = SampleSnapshot(today)
	if err := repo.SaveSnapshot(ctx, snap); err != nil {
		return models.Snapshot{}, false, err
	}
	return snap, true, nil
}
