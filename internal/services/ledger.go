package services

import (
	"time"

	"github.com/diewo77/cashpro/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Ledger answers balance questions over one snapshot of the collections.
// Every call recomputes from the raw payments; nothing is cached.
type Ledger struct {
	snap models.Snapshot
}

func NewLedger(snap models.Snapshot) *Ledger {
	return &Ledger{snap: snap}
}

func (l *Ledger) invoice(id string) (*models.Invoice, bool) {
	for i := range l.snap.Invoices {
		if l.snap.Invoices[i].ID == id {
			return &l.snap.Invoices[i], true
		}
	}
	return nil, false
}

// PaidTotal sums every payment recorded against invoiceID.
func (l *Ledger) PaidTotal(invoiceID string) decimal.Decimal {
	return PaidTotal(l.snap.Payments, invoiceID)
}

// InvoiceBalance is the invoice total minus its payments. It is zero for an
// unknown invoice and negative after an overpayment.
func (l *Ledger) InvoiceBalance(invoiceID string) decimal.Decimal {
	inv, ok := l.invoice(invoiceID)
	if !ok {
		return decimal.Zero
	}
	return inv.Total.Sub(l.PaidTotal(invoiceID))
}

// ClientBalance sums the balances of the client's invoices that are not paid.
func (l *Ledger) ClientBalance(clientID string) decimal.Decimal {
	sum := decimal.Zero
	for _, inv := range l.snap.Invoices {
		if inv.ClientID == clientID && !inv.IsPaid() {
			sum = sum.Add(l.InvoiceBalance(inv.ID))
		}
	}
	return sum
}

// TotalReceivables sums the balances of every invoice that is not paid.
// Paid invoices are skipped outright, whatever their arithmetic balance.
func (l *Ledger) TotalReceivables() decimal.Decimal {
	sum := decimal.Zero
	for _, inv := range l.snap.Invoices {
		if !inv.IsPaid() {
			sum = sum.Add(l.InvoiceBalance(inv.ID))
		}
	}
	return sum
}

// OpenInvoiceCount counts invoices not yet paid.
func (l *Ledger) OpenInvoiceCount() int {
	n := 0
	for _, inv := range l.snap.Invoices {
		if !inv.IsPaid() {
			n++
		}
	}
	return n
}

// ClientInvoiceCount counts every invoice issued to clientID.
func (l *Ledger) ClientInvoiceCount(clientID string) int {
	n := 0
	for _, inv := range l.snap.Invoices {
		if inv.ClientID == clientID {
			n++
		}
	}
	return n
}

// PaidTotal sums the payments in payments that reference invoiceID.
func PaidTotal(payments []models.Payment, invoiceID string) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		if p.InvoiceID == invoiceID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

// Margin is (sale - purchase) / sale, or zero when the sale price is zero.
func Margin(salePrice, purchasePrice decimal.Decimal) decimal.Decimal {
	if salePrice.IsZero() {
		return decimal.Zero
	}
	return salePrice.Sub(purchasePrice).Div(salePrice)
}

// GrossProfitLine is (sale - cost) * qty.
func GrossProfitLine(sale, cost decimal.Decimal, qty int) decimal.Decimal {
	return sale.Sub(cost).Mul(decimal.NewFromInt(int64(qty)))
}

// ratio divides n by d, returning zero when d is not positive.
func ratio(n, d decimal.Decimal) decimal.Decimal {
	if !d.IsPositive() {
		return decimal.Zero
	}
	return n.Div(d)
}

// CashFlowDay is one calendar day of the cash-flow series.
type CashFlowDay struct {
	Date          time.Time       `json:"date"`
	Inflow        decimal.Decimal `json:"inflow"`
	Outflow       decimal.Decimal `json:"outflow"`
	CumulativeNet decimal.Decimal `json:"cumulative_net"`
}

// DailyCashFlow builds one bucket per day of [start, end], summing payments
// as inflow and expenses as outflow, with the running net carried across
// days in ascending date order. Days without activity are still present.
func DailyCashFlow(start, end time.Time, payments []models.Payment, expenses []models.Expense) []CashFlowDay {
	first, last := models.Day(start), models.Day(end)
	if first.After(last) {
		return []CashFlowDay{}
	}

	var days []CashFlowDay
	index := map[time.Time]int{}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		index[d] = len(days)
		days = append(days, CashFlowDay{Date: d, Inflow: decimal.Zero, Outflow: decimal.Zero})
	}
	for _, p := range payments {
		if i, ok := index[models.Day(p.Date)]; ok {
			days[i].Inflow = days[i].Inflow.Add(p.Amount)
		}
	}
	for _, e := range expenses {
		if i, ok := index[models.Day(e.Date)]; ok {
			days[i].Outflow = days[i].Outflow.Add(e.Amount)
		}
	}

	cumulative := decimal.Zero
	for i := range days {
		cumulative = cumulative.Add(days[i].Inflow).Sub(days[i].Outflow)
		days[i].CumulativeNet = cumulative
	}
	return days
}

// PnL is a profit and loss statement for a period.
type PnL struct {
	Revenue           decimal.Decimal `json:"revenue"`
	COGS              decimal.Decimal `json:"cogs"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	GrossMargin       decimal.Decimal `json:"gross_margin"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	NetMargin         decimal.Decimal `json:"net_margin"`
}

// ProfitAndLoss computes the statement from invoices and expenses that the
// caller has already restricted to the period. Revenue is tax-exclusive.
func ProfitAndLoss(invoices []models.Invoice, expenses []models.Expense) PnL {
	revenue, cogs, opex := decimal.Zero, decimal.Zero, decimal.Zero
	for _, inv := range invoices {
		revenue = revenue.Add(inv.Subtotal)
		cogs = cogs.Add(inv.CostTotal)
	}
	for _, e := range expenses {
		opex = opex.Add(e.Amount)
	}
	gross := revenue.Sub(cogs)
	net := gross.Sub(opex)
	return PnL{
		Revenue:           revenue,
		COGS:              cogs,
		GrossProfit:       gross,
		GrossMargin:       ratio(gross, revenue),
		OperatingExpenses: opex,
		NetProfit:         net,
		NetMargin:         ratio(net, revenue),
	}
}

// InvoicesInRange keeps invoices created within [start, end].
func InvoicesInRange(invoices []models.Invoice, start, end time.Time) []models.Invoice {
	out := []models.Invoice{}
	for _, inv := range invoices {
		if models.InRange(inv.CreatedAt, start, end) {
			out = append(out, inv)
		}
	}
	return out
}

// PaymentsInRange keeps payments dated within [start, end].
func PaymentsInRange(payments []models.Payment, start, end time.Time) []models.Payment {
	out := []models.Payment{}
	for _, p := range payments {
		if models.InRange(p.Date, start, end) {
			out = append(out, p)
		}
	}
	return out
}

// ExpensesInRange keeps expenses dated within [start, end].
func ExpensesInRange(expenses []models.Expense, start, end time.Time) []models.Expense {
	out := []models.Expense{}
	for _, e := range expenses {
		if models.InRange(e.Date, start, end) {
			out = append(out, e)
		}
	}
	return out
}

func sumPayments(payments []models.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

func sumExpenses(expenses []models.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}
