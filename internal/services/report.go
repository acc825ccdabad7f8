package services

import (
	"sort"
	"time"

	"github.com/diewo77/cashpro/i18n"
	"github.com/diewo77/cashpro/internal/models"
	"github.com/shopspring/decimal"
)

// SnapshotSource provides the current state of the collections.
type SnapshotSource interface {
	Snapshot() models.Snapshot
}

const (
	recentLimit       = 5
	chartDays         = 7
	defaultReportDays = 30
)

// MaxReportDays bounds the number of daily buckets a single report may hold.
const MaxReportDays = 366

// KPI is one dashboard card.
type KPI struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Value  decimal.Decimal `json:"value"`
	Change string          `json:"change"`
	Up     bool            `json:"up"`
}

// Dashboard is the landing-page summary.
type Dashboard struct {
	Date           time.Time        `json:"date"`
	KPIs           []KPI            `json:"kpis"`
	Chart          []CashFlowDay    `json:"chart"`
	RecentInvoices []InvoiceView    `json:"recent_invoices"`
	RecentExpenses []models.Expense `json:"recent_expenses"`
	LowStockCount  int              `json:"low_stock_count"`
}

// CashSummary totals money in and out over a report range.
type CashSummary struct {
	CashIn      decimal.Decimal `json:"cash_in"`
	CashOut     decimal.Decimal `json:"cash_out"`
	NetCashFlow decimal.Decimal `json:"net_cash_flow"`
}

// Report is the date-range statement: P&L plus cash flow.
type Report struct {
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	ProfitLoss  PnL           `json:"profit_and_loss"`
	CashSummary CashSummary   `json:"cash_summary"`
	CashFlow    []CashFlowDay `json:"cash_flow"`
}

// ReportService assembles dashboard and report views from engine outputs.
type ReportService struct {
	src   SnapshotSource
	today func() time.Time
}

func NewReportService(src SnapshotSource, today func() time.Time) *ReportService {
	if today == nil {
		today = time.Now
	}
	return &ReportService{src: src, today: today}
}

// Today returns the service's current calendar date.
func (s *ReportService) Today() time.Time {
	return models.Day(s.today())
}

// Dashboard computes today's KPIs, the last week of cash movement and the
// most recent activity. Labels are rendered in lang.
func (s *ReportService) Dashboard(lang string) Dashboard {
	snap := s.src.Snapshot()
	today := s.Today()
	ledger := NewLedger(snap)

	salesToday, costToday := decimal.Zero, decimal.Zero
	todayCount := 0
	for _, inv := range snap.Invoices {
		if models.SameDay(inv.CreatedAt, today) {
			salesToday = salesToday.Add(inv.Total)
			costToday = costToday.Add(inv.CostTotal)
			todayCount++
		}
	}
	profitToday := salesToday.Sub(costToday)

	marginLabel := i18n.T(lang, "kpi.none")
	if salesToday.IsPositive() {
		pct := profitToday.Div(salesToday).Mul(hundred).Round(0)
		marginLabel = i18n.Tf(lang, "kpi.margin", pct.String())
	}

	netCash := sumPayments(snap.Payments).Sub(sumExpenses(snap.Expenses))
	cashLabel := i18n.T(lang, "kpi.positive")
	if netCash.IsNegative() {
		cashLabel = i18n.T(lang, "kpi.negative")
	}

	kpis := []KPI{
		{Key: "sales_today", Label: i18n.T(lang, "kpi.sales_today"), Value: salesToday,
			Change: i18n.Tf(lang, "kpi.invoices", todayCount), Up: true},
		{Key: "profit_today", Label: i18n.T(lang, "kpi.profit_today"), Value: profitToday,
			Change: marginLabel, Up: profitToday.IsPositive()},
		{Key: "receivables", Label: i18n.T(lang, "kpi.receivables"), Value: ledger.TotalReceivables(),
			Change: i18n.Tf(lang, "kpi.invoices", ledger.OpenInvoiceCount()), Up: false},
		{Key: "net_cash_flow", Label: i18n.T(lang, "kpi.net_cash"), Value: netCash,
			Change: cashLabel, Up: !netCash.IsNegative()},
	}

	return Dashboard{
		Date:           today,
		KPIs:           kpis,
		Chart:          DailyCashFlow(today.AddDate(0, 0, -(chartDays-1)), today, snap.Payments, snap.Expenses),
		RecentInvoices: recentInvoices(snap, today),
		RecentExpenses: recentExpenses(snap.Expenses),
		LowStockCount:  LowStockCount(snap.Products),
	}
}

// Range resolves a report range: a zero end is today and a zero start is
// 30 days before today.
func (s *ReportService) Range(start, end time.Time) (time.Time, time.Time) {
	today := s.Today()
	if end.IsZero() {
		end = today
	}
	if start.IsZero() {
		start = today.AddDate(0, 0, -defaultReportDays)
	}
	return models.Day(start), models.Day(end)
}

// RangeDays counts the calendar days in [start, end], zero when start is after end.
func RangeDays(start, end time.Time) int {
	first, last := models.Day(start), models.Day(end)
	if first.After(last) {
		return 0
	}
	return int(last.Sub(first).Hours()/24) + 1
}

// Report computes the P&L and daily cash flow for [start, end]. A zero
// start or end defaults to the last 30 days ending today.
func (s *ReportService) Report(start, end time.Time) Report {
	start, end = s.Range(start, end)

	snap := s.src.Snapshot()
	invoices := InvoicesInRange(snap.Invoices, start, end)
	expenses := ExpensesInRange(snap.Expenses, start, end)
	payments := PaymentsInRange(snap.Payments, start, end)

	pnl := ProfitAndLoss(invoices, expenses)
	cashIn := sumPayments(payments)

	return Report{
		Start:      start,
		End:        end,
		ProfitLoss: pnl,
		CashSummary: CashSummary{
			CashIn:      cashIn,
			CashOut:     pnl.OperatingExpenses,
			NetCashFlow: cashIn.Sub(pnl.OperatingExpenses),
		},
		CashFlow: DailyCashFlow(start, end, payments, expenses),
	}
}

func recentInvoices(snap models.Snapshot, today time.Time) []InvoiceView {
	sorted := append([]models.Invoice(nil), snap.Invoices...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return models.Day(sorted[i].CreatedAt).After(models.Day(sorted[j].CreatedAt))
	})
	if len(sorted) > recentLimit {
		sorted = sorted[:recentLimit]
	}
	out := make([]InvoiceView, 0, len(sorted))
	for _, inv := range sorted {
		out = append(out, NewInvoiceView(snap, inv, today))
	}
	return out
}

func recentExpenses(expenses []models.Expense) []models.Expense {
	sorted := append([]models.Expense(nil), expenses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return models.Day(sorted[i].Date).After(models.Day(sorted[j].Date))
	})
	if len(sorted) > recentLimit {
		sorted = sorted[:recentLimit]
	}
	return sorted
}
