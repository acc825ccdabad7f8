package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/cashpro/httpx"
	"github.com/diewo77/cashpro/i18n"
	"github.com/diewo77/cashpro/internal/format"
	"github.com/diewo77/cashpro/internal/models"
	"github.com/diewo77/cashpro/internal/services"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type kpiView struct {
	services.KPI
	Display string `json:"display"`
}

type chartPoint struct {
	services.CashFlowDay
	Label string `json:"label"`
}

type dashboardResponse struct {
	services.Dashboard
	KPIs  []kpiView    `json:"kpis"`
	Chart []chartPoint `json:"chart"`
}

// Dashboard renders today's KPIs in the request language.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	lang := i18n.LangFromContext(r.Context())
	dash := h.reports.Dashboard(lang)

	resp := dashboardResponse{Dashboard: dash}
	for _, k := range dash.KPIs {
		resp.KPIs = append(resp.KPIs, kpiView{KPI: k, Display: format.Currency(lang, k.Value)})
	}
	for _, d := range dash.Chart {
		resp.Chart = append(resp.Chart, chartPoint{CashFlowDay: d, Label: format.ShortDate(lang, d.Date)})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type reportResponse struct {
	services.Report
	Display map[string]string `json:"display"`
}

// Report returns the P&L and cash flow for ?start=&end= (YYYY-MM-DD). Missing
// bounds default to the last 30 days.
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	lang := i18n.LangFromContext(r.Context())
	start, errStart := dateParam(r, "start")
	end, errEnd := dateParam(r, "end")
	if errStart != nil || errEnd != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", i18n.T(lang, "invalid_date"), nil)
		return
	}
	start, end = h.reports.Range(start, end)
	if services.RangeDays(start, end) > services.MaxReportDays {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "range_too_large", i18n.Tf(lang, "range_too_large", services.MaxReportDays), nil)
		return
	}

	rep := h.reports.Report(start, end)
	pnl := rep.ProfitLoss
	httpx.JSON(w, http.StatusOK, reportResponse{
		Report: rep,
		Display: map[string]string{
			"period":        format.FullDate(lang, rep.Start) + " - " + format.FullDate(lang, rep.End),
			"revenue":       format.Currency(lang, pnl.Revenue),
			"gross_profit":  format.Currency(lang, pnl.GrossProfit),
			"gross_margin":  format.Percent(pnl.GrossMargin),
			"net_profit":    format.Currency(lang, pnl.NetProfit),
			"net_margin":    format.Percent(pnl.NetMargin),
			"net_cash_flow": format.Currency(lang, rep.CashSummary.NetCashFlow),
		},
	})
}

// dateParam parses an optional YYYY-MM-DD query parameter; empty yields the zero time.
func dateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	return models.ParseDay(raw)
}
