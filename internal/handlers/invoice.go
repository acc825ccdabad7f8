package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/diewo77/cashpro/httpx"
	"github.com/diewo77/cashpro/i18n"
	"github.com/diewo77/cashpro/internal/models"
	"github.com/diewo77/cashpro/internal/services"
	"github.com/diewo77/cashpro/internal/store"
	"github.com/diewo77/cashpro/validation"
)

type InvoiceHandler struct {
	store   *store.Store
	reports *services.ReportService
}

func NewInvoiceHandler(st *store.Store, reports *services.ReportService) *InvoiceHandler {
	return &InvoiceHandler{store: st, reports: reports}
}

type invoiceLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type invoiceRequest struct {
	ClientID   string               `json:"client_id"`
	ClientName string               `json:"client_name"`
	Lines      []invoiceLine        `json:"lines"`
	DueDate    string               `json:"due_date"` // YYYY-MM-DD
	Status     models.InvoiceStatus `json:"status"`
	Notes      string               `json:"notes"`
}

// lineViolations renames the store's item fields after the request lines.
// Items are built one per line, so indexes match.
func lineViolations(v validation.Violations) validation.Violations {
	out := validation.Violations{}
	for field, code := range v {
		if rest, ok := strings.CutPrefix(field, "items"); ok {
			field = "lines" + rest
		}
		out[field] = code
	}
	return out
}

type invoiceDetail struct {
	services.InvoiceView
	Payments []models.Payment `json:"payments"`
}

// List filters by ?status= (effective status, "all" for any) and ?q=
// (number or client name).
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	invoices := services.ListInvoices(h.store.Snapshot(), q.Get("q"), q.Get("status"), h.reports.Today())
	httpx.JSON(w, http.StatusOK, list(invoices))
}

// Create builds the invoice lines from the current product catalogue.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := httpx.Decode(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	lang := i18n.LangFromContext(r.Context())
	v := validation.Violations{}

	in := store.InvoiceInput{
		ClientID:   req.ClientID,
		ClientName: strings.TrimSpace(req.ClientName),
		Status:     req.Status,
		Notes:      req.Notes,
	}
	for i, line := range req.Lines {
		p, err := h.store.Product(line.ProductID)
		if err != nil {
			v[fmt.Sprintf("lines[%d].product_id", i)] = "not_found"
			continue
		}
		in.Items = append(in.Items, store.ItemFromProduct(p, line.Quantity))
	}
	if in.ClientName == "" {
		if req.ClientID == "" {
			in.ClientName = i18n.T(lang, "client.none")
		} else if c, err := h.store.Client(req.ClientID); err == nil {
			in.ClientName = c.Name
		} else {
			v["client_id"] = "not_found"
		}
	}
	if req.DueDate != "" {
		due, err := models.ParseDay(req.DueDate)
		if err != nil {
			v["due_date"] = "invalid_date"
		}
		in.DueDate = due
	}
	if !v.Empty() {
		writeViolations(w, r, v)
		return
	}

	inv, err := h.store.AddInvoice(r.Context(), in)
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		writeViolations(w, r, lineViolations(verr.Violations))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, h.detail(inv))
}

func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	inv, err := h.store.Invoice(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.detail(inv))
}

// UpdateStatus overwrites the stored status: {"status": "paid"}.
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req struct {
		Status models.InvoiceStatus `json:"status"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	if err := h.store.UpdateInvoiceStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	h.View(w, r)
}

// AddPayment records a payment against the invoice in the path.
func (h *InvoiceHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.store.Invoice(id); err != nil {
		writeError(w, r, err)
		return
	}
	var req paymentRequest
	if err := httpx.Decode(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	req.InvoiceID = id
	in, v := req.input()
	if !v.Empty() {
		writeViolations(w, r, v)
		return
	}
	if _, err := h.store.AddPayment(r.Context(), in); err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := h.store.Invoice(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, h.detail(inv))
}

func (h *InvoiceHandler) detail(inv models.Invoice) invoiceDetail {
	snap := h.store.Snapshot()
	payments := []models.Payment{}
	for _, p := range snap.Payments {
		if p.InvoiceID == inv.ID {
			payments = append(payments, p)
		}
	}
	return invoiceDetail{
		InvoiceView: services.NewInvoiceView(snap, inv, h.reports.Today()),
		Payments:    payments,
	}
}

type paymentRequest struct {
	InvoiceID string               `json:"invoice_id"`
	Amount    decimal.Decimal      `json:"amount"`
	Method    models.PaymentMethod `json:"method"`
	Date      string               `json:"date"` // YYYY-MM-DD, empty for today
	Notes     string               `json:"notes"`
}

func (req paymentRequest) input() (store.PaymentInput, validation.Violations) {
	in := store.PaymentInput{InvoiceID: req.InvoiceID, Amount: req.Amount, Method: req.Method, Notes: req.Notes}
	v := validation.Violations{}
	if req.Date != "" {
		d, err := models.ParseDay(req.Date)
		if err != nil {
			v["date"] = "invalid_date"
		}
		in.Date = d
	}
	return in, v
}
