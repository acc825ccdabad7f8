package handlers

import (
	"net/http"

	"github.com/diewo77/cashpro/httpx"
	"github.com/diewo77/cashpro/internal/models"
	"github.com/diewo77/cashpro/internal/store"
)

type PaymentHandler struct {
	store *store.Store
}

func NewPaymentHandler(st *store.Store) *PaymentHandler {
	return &PaymentHandler{store: st}
}

// List returns payments, optionally only those of ?invoice_id=.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	invoiceID := r.URL.Query().Get("invoice_id")
	payments := []models.Payment{}
	for _, p := range h.store.Payments() {
		if invoiceID == "" || p.InvoiceID == invoiceID {
			payments = append(payments, p)
		}
	}
	httpx.JSON(w, http.StatusOK, list(payments))
}

// Create records a payment. Unknown invoice ids are accepted and the
// payment is kept without reclassifying any invoice.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := httpx.Decode(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	in, v := req.input()
	if !v.Empty() {
		writeViolations(w, r, v)
		return
	}
	p, err := h.store.AddPayment(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}
