package handlers

import (
	"net/http"

	"github.com/diewo77/cashpro/httpx"
	"github.com/diewo77/cashpro/internal/services"
	"github.com/diewo77/cashpro/internal/store"
)

type ClientHandler struct {
	store *store.Store
}

func NewClientHandler(st *store.Store) *ClientHandler {
	return &ClientHandler{store: st}
}

// List returns clients matching ?q= with their outstanding balance.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients := services.ListClients(h.store.Snapshot(), r.URL.Query().Get("q"))
	httpx.JSON(w, http.StatusOK, list(clients))
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in store.ClientInput
	if err := httpx.Decode(r, &in); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	c, err := h.store.AddClient(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

// View returns the client with its balance and invoices.
func (h *ClientHandler) View(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, err := h.store.Client(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap := h.store.Snapshot()
	ledger := services.NewLedger(snap)
	today := h.store.Today()

	invoices := []services.InvoiceView{}
	for _, inv := range snap.Invoices {
		if inv.ClientID == id {
			invoices = append(invoices, services.NewInvoiceView(snap, inv, today))
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"client":        c,
		"balance":       ledger.ClientBalance(id),
		"invoice_count": len(invoices),
		"invoices":      invoices,
	})
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var patch store.ClientPatch
	if err := httpx.Decode(r, &patch); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	if err := h.store.UpdateClient(r.Context(), id, patch); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.store.Client(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Delete removes the client; its invoices keep the client name.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteClient(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
