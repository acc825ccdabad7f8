package handlers

import (
	"net/http"

	"github.com/diewo77/cashpro/httpx"
	"github.com/diewo77/cashpro/internal/services"
	"github.com/diewo77/cashpro/internal/store"
)

type ProductHandler struct {
	store *store.Store
}

func NewProductHandler(st *store.Store) *ProductHandler {
	return &ProductHandler{store: st}
}

// List returns products matching ?q= (name or code) and ?filter=all|active|low.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	filter := services.ProductFilter(r.URL.Query().Get("filter"))
	products := services.ListProducts(h.store.Products(), query, filter)
	httpx.JSON(w, http.StatusOK, list(products))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in store.ProductInput
	if err := httpx.Decode(r, &in); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	p, err := h.store.AddProduct(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) View(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Product(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, services.NewProductView(p))
}

// Update applies a partial update and returns the stored product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var patch store.ProductPatch
	if err := httpx.Decode(r, &patch); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	if err := h.store.UpdateProduct(r.Context(), id, patch); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.store.Product(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
