package handlers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/diewo77/cashpro/httpx"
	"github.com/diewo77/cashpro/internal/models"
	"github.com/diewo77/cashpro/internal/store"
	"github.com/diewo77/cashpro/validation"
)

type ExpenseHandler struct {
	store *store.Store
}

func NewExpenseHandler(st *store.Store) *ExpenseHandler {
	return &ExpenseHandler{store: st}
}

type expenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date"` // YYYY-MM-DD, empty for today
	Notes       string          `json:"notes"`
}

// List returns expenses, optionally filtered by ?category= (case-insensitive).
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	expenses := []models.Expense{}
	for _, e := range h.store.Expenses() {
		if category == "" || strings.EqualFold(e.Category, category) {
			expenses = append(expenses, e)
		}
	}
	httpx.JSON(w, http.StatusOK, list(expenses))
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := httpx.Decode(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	in := store.ExpenseInput{Description: req.Description, Amount: req.Amount, Category: req.Category, Notes: req.Notes}
	if req.Date != "" {
		d, err := models.ParseDay(req.Date)
		if err != nil {
			writeViolations(w, r, validation.Violations{"date": "invalid_date"})
			return
		}
		in.Date = d
	}
	e, err := h.store.AddExpense(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}
