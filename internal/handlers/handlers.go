// Package handlers exposes the store and reports as a JSON HTTP API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/diewo77/cashpro/httpx"
	"github.com/diewo77/cashpro/i18n"
	"github.com/diewo77/cashpro/internal/logger"
	"github.com/diewo77/cashpro/internal/services"
	"github.com/diewo77/cashpro/internal/store"
	"github.com/diewo77/cashpro/validation"
)

// RouterConfig holds the configured handlers for the application.
type RouterConfig struct {
	ProductHandler *ProductHandler
	ClientHandler  *ClientHandler
	InvoiceHandler *InvoiceHandler
	PaymentHandler *PaymentHandler
	ExpenseHandler *ExpenseHandler
	ReportHandler  *ReportHandler
}

// NewRouterConfig wires every handler to the same store and report service.
func NewRouterConfig(st *store.Store, reports *services.ReportService) *RouterConfig {
	return &RouterConfig{
		ProductHandler: NewProductHandler(st),
		ClientHandler:  NewClientHandler(st),
		InvoiceHandler: NewInvoiceHandler(st, reports),
		PaymentHandler: NewPaymentHandler(st),
		ExpenseHandler: NewExpenseHandler(st),
		ReportHandler:  NewReportHandler(reports),
	}
}

// listResponse wraps collections so the payload can grow without breaking clients.
type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func list[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Total: len(items)}
}

func httpLog() zerolog.Logger {
	return logger.Component("http")
}

// writeError maps store errors to HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	lang := i18n.LangFromContext(r.Context())
	var verr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", i18n.T(lang, "not_found"), nil)
	case errors.As(err, &verr):
		writeViolations(w, r, verr.Violations)
	default:
		log := httpLog()
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", i18n.T(lang, "internal_error"), nil)
	}
}

func writeViolations(w http.ResponseWriter, r *http.Request, v validation.Violations) {
	lang := i18n.LangFromContext(r.Context())
	httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", i18n.T(lang, "validation_failed"), v)
}

func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	lang := i18n.LangFromContext(r.Context())
	log := httpLog()
	log.Debug().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("invalid request body")
	httpx.JSONError(w, http.StatusBadRequest, "invalid_json", i18n.T(lang, "invalid_json"), validation.Violations{"body": "invalid_json"})
}
