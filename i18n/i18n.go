// Package i18n holds the UI strings for the supported languages and the
// helpers to pick a language per request.
package i18n

import (
	"context"
	"fmt"
	"strings"
)

// DefaultLang is used when nothing better can be detected.
const DefaultLang = "es"

var supported = map[string]bool{"es": true, "en": true}

var catalog = map[string]map[string]string{
	"es": {
		"required":          "Requerido",
		"not_found":         "No encontrado",
		"validation_failed": "Datos inválidos",
		"invalid_json":      "Solicitud mal formada",
		"invalid_date":      "Fecha inválida",
		"range_too_large":   "El rango no puede superar %d días",
		"internal_error":    "Error interno",
		"status.pending":    "Pendiente",
		"status.partial":    "Parcial",
		"status.paid":       "Pagada",
		"status.overdue":    "Vencida",
		"kpi.sales_today":   "Ventas Hoy",
		"kpi.profit_today":  "Utilidad Hoy",
		"kpi.receivables":   "Por Cobrar",
		"kpi.net_cash":      "Flujo Neto",
		"kpi.invoices":      "%d facturas",
		"kpi.margin":        "%s%% margen",
		"kpi.positive":      "Positivo",
		"kpi.negative":      "Negativo",
		"kpi.none":          "—",
		"client.none":       "Sin cliente",
	},
	"en": {
		"required":          "Required",
		"not_found":         "Not found",
		"validation_failed": "Invalid data",
		"invalid_json":      "Malformed request",
		"invalid_date":      "Invalid date",
		"range_too_large":   "The range cannot exceed %d days",
		"internal_error":    "Internal error",
		"status.pending":    "Pending",
		"status.partial":    "Partial",
		"status.paid":       "Paid",
		"status.overdue":    "Overdue",
		"kpi.sales_today":   "Sales Today",
		"kpi.profit_today":  "Profit Today",
		"kpi.receivables":   "Receivables",
		"kpi.net_cash":      "Net Cash Flow",
		"kpi.invoices":      "%d invoices",
		"kpi.margin":        "%s%% margin",
		"kpi.positive":      "Positive",
		"kpi.negative":      "Negative",
		"kpi.none":          "—",
		"client.none":       "No client",
	},
}

// MatchLanguage returns the first supported language of an Accept-Language
// header value, and false when none is supported.
func MatchLanguage(acceptLanguage string) (string, bool) {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if base, ok := Supported(tag); ok {
			return base, true
		}
	}
	return "", false
}

// Supported reduces a language tag to its base and reports whether it is in
// the catalog.
func Supported(lang string) (string, bool) {
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(lang, "-", 2)[0]))
	return base, supported[base]
}

// Normalize maps an arbitrary language code to a supported one.
func Normalize(lang string) string {
	if base, ok := Supported(lang); ok {
		return base
	}
	return DefaultLang
}

// T translates code; unknown languages fall back to DefaultLang and unknown
// codes to the code itself.
func T(lang, code string) string {
	if msgs, ok := catalog[lang]; ok {
		if s, ok := msgs[code]; ok {
			return s
		}
	}
	if s, ok := catalog[DefaultLang][code]; ok {
		return s
	}
	return code
}

// Tf translates code and formats it with args.
func Tf(lang, code string, args ...any) string {
	return fmt.Sprintf(T(lang, code), args...)
}

type ctxKey struct{}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, Normalize(lang))
}

// LangFromContext returns the language stored by WithLang, or DefaultLang.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}
