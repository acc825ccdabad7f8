package main

import (
	"net/http"

	"github.com/diewo77/cashpro/httpx"
	"github.com/diewo77/cashpro/i18n"
	"github.com/diewo77/cashpro/internal/handlers"
	"github.com/diewo77/cashpro/internal/metrics"
	"github.com/diewo77/cashpro/internal/services"
	"github.com/diewo77/cashpro/internal/store"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux         *http.ServeMux
	routerCfg   *handlers.RouterConfig
	metrics     *metrics.Metrics
	defaultLang string
}

// NewApp creates a new application with all routes configured.
func NewApp(st *store.Store, reports *services.ReportService, m *metrics.Metrics, defaultLang string) *App {
	app := &App{
		mux:         http.NewServeMux(),
		routerCfg:   handlers.NewRouterConfig(st, reports),
		metrics:     m,
		defaultLang: i18n.Normalize(defaultLang),
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.withPreferences(a.mux).ServeHTTP(w, r)
}

// handle registers h under pattern with request metrics.
func (a *App) handle(pattern string, h http.HandlerFunc) {
	a.mux.Handle(pattern, a.metrics.Instrument(pattern, h))
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	a.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.mux.Handle("GET /metrics", a.metrics.Handler())

	ph := a.routerCfg.ProductHandler
	a.handle("GET /api/products", ph.List)
	a.handle("POST /api/products", ph.Create)
	a.handle("GET /api/products/{id}", ph.View)
	a.handle("PATCH /api/products/{id}", ph.Update)
	a.handle("DELETE /api/products/{id}", ph.Delete)

	ch := a.routerCfg.ClientHandler
	a.handle("GET /api/clients", ch.List)
	a.handle("POST /api/clients", ch.Create)
	a.handle("GET /api/clients/{id}", ch.View)
	a.handle("PATCH /api/clients/{id}", ch.Update)
	a.handle("DELETE /api/clients/{id}", ch.Delete)

	ih := a.routerCfg.InvoiceHandler
	a.handle("GET /api/invoices", ih.List)
	a.handle("POST /api/invoices", ih.Create)
	a.handle("GET /api/invoices/{id}", ih.View)
	a.handle("PUT /api/invoices/{id}/status", ih.UpdateStatus)
	a.handle("POST /api/invoices/{id}/payments", ih.AddPayment)

	pay := a.routerCfg.PaymentHandler
	a.handle("GET /api/payments", pay.List)
	a.handle("POST /api/payments", pay.Create)

	eh := a.routerCfg.ExpenseHandler
	a.handle("GET /api/expenses", eh.List)
	a.handle("POST /api/expenses", eh.Create)

	rh := a.routerCfg.ReportHandler
	a.handle("GET /api/dashboard", rh.Dashboard)
	a.handle("GET /api/reports", rh.Report)
}

// withPreferences injects the language preference: query, then cookie, then
// Accept-Language, then the configured default.
func (a *App) withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := a.defaultLang
		if l, ok := i18n.MatchLanguage(r.Header.Get("Accept-Language")); ok {
			lang = l
		}
		if c, err := r.Cookie("lang"); err == nil {
			if l, ok := i18n.Supported(c.Value); ok {
				lang = l
			}
		}
		if l, ok := i18n.Supported(r.URL.Query().Get("lang")); ok {
			lang = l
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
			})
		}
		ctx := i18n.WithLang(r.Context(), lang)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
