package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/cashpro/internal/db"
	"github.com/diewo77/cashpro/internal/metrics"
	"github.com/diewo77/cashpro/internal/services"
	"github.com/diewo77/cashpro/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerLang(t, "es")
}

func newTestServerLang(t *testing.T, defaultLang string) *httptest.Server {
	t.Helper()
	today := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return today }
	m := metrics.New()
	st := store.New(db.SampleSnapshot(today), store.WithClock(clock), store.WithObserver(m))
	m.RegisterLedger(st)
	srv := httptest.NewServer(NewApp(st, services.NewReportService(st, clock), m, defaultLang))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string, header ...string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestApp_Healthz(t *testing.T) {
	srv := newTestServer(t)
	resp, body := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestApp_LanguagePreference(t *testing.T) {
	srv := newTestServer(t)

	kpiLabel := func(body string) string {
		var dash struct {
			KPIs []struct {
				Label string `json:"label"`
			} `json:"kpis"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &dash))
		require.NotEmpty(t, dash.KPIs)
		return dash.KPIs[0].Label
	}

	_, body := get(t, srv, "/api/dashboard")
	assert.Equal(t, "Ventas Hoy", kpiLabel(body))

	_, body = get(t, srv, "/api/dashboard", "Accept-Language", "en-US,en;q=0.9")
	assert.Equal(t, "Sales Today", kpiLabel(body))

	resp, body := get(t, srv, "/api/dashboard?lang=en")
	assert.Equal(t, "Sales Today", kpiLabel(body))
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "lang" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, "en", cookie.Value)
}

func TestApp_UnsupportedLanguageKeepsDefault(t *testing.T) {
	srv := newTestServerLang(t, "en")
	title := func(body string) string {
		var dash struct {
			KPIs []struct {
				Label string `json:"label"`
			} `json:"kpis"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &dash))
		require.NotEmpty(t, dash.KPIs)
		return dash.KPIs[0].Label
	}

	_, body := get(t, srv, "/api/dashboard", "Accept-Language", "fr-FR,de;q=0.8")
	assert.Equal(t, "Sales Today", title(body))

	_, body = get(t, srv, "/api/dashboard", "Cookie", "lang=pt")
	assert.Equal(t, "Sales Today", title(body))

	resp, body := get(t, srv, "/api/dashboard?lang=xx")
	assert.Equal(t, "Sales Today", title(body))
	assert.Empty(t, resp.Cookies())

	_, body = get(t, srv, "/api/dashboard", "Accept-Language", "fr-FR,es;q=0.5")
	assert.Equal(t, "Ventas Hoy", title(body))
}

func TestApp_RoutesAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := get(t, srv, "/api/products/p1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = get(t, srv, "/api/products/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	post, err := srv.Client().Post(srv.URL+"/api/invoices/inv2/payments", "application/json", strings.NewReader(`{"amount":"40.6"}`))
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusCreated, post.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/invoices/inv2", nil)
	require.NoError(t, err)
	del, err := srv.Client().Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, del.StatusCode)

	_, body := get(t, srv, "/metrics")
	assert.Contains(t, body, `cashpro_http_requests_total{endpoint="GET /api/products/{id}",method="GET",status="404"} 1`)
	assert.Contains(t, body, `cashpro_store_mutations_total{entity="payment",op="add",result="ok"} 1`)
	assert.Contains(t, body, "cashpro_open_invoices 2")
}
