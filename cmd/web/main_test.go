package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "localhost",
			Port:            8084,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
		},
		Logger: config.LoggerConfig{Level: "error", Format: "text"},
		Security: config.SecurityConfig{
			EnableRateLimit: false,
			RateLimitRPS:    100,
			RateLimitBurst:  10,
			AllowedOrigins:  []string{"http://localhost:8084"},
			TrustedProxies:  []string{"127.0.0.1"},
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestAnalytics() *services.Analytics {
	a := services.NewAnalytics(services.WithLogger(testLogger()))
	a.SetData(testutil.Records())
	return a
}

func newTestHandler(cfg *config.Config) (http.Handler, *observability.Metrics) {
	metrics := observability.NewMetrics()
	return newHandler(cfg, newTestAnalytics(), metrics, testLogger()), metrics
}

// Integration tests for HTTP routes
func TestServer_Routes(t *testing.T) {
	handler, _ := newTestHandler(testConfig())

	sse := "/sse/view?datastar=" + url.QueryEscape(`{"view":"sales-by-region"}`)

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/api/views", http.StatusOK, "application/json"},
		{"/api/views/summary", http.StatusOK, "application/json"},
		{"/api/views/top-products?top_n=3", http.StatusOK, "application/json"},
		{"/api/views/nope", http.StatusNotFound, "application/json"},
		{"/api/aggregate?dimension=segment&metric=profit", http.StatusOK, "application/json"},
		{sse, http.StatusOK, "text/event-stream"},
		{"/export/monthly-sales.html", http.StatusOK, "text/html"},
		{"/export/monthly-sales.png", http.StatusOK, "image/png"},
		{"/export/sales-data.xlsx", http.StatusOK, "spreadsheetml"},
		{"/metrics", http.StatusOK, "text/plain"},
		{"/missing", http.StatusNotFound, "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			handler.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			// Validate JSON responses
			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

// Test error handling for invalid methods
func TestServer_ErrorHandling(t *testing.T) {
	handler, _ := newTestHandler(testConfig())

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/views", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"PATCH", "/sse/view", http.StatusMethodNotAllowed},
		{"POST", "/export/sales-data.xlsx", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			handler.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestServer_RequestID(t *testing.T) {
	handler, _ := newTestHandler(testConfig())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if _, err := uuid.Parse(w.Header().Get("X-Request-ID")); err != nil {
		t.Errorf("expected a generated uuid request id, got %q", w.Header().Get("X-Request-ID"))
	}

	id := uuid.NewString()
	r := httptest.NewRequest("GET", "/health", nil)
	r.Header.Set("X-Request-ID", id)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if got := w.Header().Get("X-Request-ID"); got != id {
		t.Errorf("request id = %q, want the client's %q", got, id)
	}

	r = httptest.NewRequest("GET", "/health", nil)
	r.Header.Set("X-Request-ID", "<script>")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if got := w.Header().Get("X-Request-ID"); got == "<script>" {
		t.Error("malformed request ids should be replaced")
	}
}

func TestServer_SecurityAndCORS(t *testing.T) {
	handler, _ := newTestHandler(testConfig())

	r := httptest.NewRequest("OPTIONS", "/api/views", nil)
	r.Header.Set("Origin", "http://localhost:8084")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:8084" {
		t.Errorf("allow-origin = %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("x-frame-options = %q, want DENY", got)
	}

	r = httptest.NewRequest("GET", "/api/views", nil)
	r.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow-origin %q for a foreign origin", got)
	}
}

func TestServer_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.EnableRateLimit = true
	cfg.Security.RateLimitRPS = 1
	cfg.Security.RateLimitBurst = 1
	handler, _ := newTestHandler(cfg)

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/views", nil))
		codes[i] = w.Code
	}

	if codes[0] != http.StatusOK {
		t.Errorf("first request status = %d, want %d", codes[0], http.StatusOK)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want %d", codes[2], http.StatusTooManyRequests)
	}
}

func TestServer_MetricsByRoute(t *testing.T) {
	handler, _ := newTestHandler(testConfig())

	for range 2 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/views/summary", nil))
	}
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/export/monthly-sales.png", nil))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(w.Body)
	out := string(body)

	expected := []string{
		`dashboard_http_requests_total{route="GET /api/views/{view}",status="200"} 2`,
		`dashboard_view_renders_total{status="ok",view="summary"} 2`,
		`dashboard_exports_total{format="png"} 1`,
		"go_goroutines",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output should contain %q", want)
		}
	}
}

// Test dashboard template rendering
func TestDashboardTemplate(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	handleDashboard(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	expectedComponents := []string{
		"Interactive Sales Dashboard",
		"Sales Dashboard Options",
		"Select Analysis Option",
		`<option value="summary" selected>Summary</option>`,
		`<option value="top-products">Top Products</option>`,
		`<option value="sales-by-region">Sales by Region</option>`,
		`<option value="profit-by-category">Profit by Category</option>`,
		`data-bind:view`,
		`data-init="@get('/sse/view')"`,
		"data-signals=",
		"datastar",
		"echarts",
	}

	for _, component := range expectedComponents {
		if !strings.Contains(body, component) {
			t.Errorf("dashboard should contain '%s'", component)
		}
	}
}
