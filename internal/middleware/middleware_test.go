package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/observability"
)

func testLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(mark("a"), mark("b"), mark("c"))(http.HandlerFunc(ok))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.GetRequestID(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"missing", "", false},
		{"valid uuid", uuid.NewString(), true},
		{"garbage", "'; DROP TABLE", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("X-Request-ID", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			got := w.Header().Get("X-Request-ID")
			_, err := uuid.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, got, seen, "context and header carry the same id")
			if tt.keep {
				assert.Equal(t, tt.header, got)
			} else {
				assert.NotEqual(t, tt.header, got)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	logger, buf := testLogger()
	h := Chain(RequestID(), Recovery(logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("chart exploded")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sse/view", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, w.Body.String(), "chart exploded")
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestRateLimit(t *testing.T) {
	logger, _ := testLogger()
	limiter := NewRateLimiter(config.SecurityConfig{EnableRateLimit: true, RateLimitRPS: 1, RateLimitBurst: 1})
	h := RateLimit(limiter, logger)(http.HandlerFunc(ok))

	do := func(remote string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remote
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1235"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234"), "limits are per client")
}

func TestRateLimit_Disabled(t *testing.T) {
	limiter := NewRateLimiter(config.SecurityConfig{EnableRateLimit: false, RateLimitRPS: 1, RateLimitBurst: 1})
	for range 5 {
		assert.True(t, limiter.Allow("10.0.0.1"))
	}
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(config.SecurityConfig{EnableRateLimit: true, RateLimitRPS: 1, RateLimitBurst: 1})
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }
	limiter.lastSweep = clock

	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.2")

	clock = clock.Add(30 * time.Second)
	limiter.Allow("10.0.0.2")

	clock = clock.Add(45 * time.Second)
	limiter.Allow("10.0.0.3")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.clients, "10.0.0.1", "idle for longer than the ttl")
	assert.Contains(t, limiter.clients, "10.0.0.2")
	assert.Contains(t, limiter.clients, "10.0.0.3")
	assert.Equal(t, clock, limiter.lastSweep)
}

func TestRateLimiter_NoSweepBeforeTTL(t *testing.T) {
	limiter := NewRateLimiter(config.SecurityConfig{EnableRateLimit: true, RateLimitRPS: 1, RateLimitBurst: 1})
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }
	limiter.lastSweep = clock

	assert.True(t, limiter.Allow("10.0.0.1"))
	clock = clock.Add(59 * time.Second)
	limiter.Allow("10.0.0.2")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.clients, 2)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"remote addr", "198.51.100.2:5000", nil, "198.51.100.2"},
		{"first forwarded", "127.0.0.1:1", map[string]string{"X-Forwarded-For": " 203.0.113.7 , 10.0.0.1"}, "203.0.113.7"},
		{"garbage forwarded", "127.0.0.1:1", map[string]string{"X-Forwarded-For": "not-an-ip"}, "127.0.0.1"},
		{"real ip", "127.0.0.1:1", map[string]string{"X-Real-IP": "2001:db8::1"}, "2001:db8::1"},
		{"no port", "198.51.100.9", nil, "198.51.100.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestCORS(t *testing.T) {
	h := CORS(config.SecurityConfig{AllowedOrigins: []string{"http://localhost:8084"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	r := httptest.NewRequest(http.MethodOptions, "/api/views", nil)
	r.Header.Set("Origin", "http://localhost:8084")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code, "preflight never reaches the handler")
	assert.Equal(t, "http://localhost:8084", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Datastar-Request")

	r = httptest.NewRequest(http.MethodGet, "/api/views", nil)
	r.Header.Set("Origin", "http://other.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders()(http.HandlerFunc(ok)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "https://cdn.jsdelivr.net")
	assert.Empty(t, w.Header().Get("X-XSS-Protection"))
}

func TestTrustedProxy(t *testing.T) {
	var forwarded string
	h := TrustedProxy(config.SecurityConfig{TrustedProxies: []string{"127.0.0.1"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		forwarded = getClientIP(r)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "127.0.0.1:5000"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "203.0.113.7", forwarded)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.2:5000"
	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "198.51.100.2", forwarded, "untrusted peers cannot spoof their address")
}

func TestLoggerAndTracing(t *testing.T) {
	logger, buf := testLogger()
	var traceID string
	h := Chain(RequestID(), Logger(logger), Tracing(logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = observability.TraceID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/views/nope", nil))

	out := buf.String()
	assert.NotEmpty(t, traceID)
	assert.Contains(t, out, "request completed")
	assert.Contains(t, out, "status=404")
	assert.Equal(t, 1, strings.Count(out, "msg=\"request "), "one log line per request")
	assert.Contains(t, out, "span finished")
	assert.Contains(t, out, "status=ERROR")
	assert.Contains(t, out, "http.status_code=404")
}

func TestMetrics_RoutePattern(t *testing.T) {
	m := observability.NewMetrics()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/views/{view}", ok)

	h := Metrics(m)(mux)
	for _, path := range []string{"/api/views/summary", "/api/views/top-products", "/nowhere"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	out := w.Body.String()
	assert.Contains(t, out, `dashboard_http_requests_total{route="GET /api/views/{view}",status="200"} 2`)
	assert.Contains(t, out, `dashboard_http_requests_total{route="unmatched",status="404"} 1`)
	series, err := testutil.GatherAndCount(m.Registry(), "dashboard_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}

func TestResponseWriter_StatusSent(t *testing.T) {
	tests := []struct {
		name  string
		first func(rw *responseWriter)
		want  int
	}{
		{"flush sends 200", func(rw *responseWriter) { rw.Flush() }, http.StatusOK},
		{"write sends 200", func(rw *responseWriter) { _, _ = rw.Write([]byte("data: x\n\n")) }, http.StatusOK},
		{"explicit status wins", func(rw *responseWriter) { rw.WriteHeader(http.StatusNotFound) }, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rw := wrap(rec)

			tt.first(rw)
			rw.WriteHeader(http.StatusAccepted)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, rec.Code, rw.statusCode, "recorded status matches the one sent")
		})
	}
}

func TestResponseWriter_CountsBytes(t *testing.T) {
	rw := wrap(httptest.NewRecorder())
	_, _ = rw.Write([]byte("event: datastar-patch-elements\n"))
	_, _ = rw.Write([]byte("\n"))
	assert.Equal(t, 32, rw.bytes)
}

func TestResponseWriter_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := wrap(rec)

	var f http.Flusher = rw
	f.Flush()
	assert.True(t, rec.Flushed)
}

func TestMetrics_StatusAfterFlush(t *testing.T) {
	m := observability.NewMetrics()
	h := Metrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.(http.Flusher).Flush()
		w.WriteHeader(http.StatusInternalServerError)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sse/view", nil))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `dashboard_http_requests_total{route="unmatched",status="200"} 1`)
}
