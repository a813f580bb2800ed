package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usermgmt/internal/platform/metrics"
	"usermgmt/pkg/requestcontext"
)

func newRouter(t *testing.T, logs *bytes.Buffer, m *metrics.Metrics) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(logs, nil))
	r := chi.NewRouter()
	r.Use(RequestContext, AccessLog(logger, m), Recover(logger, m))
	return r
}

func TestRequestContext(t *testing.T) {
	var logs bytes.Buffer
	r := newRouter(t, &logs, metrics.New())

	var seenID, seenIP string
	r.Get("/ping", func(w http.ResponseWriter, req *http.Request) {
		seenID = requestcontext.RequestID(req.Context())
		seenIP = requestcontext.ClientIP(req.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("generates a request id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		require.NotEmpty(t, seenID)
		assert.Equal(t, seenID, rec.Header().Get(HeaderRequestID))
		assert.Equal(t, "192.0.2.1", seenIP)
	})

	t.Run("reuses an incoming request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", seenID)
		assert.Equal(t, "203.0.113.9", seenIP)
	})
}

func TestRecover(t *testing.T) {
	var logs bytes.Buffer
	m := metrics.New()
	r := newRouter(t, &logs, m)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("secret internal state")
	})
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "An internal error occurred.", body["error"])
	assert.NotContains(t, body["error"], "secret")
	assert.Contains(t, logs.String(), "handler panic recovered")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PanicsRecovered))

	// The router keeps serving after a panic.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccessLogRecordsRoutePattern(t *testing.T) {
	var logs bytes.Buffer
	m := metrics.New()
	r := newRouter(t, &logs, m)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/items/{id}", "GET", "202")))
	assert.Contains(t, logs.String(), `"route":"/items/{id}"`)
	assert.Contains(t, logs.String(), `"status":202`)
}

func TestClientIPFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::1]:5555"
	assert.Equal(t, "[::1]", ClientIPFromRequest(req))

	req.Header.Set("X-Real-IP", " 198.51.100.7 ")
	assert.Equal(t, "198.51.100.7", ClientIPFromRequest(req))
}
