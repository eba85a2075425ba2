package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperation_CountsByResult(t *testing.T) {
	okBefore := testutil.ToFloat64(OperationsTotal.WithLabelValues("test", "create", "ok"))
	errBefore := testutil.ToFloat64(OperationsTotal.WithLabelValues("test", "create", "error"))

	Operation("test", "create", nil)
	Operation("test", "create", errors.New("x"))
	Operation("test", "create", nil)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(OperationsTotal.WithLabelValues("test", "create", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(OperationsTotal.WithLabelValues("test", "create", "error")))
}

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/42", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `route="/things/{id}"`), "metrics body missing route label")
	assert.True(t, strings.Contains(body, `status_code="418"`))
}
