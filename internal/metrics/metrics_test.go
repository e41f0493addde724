package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cblogserver/backend/internal/db"
)

type fixedStats db.Stats

func (f fixedStats) Stats() db.Stats { return db.Stats(f) }

func TestHTTPMetrics_RecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/blog/post/{postId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/api/v1/blog/post/1", "/api/v1/blog/post/2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	count := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/blog/post/{postId}", "200"))
	assert.Equal(t, float64(2), count)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.InFlightGauge))
}

func TestRegisterPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterPool(reg, fixedStats{MaxOpen: 100, InUse: 3, PeakInUse: 7})

	expected := `
# HELP cblog_db_pool_max_connections Cap on open connections.
# TYPE cblog_db_pool_max_connections gauge
cblog_db_pool_max_connections 100
# HELP cblog_db_pool_peak_in_use_connections Highest number of connections in use at once.
# TYPE cblog_db_pool_peak_in_use_connections gauge
cblog_db_pool_peak_in_use_connections 7
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"cblog_db_pool_max_connections", "cblog_db_pool_peak_in_use_connections")
	assert.NoError(t, err)
}
