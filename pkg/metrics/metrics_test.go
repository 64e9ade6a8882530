package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Document("japanese_dividend", OutcomeExtracted)
	m.Document("japanese_dividend", OutcomeExtracted)
	m.Document("unknown", OutcomeFailed)
	m.Records("japanese_dividend", 3)
	m.Records("japanese_dividend", 0)
	m.Failure("classification")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.documents.WithLabelValues("japanese_dividend", OutcomeExtracted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documents.WithLabelValues("unknown", OutcomeFailed)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.records.WithLabelValues("japanese_dividend")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("classification")))

	finished := time.Unix(1700000000, 0)
	m.Batch(2*time.Second, finished)
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(m.lastRun))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Document("x", OutcomeFailed)
		m.Records("x", 1)
		m.Failure("io")
		m.Batch(time.Second, time.Now())
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Records("foreign_dividend_v2", 2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sbidiv_records_total{format="foreign_dividend_v2"} 2`)
}
