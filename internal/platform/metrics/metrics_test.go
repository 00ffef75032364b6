package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordPass(t *testing.T) {
	m := NewMetrics()

	m.RecordPass("COMPLETED", 2*time.Second, &reconciliation.BulkResult{
		Reconciled:   3,
		Suggested:    2,
		Unreconciled: 1,
		Failed:       1,
		Skipped:      4,
	})
	m.RecordPass("FAILED", time.Second, nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.passesTotal.WithLabelValues("COMPLETED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.passesTotal.WithLabelValues("FAILED")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.transactionsTotal.WithLabelValues("reconciled")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.transactionsTotal.WithLabelValues("suggested")))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.transactionsTotal.WithLabelValues("skipped")))
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.IncrCollaboratorError("candidate_lookup")
	m.IncrCollaboratorError("candidate_lookup")
	m.IncrOutboxMessage("published")
	m.RecordHTTPRequest(http.MethodGet, "/api/v1/rules", http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.collaboratorErrors.WithLabelValues("candidate_lookup")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.outboxPublished.WithLabelValues("published")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/v1/rules", "200")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.IncrOutboxMessage("failed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `reconciliation_outbox_messages_total{result="failed"} 1`)
}
