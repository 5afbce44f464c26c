package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest("GET", "/api/v1/teachers", 200, 20*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordBooking("created")
	m.RecordBooking("replayed")
	m.RecordChatMessage("user")
	m.AddPendingReplies(2)
	m.AddPendingReplies(-1)

	snap := m.Snapshot()
	assert.EqualValues(t, 1, snap.RequestsTotal)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.0001)
	assert.EqualValues(t, 1, snap.BookingsTotal)
	assert.EqualValues(t, 1, snap.ChatMessagesTotal)
	assert.EqualValues(t, 1, snap.PendingReplies)
}

func TestMetricsServiceHandlerExposesDomainCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordWithdrawal("accepted")
	m.RecordJobRun("complete_classes", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `wallet_withdrawals_total{result="accepted"} 1`)
	assert.Contains(t, rec.Body.String(), `background_job_runs_total{job="complete_classes",result="ok"} 1`)
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.RecordBooking("created")
	m.AddPendingReplies(1)
	assert.Equal(t, SystemMetrics{}, m.Snapshot())
}
