package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSnapshotCounters(t *testing.T) {
	m := New()
	for i := 0; i < 10; i++ {
		m.ObserveRequest()
	}
	for i := 0; i < 7; i++ {
		m.ObserveAdmit()
	}
	m.ObserveDenial("daily")
	m.ObserveDenial("daily")
	m.ObserveDenial("monthly")
	m.ObserveUpstreamError()

	snap := m.Snapshot()
	if snap.TotalRequests != 10 || snap.Admitted != 7 {
		t.Errorf("total/admitted = %d/%d, want 10/7", snap.TotalRequests, snap.Admitted)
	}
	if snap.DeniedDaily != 2 || snap.DeniedMonthly != 1 {
		t.Errorf("denied = %d/%d, want 2/1", snap.DeniedDaily, snap.DeniedMonthly)
	}
	if snap.UpstreamErrors != 1 {
		t.Errorf("UpstreamErrors = %d, want 1", snap.UpstreamErrors)
	}
	if snap.AdmitRate != 70.0 {
		t.Errorf("AdmitRate = %v, want 70", snap.AdmitRate)
	}
}

func TestSnapshotLatencies(t *testing.T) {
	m := New()
	for _, ms := range []int64{100, 200, 300, 400} {
		m.ObserveRender(ms)
	}

	snap := m.Snapshot()
	if snap.AvgLatencyMs != 250 {
		t.Errorf("AvgLatencyMs = %v, want 250", snap.AvgLatencyMs)
	}
	if snap.P95LatencyMs != 400 {
		t.Errorf("P95LatencyMs = %d, want 400", snap.P95LatencyMs)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRequest()
	m.ObserveAdmit()

	rec := httptest.NewRecorder()
	m.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if snap.TotalRequests != 1 {
		t.Errorf("TotalRequests = %d, want 1", snap.TotalRequests)
	}
}
