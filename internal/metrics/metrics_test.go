package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/filebox/internal/worker/thumbnail"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("%s metric not found", name)
	return 0
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はHTTPステータスカウンタがラベル付きで増加することを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(201)
	c.RecordHTTPStatus(201)
	c.RecordHTTPStatus(404)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "filebox_http_status_total" {
			found = true
			if len(mf.GetMetric()) != 2 {
				t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
			}
			for _, m := range mf.GetMetric() {
				label := m.GetLabel()[0].GetValue()
				val := m.GetCounter().GetValue()
				switch label {
				case "201":
					if val != 2 {
						t.Errorf("http_status_total{status_code=201} = %v, want 2", val)
					}
				case "404":
					if val != 1 {
						t.Errorf("http_status_total{status_code=404} = %v, want 1", val)
					}
				default:
					t.Errorf("unexpected label value: %s", label)
				}
			}
		}
	}
	if !found {
		t.Error("filebox_http_status_total metric not found")
	}
}

// TestRecordUpload_IncrementsCounterWithKind はアップロードカウンタが種別ラベル付きで増加することを検証する。
func TestRecordUpload_IncrementsCounterWithKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUpload("image")
	c.RecordUpload("image")
	c.RecordUpload("folder")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "filebox_uploads_total" {
			found = true
			for _, m := range mf.GetMetric() {
				label := m.GetLabel()[0].GetValue()
				val := m.GetCounter().GetValue()
				switch label {
				case "image":
					if val != 2 {
						t.Errorf("uploads_total{type=image} = %v, want 2", val)
					}
				case "folder":
					if val != 1 {
						t.Errorf("uploads_total{type=folder} = %v, want 1", val)
					}
				default:
					t.Errorf("unexpected label value: %s", label)
				}
			}
		}
	}
	if !found {
		t.Error("filebox_uploads_total metric not found")
	}
}

// TestRecordThumbnailCounters はサムネイル成功・失敗カウンタが増加することを検証する。
func TestRecordThumbnailCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordThumbnailSuccess()
	c.RecordThumbnailSuccess()
	c.RecordThumbnailSuccess()
	c.RecordThumbnailFailure()

	if val := counterValue(t, reg, "filebox_thumbnail_success_total"); val != 3 {
		t.Errorf("thumbnail_success_total = %v, want 3", val)
	}
	if val := counterValue(t, reg, "filebox_thumbnail_fail_total"); val != 1 {
		t.Errorf("thumbnail_fail_total = %v, want 1", val)
	}
}

// TestRecordThumbnailLatency_ObservesHistogram はジョブ処理時間のヒストグラムに値が記録されることを検証する。
func TestRecordThumbnailLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordThumbnailLatency(100 * time.Millisecond)
	c.RecordThumbnailLatency(2 * time.Second)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "filebox_thumbnail_job_duration_seconds" {
			found = true
			h := mf.GetMetric()[0].GetHistogram()
			if h.GetSampleCount() != 2 {
				t.Errorf("sample_count = %d, want 2", h.GetSampleCount())
			}
			// 合計は0.1 + 2.0 = 2.1秒
			if h.GetSampleSum() < 2.0 || h.GetSampleSum() > 2.2 {
				t.Errorf("sample_sum = %v, want ~2.1", h.GetSampleSum())
			}
		}
	}
	if !found {
		t.Error("filebox_thumbnail_job_duration_seconds metric not found")
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat は/metricsエンドポイントがPrometheus形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordUpload("file")
	c.RecordThumbnailSuccess()
	c.RecordThumbnailFailure()
	c.RecordThumbnailLatency(500 * time.Millisecond)

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	expectedMetrics := []string{
		"filebox_http_status_total",
		"filebox_uploads_total",
		"filebox_thumbnail_success_total",
		"filebox_thumbnail_fail_total",
		"filebox_thumbnail_job_duration_seconds",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

// TestCollector_ImplementsInterfaces はCollectorが各利用側インターフェースを満たすことを検証する。
func TestCollector_ImplementsInterfaces(t *testing.T) {
	var _ MetricsCollector = NewCollector(prometheus.NewRegistry())
	var _ thumbnail.MetricsRecorder = NewCollector(prometheus.NewRegistry())
}
