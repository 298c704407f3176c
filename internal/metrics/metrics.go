// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordUpload(kind string)
	RecordThumbnailSuccess()
	RecordThumbnailFailure()
	RecordThumbnailLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus       *prometheus.CounterVec
	uploads          *prometheus.CounterVec
	thumbSuccess     prometheus.Counter
	thumbFail        prometheus.Counter
	thumbJobDuration prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filebox_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filebox_uploads_total",
			Help: "種別ごとのアップロード成功数",
		}, []string{"type"}),
		thumbSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "filebox_thumbnail_success_total",
			Help: "サムネイル生成成功の合計数",
		}),
		thumbFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "filebox_thumbnail_fail_total",
			Help: "サムネイル生成失敗の合計数",
		}),
		thumbJobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "filebox_thumbnail_job_duration_seconds",
			Help:    "サムネイルジョブの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.uploads,
		c.thumbSuccess,
		c.thumbFail,
		c.thumbJobDuration,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordUpload はアップロード成功を種別ラベル付きで記録する。
func (c *Collector) RecordUpload(kind string) {
	c.uploads.WithLabelValues(kind).Inc()
}

// RecordThumbnailSuccess はサムネイル1枚の生成成功を記録する。
func (c *Collector) RecordThumbnailSuccess() {
	c.thumbSuccess.Inc()
}

// RecordThumbnailFailure はサムネイル生成の失敗を記録する。
func (c *Collector) RecordThumbnailFailure() {
	c.thumbFail.Inc()
}

// RecordThumbnailLatency はサムネイルジョブ1件の処理時間を記録する。
func (c *Collector) RecordThumbnailLatency(duration time.Duration) {
	c.thumbJobDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
