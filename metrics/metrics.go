// Package metrics 定义服务的 Prometheus 指标：
// 推荐请求量与延迟、候选窗口大小、HTTP 请求、快照大小、向量化熔断状态。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mbarek2002/car-plateform/core"
)

var (
	// 推荐引擎
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carreco_recommend_requests_total",
			Help: "Total number of recommendation requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carreco_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"},
	)

	RecommendResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carreco_recommend_results",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"mode"},
	)

	CandidateWindowSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carreco_candidate_window_size",
			Help:    "Number of candidates above the similarity threshold kept in the window",
			Buckets: []float64{0, 1, 5, 10, 30, 60, 150, 300},
		},
		[]string{"mode"},
	)

	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carreco_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carreco_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// 快照
	SnapshotItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carreco_snapshot_items",
			Help: "Number of items in the loaded catalog snapshot",
		},
	)

	SnapshotEmbeddings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carreco_snapshot_embeddings",
			Help: "Number of vectors in the loaded embedding snapshot",
		},
	)

	SnapshotRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carreco_snapshot_refresh_total",
			Help: "Total number of snapshot refresh attempts",
		},
		[]string{"result"},
	)

	// 0=closed 1=half-open 2=open
	EmbedderBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "carreco_embedder_breaker_state",
			Help: "Text embedder circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordAPIRequest 记录一次 HTTP 请求
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// UpdateSnapshotSizes 更新快照大小
func UpdateSnapshotSizes(items, embeddings int) {
	SnapshotItems.Set(float64(items))
	SnapshotEmbeddings.Set(float64(embeddings))
}

// RecordSnapshotRefresh 记录一次快照刷新
func RecordSnapshotRefresh(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	SnapshotRefreshTotal.WithLabelValues(result).Inc()
}

// RecordBreakerState 可直接作为 service.WithOpenAIStateListener 的回调
func RecordBreakerState(name string, _, to gobreaker.State) {
	var v float64
	switch to {
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	EmbedderBreakerState.WithLabelValues(name).Set(v)
}

// EngineObserver 把引擎观测数据写入 Prometheus，实现 recommend.Observer
type EngineObserver struct{}

func (EngineObserver) ObserveRequest(mode core.Mode, outcome string, took time.Duration, results int) {
	m := string(mode)
	RecommendRequestsTotal.WithLabelValues(m, outcome).Inc()
	RecommendDuration.WithLabelValues(m).Observe(took.Seconds())
	if outcome == "ok" {
		RecommendResults.WithLabelValues(m).Observe(float64(results))
	}
}

func (EngineObserver) ObserveWindow(mode core.Mode, size int) {
	CandidateWindowSize.WithLabelValues(string(mode)).Observe(float64(size))
}
