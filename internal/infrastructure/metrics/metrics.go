package metrics

import (
	"net/http"
	"strconv"
	"time"

	"meal-planner/internal/core/shopping"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "meal_planner"

var _ shopping.Recorder = (*Metrics)(nil)

// Metrics Prometheus 指標，使用獨立的 registry
type Metrics struct {
	registry *prometheus.Registry

	listsGenerated  prometheus.Counter
	itemsPerList    prometheus.Histogram
	itemsToggled    *prometheus.CounterVec
	publishFailures *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New 創建並註冊所有指標
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		listsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grocery_lists_generated_total",
			Help:      "Number of grocery lists generated from meal plans.",
		}),
		itemsPerList: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grocery_list_items",
			Help:      "Number of consolidated items per generated list.",
			Buckets:   []float64{0, 5, 10, 20, 40, 80, 160},
		}),
		itemsToggled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grocery_items_toggled_total",
			Help:      "Purchased toggles by resulting state.",
		}, []string{"purchased"}),
		publishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Household events that could not be delivered.",
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.listsGenerated,
		m.itemsPerList,
		m.itemsToggled,
		m.publishFailures,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// ListGenerated 實作 shopping.Recorder
func (m *Metrics) ListGenerated(items int) {
	m.listsGenerated.Inc()
	m.itemsPerList.Observe(float64(items))
}

// ItemToggled 實作 shopping.Recorder
func (m *Metrics) ItemToggled(purchased bool) {
	m.itemsToggled.WithLabelValues(strconv.FormatBool(purchased)).Inc()
}

// PublishFailed 實作 shopping.Recorder
func (m *Metrics) PublishFailed(eventType string) {
	m.publishFailures.WithLabelValues(eventType).Inc()
}

// ObserveRequest 記錄一次 HTTP 請求
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Registry 給測試與外部收集使用
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 端點
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
