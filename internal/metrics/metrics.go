package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "screenvault"

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestTotal    *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ViewsTotal          *prometheus.CounterVec
	EventPublishTotal   *prometheus.CounterVec
	EventDeliveryTotal  *prometheus.CounterVec
	StorageCleanupTotal *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers every collector on reg. Re-registering on the same registry reuses
// the existing collectors.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		ViewsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "video_views_total",
			Help:      "View reports by outcome",
		}, []string{"result"}),

		EventPublishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "video_event_publish_total",
			Help:      "Video events submitted to the cleanup queue",
		}, []string{"event_type", "status"}),

		EventDeliveryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "video_event_delivery_total",
			Help:      "Video events acknowledged or rejected by the broker",
		}, []string{"event_type", "status"}),

		StorageCleanupTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_cleanup_total",
			Help:      "Stored file deletions attempted by the cleanup worker",
		}, []string{"status"}),

		gatherer: gatherer,
	}

	m.HTTPRequestTotal = registerOrGet(reg, m.HTTPRequestTotal)
	m.HTTPRequestDuration = registerOrGet(reg, m.HTTPRequestDuration)
	m.ViewsTotal = registerOrGet(reg, m.ViewsTotal)
	m.EventPublishTotal = registerOrGet(reg, m.EventPublishTotal)
	m.EventDeliveryTotal = registerOrGet(reg, m.EventDeliveryTotal)
	m.StorageCleanupTotal = registerOrGet(reg, m.StorageCleanupTotal)
	return m
}

// NewDefault registers on the process-wide Prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

func registerOrGet[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) ObserveView(result string) {
	if m == nil {
		return
	}
	m.ViewsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObservePublish(eventType string, err error) {
	if m == nil {
		return
	}
	m.EventPublishTotal.WithLabelValues(eventType, status(err)).Inc()
}

// ObserveDelivery records the broker outcome of an asynchronously written event.
func (m *Metrics) ObserveDelivery(eventType string, err error) {
	if m == nil {
		return
	}
	m.EventDeliveryTotal.WithLabelValues(eventType, status(err)).Inc()
}

func (m *Metrics) ObserveCleanup(err error) {
	if m == nil {
		return
	}
	m.StorageCleanupTotal.WithLabelValues(status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// GinMiddleware records request counts and latency by route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
