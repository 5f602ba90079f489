package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountersAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, reg)

	m.ObserveView("counted")
	m.ObserveView("counted")
	m.ObserveView("duplicate")
	m.ObservePublish("video.deleted", nil)
	m.ObserveDelivery("video.deleted", errors.New("broker down"))
	m.ObserveCleanup(errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ViewsTotal.WithLabelValues("counted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventPublishTotal.WithLabelValues("video.deleted", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventDeliveryTotal.WithLabelValues("video.deleted", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorageCleanupTotal.WithLabelValues("error")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "screenvault_video_views_total")
}

func TestMetrics_ReRegisterReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(reg, reg)
	second := New(reg, reg)

	first.ObserveView("counted")
	assert.Equal(t, 1.0, testutil.ToFloat64(second.ViewsTotal.WithLabelValues("counted")))
}

func TestMetrics_GinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := New(reg, reg)

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/api/videos/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/videos/abc", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestTotal.WithLabelValues("GET", "/api/videos/:id", "404")))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveView("counted")
		m.ObservePublish("video.deleted", nil)
		m.ObserveDelivery("video.deleted", nil)
		m.ObserveCleanup(nil)
	})
}
