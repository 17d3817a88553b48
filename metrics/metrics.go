// Package metrics provides Prometheus instrumentation for the canteen API.
//
// Wire it up once in the router:
//
//	r.Use(m.Middleware())
//	r.GET("/metrics", gin.WrapH(m.Handler()))
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "canteen"

type Metrics struct {
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	inFlight        prometheus.Gauge

	ordersPlaced *prometheus.CounterVec
	statusWrites *prometheus.CounterVec
	logins       *prometheus.CounterVec
	provisioned  *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

// New builds a registry with runtime collectors and the canteen collectors
func New() *Metrics {
	m := &Metrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders placed, by claimed payment method and paid flag.",
		}, []string{"payment_method", "paid"}),
		statusWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "status_writes_total",
			Help:      "Order status writes by target status and whether they followed the usual flow.",
		}, []string{"status", "conventional"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login and signup attempts by role and outcome.",
		}, []string{"role", "outcome"}),
		provisioned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "provisioned_total",
			Help:      "Staff and owner identities created on first passkey login.",
		}, []string{"role"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "menu_cache",
			Name:      "lookups_total",
			Help:      "Menu cache lookups by result.",
		}, []string{"result"}),
	}

	m.Registry = prometheus.NewRegistry()
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestTotal,
		m.inFlight,
		m.ordersPlaced,
		m.statusWrites,
		m.logins,
		m.provisioned,
		m.cacheLookups,
	)
	return m
}

// Middleware records duration, count and in-flight gauge per matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.requestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.requestTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	}
}

// Handler exposes the registry in Prometheus and OpenMetrics formats
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) OrderPlaced(method string, paid bool) {
	if m == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(method, strconv.FormatBool(paid)).Inc()
}

func (m *Metrics) StatusWritten(status string, conventional bool) {
	if m == nil {
		return
	}
	m.statusWrites.WithLabelValues(status, strconv.FormatBool(conventional)).Inc()
}

func (m *Metrics) Login(role, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(role, outcome).Inc()
}

func (m *Metrics) Provisioned(role string) {
	if m == nil {
		return
	}
	m.provisioned.WithLabelValues(role).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
