// Package metrics exposes Prometheus collectors for the HTTP layer, authentication and mail delivery.
//
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder struct {
	registry *prometheus.Registry
	requests *prometheus.HistogramVec
	auth     *prometheus.CounterVec
	mail     *prometheus.CounterVec
	queue    prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		auth: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Authentication outcomes by operation.",
		}, []string{"operation", "outcome"}),
		mail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mail_deliveries_total",
			Help: "Outbound mail delivery attempts by result.",
		}, []string{"result"}),
		queue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mail_outbox_depth",
			Help: "Messages waiting in the outbox when last sampled.",
		}),
	}
	r.registry.MustRegister(
		r.requests, r.auth, r.mail, r.queue,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Middleware observes request latency keyed by the matched chi route pattern,
// so path parameters do not explode label cardinality.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	if r == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rc := chi.RouteContext(req.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.requests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}

// AuthEvent counts one authentication outcome, e.g. ("login", "success").
func (r *Recorder) AuthEvent(operation, outcome string) {
	if r == nil {
		return
	}
	r.auth.WithLabelValues(operation, outcome).Inc()
}

// MailDelivery counts a delivery attempt with result sent, retry or dead.
func (r *Recorder) MailDelivery(result string) {
	if r == nil {
		return
	}
	r.mail.WithLabelValues(result).Inc()
}

func (r *Recorder) OutboxDepth(n int64) {
	if r == nil {
		return
	}
	r.queue.Set(float64(n))
}
