package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "financas"

// newMetricsHandler reads the counters the middlewares already keep at scrape
// time. Each server gets its own registry.
func (s *Server) newMetricsHandler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),

		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "http", Name: "requests_total",
			Help: "Requests served.",
		}, func() float64 { return float64(s.tracer.GetMetrics().TotalRequests) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "http", Name: "server_errors_total",
			Help: "Responses with a 5xx status.",
		}, func() float64 { return float64(s.tracer.GetMetrics().ServerErrors) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Subsystem: "http", Name: "last_latency_seconds",
			Help: "Latency of the last request.",
		}, func() float64 { return float64(s.tracer.GetMetrics().LastLatencyUs) / 1e6 }),

		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "ratelimit", Name: "allowed_total",
			Help: "POST requests let through.",
		}, func() float64 { return float64(s.limiter.GetMetrics().Allowed) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "ratelimit", Name: "rejected_total",
			Help: "POST requests rejected.",
		}, func() float64 { return float64(s.limiter.GetMetrics().Rejected) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Subsystem: "ratelimit", Name: "clients",
			Help: "Clients tracked by the limiter.",
		}, func() float64 { return float64(s.limiter.GetMetrics().ClientCount) }),

		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "security", Name: "blocked_total",
			Help: "Suspicious requests blocked.",
		}, func() float64 { return float64(s.detector.SuspiciousRequests()) }),
	)
	if vc := s.deps.ViewCache; vc != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Subsystem: "view_cache", Name: "entries",
			Help: "Cached transaction and category views.",
		}, func() float64 { return float64(vc.Entries()) }))
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
