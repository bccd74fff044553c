package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks calls made to the remote API and the console's session churn.
type Metrics struct {
	APIRequests      *prometheus.CounterVec
	APIDuration      *prometheus.HistogramVec
	SessionsExpired  prometheus.Counter
	ExportsGenerated *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		APIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "console_api_requests_total",
			Help: "Requests sent to the remote API by resource, operation and outcome",
		}, []string{"resource", "operation", "outcome"}),
		APIDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_api_request_duration_seconds",
			Help:    "Latency of remote API requests",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"resource", "operation"}),
		SessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "console_sessions_expired_total",
			Help: "Sessions wiped after the remote API answered 401",
		}),
		ExportsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "console_exports_total",
			Help: "Spreadsheet exports generated per page",
		}, []string{"page"}),
	}
}

func (m *Metrics) ObserveAPI(resource, operation, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(resource, operation, outcome).Inc()
	m.APIDuration.WithLabelValues(resource, operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementSessionExpired() {
	if m == nil {
		return
	}
	m.SessionsExpired.Inc()
}

func (m *Metrics) IncrementExport(page string) {
	if m == nil {
		return
	}
	m.ExportsGenerated.WithLabelValues(page).Inc()
}
