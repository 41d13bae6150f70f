package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's prometheus instruments. Construct once in
// main and share; promauto registers on the default registry.
type Metrics struct {
	ValidationsTotal   *prometheus.CounterVec
	ProbesTotal        *prometheus.CounterVec
	ProbeDuration      prometheus.Histogram
	SessionsCreated    prometheus.Counter
	AdjudicationsTotal *prometheus.CounterVec
	HTTPRequestsTotal  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		ValidationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "verifier_url_validations_total",
			Help: "URL validation attempts by outcome",
		}, []string{"result"}),
		ProbesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "verifier_tls_probes_total",
			Help: "TLS probes by classified status",
		}, []string{"status"}),
		ProbeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "verifier_tls_probe_duration_seconds",
			Help:    "Wall time of outbound TLS probes",
			Buckets: prometheus.DefBuckets,
		}),
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "verifier_sessions_created_total",
			Help: "Verification sessions created",
		}),
		AdjudicationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "verifier_session_adjudications_total",
			Help: "Terminal session transitions by resulting status",
		}, []string{"status"}),
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "verifier_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) ObserveValidation(ok bool) {
	result := "accepted"
	if !ok {
		result = "rejected"
	}
	m.ValidationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveProbe(status string, seconds float64) {
	m.ProbesTotal.WithLabelValues(status).Inc()
	m.ProbeDuration.Observe(seconds)
}

func (m *Metrics) ObserveAdjudication(status string) {
	m.AdjudicationsTotal.WithLabelValues(status).Inc()
}
