package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP-level Prometheus metrics shared by every router.
type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
}

// New registers HTTP metrics on reg. Pass prometheus.DefaultRegisterer in
// main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EndpointLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "teranga_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route pattern",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"endpoint"}),
	}
}

// ObserveEndpointLatency records a request duration. Safe on a nil receiver.
func (m *Metrics) ObserveEndpointLatency(endpoint string, d time.Duration) {
	if m == nil {
		return
	}
	m.EndpointLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

// Handler exposes the default gatherer on /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
