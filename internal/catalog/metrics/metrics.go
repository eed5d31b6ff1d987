package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for catalog reads.
type Metrics struct {
	ListDuration      prometheus.Histogram
	ProfileDuration   prometheus.Histogram
	PropertiesListed  prometheus.Counter
	MissingDataChecks prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ListDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "teranga_catalog_list_duration_seconds",
			Help:    "Duration of property listing including normalization",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ProfileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "teranga_catalog_developer_profile_duration_seconds",
			Help:    "Duration of developer profile assembly",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		PropertiesListed: factory.NewCounter(prometheus.CounterOpts{
			Name: "teranga_catalog_properties_listed_total",
			Help: "Properties returned by listing calls",
		}),
		MissingDataChecks: factory.NewCounter(prometheus.CounterOpts{
			Name: "teranga_catalog_missing_data_checks_total",
			Help: "Catalog data-quality checks run",
		}),
	}
}

// ObserveList records a listing call. Call with time.Now() at the start.
func (m *Metrics) ObserveList(start time.Time, count int) {
	if m == nil {
		return
	}
	m.ListDuration.Observe(time.Since(start).Seconds())
	m.PropertiesListed.Add(float64(count))
}

func (m *Metrics) ObserveProfile(start time.Time) {
	if m == nil {
		return
	}
	m.ProfileDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementMissingDataChecks() {
	if m == nil {
		return
	}
	m.MissingDataChecks.Inc()
}
