package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks progress through the buyer funnel.
type Metrics struct {
	StepSubmissions *prometheus.CounterVec
	LockedRefusals  prometheus.Counter
	KYCVerified     prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StepSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "teranga_funnel_step_submissions_total",
			Help: "Accepted funnel step submissions by step",
		}, []string{"step"}),
		LockedRefusals: factory.NewCounter(prometheus.CounterOpts{
			Name: "teranga_funnel_locked_refusals_total",
			Help: "Submissions refused because identity verification had started",
		}),
		KYCVerified: factory.NewCounter(prometheus.CounterOpts{
			Name: "teranga_funnel_kyc_verified_total",
			Help: "Profiles marked as identity-verified",
		}),
	}
}

func (m *Metrics) IncrementStep(step string) {
	if m == nil {
		return
	}
	m.StepSubmissions.WithLabelValues(step).Inc()
}

func (m *Metrics) IncrementLockedRefusals() {
	if m == nil {
		return
	}
	m.LockedRefusals.Inc()
}

func (m *Metrics) IncrementKYCVerified() {
	if m == nil {
		return
	}
	m.KYCVerified.Inc()
}
