package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks account creation and authentication outcomes.
type Metrics struct {
	SignUps       prometheus.Counter
	SignIns       *prometheus.CounterVec
	Verifications *prometheus.CounterVec
	CodesIssued   prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SignUps: factory.NewCounter(prometheus.CounterOpts{
			Name: "teranga_auth_signups_total",
			Help: "Accounts created",
		}),
		SignIns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "teranga_auth_signins_total",
			Help: "Sign-in attempts by outcome",
		}, []string{"outcome"}),
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "teranga_auth_verifications_total",
			Help: "Email verification attempts by outcome",
		}, []string{"outcome"}),
		CodesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "teranga_auth_codes_issued_total",
			Help: "Verification codes sent",
		}),
	}
}

func (m *Metrics) IncrementSignUps() {
	if m == nil {
		return
	}
	m.SignUps.Inc()
}

func (m *Metrics) IncrementSignIns(outcome string) {
	if m == nil {
		return
	}
	m.SignIns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementVerifications(outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementCodesIssued() {
	if m == nil {
		return
	}
	m.CodesIssued.Inc()
}
