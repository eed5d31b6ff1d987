package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the purchase lifecycle.
type Metrics struct {
	Initiated      prometheus.Counter
	Transitions    *prometheus.CounterVec
	PaymentsAmount prometheus.Counter
	Deleted        prometheus.Counter
	MessagesPosted prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Initiated: factory.NewCounter(prometheus.CounterOpts{
			Name: "teranga_purchases_initiated_total",
			Help: "Purchases created",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "teranga_purchase_transitions_total",
			Help: "Purchase status transitions by target status",
		}, []string{"to"}),
		PaymentsAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: "teranga_purchase_payments_xof_total",
			Help: "Sum of completed direct payments in XOF",
		}),
		Deleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "teranga_purchases_deleted_total",
			Help: "Purchases withdrawn by their owner",
		}),
		MessagesPosted: factory.NewCounter(prometheus.CounterOpts{
			Name: "teranga_purchase_messages_total",
			Help: "Messages appended to purchase logs",
		}),
	}
}

func (m *Metrics) IncrementInitiated() {
	if m == nil {
		return
	}
	m.Initiated.Inc()
}

func (m *Metrics) IncrementTransition(to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(to).Inc()
}

func (m *Metrics) AddPayment(amountXOF float64) {
	if m == nil {
		return
	}
	m.PaymentsAmount.Add(amountXOF)
}

func (m *Metrics) IncrementDeleted() {
	if m == nil {
		return
	}
	m.Deleted.Inc()
}

func (m *Metrics) IncrementMessages() {
	if m == nil {
		return
	}
	m.MessagesPosted.Inc()
}
