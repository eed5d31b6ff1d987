package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "teranga/pkg/platform/audit"
)

// Producer is the slice of *kgo.Client the relay needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics counts relayed and failed outbox entries.
type Metrics struct {
	Published prometheus.Counter
	Failures  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Published: factory.NewCounter(prometheus.CounterOpts{
			Name: "teranga_audit_outbox_published_total",
			Help: "Audit outbox entries published to Kafka",
		}),
		Failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "teranga_audit_outbox_failures_total",
			Help: "Audit relay batches that failed to publish",
		}),
	}
}

func (m *Metrics) published(n int) {
	if m == nil {
		return
	}
	m.Published.Add(float64(n))
}

func (m *Metrics) failed() {
	if m == nil {
		return
	}
	m.Failures.Inc()
}

// Relay drains the audit outbox into a Kafka topic. Entries are marked
// published only after the broker acknowledges the whole batch, so a crash
// between produce and mark yields a duplicate, never a loss.
type Relay struct {
	outbox   audit.Outbox
	producer Producer
	topic    string
	interval time.Duration
	batch    int
	logger   *slog.Logger
	metrics  *Metrics
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

func NewRelay(outbox audit.Outbox, producer Producer, topic string, opts ...Option) *Relay {
	r := &Relay{
		outbox:   outbox,
		producer: producer,
		topic:    topic,
		interval: 2 * time.Second,
		batch:    100,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays on every tick until ctx is cancelled. Batch failures are
// logged and retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := r.RelayOnce(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return ctx.Err()
				}
				r.metrics.failed()
				r.logger.ErrorContext(ctx, "audit relay batch failed", "error", err)
				continue
			}
			if n > 0 {
				r.logger.DebugContext(ctx, "audit relay batch published", "count", n)
			}
		}
	}
}

// RelayOnce publishes up to one batch and returns how many entries it sent.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	var sent int
	relay := func(ctx context.Context) error {
		entries, err := r.outbox.FetchPending(ctx, r.batch)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		records := make([]*kgo.Record, 0, len(entries))
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			records = append(records, &kgo.Record{
				Topic: r.topic,
				Key:   []byte(e.AggregateID),
				Value: e.Payload,
				Headers: []kgo.RecordHeader{
					{Key: "event_type", Value: []byte(e.EventType)},
					{Key: "aggregate_type", Value: []byte(e.AggregateType)},
				},
				Timestamp: e.CreatedAt,
			})
			ids = append(ids, e.ID)
		}
		if err := r.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
			return fmt.Errorf("produce audit batch: %w", err)
		}
		if err := r.outbox.MarkPublished(ctx, ids, time.Now()); err != nil {
			return err
		}
		sent = len(ids)
		return nil
	}

	var err error
	if tx, ok := r.outbox.(txRunner); ok {
		err = tx.RunInTx(ctx, relay)
	} else {
		err = relay(ctx)
	}
	if err != nil {
		return 0, err
	}
	r.metrics.published(sent)
	return sent, nil
}

// EnsureTopic creates topic when missing. An existing topic is not an error.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, t := range resp {
		if t.Err != nil && !errors.Is(t.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", t.Topic, t.Err)
		}
	}
	return nil
}
