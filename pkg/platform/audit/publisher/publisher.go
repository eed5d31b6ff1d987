package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	id "teranga/pkg/domain"
	audit "teranga/pkg/platform/audit"
	"teranga/pkg/requestcontext"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
//
// In async mode Emit enqueues and returns; a single goroutine appends in
// order. Close drains the queue.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	queue     chan audit.Event
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer switches Emit to a buffered queue of the given size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan audit.Event, size)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit stamps the event with time, request id and device label taken from
// ctx, then stores it.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.DeviceLabel == "" {
		event.DeviceLabel = requestcontext.DeviceLabel(ctx)
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	if p.queue == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close stops accepting async events and waits for the queue to drain.
func (p *Publisher) Close() {
	if p.queue == nil {
		return
	}
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.store.Append(ctx, event); err != nil && p.logger != nil {
			p.logger.Error("failed to append audit event",
				"action", event.Action,
				"request_id", event.RequestID,
				"error", err,
			)
		}
		cancel()
	}
}
