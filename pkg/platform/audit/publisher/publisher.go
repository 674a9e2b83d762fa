// Package publisher emits audit events to a store and, optionally, an external
// sink. Sync mode writes on the caller's goroutine; async mode queues events on
// a bounded buffer drained by a single worker and drops when full.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "docverify/pkg/platform/audit"
)

type Publisher struct {
	store  audit.Store
	sink   audit.Sink
	logger *slog.Logger
	now    func() time.Time

	queue chan audit.Event
	wg    sync.WaitGroup
	once  sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with the given buffer.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan audit.Event, size)
		}
	}
}

// WithSink forwards every stored event to sink.
func WithSink(sink audit.Sink) Option {
	return func(p *Publisher) {
		p.sink = sink
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records event. A zero timestamp is set to the publisher clock. In async
// mode Emit never blocks and a full buffer drops the event with a warning.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.queue == nil {
		return p.write(ctx, event)
	}
	select {
	case p.queue <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"request_id", event.RequestID,
		)
	}
	return nil
}

// List returns the stored events of a user.
func (p *Publisher) List(ctx context.Context, userID uuid.UUID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close drains pending async events and closes the sink.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.queue != nil {
			close(p.queue)
			p.wg.Wait()
		}
		if p.sink != nil {
			p.sink.Close()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.queue {
		if err := p.write(context.Background(), event); err != nil {
			p.logger.Error("failed to persist audit event",
				"action", event.Action,
				"request_id", event.RequestID,
				"error", err,
			)
		}
	}
}

func (p *Publisher) write(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.sink == nil {
		return nil
	}
	if err := p.sink.Write(ctx, event); err != nil {
		// The store already holds the event; a sink outage is not fatal.
		p.logger.WarnContext(ctx, "audit sink write failed",
			"action", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
	}
	return nil
}
