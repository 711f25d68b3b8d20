package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Eursukkul/ticket-marketplace/internal/events"
	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/Eursukkul/ticket-marketplace/internal/monitoring"
	"github.com/Eursukkul/ticket-marketplace/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Eursukkul/ticket-marketplace/internal/service"

// runner executes one externally invoked operation: it takes the per-key
// lock, runs fn in a store transaction and publishes the operation's events
// once the transaction has committed. Operations invoked from inside another
// operation join it instead.
type runner struct {
	tx        repository.TxManager
	locker    Locker
	publisher events.Publisher
	tracer    trace.Tracer
}

func newRunner(tx repository.TxManager, o *options) *runner {
	return &runner{
		tx:        tx,
		locker:    o.locker,
		publisher: o.publisher,
		tracer:    otel.Tracer(tracerName),
	}
}

func (r *runner) run(ctx context.Context, operation, lockKey string, fn func(ctx context.Context) error) error {
	if events.FromContext(ctx) != nil {
		return fn(ctx)
	}

	ctx, span := r.tracer.Start(ctx, operation, trace.WithAttributes(attribute.String("lock.key", lockKey)))
	defer span.End()
	started := time.Now()

	ctx, batch := events.WithBatch(ctx)
	err := r.locked(ctx, lockKey, fn)
	monitoring.ObserveOperation(operation, started, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	// Published after the lock is released.
	for _, e := range batch.Events() {
		if err := r.publisher.Publish(ctx, e); err != nil {
			log.Printf("[Marketplace] failed to publish %s %s: %v", e.Type, e.ID, err)
		}
	}
	return nil
}

func (r *runner) locked(ctx context.Context, lockKey string, fn func(ctx context.Context) error) error {
	if lockKey != "" {
		unlock, err := r.locker.Lock(ctx, lockKey)
		if err != nil {
			return fmt.Errorf("lock %s: %w", lockKey, err)
		}
		defer unlock()
	}
	return r.tx.WithTx(ctx, fn)
}

type options struct {
	locker     Locker
	publisher  events.Publisher
	feePercent int64
	validity   time.Duration
}

const defaultFeePercent = 5

type Option func(*options)

// WithLocker replaces the in-process per-ticket lock, e.g. with a Redis lock
// shared by several instances.
func WithLocker(l Locker) Option {
	return func(o *options) {
		if l != nil {
			o.locker = l
		}
	}
}

// WithPublisher sets where committed events go.
func WithPublisher(p events.Publisher) Option {
	return func(o *options) {
		if p != nil {
			o.publisher = p
		}
	}
}

// WithFeePercent overrides the settlement fee paid to collection creators.
func WithFeePercent(percent int64) Option {
	return func(o *options) {
		if percent >= 0 && percent <= 100 {
			o.feePercent = percent
		}
	}
}

// WithTicketValidity sets the validity window of collections created
// without one.
func WithTicketValidity(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.validity = d
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		locker:     NewKeyedMutex(),
		publisher:  events.Multi{},
		feePercent: defaultFeePercent,
		validity:   models.DefaultValidityWindow,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
