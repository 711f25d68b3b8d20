package monitoring

import (
	"context"
	"time"

	"github.com/Eursukkul/ticket-marketplace/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_operations_total",
			Help: "Total marketplace operations",
		},
		[]string{"operation", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_operation_duration_seconds",
			Help:    "Duration of marketplace operations including the store transaction",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)

	escrowed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marketplace_escrow_amount",
			Help: "Bid funds currently held in escrow",
		},
		[]string{"token"},
	)

	fees = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_fees_total",
			Help: "Settlement fees paid to collection creators",
		},
		[]string{"token"},
	)

	committedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_events_total",
			Help: "Committed marketplace events",
		},
		[]string{"type"},
	)
)

func ObserveOperation(operation string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	operations.WithLabelValues(operation, status).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// EventObserver derives escrow and fee metrics from committed events, so
// the gauges never reflect a rolled back operation.
type EventObserver struct{}

func (EventObserver) Publish(_ context.Context, e events.Event) error {
	committedEvents.WithLabelValues(e.Type).Inc()

	switch p := e.Payload.(type) {
	case events.BidSubmitted:
		escrowed.WithLabelValues(p.Token).Add(toFloat(p.Amount.Sub(p.RefundedAmount)))
	case events.Delisting:
		escrowed.WithLabelValues(p.Token).Sub(toFloat(p.RefundedAmount))
	case events.BidAccepted:
		escrowed.WithLabelValues(p.Token).Sub(toFloat(p.Amount))
		fees.WithLabelValues(p.Token).Add(toFloat(p.Fee))
	}
	return nil
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
