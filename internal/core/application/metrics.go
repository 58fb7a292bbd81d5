package application

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/arkade-os/xreserve"

// metrics are recorded through the global meter provider, a no-op unless
// telemetry is enabled.
type metrics struct {
	transfers  metric.Int64Counter
	rollbacks  metric.Int64Counter
	traps      metric.Int64Counter
	registries metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	meter := otel.Meter(meterName)

	transfers, err := meter.Int64Counter(
		"xreserve.transfers", metric.WithDescription("Reserve transfers by outcome"),
	)
	if err != nil {
		return nil, err
	}
	rollbacks, err := meter.Int64Counter(
		"xreserve.transfers.rolled_back",
		metric.WithDescription("Transfers refunded after the transport refused them"),
	)
	if err != nil {
		return nil, err
	}
	traps, err := meter.Int64Counter(
		"xreserve.traps", metric.WithDescription("Trap events that stored assets"),
	)
	if err != nil {
		return nil, err
	}
	registries, err := meter.Int64Counter(
		"xreserve.registry.mutations", metric.WithDescription("Asset registry mutations"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{
		transfers:  transfers,
		rollbacks:  rollbacks,
		traps:      traps,
		registries: registries,
	}, nil
}

func (m *metrics) transfer(ctx context.Context, outcome string) {
	m.transfers.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *metrics) rollback(ctx context.Context) {
	m.rollbacks.Add(ctx, 1)
}

func (m *metrics) trapped(ctx context.Context) {
	m.traps.Add(ctx, 1)
}

func (m *metrics) registryMutation(ctx context.Context, op string) {
	m.registries.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}
