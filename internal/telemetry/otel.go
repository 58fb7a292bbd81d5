package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

const serviceName = "xreserved"

// InitOtelSDK installs a global meter provider pushing to the OTLP/HTTP
// collector at endpoint. The returned function flushes and shuts it down.
func InitOtelSDK(
	ctx context.Context, endpoint string, pushInterval time.Duration, version string,
) (func(context.Context) error, error) {
	if endpoint == "" {
		return nil, errors.New("missing otel collector endpoint")
	}
	if pushInterval <= 0 {
		pushInterval = 10 * time.Second
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp metric exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(pushInterval)),
		),
	)
	otel.SetMeterProvider(provider)
	log.Infof("pushing metrics to %s every %s", endpoint, pushInterval)

	return provider.Shutdown, nil
}
