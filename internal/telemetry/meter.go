package telemetry

import (
	"context"
	"io"
	"time"

	"github.com/kernelql/kernelql/internal/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const (
	noneMetricsExporterType     metricsExporterType = "none"
	consoleMetricsExporterType  metricsExporterType = "console"
	otlpHTTPMetricsExporterType metricsExporterType = "otlpHttp"
	otlpGrpcMetricsExporterType metricsExporterType = "otlpGrpc"

	durationSuffix = "_duration"
	successSuffix  = "_success_count"
	errorsSuffix   = "_errors_count"

	readerInterval = time.Second
)

type metricsExporterType string

// Meter records counters and histograms. A nil Meter runs functions without recording.
type Meter struct {
	otelmetric.Meter
	provider *metric.MeterProvider
}

// NewMeter creates and configures the metrics collection.
func NewMeter(ctx context.Context, appName, appVersion string, writer io.Writer, opts *Options) (*Meter, error) {
	exporter, err := NewMetricsExporter(ctx, writer, opts)
	if err != nil {
		return nil, errors.New(err)
	}

	if exporter == nil {
		return nil, nil
	}

	provider, err := newMetricsProvider(exporter, appName, appVersion)
	if err != nil {
		return nil, errors.New(err)
	}

	otel.SetMeterProvider(provider)

	return &Meter{
		Meter:    provider.Meter(appName),
		provider: provider,
	}, nil
}

// NewMetricsExporter creates a new exporter based on the telemetry options.
func NewMetricsExporter(ctx context.Context, writer io.Writer, opts *Options) (metric.Exporter, error) {
	exporterType := metricsExporterType(opts.MetricExporter)

	switch exporterType { //nolint:exhaustive
	case otlpHTTPMetricsExporterType:
		var config []otlpmetrichttp.Option
		if opts.MetricExporterInsecureEndpoint {
			config = append(config, otlpmetrichttp.WithInsecure())
		}

		return otlpmetrichttp.New(ctx, config...)
	case otlpGrpcMetricsExporterType:
		var config []otlpmetricgrpc.Option
		if opts.MetricExporterInsecureEndpoint {
			config = append(config, otlpmetricgrpc.WithInsecure())
		}

		return otlpmetricgrpc.New(ctx, config...)
	case consoleMetricsExporterType:
		return stdoutmetric.New(stdoutmetric.WithWriter(writer))
	default:
		return nil, nil
	}
}

func newMetricsProvider(exp metric.Exporter, appName, appVersion string) (*metric.MeterProvider, error) {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(appName),
			semconv.ServiceVersion(appVersion),
		),
	)
	if err != nil {
		return nil, errors.New(err)
	}

	return metric.NewMeterProvider(
		metric.WithResource(r),
		metric.WithReader(metric.NewPeriodicReader(exp, metric.WithInterval(readerInterval))),
	), nil
}

// Time runs fn and records its duration in milliseconds along with a success or error counter.
func (meter *Meter) Time(ctx context.Context, name string, attrs map[string]any, fn func(childCtx context.Context) error) error {
	if meter == nil || meter.Meter == nil {
		return fn(ctx)
	}

	name = cleanMetricName(name)
	metricAttrs := otelmetric.WithAttributes(mapToAttributes(attrs)...)

	histogram, err := meter.Int64Histogram(name + durationSuffix)
	if err != nil {
		return errors.New(err)
	}

	startTime := time.Now()
	err = fn(ctx)

	histogram.Record(ctx, time.Since(startTime).Milliseconds(), metricAttrs)

	if err != nil {
		meter.Count(ctx, name+errorsSuffix, 1)
		return err
	}

	meter.Count(ctx, name+successSuffix, 1)

	return nil
}

// Count adds value to the counter with the given name.
func (meter *Meter) Count(ctx context.Context, name string, value int64) {
	if meter == nil || meter.Meter == nil || ctx == nil {
		return
	}

	counter, err := meter.Int64Counter(cleanMetricName(name))
	if err != nil {
		return
	}

	counter.Add(ctx, value)
}
