package telemetry

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/kernelql/kernelql/internal/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	noneTraceExporterType     traceExporterType = "none"
	consoleTraceExporterType  traceExporterType = "console"
	otlpHTTPTraceExporterType traceExporterType = "otlpHttp"
	otlpGrpcTraceExporterType traceExporterType = "otlpGrpc"
	httpTraceExporterType     traceExporterType = "http"

	traceParentFields = 4
)

type traceExporterType string

// Tracer opens spans around kernel pool and query operations. A nil Tracer runs functions untraced.
type Tracer struct {
	trace.Tracer
	provider *sdktrace.TracerProvider
	// parent is set when spans continue a trace started by another process.
	parent *trace.SpanContext
}

// NewTracer returns the tracer selected by opts.TraceExporter, or nil when no exporter is selected.
// With opts.TraceParent set, every span joins that W3C trace.
func NewTracer(ctx context.Context, appName, appVersion string, writer io.Writer, opts *Options) (*Tracer, error) {
	exporter, err := NewTraceExporter(ctx, writer, opts)
	if err != nil {
		return nil, errors.New(err)
	}

	if exporter == nil {
		return nil, nil
	}

	var parent *trace.SpanContext

	if opts.TraceParent != "" {
		spanContext, err := parseTraceParent(opts.TraceParent)
		if err != nil {
			return nil, err
		}

		parent = &spanContext
	}

	provider, err := newTraceProvider(exporter, appName, appVersion)
	if err != nil {
		return nil, errors.New(err)
	}

	otel.SetTracerProvider(provider)

	return &Tracer{
		Tracer:   provider.Tracer(appName),
		provider: provider,
		parent:   parent,
	}, nil
}

// parseTraceParent reads a traceparent header: version-traceid-spanid-flags.
func parseTraceParent(value string) (trace.SpanContext, error) {
	fields := strings.Split(value, "-")
	if len(fields) != traceParentFields {
		return trace.SpanContext{}, errors.Errorf("invalid traceparent %q", value)
	}

	traceID, err := trace.TraceIDFromHex(fields[1])
	if err != nil {
		return trace.SpanContext{}, errors.WithStackTraceAndPrefix(err, "invalid traceparent %q", value)
	}

	spanID, err := trace.SpanIDFromHex(fields[2])
	if err != nil {
		return trace.SpanContext{}, errors.WithStackTraceAndPrefix(err, "invalid traceparent %q", value)
	}

	flags, err := strconv.Atoi(fields[3])
	if err != nil {
		return trace.SpanContext{}, errors.WithStackTraceAndPrefix(err, "invalid traceparent flags %q", fields[3])
	}

	var traceFlags trace.TraceFlags
	if flags != 0 {
		traceFlags = trace.FlagsSampled
	}

	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: traceFlags,
		Remote:     true,
	}), nil
}

// newTraceProvider batches spans into exp, tagged with the service name and version.
func newTraceProvider(exp sdktrace.SpanExporter, appName, appVersion string) (*sdktrace.TracerProvider, error) {
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

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	), nil
}

// NewTraceExporter returns the span exporter named by opts.TraceExporter, nil for none.
func NewTraceExporter(ctx context.Context, writer io.Writer, opts *Options) (sdktrace.SpanExporter, error) {
	exporterType := traceExporterType(opts.TraceExporter)
	if exporterType == "" {
		exporterType = noneTraceExporterType
	}

	switch exporterType { //nolint:exhaustive
	case httpTraceExporterType:
		if opts.TraceExporterHTTPEndpoint == "" {
			return nil, &ErrorMissingEnvVariable{
				Vars: []string{"KERNELQL_TELEMETRY_TRACE_EXPORTER_HTTP_ENDPOINT"},
			}
		}

		endpointOpt := otlptracehttp.WithEndpoint(opts.TraceExporterHTTPEndpoint)
		config := []otlptracehttp.Option{endpointOpt}

		if opts.TraceExporterInsecureEndpoint {
			config = append(config, otlptracehttp.WithInsecure())
		}

		return otlptracehttp.New(ctx, config...)
	case otlpHTTPTraceExporterType:
		var config []otlptracehttp.Option
		if opts.TraceExporterInsecureEndpoint {
			config = append(config, otlptracehttp.WithInsecure())
		}

		return otlptracehttp.New(ctx, config...)
	case otlpGrpcTraceExporterType:
		var config []otlptracegrpc.Option
		if opts.TraceExporterInsecureEndpoint {
			config = append(config, otlptracegrpc.WithInsecure())
		}

		return otlptracegrpc.New(ctx, config...)
	case consoleTraceExporterType:
		return stdouttrace.New(stdouttrace.WithWriter(writer))
	default:
		return nil, nil
	}
}

// Trace runs fn inside a span named name. An error returned by fn is recorded on the span.
func (tracer *Tracer) Trace(ctx context.Context, name string, attrs map[string]any, fn func(childCtx context.Context) error) error {
	if tracer == nil || tracer.provider == nil {
		return fn(ctx)
	}

	if tracer.parent != nil {
		ctx = trace.ContextWithSpanContext(ctx, *tracer.parent)
	}

	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(mapToAttributes(attrs)...))
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}
