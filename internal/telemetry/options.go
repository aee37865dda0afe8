package telemetry

// Options holds the exporter settings for traces and metrics.
type Options struct {
	TraceExporter                  string
	TraceExporterHTTPEndpoint      string
	TraceParent                    string
	MetricExporter                 string
	TraceExporterInsecureEndpoint  bool
	MetricExporterInsecureEndpoint bool
}
