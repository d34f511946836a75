package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"io"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xkv/lib/infra"
)

type MetricsExporterType uint8

const (
	NoneExporter MetricsExporterType = iota
	ConsoleExporter
	PrometheusExporter
	_exporterMax
)

func (typ MetricsExporterType) String() string {
	switch typ {
	case NoneExporter:
		return "none"
	case ConsoleExporter:
		return "console"
	case PrometheusExporter:
		return "prometheus"
	default:
	}
	return "unknown"
}

func ParseMetricsExporter(typ string) (MetricsExporterType, error) {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", "none":
		return NoneExporter, nil
	case "console":
		return ConsoleExporter, nil
	case "prometheus", "prom":
		return PrometheusExporter, nil
	default:
	}
	return _exporterMax, infra.NewErrorStack("[observability] unknown metrics exporter " + typ)
}

// MetricsExporter owns the meter provider installed as the otel global.
type MetricsExporter interface {
	// Flush writes the metrics collected so far.
	Flush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type consoleMetricsExporter struct {
	mp *metric.MeterProvider
}

func (e *consoleMetricsExporter) Flush(ctx context.Context) error {
	return e.mp.ForceFlush(ctx)
}

func (e *consoleMetricsExporter) Shutdown(ctx context.Context) error {
	return e.mp.Shutdown(ctx)
}

// Serves for test/dev environment.
func InitConsoleMetrics(w io.Writer, interval, timeout time.Duration) (MetricsExporter, error) {
	exporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(w),
		stdoutmetric.WithPrettyPrint(),
	)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] stdout metrics exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return &consoleMetricsExporter{mp: mp}, nil
}

// The metrics are pulled from a private registry and dumped in the
// prometheus text exposition format, there is no HTTP endpoint.
type prometheusMetricsExporter struct {
	mp       *metric.MeterProvider
	registry *promclient.Registry
	w        io.Writer
}

func (e *prometheusMetricsExporter) Flush(ctx context.Context) error {
	mfs, err := e.registry.Gather()
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "[observability] gather prometheus metrics")
	}
	for _, mf := range mfs {
		if _, err = expfmt.MetricFamilyToText(e.w, mf); err != nil {
			return infra.WrapErrorStack(err)
		}
	}
	return nil
}

func (e *prometheusMetricsExporter) Shutdown(ctx context.Context) error {
	return e.mp.Shutdown(ctx)
}

func InitPrometheusMetrics(w io.Writer) (MetricsExporter, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] prometheus metrics exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return &prometheusMetricsExporter{
		mp:       mp,
		registry: registry,
		w:        w,
	}, nil
}

type noopMetricsExporter struct{}

func (noopMetricsExporter) Flush(context.Context) error    { return nil }
func (noopMetricsExporter) Shutdown(context.Context) error { return nil }

// InitMetrics installs the exporter by type. The none exporter keeps
// the otel global noop meter provider.
func InitMetrics(typ MetricsExporterType, w io.Writer, interval time.Duration) (MetricsExporter, error) {
	switch typ {
	case NoneExporter:
		return noopMetricsExporter{}, nil
	case ConsoleExporter:
		return InitConsoleMetrics(w, interval, interval)
	case PrometheusExporter:
		return InitPrometheusMetrics(w)
	default:
	}
	return nil, infra.NewErrorStack("[observability] unknown metrics exporter " + typ.String())
}
