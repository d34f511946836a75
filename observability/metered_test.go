package observability

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/benz9527/xkv/lib/container"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	res := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			res[m.Name] = m
		}
	}
	return res
}

func attrValue(set attribute.Set, key string) string {
	v, _ := set.Value(attribute.Key(key))
	return v.AsString()
}

func TestMeteredContainer(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() {
		_ = mp.Shutdown(context.Background())
	}()

	c, err := container.New[int, string](container.AVLTreeKind)
	require.NoError(t, err)
	mc, err := NewMeteredContainer[int, string](c, "avl", WithMeterProvider(mp))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, mc.Close())
	}()

	for i := 0; i < 5; i++ {
		require.NoError(t, mc.Insert(i, "v"))
	}
	_, ok := mc.Find(3)
	require.True(t, ok)
	_, ok = mc.Find(30)
	require.False(t, ok)
	require.True(t, mc.Remove(0))
	require.False(t, mc.Remove(0))
	require.Equal(t, int64(4), mc.Len())
	require.Same(t, c, mc.Unwrap())

	metrics := collect(t, reader)

	ops, ok := metrics[opsCounterName].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := make(map[string]int64)
	for _, dp := range ops.DataPoints {
		require.Equal(t, "avl", attrValue(dp.Attributes, engineAttrKey))
		counts[attrValue(dp.Attributes, operationAttrKey)+"/"+attrValue(dp.Attributes, resultAttrKey)] = dp.Value
	}
	require.Equal(t, map[string]int64{
		"insert/ok":   5,
		"find/hit":    1,
		"find/miss":   1,
		"remove/hit":  1,
		"remove/miss": 1,
	}, counts)

	hist, ok := metrics[opsDurationName].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	total := uint64(0)
	for _, dp := range hist.DataPoints {
		total += dp.Count
	}
	require.Equal(t, uint64(9), total)

	size, ok := metrics[sizeGaugeName].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, size.DataPoints, 1)
	require.Equal(t, int64(4), size.DataPoints[0].Value)

	mc.Clear()
	metrics = collect(t, reader)
	size = metrics[sizeGaugeName].Data.(metricdata.Gauge[int64])
	require.Equal(t, int64(0), size.DataPoints[0].Value)
}

func TestMeteredContainer_InsertError(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	c, err := container.New[int, int](container.BSTreeKind, container.WithMaxTreeNodes(1))
	require.NoError(t, err)
	mc, err := NewMeteredContainer[int, int](c, "bst", WithMeterProvider(mp))
	require.NoError(t, err)

	require.NoError(t, mc.Insert(1, 1))
	require.Error(t, mc.Insert(2, 2))

	metrics := collect(t, reader)
	ops := metrics[opsCounterName].Data.(metricdata.Sum[int64])
	results := make(map[string]int64)
	for _, dp := range ops.DataPoints {
		results[attrValue(dp.Attributes, resultAttrKey)] = dp.Value
	}
	require.Equal(t, int64(1), results[resultOK])
	require.Equal(t, int64(1), results[resultError])
}

func TestParseMetricsExporter(t *testing.T) {
	testcases := []struct {
		in       string
		expected MetricsExporterType
	}{
		{"", NoneExporter},
		{"none", NoneExporter},
		{"Console", ConsoleExporter},
		{"prom", PrometheusExporter},
		{"prometheus", PrometheusExporter},
	}
	for _, tc := range testcases {
		typ, err := ParseMetricsExporter(tc.in)
		require.NoError(t, err)
		require.Equal(t, tc.expected, typ)
	}
	_, err := ParseMetricsExporter("otlp")
	require.Error(t, err)
	require.Equal(t, "unknown", _exporterMax.String())
}

func TestPrometheusMetricsExporter(t *testing.T) {
	buf := &bytes.Buffer{}
	exporter, err := InitMetrics(PrometheusExporter, buf, time.Second)
	require.NoError(t, err)
	defer func() {
		_ = exporter.Shutdown(context.Background())
	}()

	c, err := container.New[int, int](container.HashTableKind)
	require.NoError(t, err)
	mc, err := NewMeteredContainer[int, int](c, "hash")
	require.NoError(t, err)
	require.NoError(t, mc.Insert(1, 1))

	require.NoError(t, exporter.Flush(context.Background()))
	require.Contains(t, buf.String(), "xkv_container_ops")
	require.Contains(t, buf.String(), `engine="hash"`)
}

func TestConsoleMetricsExporter(t *testing.T) {
	buf := &bytes.Buffer{}
	exporter, err := InitMetrics(ConsoleExporter, buf, time.Hour)
	require.NoError(t, err)

	c, err := container.New[int, int](container.SkipListKind)
	require.NoError(t, err)
	mc, err := NewMeteredContainer[int, int](c, "skiplist")
	require.NoError(t, err)
	require.NoError(t, mc.Insert(1, 1))

	require.NoError(t, exporter.Flush(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.Contains(t, buf.String(), opsCounterName)
}

func TestNoneMetricsExporter(t *testing.T) {
	exporter, err := InitMetrics(NoneExporter, nil, time.Second)
	require.NoError(t, err)
	require.NoError(t, exporter.Flush(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))
	_, err = InitMetrics(_exporterMax, nil, time.Second)
	require.Error(t, err)
}

func TestInitAppStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() {
		_ = mp.Shutdown(context.Background())
	}()
	otel.SetMeterProvider(mp)

	InitAppStats("test")
	InitAppStats("ignored")

	metrics := collect(t, reader)
	goroutines, ok := metrics["app.core.goroutines"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, goroutines.DataPoints, 1)
	require.Greater(t, goroutines.DataPoints[0].Value, int64(0))
	_, ok = metrics["app.core.processes"]
	require.True(t, ok)
	require.Equal(t, "xkv/app/default", appMeterName(" "))
}
