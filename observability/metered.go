package observability

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xkv/lib/container"
	"github.com/benz9527/xkv/lib/infra"
)

const (
	meterName = "xkv/container"

	opsCounterName   = "xkv.container.ops"
	opsDurationName  = "xkv.container.op.duration"
	sizeGaugeName    = "xkv.container.size"
	engineAttrKey    = "engine"
	operationAttrKey = "op"
	resultAttrKey    = "result"
)

const (
	opInsert = "insert"
	opFind   = "find"
	opRemove = "remove"
	opClear  = "clear"

	resultOK    = "ok"
	resultError = "error"
	resultHit   = "hit"
	resultMiss  = "miss"
)

var _ container.Container[int, struct{}] = (*MeteredContainer[int, struct{}])(nil)

// MeteredContainer records the operations of the decorated container.
// It is not thread safe either, except the size observation.
type MeteredContainer[K comparable, V any] struct {
	c        container.Container[K, V]
	ctx      context.Context
	ops      metric.Int64Counter
	duration metric.Float64Histogram
	reg      metric.Registration
	size     atomic.Int64
	// op -> result -> measurement attributes
	attrs map[string]map[string]metric.MeasurementOption
}

func (mc *MeteredContainer[K, V]) record(op, result string, start time.Time) {
	attrs := mc.attrs[op][result]
	mc.ops.Add(mc.ctx, 1, attrs)
	mc.duration.Record(mc.ctx, float64(time.Since(start).Nanoseconds())/1e3, attrs)
}

func (mc *MeteredContainer[K, V]) Insert(key K, val V) error {
	start := time.Now()
	err := mc.c.Insert(key, val)
	mc.size.Store(mc.c.Len())
	if err != nil {
		mc.record(opInsert, resultError, start)
		return err
	}
	mc.record(opInsert, resultOK, start)
	return nil
}

func (mc *MeteredContainer[K, V]) Find(key K) (V, bool) {
	start := time.Now()
	val, ok := mc.c.Find(key)
	if ok {
		mc.record(opFind, resultHit, start)
	} else {
		mc.record(opFind, resultMiss, start)
	}
	return val, ok
}

func (mc *MeteredContainer[K, V]) Remove(key K) bool {
	start := time.Now()
	ok := mc.c.Remove(key)
	mc.size.Store(mc.c.Len())
	if ok {
		mc.record(opRemove, resultHit, start)
	} else {
		mc.record(opRemove, resultMiss, start)
	}
	return ok
}

func (mc *MeteredContainer[K, V]) Len() int64 {
	return mc.c.Len()
}

func (mc *MeteredContainer[K, V]) Clear() {
	start := time.Now()
	mc.c.Clear()
	mc.size.Store(0)
	mc.record(opClear, resultOK, start)
}

func (mc *MeteredContainer[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	mc.c.Foreach(action)
}

// Unwrap returns the decorated container.
func (mc *MeteredContainer[K, V]) Unwrap() container.Container[K, V] {
	return mc.c
}

// Close stops the size observation.
func (mc *MeteredContainer[K, V]) Close() error {
	if mc.reg == nil {
		return nil
	}
	return mc.reg.Unregister()
}

type meteredCfg struct {
	mp  metric.MeterProvider
	ctx context.Context
}

type MeteredContainerOption func(cfg *meteredCfg)

// WithMeterProvider replaces the otel global meter provider.
func WithMeterProvider(mp metric.MeterProvider) MeteredContainerOption {
	return func(cfg *meteredCfg) {
		cfg.mp = mp
	}
}

func WithMeteredContext(ctx context.Context) MeteredContainerOption {
	return func(cfg *meteredCfg) {
		cfg.ctx = ctx
	}
}

func NewMeteredContainer[K comparable, V any](
	c container.Container[K, V],
	engine string,
	opts ...MeteredContainerOption,
) (*MeteredContainer[K, V], error) {
	cfg := &meteredCfg{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.mp == nil {
		cfg.mp = otel.GetMeterProvider()
	}
	if cfg.ctx == nil {
		cfg.ctx = context.Background()
	}

	meter := cfg.mp.Meter(meterName)
	ops, err := meter.Int64Counter(
		opsCounterName,
		metric.WithDescription("The container operations."),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] ops counter")
	}
	duration, err := meter.Float64Histogram(
		opsDurationName,
		metric.WithDescription("The container operation latency."),
		metric.WithUnit("us"),
	)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] ops duration histogram")
	}
	size, err := meter.Int64ObservableGauge(
		sizeGaugeName,
		metric.WithDescription("The container entries."),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] size gauge")
	}

	mc := &MeteredContainer[K, V]{
		c:        c,
		ctx:      cfg.ctx,
		ops:      ops,
		duration: duration,
		attrs:    make(map[string]map[string]metric.MeasurementOption, 4),
	}
	mc.size.Store(c.Len())
	for op, results := range map[string][]string{
		opInsert: {resultOK, resultError},
		opFind:   {resultHit, resultMiss},
		opRemove: {resultHit, resultMiss},
		opClear:  {resultOK},
	} {
		mc.attrs[op] = make(map[string]metric.MeasurementOption, len(results))
		for _, result := range results {
			mc.attrs[op][result] = metric.WithAttributeSet(attribute.NewSet(
				attribute.String(engineAttrKey, engine),
				attribute.String(operationAttrKey, op),
				attribute.String(resultAttrKey, result),
			))
		}
	}

	engineAttrs := metric.WithAttributeSet(attribute.NewSet(attribute.String(engineAttrKey, engine)))
	mc.reg, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		o.ObserveInt64(size, mc.size.Load(), engineAttrs)
		return nil
	}, size)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] size callback")
	}
	return mc, nil
}
