package bench

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xkv/dataset"
	"github.com/benz9527/xkv/lib/container"
	"github.com/benz9527/xkv/lib/hrtime"
	"github.com/benz9527/xkv/lib/infra"
	"github.com/benz9527/xkv/lib/xlog"
	"github.com/benz9527/xkv/observability"
)

type Config struct {
	Kinds   []container.Kind
	Items   int
	Runs    int
	Workers int
	// Engine options shared by every kind.
	Options []container.Option
	// Metered wraps every engine by the metered container, the metrics
	// go to the otel global meter provider.
	Metered bool
	Logger  xlog.XLogger
}

func (cfg *Config) normalize(total int) error {
	if len(cfg.Kinds) == 0 {
		cfg.Kinds = container.Kinds()
	}
	if cfg.Items <= 0 || cfg.Items > total {
		cfg.Items = total
	}
	if cfg.Items == 0 {
		return infra.NewErrorStack("[bench] no patients to run")
	}
	if cfg.Runs <= 0 {
		cfg.Runs = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = xlog.NewXLogger(xlog.WithXLoggerLevel(xlog.LogLevelWarn))
	}
	return nil
}

// Result keeps the milliseconds of every run per phase.
type Result struct {
	Kind     container.Kind
	Items    int
	InsertMs []float64
	FindMs   []float64
	RemoveMs []float64
	Err      error
}

func avg(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return lo.Sum(values) / float64(len(values))
}

func (r *Result) AvgInsertMs() float64 { return avg(r.InsertMs) }
func (r *Result) AvgFindMs() float64   { return avg(r.FindMs) }
func (r *Result) AvgRemoveMs() float64 { return avg(r.RemoveMs) }

// runOnce inserts the patients keyed by ID, looks every one of them up,
// then removes them all. The container must end empty.
func runOnce(c container.Container[int64, dataset.Patient], patients []dataset.Patient) (ins, find, rm float64, err error) {
	sw := hrtime.StartStopwatch()
	for i := range patients {
		if err = c.Insert(patients[i].ID, patients[i]); err != nil {
			return
		}
	}
	ins = sw.ElapsedMs()

	sw.Reset()
	for i := range patients {
		if p, ok := c.Find(patients[i].ID); !ok || p.Code != patients[i].Code {
			err = fmt.Errorf("[bench] patient %d lost", patients[i].ID)
			return
		}
	}
	find = sw.ElapsedMs()

	sw.Reset()
	for i := range patients {
		if !c.Remove(patients[i].ID) {
			err = fmt.Errorf("[bench] patient %d not removed", patients[i].ID)
			return
		}
	}
	rm = sw.ElapsedMs()

	if c.Len() != 0 {
		err = fmt.Errorf("[bench] %d patients left", c.Len())
	}
	return
}

func newEngine(kind container.Kind, cfg *Config) (container.Container[int64, dataset.Patient], func(), error) {
	c, err := container.New[int64, dataset.Patient](kind, cfg.Options...)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Metered {
		return c, func() {}, nil
	}
	mc, err := observability.NewMeteredContainer[int64, dataset.Patient](c, kind.String())
	if err != nil {
		return nil, nil, err
	}
	return mc, func() { _ = mc.Close() }, nil
}

func runKind(ctx context.Context, kind container.Kind, patients []dataset.Patient, cfg *Config) (res Result) {
	res = Result{
		Kind:     kind,
		Items:    len(patients),
		InsertMs: make([]float64, 0, cfg.Runs),
		FindMs:   make([]float64, 0, cfg.Runs),
		RemoveMs: make([]float64, 0, cfg.Runs),
	}
	defer func() {
		if r := recover(); r != nil {
			res.Err = infra.NewErrorStack(fmt.Sprintf("[bench] %s panic: %v", kind, r))
		}
	}()

	c, closeFn, err := newEngine(kind, cfg)
	if err != nil {
		res.Err = err
		return
	}
	defer closeFn()

	for run := 0; run < cfg.Runs; run++ {
		if err = ctx.Err(); err != nil {
			res.Err = err
			return
		}
		ins, find, rm, err := runOnce(c, patients)
		if err != nil {
			res.Err = infra.WrapErrorStackWithMessage(err, kind.String())
			return
		}
		res.InsertMs = append(res.InsertMs, ins)
		res.FindMs = append(res.FindMs, find)
		res.RemoveMs = append(res.RemoveMs, rm)
		cfg.Logger.Debug("bench run done",
			zap.String("engine", kind.String()),
			zap.Int("run", run),
			zap.Float64("insertMs", ins),
			zap.Float64("findMs", find),
			zap.Float64("removeMs", rm),
		)
	}
	return
}

// Run benches every kind on its own worker. A container instance is
// never shared by the workers. The results follow the kinds order, the
// failed kinds are combined into the returned error.
func Run(ctx context.Context, patients []dataset.Patient, cfg Config) ([]Result, error) {
	if err := cfg.normalize(len(patients)); err != nil {
		return nil, err
	}
	patients = patients[:cfg.Items]

	pool, err := ants.NewPool(
		cfg.Workers,
		ants.WithPreAlloc(true),
		ants.WithLogger(xlog.NewAntsXLogger(cfg.Logger)),
	)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[bench] worker pool")
	}
	defer pool.Release()

	results := make([]Result, len(cfg.Kinds))
	wg := sync.WaitGroup{}
	for i, kind := range cfg.Kinds {
		wg.Add(1)
		if err = pool.Submit(func() {
			defer wg.Done()
			results[i] = runKind(ctx, kind, patients, &cfg)
		}); err != nil {
			wg.Done()
			results[i] = Result{Kind: kind, Items: len(patients), Err: err}
		}
	}
	wg.Wait()

	var merr error
	for i := range results {
		if results[i].Err != nil {
			cfg.Logger.ErrorStack(results[i].Err, "bench failed", zap.String("engine", results[i].Kind.String()))
			merr = multierr.Append(merr, results[i].Err)
		}
	}
	return results, merr
}
