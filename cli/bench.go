package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/benz9527/xkv/bench"
	"github.com/benz9527/xkv/observability"
)

func newBenchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Insert, find and remove the patients on every engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBench(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringSlice("kinds", nil, "engines to bench, all by default")
	cmd.Flags().Int("items", 3000, "patients per run")
	cmd.Flags().Int("runs", 3, "runs per engine")
	cmd.Flags().Int("workers", 4, "engines benched at the same time")
	cmd.Flags().String("metrics", "none", "metrics exporter: none, console or prometheus")
	return cmd
}

func (a *app) runBench(ctx context.Context, w io.Writer) error {
	opts, err := a.cfg.Engine.options()
	if err != nil {
		return err
	}
	kinds, err := parseKinds(a.cfg.Bench.Kinds)
	if err != nil {
		return err
	}
	typ, err := observability.ParseMetricsExporter(a.cfg.Metrics.Exporter)
	if err != nil {
		return err
	}
	patients, err := a.loadPatients()
	if err != nil {
		return err
	}

	exporter, err := observability.InitMetrics(typ, w, a.cfg.Metrics.Interval)
	if err != nil {
		return err
	}
	defer func() {
		if err := exporter.Shutdown(context.Background()); err != nil {
			a.logger.ErrorStack(err, "metrics exporter shutdown")
		}
	}()
	if typ != observability.NoneExporter && a.cfg.Metrics.AppStats {
		observability.InitAppStats("xkv")
	}

	results, runErr := bench.Run(ctx, patients, bench.Config{
		Kinds:   kinds,
		Items:   a.cfg.Bench.Items,
		Runs:    a.cfg.Bench.Runs,
		Workers: a.cfg.Bench.Workers,
		Options: opts,
		Metered: typ != observability.NoneExporter,
		Logger:  a.logger.Named("bench"),
	})
	if len(results) > 0 {
		bench.RenderResults(w, results)
	}
	if err = exporter.Flush(ctx); err != nil {
		a.logger.ErrorStack(err, "metrics flush")
	}
	return runErr
}

func newListCmpCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listcmp",
		Short: "Compare the sequential list insert policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := bench.CompareListPolicies(a.cfg.Bench.Items, a.cfg.Bench.Runs)
			bench.RenderPolicyResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().Int("items", 3000, "keys inserted per run")
	cmd.Flags().Int("runs", 3, "runs per policy")
	return cmd
}
