package cli

import (
	"context"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/benz9527/xkv/dataset"
	"github.com/benz9527/xkv/lib/container"
	"github.com/benz9527/xkv/lib/xlog"
)

type app struct {
	cfgFile string
	cfg     *Config
	logger  xlog.XLogger
}

func kindNames() []string {
	return lo.Map(container.Kinds(), func(kind container.Kind, _ int) string {
		return kind.String()
	})
}

func newLogger(cfg *LogConfig, w io.Writer) (xlog.XLogger, error) {
	lvl, err := xlog.ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	enc, err := xlog.ParseLogEncoder(cfg.Encoder)
	if err != nil {
		return nil, err
	}
	return xlog.NewXLogger(
		xlog.WithXLoggerWriter(w),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerLevel(lvl),
	), nil
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(viper.New(), a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(&cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger.Named("xkv")
	a.logger.Debug("config loaded",
		zap.String("command", cmd.Name()),
		zap.String("engine", cfg.Engine.Kind),
		zap.String("dataset", cfg.Dataset.File),
	)
	return nil
}

func (a *app) loadPatients() ([]dataset.Patient, error) {
	patients, err := dataset.LoadCSV(a.cfg.Dataset.Dir, a.cfg.Dataset.File)
	if err != nil {
		if len(patients) == 0 {
			return nil, err
		}
		a.logger.ErrorStack(err, "dataset partially loaded", zap.Int("patients", len(patients)))
	}
	a.logger.Info("dataset loaded",
		zap.String("dir", a.cfg.Dataset.Dir),
		zap.String("file", a.cfg.Dataset.File),
		zap.Int("patients", len(patients)),
	)
	return patients, nil
}

func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "xkv",
		Short:         "Key-value containers compared on the heart attack prediction dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", defaultConfigFile, "yaml config file, ignored if missing")
	flags.String("log-level", "INFO", "DEBUG, INFO, WARN or ERROR")
	flags.String("log-encoder", "plain", "plain or json")
	flags.String("engine", container.AVLTreeKind.String(), "engine: "+strings.Join(kindNames(), ", "))
	flags.Uint64("seed", 0, "skip list seed, 0 is random")
	flags.String("list-policy", "tail", "list insert policy: tail, head or tail-walk")
	flags.String("dataset-dir", dataset.DefaultDir, "dataset directory")
	flags.String("dataset-file", dataset.DefaultFile, "dataset csv file beneath the directory")

	root.AddCommand(
		newLoadCmd(a),
		newBenchCmd(a),
		newListCmpCmd(a),
		newVersionCmd(),
	)
	return root
}

func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
