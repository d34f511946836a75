package cli

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/benz9527/xkv/dataset"
	"github.com/benz9527/xkv/lib/container"
	"github.com/benz9527/xkv/lib/infra"
	"github.com/benz9527/xkv/lib/list"
)

const (
	defaultConfigFile = "xkv.yaml"
	envPrefix         = "XKV"
)

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Encoder string `mapstructure:"encoder"`
}

type EngineConfig struct {
	Kind                string  `mapstructure:"kind"`
	HashCapacity        uint64  `mapstructure:"hash_capacity"`
	SkipListMaxLevel    int     `mapstructure:"skiplist_max_level"`
	SkipListProbability float64 `mapstructure:"skiplist_probability"`
	Seed                uint64  `mapstructure:"seed"`
	ListPolicy          string  `mapstructure:"list_policy"`
}

type DatasetConfig struct {
	Dir  string `mapstructure:"dir"`
	File string `mapstructure:"file"`
}

type BenchConfig struct {
	Kinds   []string `mapstructure:"kinds"`
	Items   int      `mapstructure:"items"`
	Runs    int      `mapstructure:"runs"`
	Workers int      `mapstructure:"workers"`
}

type MetricsConfig struct {
	Exporter string        `mapstructure:"exporter"`
	Interval time.Duration `mapstructure:"interval"`
	AppStats bool          `mapstructure:"app_stats"`
}

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Bench   BenchConfig   `mapstructure:"bench"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

var defaults = map[string]any{
	"log.level":                   "INFO",
	"log.encoder":                 "plain",
	"engine.kind":                 container.AVLTreeKind.String(),
	"engine.hash_capacity":        1024,
	"engine.skiplist_max_level":   16,
	"engine.skiplist_probability": 0.5,
	"engine.seed":                 0,
	"engine.list_policy":          list.InsertAtTail.String(),
	"dataset.dir":                 dataset.DefaultDir,
	"dataset.file":                dataset.DefaultFile,
	"bench.kinds":                 []string{},
	"bench.items":                 3000,
	"bench.runs":                  3,
	"bench.workers":               4,
	"metrics.exporter":            "none",
	"metrics.interval":            "10s",
	"metrics.app_stats":           false,
}

// flag name -> config key
var flagKeys = map[string]string{
	"log-level":    "log.level",
	"log-encoder":  "log.encoder",
	"engine":       "engine.kind",
	"seed":         "engine.seed",
	"list-policy":  "engine.list_policy",
	"dataset-dir":  "dataset.dir",
	"dataset-file": "dataset.file",
	"kinds":        "bench.kinds",
	"items":        "bench.items",
	"runs":         "bench.runs",
	"workers":      "bench.workers",
	"metrics":      "metrics.exporter",
}

// loadConfig merges the sources by precedence: flags, env (XKV_ENGINE_KIND),
// the config file, defaults. A missing config file is not an error.
func loadConfig(v *viper.Viper, cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if len(strings.TrimSpace(cfgFile)) > 0 {
		v.SetConfigFile(cfgFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, infra.WrapErrorStackWithMessage(err, "[cli] read config "+cfgFile)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, infra.WrapErrorStackWithMessage(err, "[cli] bind flag "+name)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[cli] decode config")
	}
	return cfg, nil
}

func (cfg *EngineConfig) options() ([]container.Option, error) {
	policy, err := list.ParseInsertPolicy(cfg.ListPolicy)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	return []container.Option{
		container.WithHashCapacity(cfg.HashCapacity),
		container.WithSkipListMaxLevel(cfg.SkipListMaxLevel),
		container.WithSkipListProbability(cfg.SkipListProbability),
		container.WithSeed(cfg.Seed),
		container.WithListPolicy(policy),
	}, nil
}

// parseKinds returns every kind if nothing is named.
func parseKinds(names []string) ([]container.Kind, error) {
	kinds := make([]container.Kind, 0, len(names))
	for _, name := range names {
		kind, err := container.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	if len(kinds) == 0 {
		return container.Kinds(), nil
	}
	return kinds, nil
}
