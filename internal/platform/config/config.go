package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const envPrefix = "LEXICON"

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string

	DatabaseDriver     string
	DatabaseDSN        string
	SlowQueryThreshold time.Duration

	WorkerInterval   time.Duration
	DisableLifecycle bool
	DisableOutbox    bool
	SweepConcurrency int
	OutboxBatchSize  int

	IdentityCacheTTL time.Duration

	MediaBaseURL string
	MediaRoot    string

	MetricsEnabled    bool
	MetricsListenAddr string
}

func Load() (Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads configuration into v. Values set on v before the call take
// precedence over environment and file values.
func LoadFrom(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if file := strings.TrimSpace(cast.ToString(v.Get("config_file"))); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	slowQuery, err := duration(v, "database.slow_query_threshold")
	if err != nil {
		return Config{}, err
	}
	interval, err := duration(v, "worker.interval")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := duration(v, "identity.cache_ttl")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ServiceName: strings.TrimSpace(cast.ToString(v.Get("service.name"))),

		DatabaseDriver:     strings.ToLower(strings.TrimSpace(cast.ToString(v.Get("database.driver")))),
		DatabaseDSN:        strings.TrimSpace(cast.ToString(v.Get("database.dsn"))),
		SlowQueryThreshold: slowQuery,

		WorkerInterval:   interval,
		DisableLifecycle: envBool(v, "worker.disable_lifecycle", false),
		DisableOutbox:    envBool(v, "worker.disable_outbox", false),
		SweepConcurrency: cast.ToInt(v.Get("worker.sweep_concurrency")),
		OutboxBatchSize:  cast.ToInt(v.Get("worker.outbox_batch_size")),

		IdentityCacheTTL: cacheTTL,

		MediaBaseURL: strings.TrimSpace(cast.ToString(v.Get("media.base_url"))),
		MediaRoot:    strings.TrimSpace(cast.ToString(v.Get("media.root"))),

		MetricsEnabled:    envBool(v, "metrics.enabled", true),
		MetricsListenAddr: strings.TrimSpace(cast.ToString(v.Get("metrics.listen_addr"))),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case "memory":
	case "postgres", "sqlite":
		if c.DatabaseDSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.DatabaseDriver)
	}
	if c.WorkerInterval <= 0 {
		return fmt.Errorf("worker.interval must be positive, got %s", c.WorkerInterval)
	}
	if c.SweepConcurrency <= 0 {
		return fmt.Errorf("worker.sweep_concurrency must be positive, got %d", c.SweepConcurrency)
	}
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("worker.outbox_batch_size must be positive, got %d", c.OutboxBatchSize)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "lexicon-governance")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.slow_query_threshold", "200ms")
	v.SetDefault("worker.interval", "1h")
	v.SetDefault("worker.disable_lifecycle", false)
	v.SetDefault("worker.disable_outbox", false)
	v.SetDefault("worker.sweep_concurrency", 4)
	v.SetDefault("worker.outbox_batch_size", 100)
	v.SetDefault("identity.cache_ttl", "1m")
	v.SetDefault("media.base_url", "")
	v.SetDefault("media.root", "")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen_addr", "")
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	value, err := cast.ToDurationE(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func envBool(v *viper.Viper, key string, fallback bool) bool {
	raw := v.Get(key)
	if text, ok := raw.(string); ok {
		switch strings.TrimSpace(strings.ToLower(text)) {
		case "":
			return fallback
		case "y", "yes", "on":
			return true
		case "n", "no", "off":
			return false
		}
	}
	value, err := cast.ToBoolE(raw)
	if err != nil {
		return fallback
	}
	return value
}
