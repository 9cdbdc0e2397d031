package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Analysis  AnalysisConfig  `yaml:"analysis" mapstructure:"analysis"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	Model             string  `yaml:"model" mapstructure:"model"`
	MaxTokens         int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// EnrichConfig toggles and bounds the optional LLM enrichment step.
type EnrichConfig struct {
	Enabled          bool `yaml:"enabled" mapstructure:"enabled"`
	MaxReviews       int  `yaml:"max_reviews" mapstructure:"max_reviews"`
	MaxAttempts      int  `yaml:"max_attempts" mapstructure:"max_attempts"`
	BreakerThreshold int  `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldownS int  `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
}

// AnalysisConfig holds the report transform knobs.
type AnalysisConfig struct {
	TopKeywords       int     `yaml:"top_keywords" mapstructure:"top_keywords"`
	MaxVerbatims      int     `yaml:"max_verbatims" mapstructure:"max_verbatims"`
	VerbatimLength    int     `yaml:"verbatim_length" mapstructure:"verbatim_length"`
	TrendMonths       int     `yaml:"trend_months" mapstructure:"trend_months"`
	TrendThresholdPct float64 `yaml:"trend_threshold_pct" mapstructure:"trend_threshold_pct"`
}

// IngestConfig configures remote review downloads.
type IngestConfig struct {
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentBusinesses int `yaml:"max_concurrent_businesses" mapstructure:"max_concurrent_businesses"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Mode names the requirement set Validate checks.
type Mode string

const (
	ModeStore  Mode = "store"
	ModeEnrich Mode = "enrich"
	ModeServe  Mode = "serve"
)

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("REVIEWS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "reviews.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.requests_per_second", 2)
	v.SetDefault("enrich.enabled", false)
	v.SetDefault("enrich.max_reviews", 80)
	v.SetDefault("enrich.max_attempts", 3)
	v.SetDefault("enrich.breaker_threshold", 5)
	v.SetDefault("enrich.breaker_cooldown_secs", 30)
	v.SetDefault("analysis.top_keywords", 15)
	v.SetDefault("analysis.max_verbatims", 8)
	v.SetDefault("analysis.verbatim_length", 200)
	v.SetDefault("analysis.trend_months", 3)
	v.SetDefault("analysis.trend_threshold_pct", 2)
	v.SetDefault("ingest.user_agent", "review-insights/1.0")
	v.SetDefault("ingest.timeout_secs", 30)
	v.SetDefault("ingest.requests_per_second", 5)
	v.SetDefault("batch.max_concurrent_businesses", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the keys a command mode depends on plus the value bounds
// every mode shares. All problems are reported together.
func (c *Config) Validate(mode Mode) error {
	var errs []string

	switch mode {
	case ModeStore:
		errs = append(errs, c.storeErrors()...)
		if c.Enrich.Enabled && c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required when enrich.enabled is set")
		}
	case ModeEnrich:
		errs = append(errs, c.storeErrors()...)
		if c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required")
		}
		if c.Anthropic.Model == "" {
			errs = append(errs, "anthropic.model is required")
		}
	case ModeServe:
		errs = append(errs, c.storeErrors()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Enrich.Enabled && c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required when enrich.enabled is set")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if n := c.Batch.MaxConcurrentBusinesses; n < 1 || n > 50 {
		errs = append(errs, "batch.max_concurrent_businesses must be between 1 and 50")
	}
	if c.Analysis.TrendMonths < 1 {
		errs = append(errs, "analysis.trend_months must be >= 1")
	}
	if c.Analysis.TrendThresholdPct < 0 {
		errs = append(errs, "analysis.trend_threshold_pct must be >= 0")
	}
	if c.Analysis.TopKeywords < 0 || c.Analysis.MaxVerbatims < 0 || c.Analysis.VerbatimLength < 0 {
		errs = append(errs, "analysis limits must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) storeErrors() []string {
	var errs []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
