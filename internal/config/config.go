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
	Geocode   GeocodeConfig   `yaml:"geocode" mapstructure:"geocode"`
	Match     MatchConfig     `yaml:"match" mapstructure:"match"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Auth      AuthConfig      `yaml:"auth" mapstructure:"auth"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds ranking-model settings. An empty Key is the
// recognized "ranking unavailable" mode, not a startup error.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GeocodeConfig holds Google Geocoding API settings. Optional; without
// a key preferred-city coordinates are simply not resolved.
type GeocodeConfig struct {
	GoogleKey string `yaml:"google_key" mapstructure:"google_key"`
}

// MatchConfig tunes the ranking pipeline.
type MatchConfig struct {
	RadiusKM   float64 `yaml:"radius_km" mapstructure:"radius_km"`
	MaxResults int     `yaml:"max_results" mapstructure:"max_results"`
}

// ScrapeConfig configures the listing scraper.
type ScrapeConfig struct {
	SourcesFile   string `yaml:"sources_file" mapstructure:"sources_file"`
	MaxPages      int    `yaml:"max_pages" mapstructure:"max_pages"`
	RatePerSec    int    `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Concurrency   int    `yaml:"concurrency" mapstructure:"concurrency"`
	IntervalHours int    `yaml:"interval_hours" mapstructure:"interval_hours"`
}

// AuthConfig configures token issuing.
type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours" mapstructure:"token_ttl_hours"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RENTMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets default to empty so their env overrides are
	// visible to Unmarshal.
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("geocode.google_key", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.timeout_secs", 60)
	v.SetDefault("match.radius_km", 10)
	v.SetDefault("match.max_results", 10)
	v.SetDefault("scrape.sources_file", "sources.yaml")
	v.SetDefault("scrape.max_pages", 5)
	v.SetDefault("scrape.rate_per_sec", 2)
	v.SetDefault("scrape.concurrency", 3)
	v.SetDefault("scrape.interval_hours", 6)
	v.SetDefault("auth.token_ttl_hours", 24)

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
