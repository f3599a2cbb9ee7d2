package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/locality-cli/pkg/amenity"
	"github.com/sells-group/locality-cli/pkg/geocode"
)

// Config holds the full application configuration.
type Config struct {
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Amenity AmenityConfig `yaml:"amenity" mapstructure:"amenity"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Score   ScoreConfig   `yaml:"score" mapstructure:"score"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// GeocodeConfig selects and tunes the geocoding provider.
type GeocodeConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"`
	APIKey            string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	CountryCodes      string  `yaml:"country_codes" mapstructure:"country_codes"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	RequestsPerMinute float64 `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
	BackoffFactor     float64 `yaml:"backoff_factor" mapstructure:"backoff_factor"`
}

// AmenityConfig selects and tunes the POI provider and its cache.
type AmenityConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	RequestsPerMinute float64 `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
	BackoffFactor     float64 `yaml:"backoff_factor" mapstructure:"backoff_factor"`
	FreshnessDays     int     `yaml:"freshness_days" mapstructure:"freshness_days"`
	// Radii maps amenity type to the radii (km) computed for it. Empty means
	// amenity.DefaultRadii().
	Radii map[string][]float64 `yaml:"radii" mapstructure:"radii"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ScoreConfig points at an optional YAML score table file.
type ScoreConfig struct {
	ConfigPath string `yaml:"config_path" mapstructure:"config_path"`
	// Version overrides the version recorded on scores when set.
	Version string `yaml:"version" mapstructure:"version"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentProjects int    `yaml:"max_concurrent_projects" mapstructure:"max_concurrent_projects"`
	Status                string `yaml:"status" mapstructure:"status"`
	Limit                 int    `yaml:"limit" mapstructure:"limit"`
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
	v.SetEnvPrefix("LOCALITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("geocode.provider", string(geocode.ProviderNominatim))
	v.SetDefault("geocode.api_key", "")
	v.SetDefault("geocode.base_url", "")
	v.SetDefault("geocode.user_agent", "locality-cli/1.0")
	v.SetDefault("geocode.country_codes", "in")
	v.SetDefault("geocode.requests_per_second", 1.0)
	v.SetDefault("geocode.requests_per_minute", 0)
	v.SetDefault("geocode.timeout_secs", 15)
	v.SetDefault("geocode.max_retries", 3)
	v.SetDefault("geocode.backoff_factor", 2.0)
	v.SetDefault("amenity.provider", string(amenity.ProviderOverpass))
	v.SetDefault("amenity.base_url", "")
	v.SetDefault("amenity.user_agent", "locality-cli/1.0")
	v.SetDefault("amenity.requests_per_second", 1.0)
	v.SetDefault("amenity.requests_per_minute", 0)
	v.SetDefault("amenity.timeout_secs", 30)
	v.SetDefault("amenity.max_retries", 3)
	v.SetDefault("amenity.backoff_factor", 2.0)
	v.SetDefault("amenity.freshness_days", 30)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "locality.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("score.config_path", "")
	v.SetDefault("score.version", "")
	v.SetDefault("batch.max_concurrent_projects", 4)
	v.SetDefault("batch.status", "")
	v.SetDefault("batch.limit", 500)
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

// Validate checks fields that would otherwise fail late inside a provider.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Geocode.Provider) {
	case "", string(geocode.ProviderNominatim):
	case string(geocode.ProviderGoogle):
		if c.Geocode.APIKey == "" {
			errs = append(errs, "geocode.api_key is required for the google provider")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown geocode.provider %q", c.Geocode.Provider))
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("unknown store.driver %q", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	types := make([]string, 0, len(c.Amenity.Radii))
	for typ := range c.Amenity.Radii {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		if _, ok := amenity.Tags(typ); !ok {
			errs = append(errs, fmt.Sprintf("amenity.radii has unknown type %q", typ))
			continue
		}
		for _, r := range c.Amenity.Radii[typ] {
			if r <= 0 {
				errs = append(errs, fmt.Sprintf("amenity.radii[%s] must be > 0, got %v", typ, r))
			}
		}
	}

	if c.Batch.MaxConcurrentProjects < 1 || c.Batch.MaxConcurrentProjects > 50 {
		errs = append(errs, "batch.max_concurrent_projects must be between 1 and 50")
	}
	if c.Geocode.RequestsPerSecond < 0 || c.Geocode.RequestsPerMinute < 0 ||
		c.Amenity.RequestsPerSecond < 0 || c.Amenity.RequestsPerMinute < 0 {
		errs = append(errs, "request rates must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ProviderConfig converts the geocode section into a geocode.Config.
func (g GeocodeConfig) ProviderConfig() geocode.Config {
	return geocode.Config{
		Provider:          geocode.ProviderKind(g.Provider),
		APIKey:            g.APIKey,
		BaseURL:           g.BaseURL,
		UserAgent:         g.UserAgent,
		CountryCodes:      g.CountryCodes,
		RequestsPerSecond: g.RequestsPerSecond,
		RequestsPerMinute: g.RequestsPerMinute,
		Timeout:           seconds(g.TimeoutSecs),
		MaxRetries:        g.MaxRetries,
		BackoffFactor:     g.BackoffFactor,
	}
}

// ProviderConfig converts the amenity section into an amenity.Config.
func (a AmenityConfig) ProviderConfig() amenity.Config {
	return amenity.Config{
		Provider:          amenity.ProviderKind(a.Provider),
		BaseURL:           a.BaseURL,
		UserAgent:         a.UserAgent,
		RequestsPerSecond: a.RequestsPerSecond,
		RequestsPerMinute: a.RequestsPerMinute,
		Timeout:           seconds(a.TimeoutSecs),
		MaxRetries:        a.MaxRetries,
		BackoffFactor:     a.BackoffFactor,
	}
}

// Freshness returns the POI cache freshness window.
func (a AmenityConfig) Freshness() time.Duration {
	if a.FreshnessDays <= 0 {
		return amenity.DefaultFreshness
	}
	return time.Duration(a.FreshnessDays) * 24 * time.Hour
}

// RadiiOrDefault returns the configured radii map, or the built-in defaults.
func (a AmenityConfig) RadiiOrDefault() map[string][]float64 {
	if len(a.Radii) == 0 {
		return amenity.DefaultRadii()
	}
	return a.Radii
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
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
