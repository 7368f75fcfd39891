// Package config loads prop-buddy settings from config.yaml, .env and
// PROPBUDDY_* environment variables, and sets up the global logger.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Store drivers.
const (
	DriverFiles  = "files"
	DriverSQLite = "sqlite"
)

// Config holds the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Nominatim NominatimConfig `yaml:"nominatim" mapstructure:"nominatim"`
	Overpass  OverpassConfig  `yaml:"overpass" mapstructure:"overpass"`
	Zones     ZonesConfig     `yaml:"zones" mapstructure:"zones"`
	Ancestry  AncestryConfig  `yaml:"ancestry" mapstructure:"ancestry"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// NominatimConfig configures the geocoder and address suggestions.
type NominatimConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
	Viewbox      string  `yaml:"viewbox" mapstructure:"viewbox"`
	RateLimit    float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	SuggestLimit int     `yaml:"suggest_limit" mapstructure:"suggest_limit"`
	DebounceMS   int     `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Timeout returns the HTTP timeout.
func (c NominatimConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Debounce returns the suggestion debounce delay.
func (c NominatimConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// OverpassConfig configures the station locator.
type OverpassConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	RadiusMeters int    `yaml:"radius_meters" mapstructure:"radius_meters"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the HTTP timeout.
func (c OverpassConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ZonesConfig locates the catchment files.
type ZonesConfig struct {
	PrimaryPath   string `yaml:"primary_path" mapstructure:"primary_path"`
	SecondaryPath string `yaml:"secondary_path" mapstructure:"secondary_path"`
	NameProperty  string `yaml:"name_property" mapstructure:"name_property"`
}

// AncestryConfig locates the ancestry dataset.
type AncestryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// StoreConfig selects where datasets are read from.
type StoreConfig struct {
	Driver       string `yaml:"driver" mapstructure:"driver"`
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`
}

// SearchConfig configures the search orchestrator.
type SearchConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the per-search bound.
func (c SearchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	// .env values only fill variables not already set.
	_ = godotenv.Load(".env")

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROPBUDDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.user_agent", "PropBuddy/1.0")
	v.SetDefault("nominatim.viewbox", "144.5,-38.5,145.5,-37.5")
	v.SetDefault("nominatim.rate_limit", 1.0)
	v.SetDefault("nominatim.timeout_secs", 10)
	v.SetDefault("nominatim.suggest_limit", 5)
	v.SetDefault("nominatim.debounce_ms", 300)
	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.radius_meters", 5000)
	v.SetDefault("overpass.timeout_secs", 30)
	v.SetDefault("zones.primary_path", "data/Primary_Integrated_2025.geojson")
	v.SetDefault("zones.secondary_path", "data/Secondary_Integrated_Year9_2026.geojson")
	v.SetDefault("zones.name_property", "School_Name")
	v.SetDefault("ancestry.path", "data/ancestry-vic.json")
	v.SetDefault("store.driver", DriverFiles)
	v.SetDefault("store.database_path", "data/prop-buddy.db")
	v.SetDefault("search.timeout_secs", 30)

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

// Validate checks the settings a command depends on. mode is "search" for
// anything that queries the network, or "provision".
func (c *Config) Validate(mode string) error {
	var missing []string

	switch c.Store.Driver {
	case DriverFiles, DriverSQLite:
	default:
		missing = append(missing, "store.driver must be files or sqlite")
	}

	switch mode {
	case "search":
		if c.Nominatim.BaseURL == "" {
			missing = append(missing, "nominatim.base_url is required")
		}
		if strings.TrimSpace(c.Nominatim.UserAgent) == "" {
			missing = append(missing, "nominatim.user_agent is required")
		}
		if c.Overpass.BaseURL == "" {
			missing = append(missing, "overpass.base_url is required")
		}
		if c.Store.Driver == DriverSQLite && c.Store.DatabasePath == "" {
			missing = append(missing, "store.database_path is required")
		}
	case "provision":
		if c.Store.DatabasePath == "" {
			missing = append(missing, "store.database_path is required")
		}
	}

	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
	}
	return nil
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
