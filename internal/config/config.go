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
	Backend Backend `yaml:"backend" mapstructure:"backend"`
	Geocode Geocode `yaml:"geocode" mapstructure:"geocode"`
	Finder  Finder  `yaml:"finder" mapstructure:"finder"`
	Server  Server  `yaml:"server" mapstructure:"server"`
	Log     Log     `yaml:"log" mapstructure:"log"`
}

// Backend configures the opportunity-platform REST API.
type Backend struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Token       string `yaml:"token" mapstructure:"token"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Geocode configures the free-text address search provider.
type Geocode struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	GoogleAPIKey string  `yaml:"google_api_key" mapstructure:"google_api_key"`
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
	RateLimit    float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	CachePath    string  `yaml:"cache_path" mapstructure:"cache_path"`
	CacheTTLDays int     `yaml:"cache_ttl_days" mapstructure:"cache_ttl_days"`
}

// Finder configures the layer engine defaults.
type Finder struct {
	DefaultRadiusMiles float64 `yaml:"default_radius_miles" mapstructure:"default_radius_miles"`
	DebounceMillis     int     `yaml:"debounce_millis" mapstructure:"debounce_millis"`
	ZoneTopN           int     `yaml:"zone_top_n" mapstructure:"zone_top_n"`
}

// Server configures the session HTTP API.
type Server struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// Log configures logging.
type Log struct {
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
	v.SetEnvPrefix("LOCFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("backend.timeout_secs", 30)
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "sells-group-location-finder/1.0")
	v.SetDefault("geocode.rate_limit", 1.0)
	v.SetDefault("geocode.cache_ttl_days", 30)
	v.SetDefault("finder.default_radius_miles", 5)
	v.SetDefault("finder.debounce_millis", 300)
	v.SetDefault("finder.zone_top_n", 3)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
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

// InitLogger initializes the global zap logger.
func InitLogger(cfg Log) error {
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
