// Package config loads application configuration from config.yaml and
// FRONTAGE_* environment variables.
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
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Frontage FrontageConfig `yaml:"frontage" mapstructure:"frontage"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the two shapefiles loaded at startup. Both
// datasets must already share a planar CRS in feet.
type DataConfig struct {
	ParcelsPath string `yaml:"parcels_path" mapstructure:"parcels_path"`
	StreetsPath string `yaml:"streets_path" mapstructure:"streets_path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateRPS   float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// FrontageConfig configures resolver and analysis defaults.
type FrontageConfig struct {
	DefaultToleranceFt float64 `yaml:"default_tolerance_ft" mapstructure:"default_tolerance_ft"`
	NearbyRadiusFt     float64 `yaml:"nearby_radius_ft" mapstructure:"nearby_radius_ft"`
	NearbyLimit        int     `yaml:"nearby_limit" mapstructure:"nearby_limit"`
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
	v.SetEnvPrefix("FRONTAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.parcels_path", "data/Parcels_export.shp")
	v.SetDefault("data.streets_path", "data/Streets.shp")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_rps", 50)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("frontage.default_tolerance_ft", 1.0)
	v.SetDefault("frontage.nearby_radius_ft", 200.0)
	v.SetDefault("frontage.nearby_limit", 20)
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
