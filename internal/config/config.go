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
	Damfill  DamfillConfig  `yaml:"damfill" mapstructure:"damfill"`
	Archive  ArchiveConfig  `yaml:"archive" mapstructure:"archive"`
	Irrigate IrrigateConfig `yaml:"irrigate" mapstructure:"irrigate"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DamfillConfig configures the water-body time-series pipeline.
type DamfillConfig struct {
	Shapefile        string `yaml:"shapefile" mapstructure:"shapefile"`
	OutputDir        string `yaml:"output_dir" mapstructure:"output_dir"`
	Fanout           int    `yaml:"fanout" mapstructure:"fanout"`
	Product          string `yaml:"product" mapstructure:"product"`
	CheckpointDriver string `yaml:"checkpoint_driver" mapstructure:"checkpoint_driver"`
	CheckpointDB     string `yaml:"checkpoint_db" mapstructure:"checkpoint_db"`
}

// ArchiveConfig configures the remote raster archive client.
type ArchiveConfig struct {
	BaseURL          string  `yaml:"base_url" mapstructure:"base_url"`
	Token            string  `yaml:"token" mapstructure:"token"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries       int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec       float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	FetchConcurrency int     `yaml:"fetch_concurrency" mapstructure:"fetch_concurrency"`
}

// IrrigateConfig configures the irrigated-extent pipeline.
type IrrigateConfig struct {
	InputDir       string `yaml:"input_dir" mapstructure:"input_dir"`
	ResultsDir     string `yaml:"results_dir" mapstructure:"results_dir"`
	TempDir        string `yaml:"temp_dir" mapstructure:"temp_dir"`
	AOI            string `yaml:"aoi" mapstructure:"aoi"`
	Season         string `yaml:"season" mapstructure:"season"`
	OutputSuffix   string `yaml:"output_suffix" mapstructure:"output_suffix"`
	SegmentPath    string `yaml:"segment_path" mapstructure:"segment_path"`
	PolygonizePath string `yaml:"polygonize_path" mapstructure:"polygonize_path"`
	Clusters       int    `yaml:"clusters" mapstructure:"clusters"`
	MinPixels      int    `yaml:"min_pixels" mapstructure:"min_pixels"`
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
	v.SetEnvPrefix("BASIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("damfill.output_dir", "timeseries")
	v.SetDefault("damfill.fanout", 32)
	v.SetDefault("damfill.product", "wofs_albers")
	v.SetDefault("damfill.checkpoint_driver", "sqlite")
	v.SetDefault("damfill.checkpoint_db", "checkpoints.db")
	v.SetDefault("archive.timeout_secs", 120)
	v.SetDefault("archive.max_retries", 3)
	v.SetDefault("archive.rate_per_sec", 4)
	v.SetDefault("archive.fetch_concurrency", 4)
	v.SetDefault("irrigate.input_dir", ".")
	v.SetDefault("irrigate.results_dir", "results")
	v.SetDefault("irrigate.temp_dir", "/tmp/basin-cli")
	v.SetDefault("irrigate.season", "Summer")
	v.SetDefault("irrigate.output_suffix", "_multithreshold")
	v.SetDefault("irrigate.segment_path", "shepseg")
	v.SetDefault("irrigate.polygonize_path", "gdal_polygonize.py")
	v.SetDefault("irrigate.clusters", 20)
	v.SetDefault("irrigate.min_pixels", 100)

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
