package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the full agent configuration
type Config struct {
	Env       string          `yaml:"env" env:"TELEMON_ENV" env-default:"production"`
	Log       LogConfig       `yaml:"log"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Recording RecordingConfig `yaml:"recording"`
	Export    ExportConfig    `yaml:"export"`
}

// LogConfig configures the zap logger and optional rotating file output
type LogConfig struct {
	Level      string `yaml:"level" env:"TELEMON_LOG_LEVEL" env-default:"info"`
	Format     string `yaml:"format" env:"TELEMON_LOG_FORMAT" env-default:"console"`
	File       string `yaml:"file" env:"TELEMON_LOG_FILE" env-default:""`
	MaxSizeMB  int    `yaml:"max_size_mb" env-default:"10"`
	MaxBackups int    `yaml:"max_backups" env-default:"3"`
	MaxAgeDays int    `yaml:"max_age_days" env-default:"7"`
}

// MonitorConfig configures the sampling loop and rate tracking.
// Interval fields are in seconds.
type MonitorConfig struct {
	TickIntervalSec   float64 `yaml:"tick_interval" env:"TELEMON_TICK_INTERVAL" env-default:"2.0"`
	LogIntervalSec    float64 `yaml:"log_interval" env:"TELEMON_LOG_INTERVAL" env-default:"5.0"`
	RateWindowSec     float64 `yaml:"rate_window" env:"TELEMON_RATE_WINDOW" env-default:"60.0"`
	StatusIntervalSec float64 `yaml:"status_interval" env:"TELEMON_STATUS_INTERVAL" env-default:"2.0"`
	StopTimeoutSec    float64 `yaml:"stop_timeout" env-default:"2.0"`
	HistoryCapacity   int     `yaml:"history_capacity" env:"TELEMON_HISTORY_CAPACITY" env-default:"600"`
	LogCapacity       int     `yaml:"log_capacity" env:"TELEMON_LOG_CAPACITY" env-default:"1000"`
}

// RecordingConfig configures screen recording
type RecordingConfig struct {
	FPS       int    `yaml:"fps" env:"TELEMON_RECORDING_FPS" env-default:"10"`
	MaxWidth  int    `yaml:"max_width" env-default:"1280"`
	MaxHeight int    `yaml:"max_height" env-default:"720"`
	OutputDir string `yaml:"output_dir" env:"TELEMON_RECORDING_DIR" env-default:"."`
}

// ExportConfig configures telemetry export
type ExportConfig struct {
	Dir      string `yaml:"dir" env:"TELEMON_EXPORT_DIR" env-default:"."`
	BaseName string `yaml:"base_name" env-default:"telemetry_data"`
}

// LoadConfig loads configuration from the given YAML file, falling back to
// environment variables and defaults when the file does not exist
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.Monitor.TickIntervalSec <= 0 {
		return fmt.Errorf("monitor.tick_interval must be positive, got %v", c.Monitor.TickIntervalSec)
	}
	if c.Monitor.LogIntervalSec <= 0 {
		return fmt.Errorf("monitor.log_interval must be positive, got %v", c.Monitor.LogIntervalSec)
	}
	if c.Monitor.RateWindowSec <= 0 {
		return fmt.Errorf("monitor.rate_window must be positive, got %v", c.Monitor.RateWindowSec)
	}
	if c.Monitor.HistoryCapacity <= 0 {
		return fmt.Errorf("monitor.history_capacity must be positive, got %d", c.Monitor.HistoryCapacity)
	}
	if c.Monitor.LogCapacity <= 0 {
		return fmt.Errorf("monitor.log_capacity must be positive, got %d", c.Monitor.LogCapacity)
	}
	if c.Recording.FPS <= 0 || c.Recording.FPS > 60 {
		return fmt.Errorf("recording.fps must be in 1..60, got %d", c.Recording.FPS)
	}
	return nil
}

// TickInterval returns the sampling tick interval as a duration
func (c *MonitorConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalSec * float64(time.Second))
}

// LogInterval returns the telemetry log gate interval as a duration
func (c *MonitorConfig) LogInterval() time.Duration {
	return time.Duration(c.LogIntervalSec * float64(time.Second))
}

// RateWindow returns the sliding rate window as a duration
func (c *MonitorConfig) RateWindow() time.Duration {
	return time.Duration(c.RateWindowSec * float64(time.Second))
}

// StatusInterval returns the display status refresh interval as a duration
func (c *MonitorConfig) StatusInterval() time.Duration {
	return time.Duration(c.StatusIntervalSec * float64(time.Second))
}

// StopTimeout returns the bounded wait for loop shutdown as a duration
func (c *MonitorConfig) StopTimeout() time.Duration {
	return time.Duration(c.StopTimeoutSec * float64(time.Second))
}
