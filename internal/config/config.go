package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Database  DatabaseConfig  `yaml:"database" envconfig:"DATABASE"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// DatabaseConfig contains the hosted Postgres (Supabase) connection settings.
// The engine works without a database; CSV fallback is used when DSN is empty.
type DatabaseConfig struct {
	DSN          string        `yaml:"dsn" envconfig:"DSN"`
	MaxConns     int32         `yaml:"max_conns" envconfig:"MAX_CONNS" default:"4"`
	ConnTimeout  time.Duration `yaml:"conn_timeout" envconfig:"CONN_TIMEOUT" default:"10s"`
	QueryTimeout time.Duration `yaml:"query_timeout" envconfig:"QUERY_TIMEOUT" default:"30s"`
}

// Enabled reports whether a database connection is configured
func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.DSN) != ""
}

// AnalyticsConfig contains tunable parameters for the insights engine.
// The monetary assumptions have no documented derivation in the source data;
// they are deliberately configuration, not constants.
type AnalyticsConfig struct {
	ForecastHorizonDays int     `yaml:"forecast_horizon_days" envconfig:"FORECAST_HORIZON_DAYS" default:"30"`
	DaysBack            int     `yaml:"days_back" envconfig:"DAYS_BACK" default:"365"`
	ConfidenceLevel     float64 `yaml:"confidence_level" envconfig:"CONFIDENCE_LEVEL" default:"0.85"`

	AssumedRoomRate    float64 `yaml:"assumed_room_rate" envconfig:"ASSUMED_ROOM_RATE" default:"100"`
	RevenuePerVisitor  float64 `yaml:"revenue_per_visitor" envconfig:"REVENUE_PER_VISITOR" default:"150"`
	EconomicMultiplier float64 `yaml:"economic_multiplier" envconfig:"ECONOMIC_MULTIPLIER" default:"2.5"`
	DefaultDailyGrowth float64 `yaml:"default_daily_growth" envconfig:"DEFAULT_DAILY_GROWTH" default:"1.02"`

	SyntheticSeed int64 `yaml:"synthetic_seed" envconfig:"SYNTHETIC_SEED" default:"0"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string   `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string   `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
	LogsDir    string   `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	CSVPaths   []string `yaml:"csv_paths" envconfig:"CSV_PATHS" default:"tourism_dataset.csv,data/tourism_dataset.csv,../tourism_dataset.csv,functions/tourism_dataset.csv"`
}

// Load loads configuration from environment variables and an optional YAML file
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("TOURISM", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configFilePath returns the config file location, overridable via env
func configFilePath() string {
	if path := os.Getenv("TOURISM_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Database.DSN == "" {
		envConfig.Database.DSN = fileConfig.Database.DSN
	}
	if envConfig.Analytics.ForecastHorizonDays == 0 {
		envConfig.Analytics.ForecastHorizonDays = fileConfig.Analytics.ForecastHorizonDays
	}
	if envConfig.Analytics.DaysBack == 0 {
		envConfig.Analytics.DaysBack = fileConfig.Analytics.DaysBack
	}
	if envConfig.Paths.DataDir == "" {
		envConfig.Paths.DataDir = fileConfig.Paths.DataDir
	}
	if envConfig.Paths.ReportsDir == "" {
		envConfig.Paths.ReportsDir = fileConfig.Paths.ReportsDir
	}
	if len(envConfig.Paths.CSVPaths) == 0 {
		envConfig.Paths.CSVPaths = fileConfig.Paths.CSVPaths
	}

	return envConfig
}

// validate checks that the configuration is usable
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Analytics.ForecastHorizonDays < 1 {
		return fmt.Errorf("forecast horizon must be positive, got %d", c.Analytics.ForecastHorizonDays)
	}
	if c.Analytics.ConfidenceLevel <= 0 || c.Analytics.ConfidenceLevel > 1 {
		return fmt.Errorf("confidence level must be in (0, 1], got %f", c.Analytics.ConfidenceLevel)
	}
	if c.Analytics.DefaultDailyGrowth <= 0 {
		return fmt.Errorf("default daily growth must be positive, got %f", c.Analytics.DefaultDailyGrowth)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}
