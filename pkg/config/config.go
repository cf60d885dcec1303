package config

import (
	"fmt"
	"os"
	"time"

	"CoinCast/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Log         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowThreshold   time.Duration `yaml:"slow_threshold"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Forecast struct {
		ArtifactsDir string `yaml:"artifacts_dir"`
		WindowSize   int    `yaml:"window_size"`
		MaxHorizon   int    `yaml:"max_horizon"`
	} `yaml:"forecast"`
	History struct {
		Source  string `yaml:"source"` // csv | clickhouse
		DataDir string `yaml:"data_dir"`
		Table   string `yaml:"table"`
	} `yaml:"history"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		MaxExecution time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Cache struct {
		Backend string        `yaml:"backend"` // none | memory | redis
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	RateLimit struct {
		Capacity     float64 `yaml:"capacity"`
		RefillPerSec float64 `yaml:"refill_per_sec"`
	} `yaml:"ratelimit"`
}

// Default returns a config usable without a file: CSV history, no cache, no Kafka.
func Default() *Config {
	var c Config
	c.Environment = "development"
	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.Output = "stdout"
	c.Server.Port = 8000
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.SlowThreshold = time.Second
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	c.Forecast.ArtifactsDir = "saved_models"
	c.Forecast.WindowSize = 30
	c.Forecast.MaxHorizon = 365
	c.History.Source = "csv"
	c.History.DataDir = "data"
	c.History.Table = "coincast.daily_closes"
	c.Cache.Backend = "none"
	c.Cache.TTL = 5 * time.Minute
	c.Cache.Redis.Prefix = "coincast"
	c.Kafka.Topic = "coincast.forecasts"
	c.Kafka.RequiredAcks = 1
	c.Kafka.Compression = "snappy"
	c.Kafka.Producer.MaxAttempts = 3
	c.Kafka.Producer.Linger = 100 * time.Millisecond
	c.Kafka.Producer.BatchSize = 100
	c.Kafka.Producer.WriteTimeout = 5 * time.Second
	return &c
}

// Load reads a YAML file on top of Default() and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes on top of Default() and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the given lookup (os.Getenv in production).
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("COINCAST_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("ARTIFACTS_DIR"); v != "" {
		c.Forecast.ArtifactsDir = v
	}
	if v := getenv("DATA_DIR"); v != "" {
		c.History.DataDir = v
	}
	if v := getenv("HISTORY_SOURCE"); v != "" {
		c.History.Source = v
	}
	if v := getenv("HTTP_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Forecast.ArtifactsDir == "" {
		return fmt.Errorf("forecast.artifacts_dir is required")
	}
	if c.Forecast.WindowSize <= 0 {
		return fmt.Errorf("forecast.window_size must be positive")
	}
	if c.Forecast.MaxHorizon <= 0 {
		return fmt.Errorf("forecast.max_horizon must be positive")
	}
	switch c.History.Source {
	case "csv":
		if c.History.DataDir == "" {
			return fmt.Errorf("history.data_dir is required for csv source")
		}
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for clickhouse source")
		}
		if c.History.Table == "" {
			return fmt.Errorf("history.table is required for clickhouse source")
		}
	default:
		return fmt.Errorf("history.source must be 'csv' or 'clickhouse', got '%s'", c.History.Source)
	}
	switch c.Cache.Backend {
	case "", "none", "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for redis cache")
		}
	default:
		return fmt.Errorf("cache.backend must be 'none', 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when kafka is enabled")
		}
	}
	return nil
}
