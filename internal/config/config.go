package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultCities is the tracked city list used when nothing else is configured.
var DefaultCities = []string{"Lahore", "Karachi", "Islamabad", "Dubai", "London"}

const (
	DefaultBaseURL     = "http://api.openweathermap.org/data/2.5/weather"
	DefaultFormat      = "parquet"
	DefaultOutputDir   = "."
	DefaultCacheTTL    = 5 * time.Minute
	DefaultPreviewRows = 5
)

// Config holds all the environment-driven settings for one ETL run.
type Config struct {
	// Weather API
	WeatherAPIKey string        `yaml:"-"`
	BaseURL       string        `yaml:"base_url"`
	Cities        []string      `yaml:"cities"`
	Concurrency   int           `yaml:"concurrency"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`

	// Output
	Format      string `yaml:"format"`
	OutputDir   string `yaml:"output_dir"`
	PreviewRows int    `yaml:"preview_rows"`

	// Redis response cache, disabled when RedisAddr is empty
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"-"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`

	// Postgres sink, disabled when DatabaseURL is empty
	DatabaseURL string `yaml:"-"`

	LogLevel string `yaml:"log_level"`
}

// Default returns a Config populated with built-in defaults only.
func Default() *Config {
	return &Config{
		BaseURL:     DefaultBaseURL,
		Cities:      append([]string(nil), DefaultCities...),
		Concurrency: 1,
		Format:      DefaultFormat,
		OutputDir:   DefaultOutputDir,
		PreviewRows: DefaultPreviewRows,
		CacheTTL:    DefaultCacheTTL,
		LogLevel:    "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order. A .env file in the working directory is loaded
// into the environment first when present. WEATHER_API_KEY is not validated:
// a missing key surfaces as per-city authentication failures.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error

	c.WeatherAPIKey = os.Getenv("WEATHER_API_KEY")

	if v := os.Getenv("WEATHER_API_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("WEATHER_CITIES"); v != "" {
		c.Cities = SplitCities(v)
	}
	if v := os.Getenv("FETCH_CONCURRENCY"); v != "" {
		if c.Concurrency, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid FETCH_CONCURRENCY %q: %w", v, err)
		}
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		if c.HTTPTimeout, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", v, err)
		}
	}

	if v := os.Getenv("OUTPUT_FORMAT"); v != "" {
		c.Format = strings.ToLower(v)
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("PREVIEW_ROWS"); v != "" {
		if c.PreviewRows, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid PREVIEW_ROWS %q: %w", v, err)
		}
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	c.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if c.CacheTTL, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid CACHE_TTL %q: %w", v, err)
		}
	}

	c.DatabaseURL = os.Getenv("DATABASE_URL")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate rejects values the pipeline cannot run with. An empty city list is
// legal and produces an empty run.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("WEATHER_API_BASE_URL must not be empty")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout must not be negative, got %s", c.HTTPTimeout)
	}
	if c.PreviewRows < 0 {
		return fmt.Errorf("preview rows must not be negative, got %d", c.PreviewRows)
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	return nil
}

// SplitCities parses a comma-separated city list, trimming blanks and
// dropping empty entries.
func SplitCities(s string) []string {
	var cities []string
	for _, part := range strings.Split(s, ",") {
		if city := strings.TrimSpace(part); city != "" {
			cities = append(cities, city)
		}
	}
	return cities
}
