package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"WEATHER_API_KEY", "WEATHER_API_BASE_URL", "WEATHER_CITIES", "FETCH_CONCURRENCY",
		"HTTP_TIMEOUT", "OUTPUT_FORMAT", "OUTPUT_DIR", "PREVIEW_ROWS", "REDIS_ADDR",
		"REDIS_PASSWORD", "CACHE_TTL", "DATABASE_URL", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	// keep a stray .env in the package dir from leaking in
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg.Cities, DefaultCities) {
		t.Errorf("Cities = %v, want %v", cfg.Cities, DefaultCities)
	}
	if cfg.Format != "parquet" {
		t.Errorf("Format = %q, want parquet", cfg.Format)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", cfg.Concurrency)
	}
	if cfg.WeatherAPIKey != "" {
		t.Errorf("WeatherAPIKey = %q, want empty", cfg.WeatherAPIKey)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_API_KEY", "secret")
	t.Setenv("WEATHER_CITIES", " Paris, ,Oslo ")
	t.Setenv("FETCH_CONCURRENCY", "3")
	t.Setenv("OUTPUT_FORMAT", "CSV")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.WeatherAPIKey != "secret" {
		t.Errorf("WeatherAPIKey = %q, want secret", cfg.WeatherAPIKey)
	}
	if want := []string{"Paris", "Oslo"}; !reflect.DeepEqual(cfg.Cities, want) {
		t.Errorf("Cities = %v, want %v", cfg.Cities, want)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3", cfg.Concurrency)
	}
	if cfg.Format != "csv" {
		t.Errorf("Format = %q, want csv", cfg.Format)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %s, want 90s", cfg.CacheTTL)
	}
	if cfg.DatabaseURL == "" {
		t.Error("DatabaseURL not loaded")
	}
}

func TestLoad_InvalidConcurrency(t *testing.T) {
	clearEnv(t)
	t.Setenv("FETCH_CONCURRENCY", "many")

	if _, err := Load(""); err == nil {
		t.Fatal("Load() expected error for non-numeric FETCH_CONCURRENCY")
	}

	t.Setenv("FETCH_CONCURRENCY", "0")
	if _, err := Load(""); err == nil {
		t.Fatal("Load() expected error for zero FETCH_CONCURRENCY")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "etl.yaml")
	body := []byte("cities: [Tokyo, Lima]\nformat: csv\noutput_dir: out\ncache_ttl: 1m\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OUTPUT_FORMAT", "parquet")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if want := []string{"Tokyo", "Lima"}; !reflect.DeepEqual(cfg.Cities, want) {
		t.Errorf("Cities = %v, want %v", cfg.Cities, want)
	}
	if cfg.OutputDir != "out" {
		t.Errorf("OutputDir = %q, want out", cfg.OutputDir)
	}
	if cfg.CacheTTL != time.Minute {
		t.Errorf("CacheTTL = %s, want 1m", cfg.CacheTTL)
	}
	// env wins over file
	if cfg.Format != "parquet" {
		t.Errorf("Format = %q, want parquet", cfg.Format)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() expected error for missing config file")
	}
}
