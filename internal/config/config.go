package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/Simplici0/spicebooks/internal/input"
)

const (
	defaultDBPath       = "./dev.db"
	defaultPort         = "8080"
	defaultSnapshotCron = "0 2 1 * *"
	defaultTimezone     = "Asia/Kolkata"

	envDev  = "dev"
	envProd = "prod"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env        string
	Port       string
	DBPath     string
	LogLevel   string
	TaxPercent float64
	Remote     RemoteConfig
	Export     ExportConfig
	MongoDB    MongoDBConfig
	Reporting  ReportingConfig
}

// RemoteConfig points at the hosted backend that mirrors every write.
type RemoteConfig struct {
	URL    string
	APIKey string
}

// ExportConfig holds the S3 destination for register exports.
type ExportConfig struct {
	Bucket string
	Region string
}

// MongoDBConfig holds settings for the register snapshot archive.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	SnapshotCron string
	Timezone     string
}

// Load reads environment variables, optionally from envFile, and returns a validated Config.
// A missing env file is not an error; production injects real environment variables.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	tax, err := input.ParsePercent(getenvWithDefault("TAX_PERCENT", "5"), "TAX_PERCENT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Env:        strings.ToLower(getenvWithDefault("APP_ENV", envDev)),
		Port:       getenvWithDefault("PORT", defaultPort),
		DBPath:     getenvWithDefault("DB_PATH", defaultDBPath),
		LogLevel:   getenvWithDefault("LOG_LEVEL", "info"),
		TaxPercent: tax,
		Remote: RemoteConfig{
			URL:    strings.TrimRight(os.Getenv("REMOTE_URL"), "/"),
			APIKey: os.Getenv("REMOTE_API_KEY"),
		},
		Export: ExportConfig{
			Bucket: os.Getenv("S3_BUCKET"),
			Region: getenvWithDefault("S3_REGION", "ap-south-1"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "spicebooks"),
		},
		Reporting: ReportingConfig{
			SnapshotCron: getenvWithDefault("MONTHLY_SNAPSHOT_CRON", defaultSnapshotCron),
			Timezone:     getenvWithDefault("TIMEZONE", defaultTimezone),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures that required configuration fields are coherent.
func (c Config) Validate() error {
	if c.Env != envDev && c.Env != envProd {
		return fmt.Errorf("APP_ENV must be %q or %q", envDev, envProd)
	}
	if c.Port == "" {
		return errors.New("PORT must be provided")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH must be provided")
	}
	if c.TaxPercent < 0 || c.TaxPercent > 100 {
		return errors.New("TAX_PERCENT must be between 0 and 100")
	}
	if c.Remote.URL != "" && c.Remote.APIKey == "" {
		return errors.New("REMOTE_API_KEY must be provided when REMOTE_URL is set")
	}
	if c.Reporting.SnapshotCron == "" {
		return errors.New("MONTHLY_SNAPSHOT_CRON must not be empty")
	}
	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}
	return nil
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == envDev
}

// Location returns the configured reporting timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
