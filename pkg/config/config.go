package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Output encodings for the CSV files.
const (
	EncodingCP932 = "cp932"
	EncodingUTF8  = "utf-8"
)

// Config holds all application configuration
type Config struct {
	Extract       ExtractConfig
	Schedule      ScheduleConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Database      DatabaseConfig
}

type ExtractConfig struct {
	InputDir  string
	OutputDir string
	// TextDir holds saved raw text; empty saves it next to each PDF.
	TextDir  string
	Encoding string
	SaveText bool
	XLSX     bool
	// Tables reads camelot table exports next to each PDF instead of text.
	Tables bool
}

type ScheduleConfig struct {
	Spec string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Load reads configuration from environment variables, after loading a .env
// file from the working directory when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Extract: ExtractConfig{
			InputDir:  getEnv("SBI_INPUT_DIR", "./input"),
			OutputDir: getEnv("SBI_OUTPUT_DIR", "./output"),
			TextDir:   getEnv("SBI_TEXT_DIR", ""),
			Encoding:  strings.ToLower(getEnv("SBI_OUTPUT_ENCODING", EncodingCP932)),
			SaveText:  getEnvAsBool("SBI_SAVE_TEXT", false),
			XLSX:      getEnvAsBool("SBI_XLSX", false),
			Tables:    getEnvAsBool("SBI_TABLES", false),
		},
		Schedule: ScheduleConfig{
			Spec: getEnv("SBI_SCHEDULE", "0 3 * * *"),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("POSTGRES_ENABLED", false),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "sbi_dividends"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Extract.Encoding {
	case EncodingCP932, EncodingUTF8:
	default:
		return fmt.Errorf("SBI_OUTPUT_ENCODING must be %s or %s, got %q", EncodingCP932, EncodingUTF8, c.Extract.Encoding)
	}

	if c.Extract.InputDir == "" {
		return errors.New("SBI_INPUT_DIR is required")
	}
	if c.Extract.OutputDir == "" {
		return errors.New("SBI_OUTPUT_DIR is required")
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level.
func (c *LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
