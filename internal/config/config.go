package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	Farm      FarmConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// AuthConfig contains credentials for the Firebase Identity Toolkit REST API.
type AuthConfig struct {
	APIKey  string
	BaseURL string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig holds settings for the profile cache. An empty Addr disables
// the cache entirely.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// SheetsConfig contains configuration for the weekly report export. An empty
// CredentialsPath disables the export.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
	WindowDays   int
}

// FarmConfig describes the deployed farm layout.
type FarmConfig struct {
	DefaultFarmID string
	Sectors       int
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Auth: AuthConfig{
			APIKey:  os.Getenv("FIREBASE_API_KEY"),
			BaseURL: getenvWithDefault("FIREBASE_AUTH_BASE_URL", "https://identitytoolkit.googleapis.com/v1"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "eggtrack"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvIntWithDefault("REDIS_DB", 0),
			TTL:      getenvDurationWithDefault("REDIS_PROFILE_TTL", 15*time.Minute),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_REPORT_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * 0"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Santiago"),
			WindowDays:   getenvIntWithDefault("REPORT_WINDOW_DAYS", 7),
		},
		Farm: FarmConfig{
			DefaultFarmID: getenvWithDefault("DEFAULT_FARM_ID", "ELMOLLE"),
			Sectors:       getenvIntWithDefault("FARM_SECTORS", 7),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Auth.APIKey == "" {
		return errors.New("FIREBASE_API_KEY must be provided")
	}
	if c.Auth.BaseURL == "" {
		return errors.New("FIREBASE_AUTH_BASE_URL must not be empty")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID == "" {
		return errors.New("GOOGLE_SHEET_REPORT_ID must be provided when sheets credentials are set")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}
	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if c.Reporting.WindowDays < 1 {
		return errors.New("REPORT_WINDOW_DAYS must be at least 1")
	}

	if c.Farm.DefaultFarmID == "" {
		return errors.New("DEFAULT_FARM_ID must be provided")
	}
	if c.Farm.Sectors < 1 {
		return errors.New("FARM_SECTORS must be at least 1")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntWithDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDurationWithDefault(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
