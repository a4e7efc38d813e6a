package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the pipeline.
// All environment variables are read here and nowhere else.
type Config struct {
	Env string // development, staging, production

	// Database
	Database DatabaseConfig

	// Tables
	Tables TableConfig

	// Ingestion
	Ingest IngestConfig

	// Output
	Output OutputConfig

	// Reconciliation
	Reconciliation ReconciliationConfig

	// Scheduling (cron spec for recurring pipeline runs)
	Schedule string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// TableConfig holds the names of the tables the pipeline reads and writes
type TableConfig struct {
	FundPositions string
	EquityPrices  string
	BondPrices    string
}

// IngestConfig holds input locations for the ingestion stage
type IngestConfig struct {
	// Directory of external fund report CSV files
	FundReportDir string

	// SQL script that loads the master reference price tables
	MasterSQLFile string
}

// OutputConfig holds output locations for the export stage
type OutputConfig struct {
	Dir                string
	ReconciliationFile string
	BestPerformersFile string
}

// ReconciliationConfig holds thresholds for the reconciliation engine
type ReconciliationConfig struct {
	// Absolute price differences at or below this value count as matches
	Tolerance decimal.Decimal
}

// Load reads configuration from environment variables.
// This function is the only caller of os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "investment_analysis"),
			User:            getEnv("DB_USER", "investment_analysis"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Tables: TableConfig{
			FundPositions: getEnv("TABLE_FUND_POSITIONS", "fund_positions"),
			EquityPrices:  getEnv("TABLE_EQUITY_PRICES", "equity_prices"),
			BondPrices:    getEnv("TABLE_BOND_PRICES", "bond_prices"),
		},

		Ingest: IngestConfig{
			FundReportDir: getEnv("FUND_REPORT_DIR", "external-funds"),
			MasterSQLFile: getEnv("MASTER_SQL_FILE", "sql/master-reference.sql"),
		},

		Output: OutputConfig{
			Dir:                getEnv("OUTPUT_DIR", "output"),
			ReconciliationFile: getEnv("RECON_OUTPUT_FILE", "price_reconciliation.csv"),
			BestPerformersFile: getEnv("BEST_PERFORMERS_OUTPUT_FILE", "best_performing_funds.csv"),
		},

		Reconciliation: ReconciliationConfig{
			Tolerance: getEnvAsDecimal("RECON_TOLERANCE", "0.0001"),
		},

		// Default: 06:00 on the first day of every month
		Schedule: getEnv("PIPELINE_SCHEDULE", "0 0 6 1 * *"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Tables.FundPositions == "" || c.Tables.EquityPrices == "" || c.Tables.BondPrices == "" {
		return fmt.Errorf("table names must not be empty")
	}

	if c.Reconciliation.Tolerance.IsNegative() {
		return fmt.Errorf("RECON_TOLERANCE must not be negative")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsDecimal(key string, defaultValue string) decimal.Decimal {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		value, _ = decimal.NewFromString(defaultValue)
	}

	return value
}
