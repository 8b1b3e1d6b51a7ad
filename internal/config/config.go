package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// PayrollConfig tunes the calculation engine.
type PayrollConfig struct {
	// Workers bounds concurrent per-employee calculations in a run.
	Workers int
	// StrictTimesheets aborts a run on any missing or unapproved
	// timesheet instead of excluding the employee.
	StrictTimesheets bool
	// StandardMonthlyHours is the divisor turning a monthly basic
	// salary into an hourly rate.
	StandardMonthlyHours decimal.Decimal
	// StatutoryRatesFile optionally points at a JSON file overriding
	// the shipped statutory rates.
	StatutoryRatesFile string
}

func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "lagoon-payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	workers, err := strconv.Atoi(getEnv("PAYROLL_WORKERS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_WORKERS: %w", err)
	}
	strict, err := strconv.ParseBool(getEnv("PAYROLL_STRICT_TIMESHEETS", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_STRICT_TIMESHEETS: %w", err)
	}
	monthlyHours, err := decimal.NewFromString(getEnv("STANDARD_MONTHLY_HOURS", "173.33"))
	if err != nil {
		return nil, fmt.Errorf("invalid STANDARD_MONTHLY_HOURS: %w", err)
	}

	config.Payroll = PayrollConfig{
		Workers:              workers,
		StrictTimesheets:     strict,
		StandardMonthlyHours: monthlyHours,
		StatutoryRatesFile:   getEnv("STATUTORY_RATES_FILE", ""),
	}

	return config, nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
