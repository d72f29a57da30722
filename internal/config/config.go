package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	CORS       CORSConfig
	FX         FXConfig
	Valuation  ValuationConfig
	Assessment AssessmentConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// FXConfig configures the exchange-rate provider. Base is the foreign
// currency and Symbol the home currency, so a rate reads as Symbol per Base.
type FXConfig struct {
	URL             string
	Token           string
	Base            string
	Symbol          string
	Timeout         time.Duration
	RefreshInterval time.Duration
	VolatilityDays  int
}

// ValuationConfig holds the default projection used for parcels that have
// not been sold.
type ValuationConfig struct {
	GrowthPct    float64
	HorizonYears int
}

// AssessmentConfig holds the rules of the purchase assessment. MarketPrices
// maps a region name to its market price per square metre in the home currency.
type AssessmentConfig struct {
	HighInvestment     float64
	ExpectedValuePerM2 float64
	MarketPrices       map[string]float64
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "landledger")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:8501")
	v.SetDefault("FX_API_URL", "https://api.fxratesapi.com")
	v.SetDefault("FX_API_TOKEN", "")
	v.SetDefault("FX_BASE", "EUR")
	v.SetDefault("FX_SYMBOL", "GMD")
	v.SetDefault("FX_TIMEOUT", "10s")
	v.SetDefault("FX_REFRESH_INTERVAL", "1h")
	v.SetDefault("FX_VOLATILITY_DAYS", 30)
	v.SetDefault("VALUATION_GROWTH_PCT", 5.0)
	v.SetDefault("VALUATION_HORIZON_YEARS", 5)
	v.SetDefault("ASSESSMENT_HIGH_INVESTMENT", 800000.0)
	v.SetDefault("ASSESSMENT_VALUE_PER_M2", 400.0)
	v.SetDefault("ASSESSMENT_MARKET_PRICES", "Banjul=3000,Serekunda=2250,Brikama=1850,Kanifing=2100,Bakau=2300")

	v.AutomaticEnv()

	prices, err := parseMarketPrices(v.GetString("ASSESSMENT_MARKET_PRICES"))
	if err != nil {
		return nil, fmt.Errorf("ASSESSMENT_MARKET_PRICES: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     v.GetString("PORT"),
			Env:      v.GetString("ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		FX: FXConfig{
			URL:             strings.TrimRight(v.GetString("FX_API_URL"), "/"),
			Token:           v.GetString("FX_API_TOKEN"),
			Base:            strings.ToUpper(v.GetString("FX_BASE")),
			Symbol:          strings.ToUpper(v.GetString("FX_SYMBOL")),
			Timeout:         v.GetDuration("FX_TIMEOUT"),
			RefreshInterval: v.GetDuration("FX_REFRESH_INTERVAL"),
			VolatilityDays:  v.GetInt("FX_VOLATILITY_DAYS"),
		},
		Valuation: ValuationConfig{
			GrowthPct:    v.GetFloat64("VALUATION_GROWTH_PCT"),
			HorizonYears: v.GetInt("VALUATION_HORIZON_YEARS"),
		},
		Assessment: AssessmentConfig{
			HighInvestment:     v.GetFloat64("ASSESSMENT_HIGH_INVESTMENT"),
			ExpectedValuePerM2: v.GetFloat64("ASSESSMENT_VALUE_PER_M2"),
			MarketPrices:       prices,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	if c.FX.URL == "" {
		return fmt.Errorf("FX_API_URL is required")
	}
	if c.FX.Base == "" || c.FX.Symbol == "" {
		return fmt.Errorf("FX_BASE and FX_SYMBOL are required")
	}
	if c.FX.Timeout <= 0 {
		return fmt.Errorf("FX_TIMEOUT must be positive")
	}
	if c.FX.RefreshInterval <= 0 {
		return fmt.Errorf("FX_REFRESH_INTERVAL must be positive")
	}
	if c.FX.VolatilityDays < 2 {
		return fmt.Errorf("FX_VOLATILITY_DAYS must be at least 2")
	}

	if c.Valuation.GrowthPct < 0 {
		return fmt.Errorf("VALUATION_GROWTH_PCT must be non-negative")
	}
	if c.Valuation.HorizonYears < 1 || c.Valuation.HorizonYears > 50 {
		return fmt.Errorf("VALUATION_HORIZON_YEARS must be between 1 and 50")
	}

	if c.Assessment.HighInvestment <= 0 {
		return fmt.Errorf("ASSESSMENT_HIGH_INVESTMENT must be positive")
	}
	if c.Assessment.ExpectedValuePerM2 < 0 {
		return fmt.Errorf("ASSESSMENT_VALUE_PER_M2 must be non-negative")
	}
	for region, price := range c.Assessment.MarketPrices {
		if price <= 0 {
			return fmt.Errorf("ASSESSMENT_MARKET_PRICES: price for %s must be positive", region)
		}
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseMarketPrices reads a comma-separated list of region=price pairs.
func parseMarketPrices(raw string) (map[string]float64, error) {
	prices := make(map[string]float64)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, found := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("expected region=price, got %q", part)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price for %s: %w", name, err)
		}
		prices[name] = price
	}
	return prices, nil
}
