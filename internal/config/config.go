package config

import (
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Pricing   PricingConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
}

// PricingConfig is the named rate table: per-tier discount fractions, the
// global tax rate, and the loyalty policy. Rates are read as strings and
// parsed as decimals so no binary floating point enters the money path.
type PricingConfig struct {
	RegularDiscount decimal.Decimal
	StudentDiscount decimal.Decimal
	VIPDiscount     decimal.Decimal
	TaxRate         decimal.Decimal
	PointsThreshold int
	CommitTimeout   time.Duration
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_RPM", 120)
	viper.SetDefault("PRICING_REGULAR_DISCOUNT", "0.05")
	viper.SetDefault("PRICING_STUDENT_DISCOUNT", "0.10")
	viper.SetDefault("PRICING_VIP_DISCOUNT", "0.15")
	viper.SetDefault("PRICING_TAX_RATE", "0.10")
	viper.SetDefault("PRICING_POINTS_THRESHOLD", 1000)
	viper.SetDefault("PRICING_COMMIT_TIMEOUT_SECONDS", 5)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           viper.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerMinute: viper.GetInt("RATE_LIMIT_RPM"),
		},
		Pricing: PricingConfig{
			RegularDiscount: rate("PRICING_REGULAR_DISCOUNT"),
			StudentDiscount: rate("PRICING_STUDENT_DISCOUNT"),
			VIPDiscount:     rate("PRICING_VIP_DISCOUNT"),
			TaxRate:         rate("PRICING_TAX_RATE"),
			PointsThreshold: viper.GetInt("PRICING_POINTS_THRESHOLD"),
			CommitTimeout:   time.Duration(viper.GetInt("PRICING_COMMIT_TIMEOUT_SECONDS")) * time.Second,
		},
	}
}

func rate(key string) decimal.Decimal {
	d, err := decimal.NewFromString(viper.GetString(key))
	if err != nil {
		log.Printf("Warning: invalid rate for %s, using 0: %v", key, err)
		return decimal.Zero
	}
	return d
}
