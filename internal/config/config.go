package config

import (
	"time"

	"gamevault/backend/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTTTLHours int    `mapstructure:"JWT_TTL_HOURS"`

	// An empty RedisAddr keeps carts and favorites in process memory.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int    `mapstructure:"REDIS_DB"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`

	StripeSecretKey  string `mapstructure:"STRIPE_SECRET_KEY"`
	CheckoutCurrency string `mapstructure:"CHECKOUT_CURRENCY"`
	PublicBaseURL    string `mapstructure:"PUBLIC_BASE_URL"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`
	LogLevel    string   `mapstructure:"LOG_LEVEL"`
	LogFormat   string   `mapstructure:"LOG_FORMAT"`
	GinMode     string   `mapstructure:"GIN_MODE"`
}

// JWTTTL is the lifetime of issued access tokens.
func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// SessionTTL is how long an idle browser session keeps its cart and favorites.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Validate rejects settings the server must not start with. An empty
// JWT_SECRET is only tolerated in gin debug mode.
func (c *Config) Validate() error {
	if c.JWTSecret == "" && c.GinMode != gin.DebugMode {
		return errors.New("JWT_SECRET must be set unless GIN_MODE is debug")
	}
	return nil
}

var AppConfig *Config

// Every key needs a default, otherwise viper.Unmarshal ignores values that
// only come from the environment.
func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=gamevault port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL_HOURS", 24*7)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL_HOURS", 24*14)
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("CHECKOUT_CURRENCY", "uah")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("CORS_ORIGINS", []string{"http://localhost:3000"})
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("GIN_MODE", "release")
}

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() *Config {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")
	setDefaults(v)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logging.Log.Warn(".env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logging.Log.Fatalf("Unable to decode into struct, %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logging.Log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		logging.Log.Warn("JWT_SECRET is empty, tokens are signed with an empty key")
	}

	AppConfig = &cfg
	return AppConfig
}
