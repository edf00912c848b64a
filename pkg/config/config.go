package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	OTEL     OTELConfig
	Engine   EngineConfig
}

// AppConfig holds process-wide settings
type AppConfig struct {
	ServiceName string
	Env         string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	// InternalHost and InternalPort bind the listener for trusted services
	InternalHost string
	InternalPort int
	// AllowedOrigins feeds CORS; "*" allows any origin
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// EngineConfig holds the thresholds and windows of the reputation and activity engine
type EngineConfig struct {
	// AutoApplyThreshold is the weight at or above which a non-owner edit applies immediately.
	AutoApplyThreshold float64
	// ClusterRadius is how far an intent may sit from a block's current center and still join it.
	ClusterRadius time.Duration
	// DuplicateIntentWindow is the straddle within which one user may not hold two intents for a place.
	DuplicateIntentWindow time.Duration
	// IntentGrace is added to an intent's time to derive its expiry.
	IntentGrace time.Duration
	// IntentHorizon bounds how far ahead an intent may be placed.
	IntentHorizon time.Duration
	// TimelineRefresh is the pull cadence of the live timeline stream.
	TimelineRefresh time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "courtside-engine"),
			Env:         getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			InternalHost:   getEnv("SERVER_INTERNAL_HOST", "127.0.0.1"),
			InternalPort:   getEnvAsInt("SERVER_INTERNAL_PORT", 8081),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "courtside"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "courtside-engine"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Engine: DefaultEngineConfig(),
	}

	cfg.Engine.AutoApplyThreshold = getEnvAsFloat("ENGINE_AUTO_APPLY_THRESHOLD", cfg.Engine.AutoApplyThreshold)
	cfg.Engine.ClusterRadius = getEnvAsDuration("ENGINE_CLUSTER_RADIUS", cfg.Engine.ClusterRadius)
	cfg.Engine.DuplicateIntentWindow = getEnvAsDuration("ENGINE_DUPLICATE_INTENT_WINDOW", cfg.Engine.DuplicateIntentWindow)
	cfg.Engine.IntentGrace = getEnvAsDuration("ENGINE_INTENT_GRACE", cfg.Engine.IntentGrace)
	cfg.Engine.IntentHorizon = getEnvAsDuration("ENGINE_INTENT_HORIZON", cfg.Engine.IntentHorizon)
	cfg.Engine.TimelineRefresh = getEnvAsDuration("ENGINE_TIMELINE_REFRESH", cfg.Engine.TimelineRefresh)

	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultEngineConfig returns the design defaults of the engine
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		AutoApplyThreshold:    2.0,
		ClusterRadius:         15 * time.Minute,
		DuplicateIntentWindow: 30 * time.Minute,
		IntentGrace:           time.Hour,
		IntentHorizon:         14 * 24 * time.Hour,
		TimelineRefresh:       30 * time.Second,
	}
}

// Validate rejects engine settings the algorithms cannot run with
func (c EngineConfig) Validate() error {
	if c.AutoApplyThreshold < 1.0 {
		return fmt.Errorf("auto apply threshold must be >= 1.0, got %v", c.AutoApplyThreshold)
	}
	if c.ClusterRadius <= 0 {
		return fmt.Errorf("cluster radius must be positive, got %v", c.ClusterRadius)
	}
	if c.DuplicateIntentWindow <= 0 {
		return fmt.Errorf("duplicate intent window must be positive, got %v", c.DuplicateIntentWindow)
	}
	if c.IntentGrace <= 0 {
		return fmt.Errorf("intent grace must be positive, got %v", c.IntentGrace)
	}
	if c.IntentHorizon <= 0 {
		return fmt.Errorf("intent horizon must be positive, got %v", c.IntentHorizon)
	}
	if c.TimelineRefresh <= 0 {
		return fmt.Errorf("timeline refresh must be positive, got %v", c.TimelineRefresh)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
