// Package config provides configuration management for the devconnector service.
// Values are read from environment variables (optionally seeded from a `.env` file by main),
// with support for required variables, default values, and collective error reporting:
// every problem found while loading is reported at once instead of failing on the first one.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers understood by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// PoolConfig represents configuration for the PostgreSQL connection pool.
type PoolConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	MaxSize        int
	MigrationsPath string
}

// AuthConfig holds credential issuance settings.
type AuthConfig struct {
	JWTSecret     string        // Secret key for signing JWTs
	TokenDuration time.Duration // Lifetime of a session token
	BcryptCost    int           // Work factor used when hashing passwords
}

// AvatarConfig holds the gravatar options applied to every new account.
type AvatarConfig struct {
	Size    int
	Rating  string
	Default string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	StoreDriver string
	DB          *PoolConfig
	Auth        *AuthConfig
	Avatar      *AvatarConfig
	Server      *ServerConfig
	Log         *LogConfig
}

// Default values. The token lifetime and bcrypt cost match what clients of the
// registration endpoint have always received.
const (
	DefaultTokenDuration = 360000 * time.Second
	DefaultBcryptCost    = 10
	DefaultAvatarSize    = 200
	DefaultAvatarRating  = "pg"
	DefaultAvatarStyle   = "mm"
	DefaultPort          = "5000"
)

// getRequiredEnv returns a required environment variable.
// Appends an error to the errors slice if the variable is not set.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getOptionalEnvInt parses an optional integer variable.
// Uses defaultValue if not set or if parsing fails. Appends an error if parsing fails.
func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// getOptionalEnvDuration parses an optional duration variable such as "100h" or "360000s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	if valueDuration <= 0 {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: duration must be positive, got '%s'", key, valueStr))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the pool size between 5 and 100, recording an error when it had to clamp.
func clampPoolSize(size int, varName string, errors *[]string) int {
	if size < 5 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is less than minimum 5", varName, size))
		return 5
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100", varName, size))
		return 100
	}
	return size
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	storeDriver := strings.ToLower(getOptionalEnv("STORE_DRIVER", StoreDriverPostgres))
	if storeDriver != StoreDriverPostgres && storeDriver != StoreDriverMemory {
		errors = append(errors, fmt.Sprintf("invalid value for STORE_DRIVER: expected %q or %q, got '%s'", StoreDriverPostgres, StoreDriverMemory, storeDriver))
	}

	// Database credentials are only needed when the Postgres store is selected.
	var dbPool *PoolConfig
	if storeDriver == StoreDriverPostgres {
		dbPool = loadPoolConfig(&errors)
	}

	bcryptCost := getOptionalEnvInt("BCRYPT_COST", DefaultBcryptCost, &errors)
	if bcryptCost < 4 || bcryptCost > 31 {
		errors = append(errors, fmt.Sprintf("invalid value for BCRYPT_COST: %d is outside 4..31", bcryptCost))
	}
	authConfig := &AuthConfig{
		JWTSecret:     getRequiredEnv("JWT_SECRET", &errors),
		TokenDuration: getOptionalEnvDuration("JWT_EXPIRES_IN", DefaultTokenDuration, &errors),
		BcryptCost:    bcryptCost,
	}

	avatarConfig := &AvatarConfig{
		Size:    getOptionalEnvInt("AVATAR_SIZE", DefaultAvatarSize, &errors),
		Rating:  getOptionalEnv("AVATAR_RATING", DefaultAvatarRating),
		Default: getOptionalEnv("AVATAR_DEFAULT", DefaultAvatarStyle),
	}
	if avatarConfig.Size < 1 || avatarConfig.Size > 2048 {
		errors = append(errors, fmt.Sprintf("invalid value for AVATAR_SIZE: %d is outside 1..2048", avatarConfig.Size))
	}

	serverConfig := &ServerConfig{
		Port:               getOptionalEnv("PORT", DefaultPort),
		CORSAllowedOrigins: splitList(getOptionalEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	logConfig := &LogConfig{
		Level:  strings.ToLower(getOptionalEnv("LOG_LEVEL", "info")),
		Format: strings.ToLower(getOptionalEnv("LOG_FORMAT", "json")),
	}
	if logConfig.Format != "json" && logConfig.Format != "console" {
		errors = append(errors, fmt.Sprintf("invalid value for LOG_FORMAT: expected json or console, got '%s'", logConfig.Format))
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		StoreDriver: storeDriver,
		DB:          dbPool,
		Auth:        authConfig,
		Avatar:      avatarConfig,
		Server:      serverConfig,
		Log:         logConfig,
	}, nil
}

// LoadPoolConfig reads only the database settings. The migrate command uses it
// so that running migrations does not require a JWT secret.
func LoadPoolConfig() (*PoolConfig, error) {
	var errors []string
	cfg := loadPoolConfig(&errors)
	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}
	return cfg, nil
}

func loadPoolConfig(errors *[]string) *PoolConfig {
	return &PoolConfig{
		Host:           getOptionalEnv("DB_HOST", "localhost"),
		Port:           getOptionalEnvInt("DB_PORT", 5432, errors),
		User:           getRequiredEnv("DB_USER", errors),
		Password:       getRequiredEnv("DB_PASSWORD", errors),
		DBName:         getRequiredEnv("DB_NAME", errors),
		MaxSize:        clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, errors), "DB_POOL_SIZE", errors),
		MigrationsPath: getOptionalEnv("DB_MIGRATIONS_PATH", "./migrations"),
	}
}
