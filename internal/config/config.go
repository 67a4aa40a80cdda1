// README: Config loader with env defaults for HTTP, DB, Redis, auth, and collaborators.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	// RequireResolved controls whether a cryptographically valid token
	// whose account id no longer resolves is rejected (strict) or
	// passed through with a nil account (lenient captain path).
	RequireResolved bool
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Auth  AuthConfig
	Phone struct {
		CountryCode string
	}
	Maps struct {
		APIKey string
	}
	Kafka struct {
		Brokers string
		Topic   string
	}
	Admin struct {
		Email string
	}
	Log struct {
		Level string
	}
}

func Load() (Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("SWIFTCAB_HTTP_ADDR", ":8080")
	cfg.DB.DSN = envOrDefault("SWIFTCAB_DB_DSN", "")
	cfg.Redis.Addr = envOrDefault("SWIFTCAB_REDIS_ADDR", "")
	cfg.Auth.JWTSecret = envOrDefault("SWIFTCAB_JWT_SECRET", "dev-only-secret")
	cfg.Auth.TokenTTL = time.Duration(envOrDefaultInt("SWIFTCAB_TOKEN_TTL_HOURS", 24)) * time.Hour
	cfg.Auth.RequireResolved = envOrDefaultBool("AUTH_REQUIRE_RESOLVED", true)
	cfg.Phone.CountryCode = envOrDefault("SWIFTCAB_PHONE_PREFIX", "+91")
	cfg.Maps.APIKey = envOrDefault("GOOGLE_MAPS_API_KEY", "")
	cfg.Kafka.Brokers = envOrDefault("SWIFTCAB_KAFKA_BROKERS", "")
	cfg.Kafka.Topic = envOrDefault("SWIFTCAB_KAFKA_TOPIC", "notifications")
	cfg.Admin.Email = envOrDefault("SWIFTCAB_ADMIN_EMAIL", "admin@swiftcab.local")
	cfg.Log.Level = envOrDefault("SWIFTCAB_LOG_LEVEL", "info")
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
