package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Gateway    GatewayConfig
	Resend     ResendConfig
	Redis      RedisConfig
	Conference ConferenceConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" is accepted for
	// throwaway environments.
	Path string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTLHours int
}

type GatewayConfig struct {
	SecretKey   string
	BaseURL     string
	Environment string
	CallbackURL string
}

type ResendConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type RedisConfig struct {
	Addr     string
	Password string
}

type ConferenceConfig struct {
	// Tag identifies the conference edition inside QR payloads.
	Tag string
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "pycon_tickets.db"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
			TokenTTLHours: getEnvAsInt("JWT_TTL_HOURS", 24),
		},
		Gateway: GatewayConfig{
			SecretKey:   getEnv("GATEWAY_SECRET_KEY", ""),
			BaseURL:     getEnv("GATEWAY_BASE_URL", "https://api.paystack.co"),
			Environment: getEnv("GATEWAY_ENVIRONMENT", "test"),
			CallbackURL: getEnv("GATEWAY_CALLBACK_URL", "http://localhost:8080/payment/callback"),
		},
		Resend: ResendConfig{
			APIKey:    getEnv("RESEND_API_KEY", ""),
			FromEmail: getEnv("RESEND_FROM_EMAIL", "tickets@pycon.gm"),
			FromName:  getEnv("RESEND_FROM_NAME", "PyCon Gambia"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Conference: ConferenceConfig{
			Tag: getEnv("CONFERENCE_TAG", "pycongm-2026"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
