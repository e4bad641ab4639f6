package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	GinMode      string
	DBDriver     string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string
	DBLogLevel   string
	SQLitePath   string
	JWTSecret    string
	JWTTTL       time.Duration
	NATSURL      string
	OpenAIAPIKey string
	CORSOrigins  []string
	LogLevel     string
	LogFormat    string
	LogOutput    string
	LogFile      string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		GinMode:      getEnv("GIN_MODE", "debug"),
		DBDriver:     getEnv("DB_DRIVER", "postgres"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "projecttime"),
		DBPassword:   getEnv("DB_PASSWORD", "projecttime"),
		DBName:       getEnv("DB_NAME", "projecttime"),
		DBSSLMode:    getEnv("DB_SSLMODE", "disable"),
		DBLogLevel:   getEnv("DB_LOG_LEVEL", "warn"),
		SQLitePath:   getEnv("SQLITE_PATH", "projecttime.db"),
		JWTSecret:    getEnv("JWT_SECRET", "default-secret-key-change-me"),
		JWTTTL:       getDuration("JWT_TTL", 7*24*time.Hour),
		NATSURL:      getEnv("NATS_URL", ""),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		CORSOrigins:  getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		LogOutput:    getEnv("LOG_OUTPUT", "stdout"),
		LogFile:      getEnv("LOG_FILE", "logs/app.log"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
