package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Telegram
	BotToken string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Security
	JWTSecret      string
	SuperAdminTgID int64

	// Application
	AppEnv   string
	AppPort  string
	LogLevel string

	// Game
	JoinCodeLength      int
	LoginCodeTTLMinutes int
	ScoringSumAll       bool
	ScoringUsePoints    bool
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		BotToken:   getEnv("BOT_TOKEN", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "trivia"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "trivia_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET_KEY", ""),

		AppEnv:   getEnv("APP_ENV", "development"),
		AppPort:  getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		JoinCodeLength:      getEnvInt("JOIN_CODE_LENGTH", 6),
		LoginCodeTTLMinutes: getEnvInt("LOGIN_CODE_TTL_MINUTES", 10),
		ScoringSumAll:       getEnvBool("SCORING_SUM_ALL", true),
		ScoringUsePoints:    getEnvBool("SCORING_USE_POINTS", false),
	}

	superAdminStr := getEnv("SUPER_ADMIN_TELEGRAM_ID", "")
	if superAdminStr != "" {
		id, err := strconv.ParseInt(superAdminStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SUPER_ADMIN_TELEGRAM_ID: %w", err)
		}
		cfg.SuperAdminTgID = id
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters")
	}
	if c.JoinCodeLength < 4 || c.JoinCodeLength > 12 {
		return fmt.Errorf("JOIN_CODE_LENGTH must be between 4 and 12")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}

	if c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}
	if c.SuperAdminTgID == 0 {
		return fmt.Errorf("SUPER_ADMIN_TELEGRAM_ID must be set in production")
	}

	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) GetLoginCodeTTL() time.Duration {
	return time.Duration(c.LoginCodeTTLMinutes) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
