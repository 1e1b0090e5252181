package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment      string
	DBHost           string
	DBPort           string
	DBUsername       string
	DBPassword       string
	DBName           string
	DBSSLMode        string
	Port             string
	SMTPAddr         string
	SMTPDomain       string
	MaxWSConnections int
	Timezone         string
}

func NewConfig() (*Config, error) {
	env := os.Getenv("INBOXSTREAM_ENV")
	if env == "" {
		env = "development"
	}

	if env == "development" {
		if err := godotenv.Load(); err != nil {
			fmt.Println("Warning: .env file not found, using environment variables")
		}
	}

	config := &Config{
		Environment:      env,
		DBHost:           getEnvOrDefault("INBOXSTREAM_DB_HOST", "localhost"),
		DBPort:           getEnvOrDefault("INBOXSTREAM_DB_PORT", "5432"),
		DBUsername:       getEnvOrDefault("INBOXSTREAM_DB_USER", "inbox_user"),
		DBPassword:       os.Getenv("INBOXSTREAM_DB_PASSWORD"),
		DBName:           getEnvOrDefault("INBOXSTREAM_DB_NAME", "inboxstream"),
		DBSSLMode:        getEnvOrDefault("INBOXSTREAM_DB_SSLMODE", "disable"),
		Port:             getEnvOrDefault("PORT", "8080"),
		SMTPAddr:         os.Getenv("INBOXSTREAM_SMTP_ADDR"),
		SMTPDomain:       getEnvOrDefault("INBOXSTREAM_SMTP_DOMAIN", "localhost"),
		MaxWSConnections: getEnvIntOrDefault("INBOXSTREAM_MAX_WS_CONNECTIONS", 256),
		Timezone:         getEnvOrDefault("TZ", "UTC"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.DBPassword == "" {
		return fmt.Errorf("INBOXSTREAM_DB_PASSWORD is required")
	}

	if c.MaxWSConnections <= 0 {
		return fmt.Errorf("INBOXSTREAM_MAX_WS_CONNECTIONS must be positive")
	}

	return nil
}

func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUsername,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// SMTPEnabled reports whether the SMTP ingestion gateway should be started.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPAddr != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
