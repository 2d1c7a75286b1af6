package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port    string
	AppName string

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTKey      string
	JWTTTLHours int
	SaltRound   int

	CookieName   string
	CookieSecure bool
	CorsOrigins  string

	UploadDir   string
	MaxUploadMB int

	SendgridApiKey string
	EmailSender    string

	ProspectWebhookURL string
	EnableScheduler    bool
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:    getEnv("PORT", "3000"),
		AppName: getEnv("APP_NAME", "LMS"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "lms"),
		DBPort:     getEnv("DB_PORT", "5432"),

		JWTKey:      getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 24),
		SaltRound:   getEnvInt("SALT_ROUND", 10),

		CookieName:   getEnv("COOKIE_NAME", "token"),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),
		CorsOrigins:  getEnv("CORS_ORIGINS", "http://localhost:5173"),

		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 20),

		SendgridApiKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "noreply@localhost"),

		ProspectWebhookURL: getEnv("PROSPECT_WEBHOOK_URL", ""),
		EnableScheduler:    getEnvBool("ENABLE_SCHEDULER", false),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendgridApiKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Emails will be written to the log.")
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	origins := strings.TrimSpace(c.CorsOrigins)
	if origins == "" {
		return errors.New("CORS_ORIGINS is empty: list the allowed origins, comma separated")
	}
	for _, origin := range strings.Split(origins, ",") {
		if strings.TrimSpace(origin) == "*" {
			return fmt.Errorf("CORS_ORIGINS %q: a wildcard origin cannot be combined with cookie credentials, list the allowed origins", c.CorsOrigins)
		}
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}
