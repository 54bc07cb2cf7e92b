package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads from the environment
type Config struct {
	Env  string
	Port string

	// Database: DatabaseURL wins over the individual DB_* variables
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	AutoMigrate bool

	// PublicBaseURL is used to build share links, e.g. https://echo.cards
	PublicBaseURL string
	AdminToken    string

	ResendAPIKey string
	EmailFrom    string

	FacebookPageToken string
	GraphAPIURL       string

	DriveCredentialsPath string
	DriveFolderID        string
	UploadDir            string

	ChromePath        string
	SchedulerSpec     string
	PricingConfigPath string
	LogLevel          string
}

// LoadEnvFile loads .env in non-production environments.
// Overload is used so .env values override the shell environment.
func LoadEnvFile(path string) {
	if os.Getenv("ENV") == "production" {
		return
	}
	if err := godotenv.Overload(path); err != nil {
		log.Printf("⚠️  .env file not found at %s, using system environment variables", path)
		return
	}
	log.Printf("✓ Loaded environment variables from %s", path)
}

// Load builds a Config from the process environment
func Load() (*Config, error) {
	cfg := &Config{
		Env:                  getEnv("ENV", "development"),
		Port:                 strings.TrimPrefix(getEnv("PORT", "8080"), ":"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DBHost:               os.Getenv("DB_HOST"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBUser:               os.Getenv("DB_USER"),
		DBPassword:           os.Getenv("DB_PASSWORD"),
		DBName:               os.Getenv("DB_NAME"),
		DBSSLMode:            getEnv("DB_SSLMODE", "disable"),
		AutoMigrate:          getBool("AUTO_MIGRATE", true),
		PublicBaseURL:        strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		AdminToken:           os.Getenv("ADMIN_TOKEN"),
		ResendAPIKey:         os.Getenv("RESEND_API_KEY"),
		EmailFrom:            getEnv("EMAIL_FROM", "Echo Vintage <cards@echovintage.app>"),
		FacebookPageToken:    os.Getenv("FACEBOOK_PAGE_ACCESS_TOKEN"),
		GraphAPIURL:          strings.TrimRight(getEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com/v19.0"), "/"),
		DriveCredentialsPath: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		DriveFolderID:        os.Getenv("DRIVE_UPLOAD_FOLDER_ID"),
		UploadDir:            getEnv("UPLOAD_DIR", "uploads"),
		ChromePath:           os.Getenv("CHROME_PATH"),
		SchedulerSpec:        getEnv("SCHEDULER_SPEC", "@every 1m"),
		PricingConfigPath:    os.Getenv("PRICING_CONFIG_PATH"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL == "" && (cfg.DBHost == "" || cfg.DBUser == "" || cfg.DBName == "") {
		return nil, fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}
	if cfg.Env == "production" && cfg.AdminToken == "" {
		return nil, fmt.Errorf("ADMIN_TOKEN is required in production")
	}

	return cfg, nil
}

// ConnString returns the connection string for the pgx driver
func (c *Config) ConnString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// IsProduction reports whether the server runs with ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("⚠️  Invalid boolean for %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return b
}
