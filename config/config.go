package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBUrl       string
	FrontendURL string

	// External identity provider
	AuthProviderURL string // base URL, JWKS is fetched from it
	AuthJWTSecret   string // HS256 fallback secret
	AuthServiceKey  string // service token for the admin role API

	// SMTP configuration
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string

	// Redis configuration (rate limiting)
	RedisURL      string
	RedisPassword string

	// Rate limiting
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int

	// Review and lifecycle tunables. These are policy knobs, not
	// invariants: the selector and transition engine read them from
	// the injected config, never from package globals.
	ReviewPoolSize      int       // oldest-K window for assignment
	ReviewThreshold     int       // reviews per applicant before assignment stops
	InviteDeadlineDays  int       // days an invite stays open
	ApplicationDeadline time.Time // "applications closed" gate; zero means still open
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; ignored in production.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		AuthProviderURL: strings.TrimRight(getEnv("AUTH_PROVIDER_URL", ""), "/"),
		AuthJWTSecret:   getEnv("AUTH_JWT_SECRET", ""),
		AuthServiceKey:  getEnv("AUTH_SERVICE_KEY", ""),

		SMTPHost:      getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@hackathon.local"),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),

		ReviewPoolSize:      getEnvInt("REVIEW_POOL_SIZE", 7),
		ReviewThreshold:     getEnvInt("REVIEW_THRESHOLD", 2),
		InviteDeadlineDays:  getEnvInt("INVITE_DEADLINE_DAYS", 5),
		ApplicationDeadline: getEnvTime("APPLICATION_DEADLINE"),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}
	if cfg.ApplicationDeadline.IsZero() {
		log.Println("WARNING: APPLICATION_DEADLINE not set. Submission window stays open.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvTime parses an RFC3339 environment variable; zero time if unset/invalid.
func getEnvTime(key string) time.Time {
	if value, exists := os.LookupEnv(key); exists {
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t
		}
		log.Printf("WARNING: %s is not valid RFC3339, ignoring", key)
	}
	return time.Time{}
}
