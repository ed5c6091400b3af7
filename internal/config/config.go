// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"captcha-rewards/pkg/db" // Import db package for its Config struct

	"github.com/shopspring/decimal"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config

	// Auth tokens issued at login.
	JWTSecret    string
	AuthTokenTTL time.Duration

	// Challenge proof tokens (signed, stateless, short-lived).
	ProofSecret string
	ProofTTL    time.Duration

	// Minimum amount a user may request to withdraw.
	MinWithdrawal decimal.Decimal

	// Payment gateway.
	MidtransServerKey  string
	MidtransProduction bool

	// Per-IP rate limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// LoadConfig loads configuration from environment variables.
// It returns an AppConfig instance or an error if any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	serverPort := envOr("SERVER_PORT", "8080")

	dbPort, err := strconv.Atoi(envOr("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	authTTL, err := time.ParseDuration(envOr("AUTH_TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_TOKEN_TTL: %w", err)
	}
	proofTTL, err := time.ParseDuration(envOr("PROOF_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROOF_TTL: %w", err)
	}

	minWithdrawal, err := decimal.NewFromString(envOr("MIN_WITHDRAWAL", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid MIN_WITHDRAWAL: %w", err)
	}

	ratePerSecond, err := strconv.ParseFloat(envOr("RATE_LIMIT_PER_SECOND", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_SECOND: %w", err)
	}
	rateBurst, err := strconv.Atoi(envOr("RATE_LIMIT_BURST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	return &AppConfig{
		ServerPort: serverPort,
		DB: db.Config{
			Host:     envOr("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     envOr("DB_USER", "user"),
			Password: envOr("DB_PASSWORD", "password"),
			DBName:   envOr("DB_NAME", "rewardsdb"),
			SSLMode:  envOr("DB_SSLMODE", "disable"),
		},
		JWTSecret:          envOr("JWT_SECRET", "dev-only-auth-secret"),
		AuthTokenTTL:       authTTL,
		ProofSecret:        envOr("PROOF_SECRET", "dev-only-proof-secret"),
		ProofTTL:           proofTTL,
		MinWithdrawal:      minWithdrawal,
		MidtransServerKey:  os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransProduction: envOr("MIDTRANS_ENV", "sandbox") == "production",
		RateLimitPerSecond: ratePerSecond,
		RateLimitBurst:     rateBurst,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
