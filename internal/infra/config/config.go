package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseDSN string

	JWTSecret string
	TokenTTL  time.Duration

	KafkaBrokers    []string
	AuditEventTopic string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
	MailBCC  string

	// PricingClampSubtotal floors the subtotal at zero when a discount
	// exceeds the pre-discount amount. Off by default to match the legacy
	// arithmetic.
	PricingClampSubtotal bool

	// BookingTransitionMode is "permissive" (default) or "strict".
	BookingTransitionMode string

	CORSOrigins []string
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:                   getEnv("APP_ENV", "dev"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseDSN:           os.Getenv("DATABASE_DSN"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		AuditEventTopic:       getEnv("AUDIT_EVENT_TOPIC", "audit.events.v1"),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPUser:              getEnv("SMTP_USER", ""),
		SMTPPass:              getEnv("SMTP_PASS", ""),
		MailFrom:              getEnv("MAIL_FROM", ""),
		MailBCC:               getEnv("MAIL_BCC", ""),
		BookingTransitionMode: strings.ToLower(getEnv("BOOKING_TRANSITION_MODE", "permissive")),
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	if origins := getEnv("CORS_ORIGINS", "*"); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	}

	ttl, err := parseDurationEnv("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.TokenTTL = ttl

	smtpPort, err := parseIntEnv("SMTP_PORT", 587)
	if err != nil {
		return Config{}, err
	}
	cfg.SMTPPort = smtpPort

	clamp, err := parseBoolEnv("PRICING_CLAMP_SUBTOTAL", false)
	if err != nil {
		return Config{}, err
	}
	cfg.PricingClampSubtotal = clamp

	if cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("DATABASE_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.BookingTransitionMode {
	case "permissive", "strict":
	default:
		return Config{}, fmt.Errorf("invalid BOOKING_TRANSITION_MODE: %q", cfg.BookingTransitionMode)
	}
	return cfg, nil
}

// MailConfigured reports whether the SMTP settings are complete enough to send.
func (c Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
