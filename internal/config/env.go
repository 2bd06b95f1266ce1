package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Env struct {
	AppAddr string
	GinMode string

	LogLevel  string
	LogFormat string

	DB DBConfig

	ItinerariesPath string

	Currency           string
	PaymentLinkBaseURL string
	PaymentSuccessRate float64
	PaymentSigningKey  string
	WebhookSigningKey  string

	OperatorJWTSecret string

	RabbitMQURL        string
	EventsExchange     string
	PromotionsExchange string
	ServiceID          string

	CORSAllowedOrigins []string
}

// DBConfig selects the storage backend. Driver "memory" needs nothing else.
type DBConfig struct {
	Driver string
	DSN    string
	Host   string
	Port   string
	User   string
	Pass   string
	Name   string
}

func LoadEnv() Env {
	return Env{
		AppAddr: getenv("APP_ADDR", ":8080"),
		GinMode: strings.TrimSpace(os.Getenv("GIN_MODE")),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "memory")),
			DSN:    strings.TrimSpace(os.Getenv("DB_DSN")),
			Host:   getenv("DB_HOST", "127.0.0.1"),
			Port:   strings.TrimSpace(os.Getenv("DB_PORT")),
			User:   getenv("DB_USER", "root"),
			Pass:   os.Getenv("DB_PASS"),
			Name:   getenv("DB_NAME", "cruise_booking"),
		},

		ItinerariesPath: strings.TrimSpace(os.Getenv("ITINERARIES_JSON_PATH")),

		Currency:           strings.ToUpper(getenv("CURRENCY", "BRL")),
		PaymentLinkBaseURL: strings.TrimRight(getenv("PAYMENT_LINK_BASE_URL", "http://localhost:8080"), "/"),
		PaymentSuccessRate: getenvFloat("PAYMENT_SUCCESS_RATE", 0.8),
		PaymentSigningKey:  strings.TrimSpace(os.Getenv("PAYMENT_SIGNING_KEY")),
		WebhookSigningKey:  strings.TrimSpace(os.Getenv("WEBHOOK_SIGNING_KEY")),

		OperatorJWTSecret: strings.TrimSpace(os.Getenv("OPERATOR_JWT_SECRET")),

		RabbitMQURL:        strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		EventsExchange:     getenv("RABBITMQ_EXCHANGE", "cruise.direct"),
		PromotionsExchange: getenv("PROMOTIONS_EXCHANGE", "promotions_topic"),
		ServiceID:          getenv("SERVICE_ID", "booking"),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
}

// MissingSecrets names the signing secrets that are not set. Without them
// operator routes answer 503 and webhooks fail verification.
func (e Env) MissingSecrets() []string {
	var missing []string
	if e.OperatorJWTSecret == "" {
		missing = append(missing, "OPERATOR_JWT_SECRET")
	}
	if e.WebhookSigningKey == "" {
		missing = append(missing, "WEBHOOK_SIGNING_KEY")
	}
	if e.PaymentSigningKey == "" {
		missing = append(missing, "PAYMENT_SIGNING_KEY")
	}
	return missing
}

// Validate rejects a release build started without its signing secrets.
func (e Env) Validate() error {
	missing := e.MissingSecrets()
	if len(missing) == 0 || e.GinMode != "release" {
		return nil
	}
	return fmt.Errorf("release mode requires %s", strings.Join(missing, ", "))
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
