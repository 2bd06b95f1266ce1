package config

import (
	"strings"
	"testing"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PAYMENT_SUCCESS_RATE", "")
	t.Setenv("PAYMENT_LINK_BASE_URL", "https://pay.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	env := LoadEnv()
	if env.AppAddr != ":8080" {
		t.Fatalf("unexpected addr %q", env.AppAddr)
	}
	if env.DB.Driver != "memory" {
		t.Fatalf("unexpected driver %q", env.DB.Driver)
	}
	if env.PaymentSuccessRate != 0.8 {
		t.Fatalf("unexpected success rate %v", env.PaymentSuccessRate)
	}
	if env.PaymentLinkBaseURL != "https://pay.example.com" {
		t.Fatalf("trailing slash not trimmed: %q", env.PaymentLinkBaseURL)
	}
	if len(env.CORSAllowedOrigins) != 2 {
		t.Fatalf("unexpected origins %v", env.CORSAllowedOrigins)
	}
}

func TestBuildDSN(t *testing.T) {
	driver, dsn, err := BuildDSN(DBConfig{Driver: "mysql", Host: "db", User: "app", Pass: "pw", Name: "cruise"})
	if err != nil {
		t.Fatalf("mysql dsn error: %v", err)
	}
	if driver != "mysql" || !strings.HasPrefix(dsn, "app:pw@tcp(db:3306)/cruise?") || !strings.Contains(dsn, "parseTime=true") || !strings.Contains(dsn, "clientFoundRows=true") {
		t.Fatalf("unexpected mysql dsn %q", dsn)
	}

	driver, dsn, err = BuildDSN(DBConfig{Driver: "postgres", Host: "db", User: "app", Pass: "pw", Name: "cruise"})
	if err != nil || driver != "postgres" || !strings.Contains(dsn, "port=5432") {
		t.Fatalf("unexpected postgres dsn %q %v", dsn, err)
	}

	if _, _, err := BuildDSN(DBConfig{Driver: "sqlite"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestLoadEnvLeavesSecretsUnset(t *testing.T) {
	t.Setenv("OPERATOR_JWT_SECRET", "")
	t.Setenv("WEBHOOK_SIGNING_KEY", "")
	t.Setenv("PAYMENT_SIGNING_KEY", " ")

	env := LoadEnv()
	if env.OperatorJWTSecret != "" || env.WebhookSigningKey != "" || env.PaymentSigningKey != "" {
		t.Fatalf("secrets must not have defaults: %+v", env)
	}
	if got := env.MissingSecrets(); len(got) != 3 {
		t.Fatalf("expected 3 missing secrets, got %v", got)
	}
}

func TestValidateRequiresSecretsInRelease(t *testing.T) {
	env := Env{GinMode: "release", OperatorJWTSecret: "jwt", PaymentSigningKey: "pay"}
	err := env.Validate()
	if err == nil || !strings.Contains(err.Error(), "WEBHOOK_SIGNING_KEY") {
		t.Fatalf("expected missing webhook key error, got %v", err)
	}

	env.WebhookSigningKey = "hook"
	if err := env.Validate(); err != nil {
		t.Fatalf("complete release config rejected: %v", err)
	}

	if err := (Env{GinMode: "debug"}).Validate(); err != nil {
		t.Fatalf("debug mode should start without secrets: %v", err)
	}
}
