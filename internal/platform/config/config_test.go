package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Addr != ":8080" {
		t.Fatalf("Addr = %s", cfg.Addr)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Fatalf("GeminiModel = %s", cfg.GeminiModel)
	}
	if cfg.SynthesisTimeout != 2*time.Minute {
		t.Fatalf("SynthesisTimeout = %v", cfg.SynthesisTimeout)
	}
	if cfg.InviteTTL != 72*time.Hour {
		t.Fatalf("InviteTTL = %v", cfg.InviteTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ADDR", ":9999")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("SYNTHESIS_TIMEOUT", "30s")
	t.Setenv("ALLOW_SELF_SIGNUP", "false")

	cfg := Load()
	if cfg.Addr != ":9999" {
		t.Fatalf("Addr = %s", cfg.Addr)
	}
	if cfg.RateLimitPerMinute != 5 {
		t.Fatalf("RateLimitPerMinute = %d", cfg.RateLimitPerMinute)
	}
	if cfg.SynthesisTimeout != 30*time.Second {
		t.Fatalf("SynthesisTimeout = %v", cfg.SynthesisTimeout)
	}
	if cfg.AllowSelfSignup {
		t.Fatal("AllowSelfSignup should be false")
	}
}

func TestValidate(t *testing.T) {
	base := Load()
	base.DatabaseURL = "postgres://localhost/reviewhub"

	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	missing := base
	missing.DatabaseURL = ""
	if err := missing.Validate(); err == nil {
		t.Fatal("missing DATABASE_URL must fail validation")
	}

	prod := base
	prod.Environment = "production"
	prod.JWTSecret = ""
	if err := prod.Validate(); err == nil {
		t.Fatal("production without JWT_SECRET must fail validation")
	}

	email := base
	email.EmailEnabled = true
	email.SMTPHost = ""
	if err := email.Validate(); err == nil {
		t.Fatal("email enabled without SMTP host must fail validation")
	}
}
