package config

import (
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123456:test-token")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", strings.Repeat("x", 32))
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want localhost", cfg.DBHost)
	}
	if cfg.JoinCodeLength != 6 {
		t.Errorf("JoinCodeLength = %d, want 6", cfg.JoinCodeLength)
	}
	if !cfg.ScoringSumAll {
		t.Error("ScoringSumAll should default to true")
	}
	if cfg.ScoringUsePoints {
		t.Error("ScoringUsePoints should default to false")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing bot token", "BOT_TOKEN"},
		{"missing db password", "DB_PASSWORD"},
		{"missing jwt secret", "JWT_SECRET_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			if _, err := LoadConfig(); err == nil {
				t.Errorf("LoadConfig() without %s should fail", tt.unset)
			}
		})
	}
}

func TestLoadConfigShortJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET_KEY", "short")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() with short JWT secret should fail")
	}
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{
		DBHost: "db", DBPort: "5432", DBUser: "u",
		DBPassword: "p", DBName: "trivia", DBSSLMode: "disable",
	}
	want := "host=db port=5432 user=u password=p dbname=trivia sslmode=disable"
	if got := cfg.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}

func TestValidateProductionSecurity(t *testing.T) {
	cfg := &Config{AppEnv: "production", DBSSLMode: "disable", SuperAdminTgID: 1}
	if err := cfg.ValidateProductionSecurity(); err == nil {
		t.Error("production with sslmode=disable should fail")
	}

	cfg.DBSSLMode = "require"
	if err := cfg.ValidateProductionSecurity(); err != nil {
		t.Errorf("ValidateProductionSecurity() error = %v", err)
	}

	cfg.AppEnv = "development"
	cfg.DBSSLMode = "disable"
	if err := cfg.ValidateProductionSecurity(); err != nil {
		t.Errorf("development should skip production checks, got %v", err)
	}
}
