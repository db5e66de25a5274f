package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

var configKeys = []string{
	"PORT", "DB_PATH", "APP_ENV", "APP_NAME", "LOG_LEVEL", "LOG_FORMAT",
	"FLUENT_ENABLED", "FLUENT_HOST", "FLUENT_PORT",
	"QUOTES_BACKEND", "QUOTES_TABLE", "AWS_REGION", "DYNAMODB_ENDPOINT",
	"ADMIN_TOKEN", "CORS_ORIGINS", "RATECARD_PATH",
}

// clearEnv unsets keys for the duration of the test. godotenv only fills
// variables that are absent, so an empty value is not enough.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	if cfg.Port != "8080" || cfg.DBPath != "./dev.db" || cfg.AppEnv != "dev" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LogFormat != "tint" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected log defaults: %s/%s", cfg.LogFormat, cfg.LogLevel)
	}
	if cfg.QuotesBackend != BackendSQLite || cfg.QuotesTable != "quotes" {
		t.Fatalf("unexpected quotes defaults: %s/%s", cfg.QuotesBackend, cfg.QuotesTable)
	}
	if cfg.FluentEnabled || cfg.FluentPort != 24224 {
		t.Fatalf("unexpected fluent defaults: %v/%d", cfg.FluentEnabled, cfg.FluentPort)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected dev environment")
	}
}

func TestLoad_ReadsDotEnvAndIgnoresNoise(t *testing.T) {
	clearEnv(t)

	path := writeEnvFile(t, `
# comment

PORT=9090
export DB_PATH=/tmp/reno.db
LOG_FORMAT="JSON"
QUOTES_BACKEND=dynamodb
AWS_REGION=eu-west-2
CORS_ORIGINS= https://a.example , ,https://b.example
FLUENT_ENABLED=true
FLUENT_HOST=fluentbit
FLUENT_PORT=not-a-number
APP_ENV=production
`)

	cfg := Load(path)

	if cfg.Port != "9090" || cfg.DBPath != "/tmp/reno.db" {
		t.Fatalf("dotenv values not loaded: %+v", cfg)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("LogFormat=%q, want json", cfg.LogFormat)
	}
	if cfg.QuotesBackend != BackendDynamoDB || cfg.AWSRegion != "eu-west-2" {
		t.Fatalf("unexpected backend %s/%s", cfg.QuotesBackend, cfg.AWSRegion)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Fatalf("CORSOrigins=%v, want %v", cfg.CORSOrigins, want)
	}
	if !cfg.FluentEnabled || cfg.FluentHost != "fluentbit" || cfg.FluentPort != 24224 {
		t.Fatalf("unexpected fluent config: %v %s %d", cfg.FluentEnabled, cfg.FluentHost, cfg.FluentPort)
	}
	if cfg.IsDev() {
		t.Fatalf("production should not be dev")
	}
}

func TestLoad_DoesNotOverwriteExistingEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")

	cfg := Load(writeEnvFile(t, "PORT=9999\n"))

	if cfg.Port != "7000" {
		t.Fatalf("Port=%q, want %q", cfg.Port, "7000")
	}
}

func TestLoad_FallsBackOnInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_FORMAT", "xml")
	t.Setenv("QUOTES_BACKEND", "postgres")
	t.Setenv("FLUENT_ENABLED", "true")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	if cfg.LogFormat != "tint" {
		t.Fatalf("LogFormat=%q, want tint", cfg.LogFormat)
	}
	if cfg.QuotesBackend != BackendSQLite {
		t.Fatalf("QuotesBackend=%q, want sqlite", cfg.QuotesBackend)
	}
	if cfg.FluentEnabled {
		t.Fatalf("fluent should be disabled without a host")
	}
}
