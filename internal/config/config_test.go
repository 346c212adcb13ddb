package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != defaultPort {
		t.Fatalf("expected port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("expected 1h token lifetime, got %s", cfg.AccessTokenTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.BcryptCost)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "development")

	if _, err := Load("", nil); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoadRequiresDatabaseOutsideDev(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load("", nil); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/fintrack")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected 15m, got %s", cfg.AccessTokenTTL)
	}
	if cfg.ShutdownPeriod != 3*time.Second {
		t.Fatalf("expected 3s, got %s", cfg.ShutdownPeriod)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("expected cost 12, got %d", cfg.BcryptCost)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected lower-cased log level, got %s", cfg.LogLevel)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "development")
	t.Setenv("ACCESS_TOKEN_TTL_SECONDS", "soon")

	if _, err := Load("", nil); err == nil {
		t.Fatalf("expected error for invalid ACCESS_TOKEN_TTL_SECONDS")
	}
}

func TestLoadFileThenFlags(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "fintrack.yaml")
	content := []byte("app-env: local\njwt-secret: from-file\nport: \"9000\"\naccess-token-ttl: 30m\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--log-level=warn"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(path, fs)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWTSecret != "from-file" {
		t.Fatalf("expected secret from file")
	}
	if cfg.Port != "9000" {
		t.Fatalf("expected file port to survive unchanged flag, got %s", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected flag log level, got %s", cfg.LogLevel)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("expected 30m from file, got %s", cfg.AccessTokenTTL)
	}
}

func TestAddress(t *testing.T) {
	if got := (Config{Port: "8081"}).Address(); got != ":8081" {
		t.Fatalf("expected :8081, got %s", got)
	}
	if got := (Config{Port: ":9090"}).Address(); got != ":9090" {
		t.Fatalf("expected :9090, got %s", got)
	}
}

func TestReadSkipsValidation(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/fintrack")

	cfg, err := Read("", nil)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/fintrack" {
		t.Fatalf("unexpected database url %q", cfg.DatabaseURL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	const probe = "FINTRACK_DOTENV_PROBE"
	t.Cleanup(func() { os.Unsetenv(probe) })
	t.Setenv("JWT_SECRET", "from-environment")

	path := filepath.Join(t.TempDir(), ".env")
	content := []byte(probe + "=loaded\nJWT_SECRET=from-dotenv\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv(probe); got != "loaded" {
		t.Fatalf("expected probe from dotenv, got %q", got)
	}
	if got := os.Getenv("JWT_SECRET"); got != "from-environment" {
		t.Fatalf("expected existing variable to win, got %q", got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestLoadFileHonoursEveryKey(t *testing.T) {
	for _, ev := range envVars {
		t.Setenv(ev.name, "")
	}

	path := filepath.Join(t.TempDir(), "fintrack.yaml")
	content := []byte(`app-name: Ledgerly
app-env: production
port: "9100"
log-level: warn
database-url: postgres://db/fintrack
redis-url: redis://cache:6379/0
shutdown-timeout: 5s
idempotency-ttl: 1h
jwt-secret: yaml-secret
access-token-ttl: 45m
bcrypt-cost: 12
cors-origins:
  - https://app.example
auto-migrate: true
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Config{
		AppName:        "Ledgerly",
		AppEnv:         "production",
		Port:           "9100",
		LogLevel:       "warn",
		DatabaseURL:    "postgres://db/fintrack",
		RedisURL:       "redis://cache:6379/0",
		ShutdownPeriod: 5 * time.Second,
		IdempotencyTTL: time.Hour,
		JWTSecret:      "yaml-secret",
		AccessTokenTTL: 45 * time.Minute,
		BcryptCost:     12,
		AutoMigrate:    true,
	}
	if cfg.AppName != want.AppName || cfg.AppEnv != want.AppEnv || cfg.Port != want.Port ||
		cfg.LogLevel != want.LogLevel || cfg.DatabaseURL != want.DatabaseURL || cfg.RedisURL != want.RedisURL ||
		cfg.ShutdownPeriod != want.ShutdownPeriod || cfg.IdempotencyTTL != want.IdempotencyTTL ||
		cfg.JWTSecret != want.JWTSecret || cfg.AccessTokenTTL != want.AccessTokenTTL ||
		cfg.BcryptCost != want.BcryptCost || cfg.AutoMigrate != want.AutoMigrate {
		t.Fatalf("file keys not applied:\n got  %+v\n want %+v", cfg, want)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://app.example" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
}
