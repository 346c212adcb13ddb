package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	defaultAppName        = "FinTrack"
	defaultAppEnv         = "development"
	defaultPort           = "8081"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultAccessTokenTTL = time.Hour
	defaultBcryptCost     = 10
	defaultCORSOrigins    = "*"
)

// Config captures application runtime configuration.
type Config struct {
	AppName        string        `koanf:"app-name"`
	AppEnv         string        `koanf:"app-env"`
	Port           string        `koanf:"port"`
	LogLevel       string        `koanf:"log-level"`
	DatabaseURL    string        `koanf:"database-url"`
	RedisURL       string        `koanf:"redis-url"`
	ShutdownPeriod time.Duration `koanf:"shutdown-timeout"`
	IdempotencyTTL time.Duration `koanf:"idempotency-ttl"`
	JWTSecret      string        `koanf:"jwt-secret"`
	AccessTokenTTL time.Duration `koanf:"access-token-ttl"`
	BcryptCost     int           `koanf:"bcrypt-cost"`
	CORSOrigins    []string      `koanf:"cors-origins"`
	AutoMigrate    bool          `koanf:"auto-migrate"`
}

type envVar struct {
	name  string
	key   string
	parse func(string) (any, error)
}

// envVars maps environment variables onto configuration keys. The *_SECONDS
// variants take precedence over their duration counterparts.
var envVars = []envVar{
	{name: "APP_NAME", key: "app-name", parse: asString},
	{name: "APP_ENV", key: "app-env", parse: asString},
	{name: "PORT", key: "port", parse: asString},
	{name: "LOG_LEVEL", key: "log-level", parse: asString},
	{name: "DATABASE_URL", key: "database-url", parse: asString},
	{name: "REDIS_URL", key: "redis-url", parse: asString},
	{name: "SHUTDOWN_TIMEOUT", key: "shutdown-timeout", parse: asDuration},
	{name: "SHUTDOWN_TIMEOUT_SECONDS", key: "shutdown-timeout", parse: asSeconds},
	{name: "IDEMPOTENCY_TTL", key: "idempotency-ttl", parse: asDuration},
	{name: "IDEMPOTENCY_TTL_SECONDS", key: "idempotency-ttl", parse: asSeconds},
	{name: "JWT_SECRET", key: "jwt-secret", parse: asString},
	{name: "ACCESS_TOKEN_TTL", key: "access-token-ttl", parse: asDuration},
	{name: "ACCESS_TOKEN_TTL_SECONDS", key: "access-token-ttl", parse: asSeconds},
	{name: "BCRYPT_COST", key: "bcrypt-cost", parse: asInt},
	{name: "CORS_ORIGINS", key: "cors-origins", parse: asList},
	{name: "AUTO_MIGRATE", key: "auto-migrate", parse: asBool},
}

// Load builds the configuration from defaults, an optional YAML file, the
// environment and finally any flags set on the command line. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg, err := Read(path, flags)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read is Load without validation, for commands that need only part of the
// configuration.
func Read(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	defaults := map[string]any{
		"app-name":         defaultAppName,
		"app-env":          defaultAppEnv,
		"port":             defaultPort,
		"log-level":        defaultLogLevel,
		"shutdown-timeout": defaultShutdownDelay,
		"idempotency-ttl":  defaultIdempotencyTTL,
		"access-token-ttl": defaultAccessTokenTTL,
		"bcrypt-cost":      defaultBcryptCost,
		"cors-origins":     []string{defaultCORSOrigins},
		"auto-migrate":     false,
	}
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return Config{}, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := loadEnv(k); err != nil {
		return Config{}, err
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	return cfg, nil
}

// LoadDotEnv copies variables from a dotenv file into the process
// environment. Variables that are already set win. A missing file is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func loadEnv(k *koanf.Koanf) error {
	for _, ev := range envVars {
		raw := os.Getenv(ev.name)
		if raw == "" {
			continue
		}
		value, err := ev.parse(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", ev.name, err)
		}
		if err := k.Set(ev.key, value); err != nil {
			return fmt.Errorf("set %s: %w", ev.name, err)
		}
	}
	return nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.DatabaseURL == "" && !c.IsDev() {
		return fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", c.AppEnv)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("access token ttl must be positive, got %s", c.AccessTokenTTL)
	}
	if c.ShutdownPeriod <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownPeriod)
	}
	if c.IdempotencyTTL <= 0 {
		return fmt.Errorf("idempotency ttl must be positive, got %s", c.IdempotencyTTL)
	}
	return nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the application runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// LogValue keeps credentials out of structured logs.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("app_name", c.AppName),
		slog.String("app_env", c.AppEnv),
		slog.String("port", c.Port),
		slog.String("log_level", c.LogLevel),
		slog.Bool("database", c.DatabaseURL != ""),
		slog.Bool("redis", c.RedisURL != ""),
		slog.Duration("access_token_ttl", c.AccessTokenTTL),
		slog.Int("bcrypt_cost", c.BcryptCost),
		slog.Any("cors_origins", c.CORSOrigins),
		slog.Bool("auto_migrate", c.AutoMigrate),
	)
}

// RegisterFlags adds the command line overrides understood by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("port", defaultPort, "HTTP listen port")
	fs.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	fs.Bool("auto-migrate", false, "apply database migrations before serving")
}

func asString(v string) (any, error) { return v, nil }

func asDuration(v string) (any, error) {
	return time.ParseDuration(v)
}

func asSeconds(v string) (any, error) {
	seconds, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return time.Duration(seconds) * time.Second, nil
}

func asInt(v string) (any, error) {
	return strconv.Atoi(v)
}

func asBool(v string) (any, error) {
	return strconv.ParseBool(v)
}

func asList(v string) (any, error) {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}
