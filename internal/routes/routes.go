package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/fintrack/fintrack/internal/auth"
	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/identity"
	"github.com/fintrack/fintrack/internal/middleware"
	"github.com/fintrack/fintrack/internal/transactions"
)

const rootBanner = "Server works successfully"

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
	// Clock overrides time.Now for token issue and verification. Optional.
	Clock func() time.Time
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.DB == nil && !d.Cfg.IsDev() {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	var issuerOpts []auth.Option
	if d.Clock != nil {
		issuerOpts = append(issuerOpts, auth.WithClock(d.Clock))
	}
	issuer, err := auth.NewIssuer([]byte(d.Cfg.JWTSecret), d.Cfg.AccessTokenTTL, issuerOpts...)
	if err != nil {
		return fmt.Errorf("build token issuer: %w", err)
	}

	var (
		identityRepo    identity.Repository
		transactionRepo transactions.Repository
	)
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		transactionRepo = transactions.NewPostgresRepository(d.DB)
	} else {
		d.Logger.Warn("no database configured, using in-memory stores")
		identityRepo = identity.NewMemoryRepository()
		transactionRepo = transactions.NewMemoryRepository()
	}

	identitySvc, err := identity.NewService(identityRepo, identity.NewBcryptHasher(d.Cfg.BcryptCost))
	if err != nil {
		return fmt.Errorf("build identity service: %w", err)
	}
	transactionSvc := transactions.NewService(transactionRepo)

	identityHandler := identity.NewHandler(identitySvc, d.Logger)
	authHandler := auth.NewHandler(identitySvc, issuer, d.Logger)
	transactionHandler := transactions.NewHandler(transactionSvc, middleware.UserID, d.Logger)

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(middleware.Metrics())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(d.Cfg.CORSOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key, X-Request-ID",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).SendString(rootBanner)
	})
	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	gate := middleware.TokenGate(issuer, d.Logger)

	api := app.Group("/api")
	RegisterAuthRoutes(api, identityHandler, authHandler)
	RegisterIdentityRoutes(api, identitySvc, gate, d.Logger)

	var idempotency fiber.Handler
	if d.Cache != nil {
		idempotency = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	} else {
		d.Logger.Info("redis not configured, idempotency keys are ignored")
	}
	RegisterTransactionRoutes(api, transactionHandler, gate, idempotency)

	return nil
}
