package routes

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/siaga-app/siaga/internal/auth"
	"github.com/siaga-app/siaga/internal/binding"
	"github.com/siaga-app/siaga/internal/config"
	"github.com/siaga-app/siaga/internal/device"
	"github.com/siaga-app/siaga/internal/emergency"
	"github.com/siaga-app/siaga/internal/identity"
	"github.com/siaga-app/siaga/internal/kv"
	"github.com/siaga-app/siaga/internal/middleware"
	"github.com/siaga-app/siaga/internal/news"
	"github.com/siaga-app/siaga/internal/notification"
	"github.com/siaga-app/siaga/internal/session"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	SQL    *sql.DB
	PG     *pgxpool.Pool
	Cache  *redis.Client
	KV     kv.Store
	Logger *slog.Logger
}

type repositories struct {
	users     identity.Repository
	bindings  binding.Repository
	news      news.Repository
	emergency emergency.Repository
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	repos, err := buildRepositories(d)
	if err != nil {
		return err
	}
	store := d.KV
	if store == nil {
		if !d.Cfg.IsDev() {
			return fmt.Errorf("kv store is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		store = kv.NewMemoryStore()
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	policy := identity.LockoutPolicy{MaxAttempts: d.Cfg.MaxLoginAttempts, LockDuration: d.Cfg.LockDuration}
	identitySvc := identity.NewService(repos.users, policy, d.Logger)
	devices := device.NewResolver(store, d.Logger)
	sessions := session.NewStore(store, devices, d.Logger)
	registry := binding.NewRegistry(repos.bindings, identitySvc, d.Logger)
	authSvc := auth.NewService(identitySvc, sessions, registry, devices, d.Logger)
	newsSvc := news.NewService(repos.news, d.Logger)
	emergencySvc := emergency.NewService(repos.emergency, identitySvc, notification.NewLoggerNotifier(d.Logger), d.Logger)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRatePerMinute, d.Logger)
	RegisterAuthRoutes(api, auth.NewHandler(authSvc), rateLimiter)

	// Protected routes; submissions are replay-guarded when Redis is present
	var replayGuard fiber.Handler
	if d.Cache != nil {
		replayGuard = middleware.ReplayGuard(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	requireSession := middleware.RequireSession(authSvc)
	RegisterProfileRoutes(api.Group("/me", requireSession), identitySvc, sessions)
	RegisterNewsRoutes(api.Group("/news", requireSession), news.NewHandler(newsSvc), replayGuard)
	RegisterEmergencyRoutes(api.Group("/emergency", requireSession), emergency.NewHandler(emergencySvc), replayGuard)

	return nil
}

func buildRepositories(d Deps) (repositories, error) {
	switch {
	case d.Cfg.StoreDriver == config.StorePostgres && d.PG != nil:
		return repositories{
			users:     identity.NewPostgresRepository(d.PG),
			bindings:  binding.NewPostgresRepository(d.PG),
			news:      news.NewPostgresRepository(d.PG),
			emergency: emergency.NewPostgresRepository(d.PG),
		}, nil
	case d.Cfg.StoreDriver == config.StoreSQLite && d.SQL != nil:
		return repositories{
			users:     identity.NewSQLiteRepository(d.SQL),
			bindings:  binding.NewSQLiteRepository(d.SQL),
			news:      news.NewSQLiteRepository(d.SQL),
			emergency: emergency.NewSQLiteRepository(d.SQL),
		}, nil
	case d.Cfg.IsDev():
		return repositories{
			users:     identity.NewMemoryRepository(),
			bindings:  binding.NewMemoryRepository(),
			news:      news.NewMemoryRepository(),
			emergency: emergency.NewMemoryRepository(),
		}, nil
	default:
		return repositories{}, fmt.Errorf("database for STORE_DRIVER=%s is required when APP_ENV=%s", d.Cfg.StoreDriver, d.Cfg.AppEnv)
	}
}
