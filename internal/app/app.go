// Package app wires configuration, storage, services and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wardrobe/internal/audit"
	"wardrobe/internal/config"
	"wardrobe/internal/database"
	"wardrobe/internal/handlers"
	"wardrobe/internal/middleware"
	"wardrobe/internal/repositories"
	"wardrobe/internal/services"
	"wardrobe/pkg/locker"
	"wardrobe/pkg/logger"
	"wardrobe/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators Build wires together. A nil Locker is
// replaced by one in-process KeyedLocker shared by every service.
type Deps struct {
	Store     repositories.Store
	Locker    locker.Locker
	Publisher services.EventPublisher
}

// App is a fully wired application.
type App struct {
	Fiber *fiber.App
	Auth  *services.AuthService

	cfg     *config.Config
	log     *logger.Logger
	mq      *rabbitmq.Client
	closers []func() error
}

// New connects to every configured backend and builds the application.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	var (
		deps    Deps
		db      *gorm.DB
		rdb     *redis.Client
		mq      *rabbitmq.Client
		closers []func() error
	)
	fail := func(err error) (*App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	switch cfg.DBDriver {
	case "memory":
		log.Warn(ctx, "using in-memory store, data is lost on restart")
		deps.Store = repositories.NewInMemoryStore()
	default:
		var err error
		db, err = database.Open(database.Config{
			Driver:          cfg.DBDriver,
			DSN:             cfg.DatabaseDSN,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			ConnMaxLifetime: cfg.DBConnLifetime,
			LogLevel:        cfg.DBLogLevel,
		})
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() error { return database.Close(db) })
		if err := database.Migrate(db); err != nil {
			return fail(err)
		}
		deps.Store = repositories.NewGORMStore(db)
	}

	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		closers = append(closers, rdb.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fail(fmt.Errorf("failed to connect to Redis: %w", err))
		}
		deps.Locker = locker.NewRedisLocker(rdb, locker.RedisConfig{
			Prefix: "wardrobe:lock:",
			TTL:    cfg.LockTTL,
		})
		log.Info(ctx, "using redis locks", zap.String("addr", cfg.RedisAddr))
	} else {
		deps.Locker = locker.NewKeyedLocker()
	}

	if cfg.RabbitMQURL != "" {
		var err error
		mq, err = rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.RabbitMQExchange,
			Queue:    cfg.RabbitMQQueue,
		})
		if err != nil {
			return fail(err)
		}
		closers = append(closers, mq.Close)
		deps.Publisher = mq
	} else {
		log.Warn(ctx, "RABBITMQ_URL not set, events are not published")
	}

	a, err := Build(cfg, log, deps)
	if err != nil {
		return fail(err)
	}
	a.mq = mq
	a.closers = closers

	if err := a.Auth.EnsureAdmin(ctx, services.AdminAccount{
		Name:      cfg.Admin.Name,
		Surname:   cfg.Admin.Surname,
		Birthdate: cfg.Admin.Birthdate,
		Email:     cfg.Admin.Email,
		Password:  cfg.Admin.Password,
	}); err != nil {
		return fail(err)
	}
	return a, nil
}

// Build wires services, handlers and middleware on top of deps.
func Build(cfg *config.Config, log *logger.Logger, deps Deps) (*App, error) {
	authService, err := services.NewAuthService(deps.Store.Users(), services.AuthConfig{
		Secret:    cfg.JWTSecret,
		Algorithm: cfg.JWTAlgorithm,
		TokenTTL:  cfg.TokenTTL,
	})
	if err != nil {
		return nil, err
	}

	// Placement and restock must share one locker.
	if deps.Locker == nil {
		deps.Locker = locker.NewKeyedLocker()
	}
	retry := services.NewStoreRetry(cfg.OrderRetryAttempts)
	userService := services.NewUserService(deps.Store.Users())
	clothingService := services.NewClothingService(deps.Store, deps.Locker, retry, deps.Publisher)
	orderService := services.NewOrderService(deps.Store, deps.Locker, retry, deps.Publisher)

	validate := handlers.NewValidator()
	authHandler := handlers.NewAuthHandler(authService, validate)
	clothingHandler := handlers.NewClothingHandler(clothingService, validate)
	orderHandler := handlers.NewOrderHandler(orderService, validate)
	adminHandler := handlers.NewAdminHandler(clothingService, userService, orderService, validate)

	app := fiber.New(fiber.Config{
		AppName:               "wardrobe",
		ErrorHandler:          handlers.ErrorHandler,
		UnescapePath:          true,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	authRequired := middleware.AuthRequired(authService)
	authHandler.RegisterRoutes(app)
	clothingHandler.RegisterRoutes(app, authRequired)
	orderHandler.RegisterRoutes(app, authRequired)
	adminHandler.RegisterRoutes(app, authRequired, middleware.AdminRequired())

	return &App{
		Fiber: app,
		Auth:  authService,
		cfg:   cfg,
		log:   log,
	}, nil
}

// Run serves HTTP and, when RabbitMQ is configured, consumes audit events
// until ctx is done. It then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a.mq != nil {
		handler := audit.NewHandler(a.log)
		if err := a.mq.Consume(ctx, handler.Handle); err != nil {
			return fmt.Errorf("failed to start audit consumer: %w", err)
		}
		a.log.Info(ctx, "audit consumer started")
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info(ctx, "starting server", zap.String("addr", a.cfg.AppPort))
		errCh <- a.Fiber.Listen(a.cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.log.Info(ctx, "shutting down server")
	if err := a.Fiber.ShutdownWithTimeout(a.cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases every backend connection.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
