package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/config"
	"github.com/Abraxas-365/hojavida/pkg/errx"
	"github.com/Abraxas-365/hojavida/pkg/logx"
	"github.com/Abraxas-365/hojavida/recruitment/applicant/applicantapi"
	"github.com/Abraxas-365/hojavida/recruitment/catalog/catalogapi"
	"github.com/Abraxas-365/hojavida/recruitment/renderjob/renderjobapi"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	redisStorage "github.com/gofiber/storage/redis/v2"
	"github.com/rs/xid"
)

func runServer(cfg *config.Config) error {
	logx.Info("Starting Hoja de Vida API Server...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Initialize Dependency Container
	container := NewContainer(ctx, cfg)
	defer container.Close()

	// 2. Create Fiber App
	app := newApp(cfg, container)

	// 3. Background render workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	if cfg.Worker.Enabled {
		container.RenderWorker.Start(workerCtx)
	}

	// 4. Start Server with Graceful Shutdown
	go func() {
		logx.Infof("Server listening on port %s", cfg.Server.Port)
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logx.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	stopWorkers()
	if cfg.Worker.Enabled {
		container.RenderWorker.Wait()
	}

	logx.Info("Server exited")
	return nil
}

func newApp(cfg *config.Config, container *Container) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Hoja de Vida API",
		DisableStartupMessage: true,
		BodyLimit:             cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler:          globalErrorHandler,
	})

	// Global Middleware
	app.Use(fiberrecover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return xid.New().String()
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, HEAD, OPTIONS",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
	}))

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"db":     container.DB.PingContext(c.UserContext()) == nil,
			"redis":  container.Redis.Ping(c.UserContext()).Err() == nil,
		})
	})

	intake := newIntakeLimiter(cfg)

	// Applicant intake: /api/hv/registrar, /api/hv/upload-photo, /api/aspirante
	applicantapi.RegisterRoutes(app, container.ApplicantHandlers, intake)

	// Render jobs: /api/hv/:identificacion/pdf, /api/hv/jobs/:id
	renderjobapi.RegisterRoutes(app, container.RenderJobHandlers, intake)

	// Catalogs: /api/config/*
	catalogapi.RegisterRoutes(app, container.CatalogHandlers)

	if cfg.Server.StaticDir != "" {
		app.Static("/", cfg.Server.StaticDir)
	}

	return app
}

// newIntakeLimiter throttles the public write endpoints per client IP. Counters
// live in Redis so every instance shares them; memory is used when the Redis
// store cannot be created.
func newIntakeLimiter(cfg *config.Config) fiber.Handler {
	if cfg.Limiter.Max == 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return limiter.New(limiter.Config{
		Max:               cfg.Limiter.Max,
		Expiration:        cfg.Limiter.Window,
		LimiterMiddleware: limiter.SlidingWindow{},
		Storage:           newLimiterStorage(cfg.Redis),
		KeyGenerator: func(c *fiber.Ctx) string {
			return "hojavida:limiter:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			logx.Warnf("Rate limit exceeded for %s on %s", c.IP(), c.Path())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Too Many Requests",
				"type":    "RATE_LIMIT",
				"code":    "RATE_LIMITED",
				"message": "Demasiadas solicitudes, intente de nuevo en un momento",
			})
		},
	})
}

func newLimiterStorage(cfg config.RedisConfig) (store fiber.Storage) {
	store = memoryStorage.New()
	if strings.TrimSpace(cfg.Addr) == "" {
		return store
	}

	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("Redis limiter store init panicked, falling back to memory: %v", r)
		}
	}()
	store = redisStorage.New(redisStorage.Config{
		Addrs:    []string{cfg.Addr},
		Password: cfg.Password,
		Database: cfg.LimiterDB,
	})
	logx.Infof("Using Redis for rate limiting (addr=%s db=%d)", cfg.Addr, cfg.LimiterDB)
	return store
}

// globalErrorHandler converts internal errors to standard HTTP responses
func globalErrorHandler(c *fiber.Ctx, err error) error {
	// If it's a Fiber error (e.g., 404 handler not found)
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"error": e.Message,
			"code":  e.Code,
		})
	}

	if e, ok := errx.As(err); ok {
		if e.HTTPStatus >= fiber.StatusInternalServerError {
			logx.With("request_id", c.Locals("requestid"), "path", c.Path()).Errorf("%v", err)
		}
		return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
	}

	// Default unknown error
	logx.Errorf("Internal Server Error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal Server Error",
		"type":    "INTERNAL",
		"code":    "INTERNAL_ERROR",
		"message": "An unexpected error occurred",
	})
}
