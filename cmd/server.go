package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Abraxas-365/hirekit/pkg/config"
	"github.com/Abraxas-365/hirekit/pkg/httpx"
	"github.com/Abraxas-365/hirekit/pkg/logx"
	"github.com/Abraxas-365/hirekit/pkg/telemetry"
	"github.com/Abraxas-365/hirekit/recruitment/form/formapi"
	"github.com/Abraxas-365/hirekit/recruitment/pipeline/pipelineapi"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load Config and Initialize Logger
	cfg, err := config.Load()
	if err != nil {
		logx.Fatalf("Invalid configuration: %v", err)
	}
	logx.SetLevel(logx.ParseLevel(cfg.Log.Level))
	logx.SetFormat(logx.Format(cfg.Log.Format))
	logx.Info("Starting HireKit API Server...")

	// 2. Initialize Dependency Container
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container := NewContainer(ctx, cfg)
	defer container.Close()

	// 3. Create Fiber App
	app := newApp(container)

	// 4. Start Server with Graceful Shutdown
	go func() {
		logx.Infof("Server listening on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logx.Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("Server exited")
}

// newApp builds the fiber application with every route registered
func newApp(container *Container) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "HireKit API",
		DisableStartupMessage: true,
		ErrorHandler:          httpx.ErrorHandler,
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*", // Configure for production
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status": "ok",
			"store":  container.Config.Store.Driver,
		}
		if container.DB != nil {
			status["db"] = container.DB.PingContext(c.Context()) == nil
		}
		if container.Redis != nil {
			status["redis"] = container.Redis.Ping(c.Context()).Err() == nil
		}
		return c.JSON(status)
	})

	if container.Config.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(telemetry.Handler()))
	}

	// Hiring pipelines: /api/pipelines
	pipelineapi.RegisterRoutes(app, container.PipelineHandlers, container.UnifiedAuthMiddleware)

	// Application forms: /api/forms
	formapi.RegisterRoutes(app, container.FormHandlers, container.UnifiedAuthMiddleware)

	// Public intake: /api/public/jobs/:jobId/form
	formapi.RegisterPublicRoutes(app, container.FormHandlers, container.Limiter)

	return app
}
