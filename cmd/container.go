package main

import (
	"context"
	"time"

	"github.com/Abraxas-365/hirekit/pkg/config"
	"github.com/Abraxas-365/hirekit/pkg/database"
	"github.com/Abraxas-365/hirekit/pkg/iam/auth"
	"github.com/Abraxas-365/hirekit/pkg/logx"
	"github.com/Abraxas-365/hirekit/pkg/ratelimit"
	"github.com/Abraxas-365/hirekit/recruitment/form"
	"github.com/Abraxas-365/hirekit/recruitment/form/formapi"
	"github.com/Abraxas-365/hirekit/recruitment/form/forminfra"
	"github.com/Abraxas-365/hirekit/recruitment/form/formsrv"
	"github.com/Abraxas-365/hirekit/recruitment/pipeline"
	"github.com/Abraxas-365/hirekit/recruitment/pipeline/pipelineapi"
	"github.com/Abraxas-365/hirekit/recruitment/pipeline/pipelineinfra"
	"github.com/Abraxas-365/hirekit/recruitment/pipeline/pipelinesrv"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies
type Container struct {
	// Config
	Config config.Config

	// Infrastructure
	DB      *sqlx.DB      // nil with STORE_DRIVER=memory
	Redis   *redis.Client // nil when REDIS_ADDR is empty
	Limiter ratelimit.Limiter

	// Identity
	TokenService auth.TokenService
	APIKeys      *auth.APIKeyStore

	// Recruitment Services
	PipelineService *pipelinesrv.PipelineService
	FormService     *formsrv.FormService

	// API Handlers
	PipelineHandlers *pipelineapi.Handlers
	FormHandlers     *formapi.Handlers

	// Middleware
	UnifiedAuthMiddleware *auth.UnifiedAuthMiddleware
}

// NewContainer initializes the dependency injection container
func NewContainer(ctx context.Context, cfg config.Config) *Container {
	c := &Container{Config: cfg}
	c.initInfrastructure(ctx)
	c.initIdentity()
	c.initServices()
	return c
}

func (c *Container) initInfrastructure(ctx context.Context) {
	// 1. Database Connection
	if c.Config.Store.Driver == config.StoreDriverPostgres {
		db, err := database.Connect(ctx, c.Config.Database)
		if err != nil {
			logx.Fatalf("Failed to connect to database: %v", err)
		}
		c.DB = db

		if c.Config.Database.AutoMigrate {
			if err := database.Migrate(ctx, db); err != nil {
				logx.Fatalf("Failed to run migrations: %v", err)
			}
		}
	} else {
		logx.Warn("Using in-memory store, data is lost on restart")
	}

	// 2. Redis Connection (public rate limiting)
	if c.Config.Redis.Addr == "" {
		logx.Warn("REDIS_ADDR is empty, public endpoints are not rate limited")
		return
	}
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.Redis.Ping(pingCtx).Err(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}
	c.Limiter = ratelimit.NewRedisLimiter(c.Redis, "hirekit:ratelimit:", c.Config.RateLimit.Limit, c.Config.RateLimit.Window)
}

func (c *Container) initIdentity() {
	secret := c.Config.JWT.Secret
	if secret == "" {
		if c.Config.IsProduction() {
			logx.Fatal("JWT_SECRET must be set in production")
		}
		logx.Warn("JWT_SECRET is not set, using default (unsafe for production)")
		secret = "hirekit-dev-secret-change-me"
	}

	c.TokenService = auth.NewJWTService(secret, c.Config.JWT.Issuer, c.Config.JWT.AccessTTL)
	c.APIKeys = auth.NewAPIKeyStore(c.Config.APIKeys)
	c.UnifiedAuthMiddleware = auth.NewUnifiedAuthMiddleware(c.TokenService, c.APIKeys)
}

func (c *Container) initServices() {
	// --- Repositories ---
	var (
		pipelineRepo pipeline.Repository
		formRepo     form.Repository
	)
	if c.DB != nil {
		pipelineRepo = pipelineinfra.NewPostgresRepository(c.DB)
		formRepo = forminfra.NewPostgresRepository(c.DB)
	} else {
		pipelineRepo = pipelineinfra.NewMemoryRepository()
		formRepo = forminfra.NewMemoryRepository()
	}

	// --- Domain Services ---
	policy, err := pipeline.ParseStagePolicy(c.Config.Pipeline.StagePolicy)
	if err != nil {
		logx.Fatalf("Invalid pipeline stage policy: %v", err)
	}
	c.PipelineService = pipelinesrv.NewPipelineService(pipelineRepo, policy)
	c.FormService = formsrv.NewFormService(formRepo)

	// --- Handlers ---
	c.PipelineHandlers = pipelineapi.NewHandlers(c.PipelineService)
	c.FormHandlers = formapi.NewHandlers(c.FormService)
}

// Close releases infrastructure connections
func (c *Container) Close() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Warnf("Failed to close database: %v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Warnf("Failed to close Redis: %v", err)
		}
	}
}
