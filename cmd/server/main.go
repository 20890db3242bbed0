package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/adnalow/next-level/internal/auth"
	"github.com/adnalow/next-level/internal/badgeart"
	"github.com/adnalow/next-level/internal/client"
	"github.com/adnalow/next-level/internal/config"
	"github.com/adnalow/next-level/internal/handler"
	"github.com/adnalow/next-level/internal/middleware"
	"github.com/adnalow/next-level/internal/service"
	"github.com/adnalow/next-level/internal/store"
	"github.com/adnalow/next-level/internal/store/memory"
	"github.com/adnalow/next-level/internal/store/rest"
	ws "github.com/adnalow/next-level/internal/websocket"
	"github.com/adnalow/next-level/internal/worker"
	"github.com/adnalow/next-level/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	redisAvailable := true
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
		redisAvailable = false
	}

	// Initialize Asynq client (badge artwork generation runs off-request)
	var asynqClient *asynq.Client
	if redisAvailable {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer asynqClient.Close()
	} else {
		log.Println("Info: task queue disabled, badge artwork is generated inline")
	}

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize external clients
	generatorClient := client.NewGeneratorClient(&cfg.Generator)
	authClient := client.NewAuthClient(&cfg.AuthProvider)

	// Initialize record stores (optional - falls back to in-memory)
	var stores store.Stores
	restClient := rest.NewClient(&cfg.Store)
	if restClient.IsConfigured() {
		stores = restClient.Stores()
	} else {
		log.Println("Info: record store not configured, using in-memory storage")
		stores = memory.New().Stores()
	}

	// Initialize R2 client (optional - continues if not configured)
	var r2Client *client.R2Client
	if cfg.R2.AccessKeyID != "" && cfg.R2.SecretAccessKey != "" {
		var err error
		r2Client, err = client.NewR2Client(&cfg.R2)
		if err != nil {
			log.Printf("Warning: R2 client not initialized: %v", err)
		}
	} else {
		log.Println("Info: R2 storage not configured, using mock storage")
	}

	// Initialize JWKS verifier (optional - falls back to legacy JWT)
	var jwksVerifier *auth.JWKSVerifier
	if cfg.AuthProvider.Issuer != "" {
		var err error
		jwksVerifier, err = auth.NewJWKSVerifier(&cfg.AuthProvider)
		if err != nil {
			log.Printf("Warning: JWKS verifier not initialized: %v", err)
		} else {
			defer jwksVerifier.Close()
		}
	}

	// Initialize services
	remoteGenerator := badgeart.NewRemoteGenerator(generatorClient)
	badgeService := service.NewBadgeService(stores.Badges, stores.UserBadges, remoteGenerator, asynqClient)
	jobService := service.NewJobService(stores.Jobs, badgeService)
	applicationService := service.NewApplicationService(stores.Applications, stores.Jobs, badgeService)

	var storage client.StorageClient
	if r2Client != nil {
		storage = r2Client
	}
	uploadService := service.NewUploadService(storage)

	// Initialize handlers
	jobHandler := handler.NewJobHandler(jobService, validate)
	applicationHandler := handler.NewApplicationHandler(applicationService, validate, hub)
	badgeHandler := handler.NewBadgeHandler(badgeService, validate)
	uploadHandler := handler.NewUploadHandler(uploadService)
	authHandler := handler.NewAuthHandler(authClient, cfg.JWT.Secret, validate)

	// Initialize middleware (with fallback support)
	var authMiddleware *middleware.AuthMiddleware
	if jwksVerifier != nil && cfg.JWT.Secret != "" {
		authMiddleware = middleware.NewAuthMiddlewareWithFallback(jwksVerifier, cfg.JWT.Secret)
	} else if jwksVerifier != nil {
		authMiddleware = middleware.NewAuthMiddleware(jwksVerifier)
	} else {
		authMiddleware = middleware.NewLegacyAuthMiddleware(cfg.JWT.Secret)
	}
	requireAuth := authMiddleware.Authenticate()
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    12 * 1024 * 1024, // resumes top out at 10MB
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"generator": generatorClient.IsConfigured(),
				"store":     restClient.IsConfigured(),
				"auth":      authClient.IsConfigured() || cfg.JWT.Secret != "",
				"r2":        r2Client != nil,
				"queue":     asynqClient != nil,
			},
		})
	})

	// Auth routes
	app.Post("/auth/signup", authHandler.SignUp)
	app.Post("/auth/signin", authHandler.SignIn)
	app.Get("/auth/session", requireAuth, authHandler.Session)

	// API routes
	api := app.Group("/api", requireAuth)

	// Job routes
	jobs := api.Group("/jobs")
	jobs.Post("/", rateLimiter.JobsLimit(cfg.RateLimit.JobsPerHour), jobHandler.Create)
	jobs.Get("/", jobHandler.List)
	jobs.Get("/mine", jobHandler.Mine)
	jobs.Get("/:id", jobHandler.Get)
	jobs.Patch("/:id/status", jobHandler.SetStatus)
	jobs.Get("/:id/applications", applicationHandler.ListByJob)

	// Application routes
	applications := api.Group("/applications")
	applications.Post("/", rateLimiter.ApplyLimit(cfg.RateLimit.ApplyPerHour), applicationHandler.Submit)
	applications.Get("/mine", applicationHandler.Mine)
	applications.Get("/:id", applicationHandler.Get)
	applications.Post("/:id/accept", applicationHandler.Accept)
	applications.Post("/:id/decline", applicationHandler.Decline)
	applications.Post("/:id/undo-decline", applicationHandler.Undo)
	applications.Post("/:id/complete", applicationHandler.Complete)

	// Badge routes
	badges := api.Group("/badges")
	badges.Get("/mine", badgeHandler.Mine)
	badges.Get("/job/:jobId", badgeHandler.ForJob)
	badges.Post("/generate", rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerMin), badgeHandler.Generate)

	// Upload routes
	uploads := api.Group("/uploads", rateLimiter.UploadLimit(cfg.RateLimit.UploadPerHour))
	uploads.Post("/resume", uploadHandler.Resume)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		jobID := c.Params("jobId")
		hub.HandleConnection(c, jobID)
	}))

	// Start Asynq worker server
	if asynqClient != nil {
		go startWorkerServer(cfg, remoteGenerator, stores.Badges, hub)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(
	cfg *config.Config,
	remoteGenerator *badgeart.RemoteGenerator,
	badges store.BadgeStore,
	hub *ws.Hub,
) {
	asynqLogLevel := asynq.InfoLevel
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		asynqLogLevel = asynq.DebugLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "warn") {
		asynqLogLevel = asynq.WarnLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "error") {
		asynqLogLevel = asynq.ErrorLevel
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"badges": 10,
			},
			LogLevel: asynqLogLevel,
		},
	)

	badgeArtWorker := worker.NewBadgeArtWorker(remoteGenerator, badges, hub)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeBadgeArt, badgeArtWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    response.CodeServiceError,
			"message": message,
		},
	})
}
