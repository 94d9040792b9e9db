package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/Sayandeep06/WatchTower/internal/config"
	"github.com/Sayandeep06/WatchTower/internal/handler"
	"github.com/Sayandeep06/WatchTower/internal/handler/middleware"
	"github.com/Sayandeep06/WatchTower/internal/repository/postgres"
	"github.com/Sayandeep06/WatchTower/internal/service"
	"github.com/Sayandeep06/WatchTower/pkg/jwt"
	"github.com/Sayandeep06/WatchTower/pkg/ratelimit"
	"github.com/Sayandeep06/WatchTower/pkg/validator"
)

const sessionSweepInterval = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}
	}()
	log.Println("✓ Database connection established")

	// Initialize the rate limit store. Redis is only dialed when the
	// limiter is configured to share state across instances.
	limitStore, redisClient, err := initRateLimitStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize rate limit store: %v", err)
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("Error closing Redis connection: %v", err)
			}
		}()
		log.Println("✓ Redis connection established")
	}

	// Initialize JWT manager
	jwtManager, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)
	if err != nil {
		log.Fatalf("Failed to initialize JWT manager: %v", err)
	}

	// Initialize validator
	validate := validator.NewValidator()

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)

	// Initialize services
	tokenService := service.NewTokenService(sessionRepo, userRepo, jwtManager, cfg)
	authService := service.NewAuthService(userRepo, tokenService, cfg)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, validate, cfg)
	sessionHandler := handler.NewSessionHandler(tokenService)
	healthHandler := handler.NewHealthHandler(db)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "WatchTower v1.0",
		ErrorHandler: customErrorHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	// Setup global middlewares
	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.CORSMiddleware())

	// Setup routes
	rateLimitMiddleware := middleware.RateLimitMiddleware(limitStore, int(cfg.RateLimit.Window.Seconds()))
	authMiddleware := middleware.AuthMiddleware(tokenService)
	handler.SetupRoutes(
		app,
		authHandler,
		sessionHandler,
		healthHandler,
		rateLimitMiddleware,
		authMiddleware,
	)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Periodically delete sessions that expired or were revoked
	go sweepSessions(ctx, tokenService)

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Printf("🚀 Server starting on http://localhost%s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		if err := app.Listen(addr); err != nil {
			// Don't use log.Fatalf in goroutine, send error to main
			log.Printf("❌ Server failed to start: %v", err)
			stop() // Trigger shutdown
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Println("⏳ Shutting down server gracefully...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✓ Server stopped")
}

// initDB initializes PostgreSQL database connection with retry logic
func initDB(cfg *config.Config) (*sqlx.DB, error) {
	dsn := cfg.Database.DSN()

	var db *sqlx.DB
	var err error

	maxRetries := 5
	retryInterval := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			break
		}

		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("Error closing database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// initRateLimitStore builds the configured rate limiter backend. The Redis
// client is returned so the caller can close it on shutdown.
func initRateLimitStore(cfg *config.Config) (ratelimit.Store, *redis.Client, error) {
	switch cfg.RateLimit.Store {
	case "memory":
		return ratelimit.NewMemoryStore(cfg.RateLimit.Window, cfg.RateLimit.Max), nil, nil
	case "redis":
		client, err := initRedis(cfg)
		if err != nil {
			return nil, nil, err
		}
		return ratelimit.NewRedisStore(client, cfg.RateLimit.Window, cfg.RateLimit.Max), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown rate limit store %q", cfg.RateLimit.Store)
	}
}

// initRedis initializes Redis client and verifies connection
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			log.Printf("Error closing Redis after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// sweepSessions removes terminated sessions until ctx is cancelled.
func sweepSessions(ctx context.Context, tokenService *service.TokenService) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			deleted, err := tokenService.PurgeExpired(sweepCtx)
			cancel()
			if err != nil {
				log.Printf("Session sweep failed: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("Session sweep removed %d terminated sessions", deleted)
			}
		}
	}
}

// customErrorHandler handles Fiber errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Log error for debugging (sanitized)
	log.Printf("Error handling request [%s %s]: %v", c.Method(), c.Path(), err)

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
