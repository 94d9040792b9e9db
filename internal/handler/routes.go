package handler

import (
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(
	app *fiber.App,
	authHandler *AuthHandler,
	sessionHandler *SessionHandler,
	healthHandler *HealthHandler,
	rateLimitMiddleware fiber.Handler,
	authMiddleware fiber.Handler,
) {
	// Health checks (public, never rate-limited)
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)

	// API v1
	api := app.Group("/api/v1")

	// Credential issuance surface sits behind the rate limiter
	auth := api.Group("/auth", rateLimitMiddleware)
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/logout", authMiddleware, authHandler.Logout)
	auth.Post("/change-password", authMiddleware, authHandler.ChangePassword)

	// Session management (protected)
	sessions := api.Group("/sessions", authMiddleware)
	sessions.Get("/", sessionHandler.List)
	sessions.Delete("/:id", sessionHandler.Revoke)
}
