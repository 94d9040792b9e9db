package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Sayandeep06/WatchTower/internal/service"
)

// AuthMiddleware validates the bearer access token and cross-checks its jti
// against the session's current one. A verified signature is not enough: a
// token minted before the session's last rotation carries a stale jti and is
// rejected here.
func AuthMiddleware(tokenService *service.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing authorization header",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid authorization header format",
			})
		}

		token := parts[1]
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing token",
			})
		}

		claims, err := tokenService.VerifyAccessToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		if _, err := tokenService.ValidateSession(c.Context(), claims.SessionID, claims.ID); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "token has been rotated or revoked",
			})
		}

		c.Locals("claims", claims)

		return c.Next()
	}
}
