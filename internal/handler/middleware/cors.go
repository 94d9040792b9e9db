package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSMiddleware configures and returns CORS middleware
func CORSMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: "http://localhost:3000",
		AllowMethods: "GET,POST,DELETE",
		AllowHeaders: "Content-Type,Authorization,X-Geo-Country,X-Geo-Region,X-Geo-City,X-Geo-Timezone",
		// Credentials are required for the refresh cookie.
		AllowCredentials: true,
	})
}
