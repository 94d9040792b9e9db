package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Sayandeep06/WatchTower/internal/domain"
)

const refreshCookieName = "refresh_token"

// statusForError maps the service error taxonomy onto HTTP statuses.
// Persistence outages stay distinguishable from rejections.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrSessionRevoked),
		errors.Is(err, domain.ErrSessionExpired):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountLocked):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// deviceContextFromRequest derives the session's device metadata from the
// request. Clients may state their device type explicitly; otherwise it is
// guessed from the user agent.
func deviceContextFromRequest(c *fiber.Ctx, declaredDevice string) domain.DeviceContext {
	userAgent := c.Get(fiber.HeaderUserAgent)

	deviceType := domain.ValidDeviceType(strings.ToUpper(declaredDevice))
	if declaredDevice == "" {
		deviceType = guessDeviceType(userAgent)
	}

	ctx := domain.DeviceContext{
		DeviceType: deviceType,
		Browser:    guessBrowser(userAgent),
		OS:         guessOS(userAgent),
		IPAddress:  c.IP(),
		UserAgent:  userAgent,
	}

	// Coarse location, when an edge proxy provides it.
	if country := c.Get("X-Geo-Country"); country != "" {
		ctx.Location = &domain.Location{
			Country:  country,
			Region:   c.Get("X-Geo-Region"),
			City:     c.Get("X-Geo-City"),
			Timezone: c.Get("X-Geo-Timezone"),
		}
	}

	return ctx
}

func guessDeviceType(userAgent string) domain.DeviceType {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "smart-tv"), strings.Contains(ua, "smarttv"), strings.Contains(ua, "appletv"):
		return domain.DeviceTV
	case strings.Contains(ua, "tablet"), strings.Contains(ua, "ipad"):
		return domain.DeviceTablet
	case strings.Contains(ua, "mobile"), strings.Contains(ua, "android"), strings.Contains(ua, "iphone"):
		return domain.DeviceMobile
	case ua == "":
		return domain.DeviceOther
	default:
		return domain.DeviceDesktop
	}
}

func guessBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "edg/"):
		return "Edge"
	case strings.Contains(ua, "chrome/"):
		return "Chrome"
	case strings.Contains(ua, "firefox/"):
		return "Firefox"
	case strings.Contains(ua, "safari/"):
		return "Safari"
	default:
		return ""
	}
}

func guessOS(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ios"):
		return "iOS"
	case strings.Contains(ua, "mac os"), strings.Contains(ua, "macintosh"):
		return "macOS"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "Unknown"
	}
}

// setRefreshCookie stores the raw refresh token in an HTTP-only, secure,
// same-site-strict cookie whose lifetime matches the session policy.
func setRefreshCookie(c *fiber.Ctx, refreshToken string, lifetime time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/api/v1/auth",
		MaxAge:   int(lifetime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// clearRefreshCookie removes the refresh cookie; called on logout and on any
// refresh failure.
func clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/v1/auth",
		MaxAge:   -1,
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
