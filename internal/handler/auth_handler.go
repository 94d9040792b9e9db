package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Sayandeep06/WatchTower/internal/config"
	"github.com/Sayandeep06/WatchTower/internal/domain"
	"github.com/Sayandeep06/WatchTower/internal/service"
	"github.com/Sayandeep06/WatchTower/pkg/validator"
)

type AuthHandler struct {
	authService *service.AuthService
	validator   *validator.Validator
	cfg         *config.Config
}

func NewAuthHandler(authService *service.AuthService, validator *validator.Validator, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator,
		cfg:         cfg,
	}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	userID, err := h.authService.Register(c.Context(), req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user_id": userID,
	})
}

type loginRequestBody struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
	DeviceType string `json:"device_type" validate:"omitempty,oneof=MOBILE DESKTOP TABLET TV OTHER"`
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequestBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	device := deviceContextFromRequest(c, req.DeviceType)
	result, err := h.authService.Login(c.Context(), service.LoginRequest{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	}, device)
	if err != nil {
		return errorResponse(c, err)
	}

	lifetime := h.cfg.Session.DefaultLifetime
	if req.RememberMe {
		lifetime = h.cfg.Session.RememberMeLifetime
	}
	setRefreshCookie(c, result.Tokens.RefreshToken, lifetime)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"access_token": result.Tokens.AccessToken,
		"token_type":   result.Tokens.TokenType,
		"session_id":   result.SessionID,
		"user": fiber.Map{
			"id":        result.User.ID,
			"email":     result.User.Email,
			"full_name": result.User.FullName,
		},
	})
}

// Refresh rotates the refresh token from the cookie and returns a new pair
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookieName)
	if refreshToken == "" {
		clearRefreshCookie(c)
		return errorResponse(c, domain.ErrTokenInvalid)
	}

	rotated, err := h.authService.Refresh(c.Context(), refreshToken)
	if err != nil {
		clearRefreshCookie(c)
		return errorResponse(c, err)
	}

	// The rotated session keeps its original lifetime policy; the longer
	// cookie window is harmless for short sessions since the server-side
	// expiry governs.
	setRefreshCookie(c, rotated.Tokens.RefreshToken, h.cfg.Session.RememberMeLifetime)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"access_token": rotated.Tokens.AccessToken,
		"token_type":   rotated.Tokens.TokenType,
		"session_id":   rotated.SessionID,
	})
}

// Logout revokes the authenticated session and clears the refresh cookie
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*domain.AccessClaims)
	if !ok {
		return errorResponse(c, domain.ErrTokenInvalid)
	}

	if err := h.authService.Logout(c.Context(), claims.SessionID); err != nil {
		return errorResponse(c, err)
	}

	clearRefreshCookie(c)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// ChangePassword verifies the current password and rotates credentials
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*domain.AccessClaims)
	if !ok {
		return errorResponse(c, domain.ErrTokenInvalid)
	}

	var req struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return errorResponse(c, domain.ErrTokenInvalid)
	}

	if err := h.authService.ChangePassword(c.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return errorResponse(c, err)
	}

	// Every session including this one is revoked; the client must log in
	// again.
	clearRefreshCookie(c)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password changed successfully",
	})
}

// ForgotPassword accepts an email and always answers the same way
// POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.authService.ForgotPassword(c.Context(), req.Email); err != nil {
		// Uniform response: infrastructure failures aside, the caller never
		// learns whether the email exists.
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "If the email exists, a reset link has been sent",
	})
}

// ResetPassword consumes a reset token and sets a new password
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.authService.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password reset successful",
	})
}
