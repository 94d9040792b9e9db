package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Sayandeep06/WatchTower/internal/domain"
	"github.com/Sayandeep06/WatchTower/internal/service"
)

type SessionHandler struct {
	tokenService *service.TokenService
}

func NewSessionHandler(tokenService *service.TokenService) *SessionHandler {
	return &SessionHandler{tokenService: tokenService}
}

// List returns the caller's active sessions, most recent activity first
// GET /api/v1/sessions
func (h *SessionHandler) List(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*domain.AccessClaims)
	if !ok {
		return errorResponse(c, domain.ErrTokenInvalid)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return errorResponse(c, domain.ErrTokenInvalid)
	}

	sessions, err := h.tokenService.ListActiveSessions(c.Context(), userID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"sessions": sessions,
		"current":  claims.SessionID,
	})
}

// Revoke terminates one of the caller's sessions
// DELETE /api/v1/sessions/:id
func (h *SessionHandler) Revoke(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*domain.AccessClaims)
	if !ok {
		return errorResponse(c, domain.ErrTokenInvalid)
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid session id",
		})
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return errorResponse(c, domain.ErrTokenInvalid)
	}

	// Only the owner may revoke a session through this endpoint.
	session, err := h.tokenService.SessionByID(c.Context(), sessionID)
	if err != nil {
		return errorResponse(c, err)
	}
	if session.UserID != userID {
		return errorResponse(c, domain.ErrNotFound)
	}

	if err := h.tokenService.RevokeSession(c.Context(), sessionID, domain.RevokeReasonUserLogout); err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Session revoked",
	})
}
