package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Sayandeep06/WatchTower/internal/config"
	"github.com/Sayandeep06/WatchTower/internal/domain"
	"github.com/Sayandeep06/WatchTower/internal/repository"
	"github.com/Sayandeep06/WatchTower/pkg/hash"
	"github.com/Sayandeep06/WatchTower/pkg/token"
)

const resetTokenBytes = 32

// AuthService orchestrates registration, login with lockout policy, logout,
// refresh and password management, delegating all token and session
// mechanics to the TokenService.
type AuthService struct {
	userRepo     repository.UserRepository
	tokenService *TokenService
	cfg          *config.Config
}

func NewAuthService(userRepo repository.UserRepository, tokenService *TokenService, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokenService: tokenService,
		cfg:          cfg,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

type LoginResult struct {
	Tokens    domain.TokenPair
	User      *domain.User
	SessionID uuid.UUID
}

// Register creates a user with a hashed password. Name is optional.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (uuid.UUID, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return uuid.Nil, err
	}
	if existing != nil {
		return uuid.Nil, domain.ErrEmailTaken
	}

	passwordHash, err := hash.HashPasswordWithCost(req.Password, s.cfg.Auth.BcryptCost)
	if err != nil {
		return uuid.Nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		FullName:     req.Name,
		PasswordHash: &passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index on email is the real guard; the lookup above only
	// gives a friendlier fast path.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return uuid.Nil, err
	}

	return user.ID, nil
}

// Login authenticates the user and opens a session for the device. Unknown
// email and wrong password return the same error so callers cannot probe for
// registered accounts.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, device domain.DeviceContext) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// Lockout is checked before the password so a locked account never
	// leaks whether the password was right.
	if user.Locked(time.Now()) {
		return nil, domain.ErrAccountLocked
	}

	if user.PasswordHash == nil {
		return nil, domain.ErrInvalidCredentials
	}

	valid, err := hash.VerifyPassword(req.Password, *user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !valid {
		if err := s.handleFailedLogin(ctx, user.ID); err != nil {
			return nil, err
		}
		return nil, domain.ErrInvalidCredentials
	}

	if user.FailedLogins > 0 || user.LockedUntil != nil {
		if err := s.userRepo.ResetFailedLogins(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID, device.IPAddress, device.DeviceType); err != nil {
		// Last-login metadata is best-effort and must not fail the login.
		log.Printf("[AUTH_SERVICE] failed to record last login for %s: %v", user.ID, err)
	}

	created, err := s.tokenService.CreateSession(ctx, CreateSessionInput{
		UserID:     user.ID,
		Email:      user.Email,
		Device:     device,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Tokens:    created.Tokens,
		User:      user,
		SessionID: created.SessionID,
	}, nil
}

// Logout revokes the session with the USER_LOGOUT audit reason.
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.tokenService.RevokeSession(ctx, sessionID, domain.RevokeReasonUserLogout)
}

// Refresh exchanges a raw refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, rawRefreshToken string) (*SessionTokens, error) {
	return s.tokenService.RotateRefreshToken(ctx, rawRefreshToken)
}

// ChangePassword verifies the current password, stores a new hash and
// revokes every session of the user to force re-authentication everywhere.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidCredentials
		}
		return err
	}

	if user.PasswordHash == nil {
		return domain.ErrInvalidCredentials
	}

	valid, err := hash.VerifyPassword(currentPassword, *user.PasswordHash)
	if err != nil {
		return err
	}
	if !valid {
		return domain.ErrInvalidCredentials
	}

	newHash, err := hash.HashPasswordWithCost(newPassword, s.cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, newHash); err != nil {
		return err
	}

	if _, err := s.tokenService.RevokeAllUserSessions(ctx, userID, domain.RevokeReasonPasswordChange); err != nil {
		return err
	}

	return nil
}

// ForgotPassword generates a reset token for the account if it exists. The
// caller always gets the same success-shaped answer, so the endpoint cannot
// be used to enumerate registered emails. Delivery of the token is the email
// collaborator's problem, not this core's.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	resetToken, err := token.GenerateHex(resetTokenBytes)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.cfg.Auth.ResetTokenLifetime)
	return s.userRepo.SetPasswordResetToken(ctx, user.ID, hash.HashToken(resetToken), expiresAt)
}

// ResetPassword consumes a valid reset token, stores the new password hash
// and revokes all sessions of the account.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	user, err := s.userRepo.GetByPasswordResetToken(ctx, hash.HashToken(resetToken))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrTokenInvalid
		}
		return err
	}

	newHash, err := hash.HashPasswordWithCost(newPassword, s.cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, newHash); err != nil {
		return err
	}
	if err := s.userRepo.ClearPasswordResetToken(ctx, user.ID); err != nil {
		return err
	}

	if _, err := s.tokenService.RevokeAllUserSessions(ctx, user.ID, domain.RevokeReasonPasswordReset); err != nil {
		return err
	}

	return nil
}

// handleFailedLogin bumps the failed-attempt counter and locks the account
// once the configured threshold is reached. The increment is a single atomic
// statement so concurrent failures cannot under-count.
func (s *AuthService) handleFailedLogin(ctx context.Context, userID uuid.UUID) error {
	count, err := s.userRepo.IncrementFailedLogins(ctx, userID)
	if err != nil {
		return err
	}

	if count >= s.cfg.Auth.MaxFailedLogins {
		until := time.Now().Add(s.cfg.Auth.LockDuration)
		if err := s.userRepo.SetLockout(ctx, userID, until); err != nil {
			return err
		}
	}

	return nil
}
