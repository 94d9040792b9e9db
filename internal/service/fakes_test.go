package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sayandeep06/WatchTower/internal/domain"
)

// In-memory repositories mirroring the postgres implementations' semantics,
// including the conditional-update rotation and atomic failed-login counter.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyUser(user), nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	user.PasswordHash = &passwordHash
	user.PasswordChangedAt = &now
	user.UpdatedAt = now
	return nil
}

func (r *fakeUserRepo) IncrementFailedLogins(_ context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	user.FailedLogins++
	return user.FailedLogins, nil
}

func (r *fakeUserRepo) ResetFailedLogins(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.FailedLogins = 0
	user.LockedUntil = nil
	return nil
}

func (r *fakeUserRepo) SetLockout(_ context.Context, id uuid.UUID, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.LockedUntil = &until
	return nil
}

func (r *fakeUserRepo) RecordLogin(_ context.Context, id uuid.UUID, ip string, device domain.DeviceType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	deviceStr := string(device)
	user.LastLoginAt = &now
	user.LastLoginIP = &ip
	user.LastLoginDevice = &deviceStr
	return nil
}

func (r *fakeUserRepo) SetPasswordResetToken(_ context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.PasswordResetTokenHash = &tokenHash
	user.PasswordResetTokenExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) GetByPasswordResetToken(_ context.Context, tokenHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, user := range r.users {
		if user.PasswordResetTokenHash != nil && *user.PasswordResetTokenHash == tokenHash &&
			user.PasswordResetTokenExpiresAt != nil && now.Before(*user.PasswordResetTokenExpiresAt) {
			return copyUser(user), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) ClearPasswordResetToken(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.PasswordResetTokenHash = nil
	user.PasswordResetTokenExpiresAt = nil
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*domain.Session)}
}

func copySession(s *domain.Session) *domain.Session {
	c := *s
	return &c
}

func (r *fakeSessionRepo) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = copySession(session)
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copySession(session), nil
}

func (r *fakeSessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.RefreshTokenHash == tokenHash {
			return copySession(session), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeSessionRepo) Rotate(_ context.Context, oldHash, newHash, newJTI string, expiresAt time.Time) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, session := range r.sessions {
		if session.RefreshTokenHash == oldHash && session.RevokedAt == nil && now.Before(session.ExpiresAt) {
			session.RefreshTokenHash = newHash
			session.AccessTokenJTI = newJTI
			session.ExpiresAt = expiresAt
			session.LastActivityAt = now
			return copySession(session), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeSessionRepo) Revoke(_ context.Context, id uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	if session.RevokedAt != nil {
		return nil
	}
	now := time.Now()
	session.RevokedAt = &now
	session.RevokedReason = &reason
	return nil
}

func (r *fakeSessionRepo) RevokeAllForUser(_ context.Context, userID uuid.UUID, reason string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var count int64
	for _, session := range r.sessions {
		if session.UserID == userID && session.RevokedAt == nil {
			revokedAt := now
			session.RevokedAt = &revokedAt
			session.RevokedReason = &reason
			count++
		}
	}
	return count, nil
}

func (r *fakeSessionRepo) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]*domain.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var summaries []*domain.SessionSummary
	for _, session := range r.sessions {
		if session.UserID != userID || !session.Active(now) {
			continue
		}
		summaries = append(summaries, &domain.SessionSummary{
			ID:               session.ID,
			DeviceType:       session.DeviceType,
			Browser:          session.Browser,
			OS:               session.OS,
			IPAddress:        session.IPAddress,
			LocationCountry:  session.LocationCountry,
			LocationRegion:   session.LocationRegion,
			LocationCity:     session.LocationCity,
			LocationTimezone: session.LocationTimezone,
			LastActivityAt:   session.LastActivityAt,
			CreatedAt:        session.CreatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastActivityAt.After(summaries[j].LastActivityAt)
	})
	return summaries, nil
}

func (r *fakeSessionRepo) DeleteTerminated(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var count int64
	for id, session := range r.sessions {
		if session.RevokedAt != nil || !now.Before(session.ExpiresAt) {
			delete(r.sessions, id)
			count++
		}
	}
	return count, nil
}
