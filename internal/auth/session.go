package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkurosawa/todoapp-backend/internal/domain"
	"github.com/mkurosawa/todoapp-backend/internal/repository"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "todo_session"

// Identity is the authenticated user context derived from a request's
// session proof.
type Identity struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

// SessionManager creates, resolves and revokes login sessions. A
// session has two halves: the signed token in the cookie (stateless,
// time-bound) and the store row (stateful, revocable). Resolve checks
// both, so deleting rows logs a user out before the token expires.
type SessionManager struct {
	sessions repository.SessionRepository
	codec    *TokenCodec
	cache    *SessionCache
	ttl      time.Duration
}

func NewSessionManager(sessions repository.SessionRepository, codec *TokenCodec, cache *SessionCache, ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: sessions,
		codec:    codec,
		cache:    cache,
		ttl:      ttl,
	}
}

// TTL returns the configured session lifetime.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Create persists a session row for the user and returns it together
// with the signed cookie token.
func (m *SessionManager) Create(ctx context.Context, userID uuid.UUID, ipAddress, userAgent string) (*domain.Session, string, error) {
	session := &domain.Session{
		ID:        uuid.New(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(m.ttl),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	token, err := m.codec.Sign(userID, session.ID, m.ttl)
	if err != nil {
		return nil, "", err
	}

	return session, token, nil
}

// Resolve maps a raw cookie token to an Identity. The signature and
// expiry are checked statelessly first; the session row is then
// confirmed (cache first) so revocation takes effect. Returns
// ErrUnauthenticated for anything that is not a live session.
func (m *SessionManager) Resolve(ctx context.Context, rawToken string) (*Identity, error) {
	if rawToken == "" {
		return nil, domain.ErrUnauthenticated
	}

	userID, sessionID, err := m.codec.Parse(rawToken)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	session := m.cache.Get(sessionID)
	if session == nil {
		session, err = m.sessions.FindByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrUnauthenticated
			}
			return nil, fmt.Errorf("failed to look up session: %w", err)
		}
		m.cache.Set(session)
	}

	now := time.Now()
	if session.Expired(now) {
		m.cache.Delete(sessionID)
		_ = m.sessions.DeleteByID(ctx, sessionID)
		return nil, domain.ErrUnauthenticated
	}

	if session.UserID != userID {
		return nil, domain.ErrUnauthenticated
	}

	return &Identity{UserID: userID, SessionID: sessionID}, nil
}

// Destroy revokes a single session.
func (m *SessionManager) Destroy(ctx context.Context, sessionID uuid.UUID) error {
	m.cache.Delete(sessionID)
	return m.sessions.DeleteByID(ctx, sessionID)
}

// DestroyAllForUser revokes every session the user owns. The cache is
// cleared wholesale; entries for other users repopulate on their next
// request.
func (m *SessionManager) DestroyAllForUser(ctx context.Context, userID uuid.UUID) error {
	m.cache.Clear()
	return m.sessions.DeleteAllForUser(ctx, userID)
}
