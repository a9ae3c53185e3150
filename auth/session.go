package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"notes-api/db"
	"notes-api/models"
)

// ErrInvalidCredentials does not say whether the email or the password was
// wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

type session struct {
	actor     models.Actor
	expiresAt time.Time
}

// Manager owns the server-side session table. A session snapshots the
// user's id and admin flag at login; later changes to the user record do not
// reach an open session.
type Manager struct {
	store  db.Store
	scheme PasswordScheme
	signer *TokenSigner
	ttl    time.Duration
	logger *slog.Logger

	// now is swapped in tests
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]session
}

type Options struct {
	Store  db.Store
	Scheme PasswordScheme
	Secret string
	TTL    time.Duration
	Logger *slog.Logger
}

func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scheme := opts.Scheme
	if scheme == nil {
		scheme = PlainScheme{}
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		store:    opts.Store,
		scheme:   scheme,
		signer:   NewTokenSigner(opts.Secret),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]session),
	}
}

// Scheme is the password scheme credentials are checked with.
func (m *Manager) Scheme() PasswordScheme {
	return m.scheme
}

// Login checks the credentials and opens a session, returning its token.
func (m *Manager) Login(email, password string) (string, models.User, error) {
	user, found, err := m.store.FindUserByEmail(email)
	if err != nil {
		return "", models.User{}, fmt.Errorf("look up user: %w", err)
	}
	if !found || !m.scheme.Verify(user.Password, password) {
		return "", models.User{}, ErrInvalidCredentials
	}

	id := uuid.NewString()
	expiresAt := m.now().Add(m.ttl)
	token, err := m.signer.Sign(id, expiresAt)
	if err != nil {
		return "", models.User{}, fmt.Errorf("sign session token: %w", err)
	}

	m.mu.Lock()
	m.sessions[id] = session{
		actor:     models.Actor{UserID: user.ID, IsAdmin: user.IsAdmin},
		expiresAt: expiresAt,
	}
	m.mu.Unlock()

	return token, user, nil
}

// Logout ends the session behind token. Unknown or invalid tokens are
// ignored.
func (m *Manager) Logout(token string) {
	id, err := m.signer.Parse(token)
	if err != nil {
		return
	}
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Resolve maps a token to the actor it was issued for, or Anonymous.
func (m *Manager) Resolve(token string) models.Actor {
	if token == "" {
		return models.Anonymous
	}
	id, err := m.signer.Parse(token)
	if err != nil {
		m.logger.Debug("session token rejected", "error", err)
		return models.Anonymous
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || !m.now().Before(s.expiresAt) {
		return models.Anonymous
	}
	return s.actor
}

// Sweep drops expired sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if !now.Before(s.expiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}

// Active reports the number of sessions currently held.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
