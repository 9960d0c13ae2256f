package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL applies when a token carries no readable exp claim. It matches the
// lifetime the remote API gives its tokens.
const DefaultTTL = 12 * time.Hour

// Store persists sessions across restarts.
type Store interface {
	SaveSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	DeleteSession(ctx context.Context, id string) error
	ListSessions(ctx context.Context) ([]Session, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Identity is what a successful login returns about the user.
type Identity struct {
	Token  string
	UserID int64
	Email  string
	Name   string
}

type Manager struct {
	store Store
	now   func() time.Time

	mu       sync.RWMutex
	sessions map[string]Session
}

func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

// SetClock overrides the time source. Tests only.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Init drops expired sessions and warms the in-memory index from the store.
func (m *Manager) Init(ctx context.Context) error {
	removed, err := m.store.DeleteExpiredSessions(ctx, m.now())
	if err != nil {
		return fmt.Errorf("purge expired sessions: %w", err)
	}
	list, err := m.store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	m.mu.Lock()
	for _, s := range list {
		m.sessions[s.ID] = s
	}
	m.mu.Unlock()
	slog.InfoContext(ctx, "Sessions restored", "count", len(list), "expired_removed", removed)
	return nil
}

// Begin creates and persists a session for a freshly authenticated user.
func (m *Manager) Begin(ctx context.Context, id Identity) (Session, error) {
	if id.Token == "" {
		return Session{}, errors.New("empty token")
	}
	now := m.now()
	exp, err := TokenExpiry(id.Token)
	if err != nil {
		slog.WarnContext(ctx, "Token expiry unreadable, using default TTL", "error", err)
		exp = now.Add(DefaultTTL)
	}
	s := Session{
		ID:        uuid.NewString(),
		Token:     id.Token,
		UserID:    id.UserID,
		Email:     id.Email,
		Name:      id.Name,
		CreatedAt: now.UTC(),
		ExpiresAt: exp.UTC(),
	}
	if s.Expired(now) {
		return Session{}, ErrExpired
	}
	if err := m.store.SaveSession(ctx, s); err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Resolve looks a session up by id. Expired sessions are ended and reported as ErrExpired.
func (m *Manager) Resolve(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		var err error
		s, err = m.store.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.sessions[id] = s
		m.mu.Unlock()
	}
	if s.Expired(m.now()) {
		if err := m.End(ctx, id); err != nil {
			slog.WarnContext(ctx, "Failed to end expired session", "error", err)
		}
		return nil, ErrExpired
	}
	return &s, nil
}

// End removes the session everywhere. Ending an unknown session is not an error.
func (m *Manager) End(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	if err := m.store.DeleteSession(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Active returns every persisted, unexpired session. Workers use it to act on
// behalf of logged-in users.
func (m *Manager) Active(ctx context.Context) ([]Session, error) {
	list, err := m.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	now := m.now()
	out := list[:0]
	for _, s := range list {
		if !s.Expired(now) {
			out = append(out, s)
		}
	}
	return out, nil
}
