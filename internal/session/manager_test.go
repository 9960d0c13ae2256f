package session

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]Session
}

func newMemStore() *memStore { return &memStore{data: map[string]Session{}} }

func (m *memStore) SaveSession(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID] = s
	return nil
}

func (m *memStore) GetSession(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *memStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return ErrNotFound
	}
	delete(m.data, id)
	return nil
}

func (m *memStore) ListSessions(_ context.Context) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Session, 0, len(m.data))
	for _, s := range m.data {
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.data {
		if s.Expired(now) {
			delete(m.data, id)
			n++
		}
	}
	return n, nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    1,
		"email": "ana@example.com",
		"exp":   exp.Unix(),
	}).SignedString([]byte("remote-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	got, err := TokenExpiry(signedToken(t, exp))
	if err != nil || !got.Equal(exp) {
		t.Fatalf("expected %v, got %v (err=%v)", exp, got, err)
	}
	if _, err := TokenExpiry("not-a-jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	store := newMemStore()
	m := NewManager(store)
	m.SetClock(func() time.Time { return now })

	s, err := m.Begin(ctx, Identity{Token: signedToken(t, now.Add(time.Hour)), UserID: 1, Email: "ana@example.com", Name: "Ana"})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if s.ID == "" || !s.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected session %+v", s)
	}

	got, err := m.Resolve(ctx, s.ID)
	if err != nil || got.Email != "ana@example.com" {
		t.Fatalf("Resolve: %+v err=%v", got, err)
	}

	// A fresh manager sees the persisted session after Init.
	restarted := NewManager(store)
	restarted.SetClock(func() time.Time { return now })
	if err := restarted.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := restarted.Resolve(ctx, s.ID); err != nil {
		t.Fatalf("restored Resolve: %v", err)
	}

	if err := m.End(ctx, s.ID); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := m.End(ctx, s.ID); err != nil {
		t.Fatalf("second End should be a no-op, got %v", err)
	}
	if _, err := m.Resolve(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_ExpiredSessionIsEnded(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	store := newMemStore()
	m := NewManager(store)
	m.SetClock(func() time.Time { return now })

	s, err := m.Begin(ctx, Identity{Token: signedToken(t, now.Add(time.Minute))})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := m.Resolve(ctx, s.ID); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if _, err := store.GetSession(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("expired session should be removed from the store")
	}

	active, err := m.Active(ctx)
	if err != nil || len(active) != 0 {
		t.Fatalf("expected no active sessions, got %v err=%v", active, err)
	}
}

func TestManager_BeginRejectsExpiredToken(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	m := NewManager(newMemStore())
	m.SetClock(func() time.Time { return now })
	if _, err := m.Begin(context.Background(), Identity{Token: signedToken(t, now.Add(-time.Second))}); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestManager_OpaqueTokenGetsDefaultTTL(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	m := NewManager(newMemStore())
	m.SetClock(func() time.Time { return now })
	s, err := m.Begin(context.Background(), Identity{Token: "opaque"})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if !s.ExpiresAt.Equal(now.Add(DefaultTTL)) {
		t.Fatalf("expected default TTL, got %v", s.ExpiresAt)
	}
}

func TestCookieRoundTrip(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(Cookie(Session{ID: "abc"}, false))
	if got := IDFromRequest(r); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if c := ClearCookie(true); c.MaxAge != -1 || !c.Secure || !c.HttpOnly {
		t.Fatalf("unexpected clear cookie %+v", c)
	}
	ctx := WithSession(context.Background(), &Session{ID: "abc"})
	if s, ok := FromContext(ctx); !ok || s.ID != "abc" {
		t.Fatal("session not found in context")
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("empty context should have no session")
	}
}
