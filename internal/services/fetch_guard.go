// Package services coordinates remote fetches, per-session caching and the
// analytics pipeline behind each view.
package services

import (
	"strings"
	"sync"
)

// FetchGuard orders overlapping fetches for the same view. Each fetch takes a
// token with Begin; only the holder of the latest token may publish its result.
type FetchGuard struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewFetchGuard() *FetchGuard {
	return &FetchGuard{latest: make(map[string]uint64)}
}

// Begin records a new fetch for key and returns its token.
func (g *FetchGuard) Begin(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latest[key]++
	return g.latest[key]
}

// Accept reports whether token still belongs to the newest fetch for key.
func (g *FetchGuard) Accept(key string, token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest[key] == token
}

// Forget drops every key with the given prefix, typically a session id on logout.
func (g *FetchGuard) Forget(prefix string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key := range g.latest {
		if strings.HasPrefix(key, prefix) {
			delete(g.latest, key)
		}
	}
}
