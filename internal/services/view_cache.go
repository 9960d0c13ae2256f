package services

import (
	"sync"
	"time"

	"financas/internal/analytics"
	"financas/internal/cache"
	"financas/internal/core"
)

const (
	keyTransactions = "transactions"
	keyCategories   = "categories"
)

// ViewCache keeps the last fetched transactions and categories per session so
// that filter changes re-run the pipeline without a network round trip.
//
// Every invalidation moves the session to a new generation. A fetch reads the
// generation before going to the network and its result is stored only if no
// invalidation happened in between.
type ViewCache struct {
	transactions *cache.LRUCache[[]analytics.RawTransaction]
	categories   *cache.LRUCache[[]core.Category]

	mu      sync.Mutex
	nextGen uint64
	gens    map[string]uint64
}

func NewViewCache(maxSessions int, ttl time.Duration) *ViewCache {
	return &ViewCache{
		transactions: cache.NewLRUCache[[]analytics.RawTransaction](maxSessions, ttl),
		categories:   cache.NewLRUCache[[]core.Category](maxSessions, ttl),
		gens:         make(map[string]uint64),
	}
}

// Generation returns the session's current generation.
func (v *ViewCache) Generation(sessionID string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	gen, ok := v.gens[sessionID]
	if !ok {
		v.nextGen++
		gen = v.nextGen
		v.gens[sessionID] = gen
	}
	return gen
}

func (v *ViewCache) bump(sessionID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextGen++
	v.gens[sessionID] = v.nextGen
}

// current reports whether gen is still the session's generation. The caller
// must hold v.mu.
func (v *ViewCache) current(sessionID string, gen uint64) bool {
	cur, ok := v.gens[sessionID]
	return ok && cur == gen
}

// Register hands both caches to m for periodic expiry sweeps.
func (v *ViewCache) Register(m *cache.Manager) {
	m.Register(v.transactions)
	m.Register(v.categories)
}

func cacheKey(sessionID, view string) string {
	return sessionID + ":" + view
}

func (v *ViewCache) Transactions(sessionID string) ([]analytics.RawTransaction, bool) {
	return v.transactions.Get(cacheKey(sessionID, keyTransactions))
}

// SetTransactions stores raws fetched at generation gen. It reports false and
// stores nothing when the session was invalidated since.
func (v *ViewCache) SetTransactions(sessionID string, gen uint64, raws []analytics.RawTransaction) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.current(sessionID, gen) {
		return false
	}
	v.transactions.Set(cacheKey(sessionID, keyTransactions), raws)
	return true
}

func (v *ViewCache) Categories(sessionID string) ([]core.Category, bool) {
	return v.categories.Get(cacheKey(sessionID, keyCategories))
}

func (v *ViewCache) SetCategories(sessionID string, gen uint64, cats []core.Category) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.current(sessionID, gen) {
		return false
	}
	v.categories.Set(cacheKey(sessionID, keyCategories), cats)
	return true
}

// InvalidateTransactions drops the session's cached transactions after a mutation.
func (v *ViewCache) InvalidateTransactions(sessionID string) {
	v.bump(sessionID)
	v.transactions.Delete(cacheKey(sessionID, keyTransactions))
}

// Invalidate drops everything cached for the session, including its
// generation, so fetches still in flight for it store nothing.
func (v *ViewCache) Invalidate(sessionID string) {
	v.mu.Lock()
	delete(v.gens, sessionID)
	v.mu.Unlock()
	v.transactions.DeletePrefix(sessionID + ":")
	v.categories.DeletePrefix(sessionID + ":")
}

// Entries is the number of cached views across all sessions.
func (v *ViewCache) Entries() int {
	return v.transactions.Size() + v.categories.Size()
}
