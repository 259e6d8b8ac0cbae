package auth

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mkurosawa/todoapp-backend/internal/domain"
)

// SessionCache keeps recently resolved sessions in memory so the auth
// gate does not hit the store on every request. Entries are advisory:
// a revoked session only lingers until its cache entry expires, which
// is why the TTL is kept short relative to the session lifetime.
type SessionCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*cachedSession
	ttl     time.Duration
	maxSize int

	hits   int64
	misses int64
}

type cachedSession struct {
	session  *domain.Session
	cachedAt time.Time
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// NewSessionCache creates a cache with the given entry TTL and size
// bound. Zero values fall back to 1 minute and 500 entries.
func NewSessionCache(ttl time.Duration, maxSize int) *SessionCache {
	if ttl == 0 {
		ttl = time.Minute
	}
	if maxSize == 0 {
		maxSize = 500
	}
	return &SessionCache{
		entries: make(map[uuid.UUID]*cachedSession),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get returns the cached session or nil on a miss.
func (c *SessionCache) Get(id uuid.UUID) *domain.Session {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok || time.Since(entry.cachedAt) > c.ttl {
		if ok {
			c.Delete(id)
		}
		atomic.AddInt64(&c.misses, 1)
		return nil
	}

	atomic.AddInt64(&c.hits, 1)
	return entry.session
}

// Set stores a session, evicting an arbitrary entry when full.
func (c *SessionCache) Set(session *domain.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}

	c.entries[session.ID] = &cachedSession{session: session, cachedAt: time.Now()}
}

// Delete removes a single session from the cache.
func (c *SessionCache) Delete(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Clear drops every entry. Used when all sessions of a user are
// revoked at once; per-user indexing is not worth the bookkeeping.
func (c *SessionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uuid.UUID]*cachedSession)
}

// Stats returns hit/miss counters and the current size.
func (c *SessionCache) Stats() CacheStats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	return CacheStats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
		Size:   size,
	}
}
