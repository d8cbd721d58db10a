// Package cache is the short-lived user context cache.
//
// Entries are keyed "{namespace}:{id}" and hold serialized values, so a reader
// always gets its own copy and a writer replaces an entry wholesale. An entry
// older than the TTL is treated as absent by Get; it is only removed by
// SweepExpired or Invalidate.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/metrics"
)

type Namespace string

const (
	NamespacePhone    Namespace = "phone"
	NamespaceChildren Namespace = "children"
	NamespaceContext  Namespace = "context"
)

type entry struct {
	value     []byte
	owner     string
	createdAt time.Time
}

type Store struct {
	mu      sync.RWMutex
	entries map[string]entry

	ttl     time.Duration
	now     func() time.Time
	log     *zap.Logger
	metrics metrics.Recorder
}

type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithMetrics(m metrics.Recorder) Option {
	return func(s *Store) { s.metrics = m }
}

func New(ttl time.Duration, log *zap.Logger, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
		log:     log.Named("cache"),
		metrics: metrics.Nop{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func Key(ns Namespace, id string) string {
	return string(ns) + ":" + id
}

// Get returns a copy of the value stored under ns/key, or false if it is
// missing or older than the TTL.
func (s *Store) Get(ns Namespace, key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.entries[Key(ns, key)]
	s.mu.RUnlock()

	if ok && s.expired(e) {
		ok = false
	}
	s.metrics.RecordCacheLookup(string(ns), ok)
	if !ok {
		return nil, false
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true
}

// Put stores value under ns/key. The key itself is recorded as the owning user id.
func (s *Store) Put(ns Namespace, key string, value []byte) {
	s.PutOwned(ns, key, key, value)
}

// PutOwned stores value under ns/key on behalf of owner, so that
// Invalidate(owner) also removes entries keyed by something else (a phone number).
func (s *Store) PutOwned(ns Namespace, key, owner string, value []byte) {
	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	s.entries[Key(ns, key)] = entry{value: v, owner: owner, createdAt: s.now()}
	s.mu.Unlock()

	s.log.Debug("cached", zap.String("namespace", string(ns)), zap.String("key", key))
}

// Invalidate removes, across all namespaces, every entry whose id segment or
// owner equals userID. Matching is exact: "u1" never removes "u10".
func (s *Store) Invalidate(userID string) int {
	s.mu.Lock()
	removed := 0
	for k, e := range s.entries {
		if e.owner == userID || idOf(k) == userID {
			delete(s.entries, k)
			removed++
		}
	}
	s.mu.Unlock()

	s.log.Info("invalidated user cache",
		zap.String("user_id", userID),
		zap.Int("removed", removed),
	)
	return removed
}

// SweepExpired deletes all entries older than the TTL and reports how many went.
func (s *Store) SweepExpired() int {
	s.mu.Lock()
	removed := 0
	for k, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, k)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.log.Info("cleared expired cache entries", zap.Int("removed", removed))
	}
	return removed
}

// Len counts stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// RunSweeper calls SweepExpired every interval until ctx is done.
// A non-positive interval disables sweeping; stale entries still read as absent.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		s.log.Warn("cache sweeper disabled", zap.Duration("interval", interval))
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepExpired()
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Store) expired(e entry) bool {
	return s.now().Sub(e.createdAt) > s.ttl
}

func idOf(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[i+1:]
	}
	return key
}
