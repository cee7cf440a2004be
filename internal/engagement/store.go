package engagement

import (
	"context"
	"sync"
	"time"

	"github.com/MSAbhishek22/chameleon-agent/internal/detection"
	"github.com/MSAbhishek22/chameleon-agent/internal/intel"
	"github.com/MSAbhishek22/chameleon-agent/internal/persona"
)

// Store owns all cross-turn conversation state. Operations on the same
// conversation id are serialized; different ids proceed in parallel.
// Callers always receive defensive copies.
type Store interface {
	// Advance applies one inbound sender message: creates the session if
	// absent, increments the turn count, claims the category on first
	// successful classification, appends to the bounded message window,
	// and recomputes the phase.
	Advance(ctx context.Context, id, message string, det detection.Result) (*Session, error)

	// SaveIntel merges newly extracted intelligence into the session under
	// the same per-id serialization as Advance.
	SaveIntel(ctx context.Context, id string, rec intel.Record) (*Session, error)

	// Get returns a copy of the session, or false if none exists.
	Get(ctx context.Context, id string) (*Session, bool, error)
}

type memoryEntry struct {
	mu   sync.Mutex
	sess *Session
}

// MemoryStore is the default in-process store: a mutex-guarded map with a
// per-session lock for the read-modify-write cycle, and an optional TTL
// sweep so idle conversations do not accumulate forever.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a memory store. A zero ttl disables eviction.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) entry(id string) *memoryEntry {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[id]; ok {
		return e
	}
	e = &memoryEntry{sess: newSession(id, s.now())}
	s.entries[id] = e
	return e
}

// Advance implements Store.
func (s *MemoryStore) Advance(ctx context.Context, id, message string, det detection.Result) (*Session, error) {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sess.repair(id, s.now())
	e.sess.advance(message, det, s.now())
	e.sess.Persona = persona.ForCategory(e.sess.Category).Name
	return e.sess.clone(), nil
}

// SaveIntel implements Store.
func (s *MemoryStore) SaveIntel(ctx context.Context, id string, rec intel.Record) (*Session, error) {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sess.repair(id, s.now())
	e.sess.Intel = e.sess.Intel.Merge(rec)
	return e.sess.clone(), nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.clone(), true, nil
}

// StartEviction runs a TTL sweep until ctx is cancelled. No-op when the
// store was built with a zero ttl.
func (s *MemoryStore) StartEviction(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(s.now())
			}
		}
	}()
}

func (s *MemoryStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		e.mu.Lock()
		expired := now.Sub(e.sess.LastSeenAt) > s.ttl
		e.mu.Unlock()
		if expired {
			delete(s.entries, id)
		}
	}
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
