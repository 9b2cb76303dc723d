package session

import (
	"context"
	"sync"
	"time"
)

// Store persists sessions by id. Writes are last-write-wins.
type Store interface {
	Load(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, id string, s Session) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. It is used in dev and when no Redis
// address is configured.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if m.ttl > 0 && m.now().After(e.expiresAt) {
		delete(m.entries, id)
		return Session{}, ErrNotFound
	}
	return e.session, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[id] = memoryEntry{session: s, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.entries {
		if m.ttl > 0 && now.After(e.expiresAt) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
