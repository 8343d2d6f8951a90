package cart

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MaxMemorySessions caps how many sessions a MemoryStore holds; the least
// recently used one is evicted first.
const MaxMemorySessions = 100000

type memorySession struct {
	cart      map[uint]int
	favorites []uint
}

// MemoryStore keeps sessions in process memory. It is meant for a single
// replica or for tests; sessions idle for longer than the TTL are dropped
// whether or not they are accessed again.
type MemoryStore struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *memorySession]
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return newMemoryStore(MaxMemorySessions, ttl)
}

func newMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: expirable.NewLRU[string, *memorySession](size, nil, ttl),
	}
}

// Len reports how many sessions are currently held.
func (m *MemoryStore) Len() int {
	return m.sessions.Len()
}

// session returns the live session for id, creating it when create is set.
// Every access re-adds the session, which restarts its TTL. The caller must
// hold mu.
func (m *MemoryStore) session(id string, create bool) *memorySession {
	s, ok := m.sessions.Get(id)
	if !ok {
		if !create {
			return nil
		}
		s = &memorySession{cart: make(map[uint]int)}
	}
	m.sessions.Add(id, s)
	return s
}

func (m *MemoryStore) Cart(_ context.Context, sessionID string) (map[uint]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[uint]int)
	if s := m.session(sessionID, false); s != nil {
		for id, qty := range s.cart {
			out[id] = qty
		}
	}
	return out, nil
}

func (m *MemoryStore) MergeCart(_ context.Context, sessionID string, gameIDs ...uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(sessionID, true)
	for _, id := range gameIDs {
		if _, ok := s.cart[id]; !ok {
			s.cart[id] = 1
		}
	}
	return nil
}

func (m *MemoryStore) RemoveFromCart(_ context.Context, sessionID string, gameID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.session(sessionID, false); s != nil {
		delete(s.cart, gameID)
	}
	return nil
}

func (m *MemoryStore) ClearCart(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.session(sessionID, false); s != nil {
		s.cart = make(map[uint]int)
	}
	return nil
}

func (m *MemoryStore) Favorites(_ context.Context, sessionID string) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []uint{}
	if s := m.session(sessionID, false); s != nil {
		out = append(out, s.favorites...)
	}
	return out, nil
}

func (m *MemoryStore) AddFavorite(_ context.Context, sessionID string, gameID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(sessionID, true)
	for _, id := range s.favorites {
		if id == gameID {
			return nil
		}
	}
	s.favorites = append(s.favorites, gameID)
	return nil
}

func (m *MemoryStore) RemoveFavorite(_ context.Context, sessionID string, gameID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(sessionID, false)
	if s == nil {
		return nil
	}
	for i, id := range s.favorites {
		if id == gameID {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			break
		}
	}
	return nil
}
