package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/magabrotheeeer/book-club/internal/models"
)

// MemoryStore хранит сессии в map под RWMutex.
// При IdleTimeout == 0 сессии живут до явного Destroy.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	now         func() time.Time
}

// MemoryOption настраивает MemoryStore.
type MemoryOption func(*MemoryStore)

// WithIdleTimeout задаёт время простоя, после которого сессия считается истёкшей.
func WithIdleTimeout(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.idleTimeout = d
	}
}

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create сохраняет новую сессию для user.
func (s *MemoryStore) Create(ctx context.Context, user models.PublicUser) (*Session, error) {
	const op = "session.MemoryStore.Create"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	id, err := NewID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	now := s.now()
	sess := &Session{ID: id, User: user, CreatedAt: now, LastSeen: now}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	out := *sess
	return &out, nil
}

// Get возвращает копию сессии.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	var out Session
	if ok {
		out = *sess
	}
	s.mu.RUnlock()

	if !ok || s.expired(&out) {
		return nil, ErrNotFound
	}
	return &out, nil
}

// Destroy удаляет сессию.
func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Touch обновляет LastSeen; истёкшая сессия удаляется.
func (s *MemoryStore) Touch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.expired(sess) {
		delete(s.sessions, id)
		return ErrNotFound
	}
	sess.LastSeen = s.now()
	return nil
}

// Sweep удаляет истёкшие сессии и возвращает их количество.
func (s *MemoryStore) Sweep() int {
	if s.idleTimeout <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper периодически вызывает Sweep, пока не отменён ctx.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if s.idleTimeout <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len возвращает количество хранимых сессий, включая ещё не удалённые истёкшие.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) expired(sess *Session) bool {
	return s.idleTimeout > 0 && s.now().Sub(sess.LastSeen) >= s.idleTimeout
}
