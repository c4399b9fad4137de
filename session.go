package tripseek

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tripseek/tripseek/config"
	"github.com/tripseek/tripseek/schema"
)

// ChatMessage is a single conversation turn.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session holds a conversation plus the trip features extracted from
// it so later turns can reuse destination, dates and preferences.
type Session struct {
	ID        string               `json:"session_id"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Messages  []ChatMessage        `json:"messages"`
	Features  *schema.UserFeatures `json:"features,omitempty"`
}

// SessionStore abstracts session persistence.
type SessionStore interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, bool)
	Delete(ctx context.Context, id string) bool
	AddMessage(ctx context.Context, id string, msg ChatMessage) bool
	// RememberFeatures stores the latest extracted trip features on a session.
	RememberFeatures(ctx context.Context, id string, features *schema.UserFeatures) bool
	// ListRange returns sessions from offset with limit, newest first.
	ListRange(ctx context.Context, offset, limit int) []*Session
	// Clean keeps at most max sessions by recency.
	Clean(ctx context.Context, max int) error
}

// NewSessionStore builds the configured store, defaulting to memory.
func NewSessionStore(cfg *config.SessionConfig) (SessionStore, error) {
	if cfg == nil || cfg.Store == "" || cfg.Store == "inmemory" {
		return NewMemSessionStore(), nil
	}
	return NewRedisSessionStore(cfg)
}

// MemSessionStore keeps sessions in process memory.
type MemSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemSessionStore() *MemSessionStore {
	return &MemSessionStore{sessions: make(map[string]*Session)}
}

func (m *MemSessionStore) Create(_ context.Context) (*Session, error) {
	now := time.Now()
	s := &Session{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now, Messages: []ChatMessage{}}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

func (m *MemSessionStore) Get(_ context.Context, id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	return s, ok
}

func (m *MemSessionStore) Delete(_ context.Context, id string) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	return ok
}

func (m *MemSessionStore) AddMessage(_ context.Context, id string, msg ChatMessage) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		s.Messages = append(s.Messages, msg)
		s.UpdatedAt = time.Now()
	}
	return ok
}

func (m *MemSessionStore) RememberFeatures(_ context.Context, id string, features *schema.UserFeatures) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		s.Features = features
		s.UpdatedAt = time.Now()
	}
	return ok
}

func (m *MemSessionStore) ListRange(_ context.Context, offset, limit int) []*Session {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return []*Session{}
	}
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	if offset >= len(all) {
		return []*Session{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func (m *MemSessionStore) Clean(_ context.Context, max int) error {
	if max <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) <= max {
		return nil
	}
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	for _, s := range all[max:] {
		delete(m.sessions, s.ID)
	}
	return nil
}
