package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"license-admin-go/internal/models"
)

// ErrSessionNotFound is returned by a SessionStore with no state for an operator.
var ErrSessionNotFound = errors.New("session not found")

// SessionState is everything one operator's dashboard holds between actions:
// the last loaded snapshot, the active filter and search, and the user open
// in the detail editor.
type SessionState struct {
	Operator   string               `json:"operator"`
	Users      []*models.UserRecord `json:"users"`
	Loaded     bool                 `json:"loaded"`
	LoadedAt   time.Time            `json:"loadedAt"`
	Filter     Filter               `json:"filter"`
	SearchTerm string               `json:"searchTerm"`
	// SelectedID is the user open in the detail editor, empty when closed.
	SelectedID string `json:"selectedId,omitempty"`
}

// NewSessionState returns an empty session showing every user.
func NewSessionState(operator string) *SessionState {
	return &SessionState{Operator: operator, Filter: FilterAll}
}

// Clone deep-copies the session, snapshot records included.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	c := *s
	if s.Users != nil {
		c.Users = make([]*models.UserRecord, len(s.Users))
		for i, u := range s.Users {
			c.Users[i] = u.Clone()
		}
	}
	return &c
}

// FindUser returns the snapshot record with the given id.
func (s *SessionState) FindUser(id string) (*models.UserRecord, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

// SessionStore persists operator sessions between requests.
type SessionStore interface {
	Get(ctx context.Context, operator string) (*SessionState, error)
	Save(ctx context.Context, state *SessionState) error
	Delete(ctx context.Context, operator string) error
}

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

// NewMemorySessionStore keeps sessions in process memory. State is lost on restart.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string]*SessionState)}
}

func (m *memorySessionStore) Get(_ context.Context, operator string) (*SessionState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[operator]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *memorySessionStore) Save(_ context.Context, state *SessionState) error {
	if state == nil || state.Operator == "" {
		return errors.New("session state requires an operator")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[state.Operator] = state.Clone()
	return nil
}

func (m *memorySessionStore) Delete(_ context.Context, operator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, operator)
	return nil
}
