package session

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/taskflow-api/internal/application/ports"
)

// MemoryStore implementa ports.SessionStore en proceso (desarrollo y tests,
// o cuando no hay Redis configurado con STORAGE_DRIVER=memory).
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

type memorySession struct {
	data      Data
	expiresAt time.Time
}

var _ ports.SessionStore = (*MemoryStore)(nil)

// NewMemoryStore crea un store vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memorySession), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, sessionID, userID, tenantID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge()
	s.sessions[sessionID] = memorySession{
		data:      Data{UserID: userID, TenantID: tenantID, CreatedAt: s.now().UTC()},
		expiresAt: expiresAt,
	}
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	return ok && s.now().Before(sess.expiresAt), nil
}

func (s *MemoryStore) Revoke(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// purge descarta sesiones expiradas; se llama con mu tomado.
func (s *MemoryStore) purge() {
	now := s.now()
	for id, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
