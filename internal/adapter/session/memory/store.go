// Package memory provides an in-process session store for development and
// tests.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
)

// Store keeps sessions in a map guarded by one mutex. Sessions never expire;
// the Redis store owns TTL semantics for deployments that need them.
type Store struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

// New constructs an empty Store.
func New() *Store {
	return &Store{sessions: make(map[string]domain.Session)}
}

// GetOrCreate returns the session for userID, creating it when absent.
func (s *Store) GetOrCreate(_ domain.Context, userID string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked(userID), nil
}

// Update applies fn to the session for userID and persists the result. The
// store mutex serializes concurrent turns for the same user.
func (s *Store) Update(_ domain.Context, userID string, fn func(*domain.Session)) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.locked(userID)
	fn(&sess)
	sess.UpdatedAt = time.Now().UTC()
	s.sessions[userID] = sess
	return sess, nil
}

// AppendMessage records an utterance on the session's message log.
func (s *Store) AppendMessage(ctx domain.Context, userID string, role domain.MessageRole, text string) error {
	_, err := s.Update(ctx, userID, func(sess *domain.Session) {
		sess.Messages = append(sess.Messages, domain.Message{
			ID:        uuid.NewString(),
			Role:      role,
			Text:      text,
			CreatedAt: time.Now().UTC(),
		})
	})
	return err
}

// Reset discards the session for userID.
func (s *Store) Reset(_ domain.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *Store) locked(userID string) domain.Session {
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	sess := domain.NewSession(userID)
	s.sessions[userID] = sess
	return sess
}
