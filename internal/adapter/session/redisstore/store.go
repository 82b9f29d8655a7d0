// Package redisstore persists sessions in Redis so conversations survive
// process restarts and expire on their own.
package redisstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
)

const keyPrefix = "session:"

// Store keeps one JSON document per user under a TTL. Read-modify-write is
// serialized per user with in-process locks; deployments that scale this
// service horizontally need sticky routing on user_id.
type Store struct {
	client *redis.Client
	ttl    time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New constructs a Store from a redis URL (redis://host:port/db).
func New(redisURL string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Store{
		client: redis.NewClient(opts),
		ttl:    ttl,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// NewWithClient wraps an existing client; tests use this with miniredis.
func NewWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl, locks: make(map[string]*sync.Mutex)}
}

// Ping checks connectivity. Used by readiness probes.
func (s *Store) Ping(ctx domain.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetOrCreate returns the session for userID, creating it when absent.
func (s *Store) GetOrCreate(ctx domain.Context, userID string) (domain.Session, error) {
	unlock := s.lock(userID)
	defer unlock()
	return s.load(ctx, userID)
}

// Update applies fn to the session for userID under the per-user lock and
// writes it back with a refreshed TTL.
func (s *Store) Update(ctx domain.Context, userID string, fn func(*domain.Session)) (domain.Session, error) {
	unlock := s.lock(userID)
	defer unlock()

	sess, err := s.load(ctx, userID)
	if err != nil {
		return domain.Session{}, err
	}
	fn(&sess)
	sess.UpdatedAt = time.Now().UTC()
	if err := s.save(ctx, sess); err != nil {
		return domain.Session{}, err
	}
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
func (s *Store) Reset(ctx domain.Context, userID string) error {
	unlock := s.lock(userID)
	defer unlock()
	if err := s.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *Store) load(ctx domain.Context, userID string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		sess := domain.NewSession(userID)
		if err := s.save(ctx, sess); err != nil {
			return domain.Session{}, err
		}
		return sess, nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("redis get: %w", err)
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

func (s *Store) save(ctx domain.Context, sess domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.UserID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) lock(userID string) func() {
	s.mu.Lock()
	m, ok := s.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[userID] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}
