package usecase_test

import (
	"errors"
	"sync"

	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
)

// fakeAI replays scripted completions, or fails when Err is set.
type fakeAI struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Prompts   []string
}

func (f *fakeAI) Complete(_ domain.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts = append(f.Prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Responses) == 0 {
		return "", errors.New("fakeAI: no scripted response")
	}
	resp := f.Responses[0]
	if len(f.Responses) > 1 {
		f.Responses = f.Responses[1:]
	}
	return resp, nil
}

// fakeIndex returns scripted similarity hits and records the last query.
type fakeIndex struct {
	Docs      []domain.ScoredDocument
	Err       error
	LastQuery string
	LastK     int
}

func (f *fakeIndex) SimilaritySearch(_ domain.Context, query string, k int) ([]domain.ScoredDocument, error) {
	f.LastQuery = query
	f.LastK = k
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Docs) > k {
		return f.Docs[:k], nil
	}
	return f.Docs, nil
}

// mapStore is a minimal in-test session store.
type mapStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newMapStore() *mapStore {
	return &mapStore{sessions: make(map[string]domain.Session)}
}

func (s *mapStore) GetOrCreate(_ domain.Context, userID string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = domain.NewSession(userID)
		s.sessions[userID] = sess
	}
	return sess, nil
}

func (s *mapStore) Update(_ domain.Context, userID string, fn func(*domain.Session)) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = domain.NewSession(userID)
	}
	fn(&sess)
	s.sessions[userID] = sess
	return sess, nil
}

func (s *mapStore) AppendMessage(ctx domain.Context, userID string, role domain.MessageRole, text string) error {
	_, err := s.Update(ctx, userID, func(sess *domain.Session) {
		sess.Messages = append(sess.Messages, domain.Message{Role: role, Text: text})
	})
	return err
}

func (s *mapStore) Reset(_ domain.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func doc(title, company, location, content string, score float64) domain.ScoredDocument {
	return domain.ScoredDocument{
		Content:  content,
		Metadata: map[string]string{"title": title, "company": company, "location": location},
		Score:    score,
	}
}

func candidate(title, company, location string, score float64) domain.JobCandidate {
	return domain.JobCandidate{Title: title, Company: company, Location: location, Score: score}
}
