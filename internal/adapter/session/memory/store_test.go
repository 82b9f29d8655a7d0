package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-job-assistant/internal/adapter/session/memory"
	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
)

func TestStore_GetOrCreate(t *testing.T) {
	t.Parallel()
	store := memory.New()

	sess, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, domain.StateCollecting, sess.State)
	assert.Zero(t, sess.Attempts)

	// A second call returns the same session, not a fresh one.
	_, err = store.Update(context.Background(), "u1", func(s *domain.Session) { s.Attempts = 2 })
	require.NoError(t, err)
	sess, err = store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, sess.Attempts)
}

func TestStore_UpdatePersists(t *testing.T) {
	t.Parallel()
	store := memory.New()

	sess, err := store.Update(context.Background(), "u1", func(s *domain.Session) {
		s.Intent.Set(domain.FieldRole, "Data Analyst")
		s.State = domain.StateComplete
	})
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", sess.Intent.Role)
	assert.False(t, sess.UpdatedAt.IsZero())

	got, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateComplete, got.State)
}

func TestStore_AppendMessage(t *testing.T) {
	t.Parallel()
	store := memory.New()

	require.NoError(t, store.AppendMessage(context.Background(), "u1", domain.RoleUser, "hello"))
	require.NoError(t, store.AppendMessage(context.Background(), "u1", domain.RoleAssistant, "hi, what role?"))

	sess, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, domain.RoleUser, sess.Messages[0].Role)
	assert.NotEmpty(t, sess.Messages[0].ID)
	assert.Equal(t, "hi, what role?", sess.Messages[1].Text)
}

func TestStore_Reset(t *testing.T) {
	t.Parallel()
	store := memory.New()

	_, err := store.Update(context.Background(), "u1", func(s *domain.Session) { s.State = domain.StateFailed })
	require.NoError(t, err)
	require.NoError(t, store.Reset(context.Background(), "u1"))

	sess, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateCollecting, sess.State)
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	t.Parallel()
	store := memory.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Update(context.Background(), "u1", func(s *domain.Session) { s.Attempts++ })
		}()
	}
	wg.Wait()

	sess, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 50, sess.Attempts)
}
