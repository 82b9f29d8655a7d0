package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-job-assistant/internal/config"
	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
	"github.com/fairyhunter13/ai-job-assistant/internal/usecase"
)

func TestFollowupGenerator_IsBlocking(t *testing.T) {
	t.Parallel()
	g := usecase.NewFollowupGenerator(&fakeAI{}, config.DefaultPrompts())

	assert.True(t, g.IsBlocking(domain.Intent{}))
	assert.True(t, g.IsBlocking(domain.Intent{Role: "analyst", Location: "NYC"}))
	// Required fields known: optional gaps do not block.
	assert.False(t, g.IsBlocking(domain.Intent{Role: "analyst", Location: "NYC", Salary: "100k"}))
}

func TestFollowupGenerator_Ask(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{Responses: []string{"  What city would you like to work in?  "}}
	g := usecase.NewFollowupGenerator(ai, config.DefaultPrompts())

	q, ok := g.Ask(context.Background(), domain.Intent{Role: "analyst"})
	assert.True(t, ok)
	assert.Equal(t, "What city would you like to work in?", q)
	// The prompt names the missing fields.
	assert.Contains(t, ai.Prompts[0], "location")
	assert.Contains(t, ai.Prompts[0], "salary")
	assert.NotContains(t, ai.Prompts[0], "{missing_fields}")
}

func TestFollowupGenerator_Ask_NothingMissing(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{}
	g := usecase.NewFollowupGenerator(ai, config.DefaultPrompts())
	full := domain.Intent{Role: "r", Location: "l", Salary: "s", Domain: "d", Remote: "no"}
	q, ok := g.Ask(context.Background(), full)
	assert.False(t, ok)
	assert.Empty(t, q)
	assert.Empty(t, ai.Prompts) // no service call when nothing is missing
}

func TestFollowupGenerator_Ask_FailSoft(t *testing.T) {
	t.Parallel()
	g := usecase.NewFollowupGenerator(&fakeAI{Err: errors.New("boom")}, config.DefaultPrompts())
	q, ok := g.Ask(context.Background(), domain.Intent{})
	assert.False(t, ok)
	assert.Empty(t, q)

	// A blank answer also counts as "no question".
	g = usecase.NewFollowupGenerator(&fakeAI{Responses: []string{"   "}}, config.DefaultPrompts())
	q, ok = g.Ask(context.Background(), domain.Intent{})
	assert.False(t, ok)
	assert.Empty(t, q)
}
