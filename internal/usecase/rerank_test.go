package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-job-assistant/internal/config"
	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
	"github.com/fairyhunter13/ai-job-assistant/internal/usecase"
)

func newRerank(ai domain.CompletionClient, scheme usecase.RerankScheme) usecase.RerankService {
	return usecase.NewRerankService(ai, scheme, config.DefaultPrompts(), "gpt-4o", 6000)
}

func threeCandidates() []domain.JobCandidate {
	return []domain.JobCandidate{
		candidate("Data Analyst", "Acme", "NYC", 0.10),
		candidate("Data Scientist", "Globex", "Remote", 0.20),
		candidate("ML Engineer", "Initech", "Austin", 0.30),
	}
}

func TestParseScheme(t *testing.T) {
	t.Parallel()
	scheme, err := usecase.ParseScheme(" Index ")
	require.NoError(t, err)
	assert.Equal(t, usecase.SchemeIndex, scheme)

	scheme, err = usecase.ParseScheme("match")
	require.NoError(t, err)
	assert.Equal(t, usecase.SchemeMatch, scheme)

	_, err = usecase.ParseScheme("fancy")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRerank_IndexScheme(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{Responses: []string{
		"```json\n[{\"rank\":1,\"job_number\":3,\"reason\":\"closest salary fit\"},{\"rank\":2,\"job_number\":1,\"reason\":\"title match\"}]\n```",
	}}
	svc := newRerank(ai, usecase.SchemeIndex)

	got := svc.Rerank(context.Background(), threeCandidates(), domain.Intent{Role: "Analyst"}, 5)
	require.Len(t, got, 2)
	assert.Equal(t, "ML Engineer", got[0].Title)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "closest salary fit", got[0].Reason)
	assert.Equal(t, "Data Analyst", got[1].Title)

	// The prompt carried the numbered candidate lines and the intent.
	require.Len(t, ai.Prompts, 1)
	assert.Contains(t, ai.Prompts[0], "1. Data Analyst at Acme")
	assert.Contains(t, ai.Prompts[0], "Role: Analyst")
}

func TestRerank_IndexSchemeSkipsOutOfRange(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{Responses: []string{
		`[{"rank":1,"job_number":99,"reason":"hallucinated"},{"rank":2,"job_number":2,"reason":"real"},{"rank":3,"job_number":0,"reason":"also bogus"}]`,
	}}
	svc := newRerank(ai, usecase.SchemeIndex)

	got := svc.Rerank(context.Background(), threeCandidates(), domain.Intent{}, 10)
	require.Len(t, got, 1)
	assert.Equal(t, "Data Scientist", got[0].Title)
	assert.Equal(t, "real", got[0].Reason)
}

func TestRerank_TruncatesToTopN(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{Responses: []string{
		`[{"rank":1,"job_number":1},{"rank":2,"job_number":2},{"rank":3,"job_number":3}]`,
	}}
	svc := newRerank(ai, usecase.SchemeIndex)

	got := svc.Rerank(context.Background(), threeCandidates(), domain.Intent{}, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "Data Analyst", got[0].Title)
	assert.Equal(t, "Data Scientist", got[1].Title)
}

func TestRerank_MatchScheme(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{Responses: []string{
		`[{"rank":1,"title":"data scientist","company":"globex","reason":"best fit"},` +
			`{"rank":2,"title":"Quant Trader","company":"Hudson","reason":"invented"}]`,
	}}
	svc := newRerank(ai, usecase.SchemeMatch)

	got := svc.Rerank(context.Background(), threeCandidates(), domain.Intent{}, 5)
	require.Len(t, got, 2)
	// Case-insensitive fuzzy resolution against the real candidate.
	assert.Equal(t, "Data Scientist", got[0].Title)
	assert.Equal(t, "Globex", got[0].Company)
	assert.Equal(t, 0.20, got[0].Score)
	// Unmatched selections survive as placeholders with a zero score.
	assert.Equal(t, "Quant Trader", got[1].Title)
	assert.Equal(t, "Hudson", got[1].Company)
	assert.Zero(t, got[1].Score)
	assert.Equal(t, "invented", got[1].Reason)
}

func TestRerank_NeverFails(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		ai   *fakeAI
	}{
		{name: "completion error", ai: &fakeAI{Err: errors.New("upstream 503")}},
		{name: "empty response", ai: &fakeAI{Responses: []string{""}}},
		{name: "prose response", ai: &fakeAI{Responses: []string{"Here are some great jobs for you!"}}},
		{name: "broken json", ai: &fakeAI{Responses: []string{`[{"rank":1,`}}},
		{name: "json but not a list", ai: &fakeAI{Responses: []string{`{"rank":1,"job_number":2}`}}},
		{name: "empty list", ai: &fakeAI{Responses: []string{`[]`}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := newRerank(tc.ai, usecase.SchemeIndex)
			got := svc.Rerank(context.Background(), threeCandidates(), domain.Intent{}, 2)
			// Fallback: first topN in similarity order, sequential ranks.
			require.Len(t, got, 2)
			assert.Equal(t, "Data Analyst", got[0].Title)
			assert.Equal(t, 1, got[0].Rank)
			assert.Equal(t, "Data Scientist", got[1].Title)
			assert.Equal(t, 2, got[1].Rank)
			for _, job := range got {
				assert.Contains(t, strings.ToLower(job.Reason), "similarity")
			}
		})
	}
}

func TestRerank_FallbackKeepsAllWhenFewerThanTopN(t *testing.T) {
	t.Parallel()
	svc := newRerank(&fakeAI{Responses: []string{""}}, usecase.SchemeIndex)

	got := svc.Rerank(context.Background(), threeCandidates(), domain.Intent{}, 10)
	require.Len(t, got, 3)
	assert.Equal(t, "Similarity match (score 0.1000)", got[0].Reason)
	assert.Equal(t, 3, got[2].Rank)
}

func TestRerank_EmptyCandidates(t *testing.T) {
	t.Parallel()
	ai := &fakeAI{}
	svc := newRerank(ai, usecase.SchemeIndex)

	got := svc.Rerank(context.Background(), nil, domain.Intent{}, 10)
	assert.Empty(t, got)
	// No completion call is made for an empty candidate set.
	assert.Empty(t, ai.Prompts)
}

func TestRerank_CapsInputAtThirty(t *testing.T) {
	t.Parallel()
	candidates := make([]domain.JobCandidate, 0, 40)
	for i := 0; i < 40; i++ {
		candidates = append(candidates, candidate("Role", "Co", "Loc", float64(i)))
	}
	ai := &fakeAI{Responses: []string{`[{"rank":1,"job_number":31,"reason":"beyond the cap"}]`}}
	svc := newRerank(ai, usecase.SchemeIndex)

	// Selection 31 points past the 30-candidate cap and must be dropped.
	got := svc.Rerank(context.Background(), candidates, domain.Intent{}, 10)
	assert.Empty(t, got)
	require.Len(t, ai.Prompts, 1)
	assert.Contains(t, ai.Prompts[0], "30. Role at Co")
	assert.NotContains(t, ai.Prompts[0], "31. Role at Co")
}

func TestRerank_PromptRespectsTokenBudget(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("data wrangling ", 200)
	candidates := []domain.JobCandidate{
		{Title: "First", Company: "Acme", Location: long, Score: 0.1},
		{Title: "Second", Company: "Globex", Location: long, Score: 0.2},
	}
	ai := &fakeAI{Responses: []string{`[{"rank":1,"job_number":1,"reason":"fits"}]`}}
	svc := newRerank(ai, usecase.SchemeIndex)
	svc.TokenLimit = 50

	got := svc.Rerank(context.Background(), candidates, domain.Intent{}, 10)
	require.Len(t, got, 1)
	// The first candidate always makes it into the prompt; later ones are
	// dropped once the budget runs out.
	require.Len(t, ai.Prompts, 1)
	assert.Contains(t, ai.Prompts[0], "1. First at Acme")
	assert.NotContains(t, ai.Prompts[0], "2. Second at Globex")
}
