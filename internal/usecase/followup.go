package usecase

import (
	"encoding/json"
	"strings"

	"github.com/fairyhunter13/ai-job-assistant/internal/config"
	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
	obsctx "github.com/fairyhunter13/ai-job-assistant/internal/observability"
)

// FollowupGenerator decides whether information is missing from an intent
// and produces a clarifying question via the completion service.
type FollowupGenerator struct {
	AI     domain.CompletionClient
	Prompt string
}

// NewFollowupGenerator constructs a FollowupGenerator with the given templates.
func NewFollowupGenerator(ai domain.CompletionClient, prompts config.Prompts) FollowupGenerator {
	return FollowupGenerator{AI: ai, Prompt: prompts.Followup}
}

// MissingFields returns the intent's unknown fields in canonical order.
func (g FollowupGenerator) MissingFields(intent domain.Intent) []domain.Field {
	return intent.Missing()
}

// IsBlocking reports whether at least one required field is missing, which
// blocks progression to retrieval.
func (g FollowupGenerator) IsBlocking(intent domain.Intent) bool {
	return len(intent.MissingRequired()) > 0
}

// Ask returns a clarifying question for the intent's missing fields. The
// second return is false when nothing is missing or the completion service
// failed; generation failures degrade to "no question", never an error.
func (g FollowupGenerator) Ask(ctx domain.Context, intent domain.Intent) (string, bool) {
	missing := intent.Missing()
	if len(missing) == 0 {
		return "", false
	}

	names := make([]string, len(missing))
	for i, f := range missing {
		names[i] = string(f)
	}
	snapshot, _ := json.Marshal(intent)
	prompt := strings.NewReplacer(
		"{missing_fields}", strings.Join(names, ", "),
		"{current_intent}", string(snapshot),
	).Replace(g.Prompt)

	question, err := g.AI.Complete(ctx, prompt)
	if err != nil {
		obsctx.LoggerFromContext(ctx).Warn("follow-up generation failed", "error", err)
		return "", false
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", false
	}
	return question, true
}
