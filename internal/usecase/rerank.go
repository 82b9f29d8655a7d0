package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-job-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-job-assistant/internal/config"
	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
	obsctx "github.com/fairyhunter13/ai-job-assistant/internal/observability"
	"github.com/fairyhunter13/ai-job-assistant/pkg/tokencount"
)

// MaxRerankInput caps the candidate set embedded in one ranking prompt.
// Retrieval should already respect this; the re-ranker enforces it anyway.
const MaxRerankInput = 30

// DefaultTopN is the result size when the caller passes a non-positive top_n.
const DefaultTopN = 10

// RerankScheme selects the rerank response schema.
type RerankScheme string

const (
	// SchemeIndex expects selections referencing candidates by job_number.
	// Selections with an out-of-range number are skipped.
	SchemeIndex RerankScheme = "index"
	// SchemeMatch expects selections carrying title/company, resolved by
	// fuzzy case-insensitive substring matching. Unmatched selections are
	// synthesized as placeholder candidates with a zero score.
	SchemeMatch RerankScheme = "match"
)

// ParseScheme validates a configured scheme name.
func ParseScheme(s string) (RerankScheme, error) {
	switch RerankScheme(strings.ToLower(strings.TrimSpace(s))) {
	case SchemeIndex:
		return SchemeIndex, nil
	case SchemeMatch:
		return SchemeMatch, nil
	}
	return "", fmt.Errorf("%w: unknown rerank scheme %q", domain.ErrInvalidArgument, s)
}

// RerankService re-orders retrieved candidates with one completion call,
// parsing the model's free-text answer defensively and falling back to
// similarity order whenever the answer cannot be trusted.
type RerankService struct {
	AI          domain.CompletionClient
	Scheme      RerankScheme
	PromptIndex string
	PromptMatch string
	// Model and TokenLimit bound the serialized candidate list so the
	// prompt stays inside the model's context window.
	Model      string
	TokenLimit int
	Tokens     *tokencount.Counter
}

// NewRerankService constructs a RerankService.
func NewRerankService(ai domain.CompletionClient, scheme RerankScheme, prompts config.Prompts, model string, tokenLimit int) RerankService {
	return RerankService{
		AI:          ai,
		Scheme:      scheme,
		PromptIndex: prompts.RerankIndex,
		PromptMatch: prompts.RerankMatch,
		Model:       model,
		TokenLimit:  tokenLimit,
		Tokens:      tokencount.DefaultCounter,
	}
}

// Rerank returns at most topN candidates ordered by the model's judgment,
// each annotated with a rank and a selection rationale. It never fails: any
// completion error or malformed response degrades to the similarity-order
// fallback, and an empty candidate set yields an empty result.
func (s RerankService) Rerank(ctx domain.Context, candidates []domain.JobCandidate, intent domain.Intent, topN int) []domain.RankedJob {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(candidates) > MaxRerankInput {
		candidates = candidates[:MaxRerankInput]
	}
	if len(candidates) == 0 {
		return []domain.RankedJob{}
	}

	prompt := s.buildPrompt(candidates, intent, topN)
	raw, err := s.AI.Complete(ctx, prompt)
	if err != nil {
		return s.fallback(ctx, candidates, topN, "completion_error", err)
	}

	outcome := parseRankingResponse(raw)
	if !outcome.Parsed {
		return s.fallback(ctx, candidates, topN, outcome.Reason, nil)
	}

	selections := outcome.Selections
	if len(selections) > topN {
		selections = selections[:topN]
	}
	ranked := make([]domain.RankedJob, 0, len(selections))
	for _, sel := range selections {
		switch s.Scheme {
		case SchemeMatch:
			ranked = append(ranked, resolveByMatch(candidates, sel))
		default:
			job, ok := resolveByIndex(candidates, sel)
			if !ok {
				continue
			}
			ranked = append(ranked, job)
		}
	}
	return ranked
}

// buildPrompt renders the ranking prompt for the configured scheme, dropping
// trailing candidates when the serialized list would blow the token budget.
func (s RerankService) buildPrompt(candidates []domain.JobCandidate, intent domain.Intent, topN int) string {
	var jobs strings.Builder
	budget := s.TokenLimit
	for i, c := range candidates {
		var line string
		switch s.Scheme {
		case SchemeMatch:
			compact, _ := json.Marshal(map[string]any{
				"title":       c.Title,
				"company":     c.Company,
				"location":    c.Location,
				"description": c.Excerpt,
				"score":       c.Score,
			})
			line = string(compact) + "\n"
		default:
			line = fmt.Sprintf("%d. %s at %s - %s (Score: %.4f)\n", i+1, c.Title, c.Company, c.Location, c.Score)
		}
		if s.TokenLimit > 0 && s.Tokens != nil {
			cost := s.Tokens.CountOrEstimate(line, s.Model)
			if cost > budget && i > 0 {
				break
			}
			budget -= cost
		}
		jobs.WriteString(line)
	}

	template := s.PromptIndex
	if s.Scheme == SchemeMatch {
		template = s.PromptMatch
	}
	return strings.NewReplacer(
		"{intent}", intentSummary(intent),
		"{jobs}", jobs.String(),
		"{top_n}", fmt.Sprintf("%d", topN),
	).Replace(template)
}

// intentSummary renders the intent for the ranking prompt; unknown fields
// show as N/A so the model does not invent constraints.
func intentSummary(intent domain.Intent) string {
	orNA := func(v string) string {
		if v == "" {
			return "N/A"
		}
		return v
	}
	return fmt.Sprintf("Role: %s, Location: %s, Salary: %s, Domain: %s, Remote: %s",
		orNA(intent.Role), orNA(intent.Location), orNA(intent.Salary), orNA(intent.Domain), orNA(intent.Remote))
}

// fallback is the circuit breaker for the whole pipeline: the first topN
// candidates in their incoming similarity order, annotated with sequential
// ranks and a similarity-referencing reason. It never fails.
func (s RerankService) fallback(ctx domain.Context, candidates []domain.JobCandidate, topN int, reason string, err error) []domain.RankedJob {
	obsctx.LoggerFromContext(ctx).Warn("rerank degraded to similarity order",
		"reason", reason,
		"error", err,
		"candidates", len(candidates))
	observability.ObserveRerankFallback(reason)

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	ranked := make([]domain.RankedJob, 0, len(candidates))
	for i, c := range candidates {
		ranked = append(ranked, domain.RankedJob{
			JobCandidate: c,
			Rank:         i + 1,
			Reason:       fmt.Sprintf("Similarity match (score %.4f)", c.Score),
		})
	}
	return ranked
}

// resolveByIndex maps a job_number selection back to its candidate. The
// model counts from 1; out-of-range references are dropped by the caller.
func resolveByIndex(candidates []domain.JobCandidate, sel rankSelection) (domain.RankedJob, bool) {
	idx := sel.JobNumber - 1
	if idx < 0 || idx >= len(candidates) {
		return domain.RankedJob{}, false
	}
	return domain.RankedJob{JobCandidate: candidates[idx], Rank: sel.Rank, Reason: sel.Reason}, true
}

// resolveByMatch finds the first candidate whose title and company fuzzily
// contain (or are contained by) the selection's, case-insensitively. A
// selection matching nothing becomes a placeholder carrying only the
// model-declared fields and a zero similarity score.
func resolveByMatch(candidates []domain.JobCandidate, sel rankSelection) domain.RankedJob {
	for _, c := range candidates {
		if fuzzyContains(c.Title, sel.Title) && fuzzyContains(c.Company, sel.Company) {
			return domain.RankedJob{JobCandidate: c, Rank: sel.Rank, Reason: sel.Reason}
		}
	}
	return domain.RankedJob{
		JobCandidate: domain.JobCandidate{Title: sel.Title, Company: sel.Company},
		Rank:         sel.Rank,
		Reason:       sel.Reason,
	}
}

func fuzzyContains(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return a == b
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
