// Package usecase contains application business logic services.
package usecase

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/fairyhunter13/ai-job-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-job-assistant/internal/config"
	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
	obsctx "github.com/fairyhunter13/ai-job-assistant/internal/observability"
	"github.com/fairyhunter13/ai-job-assistant/pkg/textx"
)

// IntentExtractor turns a free-text utterance into a structured Intent via
// the completion service.
type IntentExtractor struct {
	AI     domain.CompletionClient
	Prompt string
}

// NewIntentExtractor constructs an IntentExtractor with the given templates.
func NewIntentExtractor(ai domain.CompletionClient, prompts config.Prompts) IntentExtractor {
	return IntentExtractor{AI: ai, Prompt: prompts.Intent}
}

// Extract always returns an Intent with all five fields populated (value or
// the empty "no value" marker). Any completion or parse failure degrades to
// the all-unknown Intent; it never propagates, so a bad model answer costs
// one turn, not the conversation.
func (e IntentExtractor) Extract(ctx domain.Context, text string) domain.Intent {
	lg := obsctx.LoggerFromContext(ctx)
	prompt := strings.ReplaceAll(e.Prompt, "{user_input}", textx.SanitizeText(text))

	raw, err := e.AI.Complete(ctx, prompt)
	if err != nil {
		lg.Warn("intent extraction call failed", "error", err)
		observability.IntentExtractionFailures.Inc()
		return domain.Intent{}
	}

	intent, err := parseIntentResponse(raw)
	if err != nil {
		lg.Warn("intent response unparseable", "error", err, "response_len", len(raw))
		observability.IntentExtractionFailures.Inc()
		return domain.Intent{}
	}
	return intent
}

// parseIntentResponse decodes the model's answer into an Intent. The answer
// is expected to be a JSON object with the five field keys but is treated as
// untrusted: fences are stripped, the object is isolated from surrounding
// prose, and values are coerced field by field.
func parseIntentResponse(raw string) (domain.Intent, error) {
	cleaned := stripCodeFence(raw)
	obj, ok := extractObject(cleaned)
	if !ok {
		return domain.Intent{}, domain.ErrSchemaInvalid
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(normalizeJSONWhitespace(obj)), &fields); err != nil {
		return domain.Intent{}, err
	}

	var intent domain.Intent
	for _, f := range domain.Fields() {
		intent.Set(f, coerceFieldValue(fields[string(f)]))
	}
	return intent, nil
}

// coerceFieldValue maps a decoded JSON value onto the intent's string
// representation, normalizing null-ish answers to the "no value" marker.
func coerceFieldValue(v any) string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		switch strings.ToLower(s) {
		case "", "null", "none", "n/a", "unknown":
			return ""
		}
		return s
	case float64:
		// Salaries often come back as bare numbers.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "yes"
		}
		return "no"
	default:
		return ""
	}
}
