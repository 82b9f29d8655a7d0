package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/ai-job-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
	obsctx "github.com/fairyhunter13/ai-job-assistant/internal/observability"
)

// FailedMessage is the fixed terminal message returned when the attempt
// ceiling is exhausted.
const FailedMessage = "I'm sorry, your request is still unclear after 3 tries. Please rephrase or try again."

// RefineMessage accompanies a completed intent when optional fields could
// still narrow the results.
const RefineMessage = "I have found some matches, but I can refine them further with more information."

// ConversationService is the state machine that merges extraction results
// into the session, tracks attempts, and decides among ask again, give up,
// or proceed.
type ConversationService struct {
	Store     domain.SessionStore
	Extractor IntentExtractor
	Followups FollowupGenerator
}

// NewConversationService constructs a ConversationService.
func NewConversationService(store domain.SessionStore, ex IntentExtractor, fg FollowupGenerator) ConversationService {
	return ConversationService{Store: store, Extractor: ex, Followups: fg}
}

// HandleTurn processes one user utterance. Extraction and follow-up failures
// are absorbed as degraded turns; the only error-shaped outcomes are invalid
// input, a closed conversation, and session-store failures.
func (s ConversationService) HandleTurn(ctx domain.Context, userID, utterance string) (domain.TurnResult, error) {
	if userID == "" || strings.TrimSpace(utterance) == "" {
		return domain.TurnResult{}, fmt.Errorf("%w: user id and utterance required", domain.ErrInvalidArgument)
	}

	// The extraction call happens before taking the per-user session lock;
	// it depends only on the utterance.
	extracted := s.Extractor.Extract(ctx, utterance)

	var (
		res       domain.TurnResult
		closedErr error
	)
	_, err := s.Store.Update(ctx, userID, func(sess *domain.Session) {
		if sess.State != domain.StateCollecting {
			res = domain.TurnResult{Status: sess.State, Intent: sess.Intent}
			closedErr = fmt.Errorf("%w: call reset to start a new conversation", domain.ErrConversationClosed)
			return
		}

		sess.Messages = append(sess.Messages, newMessage(domain.RoleUser, utterance))
		sess.Intent = sess.Intent.Merge(extracted)

		if s.Followups.IsBlocking(sess.Intent) {
			sess.Attempts++
			if sess.Attempts >= domain.MaxAttempts {
				sess.State = domain.StateFailed
				res = domain.TurnResult{Status: domain.StateFailed, Intent: sess.Intent, Message: FailedMessage}
				return
			}
			question, ok := s.Followups.Ask(ctx, sess.Intent)
			if ok {
				sess.Messages = append(sess.Messages, newMessage(domain.RoleAssistant, question))
			}
			res = domain.TurnResult{Status: domain.StateCollecting, Intent: sess.Intent, Followup: question}
			return
		}

		// Required fields complete. An optional follow-up about the remaining
		// optional fields is offered as a non-blocking suggestion.
		sess.State = domain.StateComplete
		res = domain.TurnResult{Status: domain.StateComplete, Intent: sess.Intent}
		if question, ok := s.Followups.Ask(ctx, sess.Intent); ok {
			res.Followup = question
			res.Message = RefineMessage
			sess.Messages = append(sess.Messages, newMessage(domain.RoleAssistant, question))
		}
	})
	if err != nil {
		return domain.TurnResult{}, fmt.Errorf("session update: %w", err)
	}
	if closedErr != nil {
		return res, closedErr
	}

	observability.ObserveTurn(string(res.Status))
	obsctx.LoggerFromContext(ctx).Info("turn handled",
		"user_id", userID,
		"status", string(res.Status),
		"missing_required", len(res.Intent.MissingRequired()))
	return res, nil
}

// Reset discards the user's session so a new conversation can start.
func (s ConversationService) Reset(ctx domain.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id required", domain.ErrInvalidArgument)
	}
	return s.Store.Reset(ctx, userID)
}

// Session returns the current session for a user, creating it when absent.
func (s ConversationService) Session(ctx domain.Context, userID string) (domain.Session, error) {
	if userID == "" {
		return domain.Session{}, fmt.Errorf("%w: user id required", domain.ErrInvalidArgument)
	}
	return s.Store.GetOrCreate(ctx, userID)
}

func newMessage(role domain.MessageRole, text string) domain.Message {
	return domain.Message{ID: uuid.NewString(), Role: role, Text: text, CreatedAt: time.Now().UTC()}
}
