package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-job-assistant/internal/config"
	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
	"github.com/fairyhunter13/ai-job-assistant/internal/usecase"
	"github.com/fairyhunter13/ai-job-assistant/pkg/textx"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg           config.Config
	Conversations usecase.ConversationService
	Searches      usecase.SearchService
	Ranker        usecase.RerankService
	QdrantCheck   func(ctx context.Context) error
	AICheck       func(ctx context.Context) error
	SessionCheck  func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, conv usecase.ConversationService, search usecase.SearchService, ranker usecase.RerankService, qdrantCheck, aiCheck, sessionCheck func(context.Context) error) *Server {
	return &Server{
		Cfg:           cfg,
		Conversations: conv,
		Searches:      search,
		Ranker:        ranker,
		QdrantCheck:   qdrantCheck,
		AICheck:       aiCheck,
		SessionCheck:  sessionCheck,
	}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
		return false
	}
	if err := getValidator().Struct(req); err != nil {
		verrs := map[string]string{}
		if ve, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ve {
				verrs[strings.ToLower(fe.Field())] = fe.Tag()
			}
		}
		writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
		return false
	}
	return true
}

// ChatHandler runs one conversation turn for a user.
func (s *Server) ChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID  string `json:"user_id" validate:"required,max=100"`
			Message string `json:"message" validate:"required,max=2000"`
		}
		if !decodeAndValidate(w, r, &req) {
			return
		}
		result, err := s.Conversations.HandleTurn(r.Context(), req.UserID, textx.SanitizeText(req.Message))
		if err != nil {
			writeError(w, r, fmt.Errorf("handle turn: %w", err), nil)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// SearchHandler retrieves, filters and re-ranks job candidates. The intent
// comes from the caller's stored session when user_id is set, otherwise from
// the inline intent fields.
func (s *Server) SearchHandler() http.HandlerFunc {
	type searchResponse struct {
		Results []domain.RankedJob       `json:"results"`
		Summary usecase.RetrievalSummary `json:"summary"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string        `json:"user_id" validate:"omitempty,max=100"`
			Intent domain.Intent `json:"intent"`
			Query  string        `json:"query" validate:"omitempty,max=2000"`
			Limit  int           `json:"limit" validate:"omitempty,min=1,max=100"`
			TopN   int           `json:"top_n" validate:"omitempty,min=1,max=30"`
		}
		if !decodeAndValidate(w, r, &req) {
			return
		}

		intent := req.Intent
		if req.UserID != "" {
			sess, err := s.Conversations.Session(r.Context(), req.UserID)
			if err != nil {
				writeError(w, r, fmt.Errorf("load session: %w", err), nil)
				return
			}
			// Inline fields fill session gaps but never override it.
			intent = req.Intent.Merge(sess.Intent)
		}

		limit := req.Limit
		if limit == 0 {
			limit = s.Cfg.RetrieveLimit
		}
		topN := req.TopN
		if topN == 0 {
			topN = s.Cfg.RerankTopN
		}

		candidates, err := s.Searches.Search(r.Context(), intent, textx.SanitizeText(req.Query), limit)
		if err != nil {
			writeError(w, r, fmt.Errorf("search: %w", err), nil)
			return
		}
		if intent.Location != "" {
			candidates = s.Searches.FilterByLocation(candidates, intent.Location)
		}
		ranked := s.Ranker.Rerank(r.Context(), candidates, intent, topN)
		writeJSON(w, http.StatusOK, searchResponse{
			Results: ranked,
			Summary: s.Searches.Summary(candidates),
		})
	}
}

// ResetHandler discards a user's conversation so a new one can start.
func (s *Server) ResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id" validate:"required,max=100"`
		}
		if !decodeAndValidate(w, r, &req) {
			return
		}
		if err := s.Conversations.Reset(r.Context(), req.UserID); err != nil {
			writeError(w, r, fmt.Errorf("reset: %w", err), nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"user_id": req.UserID, "status": "reset"})
	}
}

// SessionHandler returns the stored conversation state for a user.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			writeError(w, r, fmt.Errorf("%w: user_id missing", domain.ErrInvalidArgument), nil)
			return
		}
		sess, err := s.Conversations.Session(r.Context(), userID)
		if err != nil {
			writeError(w, r, fmt.Errorf("load session: %w", err), nil)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// ReadyzHandler probes Qdrant, the AI provider and the session store.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	run := func(ctx context.Context, name string, fn func(context.Context) error) check {
		if err := fn(ctx); err != nil {
			return check{Name: name, OK: false, Details: err.Error()}
		}
		return check{Name: name, OK: true}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 3)
		if s.QdrantCheck != nil {
			checks = append(checks, run(ctx, "qdrant", s.QdrantCheck))
		}
		if s.AICheck != nil {
			checks = append(checks, run(ctx, "ai", s.AICheck))
		}
		if s.SessionCheck != nil {
			checks = append(checks, run(ctx, "sessions", s.SessionCheck))
		}
		st := http.StatusOK
		for _, c := range checks {
			if !c.OK {
				st = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
