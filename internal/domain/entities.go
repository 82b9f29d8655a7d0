// Package domain holds the core entities and ports of the job-search assistant.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrConversationClosed  = errors.New("conversation closed")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrSchemaInvalid       = errors.New("schema invalid")
	ErrInternal            = errors.New("internal error")
)

// Field names one of the five semantic slots of an Intent.
type Field string

// Intent fields. Role, location and salary are required; domain and remote
// are optional refinements.
const (
	FieldRole     Field = "role"
	FieldLocation Field = "location"
	FieldSalary   Field = "salary"
	FieldDomain   Field = "domain"
	FieldRemote   Field = "remote"
)

// Fields returns all intent fields in canonical order.
func Fields() []Field {
	return []Field{FieldRole, FieldLocation, FieldSalary, FieldDomain, FieldRemote}
}

// RequiredFields returns the fields that must be known before retrieval runs.
func RequiredFields() []Field {
	return []Field{FieldRole, FieldLocation, FieldSalary}
}

// Intent is the structured representation of what job the user wants.
// Every field is always addressable; the empty string is the explicit
// "no value" marker, a field is never absent.
type Intent struct {
	Role     string `json:"role"`
	Location string `json:"location"`
	Salary   string `json:"salary"`
	Domain   string `json:"domain"`
	Remote   string `json:"remote"`
}

// Value returns the current value of f, empty when unknown.
func (in Intent) Value(f Field) string {
	switch f {
	case FieldRole:
		return in.Role
	case FieldLocation:
		return in.Location
	case FieldSalary:
		return in.Salary
	case FieldDomain:
		return in.Domain
	case FieldRemote:
		return in.Remote
	}
	return ""
}

// Set assigns v to field f. Unknown fields are ignored.
func (in *Intent) Set(f Field, v string) {
	switch f {
	case FieldRole:
		in.Role = v
	case FieldLocation:
		in.Location = v
	case FieldSalary:
		in.Salary = v
	case FieldDomain:
		in.Domain = v
	case FieldRemote:
		in.Remote = v
	}
}

// Known reports whether field f carries a value.
func (in Intent) Known(f Field) bool { return in.Value(f) != "" }

// Merge overlays update onto in. A field is overwritten only when the update
// carries a value; merge never regresses a known field back to unknown.
func (in Intent) Merge(update Intent) Intent {
	out := in
	for _, f := range Fields() {
		if v := update.Value(f); v != "" {
			out.Set(f, v)
		}
	}
	return out
}

// Missing returns all fields without a value, in canonical order.
func (in Intent) Missing() []Field {
	var out []Field
	for _, f := range Fields() {
		if !in.Known(f) {
			out = append(out, f)
		}
	}
	return out
}

// MissingRequired returns the required fields without a value.
func (in Intent) MissingRequired() []Field {
	var out []Field
	for _, f := range RequiredFields() {
		if !in.Known(f) {
			out = append(out, f)
		}
	}
	return out
}

// MessageRole tags an utterance in the session log.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single role-tagged utterance in a conversation.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"created_at"`
}

// ConversationState is the orchestrator state machine state.
type ConversationState string

const (
	StateCollecting ConversationState = "collecting"
	StateComplete   ConversationState = "complete"
	StateFailed     ConversationState = "failed"
)

// MaxAttempts bounds the number of clarification rounds per conversation.
const MaxAttempts = 3

// Session holds all per-user conversation state. One session per user id,
// mutated only by the conversation orchestrator.
type Session struct {
	UserID    string            `json:"user_id"`
	State     ConversationState `json:"state"`
	Intent    Intent            `json:"intent"`
	Attempts  int               `json:"attempts"`
	Messages  []Message         `json:"messages"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewSession returns a fresh collecting session with an all-unknown intent.
func NewSession(userID string) Session {
	now := time.Now().UTC()
	return Session{UserID: userID, State: StateCollecting, CreatedAt: now, UpdatedAt: now}
}

// TurnResult is what a single orchestrator turn hands back to the caller.
type TurnResult struct {
	Status   ConversationState `json:"status"`
	Intent   Intent            `json:"intent"`
	Followup string            `json:"followup,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// CandidateKey is the identity of a job posting used for deduplication.
type CandidateKey struct {
	Title    string
	Company  string
	Location string
}

// JobCandidate is one retrieved job posting. Score is an opaque ordering key
// from the vector index; it must not be compared across retrieval calls.
type JobCandidate struct {
	Title    string  `json:"title"`
	Company  string  `json:"company"`
	Location string  `json:"location"`
	Excerpt  string  `json:"excerpt"`
	Score    float64 `json:"similarity_score"`
}

// Key returns the (title, company, location) identity triple.
func (c JobCandidate) Key() CandidateKey {
	return CandidateKey{Title: c.Title, Company: c.Company, Location: c.Location}
}

// RankedJob is a candidate enriched by the re-ranker with a final rank and a
// selection rationale.
type RankedJob struct {
	JobCandidate
	Rank   int    `json:"rank"`
	Reason string `json:"reason"`
}

// ScoredDocument is a raw vector-index hit: free-text body, metadata with at
// least title/company/location, and the index-owned similarity score.
type ScoredDocument struct {
	Content  string
	Metadata map[string]string
	Score    float64
}

// Ports

// CompletionClient is the black-box text-completion service: prompt in,
// free-form text out. All structure must be recovered by the caller.
type CompletionClient interface {
	Complete(ctx Context, prompt string) (string, error)
}

// Embedder turns texts into embedding vectors.
type Embedder interface {
	Embed(ctx Context, texts []string) ([][]float32, error)
}

// JobIndex is the similarity-search service over the job corpus.
type JobIndex interface {
	SimilaritySearch(ctx Context, query string, k int) ([]ScoredDocument, error)
}

// SessionStore maps user ids to sessions. Implementations must serialize
// Update calls per user id; there is no cross-user sharing.
type SessionStore interface {
	// GetOrCreate returns the session for userID, creating it when absent.
	GetOrCreate(ctx Context, userID string) (Session, error)
	// Update applies fn to the session for userID under a per-user lock,
	// creating the session when absent, and persists the result.
	Update(ctx Context, userID string, fn func(*Session)) (Session, error)
	// AppendMessage records an utterance, implicitly creating the session.
	AppendMessage(ctx Context, userID string, role MessageRole, text string) error
	// Reset discards the session for userID so a new conversation can start.
	Reset(ctx Context, userID string) error
}

// Context is an alias to keep domain signatures uniform with the rest of the
// codebase; adapters and usecases pass context.Context through.
type Context = context.Context
