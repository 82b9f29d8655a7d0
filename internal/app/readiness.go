package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fairyhunter13/ai-job-assistant/internal/config"
)

// Pinger is the minimal interface for a store capable of Ping; the memory
// session store does not implement it and is always considered ready.
type Pinger interface{ Ping(ctx context.Context) error }

// BuildReadinessChecks returns readiness checks for qdrant, the AI provider
// and the session store.
func BuildReadinessChecks(cfg config.Config, sessions Pinger) (
	func(ctx context.Context) error,
	func(ctx context.Context) error,
	func(ctx context.Context) error,
) {
	qdrantCheck := func(ctx context.Context) error {
		client := &http.Client{Timeout: 2 * time.Second}
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, cfg.QdrantURL+"/collections", nil)
		if cfg.QdrantAPIKey != "" {
			req.Header.Set("api-key", cfg.QdrantAPIKey)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		return fmt.Errorf("qdrant status %d", resp.StatusCode)
	}
	aiCheck := func(ctx context.Context) error {
		if cfg.OpenAIAPIKey == "" {
			return fmt.Errorf("openai api key not configured")
		}
		client := &http.Client{Timeout: 2 * time.Second}
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, cfg.OpenAIBaseURL+"/models", nil)
		req.Header.Set("Authorization", "Bearer "+cfg.OpenAIAPIKey)
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		return fmt.Errorf("openai status %d", resp.StatusCode)
	}
	sessionCheck := func(ctx context.Context) error {
		if sessions == nil {
			return nil
		}
		return sessions.Ping(ctx)
	}
	return qdrantCheck, aiCheck, sessionCheck
}
