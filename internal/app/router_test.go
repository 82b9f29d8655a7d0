package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	httpserver "github.com/fairyhunter13/ai-job-assistant/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-job-assistant/internal/adapter/session/memory"
	"github.com/fairyhunter13/ai-job-assistant/internal/app"
	"github.com/fairyhunter13/ai-job-assistant/internal/config"
	"github.com/fairyhunter13/ai-job-assistant/internal/usecase"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"*"}, app.ParseOrigins(""))
	assert.Equal(t, []string{"*"}, app.ParseOrigins("*"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, app.ParseOrigins(" https://a.example, https://b.example "))
	assert.Equal(t, []string{"*"}, app.ParseOrigins(" , "))
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{AppEnv: "test", Port: 8080, CORSAllowOrigins: "*", RetrieveLimit: 30, RerankTopN: 10}
	conv := usecase.NewConversationService(memory.New(), usecase.IntentExtractor{}, usecase.FollowupGenerator{})
	ok := func(context.Context) error { return nil }
	srv := httpserver.NewServer(cfg, conv, usecase.SearchService{}, usecase.RerankService{}, ok, ok, ok)
	return app.BuildRouter(cfg, srv)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	t.Parallel()
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_SecurityHeadersAndRequestID(t *testing.T) {
	t.Parallel()
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()
	router := testRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Timeouts(t *testing.T) {
	t.Parallel()
	cfg := config.Config{Port: 9090, HTTPReadTimeout: 15 * time.Second, HTTPWriteTimeout: 30 * time.Second, HTTPIdleTimeout: time.Minute}
	srv := app.Server(cfg, http.NotFoundHandler())
	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 15*time.Second, srv.ReadTimeout)
	assert.Equal(t, 30*time.Second, srv.WriteTimeout)
}
