package observability

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerRoundTrip(t *testing.T) {
	t.Parallel()
	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := ContextWithLogger(context.Background(), lg)
	assert.Same(t, lg, LoggerFromContext(ctx))
}

func TestLoggerFromContext_Fallbacks(t *testing.T) {
	t.Parallel()
	assert.Same(t, slog.Default(), LoggerFromContext(context.Background()))
	assert.Same(t, slog.Default(), LoggerFromContext(nil)) //nolint:staticcheck // nil ctx is part of the contract
	// Attaching a nil logger is a no-op.
	ctx := ContextWithLogger(context.Background(), nil)
	assert.Same(t, slog.Default(), LoggerFromContext(ctx))
}

func TestRequestIDRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := ContextWithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
	// Empty ids are not stored.
	ctx = ContextWithRequestID(context.Background(), "")
	assert.Equal(t, "", RequestIDFromContext(ctx))
}
