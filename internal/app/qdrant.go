package app

import (
	"context"
	"log/slog"

	qdrantcli "github.com/fairyhunter13/ai-job-assistant/internal/adapter/vector/qdrant"
	"github.com/fairyhunter13/ai-job-assistant/internal/config"
)

// EnsureJobCollection makes sure the job postings collection exists before
// serving traffic. Failure is logged, not fatal: the service can come up
// while Qdrant is still booting and readiness gates the traffic.
func EnsureJobCollection(ctx context.Context, cfg config.Config, qcli *qdrantcli.Client) {
	if qcli == nil {
		return
	}
	if err := qcli.EnsureCollection(ctx, cfg.QdrantCollection, cfg.VectorSize, "Cosine"); err != nil {
		slog.Warn("qdrant ensure collection failed",
			slog.String("collection", cfg.QdrantCollection),
			slog.Any("error", err))
	}
}
