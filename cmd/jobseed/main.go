// Command jobseed loads job postings from a CSV or YAML file into the
// Qdrant job postings collection.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/fairyhunter13/ai-job-assistant/internal/adapter/ai/openai"
	"github.com/fairyhunter13/ai-job-assistant/internal/adapter/observability"
	qdrantcli "github.com/fairyhunter13/ai-job-assistant/internal/adapter/vector/qdrant"
	"github.com/fairyhunter13/ai-job-assistant/internal/app"
	"github.com/fairyhunter13/ai-job-assistant/internal/config"
	"github.com/fairyhunter13/ai-job-assistant/internal/jobseed"
)

func main() {
	var (
		file       = flag.String("file", "", "seed file (.csv, .yaml or .yml)")
		collection = flag.String("collection", "", "target collection (defaults to QDRANT_COLLECTION)")
		timeout    = flag.Duration("timeout", 10*time.Minute, "overall seeding deadline")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	slog.SetDefault(observability.SetupLogger(cfg))

	if *file == "" {
		slog.Error("missing -file")
		flag.Usage()
		os.Exit(2)
	}
	target := *collection
	if target == "" {
		target = cfg.QdrantCollection
	}
	cfg.QdrantCollection = target

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	qcli := qdrantcli.New(cfg.QdrantURL, cfg.QdrantAPIKey)
	app.EnsureJobCollection(ctx, cfg, qcli)

	n, err := jobseed.SeedFile(ctx, qcli, openai.New(cfg), *file, target)
	if err != nil {
		slog.Error("seeding failed", slog.String("file", *file), slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("seeding done", slog.String("file", *file), slog.String("collection", target), slog.Int("postings", n))
}
