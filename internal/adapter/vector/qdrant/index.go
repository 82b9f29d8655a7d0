package qdrant

import (
	"fmt"

	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
	obsctx "github.com/fairyhunter13/ai-job-assistant/internal/observability"
)

// JobIndex implements domain.JobIndex: it embeds the query text and searches
// the job postings collection.
type JobIndex struct {
	Client     *Client
	Embedder   domain.Embedder
	Collection string
}

// NewJobIndex constructs a JobIndex over a collection.
func NewJobIndex(client *Client, embedder domain.Embedder, collection string) *JobIndex {
	return &JobIndex{Client: client, Embedder: embedder, Collection: collection}
}

// SimilaritySearch embeds query and returns up to k scored documents in
// descending similarity order, as Qdrant returns them.
func (ix *JobIndex) SimilaritySearch(ctx domain.Context, query string, k int) ([]domain.ScoredDocument, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrInvalidArgument)
	}
	vecs, err := ix.Embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("%w: embedder returned no vector", domain.ErrSchemaInvalid)
	}

	points, err := ix.Client.Search(ctx, ix.Collection, vecs[0], k)
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	docs := make([]domain.ScoredDocument, 0, len(points))
	for _, pt := range points {
		docs = append(docs, domain.ScoredDocument{
			Content:  payloadString(pt.Payload, "content"),
			Metadata: payloadMetadata(pt.Payload),
			Score:    pt.Score,
		})
	}
	obsctx.LoggerFromContext(ctx).Debug("similarity search done",
		"collection", ix.Collection,
		"k", k,
		"hits", len(docs))
	return docs, nil
}

// payloadMetadata lifts the string-valued payload fields into metadata,
// leaving the content field out.
func payloadMetadata(payload map[string]any) map[string]string {
	meta := make(map[string]string, len(payload))
	for key, val := range payload {
		if key == "content" {
			continue
		}
		if s, ok := val.(string); ok {
			meta[key] = s
		}
	}
	return meta
}

func payloadString(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}
