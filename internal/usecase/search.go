package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fairyhunter13/ai-job-assistant/internal/adapter/observability"
	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
	obsctx "github.com/fairyhunter13/ai-job-assistant/internal/observability"
	"github.com/fairyhunter13/ai-job-assistant/pkg/textx"
)

// ExcerptLen bounds the text excerpt carried on each candidate.
const ExcerptLen = 500

// remoteMarker always passes the location filter: remote postings are
// considered a match for any target location. This leniency is intentional
// and load-bearing for callers filtering by city.
const remoteMarker = "remote"

// SearchService retrieves job candidates from the vector index.
type SearchService struct {
	Index domain.JobIndex
}

// NewSearchService constructs a SearchService.
func NewSearchService(index domain.JobIndex) SearchService {
	return SearchService{Index: index}
}

// BuildQuery assembles the similarity-search query text. With a raw
// utterance available the query is "role - raw query"; otherwise it is a
// structured rendering of the known intent fields.
func (s SearchService) BuildQuery(intent domain.Intent, rawQuery string) string {
	if raw := strings.TrimSpace(rawQuery); raw != "" {
		return strings.TrimSpace(strings.TrimPrefix(intent.Role+" - "+raw, " - "))
	}
	var parts []string
	if intent.Role != "" {
		parts = append(parts, "Role: "+intent.Role)
	}
	if intent.Domain != "" {
		parts = append(parts, "Domain: "+intent.Domain)
	}
	if intent.Location != "" {
		parts = append(parts, "Location: "+intent.Location)
	}
	if intent.Remote == "yes" {
		parts = append(parts, "Remote friendly")
	}
	if intent.Salary != "" {
		parts = append(parts, "Salary: "+intent.Salary)
	}
	return strings.Join(parts, " ")
}

// Search issues a similarity query, deduplicates hits by their
// (title, company, location) identity in first-seen order, and returns at
// most limit candidates. The index is asked for 2×limit raw hits so that
// duplicate removal does not starve the result; a short result simply
// reflects index contents, it is never padded.
func (s SearchService) Search(ctx domain.Context, intent domain.Intent, rawQuery string, limit int) ([]domain.JobCandidate, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidArgument)
	}
	query := s.BuildQuery(intent, rawQuery)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", domain.ErrInvalidArgument)
	}

	docs, err := s.Index.SimilaritySearch(ctx, query, 2*limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	seen := make(map[domain.CandidateKey]struct{}, limit)
	candidates := make([]domain.JobCandidate, 0, limit)
	for _, doc := range docs {
		c := domain.JobCandidate{
			Title:    doc.Metadata["title"],
			Company:  doc.Metadata["company"],
			Location: doc.Metadata["location"],
			Excerpt:  textx.Clamp(doc.Content, ExcerptLen),
			Score:    doc.Score,
		}
		// First-seen order is similarity order, so duplicates keep the
		// best-scoring occurrence.
		if _, dup := seen[c.Key()]; dup {
			continue
		}
		seen[c.Key()] = struct{}{}
		candidates = append(candidates, c)
		if len(candidates) >= limit {
			break
		}
	}

	observability.SearchCandidates.Observe(float64(len(candidates)))
	obsctx.LoggerFromContext(ctx).Debug("retrieval done",
		"query", query,
		"raw_hits", len(docs),
		"candidates", len(candidates))
	return candidates, nil
}

// FilterByLocation keeps candidates whose location contains the target
// (case-insensitive) or is marked remote. An empty target is a pass-through.
func (s SearchService) FilterByLocation(candidates []domain.JobCandidate, target string) []domain.JobCandidate {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		return candidates
	}
	filtered := make([]domain.JobCandidate, 0, len(candidates))
	for _, c := range candidates {
		loc := strings.ToLower(c.Location)
		if strings.Contains(loc, target) || strings.Contains(loc, remoteMarker) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// CompanyCount pairs a company with its number of postings in a result set.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"job_count"`
}

// RetrievalSummary aggregates stats over one candidate set.
type RetrievalSummary struct {
	TotalJobs    int            `json:"total_jobs"`
	AvgScore     float64        `json:"avg_similarity_score"`
	TopCompanies []CompanyCount `json:"top_companies"`
	HighestScore float64        `json:"highest_score"`
	LowestScore  float64        `json:"lowest_score"`
}

// Summary returns stats and insights for a retrieval result. Highest and
// lowest refer to list order, since score direction is owned by the index.
func (s SearchService) Summary(candidates []domain.JobCandidate) RetrievalSummary {
	if len(candidates) == 0 {
		return RetrievalSummary{}
	}
	var sum float64
	counts := make(map[string]int)
	for _, c := range candidates {
		sum += c.Score
		counts[c.Company]++
	}
	companies := make([]CompanyCount, 0, len(counts))
	for name, n := range counts {
		companies = append(companies, CompanyCount{Company: name, Count: n})
	}
	sort.Slice(companies, func(i, j int) bool {
		if companies[i].Count != companies[j].Count {
			return companies[i].Count > companies[j].Count
		}
		return companies[i].Company < companies[j].Company
	})
	if len(companies) > 5 {
		companies = companies[:5]
	}
	return RetrievalSummary{
		TotalJobs:    len(candidates),
		AvgScore:     sum / float64(len(candidates)),
		TopCompanies: companies,
		HighestScore: candidates[0].Score,
		LowestScore:  candidates[len(candidates)-1].Score,
	}
}
