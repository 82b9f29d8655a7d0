// Package jobseed loads job postings from CSV or YAML files and populates
// the Qdrant job postings collection.
package jobseed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	qdrantcli "github.com/fairyhunter13/ai-job-assistant/internal/adapter/vector/qdrant"
	"github.com/fairyhunter13/ai-job-assistant/internal/domain"
)

// minContentLen drops postings whose document text is too short to embed
// usefully.
const minContentLen = 10

// Posting is one job record from a seed file.
type Posting struct {
	Title       string `yaml:"title"`
	Company     string `yaml:"company"`
	Location    string `yaml:"location"`
	Description string `yaml:"description"`
}

// Document renders the text that gets embedded.
func (p Posting) Document() string {
	title := strings.TrimSpace(p.Title)
	desc := strings.TrimSpace(p.Description)
	switch {
	case title == "":
		return desc
	case desc == "":
		return title
	default:
		return title + ". " + desc
	}
}

// SeedFile ingests one seed file into the given collection. The format is
// picked by extension: .csv or .yaml/.yml.
func SeedFile(ctx domain.Context, q *qdrantcli.Client, embedder domain.Embedder, path, collection string) (int, error) {
	postings, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	return Upsert(ctx, q, embedder, collection, postings)
}

// LoadFile parses a seed file into postings.
func LoadFile(path string) ([]Posting, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("seed file not found: %s", path)
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseCSV(f)
	case ".yaml", ".yml":
		return parseYAML(f)
	}
	return nil, fmt.Errorf("unsupported seed format: %s", path)
}

// parseCSV reads postings from a CSV with a header row. Column order is
// free; title, company, location and description are matched by name.
func parseCSV(r io.Reader) ([]Posting, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var postings []Posting
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv record: %w", err)
		}
		postings = append(postings, Posting{
			Title:       field(rec, "title"),
			Company:     field(rec, "company"),
			Location:    field(rec, "location"),
			Description: field(rec, "description"),
		})
	}
	return postings, nil
}

func parseYAML(r io.Reader) ([]Posting, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Jobs []Posting `yaml:"jobs"`
	}
	if err := yaml.Unmarshal(b, &doc); err == nil && len(doc.Jobs) > 0 {
		return doc.Jobs, nil
	}
	// Fallback: a bare list of postings.
	var list []Posting
	if err := yaml.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("yaml parse: %w", err)
	}
	return list, nil
}

// Upsert embeds postings and writes them to Qdrant in batches. Point ids are
// derived from the document content, so re-seeding the same file is
// idempotent. Returns the number of postings written.
func Upsert(ctx domain.Context, q *qdrantcli.Client, embedder domain.Embedder, collection string, postings []Posting) (int, error) {
	kept := make([]Posting, 0, len(postings))
	for _, p := range postings {
		if len(p.Document()) < minContentLen {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return 0, fmt.Errorf("no postings to seed")
	}

	const batch = 16
	for i := 0; i < len(kept); i += batch {
		end := i + batch
		if end > len(kept) {
			end = len(kept)
		}
		chunk := kept[i:end]
		texts := make([]string, len(chunk))
		for j, p := range chunk {
			texts[j] = p.Document()
		}
		vecs, err := embedder.Embed(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed: %w", err)
		}
		payloads := make([]map[string]any, len(chunk))
		ids := make([]any, len(chunk))
		for j, p := range chunk {
			payloads[j] = map[string]any{
				"content":  texts[j],
				"title":    p.Title,
				"company":  p.Company,
				"location": p.Location,
			}
			ids[j] = PointID(collection, texts[j])
		}
		if err := q.UpsertPoints(ctx, collection, vecs, payloads, ids); err != nil {
			return 0, fmt.Errorf("qdrant upsert: %w", err)
		}
	}
	return len(kept), nil
}

// PointID derives a stable UUID from the collection and document content.
func PointID(collection, content string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(collection+":"+content)).String()
}
