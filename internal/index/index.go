// Package index builds and queries the persisted vector index. The index
// lives in a directory on disk; presence of that directory is the only
// validity signal, and a rebuild means deleting it first.
package index

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/seanblong/movieagent/internal/ai"
	"github.com/seanblong/movieagent/pkg/models"
)

// collection is the single chromem collection holding all movie chunks.
const collection = "movies"

// ErrMissing indicates the index is absent and no rebuild path is wired.
var ErrMissing = errors.New("index: not built")

// Searcher is the query surface consumed by the agent tools.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]models.Hit, error)
}

// Exists reports whether the on-disk index directory is present.
func Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// Build chunks the documents, embeds every chunk with the client, and
// persists the index at path. The build happens in a sibling temp directory
// and is renamed into place, so a crashed build leaves no partial index.
func Build(ctx context.Context, path string, client ai.Client, docs []models.Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index parent: %w", err)
	}
	tmp, err := os.MkdirTemp(filepath.Dir(path), ".index-build-*")
	if err != nil {
		return fmt.Errorf("create build dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	db, err := chromem.NewPersistentDB(tmp, false)
	if err != nil {
		return fmt.Errorf("open vector db: %w", err)
	}
	coll, err := db.GetOrCreateCollection(collection, nil, embedFunc(client))
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	var chunks []chromem.Document
	for di, doc := range docs {
		for ci, piece := range splitText(doc.Text, DefaultChunkSize, DefaultChunkOverlap) {
			chunks = append(chunks, chromem.Document{
				ID:       chunkID(doc.Title, di, ci),
				Content:  piece,
				Metadata: map[string]string{"title": doc.Title},
			})
		}
	}
	log.Info().Int("documents", len(docs)).Int("chunks", len(chunks)).Msg("building vector index")

	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8 // cap to avoid overwhelming the embedding API
	}
	if err := coll.AddDocuments(ctx, chunks, workers); err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publish index: %w", err)
	}
	log.Info().Str("path", path).Msg("vector index saved")
	return nil
}

// Manager opens the persisted index for querying. When the index directory
// is missing it invokes the injected rebuild callback, so the read path can
// self-heal without depending on the ingestion package.
type Manager struct {
	path    string
	client  ai.Client
	rebuild func(context.Context) error

	mu   sync.Mutex
	coll *chromem.Collection
}

// NewManager creates a Manager. rebuild may be nil, in which case a missing
// index is a hard error instead of a trigger.
func NewManager(path string, client ai.Client, rebuild func(context.Context) error) *Manager {
	return &Manager{path: path, client: client, rebuild: rebuild}
}

// Open loads the index, rebuilding it first if absent. Safe for concurrent
// callers: racing readers trigger at most one rebuild.
func (m *Manager) Open(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openLocked(ctx)
}

func (m *Manager) openLocked(ctx context.Context) error {
	if m.coll != nil {
		return nil
	}
	if !Exists(m.path) {
		if m.rebuild == nil {
			return fmt.Errorf("%w: %s", ErrMissing, m.path)
		}
		log.Warn().Str("path", m.path).Msg("vector index missing, rebuilding")
		if err := m.rebuild(ctx); err != nil {
			return fmt.Errorf("rebuild index: %w", err)
		}
		if !Exists(m.path) {
			return fmt.Errorf("%w: rebuild produced nothing at %s", ErrMissing, m.path)
		}
	}

	db, err := chromem.NewPersistentDB(m.path, false)
	if err != nil {
		return fmt.Errorf("open vector db: %w", err)
	}
	coll := db.GetCollection(collection, embedFunc(m.client))
	if coll == nil {
		return fmt.Errorf("%w: collection %q not found in %s", ErrMissing, collection, m.path)
	}
	m.coll = coll
	return nil
}

// Search embeds the query and returns up to k nearest chunks. k is clamped
// to the collection size; an empty collection yields no hits.
func (m *Manager) Search(ctx context.Context, query string, k int) ([]models.Hit, error) {
	m.mu.Lock()
	if err := m.openLocked(ctx); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	coll := m.coll
	m.mu.Unlock()

	if n := coll.Count(); k > n {
		k = n
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := coll.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	hits := make([]models.Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, models.Hit{
			Text:       r.Content,
			Title:      r.Metadata["title"],
			Similarity: float64(r.Similarity),
		})
	}
	return hits, nil
}

func embedFunc(client ai.Client) chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		return client.Embed(text)
	}
}

func chunkID(title string, doc, chunk int) string {
	h := sha1.Sum([]byte(fmt.Sprintf("%s#%d:%d", title, doc, chunk)))
	return hex.EncodeToString(h[:])
}
