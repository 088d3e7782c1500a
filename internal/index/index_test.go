package index

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/seanblong/movieagent/internal/ai"
	"github.com/seanblong/movieagent/pkg/models"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    int
	}{
		{
			name: "empty text",
			text: "", size: 250, overlap: 20,
			want: 0,
		},
		{
			name: "shorter than one chunk",
			text: "short description", size: 250, overlap: 20,
			want: 1,
		},
		{
			name: "exactly one chunk",
			text: strings.Repeat("a", 250), size: 250, overlap: 20,
			want: 1,
		},
		{
			name: "two chunks",
			text: strings.Repeat("a", 300), size: 250, overlap: 20,
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitText(tt.text, tt.size, tt.overlap)
			if len(got) != tt.want {
				t.Fatalf("expected %d chunks, got %d", tt.want, len(got))
			}
			for i, c := range got {
				if len(c) > tt.size {
					t.Errorf("chunk %d exceeds size: %d", i, len(c))
				}
			}
		})
	}
}

func TestSplitTextMultibyte(t *testing.T) {
	// 300 two-byte runes force a boundary mid-text; every chunk must stay
	// valid UTF-8 and hold at most 250 runes.
	text := strings.Repeat("é", 300)
	chunks := splitText(text, 250, 20)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
		if utf8.RuneCountInString(c) > 250 {
			t.Errorf("chunk %d exceeds rune budget: %d", i, utf8.RuneCountInString(c))
		}
	}
}

func TestSplitTextOverlap(t *testing.T) {
	text := strings.Repeat("x", 100) + strings.Repeat("y", 100) + strings.Repeat("z", 100)
	chunks := splitText(text, 250, 20)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	// The tail of chunk 0 must reappear at the head of chunk 1.
	tail := chunks[0][len(chunks[0])-20:]
	if !strings.HasPrefix(chunks[1], tail) {
		t.Errorf("chunks do not overlap: %q vs %q", tail, chunks[1][:20])
	}
}

func buildSample(t *testing.T, dir string) (string, ai.Client) {
	t.Helper()
	path := filepath.Join(dir, "vector_index")
	client := ai.NewStubClient(32)
	docs := []models.Document{
		{Title: "Alien", Text: "Title: Alien\nYear: 1979\nGenre: Horror, Sci-Fi\nRating: 8.5/10"},
		{Title: "Heat", Text: "Title: Heat\nYear: 1995\nGenre: Crime\nRating: 8.3/10"},
		{Title: "Up", Text: "Title: Up\nYear: 2009\nGenre: Animation\nRating: 8.3/10"},
	}
	if err := Build(context.Background(), path, client, docs); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return path, client
}

func TestBuildAndSearch(t *testing.T) {
	path, client := buildSample(t, t.TempDir())
	if !Exists(path) {
		t.Fatal("index directory missing after build")
	}

	m := NewManager(path, client, nil)
	hits, err := m.Search(context.Background(), "Title: Alien", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	for _, h := range hits {
		if h.Title == "" || h.Text == "" {
			t.Errorf("hit missing fields: %+v", h)
		}
	}
}

func TestSearchClampsK(t *testing.T) {
	path, client := buildSample(t, t.TempDir())
	m := NewManager(path, client, nil)

	// More neighbors requested than chunks exist must not error.
	hits, err := m.Search(context.Background(), "crime movie", 50)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected some hits")
	}
}

func TestOpenMissingNoRebuild(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent"), ai.NewStubClient(8), nil)
	err := m.Open(context.Background())
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestOpenTriggersRebuild(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vector_index")
	client := ai.NewStubClient(16)

	calls := 0
	rebuild := func(ctx context.Context) error {
		calls++
		return Build(ctx, path, client, []models.Document{
			{Title: "Solo", Text: "Title: Solo\nYear: 2018"},
		})
	}

	m := NewManager(path, client, rebuild)
	if err := m.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one rebuild, got %d", calls)
	}

	// A second open finds the cached handle and does not rebuild again.
	if err := m.Open(context.Background()); err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("rebuild ran again on a warm open: %d calls", calls)
	}
}

func TestOpenRebuildFails(t *testing.T) {
	boom := errors.New("no raw data")
	m := NewManager(filepath.Join(t.TempDir(), "absent"), ai.NewStubClient(8),
		func(context.Context) error { return boom })

	err := m.Open(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected rebuild error to surface, got %v", err)
	}
}
