// Package tools implements the callable tools an agent orchestrator can
// invoke: semantic search, similarity recommendation, statistics, and
// trivia generation. Every tool maps a free-text query to a human-readable
// answer. An error return means the system itself failed; legitimately
// empty results stay in-band text so the two are never conflated.
package tools

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/seanblong/movieagent/internal/index"
	"github.com/seanblong/movieagent/internal/query"
	"github.com/seanblong/movieagent/pkg/models"
)

const (
	searchCandidates = 30
	similarNeighbors = 10
	maxResults       = 5

	quizMinPool   = 5
	quizMinRating = 7.0
	quizMinYear   = 2000
)

// AnswerKeyMarker wraps the quiz answer so an external grader can extract it.
const AnswerKeyMarker = "INTERNAL_ANSWER_KEY"

var yearMarkerRe = regexp.MustCompile(`Year: (\d{4})`)

// Tools bundles the loaded table, the index handle, and the quiz RNG.
// Constructed once at startup; holds no other state.
type Tools struct {
	table    []models.Movie
	searcher index.Searcher
	rng      *rand.Rand
}

// New creates the tool set. rng drives quiz sampling and may be seeded
// deterministically in tests.
func New(table []models.Movie, searcher index.Searcher, rng *rand.Rand) *Tools {
	return &Tools{table: table, searcher: searcher, rng: rng}
}

// SearchMovies finds movies matching criteria like genre, year, or rating,
// e.g. "Find me 90s action movies". Semantic candidates are post-filtered
// strictly by any parsed year range and genre, deduplicated by title.
func (t *Tools) SearchMovies(ctx context.Context, q string) (string, error) {
	lower := strings.ToLower(q)
	yearRange, hasYear := query.ParseYearRange(lower)
	genre, hasGenre := query.ParseGenre(lower)

	hits, err := t.searcher.Search(ctx, q, searchCandidates)
	if err != nil {
		return "", fmt.Errorf("semantic search: %w", err)
	}

	seen := make(map[string]bool)
	var filtered []models.Hit
	for _, h := range hits {
		if seen[h.Title] {
			continue
		}
		if hasYear {
			m := yearMarkerRe.FindStringSubmatch(h.Text)
			if m != nil {
				yr, _ := strconv.Atoi(m[1])
				if !yearRange.Contains(yr) {
					continue
				}
			}
		}
		if hasGenre && !strings.Contains(strings.ToLower(h.Text), genre) {
			continue
		}
		seen[h.Title] = true
		filtered = append(filtered, h)
		if len(filtered) >= maxResults {
			break
		}
	}

	if len(filtered) == 0 {
		return "No movies found matching those specific criteria.", nil
	}

	var b strings.Builder
	b.WriteString("Here is what I found:\n\n")
	for i, h := range filtered {
		fmt.Fprintf(&b, "%d. %s\n", i+1, summarizeChunk(h.Text, 4))
	}
	return b.String(), nil
}

// RecommendSimilar suggests movies similar to a specific title. The
// reference is resolved by nearest-neighbor lookup on "Title: {title}" and
// its own description text becomes the similarity query.
func (t *Tools) RecommendSimilar(ctx context.Context, title string) (string, error) {
	refs, err := t.searcher.Search(ctx, "Title: "+title, 1)
	if err != nil {
		return "", fmt.Errorf("resolve reference: %w", err)
	}
	if len(refs) == 0 {
		return fmt.Sprintf("I couldn't find '%s'.", title), nil
	}
	ref := refs[0]

	similar, err := t.searcher.Search(ctx, ref.Text, similarNeighbors)
	if err != nil {
		return "", fmt.Errorf("similarity search: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Movies similar to '%s':\n\n", ref.Title)
	seen := make(map[string]bool)
	count := 0
	for _, h := range similar {
		if h.Title == ref.Title || seen[h.Title] {
			continue
		}
		fmt.Fprintf(&b, "- %s\n", summarizeChunk(h.Text, 3))
		seen[h.Title] = true
		count++
		if count >= maxResults {
			break
		}
	}
	return b.String(), nil
}

// Statistics answers aggregate questions over the cached table: average
// ratings, the highest-rated movies, or a plain match count. Filters come
// from the same intent parsing the search tool uses.
func (t *Tools) Statistics(q string) (string, error) {
	if len(t.table) == 0 {
		return "", fmt.Errorf("movie table not loaded")
	}

	lower := strings.ToLower(q)
	yearRange, hasYear := query.ParseYearRange(lower)
	genre, hasGenre := query.ParseGenre(lower)

	var subset []models.Movie
	for _, m := range t.table {
		if hasGenre && !strings.Contains(strings.ToLower(m.Genre), genre) {
			continue
		}
		if hasYear && !yearRange.Contains(m.Year) {
			continue
		}
		subset = append(subset, m)
	}

	switch {
	case strings.Contains(lower, "average"):
		sum, n := 0.0, 0
		for _, m := range subset {
			if !math.IsNaN(m.Rating) {
				sum += m.Rating
				n++
			}
		}
		if n == 0 {
			return "No rated movies match those criteria.", nil
		}
		return fmt.Sprintf("Average rating: %.2f/10 (based on %d movies)", sum/float64(n), n), nil

	case strings.Contains(lower, "highest"),
		strings.Contains(lower, "best"),
		strings.Contains(lower, "top"):
		var top []models.Movie
		for _, m := range subset {
			if !math.IsNaN(m.Rating) {
				top = append(top, m)
			}
		}
		if len(top) == 0 {
			return "No rated movies match those criteria.", nil
		}
		sort.SliceStable(top, func(i, j int) bool {
			return top[i].Rating > top[j].Rating
		})
		if len(top) > maxResults {
			top = top[:maxResults]
		}
		var b strings.Builder
		b.WriteString("Highest rated movies:\n")
		for _, m := range top {
			fmt.Fprintf(&b, "- %s (%d): %v\n", m.Title, m.Year, m.Rating)
		}
		return b.String(), nil
	}

	return fmt.Sprintf("Found %d movies matching your criteria.", len(subset)), nil
}

// GenerateQuiz produces a trivia question about a well-rated modern movie.
// The correct answer is embedded in a machine-readable marker segment.
func (t *Tools) GenerateQuiz() (string, error) {
	if len(t.table) == 0 {
		return "", fmt.Errorf("movie table not loaded")
	}

	var pool []models.Movie
	for _, m := range t.table {
		if !math.IsNaN(m.Rating) && m.Rating >= quizMinRating && m.Year >= quizMinYear {
			pool = append(pool, m)
		}
	}
	if len(pool) < quizMinPool {
		return "Not enough data for a quiz.", nil
	}

	movie := pool[t.rng.Intn(len(pool))]

	if t.rng.Intn(2) == 0 {
		return fmt.Sprintf("🎬 **Director Challenge**\n❓ Who directed **'%s'**?\n\n||%s: %s||",
			movie.Title, AnswerKeyMarker, movie.Director), nil
	}

	actor := strings.TrimSpace(strings.Split(query.CleanMashedNames(movie.Cast), ",")[0])
	return fmt.Sprintf("🎬 **Actor Challenge**\n❓ Who starred in **'%s'**?\n\n||%s: %s||",
		movie.Title, AnswerKeyMarker, actor), nil
}

// summarizeChunk condenses a chunk's leading "Key: Value" lines into a
// single " | " separated row, e.g. "Heat | 1995 | Crime | 8.3/10".
func summarizeChunk(text string, lines int) string {
	var parts []string
	for i, line := range strings.Split(text, "\n") {
		if i >= lines {
			break
		}
		if _, value, ok := strings.Cut(line, ": "); ok {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, " | ")
}
