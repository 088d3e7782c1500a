package eda

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/seanblong/movieagent/pkg/models"
)

func sampleMovies() []models.Movie {
	return []models.Movie{
		{Title: "Heat", Year: 1995, Genre: "Crime, Drama", Rating: 8.3},
		{Title: "Alien", Year: 1979, Genre: "Horror, Sci-Fi", Rating: 8.5},
		{Title: "Up", Year: 2009, Genre: "Animation", Rating: 8.3},
		{Title: "Taken", Year: 2008, Genre: "Action, Thriller", Rating: 7.8},
		{Title: "Room", Year: 2015, Genre: "Drama", Rating: 8.1},
		{Title: "Cats", Year: 2019, Genre: "Comedy, Family", Rating: 2.8},
		{Title: "Amour", Year: 2012, Genre: "Drama", Rating: math.NaN()},
		{Title: "Metropolis", Year: 1895, Genre: "Drama", Rating: 8.3},
	}
}

func TestGenreCounts(t *testing.T) {
	got := GenreCounts(sampleMovies(), 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 genres, got %d", len(got))
	}
	if got[0].Genre != "Drama" || got[0].Count != 3 {
		t.Errorf("expected Drama x3 first, got %s x%d", got[0].Genre, got[0].Count)
	}
	// Ties break alphabetically.
	if got[1].Genre != "Action, Thriller" {
		t.Errorf("expected Action, Thriller second, got %s", got[1].Genre)
	}
}

func TestRatingsSkipsNaN(t *testing.T) {
	ratings := Ratings(sampleMovies())
	if len(ratings) != 7 {
		t.Fatalf("expected 7 rated movies, got %d", len(ratings))
	}
	for _, r := range ratings {
		if math.IsNaN(r) {
			t.Fatal("NaN leaked into ratings")
		}
	}
}

func TestYearCountsClampsRange(t *testing.T) {
	xys := YearCounts(sampleMovies())
	for _, xy := range xys {
		if xy.X < 1900 || xy.X > 2025 {
			t.Errorf("year %v outside plotting bounds", xy.X)
		}
	}
	// Metropolis (1895) excluded, everything else counted once.
	var total float64
	for _, xy := range xys {
		total += xy.Y
	}
	if total != 7 {
		t.Errorf("expected 7 movies in range, got %v", total)
	}
	// Ascending order.
	for i := 1; i < len(xys); i++ {
		if xys[i].X <= xys[i-1].X {
			t.Fatalf("years not ascending at index %d", i)
		}
	}
}

func TestRatingTrend(t *testing.T) {
	movies := []models.Movie{
		{Title: "A", Year: 2000, Rating: 6.0},
		{Title: "B", Year: 2010, Rating: 7.0},
		{Title: "C", Year: 2020, Rating: 8.0},
	}
	alpha, beta, xys := RatingTrend(movies)
	if len(xys) != 3 {
		t.Fatalf("expected 3 points, got %d", len(xys))
	}
	if math.Abs(beta-0.1) > 1e-9 {
		t.Errorf("expected slope 0.1, got %v", beta)
	}
	if math.Abs(alpha-(-194.0)) > 1e-6 {
		t.Errorf("expected intercept -194, got %v", alpha)
	}
}

func TestRunWritesAllCharts(t *testing.T) {
	dir := t.TempDir()
	if err := Run(sampleMovies(), dir); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, name := range []string{
		"genre_distribution.png",
		"rating_distribution.png",
		"movies_per_year.png",
		"rating_vs_year.png",
	} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("missing chart %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("chart %s is empty", name)
		}
	}
}

func TestRatingDistributionNoData(t *testing.T) {
	movies := []models.Movie{{Title: "A", Year: 2000, Rating: math.NaN()}}
	if err := RatingDistribution(movies, filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Fatal("expected error with no rated movies")
	}
}
