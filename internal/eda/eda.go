// Package eda renders exploratory charts from the movie table. The four
// charts mirror what an analyst would reach for first: what genres dominate,
// how ratings distribute, how output varies by year, and whether quality
// trends over time.
package eda

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/seanblong/movieagent/pkg/models"
)

const topGenres = 15

// yearMin/yearMax bound the year axis; values outside are data errors.
const (
	yearMin = 1900
	yearMax = 2025
)

// Run writes all four charts into outDir.
func Run(movies []models.Movie, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create plots dir: %w", err)
	}

	charts := []struct {
		file   string
		render func([]models.Movie, string) error
	}{
		{"genre_distribution.png", GenreDistribution},
		{"rating_distribution.png", RatingDistribution},
		{"movies_per_year.png", MoviesPerYear},
		{"rating_vs_year.png", RatingVsYear},
	}
	for _, c := range charts {
		path := filepath.Join(outDir, c.file)
		if err := c.render(movies, path); err != nil {
			return fmt.Errorf("render %s: %w", c.file, err)
		}
		log.Info().Str("path", path).Msg("chart saved")
	}
	return nil
}

type genreCount struct {
	Genre string
	Count int
}

// GenreCounts tallies full genre strings and returns the top n by count.
func GenreCounts(movies []models.Movie, n int) []genreCount {
	counts := make(map[string]int)
	for _, m := range movies {
		counts[m.Genre]++
	}
	out := make([]genreCount, 0, len(counts))
	for g, c := range counts {
		out = append(out, genreCount{Genre: g, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Genre < out[j].Genre
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// GenreDistribution renders the top-15 genre bar chart.
func GenreDistribution(movies []models.Movie, path string) error {
	top := GenreCounts(movies, topGenres)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Top %d Genres", topGenres)
	p.Y.Label.Text = "Number of Movies"

	values := make(plotter.Values, len(top))
	names := make([]string, len(top))
	for i, gc := range top {
		values[i] = float64(gc.Count)
		names[i] = gc.Genre
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return err
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.XAlign = -0.9

	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}

// Ratings returns all non-NaN ratings.
func Ratings(movies []models.Movie) []float64 {
	var out []float64
	for _, m := range movies {
		if !math.IsNaN(m.Rating) {
			out = append(out, m.Rating)
		}
	}
	return out
}

// RatingDistribution renders a 30-bin histogram with a mean marker.
func RatingDistribution(movies []models.Movie, path string) error {
	ratings := Ratings(movies)
	if len(ratings) == 0 {
		return fmt.Errorf("no rated movies to plot")
	}
	mean := stat.Mean(ratings, nil)

	p := plot.New()
	p.Title.Text = "Distribution of IMDb Ratings"
	p.X.Label.Text = "Rating"

	hist, err := plotter.NewHist(plotter.Values(ratings), 30)
	if err != nil {
		return err
	}
	hist.FillColor = plotutil.Color(1)
	p.Add(hist)

	// Vertical mean marker spanning the histogram height.
	_, _, _, maxY := plotter.XYRange(histXYs(hist))
	meanLine, err := plotter.NewLine(plotter.XYs{
		{X: mean, Y: 0},
		{X: mean, Y: maxY},
	})
	if err != nil {
		return err
	}
	meanLine.LineStyle.Color = plotutil.Color(2)
	meanLine.LineStyle.Dashes = plotutil.Dashes(1)
	p.Add(meanLine)
	p.Legend.Add(fmt.Sprintf("Mean: %.1f", mean), meanLine)

	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}

// histXYs projects histogram bins onto points so XYRange can size the
// mean marker.
func histXYs(h *plotter.Histogram) plotter.XYs {
	xys := make(plotter.XYs, len(h.Bins))
	for i, b := range h.Bins {
		xys[i] = plotter.XY{X: (b.Min + b.Max) / 2, Y: b.Weight}
	}
	return xys
}

// YearCounts tallies releases per year within the plotting bounds,
// returned in ascending year order.
func YearCounts(movies []models.Movie) plotter.XYs {
	counts := make(map[int]int)
	for _, m := range movies {
		if m.Year >= yearMin && m.Year <= yearMax {
			counts[m.Year]++
		}
	}
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)

	xys := make(plotter.XYs, len(years))
	for i, y := range years {
		xys[i] = plotter.XY{X: float64(y), Y: float64(counts[y])}
	}
	return xys
}

// MoviesPerYear renders the per-year release count line.
func MoviesPerYear(movies []models.Movie, path string) error {
	xys := YearCounts(movies)

	p := plot.New()
	p.Title.Text = "Movies Released Per Year"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Count"

	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = plotutil.Color(0)
	p.Add(line, plotter.NewGrid())

	return p.Save(12*vg.Inch, 6*vg.Inch, path)
}

// RatingTrend fits ratings against years by ordinary least squares and
// returns the intercept and slope.
func RatingTrend(movies []models.Movie) (alpha, beta float64, xys plotter.XYs) {
	var xs, ys []float64
	for _, m := range movies {
		if math.IsNaN(m.Rating) || m.Year < yearMin || m.Year > yearMax {
			continue
		}
		xs = append(xs, float64(m.Year))
		ys = append(ys, m.Rating)
		xys = append(xys, plotter.XY{X: float64(m.Year), Y: m.Rating})
	}
	if len(xs) < 2 {
		return 0, 0, xys
	}
	alpha, beta = stat.LinearRegression(xs, ys, nil, false)
	return alpha, beta, xys
}

// RatingVsYear renders the rating scatter with a least-squares trend line.
func RatingVsYear(movies []models.Movie, path string) error {
	alpha, beta, xys := RatingTrend(movies)
	if len(xys) == 0 {
		return fmt.Errorf("no rated movies to plot")
	}

	p := plot.New()
	p.Title.Text = "Rating Trends Over Time"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "IMDb Rating"

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Radius = vg.Points(2)
	scatter.GlyphStyle.Color = plotutil.Color(3)
	p.Add(scatter)

	trend := plotter.NewFunction(func(x float64) float64 { return alpha + beta*x })
	trend.LineStyle.Color = plotutil.Color(2)
	trend.LineStyle.Dashes = plotutil.Dashes(1)
	p.Add(trend)
	p.Legend.Add("Trend", trend)

	return p.Save(12*vg.Inch, 6*vg.Inch, path)
}
