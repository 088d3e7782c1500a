// Package dataset loads the raw movie table, cleans it, and caches the
// result. The cache is a full-or-nothing gate: if the file exists it is
// trusted, and invalidation means deleting it.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/seanblong/movieagent/pkg/models"
)

// ErrNoSource indicates the raw CSV could not be located.
var ErrNoSource = errors.New("dataset: no source file")

// columnMapping translates raw CSV headers to canonical field names.
var columnMapping = map[string]string{
	"Title":              "title",
	"Year":               "year",
	"Genre":              "genre",
	"Director":           "director",
	"Description":        "overview",
	"Certificates":       "certificates",
	"MetaScore":          "metascore",
	"IMDb Rating":        "rating",
	"Star Cast":          "cast",
	"Poster-src":         "poster",
	"Duration (minutes)": "duration",
}

const unknown = "Unknown"

// Load reads the raw CSV at path, skipping malformed rows, and returns the
// cleaned table with missing values imputed and descriptions generated.
func Load(path string) ([]models.Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoSource, path)
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	// Map canonical field name -> column position.
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if canon, ok := columnMapping[strings.TrimSpace(h)]; ok {
			cols[canon] = i
		}
	}
	if _, ok := cols["title"]; !ok {
		return nil, fmt.Errorf("dataset %s has no Title column", path)
	}

	type rawRow struct {
		fields map[string]string
	}
	var raw []rawRow
	skipped := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed rows are dropped, not fatal.
			skipped++
			continue
		}
		// Rows with the wrong field count are malformed either way.
		if len(rec) != len(header) {
			skipped++
			continue
		}
		fields := make(map[string]string, len(cols))
		for name, idx := range cols {
			if idx < len(rec) {
				fields[name] = strings.TrimSpace(rec[idx])
			}
		}
		raw = append(raw, rawRow{fields: fields})
	}
	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Str("path", path).Msg("dropped malformed rows")
	}

	yearMedian := medianOf(raw, func(r rawRow) (float64, bool) {
		return parseNumber(r.fields["year"])
	})
	durationMedian := medianOf(raw, func(r rawRow) (float64, bool) {
		return parseNumber(r.fields["duration"])
	})

	movies := make([]models.Movie, 0, len(raw))
	for _, rr := range raw {
		m := models.Movie{
			Title:        textOr(rr.fields["title"], unknown),
			Genre:        textOr(rr.fields["genre"], unknown),
			Director:     textOr(rr.fields["director"], unknown),
			Overview:     textOr(rr.fields["overview"], unknown),
			Certificates: textOr(rr.fields["certificates"], unknown),
			Metascore:    rr.fields["metascore"],
			Cast:         textOr(rr.fields["cast"], unknown),
			Poster:       rr.fields["poster"],
		}
		if v, ok := parseNumber(rr.fields["year"]); ok {
			m.Year = int(v)
		} else {
			m.Year = int(yearMedian)
		}
		if v, ok := parseNumber(rr.fields["duration"]); ok {
			m.Duration = int(v)
		} else {
			m.Duration = int(durationMedian)
		}
		if v, ok := parseNumber(rr.fields["rating"]); ok {
			m.Rating = v
		} else {
			// Rating is never imputed; statistics skip NaN entries.
			m.Rating = math.NaN()
		}
		m.Description = Describe(m)
		movies = append(movies, m)
	}

	log.Info().Int("rows", len(movies)).Str("path", path).Msg("dataset loaded")
	return movies, nil
}

// Describe renders the canonical multi-line description for a record. The
// metascore line is omitted when the value is absent or the Unknown sentinel.
func Describe(m models.Movie) string {
	rating := unknown
	if !math.IsNaN(m.Rating) {
		rating = strconv.FormatFloat(m.Rating, 'f', -1, 64)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", m.Title)
	fmt.Fprintf(&b, "Year: %d\n", m.Year)
	fmt.Fprintf(&b, "Genre: %s\n", m.Genre)
	fmt.Fprintf(&b, "Rating: %s/10\n", rating)
	fmt.Fprintf(&b, "Director: %s\n", m.Director)
	fmt.Fprintf(&b, "Cast: %s\n", m.Cast)
	fmt.Fprintf(&b, "Duration: %d minutes\n", m.Duration)
	fmt.Fprintf(&b, "Certificate: %s", m.Certificates)
	if m.Metascore != "" && m.Metascore != unknown {
		fmt.Fprintf(&b, "\nMetaScore: %s/100", m.Metascore)
	}
	return b.String()
}

// Documents converts the cleaned table into index-ready documents.
func Documents(movies []models.Movie) []models.Document {
	docs := make([]models.Document, 0, len(movies))
	for _, m := range movies {
		docs = append(docs, models.Document{Text: m.Description, Title: m.Title})
	}
	return docs
}

func textOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, unknown) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func medianOf[T any](rows []T, get func(T) (float64, bool)) float64 {
	var vals []float64
	for _, r := range rows {
		if v, ok := get(r); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
