// Package query extracts structured filters from free-text questions.
package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/seanblong/movieagent/pkg/models"
)

// Genres is the fixed vocabulary matched by ParseGenre.
var Genres = []string{
	"action", "adventure", "animation", "biography", "comedy", "crime",
	"documentary", "drama", "fantasy", "family", "history", "horror",
	"musical", "mystery", "romance", "sci-fi", "reality-tv",
}

// fuzzyThreshold mirrors a ratio of 80 on a 0-100 scale.
const fuzzyThreshold = 0.8

var (
	decadeRe = regexp.MustCompile(`\b(\d{2,4})\s?'?s\b`)
	yearRe   = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	mashedRe = regexp.MustCompile(`([a-z])([A-Z])`)

	levenshtein = metrics.NewLevenshtein()
)

// ParseYearRange recognizes decade shorthand ("90s" -> 1990-1999,
// "1920s" -> 1920-1929) and explicit four-digit years ("from 2015" ->
// 2015-2015). Two-digit decades are assumed 20th-century.
func ParseYearRange(text string) (models.YearRange, bool) {
	text = strings.ToLower(text)

	if m := decadeRe.FindStringSubmatch(text); m != nil {
		digits := m[1]
		if len(digits) == 2 {
			digits = "19" + digits
		}
		start, err := strconv.Atoi(digits)
		if err == nil {
			return models.YearRange{Start: start, End: start + 9}, true
		}
	}

	if m := yearRe.FindStringSubmatch(text); m != nil {
		y, err := strconv.Atoi(m[1])
		if err == nil {
			return models.YearRange{Start: y, End: y}, true
		}
	}

	return models.YearRange{}, false
}

// ParseGenre finds a genre mentioned in the text: an explicit alias first,
// then an exact whole-word match, then a fuzzy per-token match tolerant of
// small typos. First match wins.
func ParseGenre(text string) (string, bool) {
	text = strings.ToLower(text)

	if strings.Contains(text, "scifi") {
		return "sci-fi", true
	}

	padded := " " + text + " "
	for _, g := range Genres {
		if strings.Contains(padded, " "+g+" ") {
			return g, true
		}
	}

	for _, word := range strings.Fields(text) {
		for _, g := range Genres {
			if strutil.Similarity(g, word, levenshtein) > fuzzyThreshold {
				return g, true
			}
		}
	}

	return "", false
}

// CleanMashedNames repairs concatenated proper names missing whitespace by
// inserting a separator at every lowercase-to-uppercase boundary, e.g.
// "TomHanks" -> "Tom, Hanks".
func CleanMashedNames(text string) string {
	return mashedRe.ReplaceAllString(text, "$1, $2")
}
