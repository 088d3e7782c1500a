package query

import (
	"testing"

	"github.com/seanblong/movieagent/pkg/models"
)

func TestParseYearRange(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected models.YearRange
		found    bool
	}{
		{
			name:     "two digit decade",
			text:     "90s movies",
			expected: models.YearRange{Start: 1990, End: 1999},
			found:    true,
		},
		{
			name:     "four digit decade",
			text:     "the best of the 1920s",
			expected: models.YearRange{Start: 1920, End: 1929},
			found:    true,
		},
		{
			name:     "decade with apostrophe",
			text:     "classic 80's horror",
			expected: models.YearRange{Start: 1980, End: 1989},
			found:    true,
		},
		{
			name:     "explicit year",
			text:     "from 2015",
			expected: models.YearRange{Start: 2015, End: 2015},
			found:    true,
		},
		{
			name:     "nineteenth century year ignored",
			text:     "in 1850 nothing happened",
			expected: models.YearRange{},
			found:    false,
		},
		{
			name:     "no year at all",
			text:     "timeless classics",
			expected: models.YearRange{},
			found:    false,
		},
		{
			name:     "uppercase input",
			text:     "Movies From 2003",
			expected: models.YearRange{Start: 2003, End: 2003},
			found:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseYearRange(tt.text)
			if ok != tt.found {
				t.Fatalf("ParseYearRange(%q) found = %v, want %v", tt.text, ok, tt.found)
			}
			if got != tt.expected {
				t.Errorf("ParseYearRange(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestParseGenre(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
		found    bool
	}{
		{
			name:     "scifi alias",
			text:     "I like scifi films",
			expected: "sci-fi",
			found:    true,
		},
		{
			name:     "exact whole word",
			text:     "plain drama",
			expected: "drama",
			found:    true,
		},
		{
			name:     "fuzzy typo",
			text:     "horor movie",
			expected: "horror",
			found:    true,
		},
		{
			name:     "hyphenated exact",
			text:     "a good sci-fi flick",
			expected: "sci-fi",
			found:    true,
		},
		{
			name:     "no genre mentioned",
			text:     "something to watch tonight",
			expected: "",
			found:    false,
		},
		{
			name:     "substring of a word is not a match",
			text:     "reactionary politics",
			expected: "",
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseGenre(tt.text)
			if ok != tt.found {
				t.Fatalf("ParseGenre(%q) found = %v, want %v", tt.text, ok, tt.found)
			}
			if got != tt.expected {
				t.Errorf("ParseGenre(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestCleanMashedNames(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "single mashed name",
			text:     "LeonardoDiCaprio",
			expected: "Leonardo, Di, Caprio",
		},
		{
			name:     "already separated",
			text:     "Tom Hanks",
			expected: "Tom Hanks",
		},
		{
			name:     "multiple names",
			text:     "BradPittEdwardNorton",
			expected: "Brad, Pitt, Edward, Norton",
		},
		{
			name:     "empty string",
			text:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanMashedNames(tt.text); got != tt.expected {
				t.Errorf("CleanMashedNames(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}
