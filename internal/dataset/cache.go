package dataset

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/seanblong/movieagent/pkg/models"
)

// CacheExists reports whether the cleaned-table cache is present. Presence
// is the only validity signal; there is no staleness check against the
// source file.
func CacheExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// LoadCache reads the cleaned table back from a cache file.
func LoadCache(path string) ([]models.Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer f.Close()

	var movies []models.Movie
	if err := gob.NewDecoder(f).Decode(&movies); err != nil {
		return nil, fmt.Errorf("decode cache %s: %w", path, err)
	}
	return movies, nil
}

// SaveCache persists the cleaned table. The write goes through a temp file
// and rename so the cache is never observed half-built.
func SaveCache(path string, movies []models.Movie) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-*")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(movies); err != nil {
		tmp.Close()
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish cache: %w", err)
	}
	return nil
}

// EnsureCache returns the cleaned table, loading from cache when present and
// otherwise processing the raw CSV at sourcePath and writing the cache.
func EnsureCache(cachePath, sourcePath string) ([]models.Movie, error) {
	if CacheExists(cachePath) {
		log.Info().Str("path", cachePath).Msg("using cached table")
		return LoadCache(cachePath)
	}

	movies, err := Load(sourcePath)
	if err != nil {
		return nil, err
	}
	if err := SaveCache(cachePath, movies); err != nil {
		return nil, err
	}
	log.Info().Str("path", cachePath).Int("rows", len(movies)).Msg("table cached")
	return movies, nil
}
