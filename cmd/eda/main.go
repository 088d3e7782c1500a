package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/seanblong/movieagent/internal/config"
	"github.com/seanblong/movieagent/internal/dataset"
	"github.com/seanblong/movieagent/internal/eda"
	"github.com/seanblong/movieagent/pkg/models"
	"github.com/spf13/pflag"
)

func main() {
	fs := pflag.NewFlagSet("movieagent-eda", pflag.ExitOnError)

	_ = godotenv.Load()

	cfg, err := config.Load("", fs)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	fs.Usage = cfg.Usage

	// Prefer the processed cache; fall back to re-reading the raw CSV.
	var movies []models.Movie
	if dataset.CacheExists(cfg.CachePath) {
		movies, err = dataset.LoadCache(cfg.CachePath)
		if err != nil {
			log.Fatalf("Failed to load cache: %v", err)
		}
		log.Printf("loaded %d movies from cache", len(movies))
	} else {
		sourcePath := cfg.DataPath
		if sourcePath == "" {
			sourcePath, err = dataset.Discover(cfg.DataDir)
			if err != nil {
				log.Fatalf("Failed to discover data source: %v", err)
			}
		}
		movies, err = dataset.Load(sourcePath)
		if err != nil {
			log.Fatalf("Failed to load movie data: %v", err)
		}
		log.Printf("loaded %d movies from %s", len(movies), sourcePath)
	}

	if err := eda.Run(movies, cfg.PlotsDir); err != nil {
		log.Fatal(err)
	}
	log.Printf("charts written to %s", cfg.PlotsDir)
}
