package main

import (
	"context"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/seanblong/movieagent/internal/ai"
	"github.com/seanblong/movieagent/internal/config"
	"github.com/seanblong/movieagent/internal/dataset"
	"github.com/seanblong/movieagent/internal/index"
	"github.com/spf13/pflag"
)

func main() {
	fs := pflag.NewFlagSet("movieagent-ingest", pflag.ExitOnError)

	_ = godotenv.Load()

	cfg, err := config.Load("", fs)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	fs.Usage = cfg.Usage

	sourcePath := cfg.DataPath
	if sourcePath == "" {
		sourcePath, err = dataset.Discover(cfg.DataDir)
		if err != nil {
			log.Fatalf("Failed to discover data source: %v", err)
		}
		log.Printf("using discovered source: %s", sourcePath)
	}

	movies, err := dataset.EnsureCache(cfg.CachePath, sourcePath)
	if err != nil {
		log.Fatalf("Failed to process movie data: %v", err)
	}
	log.Printf("processed %d movies into %s", len(movies), cfg.CachePath)

	if index.Exists(cfg.IndexPath) {
		log.Printf("vector index already present at %s, skipping build", cfg.IndexPath)
		return
	}

	provider := strings.ToLower(cfg.Provider)
	log.Printf("using provider: %s", provider)
	var clientConfig *ai.ClientConfig
	switch provider {
	case "openai":
		clientConfig = &ai.ClientConfig{
			APIKey:     cfg.APIKey,
			EmbedModel: cfg.EmbedModel,
			Dim:        cfg.Dim,
			Provider:   ai.ProviderOpenAI,
		}
	case "vertexai":
		clientConfig = &ai.ClientConfig{
			APIKey:     cfg.APIKey,
			EmbedModel: cfg.EmbedModel,
			Dim:        cfg.Dim,
			ProjectID:  cfg.ProjectID,
			Location:   cfg.Location,
			Provider:   ai.ProviderVertexAI,
		}
	case "stub":
		clientConfig = &ai.ClientConfig{
			Dim:      cfg.Dim,
			Provider: ai.ProviderStub,
		}
	default:
		log.Fatalf("unsupported provider: %s", provider)
	}

	c, err := ai.NewClient(clientConfig)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := index.Build(ctx, cfg.IndexPath, c, dataset.Documents(movies)); err != nil {
		log.Fatal(err)
	}
	log.Printf("vector index built at %s", cfg.IndexPath)
}
