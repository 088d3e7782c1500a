package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/seanblong/movieagent/internal/ai"
	"github.com/seanblong/movieagent/internal/auth"
	"github.com/seanblong/movieagent/internal/config"
	"github.com/seanblong/movieagent/internal/dataset"
	"github.com/seanblong/movieagent/internal/index"
	"github.com/seanblong/movieagent/internal/tools"
	"github.com/spf13/pflag"
)

type answer struct {
	Answer string `json:"answer"`
}

func writeAnswer(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(answer{Answer: text}); err != nil {
		http.Error(w, "Failed to encode response", 500)
	}
}

func main() {
	// Create flagset for configuration
	fs := pflag.NewFlagSet("movieagent-api", pflag.ExitOnError)

	// .env is optional; real env always wins
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load("", fs)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	fs.Usage = cfg.Usage

	// Set up logging
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level '%s': %v", cfg.LogLevel, err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	logger.Info().Str("provider", cfg.Provider).Str("log_level", cfg.LogLevel).Bool("auth_enabled", cfg.Auth.Enabled).Msg("starting movieagent api")

	// Create AI client configuration
	var clientConfig *ai.ClientConfig
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		clientConfig = &ai.ClientConfig{
			APIKey:     cfg.APIKey,
			EmbedModel: cfg.EmbedModel,
			Dim:        cfg.Dim,
			Provider:   ai.ProviderOpenAI,
		}
	case "vertexai", "google":
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
		log.Fatalf("unsupported provider: %s", cfg.Provider)
	}

	// Initialize auth with configuration
	auth.Initialize(cfg.Auth.JwtSecret, cfg.Auth.APIKey, cfg.Auth.Enabled)

	// Resolve the source CSV. An explicit path wins; otherwise take the
	// newest CSV in the data directory. A missing source is fine as long
	// as the processed cache already exists.
	sourcePath := cfg.DataPath
	if sourcePath == "" {
		sourcePath, err = dataset.Discover(cfg.DataDir)
		if err != nil && !errors.Is(err, dataset.ErrNoSource) {
			log.Fatalf("Failed to discover data source: %v", err)
		}
	}

	movies, err := dataset.EnsureCache(cfg.CachePath, sourcePath)
	if err != nil {
		log.Fatalf("Failed to load movie data: %v", err)
	}
	logger.Info().Int("movies", len(movies)).Str("cache", cfg.CachePath).Msg("movie table ready")

	c, err := ai.NewClient(clientConfig)
	if err != nil {
		log.Fatalf("Failed to create AI client: %v", err)
	}
	logger.Info().Int("embedding_dim", c.Dim()).Str("embed_model", clientConfig.EmbedModel).Msg("AI client initialized")

	rebuild := func(ctx context.Context) error {
		return index.Build(ctx, cfg.IndexPath, c, dataset.Documents(movies))
	}
	manager := index.NewManager(cfg.IndexPath, c, rebuild)

	toolset := tools.New(movies, manager, rand.New(rand.NewSource(time.Now().UnixNano())))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	// Auth status endpoint (always available)
	mux.HandleFunc("/auth/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(map[string]bool{"enabled": auth.IsEnabled()})
		if err != nil {
			http.Error(w, "Failed to encode response", 500)
		}
	})

	if auth.IsEnabled() {
		log.Println("Authentication is ENABLED")

		mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != "POST" {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			key := r.Header.Get("X-API-Key")
			if key == "" {
				http.Error(w, "Missing X-API-Key header", http.StatusUnauthorized)
				return
			}
			token, err := auth.ExchangeAPIKey(key, r.URL.Query().Get("subject"))
			if err != nil {
				http.Error(w, "Invalid API key", http.StatusUnauthorized)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     "auth_token",
				Value:    token,
				Path:     "/",
				MaxAge:   86400, // 24 hours
				HttpOnly: true,
				Secure:   strings.HasPrefix(r.Header.Get("X-Forwarded-Proto"), "https"),
				SameSite: http.SameSiteLaxMode,
			})

			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(map[string]string{"token": token}); err != nil {
				http.Error(w, "Failed to encode response", 500)
			}
		})
	} else {
		log.Println("Authentication is DISABLED - running in open mode")
	}

	mux.HandleFunc("/tools/search", auth.OptionalAuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		q := r.URL.Query().Get("q")
		if q == "" {
			http.Error(w, "missing query parameter q", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()
		res, err := toolset.SearchMovies(ctx, q)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeAnswer(w, res)
		hlog.FromRequest(r).Info().Str("path", "/tools/search").Str("q", q).Dur("dur", time.Since(start)).Msg("served")
	}))

	mux.HandleFunc("/tools/recommend", auth.OptionalAuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		title := r.URL.Query().Get("title")
		if title == "" {
			http.Error(w, "missing query parameter title", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()
		res, err := toolset.RecommendSimilar(ctx, title)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeAnswer(w, res)
		hlog.FromRequest(r).Info().Str("path", "/tools/recommend").Str("title", title).Dur("dur", time.Since(start)).Msg("served")
	}))

	mux.HandleFunc("/tools/stats", auth.OptionalAuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			http.Error(w, "missing query parameter q", http.StatusBadRequest)
			return
		}

		res, err := toolset.Statistics(q)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeAnswer(w, res)
	}))

	mux.HandleFunc("/tools/quiz", auth.OptionalAuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		res, err := toolset.GenerateQuiz()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeAnswer(w, res)
	}))

	handler := hlog.NewHandler(logger)(
		hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
			logger.Info().Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Int("size", size).Dur("dur", dur).Msg("http")
		})(mux),
	)

	address := fmt.Sprintf(":%d", cfg.Port)
	s := &http.Server{Addr: address, Handler: handler}
	logger.Info().Str("addr", s.Addr).Msg("api server listening")
	log.Fatal(s.ListenAndServe())
}
