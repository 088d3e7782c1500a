package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Specification struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"providerApiKey" envconfig:"PROVIDER_API_KEY"`
	EmbedModel string `yaml:"providerEmbedModel" envconfig:"PROVIDER_EMBEDDING_MODEL"`
	ProjectID  string `yaml:"providerProjectID" envconfig:"PROVIDER_PROJECT_ID"`
	Location   string `yaml:"providerLocation" envconfig:"PROVIDER_LOCATION"`
	Dim        int    `yaml:"providerDim" envconfig:"EMBED_DIM"`

	DataPath  string `yaml:"dataPath" split_words:"true"`
	DataDir   string `yaml:"dataDir" split_words:"true"`
	CachePath string `yaml:"cachePath" split_words:"true"`
	IndexPath string `yaml:"indexPath" split_words:"true"`
	PlotsDir  string `yaml:"plotsDir" split_words:"true"`

	LogLevel string            `yaml:"logLevel" split_words:"true"`
	Port     int               `yaml:"port" split_words:"true"`
	Auth     AuthSpecification `yaml:"auth"`

	flags *pflag.FlagSet `ignored:"true"`
}

type AuthSpecification struct {
	Enabled   bool   `yaml:"enabled"`
	JwtSecret string `yaml:"jwtSecret" split_words:"true"`
	APIKey    string `yaml:"apiKey" envconfig:"API_KEY"`
}

const envPrefix = "MOVIEAGENT"

func (s *Specification) Usage() {
	fmt.Fprint(os.Stderr, s.flags.FlagUsages())
}

// Load => defaults < YAML < env < flags.
// configPath may be ""; if so we auto-discover.
func Load(configPath string, fs *pflag.FlagSet) (Specification, error) {
	var cfg Specification

	// set defaults (lowest precedence)
	setDefaults(&cfg)
	bindFlags(fs, &cfg)

	// config file
	path := configPath
	if path == "" {
		if v := os.Getenv(envPrefix + "_CONFIG"); v != "" {
			path = v
		} else {
			for _, cand := range []string{
				"config/movieagent.yaml",
				"config/config.yaml",
				"./movieagent.yaml",
				"./config.yaml",
			} {
				if fileExists(cand) {
					path = cand
					break
				}
			}
		}
	}

	if path != "" {
		if !fileExists(path) {
			return Specification{}, fmt.Errorf("config file not found: %s", path)
		}
		if err := loadYAML(path, &cfg); err != nil {
			return Specification{}, fmt.Errorf("load yaml %s: %w", path, err)
		}
	}

	// env overrides config file
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Specification{}, fmt.Errorf("env override: %w", err)
	}

	// flags override everything
	if err := fs.Parse(os.Args[1:]); err != nil {
		return Specification{}, err
	}
	applyChangedFlags(fs, &cfg)

	// Minimal sanity
	if strings.TrimSpace(cfg.DataPath) == "" && strings.TrimSpace(cfg.DataDir) == "" {
		return Specification{}, fmt.Errorf("MOVIEAGENT_DATA_PATH or MOVIEAGENT_DATA_DIR is required (env/file/flag)")
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// ---------- helpers ----------

func loadYAML(path string, into any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, into)
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}

func bindFlags(fs *pflag.FlagSet, c *Specification) {
	fs.String("config", "", "Path to config file")

	// If --config is provided on the command line, capture it now so
	// config discovery (which runs before flags.Parse) can use it.
	for i, a := range os.Args {
		if a == "--config" {
			if i+1 < len(os.Args) && !strings.HasPrefix(os.Args[i+1], "-") {
				_ = os.Setenv(envPrefix+"_CONFIG", os.Args[i+1])
			}
		} else if strings.HasPrefix(a, "--config=") {
			parts := strings.SplitN(a, "=", 2)
			if len(parts) == 2 {
				_ = os.Setenv(envPrefix+"_CONFIG", parts[1])
			}
		}
	}

	fs.String("provider", c.Provider, "Provider (e.g., stub, openai, vertexai)")
	fs.String("provider-api-key", c.APIKey, "Provider API key")
	fs.String("provider-embedding-model", c.EmbedModel, "Provider embedding model")
	fs.String("provider-project-id", c.ProjectID, "Provider project ID")
	fs.String("provider-location", c.Location, "Provider location/region")

	fs.Int("embed-dim", c.Dim, "Embedding dimensionality")

	fs.String("data-path", c.DataPath, "Path to the raw movies CSV")
	fs.String("data-dir", c.DataDir, "Directory searched for the newest CSV when --data-path is unset")
	fs.String("cache-path", c.CachePath, "Path to the cleaned-table cache (delete to force reprocessing)")
	fs.String("index-path", c.IndexPath, "Path to the vector index directory (delete to force a rebuild)")
	fs.String("plots-dir", c.PlotsDir, "Output directory for EDA charts")

	fs.String("log-level", c.LogLevel, "Log level (debug|info|warn|error)")
	fs.Int("port", c.Port, "API server port")

	fs.Bool("auth-enabled", c.Auth.Enabled, "Enable JWT authentication on tool endpoints")
	fs.String("auth-jwt-secret", c.Auth.JwtSecret, "JWT secret for signing tokens")
	fs.String("auth-api-key", c.Auth.APIKey, "API key exchanged for tokens at /auth/token")

	// Used later for usage/help
	// create a shallow copy of fs (so Usage can be called safely without mutating caller)
	copied := pflag.NewFlagSet("temp", pflag.ContinueOnError)
	*copied = *fs
	c.flags = copied
}

func applyChangedFlags(fs *pflag.FlagSet, c *Specification) {
	setStr := func(name string, dst *string) {
		if fs.Changed(name) {
			v, _ := fs.GetString(name)
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if fs.Changed(name) {
			v, _ := fs.GetInt(name)
			*dst = v
		}
	}
	setBool := func(name string, dst *bool) {
		if fs.Changed(name) {
			v, _ := fs.GetBool(name)
			*dst = v
		}
	}

	// (We ignore --config here; it's for discovery.)
	setStr("provider", &c.Provider)
	setStr("provider-api-key", &c.APIKey)
	setStr("provider-embedding-model", &c.EmbedModel)
	setStr("provider-project-id", &c.ProjectID)
	setStr("provider-location", &c.Location)

	setInt("embed-dim", &c.Dim)

	setStr("data-path", &c.DataPath)
	setStr("data-dir", &c.DataDir)
	setStr("cache-path", &c.CachePath)
	setStr("index-path", &c.IndexPath)
	setStr("plots-dir", &c.PlotsDir)

	setStr("log-level", &c.LogLevel)
	setInt("port", &c.Port)

	setBool("auth-enabled", &c.Auth.Enabled)
	setStr("auth-jwt-secret", &c.Auth.JwtSecret)
	setStr("auth-api-key", &c.Auth.APIKey)
}

func setDefaults(c *Specification) {
	c.LogLevel = "info"
	c.Provider = "stub"
	c.DataDir = "local_data"
	c.CachePath = "local_data/processed_movies.gob"
	c.IndexPath = "local_data/vector_index"
	c.PlotsDir = "static/plots"
	c.Location = "us-central1"
	c.Dim = 0
	c.Port = 8080
	c.Auth.Enabled = false
}
