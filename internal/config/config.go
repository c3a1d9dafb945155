// Package config loads ClaimLens settings from a YAML file with
// environment overrides. Every pipeline knob has a built-in default, so
// a missing config file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration.
type Config struct {
	Embed struct {
		Provider string `yaml:"provider"` // "provider/model" form
		Endpoint string `yaml:"endpoint"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"embed"`

	LLM struct {
		Provider string `yaml:"provider"` // "provider/model" form
		APIKey   string `yaml:"api_key"`
	} `yaml:"llm"`

	Retrieval struct {
		LexicalK      int     `yaml:"k_lexical"`
		VectorK       int     `yaml:"k_vector"`
		LexicalWeight float64 `yaml:"lexical_weight"`
		VectorWeight  float64 `yaml:"vector_weight"`
		RankConstant  int     `yaml:"rank_constant"`
	} `yaml:"retrieval"`

	Chunking struct {
		StructuredSize    int `yaml:"structured_size"`
		StructuredOverlap int `yaml:"structured_overlap"`
		StandardSize      int `yaml:"standard_size"`
		StandardOverlap   int `yaml:"standard_overlap"`
	} `yaml:"chunking"`

	Structure struct {
		HeaderThreshold int `yaml:"header_threshold"`
	} `yaml:"structure"`
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	c.Embed.Provider = "ollama/nomic-embed-text"
	c.LLM.Provider = "google/gemini-2.5-flash"
	c.Retrieval.LexicalK = 3
	c.Retrieval.VectorK = 2
	c.Retrieval.LexicalWeight = 0.5
	c.Retrieval.VectorWeight = 0.5
	c.Retrieval.RankConstant = 60
	c.Chunking.StructuredSize = 1000
	c.Chunking.StructuredOverlap = 200
	c.Chunking.StandardSize = 500
	c.Chunking.StandardOverlap = 50
	c.Structure.HeaderThreshold = 5
	return c
}

// DefaultPath is the conventional config location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claimlens", "config.yaml")
}

// Load reads the config file at path (DefaultPath when empty), layers it
// over the defaults, then applies environment overrides. A missing file
// yields the defaults; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays CLAIMLENS_* environment variables.
func applyEnv(cfg *Config) {
	setStr := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setFloat := func(dst *float64, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	setStr(&cfg.Embed.Provider, "CLAIMLENS_EMBED")
	setStr(&cfg.Embed.Endpoint, "CLAIMLENS_EMBED_ENDPOINT")
	setStr(&cfg.Embed.APIKey, "CLAIMLENS_EMBED_API_KEY")
	setStr(&cfg.LLM.Provider, "CLAIMLENS_LLM")
	setStr(&cfg.LLM.APIKey, "CLAIMLENS_LLM_API_KEY")
	setInt(&cfg.Retrieval.LexicalK, "CLAIMLENS_K_LEXICAL")
	setInt(&cfg.Retrieval.VectorK, "CLAIMLENS_K_VECTOR")
	setFloat(&cfg.Retrieval.LexicalWeight, "CLAIMLENS_LEXICAL_WEIGHT")
	setFloat(&cfg.Retrieval.VectorWeight, "CLAIMLENS_VECTOR_WEIGHT")
	setInt(&cfg.Retrieval.RankConstant, "CLAIMLENS_RANK_CONSTANT")
	setInt(&cfg.Structure.HeaderThreshold, "CLAIMLENS_HEADER_THRESHOLD")
}
