package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the docrank API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Storage    StorageConfig    `yaml:"storage"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// VectorizerConfig holds vectorizer settings.
type VectorizerConfig struct {
	Provider    string `yaml:"provider"` // tfidf, openai (default: tfidf)
	Dimension   int    `yaml:"dimension"`
	Model       string `yaml:"model"`
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"` // remote embedding cache, 0 = no expiry
}

// ScoringConfig holds score weighting and ranking settings.
type ScoringConfig struct {
	Weights         WeightsConfig `yaml:"weights"`
	FreshAgeDays    float64       `yaml:"fresh_age_days"`
	StaleDays       float64       `yaml:"stale_days"`
	ViewsCap        float64       `yaml:"views_cap"`
	LikesCap        float64       `yaml:"likes_cap"`
	CommentsCap     float64       `yaml:"comments_cap"`
	Oversample      int           `yaml:"oversample"`
	Workers         int           `yaml:"workers"`
	DefaultPageSize int           `yaml:"default_page_size"`
	MaxPageSize     int           `yaml:"max_page_size"`
	HNSWM           int           `yaml:"hnsw_m"`
	HNSWEFConstruct int           `yaml:"hnsw_ef_construction"`
}

// WeightsConfig holds the overall score blend. Zero values fall back to the
// built-in defaults; explicit values must sum to 1.
type WeightsConfig struct {
	KnowledgeQuality float64 `yaml:"knowledge_quality"`
	Completeness     float64 `yaml:"completeness"`
	Relevance        float64 `yaml:"relevance"`
	Freshness        float64 `yaml:"freshness"`
	Engagement       float64 `yaml:"engagement"`
}

// IsZero reports whether no weight was configured.
func (w WeightsConfig) IsZero() bool {
	return w.KnowledgeQuality == 0 && w.Completeness == 0 &&
		w.Relevance == 0 && w.Freshness == 0 && w.Engagement == 0
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "docrank:"
	}
	if c.Vectorizer.Provider == "" {
		c.Vectorizer.Provider = "tfidf"
	}
	if c.Vectorizer.Dimension <= 0 {
		c.Vectorizer.Dimension = 384
	}
	if c.Scoring.FreshAgeDays <= 0 {
		c.Scoring.FreshAgeDays = 730
	}
	if c.Scoring.StaleDays <= 0 {
		c.Scoring.StaleDays = 90
	}
	if c.Scoring.ViewsCap <= 0 {
		c.Scoring.ViewsCap = 5000
	}
	if c.Scoring.LikesCap <= 0 {
		c.Scoring.LikesCap = 500
	}
	if c.Scoring.CommentsCap <= 0 {
		c.Scoring.CommentsCap = 100
	}
	if c.Scoring.Oversample <= 0 {
		c.Scoring.Oversample = 4
	}
	if c.Scoring.Workers <= 0 {
		c.Scoring.Workers = 4
	}
	if c.Scoring.DefaultPageSize <= 0 {
		c.Scoring.DefaultPageSize = 20
	}
	if c.Scoring.MaxPageSize <= 0 {
		c.Scoring.MaxPageSize = 100
	}
	if c.Scoring.HNSWM <= 0 {
		c.Scoring.HNSWM = 32
	}
	if c.Scoring.HNSWEFConstruct <= 0 {
		c.Scoring.HNSWEFConstruct = 400
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Vectorizer.Provider {
	case "tfidf":
	case "openai":
		if c.Vectorizer.Model == "" {
			return fmt.Errorf("vectorizer.model is required for the openai provider")
		}
	default:
		return fmt.Errorf("vectorizer.provider must be \"tfidf\" or \"openai\", got %q", c.Vectorizer.Provider)
	}
	if !c.Scoring.Weights.IsZero() {
		w := c.Scoring.Weights
		for name, v := range map[string]float64{
			"knowledge_quality": w.KnowledgeQuality,
			"completeness":      w.Completeness,
			"relevance":         w.Relevance,
			"freshness":         w.Freshness,
			"engagement":        w.Engagement,
		} {
			if v < 0 {
				return fmt.Errorf("scoring.weights.%s must be non-negative, got %v", name, v)
			}
		}
		sum := w.KnowledgeQuality + w.Completeness + w.Relevance + w.Freshness + w.Engagement
		if math.Abs(sum-1.0) > 1e-9 {
			return fmt.Errorf("scoring.weights must sum to 1, got %v", sum)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
