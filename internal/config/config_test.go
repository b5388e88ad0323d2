package config

import (
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Vectorizer: VectorizerConfig{Provider: "tfidf"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_UnknownVectorizerProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Vectorizer.Provider = "word2vec"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown vectorizer provider")
	}
}

func TestValidate_OpenAIRequiresModel(t *testing.T) {
	cfg := validConfig()
	cfg.Vectorizer.Provider = "openai"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for openai provider without model")
	}

	cfg.Vectorizer.Model = "text-embedding-3-small"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with model set: %v", err)
	}
}

func TestValidate_WeightsMustSumToOne(t *testing.T) {
	cfg := validConfig()
	cfg.Scoring.Weights = WeightsConfig{
		KnowledgeQuality: 0.5,
		Completeness:     0.5,
		Relevance:        0.5,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for weights not summing to 1")
	}

	cfg.Scoring.Weights = WeightsConfig{
		KnowledgeQuality: 0.35,
		Completeness:     0.25,
		Relevance:        0.20,
		Freshness:        0.15,
		Engagement:       0.05,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for valid weights: %v", err)
	}
}

func TestValidate_ZeroWeightsSkipCheck(t *testing.T) {
	cfg := validConfig()
	if !cfg.Scoring.Weights.IsZero() {
		t.Fatal("expected zero weights")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unconfigured weights must pass: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Storage.KeyPrefix != "docrank:" {
		t.Errorf("expected KeyPrefix=docrank:, got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Vectorizer.Provider != "tfidf" {
		t.Errorf("expected Provider=tfidf, got %q", cfg.Vectorizer.Provider)
	}
	if cfg.Vectorizer.Dimension != 384 {
		t.Errorf("expected Dimension=384, got %d", cfg.Vectorizer.Dimension)
	}
	if cfg.Scoring.FreshAgeDays != 730 {
		t.Errorf("expected FreshAgeDays=730, got %v", cfg.Scoring.FreshAgeDays)
	}
	if cfg.Scoring.StaleDays != 90 {
		t.Errorf("expected StaleDays=90, got %v", cfg.Scoring.StaleDays)
	}
	if cfg.Scoring.ViewsCap != 5000 || cfg.Scoring.LikesCap != 500 || cfg.Scoring.CommentsCap != 100 {
		t.Errorf("unexpected engagement caps: %v/%v/%v",
			cfg.Scoring.ViewsCap, cfg.Scoring.LikesCap, cfg.Scoring.CommentsCap)
	}
	if cfg.Scoring.Oversample != 4 {
		t.Errorf("expected Oversample=4, got %d", cfg.Scoring.Oversample)
	}
	if cfg.Scoring.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Scoring.Workers)
	}
	if cfg.Scoring.DefaultPageSize != 20 || cfg.Scoring.MaxPageSize != 100 {
		t.Errorf("unexpected page sizes: %d/%d", cfg.Scoring.DefaultPageSize, cfg.Scoring.MaxPageSize)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DOCRANK_TEST_ADDR", "redis:6379")

	got := string(expandEnvVars([]byte("addr: ${DOCRANK_TEST_ADDR}")))
	if got != "addr: redis:6379" {
		t.Errorf("expansion failed: %q", got)
	}

	got = string(expandEnvVars([]byte("addr: ${DOCRANK_TEST_MISSING:-fallback}")))
	if got != "addr: fallback" {
		t.Errorf("default expansion failed: %q", got)
	}
}
