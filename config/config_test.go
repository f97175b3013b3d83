package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	s := &cfg.Scoring
	if s.DefaultSimilarityWeight() != 0.7 || s.DefaultDistanceWeight() != 0.3 {
		t.Errorf("weights = %v/%v", s.DefaultSimilarityWeight(), s.DefaultDistanceWeight())
	}
	if s.MaxDistanceKm() != 500 || s.SimilarityThreshold() != 0.5 {
		t.Errorf("distance/threshold = %v/%v", s.MaxDistanceKm(), s.SimilarityThreshold())
	}
	if s.DefaultTopN() != 10 || s.MaxTopN() != 100 || s.OversampleFactor() != 3 {
		t.Errorf("topN = %d/%d oversample = %d", s.DefaultTopN(), s.MaxTopN(), s.OversampleFactor())
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
scoring:
  max_distance_km: 250
  similarity_threshold: 0.6
source:
  type: redis
  redis:
    addr: redis:6379
embedder:
  type: openai
  model: nomic-embed-text
server:
  port: 9090
  request_timeout: 5s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CARRECO_SCORING__SIMILARITY_THRESHOLD", "0.55")
	t.Setenv("CARRECO_LOGGING__LEVEL", "debug")
	t.Setenv("CARRECO_RECOMMEND__EXCLUDED_IDS", "a,b,c")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Scoring.MaxDistance != 250 {
		t.Errorf("max distance = %v, want 250 from file", cfg.Scoring.MaxDistance)
	}
	if cfg.Scoring.Threshold != 0.55 {
		t.Errorf("threshold = %v, want env override 0.55", cfg.Scoring.Threshold)
	}
	if cfg.Scoring.SimilarityWeight != 0.7 {
		t.Errorf("similarity weight = %v, want default", cfg.Scoring.SimilarityWeight)
	}
	if cfg.Source.Type != "redis" || cfg.Source.Redis.Addr != "redis:6379" || cfg.Source.Redis.ItemsKey != "carreco:items" {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Server.Port != 9090 || cfg.Server.RequestTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
	if !reflect.DeepEqual(cfg.Recommend.ExcludedIDs, []string{"a", "b", "c"}) {
		t.Errorf("excluded ids = %v", cfg.Recommend.ExcludedIDs)
	}

	sc := cfg.Embedder.ServiceConfig()
	if sc.ModelName != "nomic-embed-text" || sc.Breaker.FailureThreshold != 5 {
		t.Errorf("service config = %+v", sc)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for explicit missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"weight above one", func(c *Config) { c.Scoring.SimilarityWeight = 1.2 }},
		{"zero max distance", func(c *Config) { c.Scoring.MaxDistance = 0 }},
		{"default top n above max", func(c *Config) { c.Scoring.TopN = 200 }},
		{"unknown source", func(c *Config) { c.Source.Type = "mongo" }},
		{"file without path", func(c *Config) { c.Source.File.Path = "" }},
		{"postgres without dsn", func(c *Config) { c.Source.Type = "postgres" }},
		{"openai without model", func(c *Config) { c.Embedder.Type = "openai"; c.Embedder.Model = "" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"CARRECO_SOURCE__FILE__PATH":      "source.file.path",
		"CARRECO_SCORING__MAX_DISTANCE_KM": "scoring.max_distance_km",
		"CARRECO_LOGGING__LEVEL":          "logging.level",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
