package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the n-gram tool.
type Config struct {
	Corpus        CorpusConfig        `yaml:"corpus"`
	Tokenizer     TokenizerConfig     `yaml:"tokenizer"`
	Model         ModelConfig         `yaml:"model"`
	Interpolation InterpolationConfig `yaml:"interpolation"`
	Eval          EvalConfig          `yaml:"eval"`
	History       HistoryConfig       `yaml:"history"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// CorpusConfig locates the dataset splits.
type CorpusConfig struct {
	Pattern  string   `yaml:"pattern"` // e.g. "data/1b_benchmark.{set}.tokens"; per-split lists win
	Train    []string `yaml:"train"`
	Dev      []string `yaml:"dev"`
	Test     []string `yaml:"test"`
	Excludes []string `yaml:"excludes"`
	Fraction float64  `yaml:"fraction"` // Leading share of training lines to use (0,1]
}

// TokenizerConfig holds token normalization settings.
type TokenizerConfig struct {
	Lowercase bool   `yaml:"lowercase"`
	NFC       bool   `yaml:"nfc"`
	Stemming  string `yaml:"stemming"` // snowball language, empty to disable
}

// ModelConfig selects the estimator.
type ModelConfig struct {
	Type         string `yaml:"type"` // "unigram", "bigram", "trigram", "interpolate"
	OOVThreshold int    `yaml:"oov_threshold"`
}

// InterpolationConfig holds mixture weights for the interpolated model.
type InterpolationConfig struct {
	Lambdas   []float64 `yaml:"lambdas"`
	Tolerance float64   `yaml:"tolerance"`
	TuneStep  float64   `yaml:"tune_step"`
}

// EvalConfig holds evaluation settings.
type EvalConfig struct {
	Workers   int    `yaml:"workers"`
	CacheSize int    `yaml:"cache_size"` // Probability cache entries (0 = disabled)
	Probe     string `yaml:"probe"`      // Sentence scored after every evaluation
}

// HistoryConfig controls run recording.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ModelTypes lists the accepted model.type values.
var ModelTypes = []string{"unigram", "bigram", "trigram", "interpolate"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Train:    []string{"A2-Data/1b_benchmark.train.tokens"},
			Dev:      []string{"A2-Data/1b_benchmark.dev.tokens"},
			Test:     []string{"A2-Data/1b_benchmark.test.tokens"},
			Excludes: []string{"**/.git/**", "**/.ngramlm/**"},
			Fraction: 1.0,
		},
		Model: ModelConfig{
			Type:         "unigram",
			OOVThreshold: 3,
		},
		Interpolation: InterpolationConfig{
			Lambdas:   []float64{0.1, 0.3, 0.6},
			Tolerance: 1e-5,
			TuneStep:  0.1,
		},
		Eval: EvalConfig{
			Workers: 1,
			Probe:   "HDTV .",
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for ngramlm.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "ngramlm.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".ngramlm", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings the tool cannot run with.
func (c *Config) Validate() error {
	if c.Corpus.Fraction <= 0 || c.Corpus.Fraction > 1 {
		return fmt.Errorf("corpus.fraction must be in (0,1], got %g", c.Corpus.Fraction)
	}
	if !validModelType(c.Model.Type) {
		return fmt.Errorf("model.type must be one of %v, got %q", ModelTypes, c.Model.Type)
	}
	if c.Model.OOVThreshold < 0 {
		return fmt.Errorf("model.oov_threshold must not be negative, got %d", c.Model.OOVThreshold)
	}
	if len(c.Interpolation.Lambdas) != 3 {
		return fmt.Errorf("interpolation.lambdas needs 3 values, got %d", len(c.Interpolation.Lambdas))
	}
	if step := c.Interpolation.TuneStep; step <= 0 || step > 1 || math.IsNaN(step) {
		return fmt.Errorf("interpolation.tune_step must be in (0,1], got %g", step)
	}
	if c.Eval.Workers < 0 {
		return fmt.Errorf("eval.workers must not be negative, got %d", c.Eval.Workers)
	}
	if c.Eval.CacheSize < 0 {
		return fmt.Errorf("eval.cache_size must not be negative, got %d", c.Eval.CacheSize)
	}
	return nil
}

// Patterns returns the corpus patterns for a split name. An empty per-split
// list falls back to corpus.pattern with {set} replaced by the split name.
func (c *Config) Patterns(split string) ([]string, error) {
	var patterns []string
	switch split {
	case "train":
		patterns = c.Corpus.Train
	case "dev":
		patterns = c.Corpus.Dev
	case "test":
		patterns = c.Corpus.Test
	default:
		return nil, fmt.Errorf("unknown split %q (want train, dev or test)", split)
	}
	if len(patterns) == 0 && c.Corpus.Pattern != "" {
		patterns = []string{strings.ReplaceAll(c.Corpus.Pattern, "{set}", split)}
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no corpus patterns configured for split %q", split)
	}
	return patterns, nil
}

func validModelType(t string) bool {
	for _, m := range ModelTypes {
		if m == t {
			return true
		}
	}
	return false
}

// HistoryDBPath returns the path to the run history database.
func HistoryDBPath(dir string) string {
	return filepath.Join(dir, ".ngramlm", "history.db")
}

// EnsureDataDir ensures the .ngramlm directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".ngramlm"), 0755)
}
