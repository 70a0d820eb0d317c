package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed params.yaml
var paramsYAML []byte

// Names of the tunable analysis parameters declared in params.yaml.
const (
	ParamHashSize            = "hash_size"
	ParamHammingThreshold    = "hamming_threshold"
	ParamSimilarityThreshold = "similarity_threshold"
	ParamThresholdPercentile = "threshold_percentile"
)

type Config struct {
	Library   LibraryConfig
	Embedding EmbeddingConfig
	Index     IndexConfig
	Params    ParamsConfig
}

type LibraryConfig struct {
	BaseDir string // directory containing one sub-directory of images per category
}

type EmbeddingConfig struct {
	URL string // embedding server URL (e.g., http://localhost:8000), empty disables on-demand extraction
	Dim int    // expected embedding dimension, defaults to 768
}

type IndexConfig struct {
	Dir string // directory with a precomputed vector index (optional)
}

// ParamInfo describes a single analysis parameter: its bounds, default
// and the metadata the UI needs to render a slider for it.
type ParamInfo struct {
	Name        string  `yaml:"name" json:"name"`
	Label       string  `yaml:"label" json:"label"`
	Description string  `yaml:"description" json:"description"`
	Type        string  `yaml:"type" json:"type"` // "int" or "float"
	Min         float64 `yaml:"min" json:"min"`
	Max         float64 `yaml:"max" json:"max"`
	Default     float64 `yaml:"default" json:"default"`
	Step        float64 `yaml:"step" json:"step"`
}

// Validate checks that a value is within the declared bounds.
func (p ParamInfo) Validate(value float64) error {
	if value < p.Min || value > p.Max {
		return fmt.Errorf("%s must be between %g and %g, got %g", p.Name, p.Min, p.Max, value)
	}
	return nil
}

// ParamsConfig holds the analysis parameter descriptions loaded from the
// embedded params.yaml.
type ParamsConfig struct {
	Parameters []ParamInfo `yaml:"parameters"`
}

// Get returns the parameter description by name, nil if unknown.
func (p ParamsConfig) Get(name string) *ParamInfo {
	for i := range p.Parameters {
		if p.Parameters[i].Name == name {
			return &p.Parameters[i]
		}
	}
	return nil
}

// DefaultInt returns the default value of an integer parameter.
func (p ParamsConfig) DefaultInt(name string) int {
	if info := p.Get(name); info != nil {
		return int(info.Default)
	}
	return 0
}

// DefaultFloat returns the default value of a float parameter.
func (p ParamsConfig) DefaultFloat(name string) float64 {
	if info := p.Get(name); info != nil {
		return info.Default
	}
	return 0
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var params ParamsConfig
	if err := yaml.Unmarshal(paramsYAML, &params); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded params.yaml: " + err.Error())
	}

	return &Config{
		Library: LibraryConfig{
			BaseDir: envString("LIBRARY_DIR", "images"),
		},
		Embedding: EmbeddingConfig{
			URL: os.Getenv("EMBEDDING_URL"),
			Dim: envInt("EMBEDDING_DIM", 768),
		},
		Index: IndexConfig{
			Dir: os.Getenv("VECTOR_INDEX_DIR"),
		},
		Params: params,
	}
}
