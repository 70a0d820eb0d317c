package detect

import (
	"context"
	"fmt"

	"github.com/kozaktomas/photo-curator/internal/config"
	"github.com/kozaktomas/photo-curator/internal/library"
	"github.com/kozaktomas/photo-curator/internal/vecindex"
)

// FeatureExtractor computes a feature vector for raw image bytes.
// fingerprint.EmbeddingClient is the production implementation.
type FeatureExtractor interface {
	ComputeEmbedding(ctx context.Context, imageData []byte) ([]float32, error)
}

// VectorIndex is the precomputed nearest-neighbor index consulted before
// falling back to on-demand extraction. Implementations must be safe for
// concurrent use; vecindex.Index satisfies this after Load.
type VectorIndex interface {
	Loaded() bool
	Vectors(category string) []vecindex.Vector
	Search(category string, query []float32, k int) []vecindex.Neighbor
}

// Service runs analyses over a photo library and caches their results.
// Extractor and index are both optional: without an index, similarity and
// outlier detection extract vectors on demand; without an extractor they are
// limited to categories covered by the index.
type Service struct {
	lib       *library.Library
	extractor FeatureExtractor
	index     VectorIndex
	params    config.ParamsConfig
	cache     *Cache
}

// NewService wires the detection engine. extractor and index may be nil.
func NewService(lib *library.Library, extractor FeatureExtractor, index VectorIndex, params config.ParamsConfig) *Service {
	return &Service{
		lib:       lib,
		extractor: extractor,
		index:     index,
		params:    params,
		cache:     NewCache(),
	}
}

// DefaultDuplicateParams returns the configured defaults.
func (s *Service) DefaultDuplicateParams() DuplicateParams {
	return DuplicateParams{
		HashSize:         s.params.DefaultInt(config.ParamHashSize),
		HammingThreshold: s.params.DefaultInt(config.ParamHammingThreshold),
	}
}

// DefaultSimilarityParams returns the configured defaults.
func (s *Service) DefaultSimilarityParams() SimilarityParams {
	return SimilarityParams{
		Threshold: s.params.DefaultFloat(config.ParamSimilarityThreshold),
	}
}

// DefaultOutlierParams returns the configured defaults.
func (s *Service) DefaultOutlierParams() OutlierParams {
	return OutlierParams{
		Percentile: s.params.DefaultFloat(config.ParamThresholdPercentile),
	}
}

func (s *Service) validateParam(name string, value float64) error {
	info := s.params.Get(name)
	if info == nil {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return info.Validate(value)
}

// Duplicates finds near-identical images in a category using perceptual
// hashes. Results are cached per (category, parameters).
func (s *Service) Duplicates(ctx context.Context, category string, params DuplicateParams) (DuplicateResult, error) {
	if err := s.validateParam(config.ParamHashSize, float64(params.HashSize)); err != nil {
		return DuplicateResult{}, err
	}
	if err := s.validateParam(config.ParamHammingThreshold, float64(params.HammingThreshold)); err != nil {
		return DuplicateResult{}, err
	}

	key := fmt.Sprintf("hash_size=%d hamming=%d", params.HashSize, params.HammingThreshold)
	value, err := s.cache.Do(category, KindDuplicates, key, func() (any, error) {
		return s.computeDuplicates(ctx, category, params)
	})
	if err != nil {
		return DuplicateResult{}, err
	}
	return value.(DuplicateResult), nil
}

// Similar finds clusters of visually similar images in a category using
// embedding cosine similarity. Results are cached per (category, parameters).
func (s *Service) Similar(ctx context.Context, category string, params SimilarityParams) (SimilarityResult, error) {
	if err := s.validateParam(config.ParamSimilarityThreshold, params.Threshold); err != nil {
		return SimilarityResult{}, err
	}

	key := fmt.Sprintf("threshold=%g", params.Threshold)
	value, err := s.cache.Do(category, KindSimilarity, key, func() (any, error) {
		return s.computeSimilar(ctx, category, params)
	})
	if err != nil {
		return SimilarityResult{}, err
	}
	return value.(SimilarityResult), nil
}

// Outliers flags images unusually far from their category centroid.
// Results are cached per (category, parameters).
func (s *Service) Outliers(ctx context.Context, category string, params OutlierParams) (OutlierResult, error) {
	if err := s.validateParam(config.ParamThresholdPercentile, params.Percentile); err != nil {
		return OutlierResult{}, err
	}

	key := fmt.Sprintf("percentile=%g", params.Percentile)
	value, err := s.cache.Do(category, KindOutliers, key, func() (any, error) {
		return s.computeOutliers(ctx, category, params)
	})
	if err != nil {
		return OutlierResult{}, err
	}
	return value.(OutlierResult), nil
}

// Combined runs all three analyses for a category. Each part is cached
// individually, so a combined request reuses whatever is already computed.
func (s *Service) Combined(ctx context.Context, category string, params CombinedParams) (CombinedResult, error) {
	duplicates, err := s.Duplicates(ctx, category, params.Duplicates)
	if err != nil {
		return CombinedResult{}, err
	}
	similar, err := s.Similar(ctx, category, params.Similarity)
	if err != nil {
		return CombinedResult{}, err
	}
	outliers, err := s.Outliers(ctx, category, params.Outliers)
	if err != nil {
		return CombinedResult{}, err
	}

	return CombinedResult{
		Category:   category,
		Duplicates: duplicates,
		Similar:    similar,
		Outliers:   outliers,
	}, nil
}

// InvalidateCategory evicts all cached results of a category. The deletion
// queue calls this after files were removed from disk.
func (s *Service) InvalidateCategory(category string) {
	s.cache.Invalidate(category)
}

// ClearCache evicts everything and returns the number of removed entries.
func (s *Service) ClearCache() int {
	return s.cache.Clear()
}

// CacheStats reports the current cache contents.
func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}

// IndexLoaded reports whether a precomputed vector index is available.
func (s *Service) IndexLoaded() bool {
	return s.index != nil && s.index.Loaded()
}
