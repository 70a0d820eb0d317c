package cmd

import (
	"fmt"

	"github.com/kozaktomas/photo-curator/internal/config"
	"github.com/kozaktomas/photo-curator/internal/detect"
	"github.com/kozaktomas/photo-curator/internal/fingerprint"
	"github.com/kozaktomas/photo-curator/internal/library"
	"github.com/kozaktomas/photo-curator/internal/vecindex"
)

// buildEngine wires the library and the detection service from configuration.
// The extractor and the vector index are both optional: without them the
// engine runs in degraded mode and similarity analyses cover fewer images.
func buildEngine(cfg *config.Config) (*library.Library, *detect.Service, error) {
	lib, err := library.New(cfg.Library.BaseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening photo library: %w", err)
	}

	var extractor detect.FeatureExtractor
	if cfg.Embedding.URL != "" {
		extractor = fingerprint.NewEmbeddingClient(cfg.Embedding.URL)
		fmt.Printf("Embedding server: %s\n", cfg.Embedding.URL)
	} else {
		fmt.Println("No embedding server configured (EMBEDDING_URL), on-demand extraction disabled")
	}

	var index detect.VectorIndex
	if cfg.Index.Dir != "" {
		idx, err := vecindex.Load(cfg.Index.Dir)
		if err != nil {
			fmt.Printf("Warning: failed to load vector index from %s: %v\n", cfg.Index.Dir, err)
			fmt.Println("Similarity and outlier detection will extract embeddings on demand")
		} else {
			fmt.Printf("Vector index loaded: %d vectors, %d categories\n", idx.Count(), len(idx.Categories()))
			index = idx
		}
	}

	return lib, detect.NewService(lib, extractor, index, cfg.Params), nil
}
