package detect

import (
	"context"

	"github.com/kozaktomas/photo-curator/internal/library"
)

// embeddedImage pairs an image record with its feature vector for one pass.
type embeddedImage struct {
	record ImageRecord
	vector []float32
}

// categoryEmbeddings obtains a feature vector for every listed image it can,
// preferring the precomputed index and falling back to the on-demand
// extractor. Images without a vector source, unreadable files and failed
// extractions are skipped. fromIndex reports whether the index served at
// least one vector.
func (s *Service) categoryEmbeddings(ctx context.Context, category string, files []library.ImageFile) (images []embeddedImage, fromIndex bool, err error) {
	var indexed map[string][]float32
	if s.IndexLoaded() {
		vectors := s.index.Vectors(category)
		if len(vectors) > 0 {
			indexed = make(map[string][]float32, len(vectors))
			for _, v := range vectors {
				indexed[v.Filename] = v.Embedding
			}
		}
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		record := ImageRecord{
			Filename: f.Name,
			Path:     category + "/" + f.Name,
			Size:     f.Size,
		}

		if vector, ok := indexed[f.Name]; ok {
			images = append(images, embeddedImage{record: record, vector: vector})
			fromIndex = true
			continue
		}

		if s.extractor == nil {
			continue
		}
		data, err := s.lib.ReadFile(category, f.Name)
		if err != nil {
			continue
		}
		vector, err := s.extractor.ComputeEmbedding(ctx, data)
		if err != nil {
			// Distinguish a cancelled pass from a single bad image.
			if ctx.Err() != nil {
				return nil, false, ctx.Err()
			}
			continue
		}
		images = append(images, embeddedImage{record: record, vector: vector})
	}

	return images, fromIndex, nil
}
