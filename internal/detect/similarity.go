package detect

import (
	"context"
	"sort"

	"github.com/kozaktomas/photo-curator/internal/fingerprint"
)

// computeSimilar clusters a category's images by embedding similarity.
// When every vector came from the precomputed index the candidate pairs are
// found through its nearest-neighbor search; otherwise all pairs are
// compared directly. Both paths link the same pairs for identical vectors
// and thresholds, so group membership does not depend on the path taken.
func (s *Service) computeSimilar(ctx context.Context, category string, params SimilarityParams) (SimilarityResult, error) {
	files, err := s.lib.List(category)
	if err != nil {
		return SimilarityResult{}, err
	}

	result := SimilarityResult{
		Category:    category,
		TotalImages: len(files),
		Threshold:   params.Threshold,
	}

	images, fromIndex, err := s.categoryEmbeddings(ctx, category, files)
	if err != nil {
		return SimilarityResult{}, err
	}
	result.ProcessedImages = len(images)
	result.FromIndex = fromIndex

	n := len(images)
	uf := newUnionFind(n)

	// The index can only propose candidates it holds, so neighbor search is
	// used when no vector had to be extracted on demand.
	useIndexSearch := fromIndex && n > 0 && len(s.index.Vectors(category)) >= n
	if useIndexSearch {
		byName := make(map[string]int, n)
		for i := range images {
			byName[images[i].record.Filename] = i
		}
		for i := range images {
			if err := ctx.Err(); err != nil {
				return SimilarityResult{}, err
			}
			for _, neighbor := range s.index.Search(category, images[i].vector, n) {
				if neighbor.Similarity < params.Threshold {
					continue
				}
				if j, ok := byName[neighbor.Filename]; ok && j != i {
					uf.union(i, j)
				}
			}
		}
	} else {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return SimilarityResult{}, err
			}
			for j := i + 1; j < n; j++ {
				if fingerprint.CosineSimilarity(images[i].vector, images[j].vector) >= params.Threshold {
					uf.union(i, j)
				}
			}
		}
	}

	for _, members := range uf.groups() {
		group := SimilarGroup{
			ID:    len(result.Groups) + 1,
			Count: len(members),
		}

		// Average similarity over all member pairs, not just linked ones.
		var total float64
		var pairs int
		for a := range members {
			for b := a + 1; b < len(members); b++ {
				total += fingerprint.CosineSimilarity(images[members[a]].vector, images[members[b]].vector)
				pairs++
			}
		}
		if pairs > 0 {
			avg := total / float64(pairs)
			group.AvgSimilarity = &avg
		}

		for _, idx := range members {
			group.Images = append(group.Images, images[idx].record)
		}
		sort.SliceStable(group.Images, func(a, b int) bool {
			return group.Images[a].Size > group.Images[b].Size
		})

		result.Groups = append(result.Groups, group)
		result.TotalInGroups += group.Count
	}

	return result, nil
}
