package detect

import (
	"context"

	"github.com/kozaktomas/photo-curator/internal/fingerprint"
)

// computeDuplicates hashes every image of a category and groups images whose
// Hamming distance is within the threshold. Components are built over
// pairwise links, so a chain A-B-C ends up in one group even when A and C
// alone would not match; that greedy policy is intentional.
func (s *Service) computeDuplicates(ctx context.Context, category string, params DuplicateParams) (DuplicateResult, error) {
	files, err := s.lib.List(category)
	if err != nil {
		return DuplicateResult{}, err
	}

	result := DuplicateResult{
		Category:         category,
		TotalImages:      len(files),
		HashSize:         params.HashSize,
		HammingThreshold: params.HammingThreshold,
	}

	// Arena of successfully hashed images in scan order. Corrupt or
	// unreadable files are skipped and show up as the difference between
	// TotalImages and HashedImages.
	var records []ImageRecord
	var hashes []fingerprint.Hash
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return DuplicateResult{}, err
		}
		data, err := s.lib.ReadFile(category, f.Name)
		if err != nil {
			continue
		}
		hash, err := fingerprint.ComputeHash(data, params.HashSize)
		if err != nil {
			continue
		}
		records = append(records, ImageRecord{
			Filename: f.Name,
			Path:     category + "/" + f.Name,
			Size:     f.Size,
			Hash:     hash.Hex(),
		})
		hashes = append(hashes, hash)
	}
	result.HashedImages = len(records)

	uf := newUnionFind(len(records))
	for i := range records {
		for j := i + 1; j < len(records); j++ {
			if fingerprint.Similar(hashes[i], hashes[j], params.HammingThreshold) {
				uf.union(i, j)
			}
		}
	}

	for _, members := range uf.groups() {
		// Keep the largest file; ties go to the first in scan order.
		keep := members[0]
		for _, idx := range members[1:] {
			if records[idx].Size > records[keep].Size {
				keep = idx
			}
		}

		group := DuplicateGroup{
			ID:           len(result.Groups) + 1,
			Keep:         records[keep],
			TotalInGroup: len(members),
		}
		for _, idx := range members {
			if idx != keep {
				group.Duplicates = append(group.Duplicates, records[idx])
			}
		}
		result.Groups = append(result.Groups, group)
		result.TotalDuplicates += len(group.Duplicates)
	}

	return result, nil
}
