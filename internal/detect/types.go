// Package detect implements the detection and analysis engine: perceptual
// hash deduplication, embedding similarity clustering, centroid based outlier
// detection and the per-category result cache.
package detect

// ImageRecord describes a single analyzed image. Records are immutable once
// computed within one analysis pass.
type ImageRecord struct {
	Filename string `json:"filename"`
	Path     string `json:"path"` // category/filename
	Size     int64  `json:"size"`
	Hash     string `json:"hash,omitempty"` // perceptual hash as hex, when computed
}

// DuplicateGroup is one connected component of near-identical images.
// Keep is the largest member by file size; the rest are candidates for removal.
type DuplicateGroup struct {
	ID           int           `json:"group_id"`
	Keep         ImageRecord   `json:"keep"`
	Duplicates   []ImageRecord `json:"duplicates"`
	TotalInGroup int           `json:"total_in_group"`
}

// DuplicateResult is the outcome of hash based duplicate detection for one category.
type DuplicateResult struct {
	Category         string           `json:"category"`
	TotalImages      int              `json:"total_images"`
	HashedImages     int              `json:"hashed_images"`
	Groups           []DuplicateGroup `json:"duplicate_groups"`
	TotalDuplicates  int              `json:"total_duplicates"`
	HashSize         int              `json:"hash_size"`
	HammingThreshold int              `json:"hamming_threshold"`
}

// SimilarGroup is a cluster of visually similar images, largest file first.
type SimilarGroup struct {
	ID            int           `json:"group_id"`
	Images        []ImageRecord `json:"images"`
	Count         int           `json:"count"`
	AvgSimilarity *float64      `json:"avg_similarity,omitempty"` // mean over all member pairs
}

// SimilarityResult is the outcome of embedding based similarity detection.
// FromIndex reports whether vectors were served by the precomputed index.
type SimilarityResult struct {
	Category        string         `json:"category"`
	TotalImages     int            `json:"total_images"`
	ProcessedImages int            `json:"processed_images"`
	Groups          []SimilarGroup `json:"similar_groups"`
	TotalInGroups   int            `json:"total_in_groups"`
	Threshold       float64        `json:"similarity_threshold"`
	FromIndex       bool           `json:"from_index"`
}

// OutlierRecord is an image flagged as unusually far from its category centroid.
// ZScore is omitted when the distance distribution has zero deviation.
type OutlierRecord struct {
	ImageRecord
	DistanceToCentroid float64  `json:"distance_to_centroid"`
	ZScore             *float64 `json:"z_score,omitempty"`
}

// OutlierResult is the outcome of centroid based outlier detection.
type OutlierResult struct {
	Category          string          `json:"category"`
	TotalImages       int             `json:"total_images"` // images with embeddings
	Outliers          []OutlierRecord `json:"outliers"`     // most distant first
	OutlierCount      int             `json:"outlier_count"`
	Percentile        float64         `json:"threshold_percentile"`
	ComputedThreshold float64         `json:"computed_threshold"`
	MeanDistance      float64         `json:"mean_distance"`
	StdDistance       float64         `json:"std_distance"`
}

// CombinedResult bundles all three analyses for one category.
type CombinedResult struct {
	Category   string           `json:"category"`
	Duplicates DuplicateResult  `json:"duplicates"`
	Similar    SimilarityResult `json:"similar"`
	Outliers   OutlierResult    `json:"outliers"`
}

// DuplicateParams are the tunables of duplicate detection.
type DuplicateParams struct {
	HashSize         int
	HammingThreshold int
}

// SimilarityParams are the tunables of similarity detection.
type SimilarityParams struct {
	Threshold float64
}

// OutlierParams are the tunables of outlier detection.
type OutlierParams struct {
	Percentile float64
}

// CombinedParams bundles the parameters for a combined analysis.
type CombinedParams struct {
	Duplicates DuplicateParams
	Similarity SimilarityParams
	Outliers   OutlierParams
}
