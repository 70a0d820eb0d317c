package detect

import (
	"context"
	"math"
	"sort"

	"github.com/kozaktomas/photo-curator/internal/fingerprint"
)

// computeOutliers flags images whose embedding sits unusually far from the
// category centroid. With fewer than two embedded images the result is empty;
// a single photo has no distribution to be an outlier of.
func (s *Service) computeOutliers(ctx context.Context, category string, params OutlierParams) (OutlierResult, error) {
	files, err := s.lib.List(category)
	if err != nil {
		return OutlierResult{}, err
	}

	result := OutlierResult{
		Category:   category,
		Percentile: params.Percentile,
	}

	images, _, err := s.categoryEmbeddings(ctx, category, files)
	if err != nil {
		return OutlierResult{}, err
	}
	result.TotalImages = len(images)
	if len(images) < 2 {
		return result, nil
	}

	// Centroid of unit vectors, so every image contributes equally regardless
	// of its embedding magnitude.
	dim := len(images[0].vector)
	centroid := make([]float32, dim)
	for _, img := range images {
		unit := fingerprint.Normalize(img.vector)
		for i := range centroid {
			if i < len(unit) {
				centroid[i] += unit[i]
			}
		}
	}
	for i := range centroid {
		centroid[i] /= float32(len(images))
	}

	distances := make([]float64, len(images))
	for i, img := range images {
		distances[i] = fingerprint.CosineDistance(img.vector, centroid)
	}

	mean, std := meanStd(distances)
	result.MeanDistance = mean
	result.StdDistance = std
	result.ComputedThreshold = percentile(distances, params.Percentile)

	for i, img := range images {
		if distances[i] <= result.ComputedThreshold {
			continue
		}
		outlier := OutlierRecord{
			ImageRecord:        img.record,
			DistanceToCentroid: distances[i],
		}
		if std > 0 {
			z := (distances[i] - mean) / std
			outlier.ZScore = &z
		}
		result.Outliers = append(result.Outliers, outlier)
	}

	sort.SliceStable(result.Outliers, func(a, b int) bool {
		return result.Outliers[a].DistanceToCentroid > result.Outliers[b].DistanceToCentroid
	})
	result.OutlierCount = len(result.Outliers)

	return result, nil
}

// meanStd returns the mean and population standard deviation.
func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

// percentile returns the p-th percentile of values using linear interpolation
// between the two nearest ranks.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower < 0 {
		lower = 0
	}
	if upper >= len(sorted) {
		upper = len(sorted) - 1
	}
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
