package detect

import (
	"context"
	"fmt"
	"math"
	"testing"
)

// outlierFixture is nine tightly clustered vectors plus one orthogonal one.
func outlierFixture() (files map[string][]byte, vectors map[string][]float32) {
	files = map[string][]byte{}
	vectors = map[string][]float32{}
	for i := 0; i < 9; i++ {
		name := fmt.Sprintf("normal-%d.jpg", i)
		content := "content-" + name
		files[name] = []byte(content)
		vectors[content] = []float32{1, float32(i) * 0.01, 0, 0}
	}
	files["odd.jpg"] = []byte("content-odd")
	vectors["content-odd"] = []float32{0, 0, 0, 1}
	return files, vectors
}

func TestOutliersFlagsDistantImage(t *testing.T) {
	files, vectors := outlierFixture()
	lib := newTestLibrary(t, map[string]map[string][]byte{"finches": files})
	svc := NewService(lib, &fakeExtractor{vectors: vectors}, nil, testParams(t))

	result, err := svc.Outliers(context.Background(), "finches", OutlierParams{Percentile: 90})
	if err != nil {
		t.Fatalf("Outliers: %v", err)
	}

	if result.TotalImages != 10 {
		t.Errorf("TotalImages = %d; want 10", result.TotalImages)
	}
	if result.OutlierCount != 1 || len(result.Outliers) != 1 {
		t.Fatalf("OutlierCount = %d, outliers = %d; want 1, 1", result.OutlierCount, len(result.Outliers))
	}

	outlier := result.Outliers[0]
	if outlier.Filename != "odd.jpg" {
		t.Errorf("outlier = %s; want odd.jpg", outlier.Filename)
	}
	if outlier.DistanceToCentroid <= result.ComputedThreshold {
		t.Errorf("distance %g not above threshold %g", outlier.DistanceToCentroid, result.ComputedThreshold)
	}
	if outlier.ZScore == nil {
		t.Fatal("ZScore is nil for a spread distribution")
	}
	if *outlier.ZScore <= 0 {
		t.Errorf("ZScore = %g; want positive", *outlier.ZScore)
	}
	if result.StdDistance <= 0 {
		t.Errorf("StdDistance = %g; want positive", result.StdDistance)
	}
	if result.MeanDistance <= 0 {
		t.Errorf("MeanDistance = %g; want positive", result.MeanDistance)
	}
}

func TestOutliersSortedMostDistantFirst(t *testing.T) {
	files, vectors := outlierFixture()
	files["odd2.jpg"] = []byte("content-odd2")
	vectors["content-odd2"] = []float32{0, 0, 1, 0}

	lib := newTestLibrary(t, map[string]map[string][]byte{"finches": files})
	svc := NewService(lib, &fakeExtractor{vectors: vectors}, nil, testParams(t))

	result, err := svc.Outliers(context.Background(), "finches", OutlierParams{Percentile: 80})
	if err != nil {
		t.Fatalf("Outliers: %v", err)
	}
	for i := 1; i < len(result.Outliers); i++ {
		if result.Outliers[i].DistanceToCentroid > result.Outliers[i-1].DistanceToCentroid {
			t.Errorf("outliers not sorted by distance at position %d", i)
		}
	}
}

func TestOutliersSingleImageEmptyResult(t *testing.T) {
	lib := newTestLibrary(t, map[string]map[string][]byte{
		"finches": {"only.jpg": []byte("content-only")},
	})
	extractor := &fakeExtractor{vectors: map[string][]float32{"content-only": {1, 0, 0, 0}}}
	svc := NewService(lib, extractor, nil, testParams(t))

	result, err := svc.Outliers(context.Background(), "finches", OutlierParams{Percentile: 95})
	if err != nil {
		t.Fatalf("Outliers: %v", err)
	}
	if result.TotalImages != 1 {
		t.Errorf("TotalImages = %d; want 1", result.TotalImages)
	}
	if result.OutlierCount != 0 || len(result.Outliers) != 0 {
		t.Errorf("expected no outliers, got %+v", result.Outliers)
	}
	if result.ComputedThreshold != 0 || result.MeanDistance != 0 {
		t.Errorf("expected zero statistics, got threshold %g mean %g", result.ComputedThreshold, result.MeanDistance)
	}
}

func TestOutliersNoEmbeddingsEmptyResult(t *testing.T) {
	files, _ := outlierFixture()
	lib := newTestLibrary(t, map[string]map[string][]byte{"finches": files})
	svc := NewService(lib, nil, nil, testParams(t))

	result, err := svc.Outliers(context.Background(), "finches", OutlierParams{Percentile: 95})
	if err != nil {
		t.Fatalf("Outliers: %v", err)
	}
	if result.TotalImages != 0 || result.OutlierCount != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestOutliersIdenticalVectorsNoOutliers(t *testing.T) {
	files := map[string][]byte{}
	vectors := map[string][]float32{}
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("same-%d.jpg", i)
		content := "content-" + name
		files[name] = []byte(content)
		vectors[content] = []float32{1, 2, 3, 4}
	}
	lib := newTestLibrary(t, map[string]map[string][]byte{"finches": files})
	svc := NewService(lib, &fakeExtractor{vectors: vectors}, nil, testParams(t))

	result, err := svc.Outliers(context.Background(), "finches", OutlierParams{Percentile: 95})
	if err != nil {
		t.Fatalf("Outliers: %v", err)
	}
	if result.OutlierCount != 0 {
		t.Errorf("OutlierCount = %d; want 0 for identical vectors", result.OutlierCount)
	}
	if result.StdDistance != 0 {
		t.Errorf("StdDistance = %g; want 0", result.StdDistance)
	}
}

func TestOutlierCountShrinksWithPercentile(t *testing.T) {
	files, vectors := outlierFixture()
	lib := newTestLibrary(t, map[string]map[string][]byte{"finches": files})
	svc := NewService(lib, &fakeExtractor{vectors: vectors}, nil, testParams(t))
	ctx := context.Background()

	low, err := svc.Outliers(ctx, "finches", OutlierParams{Percentile: 80})
	if err != nil {
		t.Fatalf("Outliers(80): %v", err)
	}
	high, err := svc.Outliers(ctx, "finches", OutlierParams{Percentile: 99})
	if err != nil {
		t.Fatalf("Outliers(99): %v", err)
	}
	if high.OutlierCount > low.OutlierCount {
		t.Errorf("99th percentile found %d outliers, 80th found %d; want fewer or equal at the higher percentile", high.OutlierCount, low.OutlierCount)
	}
	if high.ComputedThreshold < low.ComputedThreshold {
		t.Errorf("threshold at 99th (%g) below 80th (%g)", high.ComputedThreshold, low.ComputedThreshold)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{50, 3},
		{100, 5},
		{25, 2},
		{90, 4.6},
	}
	for _, tt := range tests {
		if got := percentile(values, tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("percentile(%g) = %g; want %g", tt.p, got, tt.want)
		}
	}
	if got := percentile(nil, 95); got != 0 {
		t.Errorf("percentile(empty) = %g; want 0", got)
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 {
		t.Errorf("mean = %g; want 5", mean)
	}
	if std != 2 {
		t.Errorf("std = %g; want 2 (population deviation)", std)
	}
	if mean, std := meanStd(nil); mean != 0 || std != 0 {
		t.Errorf("meanStd(empty) = %g, %g; want 0, 0", mean, std)
	}
}
