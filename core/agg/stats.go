package agg

import (
	"slices"

	"github.com/huangsam/depthaudit/core/algo"
	"github.com/huangsam/depthaudit/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DepthRangeBins matches the coarse binning used for depth range plots.
const DepthRangeBins = 6

// DepthRangeStats summarizes, over usable hits, the distance between the
// shallowest and deepest keypoint of the matched truth.
func DepthRangeStats(hits []*schema.HitRecord) schema.DepthStats {
	var ranges []float64
	for _, h := range hits {
		if !h.Usable() || len(h.Truth.KptsDepth) == 0 {
			continue
		}
		ranges = append(ranges, floats.Max(h.Truth.KptsDepth)-floats.Min(h.Truth.KptsDepth))
	}
	st := schema.DepthStats{Records: len(ranges), Ranges: ranges}
	if len(ranges) == 0 {
		return st
	}
	st.Mean = stat.Mean(ranges, nil)
	st.Median = median(ranges)
	st.Min = floats.Min(ranges)
	st.Max = floats.Max(ranges)
	return st
}

// median averages the two middle values of an even-length sample.
func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// ScoreRecords computes the naive and distance scores of every usable hit.
func ScoreRecords(hits []*schema.HitRecord) ([]schema.RecordScore, error) {
	var scores []schema.RecordScore
	for _, h := range hits {
		if !h.Usable() {
			continue
		}
		naive, err := algo.NaiveScore(h.Ordering, h.Truth.Ordering)
		if err != nil {
			return nil, err
		}
		dist, err := algo.DistanceScore(h.Ordering, h.Truth.Ordering, h.Truth.KptsDepth)
		if err != nil {
			return nil, err
		}
		scores = append(scores, schema.RecordScore{
			HitID:    h.HitID,
			WorkerID: h.WorkerID,
			ImageID:  h.ImageID,
			Naive:    naive,
			Distance: dist,
		})
	}
	return scores, nil
}
