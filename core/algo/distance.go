package algo

import (
	"fmt"
	"math"
	"sort"

	"github.com/huangsam/depthaudit/schema"
)

// OrderingFromDepths returns keypoint indices sorted by ascending depth.
// Equal depths keep their index order.
func OrderingFromDepths(depths []float64) schema.DepthOrdering {
	ordering := make(schema.DepthOrdering, len(depths))
	for i := range ordering {
		ordering[i] = i
	}
	sort.SliceStable(ordering, func(i, j int) bool {
		return depths[ordering[i]] < depths[ordering[j]]
	})
	return ordering
}

// NaiveScore sums, over every keypoint, how far its rank in the annotator's
// ordering is from its rank in the truth ordering. Zero is a perfect ordering.
func NaiveScore(annotator, truth schema.DepthOrdering) (int, error) {
	annRanks, truthRanks, err := pairedRanks(annotator, truth)
	if err != nil {
		return 0, err
	}
	score := 0
	for k := range annRanks {
		score += abs(truthRanks[k] - annRanks[k])
	}
	return score, nil
}

// DistanceScore is the mean absolute true-depth difference between the keypoint
// the annotator put at each rank and the keypoint the truth puts there.
func DistanceScore(annotator, truth schema.DepthOrdering, depths []float64) (float64, error) {
	if _, _, err := pairedRanks(annotator, truth); err != nil {
		return 0, err
	}
	if len(depths) != len(truth) {
		return 0, fmt.Errorf("%d depths for %d keypoints", len(depths), len(truth))
	}
	score := 0.0
	for i := range annotator {
		score += math.Abs(depths[annotator[i]] - depths[truth[i]])
	}
	return score / float64(len(depths)), nil
}

func pairedRanks(annotator, truth schema.DepthOrdering) ([]int, []int, error) {
	if len(annotator) != len(truth) {
		return nil, nil, fmt.Errorf("ordering lengths differ: %d vs %d", len(annotator), len(truth))
	}
	annRanks, ok := annotator.Ranks()
	if !ok {
		return nil, nil, fmt.Errorf("annotator ordering %v: %w", annotator, schema.ErrMissingComparisonData)
	}
	truthRanks, ok := truth.Ranks()
	if !ok {
		return nil, nil, fmt.Errorf("truth ordering %v is not a permutation", truth)
	}
	return annRanks, truthRanks, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
