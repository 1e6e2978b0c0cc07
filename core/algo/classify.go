package algo

import (
	"fmt"
	"math"

	"github.com/huangsam/depthaudit/schema"
)

// DepthDiff returns depth(Kpt2) - depth(Kpt1) for a key.
func DepthDiff(key schema.ComparisonKey, depths []float64) (float64, error) {
	if key.Kpt1 < 0 || key.Kpt1 >= len(depths) || key.Kpt2 < 0 || key.Kpt2 >= len(depths) {
		return 0, fmt.Errorf("key %s outside %d keypoints", key, len(depths))
	}
	return depths[key.Kpt2] - depths[key.Kpt1], nil
}

// Judge classifies result r against a true depth difference d.
//
// Under LenientTies a result is correct when it is a tie and |d| is below the
// threshold, or when its sign matches d. Under StrictTies a true difference
// below the threshold counts as a tie, so only a tie result matches it.
func Judge(d float64, r schema.ComparisonResult, threshold float64, rule schema.TieRule) schema.Verdict {
	near := math.Abs(d) < threshold
	if rule == schema.StrictTies && near {
		if r == schema.Tie {
			return schema.Correct
		}
		return schema.Incorrect
	}
	if (near && r == schema.Tie) || r == schema.SignOfFloat(d) {
		return schema.Correct
	}
	return schema.Incorrect
}

// Classify judges the result for key against ground-truth depths under the lenient rule.
func Classify(key schema.ComparisonKey, r schema.ComparisonResult, depths []float64, threshold float64) (schema.Verdict, error) {
	d, err := DepthDiff(key, depths)
	if err != nil {
		return schema.Incorrect, err
	}
	return Judge(d, r, threshold, schema.LenientTies), nil
}
