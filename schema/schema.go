// Package schema has models, enums and error kinds for all parts of depthaudit.
package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// KeypointSet is the ordered list of body joints shared by every record.
type KeypointSet []string

// DefaultKeypoints is the Human3.6M skeleton after the redundant neck joint is removed.
var DefaultKeypoints = KeypointSet{
	"head",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
}

// Name returns the joint name for a keypoint index, or its number when out of range.
func (ks KeypointSet) Name(idx int) string {
	if idx >= 0 && idx < len(ks) {
		return ks[idx]
	}
	return strconv.Itoa(idx)
}

// Pose3D is a flat sequence of (x, y, z) triples, one per keypoint.
type Pose3D []float64

// Len returns the number of keypoints in the pose.
func (p Pose3D) Len() int { return len(p) / 3 }

// Axis extracts one coordinate (0=x, 1=y, 2=z) of every keypoint.
func (p Pose3D) Axis(axis int) []float64 {
	out := make([]float64, 0, p.Len())
	for i := axis; i < len(p); i += 3 {
		out = append(out, p[i])
	}
	return out
}

// DepthOrdering is a permutation of keypoint indices sorted by ascending depth.
type DepthOrdering []int

// Index returns the rank of a keypoint in the ordering, or -1 if absent.
func (o DepthOrdering) Index(kpt int) int {
	for i, k := range o {
		if k == kpt {
			return i
		}
	}
	return -1
}

// Ranks returns the rank of every keypoint, indexed by keypoint.
// It reports false when the ordering is not a permutation of 0..len-1.
func (o DepthOrdering) Ranks() ([]int, bool) {
	ranks := make([]int, len(o))
	for i := range ranks {
		ranks[i] = -1
	}
	for i, k := range o {
		if k < 0 || k >= len(o) || ranks[k] != -1 {
			return nil, false
		}
		ranks[k] = i
	}
	return ranks, true
}

// Valid reports whether the ordering is a total order over 0..len-1.
func (o DepthOrdering) Valid() bool {
	if len(o) == 0 {
		return false
	}
	_, ok := o.Ranks()
	return ok
}

// ComparisonKey identifies a keypoint pair. Generated keys have Kpt1 < Kpt2;
// human-made keys keep whatever orientation the GUI recorded.
type ComparisonKey struct {
	Kpt1 int `json:"kpt1"`
	Kpt2 int `json:"kpt2"`
}

// Canonical returns the key with Kpt1 < Kpt2.
func (k ComparisonKey) Canonical() ComparisonKey {
	if k.Kpt1 > k.Kpt2 {
		return k.Reversed()
	}
	return k
}

// Reversed swaps the two keypoints.
func (k ComparisonKey) Reversed() ComparisonKey {
	return ComparisonKey{Kpt1: k.Kpt2, Kpt2: k.Kpt1}
}

// IsCanonical reports whether Kpt1 < Kpt2.
func (k ComparisonKey) IsCanonical() bool { return k.Kpt1 < k.Kpt2 }

// String renders the key in the GUI's "k1,k2" form.
func (k ComparisonKey) String() string {
	return strconv.Itoa(k.Kpt1) + "," + strconv.Itoa(k.Kpt2)
}

// ParseComparisonKey parses the GUI's "k1,k2" form.
func ParseComparisonKey(s string) (ComparisonKey, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return ComparisonKey{}, fmt.Errorf("invalid comparison key %q", s)
	}
	k1, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return ComparisonKey{}, fmt.Errorf("invalid comparison key %q: %w", s, err)
	}
	k2, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return ComparisonKey{}, fmt.Errorf("invalid comparison key %q: %w", s, err)
	}
	if k1 == k2 {
		return ComparisonKey{}, fmt.Errorf("invalid comparison key %q: keypoint compared with itself", s)
	}
	return ComparisonKey{Kpt1: k1, Kpt2: k2}, nil
}

// AllPairs returns every canonical key over n keypoints in lexicographic order.
func AllPairs(n int) []ComparisonKey {
	if n < 2 {
		return nil
	}
	keys := make([]ComparisonKey, 0, n*(n-1)/2)
	for i := range n {
		for j := i + 1; j < n; j++ {
			keys = append(keys, ComparisonKey{Kpt1: i, Kpt2: j})
		}
	}
	return keys
}

// ComparisonResult is the signed depth judgement for a key: +1 means Kpt1 is
// shallower than Kpt2, -1 the opposite, 0 an unresolved tie.
type ComparisonResult int8

// Comparison results.
const (
	Farther ComparisonResult = -1
	Tie     ComparisonResult = 0
	Closer  ComparisonResult = 1
)

// SignOf converts an integer difference into a ComparisonResult.
func SignOf(v int) ComparisonResult {
	switch {
	case v > 0:
		return Closer
	case v < 0:
		return Farther
	default:
		return Tie
	}
}

// SignOfFloat converts a float difference into a ComparisonResult.
func SignOfFloat(v float64) ComparisonResult {
	switch {
	case v > 0:
		return Closer
	case v < 0:
		return Farther
	default:
		return Tie
	}
}

// Valid reports whether the value is one of -1, 0, +1.
func (r ComparisonResult) Valid() bool { return r >= Farther && r <= Closer }
