package agg

import (
	"github.com/huangsam/depthaudit/core/algo"
	"github.com/huangsam/depthaudit/schema"
)

// newTestTruth builds a truth record whose ordering is derived from depths.
func newTestTruth(imageID int64, depths ...float64) *schema.Truth {
	return &schema.Truth{
		ImageID:   imageID,
		Filename:  "img.jpg",
		KptsDepth: depths,
		Ordering:  algo.OrderingFromDepths(depths),
	}
}

// newTestHit builds a resolved hit. Every human result is marked as presented.
func newTestHit(hitID int64, worker string, truth *schema.Truth, ordering schema.DepthOrdering, human map[schema.ComparisonKey]schema.ComparisonResult) *schema.HitRecord {
	hit := &schema.HitRecord{
		HitID:        hitID,
		WorkerID:     worker,
		ImageID:      truth.ImageID,
		Ordering:     ordering,
		HumanResults: human,
		Truth:        truth,
	}
	for k := range human {
		hit.HumanMadeKeys = append(hit.HumanMadeKeys, k)
	}
	resolved, err := Resolve(hit)
	if err != nil {
		hit.Err = err
		return hit
	}
	hit.Resolved = resolved
	return hit
}
