package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
)

var identityRotation = [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// rawTruth builds an uncorrected truth whose keypoint i sits at depths[i] on
// axis 1. A neck joint is inserted after the first keypoint, as in the dataset.
func rawTruth(imageID int64, camera, subject, action int, depths ...float64) schema.Truth {
	var kpts2D, kpts3D []float64
	for i, d := range depths {
		kpts2D = append(kpts2D, float64(i), float64(i))
		kpts3D = append(kpts3D, float64(i), d, 1000)
		if i == 0 {
			kpts2D = append(kpts2D, -1, -1)
			kpts3D = append(kpts3D, -1, -999, -1)
		}
	}
	return schema.Truth{
		ImageID:   imageID,
		CameraID:  camera,
		SubjectID: subject,
		ActionID:  action,
		Filename:  fmt.Sprintf("img_%d.jpg", imageID),
		Kpts2D:    kpts2D,
		Kpts3D:    kpts3D,
	}
}

// rawHit builds an unmatched, unresolved hit.
func rawHit(hitID int64, worker string, imageID int64, ordering schema.DepthOrdering, human map[schema.ComparisonKey]schema.ComparisonResult) *schema.HitRecord {
	hit := &schema.HitRecord{
		HitID:        hitID,
		WorkerID:     worker,
		ImageID:      imageID,
		Ordering:     ordering,
		HumanResults: human,
	}
	for k := range human {
		hit.HumanMadeKeys = append(hit.HumanMadeKeys, k)
	}
	return hit
}

// testConfig returns a validated-looking config with default scoring knobs.
func testConfig() *contract.Config {
	return &contract.Config{
		Threshold:      schema.DefaultWorkerThreshold,
		ImageThreshold: schema.DefaultImageThreshold,
		Thresholds:     []float64{1000, 100},
		TieRule:        schema.LenientTies,
		Provenance:     schema.AllProvenance,
		DepthAxis:      schema.DefaultDepthAxis,
		BinWidth:       schema.DefaultBinWidth,
		Absolute:       true,
		Seed:           1,
		ResultLimit:    10,
		Output:         schema.TextOut,
		Precision:      1,
	}
}

// fixture is the shared scenario: image 100 annotated by three workers, one
// hit on an image without truth, one hit without an ordering, and one hit on
// an image whose camera has no rotation.
type fixture struct {
	hits      []*schema.HitRecord
	truths    *schema.TruthSet
	rotations *schema.RotationTable
}

func newFixture() fixture {
	key12 := schema.ComparisonKey{Kpt1: 1, Kpt2: 2}
	return fixture{
		hits: []*schema.HitRecord{
			rawHit(1, "A", 100, schema.DepthOrdering{0, 1, 2, 3}, map[schema.ComparisonKey]schema.ComparisonResult{key12: schema.Closer}),
			rawHit(2, "B", 100, schema.DepthOrdering{0, 2, 1, 3}, map[schema.ComparisonKey]schema.ComparisonResult{key12: schema.Farther}),
			rawHit(3, "C", 100, schema.DepthOrdering{1, 0, 2, 3}, nil),
			rawHit(4, "A", 300, schema.DepthOrdering{0, 1, 2, 3}, nil),
			rawHit(5, "B", 100, nil, nil),
			rawHit(6, "C", 200, schema.DepthOrdering{3, 2, 1, 0}, nil),
		},
		truths: &schema.TruthSet{
			Truths: []schema.Truth{
				rawTruth(100, 1, 1, 2, 0, 100, 200, 300),
				rawTruth(200, 9, 1, 2, 300, 200, 100, 0),
				rawTruth(400, 1, 5, 3, 0, 50, 100, 150),
			},
			Actions: []schema.Action{{ID: 2, Name: "Directions"}, {ID: 3, Name: "Walking", Version: 1}},
		},
		rotations: &schema.RotationTable{
			CameraIDs:  []int{1},
			SubjectIDs: []int{1, 5},
			Matrices:   [][][3][3]float64{{identityRotation, identityRotation}},
		},
	}
}

// sources wires the fixture into mock providers.
func (f fixture) sources(ctx context.Context) contract.DataSources {
	hits := &contract.MockAnnotationSource{}
	hits.On("LoadHits", ctx).Return(f.hits, nil)
	truths := &contract.MockGroundTruthSource{}
	truths.On("LoadTruths", ctx).Return(f.truths, nil)
	rotations := &contract.MockRotationProvider{}
	rotations.On("LoadRotations", ctx).Return(f.rotations, nil)
	return contract.DataSources{Hits: hits, Truths: truths, Rotations: rotations}
}

var errBoom = errors.New("boom")
