package loader

import (
	"context"
	"fmt"

	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
)

// rawImage is one image record of the pose dataset.
type rawImage struct {
	ID        int64  `json:"id"`
	CameraID  int    `json:"c_id"`
	SubjectID int    `json:"s_id"`
	Filename  string `json:"filename"`
}

// rawAnnotation is one pose annotation, joined to its image by ImageID.
type rawAnnotation struct {
	ImageID   int64     `json:"i_id"`
	SubjectID int       `json:"s_id"`
	ActionID  int       `json:"a_id"`
	Kpts2D    []float64 `json:"kpts_2d"`
	Kpts3D    []float64 `json:"kpts_3d"`
}

// rawDataset is the top-level pose dataset file.
type rawDataset struct {
	Images      []rawImage      `json:"images"`
	Annotations []rawAnnotation `json:"annotations"`
	Actions     []schema.Action `json:"actions"`
}

// TruthFile reads the ground-truth pose dataset from JSON.
type TruthFile struct {
	Path string
}

var _ contract.GroundTruthSource = &TruthFile{} // Compile-time check

// NewTruthFile creates a ground-truth source for the given path.
func NewTruthFile(path string) *TruthFile {
	return &TruthFile{Path: path}
}

// LoadTruths implements the GroundTruthSource interface.
// Each image must have exactly one annotation.
func (s *TruthFile) LoadTruths(ctx context.Context) (*schema.TruthSet, error) {
	var ds rawDataset
	if err := readJSON(ctx, s.Path, &ds); err != nil {
		return nil, err
	}
	return joinDataset(ds)
}

// joinDataset pairs images with their annotations in image order.
func joinDataset(ds rawDataset) (*schema.TruthSet, error) {
	byImage := make(map[int64]rawAnnotation, len(ds.Annotations))
	for _, ann := range ds.Annotations {
		if _, dup := byImage[ann.ImageID]; dup {
			return nil, fmt.Errorf("image %d has more than one annotation", ann.ImageID)
		}
		byImage[ann.ImageID] = ann
	}

	set := &schema.TruthSet{
		Truths:  make([]schema.Truth, 0, len(ds.Images)),
		Actions: ds.Actions,
	}
	for _, img := range ds.Images {
		ann, ok := byImage[img.ID]
		if !ok {
			return nil, fmt.Errorf("image %d has no annotation", img.ID)
		}
		set.Truths = append(set.Truths, schema.Truth{
			ImageID:   img.ID,
			CameraID:  img.CameraID,
			SubjectID: img.SubjectID,
			ActionID:  ann.ActionID,
			Filename:  img.Filename,
			Kpts2D:    ann.Kpts2D,
			Kpts3D:    schema.Pose3D(ann.Kpts3D),
		})
	}
	return set, nil
}
