package loader

import (
	"context"
	"fmt"

	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
)

// rawRotations mirrors the exported camera calibration: one 3x3 matrix per
// camera and subject, stored in camera-to-world orientation.
type rawRotations struct {
	CameraIDs  []int             `json:"camera_ids"`
	SubjectIDs []int             `json:"subject_ids"`
	Matrices   [][][3][3]float64 `json:"matrices"`
}

// RotationFile reads rotation matrices from JSON.
type RotationFile struct {
	Path string
}

var _ contract.RotationProvider = &RotationFile{} // Compile-time check

// NewRotationFile creates a rotation provider for the given path.
func NewRotationFile(path string) *RotationFile {
	return &RotationFile{Path: path}
}

// LoadRotations implements the RotationProvider interface.
// Matrices are transposed on load so the table holds image rotations.
func (s *RotationFile) LoadRotations(ctx context.Context) (*schema.RotationTable, error) {
	var raw rawRotations
	if err := readJSON(ctx, s.Path, &raw); err != nil {
		return nil, err
	}
	if len(raw.Matrices) != len(raw.CameraIDs) {
		return nil, fmt.Errorf("rotations: %d camera ids but %d matrix rows", len(raw.CameraIDs), len(raw.Matrices))
	}
	table := &schema.RotationTable{
		CameraIDs:  raw.CameraIDs,
		SubjectIDs: raw.SubjectIDs,
		Matrices:   make([][][3][3]float64, len(raw.Matrices)),
	}
	for ci, row := range raw.Matrices {
		if len(row) != len(raw.SubjectIDs) {
			return nil, fmt.Errorf("rotations: camera %d has %d matrices for %d subjects", raw.CameraIDs[ci], len(row), len(raw.SubjectIDs))
		}
		table.Matrices[ci] = make([][3][3]float64, len(row))
		for si, m := range row {
			table.Matrices[ci][si] = transpose(m)
		}
	}
	return table, nil
}

func transpose(m [3][3]float64) [3][3]float64 {
	var t [3][3]float64
	for i := range 3 {
		for j := range 3 {
			t[i][j] = m[j][i]
		}
	}
	return t
}
