package algo

import (
	"fmt"
	"math"
	"slices"

	"github.com/huangsam/depthaudit/schema"
	"gonum.org/v1/gonum/mat"
)

const (
	// orthonormalTolerance bounds the Frobenius norm of I - RᵀR for a valid rotation.
	orthonormalTolerance = 1e-6

	// singularTolerance marks a gimbal-locked decomposition.
	singularTolerance = 1e-6
)

var identity3 = mat.NewDiagDense(3, []float64{1, 1, 1})

// IsRotationMatrix reports whether r is a 3x3 orthonormal matrix.
func IsRotationMatrix(r mat.Matrix) bool {
	rows, cols := r.Dims()
	if rows != 3 || cols != 3 {
		return false
	}
	var rtr, diff mat.Dense
	rtr.Mul(r.T(), r)
	diff.Sub(identity3, &rtr)
	// NaN fails the comparison and is rejected with everything else.
	return mat.Norm(&diff, 2) < orthonormalTolerance
}

// RotationMatrixToEuler decomposes a rotation matrix into (x, y, z) angles
// such that R = Rz·Ry·Rx. The matrix is validated first.
func RotationMatrixToEuler(r mat.Matrix) ([3]float64, error) {
	if !IsRotationMatrix(r) {
		return [3]float64{}, schema.ErrInvalidRotationMatrix
	}

	sy := math.Sqrt(r.At(0, 0)*r.At(0, 0) + r.At(1, 0)*r.At(1, 0))
	if sy < singularTolerance {
		return [3]float64{
			math.Atan2(-r.At(1, 2), r.At(1, 1)),
			math.Atan2(-r.At(2, 0), sy),
			0,
		}, nil
	}
	return [3]float64{
		math.Atan2(r.At(2, 1), r.At(2, 2)),
		math.Atan2(-r.At(2, 0), sy),
		math.Atan2(r.At(1, 0), r.At(0, 0)),
	}, nil
}

// EulerToRotationMatrix builds Rz·Ry·Rx from (x, y, z) angles.
func EulerToRotationMatrix(theta [3]float64) *mat.Dense {
	cx, sx := math.Cos(theta[0]), math.Sin(theta[0])
	cy, sy := math.Cos(theta[1]), math.Sin(theta[1])
	cz, sz := math.Cos(theta[2]), math.Sin(theta[2])

	rx := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, cx, -sx,
		0, sx, cx,
	})
	ry := mat.NewDense(3, 3, []float64{
		cy, 0, sy,
		0, 1, 0,
		-sy, 0, cy,
	})
	rz := mat.NewDense(3, 3, []float64{
		cz, -sz, 0,
		sz, cz, 0,
		0, 0, 1,
	})

	var yx, out mat.Dense
	yx.Mul(ry, rx)
	out.Mul(rz, &yx)
	return &out
}

// MatrixFromArray converts a fixed 3x3 array into a gonum matrix.
func MatrixFromArray(m [3][3]float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

// CorrectPose removes camera tilt from a pose while keeping its rotation about
// the vertical axis. The rotation is un-applied, reduced to its z component
// and re-applied. The input pose is never modified.
func CorrectPose(raw schema.Pose3D, r mat.Matrix) (schema.Pose3D, error) {
	if len(raw)%3 != 0 {
		return nil, fmt.Errorf("%d values is not a list of xyz triples: %w", len(raw), schema.ErrMalformedPose)
	}
	theta, err := RotationMatrixToEuler(r)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return schema.Pose3D{}, nil
	}

	pts := mat.NewDense(len(raw)/3, 3, slices.Clone(raw))

	var unrotated mat.Dense
	unrotated.Mul(pts, r.T())

	theta[0], theta[1] = 0, 0
	var out mat.Dense
	out.Mul(&unrotated, EulerToRotationMatrix(theta))

	corrected := make(schema.Pose3D, 0, len(raw))
	for i := range len(raw) / 3 {
		corrected = append(corrected, out.RawRowView(i)...)
	}
	return corrected, nil
}

// Corrector de-tilts poses with the rotation registered for their camera and subject.
type Corrector struct {
	rotations *schema.RotationTable
}

// NewCorrector creates a Corrector over a rotation table.
func NewCorrector(rotations *schema.RotationTable) *Corrector {
	return &Corrector{rotations: rotations}
}

// Correct looks up the rotation for (cameraID, subjectID) and applies CorrectPose.
func (c *Corrector) Correct(raw schema.Pose3D, cameraID, subjectID int) (schema.Pose3D, error) {
	m, ok := c.rotations.Lookup(cameraID, subjectID)
	if !ok {
		return nil, fmt.Errorf("camera %d subject %d: %w", cameraID, subjectID, schema.ErrMissingRotation)
	}
	corrected, err := CorrectPose(raw, MatrixFromArray(m))
	if err != nil {
		return nil, fmt.Errorf("camera %d subject %d: %w", cameraID, subjectID, err)
	}
	return corrected, nil
}
