package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/depthaudit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHits(t *testing.T) {
	hits, err := NewHitFile("testdata/hits.json").LoadHits(context.Background())
	require.NoError(t, err)
	require.Len(t, hits, 8)

	first := hits[0]
	assert.Equal(t, int64(1), first.HitID)
	assert.Equal(t, "A1", first.WorkerID)
	assert.Equal(t, int64(100), first.ImageID)
	assert.Len(t, first.Ordering, 13)
	assert.NoError(t, first.Err)
	assert.Equal(t, schema.Closer, first.HumanResults[schema.ComparisonKey{Kpt1: 1, Kpt2: 2}])
	assert.Equal(t, []schema.ComparisonKey{{Kpt1: 1, Kpt2: 2}, {Kpt1: 0, Kpt2: 1}}, first.HumanMadeKeys)

	// Reversed keys are kept as recorded.
	third := hits[2]
	assert.Equal(t, schema.Farther, third.HumanResults[schema.ComparisonKey{Kpt1: 2, Kpt2: 1}])

	// An empty result map is valid.
	assert.NoError(t, hits[5].Err)
	assert.Empty(t, hits[5].HumanResults)

	malformed := hits[6]
	assert.Error(t, malformed.Err)

	noTrials := hits[7]
	assert.True(t, errors.Is(noTrials.Err, schema.ErrMissingComparisonData))
}

func TestLoadTruths(t *testing.T) {
	set, err := NewTruthFile("testdata/truth.json").LoadTruths(context.Background())
	require.NoError(t, err)
	require.Len(t, set.Truths, 3)
	require.Len(t, set.Actions, 2)

	tr := set.Truths[0]
	assert.Equal(t, int64(100), tr.ImageID)
	assert.Equal(t, 1, tr.CameraID)
	assert.Equal(t, 1, tr.SubjectID)
	assert.Equal(t, 2, tr.ActionID)
	assert.Equal(t, "s_01_act_02_ca_01_000100.jpg", tr.Filename)
	assert.Len(t, tr.Kpts3D, 14*3, "neck is still present on load")
	assert.Len(t, tr.Kpts2D, 14*2)
	assert.Nil(t, tr.Ordering)

	id, ok := set.ActionID("Walking", 1)
	assert.True(t, ok)
	assert.Equal(t, 3, id)
}

func TestLoadRotations(t *testing.T) {
	table, err := NewRotationFile("testdata/rotations.json").LoadRotations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, table.CameraIDs)
	assert.Equal(t, []int{1, 5}, table.SubjectIDs)

	m, ok := table.Lookup(2, 5)
	require.True(t, ok)
	assert.Equal(t, [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, m)

	_, ok = table.Lookup(3, 1)
	assert.False(t, ok)
}

func TestLoadRotationsTransposes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rot.json")
	content := `{"camera_ids":[1],"subject_ids":[1],"matrices":[[[[0,-1,0],[1,0,0],[0,0,1]]]]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := NewRotationFile(path).LoadRotations(context.Background())
	require.NoError(t, err)
	m, ok := table.Lookup(1, 1)
	require.True(t, ok)
	assert.Equal(t, [3][3]float64{{0, 1, 0}, {-1, 0, 0}, {0, 0, 1}}, m)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	tests := []struct {
		name string
		load func() error
	}{
		{
			name: "wrong extension",
			load: func() error {
				_, err := NewHitFile(write("hits.txt", "{}")).LoadHits(context.Background())
				return err
			},
		},
		{
			name: "missing file",
			load: func() error {
				_, err := NewTruthFile(filepath.Join(dir, "nope.json")).LoadTruths(context.Background())
				return err
			},
		},
		{
			name: "invalid json",
			load: func() error {
				_, err := NewHitFile(write("bad.json", "{")).LoadHits(context.Background())
				return err
			},
		},
		{
			name: "image without annotation",
			load: func() error {
				_, err := NewTruthFile(write("t1.json", `{"images":[{"id":1}],"annotations":[]}`)).LoadTruths(context.Background())
				return err
			},
		},
		{
			name: "duplicate annotation",
			load: func() error {
				_, err := NewTruthFile(write("t2.json", `{"images":[{"id":1}],"annotations":[{"i_id":1},{"i_id":1}]}`)).LoadTruths(context.Background())
				return err
			},
		},
		{
			name: "ragged rotation table",
			load: func() error {
				_, err := NewRotationFile(write("r.json", `{"camera_ids":[1],"subject_ids":[1,5],"matrices":[[[[1,0,0],[0,1,0],[0,0,1]]]]}`)).LoadRotations(context.Background())
				return err
			},
		},
		{
			name: "cancelled context",
			load: func() error {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				_, err := NewHitFile("testdata/hits.json").LoadHits(ctx)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.load())
		})
	}
}
