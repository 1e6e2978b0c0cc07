package core

import (
	"context"
	"fmt"
	"slices"

	"github.com/huangsam/depthaudit/core/agg"
	"github.com/huangsam/depthaudit/core/algo"
	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
)

// Flattened index ranges of the neck keypoint, the second joint of the skeleton.
const (
	neck2DStart, neck2DEnd = 2, 4
	neck3DStart, neck3DEnd = 3, 6
)

// Dataset is the fully enriched in-memory dataset every report reads from.
// Hits keep their failures for audit; groups only reference usable hits.
type Dataset struct {
	Hits    []*schema.HitRecord
	Truths  []schema.Truth
	Images  []schema.ImageGroup
	Workers []schema.WorkerGroup
	Errors  *schema.ErrorSummary
}

// Usable returns the hits that survived matching and resolution.
func (d *Dataset) Usable() []*schema.HitRecord {
	usable := make([]*schema.HitRecord, 0, len(d.Hits))
	for _, h := range d.Hits {
		if h.Usable() {
			usable = append(usable, h)
		}
	}
	return usable
}

// Summary counts what made it through dataset construction.
func (d *Dataset) Summary() schema.DatasetSummary {
	return schema.DatasetSummary{
		Hits:    len(d.Hits),
		Usable:  len(d.Usable()),
		Truths:  len(d.Truths),
		Images:  len(d.Images),
		Workers: len(d.Workers),
		Errors:  d.Errors,
	}
}

// DatasetBuilder builds the dataset using a builder pattern.
// Each stage must run to completion before the next reads its output.
type DatasetBuilder struct {
	ctx       context.Context
	cfg       *contract.Config
	sources   contract.DataSources
	hits      []*schema.HitRecord
	truthSet  *schema.TruthSet
	rotations *schema.RotationTable
	truths    []schema.Truth
	truthErrs map[int64]error
	dataset   *Dataset
}

// NewDatasetBuilder creates a new builder for a dataset.
func NewDatasetBuilder(ctx context.Context, cfg *contract.Config, sources contract.DataSources) *DatasetBuilder {
	return &DatasetBuilder{ctx: ctx, cfg: cfg, sources: sources}
}

// LoadSources reads the annotations, ground truth and rotations.
func (b *DatasetBuilder) LoadSources() (*DatasetBuilder, error) {
	var err error
	if b.hits, err = b.sources.Hits.LoadHits(b.ctx); err != nil {
		return nil, fmt.Errorf("failed to load annotations: %w", err)
	}
	if b.truthSet, err = b.sources.Truths.LoadTruths(b.ctx); err != nil {
		return nil, fmt.Errorf("failed to load ground truth: %w", err)
	}
	if b.rotations, err = b.sources.Rotations.LoadRotations(b.ctx); err != nil {
		return nil, fmt.Errorf("failed to load rotations: %w", err)
	}
	return b, nil
}

// FilterTruths keeps the configured subjects and action.
func (b *DatasetBuilder) FilterTruths() (*DatasetBuilder, error) {
	truths, err := FilterTruths(b.truthSet, b.cfg.Subjects, b.cfg.Action, b.cfg.ActionVersion)
	if err != nil {
		return nil, err
	}
	b.truths = truths
	return b, nil
}

// CorrectTruths removes camera tilt from every ground-truth pose.
func (b *DatasetBuilder) CorrectTruths() *DatasetBuilder {
	b.truthErrs = CorrectTruths(b.truths, algo.NewCorrector(b.rotations))
	return b
}

// MatchHits attaches ground truth to every annotation.
func (b *DatasetBuilder) MatchHits() *DatasetBuilder {
	MatchHits(b.hits, b.truths, b.truthErrs, b.cfg.DepthAxis)
	return b
}

// ResolveHits completes the comparison table of every matched annotation.
func (b *DatasetBuilder) ResolveHits() *DatasetBuilder {
	ResolveHits(b.hits)
	return b
}

// Build groups the usable hits and tallies failures.
func (b *DatasetBuilder) Build() *DatasetBuilder {
	ds := &Dataset{
		Hits:    b.hits,
		Truths:  b.truths,
		Images:  agg.GroupByImage(b.hits),
		Workers: agg.GroupByWorker(b.hits),
		Errors:  schema.NewErrorSummary(),
	}
	for _, h := range b.hits {
		ds.Errors.Add(h.Err)
	}
	for _, g := range ds.Images {
		ds.Errors.AddDegenerateVotes(g.Metaperson.TiedVotes())
	}
	b.dataset = ds
	return b
}

// GetDataset returns the built dataset.
func (b *DatasetBuilder) GetDataset() *Dataset {
	return b.dataset
}

// BuildDataset runs every stage of dataset construction in order.
func BuildDataset(ctx context.Context, cfg *contract.Config, sources contract.DataSources) (*Dataset, error) {
	builder := NewDatasetBuilder(ctx, cfg, sources)
	if _, err := builder.LoadSources(); err != nil {
		return nil, err
	}
	if _, err := builder.FilterTruths(); err != nil {
		return nil, err
	}
	builder.CorrectTruths().MatchHits().ResolveHits().Build()
	return builder.GetDataset(), nil
}

// FilterTruths keeps truths whose subject is listed and whose action matches.
// An empty subject list or action name disables that part of the filter.
func FilterTruths(set *schema.TruthSet, subjects []int, action string, version int) ([]schema.Truth, error) {
	if set == nil {
		return nil, nil
	}
	actionID := -1
	if action != "" {
		id, ok := set.ActionID(action, version)
		if !ok {
			return nil, fmt.Errorf("unknown action %q version %d", action, version)
		}
		actionID = id
	}
	out := make([]schema.Truth, 0, len(set.Truths))
	for _, t := range set.Truths {
		if len(subjects) > 0 && !slices.Contains(subjects, t.SubjectID) {
			continue
		}
		if actionID >= 0 && t.ActionID != actionID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// CorrectTruths replaces every pose with its tilt-corrected version.
// Failures are returned per image id and leave the pose untouched.
func CorrectTruths(truths []schema.Truth, corrector *algo.Corrector) map[int64]error {
	errs := make(map[int64]error)
	for i := range truths {
		t := &truths[i]
		corrected, err := corrector.Correct(t.Kpts3D, t.CameraID, t.SubjectID)
		if err != nil {
			errs[t.ImageID] = fmt.Errorf("image %d: %w", t.ImageID, err)
			continue
		}
		t.Kpts3D = corrected
	}
	return errs
}

// MatchHits attaches a private copy of the matching truth to every hit that
// has not already failed. Unmatched hits keep an error and stay in the slice.
func MatchHits(hits []*schema.HitRecord, truths []schema.Truth, truthErrs map[int64]error, depthAxis int) {
	byImage := make(map[int64]*schema.Truth, len(truths))
	for i := range truths {
		byImage[truths[i].ImageID] = &truths[i]
	}
	for _, h := range hits {
		if h.Err != nil {
			continue
		}
		if err, failed := truthErrs[h.ImageID]; failed {
			h.Err = fmt.Errorf("hit %d: %w", h.HitID, err)
			continue
		}
		truth, ok := byImage[h.ImageID]
		if !ok {
			h.Err = fmt.Errorf("hit %d image %d: %w", h.HitID, h.ImageID, schema.ErrUnmatchedImage)
			continue
		}
		enriched, err := EnrichTruth(truth, depthAxis)
		if err != nil {
			h.Err = fmt.Errorf("hit %d: %w", h.HitID, err)
			continue
		}
		h.Truth = enriched
		if h.Ordering != nil && len(h.Ordering) != len(enriched.Ordering) {
			h.Err = fmt.Errorf("hit %d: ordering has %d keypoints, truth has %d: %w",
				h.HitID, len(h.Ordering), len(enriched.Ordering), schema.ErrMissingComparisonData)
		}
	}
}

// EnrichTruth returns a deep copy of the truth with the neck removed and the
// depth sequence and ordering derived from the chosen axis.
func EnrichTruth(truth *schema.Truth, depthAxis int) (*schema.Truth, error) {
	t := truth.Clone()
	if len(t.Kpts3D)%3 != 0 || len(t.Kpts3D) < neck3DEnd {
		return nil, fmt.Errorf("image %d: %d pose values: %w", t.ImageID, len(t.Kpts3D), schema.ErrMalformedPose)
	}
	if depthAxis < 0 || depthAxis > 2 {
		return nil, fmt.Errorf("depth axis %d out of range", depthAxis)
	}
	if len(t.Kpts2D) >= neck2DEnd {
		t.Kpts2D = slices.Delete(t.Kpts2D, neck2DStart, neck2DEnd)
	}
	t.Kpts3D = slices.Delete(t.Kpts3D, neck3DStart, neck3DEnd)

	t.KptsDepth = t.Kpts3D.Axis(depthAxis)
	t.Ordering = algo.OrderingFromDepths(t.KptsDepth)
	return t, nil
}

// ResolveHits builds the resolved table of every matched hit.
func ResolveHits(hits []*schema.HitRecord) {
	for _, h := range hits {
		if h.Err != nil || h.Truth == nil {
			continue
		}
		table, err := agg.Resolve(h)
		if err != nil {
			h.Err = err
			continue
		}
		h.Resolved = table
	}
}
