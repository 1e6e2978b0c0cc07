package loader

import (
	"context"
	"fmt"
	"slices"

	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
)

// rawDepthTrial is the depth section of a GUI trial.
type rawDepthTrial struct {
	ComparisonsOrder []string       `json:"keypoint_comparisons_order"`
	ComparisonsRes   map[string]int `json:"keypoint_comparisons_res"`
}

// rawTrial is one GUI trial; only the first trial of a HIT is used.
type rawTrial struct {
	ImageID       int64         `json:"img_id"`
	RelativeDepth []int         `json:"kpts_relative_depth"`
	Depth         rawDepthTrial `json:"depth"`
}

// rawHit is one assignment as exported by the GUI.
type rawHit struct {
	WorkerID string     `json:"worker_id"`
	HitID    int64      `json:"hit_id"`
	Trials   []rawTrial `json:"trials"`
}

// rawHitDump is the top-level annotation export. Only accepted assignments are read.
type rawHitDump struct {
	Good []rawHit `json:"_good_assignments"`
}

// HitFile reads annotator submissions from a JSON export.
type HitFile struct {
	Path string
}

var _ contract.AnnotationSource = &HitFile{} // Compile-time check

// NewHitFile creates an annotation source for the given path.
func NewHitFile(path string) *HitFile {
	return &HitFile{Path: path}
}

// LoadHits implements the AnnotationSource interface.
// Records with malformed comparison data are returned with Err set so they
// can be counted without aborting the batch.
func (s *HitFile) LoadHits(ctx context.Context) ([]*schema.HitRecord, error) {
	var dump rawHitDump
	if err := readJSON(ctx, s.Path, &dump); err != nil {
		return nil, err
	}
	hits := make([]*schema.HitRecord, 0, len(dump.Good))
	for _, raw := range dump.Good {
		hits = append(hits, convertHit(raw))
	}
	return hits, nil
}

// convertHit turns a raw assignment into a typed record.
func convertHit(raw rawHit) *schema.HitRecord {
	hit := &schema.HitRecord{HitID: raw.HitID, WorkerID: raw.WorkerID}
	if len(raw.Trials) == 0 {
		hit.Err = fmt.Errorf("hit %d: no trials: %w", raw.HitID, schema.ErrMissingComparisonData)
		return hit
	}
	trial := raw.Trials[0]
	hit.ImageID = trial.ImageID
	if len(trial.RelativeDepth) > 0 {
		hit.Ordering = slices.Clone(schema.DepthOrdering(trial.RelativeDepth))
	}

	hit.HumanResults = make(map[schema.ComparisonKey]schema.ComparisonResult, len(trial.Depth.ComparisonsRes))
	for k, v := range trial.Depth.ComparisonsRes {
		key, err := schema.ParseComparisonKey(k)
		if err != nil {
			hit.Err = fmt.Errorf("hit %d: %w", raw.HitID, err)
			return hit
		}
		hit.HumanResults[key] = schema.SignOf(v)
	}
	for _, k := range trial.Depth.ComparisonsOrder {
		key, err := schema.ParseComparisonKey(k)
		if err != nil {
			hit.Err = fmt.Errorf("hit %d: %w", raw.HitID, err)
			return hit
		}
		hit.HumanMadeKeys = append(hit.HumanMadeKeys, key)
	}
	return hit
}
