package agg

import (
	"fmt"

	"github.com/huangsam/depthaudit/core/algo"
	"github.com/huangsam/depthaudit/schema"
)

// ScoreOptions controls how resolved comparisons are judged.
type ScoreOptions struct {
	Threshold float64
	Filter    schema.ProvenanceFilter
	TieRule   schema.TieRule
}

// ScoreTable classifies every entry that passes the filter against the truth
// depths and tallies it as human-made or generated.
func ScoreTable(entries []schema.Entry, truth *schema.Truth, opts ScoreOptions) (schema.Tally, error) {
	var tally schema.Tally
	if truth == nil {
		return tally, schema.ErrUnmatchedImage
	}
	for _, e := range entries {
		if !opts.Filter.Accepts(e.Origin) {
			continue
		}
		d, err := algo.DepthDiff(e.Key, truth.KptsDepth)
		if err != nil {
			return tally, fmt.Errorf("image %d: %w", truth.ImageID, err)
		}
		correct := algo.Judge(d, e.Result, opts.Threshold, opts.TieRule) == schema.Correct
		if e.IsHuman() {
			tally.HumanTotal++
			if correct {
				tally.HumanCorrect++
			}
			continue
		}
		tally.GeneratedTotal++
		if correct {
			tally.GeneratedCorrect++
		}
	}
	return tally, nil
}

// ScoreWorkers tallies every worker's resolved tables across all their hits.
func ScoreWorkers(groups []schema.WorkerGroup, opts ScoreOptions) ([]schema.WorkerScore, error) {
	scores := make([]schema.WorkerScore, 0, len(groups))
	for _, g := range groups {
		ws := schema.WorkerScore{WorkerID: g.WorkerID, Threshold: opts.Threshold, Hits: len(g.Hits)}
		for _, h := range g.Hits {
			tally, err := ScoreTable(h.Resolved.Entries(), h.Truth, opts)
			if err != nil {
				return nil, fmt.Errorf("worker %s hit %d: %w", g.WorkerID, h.HitID, err)
			}
			ws.Add(tally)
		}
		scores = append(scores, ws)
	}
	return scores, nil
}

// ScoreImages tallies each image's metaperson table. Consensus entries are
// never human-made, so the counts land in the generated columns.
func ScoreImages(groups []schema.ImageGroup, opts ScoreOptions) ([]schema.ImageScore, error) {
	scores := make([]schema.ImageScore, 0, len(groups))
	for _, g := range groups {
		mp := g.Metaperson
		tally, err := ScoreTable(mp.Table.Entries(), mp.Truth, opts)
		if err != nil {
			return nil, err
		}
		scores = append(scores, schema.ImageScore{
			ImageID:    g.ImageID,
			Filename:   mp.Truth.Filename,
			Threshold:  opts.Threshold,
			Annotators: len(g.Hits),
			TiedVotes:  mp.TiedVotes(),
			Tally:      tally,
		})
	}
	return scores, nil
}

// SweepThresholds scores workers once per threshold, keeping the threshold order.
func SweepThresholds(groups []schema.WorkerGroup, thresholds []float64, opts ScoreOptions) ([]schema.WorkerScore, error) {
	var all []schema.WorkerScore
	for _, thr := range thresholds {
		o := opts
		o.Threshold = thr
		scores, err := ScoreWorkers(groups, o)
		if err != nil {
			return nil, err
		}
		all = append(all, scores...)
	}
	return all, nil
}

// WorkerRatios extracts accuracy ratios of workers who had at least one
// comparison under the filter.
func WorkerRatios(scores []schema.WorkerScore, filter schema.ProvenanceFilter) []float64 {
	ratios := make([]float64, 0, len(scores))
	for _, s := range scores {
		if r, ok := s.RatioFor(filter); ok {
			ratios = append(ratios, r)
		}
	}
	return ratios
}

// ImageRatios extracts metaperson accuracy ratios.
func ImageRatios(scores []schema.ImageScore) []float64 {
	ratios := make([]float64, 0, len(scores))
	for _, s := range scores {
		if r, ok := s.Ratio(); ok {
			ratios = append(ratios, r)
		}
	}
	return ratios
}
