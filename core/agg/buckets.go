package agg

import (
	"errors"
	"math"

	"github.com/huangsam/depthaudit/core/algo"
	"github.com/huangsam/depthaudit/schema"
)

// judged is one classified comparison with its true depth difference.
type judged struct {
	diff    float64
	human   bool
	correct bool
}

// DepthBuckets bins the true depth difference of every classified comparison
// into fixed-width buckets aligned to multiples of binWidth, counting correct
// and incorrect results per provenance. With absolute set the magnitude of the
// difference is used.
func DepthBuckets(hits []*schema.HitRecord, opts ScoreOptions, binWidth float64, absolute bool) ([]schema.DepthBucket, error) {
	if binWidth <= 0 {
		return nil, errors.New("bin width must be positive")
	}

	var samples []judged
	for _, h := range hits {
		if !h.Usable() {
			continue
		}
		for _, e := range h.Resolved.Entries() {
			if !opts.Filter.Accepts(e.Origin) {
				continue
			}
			d, err := algo.DepthDiff(e.Key, h.Truth.KptsDepth)
			if err != nil {
				return nil, err
			}
			correct := algo.Judge(d, e.Result, opts.Threshold, opts.TieRule) == schema.Correct
			if absolute {
				d = math.Abs(d)
			}
			samples = append(samples, judged{diff: d, human: e.IsHuman(), correct: correct})
		}
	}
	if len(samples) == 0 {
		return nil, nil
	}

	lo, hi := samples[0].diff, samples[0].diff
	for _, s := range samples[1:] {
		lo = math.Min(lo, s.diff)
		hi = math.Max(hi, s.diff)
	}
	lower := math.Floor(lo/binWidth) * binWidth
	upper := math.Floor(hi/binWidth)*binWidth + binWidth
	n := int(math.Round((upper - lower) / binWidth))

	buckets := make([]schema.DepthBucket, n)
	for i := range buckets {
		buckets[i].Lower = lower + float64(i)*binWidth
		buckets[i].Upper = buckets[i].Lower + binWidth
	}
	for _, s := range samples {
		i := min(int((s.diff-lower)/binWidth), n-1)
		b := &buckets[i]
		switch {
		case s.human && s.correct:
			b.HumanCorrect++
		case s.human:
			b.HumanIncorrect++
		case s.correct:
			b.GeneratedCorrect++
		default:
			b.GeneratedIncorrect++
		}
	}
	return buckets, nil
}
