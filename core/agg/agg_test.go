package agg

import (
	"testing"

	"github.com/huangsam/depthaudit/core/algo"
	"github.com/huangsam/depthaudit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type key = schema.ComparisonKey

func TestResolveSynthesizesFromOrdering(t *testing.T) {
	hit := &schema.HitRecord{HitID: 1, Ordering: schema.DepthOrdering{2, 0, 1}}

	table, err := Resolve(hit)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	r, ok := table.Lookup(key{Kpt1: 0, Kpt2: 1})
	require.True(t, ok)
	assert.Equal(t, schema.Closer, r)

	r, ok = table.Lookup(key{Kpt1: 0, Kpt2: 2})
	require.True(t, ok)
	assert.Equal(t, schema.Farther, r)

	for _, e := range table.Entries() {
		assert.Equal(t, schema.OriginSynthesized, e.Origin)
		assert.True(t, e.Key.IsCanonical())
	}
}

func TestResolveKeepsRecordedResults(t *testing.T) {
	hit := &schema.HitRecord{
		HitID:    2,
		Ordering: schema.DepthOrdering{2, 0, 1},
		HumanResults: map[schema.ComparisonKey]schema.ComparisonResult{
			{Kpt1: 1, Kpt2: 0}: schema.Farther,
			{Kpt1: 0, Kpt2: 2}: schema.Closer,
			{Kpt1: 0, Kpt2: 9}: schema.Closer, // outside the ordering
		},
		HumanMadeKeys: []schema.ComparisonKey{{Kpt1: 1, Kpt2: 0}},
	}

	table, err := Resolve(hit)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	e, ok := table.Get(key{Kpt1: 0, Kpt2: 1})
	require.True(t, ok)
	assert.Equal(t, key{Kpt1: 1, Kpt2: 0}, e.Key, "raw orientation is kept")
	assert.Equal(t, schema.OriginHuman, e.Origin)

	r, _ := table.Lookup(key{Kpt1: 0, Kpt2: 1})
	assert.Equal(t, schema.Closer, r, "reversed raw key is negated on lookup")

	e, _ = table.Get(key{Kpt1: 0, Kpt2: 2})
	assert.Equal(t, schema.OriginRecorded, e.Origin)
	assert.Equal(t, schema.Closer, e.Result, "recorded value wins over the ordering")

	e, _ = table.Get(key{Kpt1: 1, Kpt2: 2})
	assert.Equal(t, schema.OriginSynthesized, e.Origin)
	assert.Equal(t, schema.Farther, e.Result)

	assert.True(t, table.IsHuman(key{Kpt1: 0, Kpt2: 1}))
}

func TestResolveMissingOrdering(t *testing.T) {
	tests := []struct {
		name     string
		ordering schema.DepthOrdering
	}{
		{"nil", nil},
		{"not a permutation", schema.DepthOrdering{0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(&schema.HitRecord{HitID: 3, Ordering: tt.ordering})
			assert.ErrorIs(t, err, schema.ErrMissingComparisonData)
		})
	}
}

func TestSynthesize(t *testing.T) {
	r, ok := Synthesize(schema.DepthOrdering{2, 0, 1}, key{Kpt1: 0, Kpt2: 1})
	require.True(t, ok)
	assert.Equal(t, schema.Closer, r)

	_, ok = Synthesize(schema.DepthOrdering{2, 0, 1}, key{Kpt1: 0, Kpt2: 5})
	assert.False(t, ok)
}

// TestGroupByImageConsensus walks three annotators of one image through the vote.
func TestGroupByImageConsensus(t *testing.T) {
	truth := newTestTruth(100, 0, 100, 200, 300)
	hits := []*schema.HitRecord{
		newTestHit(1, "A", truth, schema.DepthOrdering{0, 1, 2, 3}, nil),
		newTestHit(2, "B", truth, schema.DepthOrdering{0, 2, 1, 3}, nil),
		newTestHit(3, "C", truth, schema.DepthOrdering{1, 0, 2, 3}, nil),
	}

	groups := GroupByImage(hits)
	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, int64(100), g.ImageID)
	assert.Len(t, g.Hits, 3)

	mp := g.Metaperson
	assert.Same(t, truth, mp.Truth)
	assert.Equal(t, 6, mp.Table.Len())

	// Annotators individually say +1, -1, +1 for (1,2).
	var votes []schema.ComparisonResult
	for _, h := range hits {
		r, ok := h.Resolved.Lookup(key{Kpt1: 1, Kpt2: 2})
		require.True(t, ok)
		votes = append(votes, r)
	}
	assert.Equal(t, []schema.ComparisonResult{1, -1, 1}, votes)
	assert.Equal(t, schema.VoteOutcome{Result: schema.Closer}, mp.Votes[key{Kpt1: 1, Kpt2: 2}])

	r, ok := mp.Table.Lookup(key{Kpt1: 1, Kpt2: 2})
	require.True(t, ok)
	assert.Equal(t, algo.MajorityVote(votes).Result, r)
	assert.Equal(t, 0, mp.TiedVotes())

	for _, e := range mp.Table.Entries() {
		assert.Equal(t, schema.OriginConsensus, e.Origin)
	}
}

func TestGroupByImageTiedVote(t *testing.T) {
	truth := newTestTruth(7, 0, 100)
	hits := []*schema.HitRecord{
		newTestHit(1, "A", truth, schema.DepthOrdering{0, 1}, nil),
		newTestHit(2, "B", truth, schema.DepthOrdering{1, 0}, nil),
	}

	groups := GroupByImage(hits)
	require.Len(t, groups, 1)
	mp := groups[0].Metaperson
	assert.Equal(t, schema.VoteOutcome{Result: schema.Tie, Tied: true}, mp.Votes[key{Kpt1: 0, Kpt2: 1}])
	assert.Equal(t, 1, mp.TiedVotes())
}

func TestGroupByImageSkipsUnusable(t *testing.T) {
	truthA := newTestTruth(1, 0, 1)
	truthB := newTestTruth(2, 0, 1)
	broken := newTestHit(3, "C", truthA, nil, nil)
	unmatched := &schema.HitRecord{HitID: 4, ImageID: 9, Err: schema.ErrUnmatchedImage}

	hits := []*schema.HitRecord{
		newTestHit(1, "A", truthB, schema.DepthOrdering{0, 1}, nil),
		broken,
		unmatched,
		newTestHit(2, "B", truthA, schema.DepthOrdering{0, 1}, nil),
		newTestHit(5, "A", truthB, schema.DepthOrdering{1, 0}, nil),
	}
	require.Error(t, broken.Err)

	groups := GroupByImage(hits)
	require.Len(t, groups, 2)
	assert.Equal(t, int64(2), groups[0].ImageID, "first-seen order")
	assert.Len(t, groups[0].Hits, 2)
	assert.Equal(t, int64(1), groups[1].ImageID)
	assert.Len(t, groups[1].Hits, 1)

	workers := GroupByWorker(hits)
	require.Len(t, workers, 2)
	assert.Equal(t, "A", workers[0].WorkerID)
	assert.Len(t, workers[0].Hits, 2)
	assert.Equal(t, "B", workers[1].WorkerID)
}

// TestScoreTable tests provenance bucketing and the threshold rule.
func TestScoreTable(t *testing.T) {
	truth := newTestTruth(1, 0, 100, 200, 300)
	hit := newTestHit(1, "A", truth, schema.DepthOrdering{0, 2, 1, 3},
		map[schema.ComparisonKey]schema.ComparisonResult{{Kpt1: 2, Kpt2: 1}: schema.Closer})
	require.NoError(t, hit.Err)

	tests := []struct {
		name     string
		opts     ScoreOptions
		expected schema.Tally
	}{
		{"all", ScoreOptions{Threshold: 50, Filter: schema.AllProvenance}, schema.Tally{HumanCorrect: 0, HumanTotal: 1, GeneratedCorrect: 5, GeneratedTotal: 5}},
		{"human", ScoreOptions{Threshold: 50, Filter: schema.HumanProvenance}, schema.Tally{HumanTotal: 1}},
		{"generated", ScoreOptions{Threshold: 50, Filter: schema.GeneratedProvenance}, schema.Tally{GeneratedCorrect: 5, GeneratedTotal: 5}},
		{"strict ties", ScoreOptions{Threshold: 150, Filter: schema.AllProvenance, TieRule: schema.StrictTies}, schema.Tally{HumanTotal: 1, GeneratedCorrect: 3, GeneratedTotal: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally, err := ScoreTable(hit.Resolved.Entries(), truth, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tally)
		})
	}

	_, err := ScoreTable(hit.Resolved.Entries(), nil, ScoreOptions{})
	assert.ErrorIs(t, err, schema.ErrUnmatchedImage)
}

func TestScoreWorkersAndImages(t *testing.T) {
	truth := newTestTruth(100, 0, 100, 200, 300)
	hits := []*schema.HitRecord{
		newTestHit(1, "A", truth, schema.DepthOrdering{0, 1, 2, 3}, nil),
		newTestHit(2, "B", truth, schema.DepthOrdering{0, 2, 1, 3}, nil),
		newTestHit(3, "C", truth, schema.DepthOrdering{1, 0, 2, 3}, nil),
	}
	opts := ScoreOptions{Threshold: 50, Filter: schema.AllProvenance}

	workers, err := ScoreWorkers(GroupByWorker(hits), opts)
	require.NoError(t, err)
	require.Len(t, workers, 3)
	assert.Equal(t, schema.Tally{GeneratedCorrect: 6, GeneratedTotal: 6}, workers[0].Tally)
	assert.Equal(t, schema.Tally{GeneratedCorrect: 5, GeneratedTotal: 6}, workers[1].Tally)
	assert.Equal(t, 1, workers[1].Hits)
	assert.Equal(t, 50.0, workers[1].Threshold)

	images, err := ScoreImages(GroupByImage(hits), ScoreOptions{Threshold: 1000, Filter: schema.AllProvenance})
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, schema.Tally{GeneratedCorrect: 6, GeneratedTotal: 6}, images[0].Tally)
	assert.Equal(t, 3, images[0].Annotators)
	assert.Equal(t, "img.jpg", images[0].Filename)

	assert.Equal(t, []float64{1}, ImageRatios(images))
	assert.Len(t, WorkerRatios(workers, schema.AllProvenance), 3)
	assert.Empty(t, WorkerRatios(workers, schema.HumanProvenance))
}

func TestSweepThresholds(t *testing.T) {
	truth := newTestTruth(1, 0, 100)
	groups := GroupByWorker([]*schema.HitRecord{
		newTestHit(1, "A", truth, schema.DepthOrdering{0, 1}, map[schema.ComparisonKey]schema.ComparisonResult{{Kpt1: 0, Kpt2: 1}: schema.Tie}),
	})

	scores, err := SweepThresholds(groups, []float64{1000, 50}, ScoreOptions{Filter: schema.HumanProvenance})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, 1000.0, scores[0].Threshold)
	assert.Equal(t, 1, scores[0].HumanCorrect)
	assert.Equal(t, 50.0, scores[1].Threshold)
	assert.Equal(t, 0, scores[1].HumanCorrect)
	assert.Equal(t, 1, scores[1].HumanTotal)
}

// TestDepthBuckets tests the wrongness binning.
func TestDepthBuckets(t *testing.T) {
	truth := newTestTruth(1, 0, 100, 200, 300)
	hits := []*schema.HitRecord{
		newTestHit(1, "A", truth, schema.DepthOrdering{0, 1, 2, 3},
			map[schema.ComparisonKey]schema.ComparisonResult{{Kpt1: 1, Kpt2: 0}: schema.Farther}),
	}
	opts := ScoreOptions{Threshold: 50, Filter: schema.AllProvenance}

	t.Run("absolute", func(t *testing.T) {
		buckets, err := DepthBuckets(hits, opts, 200, true)
		require.NoError(t, err)
		assert.Equal(t, []schema.DepthBucket{
			{Lower: 0, Upper: 200, HumanCorrect: 1, GeneratedCorrect: 2},
			{Lower: 200, Upper: 400, GeneratedCorrect: 3},
		}, buckets)
	})

	t.Run("signed", func(t *testing.T) {
		buckets, err := DepthBuckets(hits, opts, 200, false)
		require.NoError(t, err)
		assert.Equal(t, []schema.DepthBucket{
			{Lower: -200, Upper: 0, HumanCorrect: 1},
			{Lower: 0, Upper: 200, GeneratedCorrect: 2},
			{Lower: 200, Upper: 400, GeneratedCorrect: 3},
		}, buckets)
	})

	t.Run("human only", func(t *testing.T) {
		o := opts
		o.Filter = schema.HumanProvenance
		buckets, err := DepthBuckets(hits, o, 200, true)
		require.NoError(t, err)
		assert.Equal(t, []schema.DepthBucket{{Lower: 0, Upper: 200, HumanCorrect: 1}}, buckets)
	})

	t.Run("empty", func(t *testing.T) {
		buckets, err := DepthBuckets(nil, opts, 200, true)
		require.NoError(t, err)
		assert.Nil(t, buckets)
	})

	t.Run("bad width", func(t *testing.T) {
		_, err := DepthBuckets(hits, opts, 0, true)
		assert.Error(t, err)
	})
}

func TestPercentHistogram(t *testing.T) {
	h := PercentHistogram("workers", []float64{0, 0.05, 0.55, 1.0})
	assert.Equal(t, "workers", h.Name)
	assert.Equal(t, 4, h.Samples)
	require.Len(t, h.Bins, 10)

	counts := make([]int, len(h.Bins))
	for i, b := range h.Bins {
		counts[i] = b.Count
	}
	assert.Equal(t, []int{2, 0, 0, 0, 0, 1, 0, 0, 0, 1}, counts)
	assert.InDelta(t, 0.5, h.Bins[0].Proportion, 1e-9)
	assert.InDelta(t, 0.75, h.Bins[5].Cumulative, 1e-9)
	assert.InDelta(t, 1.0, h.Bins[9].Cumulative, 1e-9)
	assert.InDelta(t, 1.0, h.Bins[9].Upper, 1e-9)

	empty := PercentHistogram("none", nil)
	require.Len(t, empty.Bins, 10)
	assert.Equal(t, 0.0, empty.Bins[9].Cumulative)
}

func TestRangeHistogram(t *testing.T) {
	h := RangeHistogram("ranges", []float64{100, 400, 700}, 3)
	require.Len(t, h.Bins, 3)
	assert.Equal(t, 100.0, h.Bins[0].Lower)
	assert.Equal(t, 700.0, h.Bins[2].Upper)
	assert.Equal(t, 1, h.Bins[0].Count)
	assert.Equal(t, 1, h.Bins[1].Count)
	assert.Equal(t, 1, h.Bins[2].Count)

	assert.Empty(t, RangeHistogram("none", nil, 3).Bins)

	same := RangeHistogram("same", []float64{300, 300}, 6)
	require.Len(t, same.Bins, 6)
	assert.Equal(t, 2, same.Bins[0].Count)
	assert.Equal(t, 301.0, same.Bins[5].Upper)
}

// TestPairwiseAgreement tests similarity statistics within one image.
func TestPairwiseAgreement(t *testing.T) {
	truth := newTestTruth(5, 0, 1, 2, 3)
	group := schema.ImageGroup{
		ImageID: 5,
		Hits: []*schema.HitRecord{
			newTestHit(1, "A", truth, schema.DepthOrdering{0, 1, 2, 3}, nil),
			newTestHit(2, "B", truth, schema.DepthOrdering{0, 1, 2, 3}, nil),
			newTestHit(3, "C", truth, schema.DepthOrdering{0, 2, 1, 3}, nil),
		},
	}

	st, ok := PairwiseAgreement(group)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{1, 0.75, 0.75}, st.All, 1e-9)
	assert.InDelta(t, 2.5/3, st.Avg, 1e-9)
	assert.InDelta(t, 1.0, st.Best, 1e-9)
	assert.InDelta(t, 0.75, st.Worst, 1e-9)

	_, ok = PairwiseAgreement(schema.ImageGroup{Hits: group.Hits[:1]})
	assert.False(t, ok)

	single := schema.ImageGroup{ImageID: 6, Hits: group.Hits[:1]}
	report := AgreementReport([]schema.ImageGroup{group, single}, algo.NewRand(1))
	assert.Len(t, report.Images, 1)
	assert.Len(t, report.All, 3)
	assert.Len(t, report.Random, 4)
	assert.Len(t, AgreementHistograms(report), 5)
}

func TestDepthRangeStats(t *testing.T) {
	hits := []*schema.HitRecord{
		newTestHit(1, "A", newTestTruth(1, 0, 100, 250), schema.DepthOrdering{0, 1, 2}, nil),
		newTestHit(2, "A", newTestTruth(2, 10, -40, 60), schema.DepthOrdering{1, 0, 2}, nil),
		newTestHit(3, "B", newTestTruth(3, 0, 0), schema.DepthOrdering{0, 1}, nil),
		{HitID: 4, Err: schema.ErrUnmatchedImage},
	}

	st := DepthRangeStats(hits)
	assert.Equal(t, 3, st.Records)
	assert.Equal(t, []float64{250, 100, 0}, st.Ranges)
	assert.InDelta(t, 350.0/3, st.Mean, 1e-9)
	assert.Equal(t, 100.0, st.Median)
	assert.Equal(t, 0.0, st.Min)
	assert.Equal(t, 250.0, st.Max)

	assert.Equal(t, 175.0, median([]float64{250, 100}))
	assert.Equal(t, 0, DepthRangeStats(nil).Records)
}

func TestScoreRecords(t *testing.T) {
	hits := []*schema.HitRecord{
		newTestHit(9, "A", newTestTruth(1, 0, 100, 400), schema.DepthOrdering{1, 0, 2}, nil),
	}
	scores, err := ScoreRecords(hits)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, int64(9), scores[0].HitID)
	assert.Equal(t, 2, scores[0].Naive)
	assert.InDelta(t, 200.0/3, scores[0].Distance, 1e-9)
}
