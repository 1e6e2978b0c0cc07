package agg

import (
	"math/rand/v2"

	"github.com/huangsam/depthaudit/core/algo"
	"github.com/huangsam/depthaudit/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PairwiseAgreement compares every unordered pair of orderings in the group.
// It reports false when the group has fewer than two annotators.
func PairwiseAgreement(group schema.ImageGroup) (schema.AgreementStats, bool) {
	var all []float64
	for i := 0; i < len(group.Hits); i++ {
		for j := i + 1; j < len(group.Hits); j++ {
			all = append(all, algo.OrderingSimilarity(group.Hits[i].Ordering, group.Hits[j].Ordering))
		}
	}
	if len(all) == 0 {
		return schema.AgreementStats{ImageID: group.ImageID}, false
	}
	return schema.AgreementStats{
		ImageID: group.ImageID,
		Avg:     stat.Mean(all, nil),
		Best:    floats.Max(all),
		Worst:   floats.Min(all),
		All:     all,
	}, true
}

// AgreementReport collects the per-image agreement distributions and one
// random-permutation baseline per ordering.
func AgreementReport(groups []schema.ImageGroup, rng *rand.Rand) schema.AgreementDistributions {
	var out schema.AgreementDistributions
	for _, g := range groups {
		if st, ok := PairwiseAgreement(g); ok {
			out.Images = append(out.Images, st)
			out.Avg = append(out.Avg, st.Avg)
			out.All = append(out.All, st.All...)
			out.Best = append(out.Best, st.Best)
			out.Worst = append(out.Worst, st.Worst)
		}
		for _, h := range g.Hits {
			out.Random = append(out.Random, algo.RandomBaseline(h.Ordering, rng))
		}
	}
	return out
}

// AgreementHistograms bins each agreement distribution over [0,1].
func AgreementHistograms(d schema.AgreementDistributions) []schema.Histogram {
	return []schema.Histogram{
		PercentHistogram("agreement_avg", d.Avg),
		PercentHistogram("agreement_all", d.All),
		PercentHistogram("agreement_best", d.Best),
		PercentHistogram("agreement_worst", d.Worst),
		PercentHistogram("agreement_random", d.Random),
	}
}
