package algo

import (
	"math/rand/v2"
	"slices"
	"strconv"

	"github.com/huangsam/depthaudit/schema"
	"github.com/pmezard/go-difflib/difflib"
)

// OrderingSimilarity returns the longest-matching-blocks ratio 2·M/T of two
// orderings, where M is the number of matched elements and T the combined length.
// Two empty orderings are identical. The matcher is greedy and so depends on
// argument order; the lexicographically smaller ordering always goes first.
func OrderingSimilarity(a, b schema.DepthOrdering) float64 {
	if slices.Compare(a, b) > 0 {
		a, b = b, a
	}
	return difflib.NewMatcher(toTokens(a), toTokens(b)).Ratio()
}

func toTokens(o schema.DepthOrdering) []string {
	tokens := make([]string, len(o))
	for i, k := range o {
		tokens[i] = strconv.Itoa(k)
	}
	return tokens
}

// RandomBaseline compares an ordering with one uniform random permutation of itself.
func RandomBaseline(ordering schema.DepthOrdering, rng *rand.Rand) float64 {
	shuffled := slices.Clone(ordering)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return OrderingSimilarity(ordering, shuffled)
}

// NewRand returns the deterministic generator used for random baselines.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
