// Package algo has the pure algorithms behind depth-annotation auditing:
// pose de-tilting, majority voting, classification and ordering similarity.
package algo

import "github.com/huangsam/depthaudit/schema"

// MajorityVote returns the strict-plurality value of votes. When the two most
// frequent values have the same count the result is a Tie with Tied set, which
// keeps annotator disagreement apart from a genuine "no difference" vote.
func MajorityVote(votes []schema.ComparisonResult) schema.VoteOutcome {
	var counts [3]int
	for _, v := range votes {
		if v.Valid() {
			counts[v+1]++
		}
	}

	best, bestCount, ties := schema.Tie, 0, 0
	for i, c := range counts {
		switch {
		case c > bestCount:
			best, bestCount, ties = schema.ComparisonResult(i-1), c, 1
		case c == bestCount && c > 0:
			ties++
		}
	}
	if bestCount == 0 || ties > 1 {
		return schema.VoteOutcome{Result: schema.Tie, Tied: true}
	}
	return schema.VoteOutcome{Result: best}
}
