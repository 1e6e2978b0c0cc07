// Package agg has aggregation logic for depth annotations: comparison
// resolution, consensus grouping, accuracy tallies and distributions.
package agg

import (
	"fmt"
	"sort"

	"github.com/huangsam/depthaudit/schema"
)

// Resolve completes the comparison table of one hit. Every pair over the
// keypoints of its ordering ends up in the table exactly once: recorded GUI
// results keep their raw key and value, and the remaining pairs are inferred
// from the ordering as sign(rank(k2) - rank(k1)).
func Resolve(hit *schema.HitRecord) (*schema.ResolvedTable, error) {
	ranks, ok := hit.Ordering.Ranks()
	if !ok || len(ranks) == 0 {
		return nil, fmt.Errorf("hit %d: no usable depth ordering: %w", hit.HitID, schema.ErrMissingComparisonData)
	}

	table := schema.NewResolvedTable(hit.HumanMadeKeys)
	for _, key := range sortedResultKeys(hit.HumanResults) {
		r := hit.HumanResults[key]
		if !inRange(key, len(ranks)) || !r.Valid() {
			continue
		}
		origin := schema.OriginRecorded
		if table.IsHuman(key) {
			origin = schema.OriginHuman
		}
		table.Add(schema.Entry{Key: key, Result: r, Origin: origin})
	}

	for _, key := range schema.AllPairs(len(ranks)) {
		if _, ok := table.Get(key); ok {
			continue
		}
		table.Add(schema.Entry{
			Key:    key,
			Result: schema.SignOf(ranks[key.Kpt2] - ranks[key.Kpt1]),
			Origin: schema.OriginSynthesized,
		})
	}
	return table, nil
}

// Synthesize infers the result for key from an ordering.
func Synthesize(ordering schema.DepthOrdering, key schema.ComparisonKey) (schema.ComparisonResult, bool) {
	i1, i2 := ordering.Index(key.Kpt1), ordering.Index(key.Kpt2)
	if i1 < 0 || i2 < 0 || i1 == i2 {
		return schema.Tie, false
	}
	return schema.SignOf(i2 - i1), true
}

// sortedResultKeys orders the recorded keys by canonical pair, then raw
// orientation, so duplicate orientations resolve the same way on every run.
func sortedResultKeys(results map[schema.ComparisonKey]schema.ComparisonResult) []schema.ComparisonKey {
	keys := make([]schema.ComparisonKey, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := keys[i].Canonical(), keys[j].Canonical()
		if ci != cj {
			if ci.Kpt1 != cj.Kpt1 {
				return ci.Kpt1 < cj.Kpt1
			}
			return ci.Kpt2 < cj.Kpt2
		}
		return keys[i].IsCanonical()
	})
	return keys
}

func inRange(key schema.ComparisonKey, n int) bool {
	return key.Kpt1 >= 0 && key.Kpt1 < n && key.Kpt2 >= 0 && key.Kpt2 < n && key.Kpt1 != key.Kpt2
}
