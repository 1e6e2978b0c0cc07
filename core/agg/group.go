package agg

import (
	"sort"

	"github.com/huangsam/depthaudit/core/algo"
	"github.com/huangsam/depthaudit/schema"
)

// GroupByImage partitions usable hits by image id, in first-seen order, and
// builds the metaperson for each image. For every pair present in any member's
// table the metaperson holds the majority vote of all members' normalized
// results; a member missing the pair has it inferred from its ordering.
func GroupByImage(hits []*schema.HitRecord) []schema.ImageGroup {
	var order []int64
	byImage := make(map[int64][]*schema.HitRecord)
	for _, h := range hits {
		if !h.Usable() {
			continue
		}
		if _, seen := byImage[h.ImageID]; !seen {
			order = append(order, h.ImageID)
		}
		byImage[h.ImageID] = append(byImage[h.ImageID], h)
	}

	groups := make([]schema.ImageGroup, 0, len(order))
	for _, id := range order {
		members := byImage[id]
		groups = append(groups, schema.ImageGroup{
			ImageID:    id,
			Hits:       members,
			Metaperson: buildMetaperson(id, members),
		})
	}
	return groups
}

func buildMetaperson(imageID int64, members []*schema.HitRecord) *schema.Metaperson {
	keys := unionKeys(members)
	mp := &schema.Metaperson{
		ImageID: imageID,
		Truth:   members[0].Truth,
		Table:   schema.NewResolvedTable(nil),
		Votes:   make(map[schema.ComparisonKey]schema.VoteOutcome, len(keys)),
	}
	for _, key := range keys {
		votes := make([]schema.ComparisonResult, 0, len(members))
		for _, m := range members {
			r, ok := m.Resolved.Lookup(key)
			if !ok {
				r, ok = Synthesize(m.Ordering, key)
			}
			if ok {
				votes = append(votes, r)
			}
		}
		outcome := algo.MajorityVote(votes)
		mp.Votes[key] = outcome
		mp.Table.Add(schema.Entry{Key: key, Result: outcome.Result, Origin: schema.OriginConsensus})
	}
	return mp
}

// unionKeys returns the canonical pairs present in any member's table, sorted.
func unionKeys(members []*schema.HitRecord) []schema.ComparisonKey {
	seen := make(map[schema.ComparisonKey]struct{})
	for _, m := range members {
		for _, e := range m.Resolved.Entries() {
			seen[e.Key.Canonical()] = struct{}{}
		}
	}
	keys := make([]schema.ComparisonKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kpt1 != keys[j].Kpt1 {
			return keys[i].Kpt1 < keys[j].Kpt1
		}
		return keys[i].Kpt2 < keys[j].Kpt2
	})
	return keys
}

// GroupByWorker partitions usable hits by worker id, in first-seen order.
func GroupByWorker(hits []*schema.HitRecord) []schema.WorkerGroup {
	var order []string
	byWorker := make(map[string][]*schema.HitRecord)
	for _, h := range hits {
		if !h.Usable() {
			continue
		}
		if _, seen := byWorker[h.WorkerID]; !seen {
			order = append(order, h.WorkerID)
		}
		byWorker[h.WorkerID] = append(byWorker[h.WorkerID], h)
	}

	groups := make([]schema.WorkerGroup, 0, len(order))
	for _, id := range order {
		groups = append(groups, schema.WorkerGroup{WorkerID: id, Hits: byWorker[id]})
	}
	return groups
}
