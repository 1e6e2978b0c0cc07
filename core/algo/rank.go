package algo

import (
	"sort"

	"github.com/huangsam/depthaudit/schema"
)

// RankWorkers sorts workers by accuracy under the filter in descending order
// and returns the top 'limit' workers. Ties keep worker id order. If limit is
// not positive or exceeds the number of workers, all workers are returned.
func RankWorkers(workers []schema.WorkerScore, filter schema.ProvenanceFilter, limit int) []schema.WorkerScore {
	sort.SliceStable(workers, func(i, j int) bool {
		pi, pj := workers[i].Percent(filter), workers[j].Percent(filter)
		if pi != pj {
			return pi > pj
		}
		return workers[i].WorkerID < workers[j].WorkerID
	})
	if limit > 0 && len(workers) > limit {
		return workers[:limit]
	}
	return workers
}

// RankImages sorts images by metaperson accuracy in descending order
// and returns the top 'limit' images.
func RankImages(images []schema.ImageScore, limit int) []schema.ImageScore {
	sort.SliceStable(images, func(i, j int) bool {
		pi, pj := images[i].Percent(schema.AllProvenance), images[j].Percent(schema.AllProvenance)
		if pi != pj {
			return pi > pj
		}
		return images[i].ImageID < images[j].ImageID
	})
	if limit > 0 && len(images) > limit {
		return images[:limit]
	}
	return images
}
