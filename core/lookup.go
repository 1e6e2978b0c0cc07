package core

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
)

// Lookup answers an audit query over the dataset, one row per query value.
func Lookup(ds *Dataset, mode string, values []string) ([]schema.LookupRow, error) {
	switch mode {
	case contract.LookupFiles:
		return LookupHitsByFilename(ds.Hits, values), nil
	case contract.LookupImages:
		ids, err := parseImageIDs(values)
		if err != nil {
			return nil, err
		}
		return LookupFilenamesByImage(ds.Truths, ids), nil
	case contract.LookupWorkers:
		return LookupFilenamesByWorker(ds.Hits, ds.Truths, values), nil
	case contract.LookupHits:
		ids, err := parseImageIDs(values)
		if err != nil {
			return nil, err
		}
		return LookupHitsByImage(ds.Hits, ids), nil
	default:
		return nil, fmt.Errorf("unknown lookup mode %q", mode)
	}
}

// LookupHitsByFilename returns the first matched hit for each filename.
// Only one annotation per image is reported.
func LookupHitsByFilename(hits []*schema.HitRecord, filenames []string) []schema.LookupRow {
	first := make(map[string]int64)
	for _, h := range hits {
		if h.Truth == nil {
			continue
		}
		if _, seen := first[h.Truth.Filename]; !seen {
			first[h.Truth.Filename] = h.HitID
		}
	}
	rows := make([]schema.LookupRow, 0, len(filenames))
	for _, name := range filenames {
		row := schema.LookupRow{Query: name}
		if id, ok := first[name]; ok {
			row.Matches = []string{strconv.FormatInt(id, 10)}
		}
		rows = append(rows, row)
	}
	return rows
}

// LookupFilenamesByImage returns the filename of each image id.
func LookupFilenamesByImage(truths []schema.Truth, imageIDs []int64) []schema.LookupRow {
	names := filenamesByImage(truths)
	rows := make([]schema.LookupRow, 0, len(imageIDs))
	for _, id := range imageIDs {
		row := schema.LookupRow{Query: strconv.FormatInt(id, 10)}
		if name, ok := names[id]; ok {
			row.Matches = []string{name}
		}
		rows = append(rows, row)
	}
	return rows
}

// LookupFilenamesByWorker returns the sorted filenames of every image each worker annotated.
func LookupFilenamesByWorker(hits []*schema.HitRecord, truths []schema.Truth, workerIDs []string) []schema.LookupRow {
	names := filenamesByImage(truths)
	rows := make([]schema.LookupRow, 0, len(workerIDs))
	for _, worker := range workerIDs {
		seen := make(map[int64]struct{})
		var matches []string
		for _, h := range hits {
			if h.WorkerID != worker {
				continue
			}
			if _, dup := seen[h.ImageID]; dup {
				continue
			}
			seen[h.ImageID] = struct{}{}
			if name, ok := names[h.ImageID]; ok {
				matches = append(matches, name)
			}
		}
		slices.Sort(matches)
		rows = append(rows, schema.LookupRow{Query: worker, Matches: matches})
	}
	return rows
}

// LookupHitsByImage returns the first hit id recorded for each image id.
func LookupHitsByImage(hits []*schema.HitRecord, imageIDs []int64) []schema.LookupRow {
	rows := make([]schema.LookupRow, 0, len(imageIDs))
	for _, id := range imageIDs {
		row := schema.LookupRow{Query: strconv.FormatInt(id, 10)}
		for _, h := range hits {
			if h.ImageID == id {
				row.Matches = []string{strconv.FormatInt(h.HitID, 10)}
				break
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func filenamesByImage(truths []schema.Truth) map[int64]string {
	names := make(map[int64]string, len(truths))
	for _, t := range truths {
		names[t.ImageID] = t.Filename
	}
	return names
}

func parseImageIDs(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("image id %q is not a number: %w", v, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
