// Package core has core logic for dataset construction, scoring and reporting.
package core

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/depthaudit/core/agg"
	"github.com/huangsam/depthaudit/core/algo"
	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
)

// ExecutorFunc defines the function signature for executing different reports.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, sources contract.DataSources, sink contract.ResultSink) error

// ExecuteWorkers scores every worker at each sweep threshold.
// It serves as the main entry point for the 'workers' report.
func ExecuteWorkers(ctx context.Context, cfg *contract.Config, sources contract.DataSources, sink contract.ResultSink) error {
	ds, err := loadDataset(ctx, cfg, sources)
	if err != nil {
		return err
	}
	report := newReport(schema.WorkersReport)
	for _, thr := range cfg.Thresholds {
		scores, err := agg.ScoreWorkers(ds.Workers, scoreOptions(cfg, thr))
		if err != nil {
			return err
		}
		report.Histograms = append(report.Histograms,
			agg.PercentHistogram(histogramName("workers", thr), agg.WorkerRatios(scores, cfg.Provenance)))
		report.Workers = append(report.Workers, algo.RankWorkers(scores, cfg.Provenance, cfg.ResultLimit)...)
	}
	return sink.Write(ctx, report)
}

// ExecuteImages scores the metaperson of every image.
// It serves as the main entry point for the 'images' report.
func ExecuteImages(ctx context.Context, cfg *contract.Config, sources contract.DataSources, sink contract.ResultSink) error {
	ds, err := loadDataset(ctx, cfg, sources)
	if err != nil {
		return err
	}
	opts := scoreOptions(cfg, cfg.ImageThreshold)
	opts.Filter = schema.AllProvenance // consensus entries are never human-made
	scores, err := agg.ScoreImages(ds.Images, opts)
	if err != nil {
		return err
	}
	report := newReport(schema.ImagesReport)
	report.Images = algo.RankImages(scores, cfg.ResultLimit)
	report.Histograms = []schema.Histogram{
		agg.PercentHistogram(histogramName("images", cfg.ImageThreshold), agg.ImageRatios(scores)),
	}
	return sink.Write(ctx, report)
}

// ExecuteWrongness buckets classified comparisons by their true depth difference.
// It serves as the main entry point for the 'wrongness' report.
func ExecuteWrongness(ctx context.Context, cfg *contract.Config, sources contract.DataSources, sink contract.ResultSink) error {
	ds, err := loadDataset(ctx, cfg, sources)
	if err != nil {
		return err
	}
	buckets, err := agg.DepthBuckets(ds.Usable(), scoreOptions(cfg, cfg.Threshold), cfg.BinWidth, cfg.Absolute)
	if err != nil {
		return err
	}
	report := newReport(schema.WrongnessReport)
	report.Buckets = buckets
	return sink.Write(ctx, report)
}

// ExecuteAgreement measures how similar the orderings of co-annotators are.
// It serves as the main entry point for the 'agreement' report.
func ExecuteAgreement(ctx context.Context, cfg *contract.Config, sources contract.DataSources, sink contract.ResultSink) error {
	ds, err := loadDataset(ctx, cfg, sources)
	if err != nil {
		return err
	}
	dist := agg.AgreementReport(ds.Images, algo.NewRand(cfg.Seed))
	report := newReport(schema.AgreementReport)
	report.Agreement = &dist
	report.Histograms = agg.AgreementHistograms(dist)
	return sink.Write(ctx, report)
}

// ExecuteScores computes the naive and distance scores of every usable hit.
// It serves as the main entry point for the 'scores' report.
func ExecuteScores(ctx context.Context, cfg *contract.Config, sources contract.DataSources, sink contract.ResultSink) error {
	ds, err := loadDataset(ctx, cfg, sources)
	if err != nil {
		return err
	}
	scores, err := agg.ScoreRecords(ds.Usable())
	if err != nil {
		return err
	}
	naive := make([]float64, len(scores))
	dist := make([]float64, len(scores))
	for i, s := range scores {
		naive[i] = float64(s.Naive)
		dist[i] = s.Distance
	}
	report := newReport(schema.ScoresReport)
	report.Scores = scores
	report.Histograms = []schema.Histogram{
		agg.RangeHistogram("scores_naive", naive, agg.DepthRangeBins),
		agg.RangeHistogram("scores_distance", dist, agg.DepthRangeBins),
	}
	return sink.Write(ctx, report)
}

// ExecuteDepthStats summarizes the depth range of every usable hit's truth.
// It serves as the main entry point for the 'depthstats' report.
func ExecuteDepthStats(ctx context.Context, cfg *contract.Config, sources contract.DataSources, sink contract.ResultSink) error {
	ds, err := loadDataset(ctx, cfg, sources)
	if err != nil {
		return err
	}
	stats := agg.DepthRangeStats(ds.Usable())
	report := newReport(schema.DepthStatsReport)
	report.DepthStats = &stats
	report.Histograms = []schema.Histogram{
		agg.RangeHistogram("depth_ranges", stats.Ranges, agg.DepthRangeBins),
	}
	return sink.Write(ctx, report)
}

// ExecuteSummary reports dataset construction counts and failures by kind.
// It serves as the main entry point for the 'summary' report.
func ExecuteSummary(ctx context.Context, cfg *contract.Config, sources contract.DataSources, sink contract.ResultSink) error {
	ds, err := loadDataset(ctx, cfg, sources)
	if err != nil {
		return err
	}
	summary := ds.Summary()
	report := newReport(schema.SummaryReport)
	report.Summary = &summary
	return sink.Write(ctx, report)
}

// ExecuteLookup answers an audit lookup over the dataset.
// It serves as the main entry point for the 'lookup' report.
func ExecuteLookup(ctx context.Context, cfg *contract.Config, sources contract.DataSources, sink contract.ResultSink) error {
	if cfg.LookupMode == "" {
		return fmt.Errorf("lookup requires --by (files, images, workers, hits)")
	}
	if len(cfg.LookupValues) == 0 {
		return fmt.Errorf("lookup requires at least one value")
	}
	ds, err := loadDataset(ctx, cfg, sources)
	if err != nil {
		return err
	}
	rows, err := Lookup(ds, cfg.LookupMode, cfg.LookupValues)
	if err != nil {
		return err
	}
	report := newReport(schema.LookupReport)
	report.Lookup = rows
	return sink.Write(ctx, report)
}

// loadDataset builds the dataset and logs what was dropped along the way.
func loadDataset(ctx context.Context, cfg *contract.Config, sources contract.DataSources) (*Dataset, error) {
	start := time.Now()
	ds, err := BuildDataset(ctx, cfg, sources)
	if err != nil {
		return nil, err
	}
	summary := ds.Summary()
	contract.LogInfo("loaded %d hits (%d usable) over %d images in %s",
		summary.Hits, summary.Usable, summary.Images, time.Since(start).Round(time.Millisecond))
	if len(ds.Errors.Counts) > 0 {
		for _, kind := range ds.Errors.Kinds() {
			contract.LogWarn("record issues", fmt.Errorf("%s: %d", kind, ds.Errors.Counts[kind]))
		}
	}
	return ds, nil
}

func scoreOptions(cfg *contract.Config, threshold float64) agg.ScoreOptions {
	return agg.ScoreOptions{Threshold: threshold, Filter: cfg.Provenance, TieRule: cfg.TieRule}
}

func histogramName(prefix string, threshold float64) string {
	return prefix + "_" + strconv.FormatFloat(threshold, 'f', -1, 64)
}

func newReport(kind schema.ReportKind) *schema.Report {
	return &schema.Report{
		RunID:       uuid.NewString(),
		Kind:        kind,
		GeneratedAt: time.Now().UTC(),
	}
}
