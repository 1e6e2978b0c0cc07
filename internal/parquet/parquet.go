// Package parquet provides row types and a sink for exporting depth audit
// reports to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
	"github.com/parquet-go/parquet-go"
)

// WorkerRow is one worker accuracy at one sweep threshold.
type WorkerRow struct {
	RunID            string    `parquet:"run_id,snappy,dict"`
	GeneratedAt      time.Time `parquet:"generated_at,snappy"`
	Threshold        float64   `parquet:"threshold,snappy"`
	WorkerID         string    `parquet:"worker_id,snappy,dict"`
	Hits             int32     `parquet:"hits,snappy"`
	HumanCorrect     int32     `parquet:"human_correct,snappy"`
	HumanTotal       int32     `parquet:"human_total,snappy"`
	GeneratedCorrect int32     `parquet:"generated_correct,snappy"`
	GeneratedTotal   int32     `parquet:"generated_total,snappy"`

	// Accuracy is nil when the worker had no counted comparisons
	Accuracy *float64 `parquet:"accuracy,optional,snappy"`
}

// ImageRow is the metaperson accuracy of one image.
type ImageRow struct {
	RunID       string    `parquet:"run_id,snappy,dict"`
	GeneratedAt time.Time `parquet:"generated_at,snappy"`
	ImageID     int64     `parquet:"image_id,snappy"`
	Filename    string    `parquet:"filename,snappy"`
	Threshold   float64   `parquet:"threshold,snappy"`
	Annotators  int32     `parquet:"annotators,snappy"`
	TiedVotes   int32     `parquet:"tied_votes,snappy"`
	Correct     int32     `parquet:"correct,snappy"`
	Total       int32     `parquet:"total,snappy"`
	Accuracy    *float64  `parquet:"accuracy,optional,snappy"`
}

// BucketRow is one depth-difference bucket of the wrongness analysis.
type BucketRow struct {
	RunID              string  `parquet:"run_id,snappy,dict"`
	Lower              float64 `parquet:"lower,snappy"`
	Upper              float64 `parquet:"upper,snappy"`
	HumanCorrect       int32   `parquet:"human_correct,snappy"`
	HumanIncorrect     int32   `parquet:"human_incorrect,snappy"`
	GeneratedCorrect   int32   `parquet:"generated_correct,snappy"`
	GeneratedIncorrect int32   `parquet:"generated_incorrect,snappy"`
}

// AgreementRow is the pairwise agreement summary of one image.
type AgreementRow struct {
	RunID   string    `parquet:"run_id,snappy,dict"`
	ImageID int64     `parquet:"image_id,snappy"`
	Avg     float64   `parquet:"avg,snappy"`
	Best    float64   `parquet:"best,snappy"`
	Worst   float64   `parquet:"worst,snappy"`
	Pairs   []float64 `parquet:"pairs,list"`
}

// ScoreRow is the ordering score of one hit.
type ScoreRow struct {
	RunID    string  `parquet:"run_id,snappy,dict"`
	HitID    int64   `parquet:"hit_id,snappy"`
	WorkerID string  `parquet:"worker_id,snappy,dict"`
	ImageID  int64   `parquet:"image_id,snappy"`
	Naive    int32   `parquet:"naive,snappy"`
	Distance float64 `parquet:"distance,snappy"`
}

// MetricRow is a named scalar, used for summaries and depth statistics.
type MetricRow struct {
	RunID  string  `parquet:"run_id,snappy,dict"`
	Metric string  `parquet:"metric,snappy,dict"`
	Value  float64 `parquet:"value,snappy"`
}

// LookupRow is one lookup query and what it matched.
type LookupRow struct {
	RunID   string   `parquet:"run_id,snappy,dict"`
	Query   string   `parquet:"query,snappy"`
	Matches []string `parquet:"matches,list"`
}

// HistogramRow is one bin of a named histogram.
type HistogramRow struct {
	RunID      string  `parquet:"run_id,snappy,dict"`
	Histogram  string  `parquet:"histogram,snappy,dict"`
	Samples    int32   `parquet:"samples,snappy"`
	Lower      float64 `parquet:"lower,snappy"`
	Upper      float64 `parquet:"upper,snappy"`
	Count      int32   `parquet:"count,snappy"`
	Proportion float64 `parquet:"proportion,snappy"`
	Cumulative float64 `parquet:"cumulative,snappy"`
}

// Sink writes the primary rows of each report to one Parquet file and the
// histogram bins, when present, to a sibling file with a _histograms suffix.
type Sink struct {
	path string
}

var _ contract.ResultSink = &Sink{} // Compile-time check

// NewSink creates a Parquet sink writing to the given path.
func NewSink(path string) *Sink {
	return &Sink{path: path}
}

// Write implements the ResultSink interface.
func (s *Sink) Write(ctx context.Context, report *schema.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var err error
	switch report.Kind {
	case schema.WorkersReport:
		err = WriteRows(s.path, ConvertWorkerScores(report))
	case schema.ImagesReport:
		err = WriteRows(s.path, ConvertImageScores(report))
	case schema.WrongnessReport:
		err = WriteRows(s.path, ConvertBuckets(report))
	case schema.AgreementReport:
		err = WriteRows(s.path, ConvertAgreement(report))
	case schema.ScoresReport:
		err = WriteRows(s.path, ConvertScores(report))
	case schema.DepthStatsReport, schema.SummaryReport:
		err = WriteRows(s.path, ConvertMetrics(report))
	case schema.LookupReport:
		err = WriteRows(s.path, ConvertLookup(report))
	default:
		err = fmt.Errorf("unknown report kind %q", report.Kind)
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", s.path)

	if len(report.Histograms) == 0 {
		return nil
	}
	histPath := HistogramPath(s.path)
	if err := WriteRows(histPath, ConvertHistograms(report)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", histPath)
	return nil
}

// HistogramPath derives the histogram file name from the primary output path.
func HistogramPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_histograms" + ext
}

// WriteRows writes a slice of rows to a Parquet file. The schema is derived
// from the struct tags of T.
func WriteRows[T any](outputPath string, rows []T) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

func optionalRatio(r float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &r
}

// ConvertWorkerScores converts worker scores for Parquet export.
func ConvertWorkerScores(report *schema.Report) []WorkerRow {
	result := make([]WorkerRow, len(report.Workers))
	for i, ws := range report.Workers {
		result[i] = WorkerRow{
			RunID:            report.RunID,
			GeneratedAt:      report.GeneratedAt,
			Threshold:        ws.Threshold,
			WorkerID:         ws.WorkerID,
			Hits:             int32(ws.Hits),
			HumanCorrect:     int32(ws.HumanCorrect),
			HumanTotal:       int32(ws.HumanTotal),
			GeneratedCorrect: int32(ws.GeneratedCorrect),
			GeneratedTotal:   int32(ws.GeneratedTotal),
			Accuracy:         optionalRatio(ws.Ratio()),
		}
	}
	return result
}

// ConvertImageScores converts image scores for Parquet export.
func ConvertImageScores(report *schema.Report) []ImageRow {
	result := make([]ImageRow, len(report.Images))
	for i, img := range report.Images {
		result[i] = ImageRow{
			RunID:       report.RunID,
			GeneratedAt: report.GeneratedAt,
			ImageID:     img.ImageID,
			Filename:    img.Filename,
			Threshold:   img.Threshold,
			Annotators:  int32(img.Annotators),
			TiedVotes:   int32(img.TiedVotes),
			Correct:     int32(img.Correct()),
			Total:       int32(img.Total()),
			Accuracy:    optionalRatio(img.Ratio()),
		}
	}
	return result
}

// ConvertBuckets converts wrongness buckets for Parquet export.
func ConvertBuckets(report *schema.Report) []BucketRow {
	result := make([]BucketRow, len(report.Buckets))
	for i, b := range report.Buckets {
		result[i] = BucketRow{
			RunID:              report.RunID,
			Lower:              b.Lower,
			Upper:              b.Upper,
			HumanCorrect:       int32(b.HumanCorrect),
			HumanIncorrect:     int32(b.HumanIncorrect),
			GeneratedCorrect:   int32(b.GeneratedCorrect),
			GeneratedIncorrect: int32(b.GeneratedIncorrect),
		}
	}
	return result
}

// ConvertAgreement converts per-image agreement for Parquet export.
func ConvertAgreement(report *schema.Report) []AgreementRow {
	if report.Agreement == nil {
		return nil
	}
	result := make([]AgreementRow, len(report.Agreement.Images))
	for i, st := range report.Agreement.Images {
		result[i] = AgreementRow{
			RunID:   report.RunID,
			ImageID: st.ImageID,
			Avg:     st.Avg,
			Best:    st.Best,
			Worst:   st.Worst,
			Pairs:   st.All,
		}
	}
	return result
}

// ConvertScores converts per-hit scores for Parquet export.
func ConvertScores(report *schema.Report) []ScoreRow {
	result := make([]ScoreRow, len(report.Scores))
	for i, s := range report.Scores {
		result[i] = ScoreRow{
			RunID:    report.RunID,
			HitID:    s.HitID,
			WorkerID: s.WorkerID,
			ImageID:  s.ImageID,
			Naive:    int32(s.Naive),
			Distance: s.Distance,
		}
	}
	return result
}

// ConvertMetrics flattens depth statistics or a dataset summary into named values.
func ConvertMetrics(report *schema.Report) []MetricRow {
	var result []MetricRow
	add := func(name string, v float64) {
		result = append(result, MetricRow{RunID: report.RunID, Metric: name, Value: v})
	}
	if st := report.DepthStats; st != nil {
		add("records", float64(st.Records))
		add("mean", st.Mean)
		add("median", st.Median)
		add("min", st.Min)
		add("max", st.Max)
	}
	if s := report.Summary; s != nil {
		add("hits", float64(s.Hits))
		add("usable", float64(s.Usable))
		add("truths", float64(s.Truths))
		add("images", float64(s.Images))
		add("workers", float64(s.Workers))
		if s.Errors != nil {
			for _, kind := range s.Errors.Kinds() {
				add("issue_"+string(kind), float64(s.Errors.Counts[kind]))
			}
		}
	}
	return result
}

// ConvertLookup converts lookup results for Parquet export.
func ConvertLookup(report *schema.Report) []LookupRow {
	result := make([]LookupRow, len(report.Lookup))
	for i, r := range report.Lookup {
		result[i] = LookupRow{RunID: report.RunID, Query: r.Query, Matches: r.Matches}
	}
	return result
}

// ConvertHistograms flattens every histogram into one row per bin.
func ConvertHistograms(report *schema.Report) []HistogramRow {
	var result []HistogramRow
	for _, h := range report.Histograms {
		for _, b := range h.Bins {
			result = append(result, HistogramRow{
				RunID:      report.RunID,
				Histogram:  h.Name,
				Samples:    int32(h.Samples),
				Lower:      b.Lower,
				Upper:      b.Upper,
				Count:      int32(b.Count),
				Proportion: b.Proportion,
				Cumulative: b.Cumulative,
			})
		}
	}
	return result
}
