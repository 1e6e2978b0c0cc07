package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WriteTextReport renders a report as human-readable tables.
func WriteTextReport(w io.Writer, report *schema.Report, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	var err error
	switch report.Kind {
	case schema.WorkersReport:
		err = writeWorkersTable(w, report.Workers, cfg, fmtFloat, intFmt)
	case schema.ImagesReport:
		err = writeImagesTable(w, report.Images, cfg, fmtFloat, intFmt)
	case schema.WrongnessReport:
		err = writeBucketsTable(w, report.Buckets, fmtFloat, intFmt)
	case schema.AgreementReport:
		err = writeAgreementTable(w, report.Agreement, fmtFloat, intFmt)
	case schema.ScoresReport:
		err = writeScoresTable(w, report.Scores, cfg, fmtFloat, intFmt)
	case schema.DepthStatsReport:
		err = writeDepthStatsTable(w, report.DepthStats, fmtFloat, intFmt)
	case schema.SummaryReport:
		err = writeSummaryTable(w, report.Summary, intFmt)
	case schema.LookupReport:
		err = writeLookupTable(w, report.Lookup)
	default:
		err = fmt.Errorf("unknown report kind %q", report.Kind)
	}
	if err != nil {
		return err
	}
	if report.Kind == schema.AgreementReport || report.Kind == schema.DepthStatsReport {
		for _, h := range report.Histograms {
			if err := writeHistogramTable(w, h, fmtFloat, intFmt); err != nil {
				return err
			}
		}
	}
	_, err = fmt.Fprintf(w, "Run %s at %s\n", report.RunID, report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	return err
}

// renderTable writes one right-aligned table.
func renderTable(w io.Writer, headers []string, data [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeWorkersTable writes one table per sweep threshold.
func writeWorkersTable(w io.Writer, workers []schema.WorkerScore, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	for _, group := range splitByThreshold(workers) {
		if _, err := fmt.Fprintf(w, "Threshold %s mm\n", formatThreshold(group[0].Threshold)); err != nil {
			return err
		}
		var data [][]string
		for i, ws := range group {
			human, hok := ws.HumanRatio()
			gen, gok := ws.GeneratedRatio()
			all, aok := ws.Ratio()
			data = append(data, []string{
				strconv.Itoa(i + 1),
				ws.WorkerID,
				fmt.Sprintf(intFmt, ws.Hits),
				formatRatio(human, hok, fmtFloat),
				formatRatio(gen, gok, fmtFloat),
				formatRatio(all, aok, fmtFloat),
				contract.GetColorLabel(ws.Percent(cfg.Provenance)),
			})
		}
		if err := renderTable(w, []string{"Rank", "Worker", "Hits", "Human %", "Generated %", "Overall %", "Label"}, data); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Showing top %d workers (provenance: %s, ties: %s)\n",
			len(group), cfg.Provenance, cfg.TieRule); err != nil {
			return err
		}
	}
	return nil
}

// writeImagesTable writes the metaperson accuracy of each image.
func writeImagesTable(w io.Writer, images []schema.ImageScore, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	tied := 0
	for i, img := range images {
		r, ok := img.Ratio()
		tied += img.TiedVotes
		data = append(data, []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(img.ImageID, 10),
			contract.TruncatePath(img.Filename, nameWidth),
			fmt.Sprintf(intFmt, img.Annotators),
			fmt.Sprintf(intFmt, img.TiedVotes),
			fmt.Sprintf(intFmt, img.Correct()),
			fmt.Sprintf(intFmt, img.Total()),
			formatRatio(r, ok, fmtFloat),
			contract.GetColorLabel(img.Percent(schema.AllProvenance)),
		})
	}
	if err := renderTable(w, []string{"Rank", "Image", "File", "Annotators", "Ties", "Correct", "Total", "Accuracy %", "Label"}, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing top %d images (tied votes: %d)\n", len(images), tied)
	return err
}

// writeBucketsTable writes correct and incorrect counts per depth difference bucket.
func writeBucketsTable(w io.Writer, buckets []schema.DepthBucket, fmtFloat func(float64) string, intFmt string) error {
	var data [][]string
	for _, b := range buckets {
		hp, hok := b.HumanProportion()
		ap, aok := b.AllProportion()
		data = append(data, []string{
			fmt.Sprintf("[%s, %s)", fmtFloat(b.Lower), fmtFloat(b.Upper)),
			fmt.Sprintf(intFmt, b.HumanCorrect),
			fmt.Sprintf(intFmt, b.HumanIncorrect),
			fmt.Sprintf(intFmt, b.GeneratedCorrect),
			fmt.Sprintf(intFmt, b.GeneratedIncorrect),
			formatRatio(hp, hok, fmtFloat),
			formatRatio(ap, aok, fmtFloat),
		})
	}
	return renderTable(w, []string{"Depth Diff", "Human OK", "Human Wrong", "Generated OK", "Generated Wrong", "Human %", "All %"}, data)
}

// writeAgreementTable summarizes each agreement distribution.
func writeAgreementTable(w io.Writer, d *schema.AgreementDistributions, fmtFloat func(float64) string, intFmt string) error {
	if d == nil {
		return nil
	}
	rows := []struct {
		name   string
		values []float64
	}{
		{"average", d.Avg},
		{"all pairs", d.All},
		{"best", d.Best},
		{"worst", d.Worst},
		{"random", d.Random},
	}
	var data [][]string
	for _, r := range rows {
		row := []string{r.name, fmt.Sprintf(intFmt, len(r.values)), "-", "-", "-"}
		if len(r.values) > 0 {
			row[2] = fmtFloat(stat.Mean(r.values, nil))
			row[3] = fmtFloat(floats.Min(r.values))
			row[4] = fmtFloat(floats.Max(r.values))
		}
		data = append(data, row)
	}
	if err := renderTable(w, []string{"Distribution", "Samples", "Mean", "Min", "Max"}, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Agreement over %d images with two or more annotators\n", len(d.Images))
	return err
}

// writeScoresTable writes the per-hit ordering scores.
func writeScoresTable(w io.Writer, scores []schema.RecordScore, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	shown := scores
	if cfg.ResultLimit > 0 && len(shown) > cfg.ResultLimit {
		shown = shown[:cfg.ResultLimit]
	}
	var data [][]string
	for _, s := range shown {
		data = append(data, []string{
			strconv.FormatInt(s.HitID, 10),
			s.WorkerID,
			strconv.FormatInt(s.ImageID, 10),
			fmt.Sprintf(intFmt, s.Naive),
			fmtFloat(s.Distance),
		})
	}
	if err := renderTable(w, []string{"Hit", "Worker", "Image", "Naive", "Distance"}, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d of %d scored hits\n", len(shown), len(scores))
	return err
}

// writeDepthStatsTable writes the ground-truth depth range statistics.
func writeDepthStatsTable(w io.Writer, st *schema.DepthStats, fmtFloat func(float64) string, intFmt string) error {
	if st == nil {
		return nil
	}
	data := [][]string{{
		fmt.Sprintf(intFmt, st.Records),
		fmtFloat(st.Mean),
		fmtFloat(st.Median),
		fmtFloat(st.Min),
		fmtFloat(st.Max),
	}}
	return renderTable(w, []string{"Records", "Mean", "Median", "Min", "Max"}, data)
}

// writeSummaryTable writes dataset counts followed by failures per kind.
func writeSummaryTable(w io.Writer, s *schema.DatasetSummary, intFmt string) error {
	if s == nil {
		return nil
	}
	data := [][]string{{
		fmt.Sprintf(intFmt, s.Hits),
		fmt.Sprintf(intFmt, s.Usable),
		fmt.Sprintf(intFmt, s.Truths),
		fmt.Sprintf(intFmt, s.Images),
		fmt.Sprintf(intFmt, s.Workers),
	}}
	if err := renderTable(w, []string{"Hits", "Usable", "Truths", "Images", "Workers"}, data); err != nil {
		return err
	}
	if s.Errors == nil || len(s.Errors.Counts) == 0 {
		_, err := fmt.Fprintln(w, "No record-level issues")
		return err
	}
	var issues [][]string
	for _, kind := range s.Errors.Kinds() {
		issues = append(issues, []string{string(kind), fmt.Sprintf(intFmt, s.Errors.Counts[kind])})
	}
	return renderTable(w, []string{"Issue", "Count"}, issues)
}

// writeLookupTable writes one row per query value.
func writeLookupTable(w io.Writer, rows []schema.LookupRow) error {
	var data [][]string
	for _, r := range rows {
		matches := strings.Join(r.Matches, ", ")
		if matches == "" {
			matches = "-"
		}
		data = append(data, []string{r.Query, matches})
	}
	return renderTable(w, []string{"Query", "Matches"}, data)
}

// writeHistogramTable writes the bins of one histogram.
func writeHistogramTable(w io.Writer, h schema.Histogram, fmtFloat func(float64) string, intFmt string) error {
	if _, err := fmt.Fprintf(w, "%s (N=%d)\n", h.Name, h.Samples); err != nil {
		return err
	}
	var data [][]string
	for _, b := range h.Bins {
		data = append(data, []string{
			fmt.Sprintf("[%s, %s)", fmtFloat(b.Lower), fmtFloat(b.Upper)),
			fmt.Sprintf(intFmt, b.Count),
			fmtFloat(100 * b.Proportion),
			fmtFloat(100 * b.Cumulative),
		})
	}
	return renderTable(w, []string{"Bin", "Count", "Share %", "Cumulative %"}, data)
}
