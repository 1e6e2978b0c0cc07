package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
)

// WriteCSVReport writes the primary rows of a report as CSV.
// Histograms are left to WriteHistogramsCSV and the other sinks.
func WriteCSVReport(w io.Writer, report *schema.Report, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	switch report.Kind {
	case schema.WorkersReport:
		return writeWorkersCSV(w, report.Workers, cfg.Provenance, fmtFloat, intFmt)
	case schema.ImagesReport:
		return writeImagesCSV(w, report.Images, fmtFloat, intFmt)
	case schema.WrongnessReport:
		return writeBucketsCSV(w, report.Buckets, fmtFloat, intFmt)
	case schema.AgreementReport:
		return writeAgreementCSV(w, report.Agreement, fmtFloat)
	case schema.ScoresReport:
		return writeScoresCSV(w, report.Scores, fmtFloat, intFmt)
	case schema.DepthStatsReport:
		return writeDepthStatsCSV(w, report.DepthStats, fmtFloat, intFmt)
	case schema.SummaryReport:
		return writeSummaryCSV(w, report.Summary, intFmt)
	case schema.LookupReport:
		return writeLookupCSV(w, report.Lookup)
	default:
		return fmt.Errorf("unknown report kind %q", report.Kind)
	}
}

func writeWorkersCSV(w io.Writer, workers []schema.WorkerScore, filter schema.ProvenanceFilter, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"threshold",
		"rank",
		"worker",
		"hits",
		"human_correct",
		"human_total",
		"generated_correct",
		"generated_total",
		"accuracy",
		"label",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, group := range splitByThreshold(workers) {
			for _, ws := range schema.EnrichWorkers(group, filter) {
				rec := []string{
					formatThreshold(ws.Threshold),
					strconv.Itoa(ws.Rank),
					ws.WorkerID,
					fmt.Sprintf(intFmt, ws.Hits),
					fmt.Sprintf(intFmt, ws.HumanCorrect),
					fmt.Sprintf(intFmt, ws.HumanTotal),
					fmt.Sprintf(intFmt, ws.GeneratedCorrect),
					fmt.Sprintf(intFmt, ws.GeneratedTotal),
					fmtFloat(ws.Percent(filter)),
					ws.Label,
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func writeImagesCSV(w io.Writer, images []schema.ImageScore, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"rank", "image_id", "filename", "threshold", "annotators", "tied_votes", "correct", "total", "accuracy", "label"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, img := range schema.EnrichImages(images) {
			rec := []string{
				strconv.Itoa(img.Rank),
				strconv.FormatInt(img.ImageID, 10),
				img.Filename,
				formatThreshold(img.Threshold),
				fmt.Sprintf(intFmt, img.Annotators),
				fmt.Sprintf(intFmt, img.TiedVotes),
				fmt.Sprintf(intFmt, img.Correct()),
				fmt.Sprintf(intFmt, img.Total()),
				fmtFloat(img.Percent(schema.AllProvenance)),
				img.Label,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeBucketsCSV(w io.Writer, buckets []schema.DepthBucket, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"lower", "upper", "human_correct", "human_incorrect", "generated_correct", "generated_incorrect"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, b := range buckets {
			rec := []string{
				fmtFloat(b.Lower),
				fmtFloat(b.Upper),
				fmt.Sprintf(intFmt, b.HumanCorrect),
				fmt.Sprintf(intFmt, b.HumanIncorrect),
				fmt.Sprintf(intFmt, b.GeneratedCorrect),
				fmt.Sprintf(intFmt, b.GeneratedIncorrect),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeAgreementCSV(w io.Writer, d *schema.AgreementDistributions, fmtFloat func(float64) string) error {
	header := []string{"image_id", "avg", "best", "worst", "pairs"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		if d == nil {
			return nil
		}
		for _, st := range d.Images {
			rec := []string{
				strconv.FormatInt(st.ImageID, 10),
				fmtFloat(st.Avg),
				fmtFloat(st.Best),
				fmtFloat(st.Worst),
				strconv.Itoa(len(st.All)),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeScoresCSV(w io.Writer, scores []schema.RecordScore, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"hit_id", "worker_id", "image_id", "naive", "distance"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range scores {
			rec := []string{
				strconv.FormatInt(s.HitID, 10),
				s.WorkerID,
				strconv.FormatInt(s.ImageID, 10),
				fmt.Sprintf(intFmt, s.Naive),
				fmtFloat(s.Distance),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeDepthStatsCSV(w io.Writer, st *schema.DepthStats, fmtFloat func(float64) string, intFmt string) error {
	return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
		if st == nil {
			return nil
		}
		return cw.WriteAll([][]string{
			{"records", fmt.Sprintf(intFmt, st.Records)},
			{"mean", fmtFloat(st.Mean)},
			{"median", fmtFloat(st.Median)},
			{"min", fmtFloat(st.Min)},
			{"max", fmtFloat(st.Max)},
		})
	})
}

// WriteHistogramsCSV writes every bin of every histogram, one row per bin.
func WriteHistogramsCSV(w io.Writer, hists []schema.Histogram, precision int) error {
	fmtFloat, intFmt := createFormatters(precision)
	return writeHistogramCSV(w, hists, fmtFloat, intFmt)
}

func writeHistogramCSV(w io.Writer, hists []schema.Histogram, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"histogram", "lower", "upper", "count", "proportion", "cumulative"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, h := range hists {
			for _, b := range h.Bins {
				rec := []string{
					h.Name,
					fmtFloat(b.Lower),
					fmtFloat(b.Upper),
					fmt.Sprintf(intFmt, b.Count),
					fmtFloat(b.Proportion),
					fmtFloat(b.Cumulative),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func writeSummaryCSV(w io.Writer, s *schema.DatasetSummary, intFmt string) error {
	return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
		if s == nil {
			return nil
		}
		rows := [][]string{
			{"hits", fmt.Sprintf(intFmt, s.Hits)},
			{"usable", fmt.Sprintf(intFmt, s.Usable)},
			{"truths", fmt.Sprintf(intFmt, s.Truths)},
			{"images", fmt.Sprintf(intFmt, s.Images)},
			{"workers", fmt.Sprintf(intFmt, s.Workers)},
		}
		if s.Errors != nil {
			for _, kind := range s.Errors.Kinds() {
				rows = append(rows, []string{"issue_" + string(kind), fmt.Sprintf(intFmt, s.Errors.Counts[kind])})
			}
		}
		return cw.WriteAll(rows)
	})
}

func writeLookupCSV(w io.Writer, rows []schema.LookupRow) error {
	return writeCSVWithHeader(w, []string{"query", "matches"}, func(cw *csv.Writer) error {
		for _, r := range rows {
			if err := cw.Write([]string{r.Query, strings.Join(r.Matches, "|")}); err != nil {
				return err
			}
		}
		return nil
	})
}
