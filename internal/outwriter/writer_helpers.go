package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
)

// createFormatters returns the float formatter for the configured precision
// and the verb used for counts.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	return func(v float64) string { return strconv.FormatFloat(v, 'f', precision, 64) }, "%d"
}

// formatRatio renders a ratio as a percentage, or "-" when nothing was counted.
func formatRatio(r float64, ok bool, fmtFloat func(float64) string) string {
	if !ok {
		return "-"
	}
	return fmtFloat(100 * r)
}

// formatThreshold renders a threshold without trailing zeros.
func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// splitByThreshold groups consecutive worker scores that share a threshold.
func splitByThreshold(workers []schema.WorkerScore) [][]schema.WorkerScore {
	var groups [][]schema.WorkerScore
	start := 0
	for i := 1; i <= len(workers); i++ {
		if i == len(workers) || workers[i].Threshold != workers[start].Threshold {
			groups = append(groups, workers[start:i])
			start = i
		}
	}
	return groups
}

// emitReport renders one report in the named format to the output file, or to
// stdout when no file is configured. A file is closed before returning.
func emitReport(outputFile, format string, render func(io.Writer) error) (err error) {
	out, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return fmt.Errorf("error writing %s output: %w", format, err)
	}
	if out == os.Stdout {
		if err := render(out); err != nil {
			return fmt.Errorf("error writing %s output: %w", format, err)
		}
		return nil
	}

	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("error closing %s output: %w", format, cerr)
		}
	}()
	if err := render(out); err != nil {
		return fmt.Errorf("error writing %s output: %w", format, err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote %s to %s\n", format, outputFile)
	return nil
}

// writeJSON encodes v with two-space indentation.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader writes the header, lets writeRows fill the body and
// reports any error the csv writer buffered.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(cw); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
