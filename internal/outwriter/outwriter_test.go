package outwriter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *contract.Config {
	return &contract.Config{
		Output:      schema.TextOut,
		Precision:   1,
		ResultLimit: 10,
		Width:       120,
		Provenance:  schema.AllProvenance,
		TieRule:     schema.LenientTies,
	}
}

func workersReport() *schema.Report {
	return &schema.Report{
		RunID:       "run-1",
		Kind:        schema.WorkersReport,
		GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Workers: []schema.WorkerScore{
			{WorkerID: "A", Threshold: 500, Hits: 2, Tally: schema.Tally{HumanCorrect: 9, HumanTotal: 10, GeneratedCorrect: 8, GeneratedTotal: 10}},
			{WorkerID: "B", Threshold: 500, Hits: 1, Tally: schema.Tally{HumanCorrect: 1, HumanTotal: 10}},
			{WorkerID: "B", Threshold: 100, Hits: 1, Tally: schema.Tally{HumanCorrect: 5, HumanTotal: 10}},
			{WorkerID: "A", Threshold: 100, Hits: 2},
		},
	}
}

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{name: "precision 1", precision: 1, value: 3.14159, expected: "3.1"},
		{name: "precision 3", precision: 3, value: 3.14159, expected: "3.142"},
		{name: "negative value", precision: 2, value: -42.567, expected: "-42.57"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, intFmt := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			assert.Equal(t, "%d", intFmt)
		})
	}
}

func TestFormatRatio(t *testing.T) {
	fmtFloat, _ := createFormatters(1)
	assert.Equal(t, "-", formatRatio(0, false, fmtFloat))
	assert.Equal(t, "0.0", formatRatio(0, true, fmtFloat))
	assert.Equal(t, "87.5", formatRatio(0.875, true, fmtFloat))
}

func TestFormatThreshold(t *testing.T) {
	assert.Equal(t, "500", formatThreshold(500))
	assert.Equal(t, "12.5", formatThreshold(12.5))
}

func TestSplitByThreshold(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, splitByThreshold(nil))
	})

	t.Run("consecutive groups", func(t *testing.T) {
		groups := splitByThreshold(workersReport().Workers)
		require.Len(t, groups, 2)
		assert.Len(t, groups[0], 2)
		assert.Len(t, groups[1], 2)
		assert.Equal(t, 100.0, groups[1][0].Threshold)
	})
}

func TestWriteCSVWithHeader(t *testing.T) {
	t.Run("rows follow header", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeCSVWithHeader(&buf, []string{"a", "b"}, func(cw *csv.Writer) error {
			return cw.Write([]string{"1", "2"})
		})
		require.NoError(t, err)
		assert.Equal(t, "a,b\n1,2\n", buf.String())
	})

	t.Run("row error is returned", func(t *testing.T) {
		var buf bytes.Buffer
		boom := errors.New("boom")
		err := writeCSVWithHeader(&buf, []string{"a"}, func(*csv.Writer) error { return boom })
		assert.ErrorIs(t, err, boom)
	})
}

func TestWriteTextReport(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	tests := []struct {
		name     string
		report   *schema.Report
		contains []string
	}{
		{
			name:     "workers",
			report:   workersReport(),
			contains: []string{"Threshold 500 mm", "Threshold 100 mm", "90.0", "Expert", "Run run-1 at 2024-01-02 03:04:05 UTC"},
		},
		{
			name: "images",
			report: &schema.Report{Kind: schema.ImagesReport, Images: []schema.ImageScore{
				{ImageID: 7, Filename: "s_01_act_02.jpg", Annotators: 3, TiedVotes: 1, Tally: schema.Tally{GeneratedCorrect: 3, GeneratedTotal: 4}},
			}},
			contains: []string{"s_01_act_02.jpg", "75.0", "Good", "tied votes: 1"},
		},
		{
			name: "wrongness",
			report: &schema.Report{Kind: schema.WrongnessReport, Buckets: []schema.DepthBucket{
				{Lower: 0, Upper: 200, HumanCorrect: 3, HumanIncorrect: 1},
			}},
			contains: []string{"[0.0, 200.0)", "75.0"},
		},
		{
			name: "agreement",
			report: &schema.Report{
				Kind: schema.AgreementReport,
				Agreement: &schema.AgreementDistributions{
					Images: []schema.AgreementStats{{ImageID: 1, Avg: 0.5}},
					Avg:    []float64{0.5},
				},
				Histograms: []schema.Histogram{{Name: "agreement_avg", Samples: 1, Bins: []schema.HistogramBin{{Lower: 0.5, Upper: 0.6, Count: 1, Proportion: 1, Cumulative: 1}}}},
			},
			contains: []string{"average", "random", "agreement_avg (N=1)", "100.0", "over 1 images"},
		},
		{
			name: "scores",
			report: &schema.Report{Kind: schema.ScoresReport, Scores: []schema.RecordScore{
				{HitID: 11, WorkerID: "A", ImageID: 7, Naive: 2, Distance: 0.4},
			}},
			contains: []string{"11", "0.4", "Showing 1 of 1 scored hits"},
		},
		{
			name:     "depth stats",
			report:   &schema.Report{Kind: schema.DepthStatsReport, DepthStats: &schema.DepthStats{Records: 2, Mean: 300, Median: 300, Min: 200, Max: 400}},
			contains: []string{"300.0", "400.0"},
		},
		{
			name: "summary",
			report: &schema.Report{Kind: schema.SummaryReport, Summary: &schema.DatasetSummary{
				Hits: 4, Usable: 3, Errors: &schema.ErrorSummary{Counts: map[schema.ErrorKind]int{schema.KindUnmatchedImage: 1}},
			}},
			contains: []string{"unmatched_image"},
		},
		{
			name:     "summary without issues",
			report:   &schema.Report{Kind: schema.SummaryReport, Summary: &schema.DatasetSummary{Hits: 4, Usable: 4}},
			contains: []string{"No record-level issues"},
		},
		{
			name:     "lookup",
			report:   &schema.Report{Kind: schema.LookupReport, Lookup: []schema.LookupRow{{Query: "A", Matches: []string{"a.jpg", "b.jpg"}}, {Query: "Z"}}},
			contains: []string{"a.jpg, b.jpg", "-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteTextReport(&buf, tt.report, testConfig()))
			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestWriteTextReportUnknownKind(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTextReport(&buf, &schema.Report{Kind: "bogus"}, testConfig())
	assert.Error(t, err)
}

func TestWriteCSVReport(t *testing.T) {
	t.Run("workers ranks restart per threshold", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSVReport(&buf, workersReport(), testConfig()))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 5)
		assert.Equal(t, "threshold", records[0][0])
		assert.Equal(t, []string{"500", "1", "A"}, records[1][:3])
		assert.Equal(t, "85.0", records[1][8])
		assert.Equal(t, "Expert", records[1][9])
		assert.Equal(t, []string{"100", "1", "B"}, records[3][:3])
		assert.Equal(t, "0.0", records[4][8])
	})

	t.Run("lookup joins matches", func(t *testing.T) {
		var buf bytes.Buffer
		report := &schema.Report{Kind: schema.LookupReport, Lookup: []schema.LookupRow{{Query: "7", Matches: []string{"11", "12"}}}}
		require.NoError(t, WriteCSVReport(&buf, report, testConfig()))
		assert.Equal(t, "query,matches\n7,11|12\n", buf.String())
	})

	t.Run("depth stats", func(t *testing.T) {
		var buf bytes.Buffer
		report := &schema.Report{Kind: schema.DepthStatsReport, DepthStats: &schema.DepthStats{Records: 2, Mean: 300}}
		require.NoError(t, WriteCSVReport(&buf, report, testConfig()))
		assert.Contains(t, buf.String(), "records,2\nmean,300.0\n")
	})

	t.Run("summary lists issue kinds", func(t *testing.T) {
		var buf bytes.Buffer
		report := &schema.Report{Kind: schema.SummaryReport, Summary: &schema.DatasetSummary{
			Hits: 2, Errors: &schema.ErrorSummary{Counts: map[schema.ErrorKind]int{schema.KindMissingRotation: 2}},
		}}
		require.NoError(t, WriteCSVReport(&buf, report, testConfig()))
		assert.Contains(t, buf.String(), "hits,2\n")
		assert.Contains(t, buf.String(), "issue_missing_rotation,2\n")
	})

	t.Run("unknown kind", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, WriteCSVReport(&buf, &schema.Report{Kind: "bogus"}, testConfig()))
	})
}

func TestWriteHistogramsCSV(t *testing.T) {
	var buf bytes.Buffer
	hists := []schema.Histogram{{Name: "h", Bins: []schema.HistogramBin{
		{Lower: 0, Upper: 0.5, Count: 1, Proportion: 0.25, Cumulative: 0.25},
		{Lower: 0.5, Upper: 1, Count: 3, Proportion: 0.75, Cumulative: 1},
	}}}
	require.NoError(t, WriteHistogramsCSV(&buf, hists, 2))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "h,0.50,1.00,3,0.75,1.00", lines[2])
}

func TestWriteJSONReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONReport(&buf, workersReport()))

	var decoded struct {
		RunID   string `json:"run_id"`
		Kind    string `json:"kind"`
		Workers []struct {
			Rank      int     `json:"rank"`
			Label     string  `json:"label"`
			WorkerID  string  `json:"worker_id"`
			Threshold float64 `json:"threshold"`
		} `json:"workers"`
		Images []any `json:"images"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, "workers", decoded.Kind)
	require.Len(t, decoded.Workers, 4)
	assert.Equal(t, 1, decoded.Workers[0].Rank)
	assert.Equal(t, 2, decoded.Workers[1].Rank)
	assert.Equal(t, 1, decoded.Workers[2].Rank)
	assert.Equal(t, "B", decoded.Workers[2].WorkerID)
	assert.Equal(t, "Poor", decoded.Workers[3].Label)
	assert.Nil(t, decoded.Images)
}

func TestOutWriterWrite(t *testing.T) {
	tests := []struct {
		name   string
		output schema.OutputMode
		check  func(t *testing.T, data []byte)
	}{
		{name: "json", output: schema.JSONOut, check: func(t *testing.T, data []byte) {
			assert.True(t, json.Valid(data))
		}},
		{name: "csv", output: schema.CSVOut, check: func(t *testing.T, data []byte) {
			assert.True(t, strings.HasPrefix(string(data), "threshold,rank,worker"))
		}},
		{name: "text", output: schema.TextOut, check: func(t *testing.T, data []byte) {
			assert.Contains(t, string(data), "Threshold 500 mm")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Output = tt.output
			cfg.OutputFile = filepath.Join(t.TempDir(), "report.out")

			require.NoError(t, NewOutWriter(cfg).Write(context.Background(), workersReport()))
			data, err := os.ReadFile(cfg.OutputFile)
			require.NoError(t, err)
			tt.check(t, data)
		})
	}
}

func TestOutWriterBadOutputFile(t *testing.T) {
	cfg := testConfig()
	cfg.Output = schema.CSVOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "missing", "report.csv")

	err := NewOutWriter(cfg).Write(context.Background(), workersReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error writing CSV output")
}

func TestOutWriterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewOutWriter(testConfig()).Write(ctx, workersReport())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMultiSink(t *testing.T) {
	ctx := context.Background()
	report := workersReport()

	t.Run("writes to every sink", func(t *testing.T) {
		first, second := &contract.MockResultSink{}, &contract.MockResultSink{}
		first.On("Write", ctx, report).Return(nil)
		second.On("Write", ctx, report).Return(nil)

		require.NoError(t, NewMultiSink(first, second).Write(ctx, report))
		first.AssertExpectations(t)
		second.AssertExpectations(t)
	})

	t.Run("stops at first error", func(t *testing.T) {
		boom := errors.New("boom")
		first, second := &contract.MockResultSink{}, &contract.MockResultSink{}
		first.On("Write", ctx, report).Return(boom)

		err := NewMultiSink(first, second).Write(ctx, report)
		assert.ErrorIs(t, err, boom)
		second.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
	})
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{width: 80, expected: 15},
		{width: 120, expected: 30},
		{width: 400, expected: 60},
	}

	for _, tt := range tests {
		cfg := &contract.Config{Width: tt.width}
		assert.Equal(t, tt.expected, GetMaxTableNameWidth(cfg))
	}
}
