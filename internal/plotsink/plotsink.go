// Package plotsink renders report histograms and wrongness curves as PNG
// charts using gonum.org/v1/plot.
package plotsink

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	barColor   = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	cdfColor   = color.RGBA{R: 200, G: 60, B: 60, A: 255}
	humanColor = color.RGBA{R: 40, G: 160, B: 80, A: 255}
)

// Sink writes one PNG per histogram of a report into a directory. Wrongness
// reports additionally get a correctness-by-depth chart.
type Sink struct {
	dir           string
	width, height vg.Length
}

var _ contract.ResultSink = &Sink{} // Compile-time check

// NewSink creates a plot sink writing into dir, creating it when needed.
func NewSink(dir string) *Sink {
	return &Sink{dir: dir, width: 8 * vg.Inch, height: 4 * vg.Inch}
}

// Write implements the ResultSink interface.
func (s *Sink) Write(ctx context.Context, report *schema.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create plot dir: %w", err)
	}

	written := 0
	for _, h := range report.Histograms {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(h.Bins) == 0 {
			continue
		}
		if err := s.histogramPlot(h); err != nil {
			return fmt.Errorf("plot %s: %w", h.Name, err)
		}
		written++
	}
	if report.Kind == schema.WrongnessReport {
		ok, err := s.bucketPlot(report.Buckets)
		if err != nil {
			return fmt.Errorf("plot wrongness: %w", err)
		}
		if ok {
			written++
		}
	}

	if written > 0 {
		contract.LogInfo("Wrote %d plots to %s", written, s.dir)
	}
	return nil
}

// FileName maps a plot name to its file inside the sink directory.
func (s *Sink) FileName(name string) string {
	clean := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, name)
	return filepath.Join(s.dir, clean+".png")
}

// histogramPlot draws bin proportions as bars with the cumulative share on top.
func (s *Sink) histogramPlot(h schema.Histogram) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (N=%d)", h.Name, h.Samples)
	p.X.Label.Text = "Bin"
	p.Y.Label.Text = "Share"

	values := make(plotter.Values, len(h.Bins))
	cdf := make(plotter.XYs, len(h.Bins))
	labels := make([]string, len(h.Bins))
	for i, b := range h.Bins {
		values[i] = b.Proportion
		cdf[i] = plotter.XY{X: float64(i), Y: b.Cumulative}
		labels[i] = fmt.Sprintf("%.3g", b.Lower)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return err
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.Legend.Add("share", bars)

	line, err := plotter.NewLine(cdf)
	if err != nil {
		return err
	}
	line.Color = cdfColor
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("cumulative", line)

	p.NominalX(labels...)
	p.Y.Min = 0
	p.Y.Max = 1
	p.Legend.Top = true
	p.Legend.Left = true

	return p.Save(s.width, s.height, s.FileName(h.Name))
}

// bucketPlot draws the correct proportion per depth-difference bucket.
// It reports false when no bucket had any counted comparison.
func (s *Sink) bucketPlot(buckets []schema.DepthBucket) (bool, error) {
	human := make(plotter.XYs, 0, len(buckets))
	all := make(plotter.XYs, 0, len(buckets))
	for _, b := range buckets {
		mid := (b.Lower + b.Upper) / 2
		if r, ok := b.HumanProportion(); ok {
			human = append(human, plotter.XY{X: mid, Y: r})
		}
		if r, ok := b.AllProportion(); ok {
			all = append(all, plotter.XY{X: mid, Y: r})
		}
	}
	if len(all) == 0 {
		return false, nil
	}

	p := plot.New()
	p.Title.Text = "Correct proportion by depth difference"
	p.X.Label.Text = "Depth difference (mm)"
	p.Y.Label.Text = "Correct"
	p.Y.Min = 0
	p.Y.Max = 1

	allLine, allPoints, err := plotter.NewLinePoints(all)
	if err != nil {
		return false, err
	}
	allLine.Color = barColor
	allPoints.GlyphStyle.Color = barColor
	p.Add(allLine, allPoints)
	p.Legend.Add("all", allLine, allPoints)

	if len(human) > 0 {
		humanLine, humanPoints, err := plotter.NewLinePoints(human)
		if err != nil {
			return false, err
		}
		humanLine.Color = humanColor
		humanPoints.GlyphStyle.Color = humanColor
		p.Add(humanLine, humanPoints)
		p.Legend.Add("human", humanLine, humanPoints)
	}
	p.Legend.Top = false
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = 10

	return true, p.Save(s.width, s.height, s.FileName("wrongness"))
}
