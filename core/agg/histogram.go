package agg

import (
	"math"
	"slices"

	"github.com/huangsam/depthaudit/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PercentBins is the number of bins used for accuracy and similarity ratios.
const PercentBins = 10

// PercentHistogram bins ratios in [0,1] into ten equal bins with a running
// cumulative proportion. The last bin is closed so that a ratio of 1 counts.
func PercentHistogram(name string, ratios []float64) schema.Histogram {
	return FixedHistogram(name, ratios, 0, 1, PercentBins)
}

// FixedHistogram bins values into n equal-width bins over [lo, hi]. Values
// outside the range are clamped into the first or last bin.
func FixedHistogram(name string, values []float64, lo, hi float64, n int) schema.Histogram {
	h := schema.Histogram{Name: name, Samples: len(values)}
	if n <= 0 || hi < lo {
		return h
	}

	dividers := floats.Span(make([]float64, n+1), lo, hi)
	edges := slices.Clone(dividers)
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	counts := make([]float64, n)
	if len(values) > 0 {
		x := make([]float64, len(values))
		for i, v := range values {
			x[i] = math.Min(math.Max(v, lo), hi)
		}
		slices.Sort(x)
		counts = stat.Histogram(counts, dividers, x, nil)
	}

	props := make([]float64, n)
	if len(values) > 0 {
		floats.ScaleTo(props, 1/float64(len(values)), counts)
	}
	cdf := floats.CumSum(make([]float64, n), props)

	h.Bins = make([]schema.HistogramBin, n)
	for i := range n {
		h.Bins[i] = schema.HistogramBin{
			Lower:      edges[i],
			Upper:      edges[i+1],
			Count:      int(counts[i]),
			Proportion: props[i],
			Cumulative: cdf[i],
		}
	}
	return h
}

// RangeHistogram bins values over their own range. A sample of identical
// values gets a unit-wide range.
func RangeHistogram(name string, values []float64, n int) schema.Histogram {
	if len(values) == 0 {
		return schema.Histogram{Name: name}
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if hi == lo {
		hi = lo + 1
	}
	return FixedHistogram(name, values, lo, hi, n)
}
