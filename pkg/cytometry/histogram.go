// Package cytometry predicts flow-cytometry fluorescence histograms for each
// gate by interpolating between its characterised histograms.
package cytometry

import (
	"strconv"
	"strings"

	"github.com/fyerfyer/dnacompiler/pkg/target"
	"github.com/pkg/errors"
)

// Histogram is a fluorescence distribution over bins
type Histogram struct {
	Bins   []float64
	Counts []float64
}

// NewHistogram copies a characterised histogram
func NewHistogram(data *target.CytometryData) *Histogram {
	return &Histogram{
		Bins:   append([]float64(nil), data.Bins...),
		Counts: append([]float64(nil), data.Counts...),
	}
}

// Mean returns the count-weighted mean bin, or 0 for an empty histogram
func (h *Histogram) Mean() float64 {
	sum, total := 0.0, 0.0
	for i, b := range h.Bins {
		sum += b * h.Counts[i]
		total += h.Counts[i]
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// BinsString returns the bins joined by commas
func (h *Histogram) BinsString() string {
	return join(h.Bins)
}

// CountsString returns the counts joined by commas
func (h *Histogram) CountsString() string {
	return join(h.Counts)
}

func join(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Interpolate estimates the histogram at input x from data sorted by input.
// The nearest points below and above x are used, falling back to the first or
// last point outside the characterised range.
func Interpolate(data []*target.CytometryData, x float64) (*Histogram, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(target.ErrModel, "no cytometry data")
	}

	lower, upper := data[0], data[len(data)-1]
	for _, d := range data {
		if d.Input <= x {
			lower = d
		}
	}
	for i := len(data) - 1; i >= 0; i-- {
		if data[i].Input >= x {
			upper = data[i]
		}
	}

	if lower == upper || lower.Input == x {
		return NewHistogram(lower), nil
	}
	if upper.Input == x || lower.Input == upper.Input {
		return NewHistogram(upper), nil
	}
	if len(lower.Counts) != len(upper.Counts) {
		return nil, errors.Wrapf(target.ErrModel, "cytometry at %g and %g have different bin counts",
			lower.Input, upper.Input)
	}

	r := (x - lower.Input) / (upper.Input - lower.Input)
	if r < 0 {
		r = 0
	} else if r > 1 {
		r = 1
	}

	h := NewHistogram(lower)
	for i := range h.Counts {
		h.Counts[i] = lower.Counts[i] + r*(upper.Counts[i]-lower.Counts[i])
	}
	return h, nil
}
