// Package profile reduces 2D detector images to 1D radial profiles.
//
// Two averaging paths exist and intentionally differ on empty bins:
// the pixel-plane kernel (RadialAverager) reports 0 for bins with no
// contributing pixels, while the coarser region-based path (Saxs2d)
// reports NaN. Callers rely on both behaviors; they must not be
// unified.
package profile

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"saxsreduce/internal/models"
	"saxsreduce/pkg/mask"
)

// DefaultThreshold excludes non-positive sentinel pixel values that
// sit below the real count floor of the instrument.
const DefaultThreshold = 2

// RadialAverager bins pixels of a fixed geometry by integer radius
// around the beam center. The per-pixel bin index is computed once at
// construction, so a single averager serves every frame of a series
// with an O(width*height) pass and no allocation in the pixel loop.
type RadialAverager struct {
	width  int
	height int

	// binIdx maps each pixel to its radius bin
	binIdx []int32

	// radii holds the bin-center radius for each bin, minR + 0.5 + k
	radii []float64
}

// NewRadialAverager precomputes the radius binning for the given image
// shape and beam center. The center need not be integer nor inside the
// image. The bin range spans [floor(min d), ceil(max d)] over every
// pixel, so bin count depends on geometry alone, never on masking or
// thresholds.
func NewRadialAverager(width, height int, centerX, centerY float64) *RadialAverager {
	binIdx := make([]int32, width*height)
	dist := make([]float64, width*height)

	dxSq := make([]float64, width)
	for x := 0; x < width; x++ {
		d := float64(x) - centerX
		dxSq[x] = d * d
	}
	for y := 0; y < height; y++ {
		dy := float64(y) - centerY
		dySq := dy * dy
		row := dist[y*width : (y+1)*width]
		for x := 0; x < width; x++ {
			row[x] = math.Sqrt(dxSq[x] + dySq)
		}
	}

	minR := int(floats.Min(dist))
	maxR := int(floats.Max(dist)) + 1
	nBins := maxR - minR + 1

	for i, d := range dist {
		binIdx[i] = int32(int(d) - minR)
	}

	radii := make([]float64, nBins)
	for k := range radii {
		radii[k] = float64(minR) + 0.5 + float64(k)
	}

	return &RadialAverager{
		width:  width,
		height: height,
		binIdx: binIdx,
		radii:  radii,
	}
}

// NumBins returns the fixed bin count of this geometry.
func (a *RadialAverager) NumBins() int {
	return len(a.radii)
}

// Radii returns a copy of the bin-center radius grid in pixels.
func (a *RadialAverager) Radii() []float64 {
	out := make([]float64, len(a.radii))
	copy(out, a.radii)
	return out
}

// RadialAverage is the one-shot form for callers without a fixed
// geometry to amortize the bin index over.
func RadialAverage(img []float64, width, height int, centerX, centerY, threshold float64, m *mask.Mask) models.RadialProfile {
	return NewRadialAverager(width, height, centerX, centerY).Average(img, m, threshold)
}

// Average reduces one frame to its radial profile. A pixel contributes
// to its bin iff the mask (when non-nil) marks it valid and its
// intensity is at or above threshold. Empty bins report intensity 0
// and are retained, so every profile of a fixed geometry has the same
// length.
func (a *RadialAverager) Average(img []float64, m *mask.Mask, threshold float64) models.RadialProfile {
	sum := make([]float64, len(a.radii))
	cnt := make([]int64, len(a.radii))

	if m != nil {
		bits := m.Bits()
		for i, v := range img {
			if bits[i] == 0 || !(v >= threshold) {
				continue
			}
			idx := a.binIdx[i]
			sum[idx] += v
			cnt[idx]++
		}
	} else {
		for i, v := range img {
			if !(v >= threshold) {
				continue
			}
			idx := a.binIdx[i]
			sum[idx] += v
			cnt[idx]++
		}
	}

	for k := range sum {
		if cnt[k] > 0 {
			sum[k] /= float64(cnt[k])
		} else {
			sum[k] = 0
		}
	}

	return models.RadialProfile{R: a.Radii(), I: sum}
}
