package profile

import (
	"math"

	"go-hep.org/x/hep/hbook"
)

// Saxs2d is a calibrated 2D scattering pattern held in q-space: a
// float intensity grid with NaN marking missing pixels, a fixed
// px-to-q scale and a beam center.
//
// Its RadialAverage is the region-based counterpart to RadialAverager:
// it bins through a histogram over a caller-chosen q window and
// reports NaN (not 0) for empty bins.
type Saxs2d struct {
	i      []float64
	width  int
	height int

	px2q    float64
	centerX float64
	centerY float64
}

// NewSaxs2d wraps an intensity grid with its q scale (nm^-1 per px)
// and beam center.
func NewSaxs2d(i []float64, width, height int, px2q, centerX, centerY float64) *Saxs2d {
	return &Saxs2d{
		i:       i,
		width:   width,
		height:  height,
		px2q:    px2q,
		centerX: centerX,
		centerY: centerY,
	}
}

// I returns the intensity grid.
func (s *Saxs2d) I() []float64 { return s.i }

// Px2Q returns the q scale in nm^-1 per pixel.
func (s *Saxs2d) Px2Q() float64 { return s.px2q }

// Center returns the beam center (x, y) in pixels.
func (s *Saxs2d) Center() (float64, float64) { return s.centerX, s.centerY }

// RadialAverage bins pixels by radius over [qMin, qMax] with unit-pixel
// bins and returns the per-bin mean intensity and the q bin centers.
// NaN pixels are skipped; bins with no entries yield NaN.
func (s *Saxs2d) RadialAverage(qMin, qMax float64) ([]float64, []float64) {
	rMax := 0.0
	for y := 0; y < s.height; y++ {
		dy := float64(y) - s.centerY
		for _, x := range []int{0, s.width - 1} {
			dx := float64(x) - s.centerX
			if r := math.Sqrt(dx*dx + dy*dy); r > rMax {
				rMax = r
			}
		}
	}

	rLo := int(math.Floor(qMin / s.px2q))
	rHi := int(math.Ceil(math.Min(qMax/s.px2q, rMax)))
	nBins := rHi - rLo
	if nBins <= 0 {
		return nil, nil
	}

	h := hbook.NewH1D(nBins, float64(rLo), float64(rHi))
	for y := 0; y < s.height; y++ {
		dy := float64(y) - s.centerY
		row := s.i[y*s.width : (y+1)*s.width]
		for x, v := range row {
			if math.IsNaN(v) {
				continue
			}
			dx := float64(x) - s.centerX
			h.Fill(math.Sqrt(dx*dx+dy*dy), v)
		}
	}

	intens := make([]float64, nBins)
	q := make([]float64, nBins)
	for k, bin := range h.Binning.Bins {
		if bin.Entries() > 0 {
			intens[k] = bin.SumW() / float64(bin.Entries())
		} else {
			intens[k] = math.NaN()
		}
		q[k] = (float64(rLo) + float64(k) + 0.5) * s.px2q
	}
	return intens, q
}
