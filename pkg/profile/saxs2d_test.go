package profile

import (
	"math"
	"testing"
)

// TestSaxs2dUniform checks that region averaging of a constant grid
// returns that constant wherever a bin has entries.
func TestSaxs2dUniform(t *testing.T) {
	const v = 5.0
	width, height := 8, 8
	grid := make([]float64, width*height)
	for i := range grid {
		grid[i] = v
	}

	s := NewSaxs2d(grid, width, height, 0.1, 3.5, 3.5)
	intens, q := s.RadialAverage(0, math.Inf(1))

	if len(intens) == 0 || len(intens) != len(q) {
		t.Fatalf("expected matching non-empty outputs, got %d and %d", len(intens), len(q))
	}
	for k := range intens {
		if math.IsNaN(intens[k]) {
			continue // empty bin
		}
		if math.Abs(intens[k]-v) > 1e-12 {
			t.Errorf("bin %d: expected %g, got %g", k, v, intens[k])
		}
	}
	for k := 1; k < len(q); k++ {
		if q[k] <= q[k-1] {
			t.Errorf("q not increasing at %d", k)
		}
	}
}

// TestSaxs2dEmptyBinsAreNaN checks the documented divergence from the
// pixel-plane kernel: region averaging marks empty bins NaN, not 0.
func TestSaxs2dEmptyBinsAreNaN(t *testing.T) {
	width, height := 8, 8
	grid := make([]float64, width*height)
	for i := range grid {
		grid[i] = math.NaN() // every pixel missing
	}

	s := NewSaxs2d(grid, width, height, 0.1, 3.5, 3.5)
	intens, _ := s.RadialAverage(0, math.Inf(1))

	if len(intens) == 0 {
		t.Fatal("expected bins even for an all-NaN grid")
	}
	for k, v := range intens {
		if !math.IsNaN(v) {
			t.Errorf("bin %d: expected NaN for empty bin, got %g", k, v)
		}
	}
}

// TestSaxs2dWindow checks that the q window restricts the bin range.
func TestSaxs2dWindow(t *testing.T) {
	width, height := 16, 16
	grid := make([]float64, width*height)
	for i := range grid {
		grid[i] = 1
	}

	px2q := 0.5
	s := NewSaxs2d(grid, width, height, px2q, 8, 8)

	intens, q := s.RadialAverage(1.0, 3.0)
	if len(intens) != 4 { // radii 2..6, 4 unit bins
		t.Fatalf("expected 4 bins in window, got %d", len(intens))
	}
	if q[0] != 2.5*px2q {
		t.Errorf("first q center: expected %g, got %g", 2.5*px2q, q[0])
	}
}
