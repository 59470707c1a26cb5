// Package mask implements the per-pixel validity stencil applied during
// radial averaging. A mask marks detector defects, beam-stop shadows and
// saturated regions so they never contribute to an averaged profile.
package mask

import (
	"errors"
	"fmt"

	"saxsreduce/internal/imgio"
)

var (
	// ErrInvalidShape reports a mask dimension that is not positive.
	ErrInvalidShape = errors.New("invalid mask shape")

	// ErrInvalidFormat reports a mask file that is not a single-channel
	// image.
	ErrInvalidFormat = errors.New("mask file must be a single-channel image")
)

// Mask is a binary stencil over detector pixels: 1 contributes to
// averaging, 0 is excluded. It is an owned, mutable value; integration
// treats it as read-only.
type Mask struct {
	bits   []uint8
	width  int
	height int
}

// New returns an all-valid mask of the given dimensions.
func New(height, width int) (*Mask, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidShape, height, width)
	}
	bits := make([]uint8, height*width)
	for i := range bits {
		bits[i] = 1
	}
	return &Mask{bits: bits, width: width, height: height}, nil
}

// FromOverlay loads a mask from a single-channel image file. Any pixel
// value above zero counts as valid.
func FromOverlay(path string) (*Mask, error) {
	data, w, h, err := imgio.ReadGray(path)
	if err != nil {
		if errors.Is(err, imgio.ErrNotGray) {
			return nil, fmt.Errorf("%s: %w", path, ErrInvalidFormat)
		}
		return nil, err
	}
	bits := make([]uint8, len(data))
	for i, v := range data {
		if v > 0 {
			bits[i] = 1
		}
	}
	return &Mask{bits: bits, width: w, height: h}, nil
}

// Read is an alias for FromOverlay, matching the save/read round-trip.
func Read(path string) (*Mask, error) {
	return FromOverlay(path)
}

// Shape returns (height, width).
func (m *Mask) Shape() (int, int) {
	return m.height, m.width
}

// Bits exposes the raw stencil, row-major, 0 or 1 per pixel.
func (m *Mask) Bits() []uint8 {
	return m.bits
}

// Valid reports whether pixel (x, y) contributes to averaging.
func (m *Mask) Valid(x, y int) bool {
	return m.bits[y*m.width+x] != 0
}

// Add marks invalid every pixel where the overlay is nonzero. The
// overlay must have the same length as the mask grid.
func (m *Mask) Add(overlay []float64) error {
	if len(overlay) != len(m.bits) {
		return fmt.Errorf("%w: overlay has %d pixels, mask has %d",
			ErrInvalidShape, len(overlay), len(m.bits))
	}
	for i, v := range overlay {
		if v > 0 {
			m.bits[i] = 0
		}
	}
	return nil
}

// AddRectangle excludes the axis-aligned region (x, y, w, h).
// Out-of-range rectangles are clipped to the mask bounds.
func (m *Mask) AddRectangle(x, y, w, h int) {
	m.setRectangle(x, y, w, h, 0)
}

// RemoveRectangle re-validates the axis-aligned region (x, y, w, h).
func (m *Mask) RemoveRectangle(x, y, w, h int) {
	m.setRectangle(x, y, w, h, 1)
}

func (m *Mask) setRectangle(x, y, w, h int, v uint8) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, m.width), min(y+h, m.height)
	for yy := y0; yy < y1; yy++ {
		row := m.bits[yy*m.width : (yy+1)*m.width]
		for xx := x0; xx < x1; xx++ {
			row[xx] = v
		}
	}
}

// Apply zeroes the excluded pixels of arr and returns the result as a
// new slice. This is the upstream zeroing entry point; the averaging
// kernel's own mask argument is the other, and both compose.
func (m *Mask) Apply(arr []float64) ([]float64, error) {
	if len(arr) != len(m.bits) {
		return nil, fmt.Errorf("%w: array has %d pixels, mask has %d",
			ErrInvalidShape, len(arr), len(m.bits))
	}
	out := make([]float64, len(arr))
	for i, v := range arr {
		out[i] = v * float64(m.bits[i])
	}
	return out, nil
}

// Save writes the stencil as a single-channel image, valid pixels at
// full scale so the file is inspectable. Read inverts the encoding.
func (m *Mask) Save(path string) error {
	pix := make([]uint8, len(m.bits))
	for i, b := range m.bits {
		if b != 0 {
			pix[i] = 255
		}
	}
	return imgio.WriteGray8(path, pix, m.width, m.height)
}
