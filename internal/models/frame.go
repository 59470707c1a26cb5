package models

// Frame holds one detector exposure as a row-major float grid.
// Pixel values are raw detector counts; sentinel values below the
// instrument's count floor are left in place and filtered later by the
// averaging threshold.
type Frame struct {
	// Data is the pixel grid in row-major order, Height*Width long
	Data []float64

	// Width and Height are the frame dimensions in pixels
	Width  int
	Height int

	// Path is the file the frame was loaded from
	Path string
}

// At returns the intensity at pixel (x, y). No bounds check.
func (f *Frame) At(x, y int) float64 {
	return f.Data[y*f.Width+x]
}

// FlipVertical mirrors the frame top-to-bottom in place.
func (f *Frame) FlipVertical() {
	for y := 0; y < f.Height/2; y++ {
		top := f.Data[y*f.Width : (y+1)*f.Width]
		bot := f.Data[(f.Height-1-y)*f.Width : (f.Height-y)*f.Width]
		for x := range top {
			top[x], bot[x] = bot[x], top[x]
		}
	}
}

// FlipHorizontal mirrors the frame left-to-right in place.
func (f *Frame) FlipHorizontal() {
	for y := 0; y < f.Height; y++ {
		row := f.Data[y*f.Width : (y+1)*f.Width]
		for x := 0; x < f.Width/2; x++ {
			row[x], row[f.Width-1-x] = row[f.Width-1-x], row[x]
		}
	}
}

// RadialProfile is the 1D reduction of a single frame: mean intensity
// per integer-radius bin around the beam center.
type RadialProfile struct {
	// R holds the bin-center radii in pixels, spaced 1 px apart
	R []float64

	// I holds the mean intensity per bin; bins with no contributing
	// pixels carry 0
	I []float64
}

// FlipMode selects the mirror applied to every frame of a series
// before averaging. It never applies to the mask or the beam center.
type FlipMode int

const (
	FlipNone FlipMode = iota
	FlipVertical
	FlipHorizontal
	FlipBoth
)

// String returns the long-form name recorded in the parameter file.
func (m FlipMode) String() string {
	switch m {
	case FlipVertical:
		return "vertical"
	case FlipHorizontal:
		return "horizontal"
	case FlipBoth:
		return "vertical and horizontal"
	default:
		return "none"
	}
}
