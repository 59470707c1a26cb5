// Package calib resolves how pixel radii are converted into physical
// units. Three modes exist: geometric small-angle conversion from the
// camera geometry, an empirical linear regression against standards,
// and no calibration at all, which leaves the profile in millimetres
// of detector distance.
package calib

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrMissingCalibration reports that neither a detector name nor an
	// explicit pixel size was supplied.
	ErrMissingCalibration = errors.New("either pixel size or detector must be set")

	// ErrUnknownDetector reports a detector name with no known pixel size.
	ErrUnknownDetector = errors.New("unrecognized detector")
)

// detectorPxSizes maps detector identifiers to their pixel pitch in mm.
var detectorPxSizes = map[string]float64{
	"PILATUS": 0.172,
	"EIGER":   0.075,
}

// Mode identifies the resolved radius-to-q conversion.
type Mode int

const (
	// ModeNone scales radii by the pixel size only; output stays in mm.
	ModeNone Mode = iota

	// ModeGeometry converts through the small-angle scattering relation
	// from camera length, wavelength and pixel size.
	ModeGeometry

	// ModeLinearRegression converts through q = intercept + slope*r.
	ModeLinearRegression
)

func (m Mode) String() string {
	switch m {
	case ModeGeometry:
		return "geometry"
	case ModeLinearRegression:
		return "linear_regression"
	default:
		return "none"
	}
}

// Parameters collects every calibration input. Unset floats are NaN,
// an unset detector is the empty string. All fields are recorded
// verbatim in the output parameter file whether used or not.
type Parameters struct {
	// PxSize is the pixel pitch in mm; overridden by a recognized
	// Detector name.
	PxSize float64

	// Detector is a known detector identifier (PILATUS, EIGER),
	// case-insensitive.
	Detector string

	// CameraLength is the sample-detector distance in mm.
	CameraLength float64

	// WaveLength is the X-ray wavelength in nm.
	WaveLength float64

	// Slope and Intercept define the linear regression q = a + b*r,
	// in nm^-1/px and nm^-1.
	Slope     float64
	Intercept float64
}

// DefaultParameters returns Parameters with every numeric field unset.
func DefaultParameters() Parameters {
	nan := math.NaN()
	return Parameters{
		PxSize:       nan,
		CameraLength: nan,
		WaveLength:   nan,
		Slope:        nan,
		Intercept:    nan,
	}
}

// Calibration is a resolved conversion, ready to map a radius grid.
type Calibration struct {
	// Mode is the conversion actually in effect.
	Mode Mode

	// PxSize is the resolved pixel pitch in mm.
	PxSize float64

	params Parameters
}

// Resolve validates params and picks exactly one mode: geometry when
// camera length and wavelength are both positive, linear regression
// when slope and intercept are both finite, otherwise none. Mode none
// is not an error; callers are expected to warn about it.
func Resolve(params Parameters) (*Calibration, error) {
	pxSize := params.PxSize
	name := strings.ToUpper(params.Detector)
	if known, ok := detectorPxSizes[name]; ok {
		pxSize = known
	} else if params.Detector == "" {
		if math.IsNaN(pxSize) || pxSize <= 0 {
			return nil, ErrMissingCalibration
		}
	} else {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDetector, params.Detector)
	}

	mode := ModeNone
	if params.CameraLength > 0 && params.WaveLength > 0 {
		mode = ModeGeometry
	} else if !math.IsNaN(params.Slope) && !math.IsNaN(params.Intercept) {
		mode = ModeLinearRegression
	}

	resolved := params
	resolved.PxSize = pxSize
	return &Calibration{Mode: mode, PxSize: pxSize, params: resolved}, nil
}

// Params returns the inputs as resolved, detector pixel size applied.
func (c *Calibration) Params() Parameters {
	return c.params
}

// Header returns the first-column label for the output table.
func (c *Calibration) Header() string {
	if c.Mode == ModeNone {
		return "r[mm]"
	}
	return "q[nm^-1]"
}

// Convert maps a pixel-radius grid to the output unit of the resolved
// mode: q in nm^-1 for geometry and linear regression, r in mm for
// mode none.
func (c *Calibration) Convert(r []float64) []float64 {
	out := make([]float64, len(r))
	switch c.Mode {
	case ModeGeometry:
		for i, v := range r {
			out[i] = RadiusToQ(v, c.params.CameraLength, c.params.WaveLength, c.PxSize)
		}
	case ModeLinearRegression:
		for i, v := range r {
			out[i] = c.params.Intercept + c.params.Slope*v
		}
	default:
		for i, v := range r {
			out[i] = v * c.PxSize
		}
	}
	return out
}

// RadiusToQ converts one pixel radius to scattering-vector magnitude
// through the small-angle relation: the scattering angle 2θ satisfies
// tan(2θ) = r·px/L and q = (4π/λ)·sin(θ). Lengths in mm, wavelength
// in nm, q in nm^-1.
func RadiusToQ(r, cameraLength, waveLength, pxSize float64) float64 {
	twoTheta := math.Atan2(r*pxSize, cameraLength)
	return 4 * math.Pi / waveLength * math.Sin(twoTheta/2)
}
