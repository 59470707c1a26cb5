package calib

import (
	"errors"
	"math"
	"testing"
)

func params(mod func(*Parameters)) Parameters {
	p := DefaultParameters()
	mod(&p)
	return p
}

// TestResolveModes covers the three-way mode selection and its
// precedence: geometry wins over linear regression.
func TestResolveModes(t *testing.T) {
	cases := []struct {
		name string
		p    Parameters
		want Mode
	}{
		{
			name: "geometry",
			p: params(func(p *Parameters) {
				p.CameraLength = 1000
				p.WaveLength = 0.1
				p.PxSize = 0.172
			}),
			want: ModeGeometry,
		},
		{
			name: "linear regression",
			p: params(func(p *Parameters) {
				p.Slope = 0.01
				p.Intercept = 0.0
				p.PxSize = 0.172
			}),
			want: ModeLinearRegression,
		},
		{
			name: "none",
			p: params(func(p *Parameters) {
				p.PxSize = 0.172
			}),
			want: ModeNone,
		},
		{
			name: "geometry beats regression",
			p: params(func(p *Parameters) {
				p.CameraLength = 1000
				p.WaveLength = 0.1
				p.PxSize = 0.172
				p.Slope = 0.01
				p.Intercept = 0.0
			}),
			want: ModeGeometry,
		},
	}

	for _, tc := range cases {
		cal, err := Resolve(tc.p)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
			continue
		}
		if cal.Mode != tc.want {
			t.Errorf("%s: expected mode %v, got %v", tc.name, tc.want, cal.Mode)
		}
	}
}

// TestPixelSizeResolution covers detector override, missing pixel size
// and unknown detector names.
func TestPixelSizeResolution(t *testing.T) {
	// a recognized detector overrides any explicit pixel size
	cal, err := Resolve(params(func(p *Parameters) {
		p.Detector = "pilatus"
		p.PxSize = 999
	}))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cal.PxSize != 0.172 {
		t.Errorf("PILATUS pixel size: expected 0.172, got %g", cal.PxSize)
	}

	cal, err = Resolve(params(func(p *Parameters) { p.Detector = "EIGER" }))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cal.PxSize != 0.075 {
		t.Errorf("EIGER pixel size: expected 0.075, got %g", cal.PxSize)
	}

	if _, err := Resolve(DefaultParameters()); !errors.Is(err, ErrMissingCalibration) {
		t.Errorf("expected ErrMissingCalibration, got %v", err)
	}

	_, err = Resolve(params(func(p *Parameters) { p.Detector = "MYTHEN" }))
	if !errors.Is(err, ErrUnknownDetector) {
		t.Errorf("expected ErrUnknownDetector, got %v", err)
	}
}

// TestHeaders verifies the first-column label per mode.
func TestHeaders(t *testing.T) {
	cal, _ := Resolve(params(func(p *Parameters) { p.PxSize = 0.172 }))
	if cal.Header() != "r[mm]" {
		t.Errorf("mode none header: expected r[mm], got %s", cal.Header())
	}

	cal, _ = Resolve(params(func(p *Parameters) {
		p.PxSize = 0.172
		p.Slope = 0.01
		p.Intercept = 0
	}))
	if cal.Header() != "q[nm^-1]" {
		t.Errorf("calibrated header: expected q[nm^-1], got %s", cal.Header())
	}
}

// TestConvert checks each conversion against its defining relation.
func TestConvert(t *testing.T) {
	r := []float64{0.5, 10.5, 100.5}

	// none: r_mm = r_px * px_size
	cal, _ := Resolve(params(func(p *Parameters) { p.PxSize = 0.172 }))
	for i, v := range cal.Convert(r) {
		if want := r[i] * 0.172; math.Abs(v-want) > 1e-12 {
			t.Errorf("none[%d]: expected %g, got %g", i, want, v)
		}
	}

	// linear regression: q = intercept + slope*r
	cal, _ = Resolve(params(func(p *Parameters) {
		p.PxSize = 0.172
		p.Slope = 0.01
		p.Intercept = 0.5
	}))
	for i, v := range cal.Convert(r) {
		if want := 0.5 + 0.01*r[i]; math.Abs(v-want) > 1e-12 {
			t.Errorf("linear[%d]: expected %g, got %g", i, want, v)
		}
	}

	// geometry: q = (4π/λ) sin(atan(r·px/L)/2)
	cal, _ = Resolve(params(func(p *Parameters) {
		p.CameraLength = 1000
		p.WaveLength = 0.1
		p.PxSize = 0.172
	}))
	for i, v := range cal.Convert(r) {
		twoTheta := math.Atan2(r[i]*0.172, 1000)
		want := 4 * math.Pi / 0.1 * math.Sin(twoTheta/2)
		if math.Abs(v-want) > 1e-12 {
			t.Errorf("geometry[%d]: expected %g, got %g", i, want, v)
		}
	}
}

// TestGeometrySmallAngleLimit checks q ≈ 2π·r·px/(λ·L) at small angles.
func TestGeometrySmallAngleLimit(t *testing.T) {
	const (
		camera = 2000.0
		lambda = 0.154
		px     = 0.172
	)
	q := RadiusToQ(1, camera, lambda, px)
	approx := 2 * math.Pi * px / (lambda * camera)
	if math.Abs(q-approx)/approx > 1e-6 {
		t.Errorf("small-angle limit: expected ~%g, got %g", approx, q)
	}
}
