package series

import (
	"encoding/json"
	"math"

	"saxsreduce/pkg/calib"
)

// nullableFloat marshals NaN as null so unset calibration inputs stay
// representable in the JSON record.
type nullableFloat float64

func (f nullableFloat) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

func (f *nullableFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = nullableFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = nullableFloat(v)
	return nil
}

// paramRecord captures everything needed to reconstruct the
// calibration decision: beam center, resolved mode, every input
// parameter whether used or not, and the flip applied. Field names
// carry their units.
type paramRecord struct {
	CenterX         nullableFloat `json:"center_x[px]"`
	CenterY         nullableFloat `json:"center_y[px]"`
	CalibrationType string        `json:"calibration_type"`
	PxSize          nullableFloat `json:"px_size[mm]"`
	CameraLength    nullableFloat `json:"camera_length[mm]"`
	WaveLength      nullableFloat `json:"wave_length[AA]"`
	Slope           nullableFloat `json:"slope[nm^-1/px]"`
	Intercept       nullableFloat `json:"intercept[nm^-1]"`
	Flip            string        `json:"flip"`
}

// encodeParams serializes the parameter record for a resolved batch.
func encodeParams(opts Options, cal *calib.Calibration) ([]byte, error) {
	p := cal.Params()
	rec := paramRecord{
		CenterX:         nullableFloat(opts.CenterX),
		CenterY:         nullableFloat(opts.CenterY),
		CalibrationType: cal.Mode.String(),
		PxSize:          nullableFloat(p.PxSize),
		CameraLength:    nullableFloat(p.CameraLength),
		WaveLength:      nullableFloat(p.WaveLength),
		Slope:           nullableFloat(p.Slope),
		Intercept:       nullableFloat(p.Intercept),
		Flip:            opts.Flip.String(),
	}
	return json.MarshalIndent(rec, "", "  ")
}
