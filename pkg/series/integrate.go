// Package series turns an ordered set of detector frames into one
// aggregated profile table plus a parameter record. Every frame shares
// the geometry: one beam center, one optional mask, one calibration,
// one flip, applied identically before radial averaging.
package series

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"saxsreduce/internal/imgio"
	"saxsreduce/internal/models"
	"saxsreduce/pkg/calib"
	"saxsreduce/pkg/mask"
	"saxsreduce/pkg/profile"
)

// frameExt is the only accepted frame extension.
const frameExt = ".tif"

// Options configures one series integration. Zero-valued optional
// fields fall back to defaults during validation; the whole struct is
// validated before any frame is touched.
type Options struct {
	// CenterX, CenterY locate the beam center in pixels. Fractional
	// coordinates are valid.
	CenterX float64
	CenterY float64

	// Calibration collects the radius-to-q inputs; see calib.Resolve.
	Calibration calib.Parameters

	// Mask excludes pixels from averaging. An in-memory mask takes
	// priority over MaskPath; with neither, every pixel is eligible.
	Mask     *mask.Mask
	MaskPath string

	// Flip is the mirror applied to every frame before averaging.
	Flip models.FlipMode

	// Threshold excludes pixel values below it; 0 means the default.
	Threshold float64

	// Dst is the output table path. Empty derives it from the source;
	// an explicit file list requires it.
	Dst string

	// Overwrite permits replacing an existing destination.
	Overwrite bool

	// Verbose enables progress reporting. It never changes the result.
	Verbose bool

	// Workers bounds the parallel frame reduction; 0 means NumCPU.
	Workers int

	// Logger receives warnings and progress events.
	Logger zerolog.Logger
}

// Integrate reduces a source to a profile table. src is either one
// .tif frame or a directory of them (listing order). It returns the
// table path; the parameter record is a sibling with suffix
// _params.json.
func Integrate(src string, opts Options) (string, error) {
	files, dst, err := resolveSource(src, opts.Dst)
	if err != nil {
		return "", err
	}
	return integrate(files, dst, opts)
}

// IntegrateList reduces an explicit ordered list of frame paths.
// Options.Dst is required.
func IntegrateList(files []string, opts Options) (string, error) {
	for _, f := range files {
		if !strings.HasSuffix(f, frameExt) {
			return "", fmt.Errorf("%w: unsupported file format %s, only %s is supported",
				ErrInvalidInput, f, frameExt)
		}
	}
	if opts.Dst == "" {
		return "", ErrMissingDestination
	}
	if len(files) == 0 {
		return "", ErrNoInputFiles
	}
	return integrate(files, opts.Dst, opts)
}

// FileIntegrate is the single-frame case of the same pipeline with
// progress reporting forced off.
func FileIntegrate(file string, opts Options) (string, error) {
	opts.Verbose = false
	return Integrate(file, opts)
}

// ParseFlip resolves a flip token to its mode. Membership of "v" and
// "h" in the token selects the mirrors; "" and "none" mean no flip.
func ParseFlip(token string) (models.FlipMode, error) {
	if token == "" || token == "none" {
		return models.FlipNone, nil
	}
	for _, c := range token {
		if c != 'v' && c != 'h' {
			return models.FlipNone, fmt.Errorf("%w: flip token %q", ErrInvalidInput, token)
		}
	}
	v := strings.ContainsRune(token, 'v')
	h := strings.ContainsRune(token, 'h')
	switch {
	case v && h:
		return models.FlipBoth, nil
	case v:
		return models.FlipVertical, nil
	default:
		return models.FlipHorizontal, nil
	}
}

// resolveSource expands src into the ordered frame list and the
// destination table path.
func resolveSource(src, dst string) ([]string, string, error) {
	if strings.HasSuffix(src, frameExt) {
		if _, err := os.Stat(src); err != nil {
			return nil, "", err
		}
		if dst == "" {
			dst = strings.TrimSuffix(src, frameExt) + ".csv"
		}
		return []string{src}, dst, nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return nil, "", err
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("%w: %s is neither a %s frame nor a directory",
			ErrInvalidInput, src, frameExt)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, "", err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), frameExt) {
			files = append(files, filepath.Join(src, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, "", fmt.Errorf("%w: no %s files in %s", ErrNoInputFiles, frameExt, src)
	}
	if dst == "" {
		dst = strings.TrimSuffix(src, string(os.PathSeparator)) + ".csv"
	}
	return files, dst, nil
}

// loadFrame reads one detector frame as raw counts.
func loadFrame(path string) (*models.Frame, error) {
	data, w, h, err := imgio.ReadGray(path)
	if err != nil {
		if errors.Is(err, imgio.ErrNotGray) {
			return nil, fmt.Errorf("%w: %s must be single-channel", ErrInvalidInput, path)
		}
		return nil, err
	}
	return &models.Frame{Data: data, Width: w, Height: h, Path: path}, nil
}

// integrate runs the validated batch: fixed geometry from the first
// frame, per-frame reduction across a bounded worker pool, then one
// in-memory assembly written as table + parameter record.
func integrate(files []string, dst string, opts Options) (string, error) {
	if !opts.Overwrite {
		if _, err := os.Stat(dst); err == nil {
			return "", fmt.Errorf("%w: %s", ErrOutputExists, dst)
		}
	}

	cal, err := calib.Resolve(opts.Calibration)
	if err != nil {
		return "", err
	}
	if cal.Mode == calib.ModeNone {
		opts.Logger.Warn().Msg("no valid calibration parameter given, output stays in r[mm]")
	}

	threshold := opts.Threshold
	if threshold == 0 {
		threshold = profile.DefaultThreshold
	}

	first, err := loadFrame(files[0])
	if err != nil {
		return "", err
	}
	height, width := first.Height, first.Width

	msk := opts.Mask
	if msk == nil && opts.MaskPath != "" {
		msk, err = mask.Read(opts.MaskPath)
		if err != nil {
			return "", err
		}
	}
	if msk != nil {
		mh, mw := msk.Shape()
		if mh != height || mw != width {
			return "", fmt.Errorf("%w: mask is %dx%d, frames are %dx%d",
				ErrShapeMismatch, mh, mw, height, width)
		}
	}

	averager := profile.NewRadialAverager(width, height, opts.CenterX, opts.CenterY)

	var bar *progressbar.ProgressBar
	if opts.Verbose {
		bar = progressbar.Default(int64(len(files)), "integrating")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	intensities := make([][]float64, len(files))
	frameErrs := make([]error, len(files))

	var wg sync.WaitGroup
	framesPerWorker := (len(files) + workers - 1) / workers
	for c := 0; c < workers; c++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			start := workerID * framesPerWorker
			end := min(start+framesPerWorker, len(files))
			for idx := start; idx < end; idx++ {
				intensities[idx], frameErrs[idx] = reduceFrame(
					files[idx], height, width, msk, averager, opts.Flip, threshold)
				if bar != nil {
					bar.Add(1)
				}
			}
		}(c)
	}
	wg.Wait()

	if bar != nil {
		bar.Close()
	}
	for _, err := range frameErrs {
		if err != nil {
			return "", err
		}
	}

	q := cal.Convert(averager.Radii())
	headers := make([]string, 0, len(files)+1)
	headers = append(headers, cal.Header())
	for _, f := range files {
		headers = append(headers, filepath.Base(f))
	}

	record, err := encodeParams(opts, cal)
	if err != nil {
		return "", err
	}
	if err := writeTable(dst, headers, q, intensities); err != nil {
		return "", err
	}
	if err := os.WriteFile(paramPath(dst), record, 0644); err != nil {
		// keep the artifacts paired: a table without its record is
		// not a valid result
		os.Remove(dst)
		return "", err
	}

	opts.Logger.Info().
		Str("table", dst).
		Str("params", paramPath(dst)).
		Int("frames", len(files)).
		Str("calibration", cal.Mode.String()).
		Msg("series integrated")

	return dst, nil
}

// reduceFrame loads, validates, flips and radially averages one frame.
func reduceFrame(path string, height, width int, msk *mask.Mask,
	averager *profile.RadialAverager, flip models.FlipMode, threshold float64) ([]float64, error) {

	frame, err := loadFrame(path)
	if err != nil {
		return nil, err
	}
	if frame.Height != height || frame.Width != width {
		return nil, fmt.Errorf("%w: %s is %dx%d, series is %dx%d",
			ErrShapeMismatch, path, frame.Height, frame.Width, height, width)
	}

	if flip == models.FlipVertical || flip == models.FlipBoth {
		frame.FlipVertical()
	}
	if flip == models.FlipHorizontal || flip == models.FlipBoth {
		frame.FlipHorizontal()
	}

	p := averager.Average(frame.Data, msk, threshold)
	return p.I, nil
}

// paramPath derives the parameter-record path next to the table.
func paramPath(dst string) string {
	return strings.TrimSuffix(dst, ".csv") + "_params.json"
}
