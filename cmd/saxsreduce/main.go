package main

import (
	"flag"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog"

	"saxsreduce/pkg/calib"
	"saxsreduce/pkg/config"
	"saxsreduce/pkg/series"
)

func main() {
	// Parse command line arguments
	input := flag.String("input", "", "Frame source: a .tif file or a directory of .tif frames")
	output := flag.String("output", "", "Output table path (default: derived from the source)")
	configPath := flag.String("config", "saxsreduce.yaml", "Job configuration file (YAML)")
	centerX := flag.Float64("center-x", math.NaN(), "Beam center x in pixels")
	centerY := flag.Float64("center-y", math.NaN(), "Beam center y in pixels")
	detector := flag.String("detector", "", "Detector name (PILATUS or EIGER)")
	pxSize := flag.Float64("px-size", math.NaN(), "Pixel size in mm")
	cameraLength := flag.Float64("camera-length", math.NaN(), "Camera length in mm")
	waveLength := flag.Float64("wave-length", math.NaN(), "X-ray wavelength in nm")
	slope := flag.Float64("slope", math.NaN(), "Linear calibration slope in nm^-1/px")
	intercept := flag.Float64("intercept", math.NaN(), "Linear calibration intercept in nm^-1")
	flipToken := flag.String("flip", "", "Flip applied to every frame: none, v, h or vh")
	maskPath := flag.String("mask", "", "Mask image file (nonzero = valid pixel)")
	threshold := flag.Float64("threshold", 0, "Intensity threshold; pixels below it are ignored")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: all CPUs)")
	overwrite := flag.Bool("overwrite", false, "Overwrite an existing destination")
	quiet := flag.Bool("quiet", false, "Disable the progress bar")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("loading configuration failed")
	}

	// Flags set on the command line override the config file.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	pick := func(name string, flagVal, cfgVal float64) float64 {
		if set[name] {
			return flagVal
		}
		return cfgVal
	}

	cfg.Center.X = pick("center-x", *centerX, cfg.Center.X)
	cfg.Center.Y = pick("center-y", *centerY, cfg.Center.Y)
	cfg.Calibration.PxSize = pick("px-size", *pxSize, cfg.Calibration.PxSize)
	cfg.Calibration.CameraLength = pick("camera-length", *cameraLength, cfg.Calibration.CameraLength)
	cfg.Calibration.WaveLength = pick("wave-length", *waveLength, cfg.Calibration.WaveLength)
	cfg.Calibration.Slope = pick("slope", *slope, cfg.Calibration.Slope)
	cfg.Calibration.Intercept = pick("intercept", *intercept, cfg.Calibration.Intercept)
	cfg.Threshold = pick("threshold", *threshold, cfg.Threshold)
	if set["detector"] {
		cfg.Calibration.Detector = *detector
	}
	if set["flip"] {
		cfg.Flip = *flipToken
	}
	if set["mask"] {
		cfg.Mask = *maskPath
	}
	if set["workers"] {
		cfg.Processing.Workers = *workers
	}
	if set["overwrite"] {
		cfg.Output.Overwrite = *overwrite
	}
	if set["quiet"] {
		cfg.Output.Verbose = !*quiet
	}

	if math.IsNaN(cfg.Center.X) || math.IsNaN(cfg.Center.Y) {
		logger.Fatal().Msg("beam center must be set (-center-x, -center-y or the config file)")
	}

	flip, err := series.ParseFlip(cfg.Flip)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid flip token")
	}

	opts := series.Options{
		CenterX: cfg.Center.X,
		CenterY: cfg.Center.Y,
		Calibration: calib.Parameters{
			PxSize:       cfg.Calibration.PxSize,
			Detector:     cfg.Calibration.Detector,
			CameraLength: cfg.Calibration.CameraLength,
			WaveLength:   cfg.Calibration.WaveLength,
			Slope:        cfg.Calibration.Slope,
			Intercept:    cfg.Calibration.Intercept,
		},
		MaskPath:  cfg.Mask,
		Flip:      flip,
		Threshold: cfg.Threshold,
		Dst:       *output,
		Overwrite: cfg.Output.Overwrite,
		Verbose:   cfg.Output.Verbose,
		Workers:   cfg.Processing.Workers,
		Logger:    logger,
	}

	start := time.Now()
	dst, err := series.Integrate(*input, opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("integration failed")
	}

	logger.Info().
		Str("output", dst).
		Dur("elapsed", time.Since(start)).
		Msg("done")
}
