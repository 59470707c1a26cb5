// Package imgio reads and writes the single-channel raster files the
// pipeline exchanges: TIFF detector frames and TIFF/PNG mask stencils.
package imgio

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

// ErrNotGray reports a raster that is not single-channel grayscale.
var ErrNotGray = errors.New("not a single-channel image")

// ReadGray decodes path into a row-major float64 grid of raw sample
// values (8-bit images scale 0..255, 16-bit 0..65535). Multi-channel
// images are rejected.
func ReadGray(path string) ([]float64, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decoding %s: %w", path, err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]float64, w*h)

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				data[y*w+x] = float64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
	case *image.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				data[y*w+x] = float64(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
	default:
		return nil, 0, 0, fmt.Errorf("%s: %w", path, ErrNotGray)
	}

	return data, w, h, nil
}

// WriteGray8 encodes a row-major 8-bit grid to path, picking the
// encoder from the file extension (.png, else TIFF).
func WriteGray8(path string, pix []uint8, width, height int) error {
	img := image.NewGray(image.Rect(0, 0, width, height))
	copy(img.Pix, pix)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".png") {
		return png.Encode(f, img)
	}
	return tiff.Encode(f, img, nil)
}
