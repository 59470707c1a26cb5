package profile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrEmptyTable reports a profile file with no data rows.
var ErrEmptyTable = errors.New("no data rows in profile table")

// Saxs1d is a single calibrated scattering profile.
type Saxs1d struct {
	// Q holds the scattering-vector magnitudes in nm^-1 (or detector
	// radii in mm for uncalibrated tables).
	Q []float64

	// I holds the intensity at each Q.
	I []float64
}

// Saxs1dSeries is a time- or angle-resolved stack of profiles sharing
// one q grid, as written by series integration.
type Saxs1dSeries struct {
	// Q is the shared first column.
	Q []float64

	// I holds one row per frame: I[k] is the k-th profile along Q.
	I [][]float64

	// Names are the intensity column headers, one per frame.
	Names []string
}

// LoadSeries reads back a table written by series integration:
// comment-prefixed header, comma-delimited rows, first column q or r,
// one intensity column per frame.
func LoadSeries(path string) (*Saxs1dSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	var q []float64
	var cols [][]float64

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			fields := strings.Split(strings.TrimSpace(strings.TrimPrefix(line, "#")), ",")
			if len(fields) > 1 {
				names = fields[1:]
			}
			continue
		}

		fields := strings.Split(line, ",")
		if cols == nil {
			if len(fields) < 2 {
				return nil, fmt.Errorf("%s: expected at least 2 columns, got %d", path, len(fields))
			}
			cols = make([][]float64, len(fields)-1)
		} else if len(fields) != len(cols)+1 {
			return nil, fmt.Errorf("%s: ragged row with %d columns", path, len(fields))
		}

		vals := make([]float64, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			vals[i] = v
		}
		q = append(q, vals[0])
		for i := range cols {
			cols[i] = append(cols[i], vals[i+1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(q) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyTable)
	}

	return &Saxs1dSeries{Q: q, I: cols, Names: names}, nil
}

// Profile extracts one frame's profile from the series.
func (s *Saxs1dSeries) Profile(k int) (*Saxs1d, error) {
	if k < 0 || k >= len(s.I) {
		return nil, fmt.Errorf("profile index %d out of range [0, %d)", k, len(s.I))
	}
	return &Saxs1d{Q: s.Q, I: s.I[k]}, nil
}

// LoadColumn reads a single profile from a multi-column table, pairing
// the first column with the given intensity column (1-based, matching
// the table layout).
func LoadColumn(path string, col int) (*Saxs1d, error) {
	series, err := LoadSeries(path)
	if err != nil {
		return nil, err
	}
	return series.Profile(col - 1)
}
