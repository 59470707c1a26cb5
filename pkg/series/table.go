package series

import (
	"bytes"
	"os"
	"strconv"
	"strings"
)

// writeTable assembles the whole profile table in memory and writes it
// in one shot, so a failed batch never leaves a partial file. Layout:
// one comment-prefixed header row, then one row per radius bin with
// the q/r value first and one intensity per frame, comma separated.
func writeTable(dst string, headers []string, q []float64, intensities [][]float64) error {
	var buf bytes.Buffer
	buf.WriteString("# ")
	buf.WriteString(strings.Join(headers, ","))
	buf.WriteByte('\n')

	for row := range q {
		buf.WriteString(formatValue(q[row]))
		for _, col := range intensities {
			buf.WriteByte(',')
			buf.WriteString(formatValue(col[row]))
		}
		buf.WriteByte('\n')
	}

	return os.WriteFile(dst, buf.Bytes(), 0644)
}

// formatValue prints the shortest representation that parses back to
// the same float, so written tables reload exactly.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
