package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "series.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing table: %v", err)
	}
	return path
}

// TestLoadSeries reads a representative integration output back.
func TestLoadSeries(t *testing.T) {
	path := writeTable(t, `# q[nm^-1],a.tif,b.tif
0.5,10,20
1.5,11,21
2.5,12,22
`)

	s, err := LoadSeries(path)
	if err != nil {
		t.Fatalf("LoadSeries: %v", err)
	}
	if len(s.Q) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(s.Q))
	}
	if len(s.I) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(s.I))
	}
	if s.Names[0] != "a.tif" || s.Names[1] != "b.tif" {
		t.Errorf("unexpected column names %v", s.Names)
	}
	if s.Q[1] != 1.5 {
		t.Errorf("Q[1]: expected 1.5, got %g", s.Q[1])
	}
	if s.I[1][2] != 22 {
		t.Errorf("I[1][2]: expected 22, got %g", s.I[1][2])
	}

	p, err := s.Profile(1)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.I[0] != 20 {
		t.Errorf("profile 1 intensity[0]: expected 20, got %g", p.I[0])
	}

	if _, err := s.Profile(5); err == nil {
		t.Error("expected error for out-of-range profile index")
	}
}

// TestLoadColumn pairs the q column with one intensity column.
func TestLoadColumn(t *testing.T) {
	path := writeTable(t, `# r[mm],only.tif
0.086,7
0.258,9
`)

	p, err := LoadColumn(path, 1)
	if err != nil {
		t.Fatalf("LoadColumn: %v", err)
	}
	if p.Q[0] != 0.086 || p.I[1] != 9 {
		t.Errorf("unexpected profile %v %v", p.Q, p.I)
	}
}

// TestLoadSeriesEmpty rejects header-only tables.
func TestLoadSeriesEmpty(t *testing.T) {
	path := writeTable(t, "# q[nm^-1],a.tif\n")
	if _, err := LoadSeries(path); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("expected ErrEmptyTable, got %v", err)
	}
}

// TestLoadSeriesRagged rejects rows with inconsistent column counts.
func TestLoadSeriesRagged(t *testing.T) {
	path := writeTable(t, "# q[nm^-1],a.tif\n0.5,1\n1.5,2,3\n")
	if _, err := LoadSeries(path); err == nil {
		t.Error("expected error for ragged table")
	}
}
