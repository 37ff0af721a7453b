package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-hep.org/x/hep/hbook"

	"github.com/banshee-data/vertex.report/internal/tracking/vertexing"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestMassPlot(t *testing.T) {
	h := hbook.NewH2D(50, 0, 5, 50, 0, 5)
	h.Fill(0.8, 0.4976, 1)
	h.Fill(0.8, 0.4976, 1)
	h.Fill(1.6, 0.4976, 1)
	h.Fill(2.4, 1.1157, 1)

	path := filepath.Join(t.TempDir(), "mass.png")
	if err := MassPlot(h, "mass vs pT", path); err != nil {
		t.Fatalf("MassPlot: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if len(raw) < len(pngMagic) || !bytes.Equal(raw[:len(pngMagic)], pngMagic) {
		t.Errorf("output is not a PNG (got %d bytes)", len(raw))
	}
}

func TestMassPlotNilHist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mass.png")
	if err := MassPlot(nil, "mass vs pT", path); err == nil {
		t.Fatal("expected error for nil histogram")
	}
}

func TestMassPlotEmptyHist(t *testing.T) {
	h := hbook.NewH2D(50, 0, 5, 50, 0, 5)
	path := filepath.Join(t.TempDir(), "mass.png")
	if err := MassPlot(h, "mass vs pT", path); err != nil {
		t.Fatalf("MassPlot on empty histogram: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if info.Size() == 0 {
		t.Error("empty histogram produced an empty file")
	}
}

func TestCandidatesChart(t *testing.T) {
	cands := []vertexing.DecayCandidate{
		{DecayLength: 1.2, InvariantMass: 0.4976, InvariantPt: 0.8},
		{DecayLength: 3.4, InvariantMass: 1.1157, InvariantPt: 2.1},
	}

	path := filepath.Join(t.TempDir(), "candidates.html")
	if err := CandidatesChart(cands, "decay candidates", path); err != nil {
		t.Fatalf("CandidatesChart: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	html := string(raw)
	for _, want := range []string{"echarts", "candidates", "decay length (cm)"} {
		if !strings.Contains(html, want) {
			t.Errorf("chart HTML missing %q", want)
		}
	}
}

func TestCandidatesChartEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.html")
	err := CandidatesChart(nil, "decay candidates", path)
	if err == nil {
		t.Fatal("expected error for empty candidate list")
	}
	if !strings.Contains(err.Error(), "no candidates") {
		t.Errorf("unexpected error: %v", err)
	}
}
