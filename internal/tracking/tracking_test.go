package tracking

import (
	"math"
	"sort"
	"testing"

	"github.com/banshee-data/vertex.report/internal/geom"
)

func TestClusterKeyPacking(t *testing.T) {
	cases := []struct {
		det   Detector
		layer uint8
		index uint64
	}{
		{DetVertexPixels, 0, 0},
		{DetSiliconStrips, 4, 12345},
		{DetGasOuter, 54, 0xFFFFFFFFFFFF}, // max index
	}
	for _, c := range cases {
		k := NewClusterKey(c.det, c.layer, c.index)
		if k.Detector() != c.det {
			t.Errorf("key %v: detector = %v, want %v", k, k.Detector(), c.det)
		}
		if k.Layer() != c.layer {
			t.Errorf("key %v: layer = %d, want %d", k, k.Layer(), c.layer)
		}
		if k.Index() != c.index {
			t.Errorf("key %v: index = %d, want %d", k, k.Index(), c.index)
		}
	}
}

func TestClusterKeySortsDetectorFirst(t *testing.T) {
	// A pixel hit on a high layer must still sort before any outer hit.
	pixel := NewClusterKey(DetVertexPixels, 200, 0xFFFFFFFFFFFF)
	outer := NewClusterKey(DetGasOuter, 0, 0)
	if pixel >= outer {
		t.Errorf("expected pixel key %d < outer key %d", pixel, outer)
	}
}

func TestTrackDerivedQuantities(t *testing.T) {
	tr := &Track{Momentum: geom.Vec3{X: 3, Y: 4, Z: 5}}

	if got := tr.Pt(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Pt = %v, want 5", got)
	}
	if got := tr.P(); math.Abs(got-math.Sqrt(50)) > 1e-12 {
		t.Errorf("P = %v, want sqrt(50)", got)
	}
	if got := tr.Eta(); math.Abs(got-math.Asinh(1)) > 1e-12 {
		t.Errorf("Eta = %v, want asinh(1)", got)
	}
}

func TestTrackAllKeysOrdersSiliconFirst(t *testing.T) {
	tr := &Track{
		SiliconKeys: []ClusterKey{
			NewClusterKey(DetVertexPixels, 0, 1),
			NewClusterKey(DetSiliconStrips, 3, 2),
		},
		OuterKeys: []ClusterKey{
			NewClusterKey(DetGasOuter, 7, 3),
			NewClusterKey(DetGasOuter, 8, 4),
		},
	}

	keys := tr.AllKeys()
	if len(keys) != 4 {
		t.Fatalf("expected 4 keys, got %d", len(keys))
	}
	if keys[0].Detector() != DetVertexPixels || keys[1].Detector() != DetSiliconStrips {
		t.Errorf("silicon keys not first: %v", keys)
	}
	if keys[2].Detector() != DetGasOuter || keys[3].Detector() != DetGasOuter {
		t.Errorf("outer keys not last: %v", keys)
	}
}

func TestEventTrackIDsSorted(t *testing.T) {
	ev := NewEvent(1, 1)
	for _, id := range []int{42, 3, 17, 8} {
		ev.AddTrack(&Track{ID: id})
	}

	ids := ev.TrackIDs()
	if !sort.IntsAreSorted(ids) {
		t.Errorf("expected sorted track IDs, got %v", ids)
	}
	if len(ids) != 4 {
		t.Errorf("expected 4 IDs, got %d", len(ids))
	}
}

func TestEventLookups(t *testing.T) {
	ev := NewEvent(1, 1)
	ev.AddVertex(&Vertex{ID: 5, NTracks: 2})
	key := NewClusterKey(DetGasOuter, 10, 99)
	ev.AddCluster(&Cluster{Key: key, ADC: 120})

	if v, ok := ev.FindVertex(5); !ok || v.NTracks != 2 {
		t.Errorf("FindVertex(5) = %v, %v", v, ok)
	}
	if _, ok := ev.FindVertex(6); ok {
		t.Error("expected FindVertex(6) to miss")
	}
	if c, ok := ev.FindCluster(key); !ok || c.ADC != 120 {
		t.Errorf("FindCluster(%v) = %v, %v", key, c, ok)
	}
	if _, ok := ev.FindCluster(NewClusterKey(DetGasOuter, 10, 100)); ok {
		t.Error("expected FindCluster miss for unknown key")
	}
}

func TestVertexIsBogus(t *testing.T) {
	if !(&Vertex{NTracks: 0}).IsBogus() {
		t.Error("vertex with zero tracks should be bogus")
	}
	if (&Vertex{NTracks: 1}).IsBogus() {
		t.Error("vertex with tracks should not be bogus")
	}
}
