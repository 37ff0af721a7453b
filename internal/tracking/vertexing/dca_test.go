package vertexing

import (
	"errors"
	"math"
	"testing"

	"github.com/banshee-data/vertex.report/internal/geom"
	"github.com/banshee-data/vertex.report/internal/tracking"
)

const dcaTol = 1e-12

func dcaEvent(vtx geom.Vec3) *tracking.Event {
	ev := tracking.NewEvent(0, 1)
	ev.AddVertex(&tracking.Vertex{ID: 3, Position: vtx, NTracks: 2})
	return ev
}

func TestComputeDCA_AxisAligned(t *testing.T) {
	// Momentum along +y keeps the rotation trivial: the transverse
	// component is the x offset, the longitudinal one the z offset.
	ev := dcaEvent(geom.Vec3{})
	tr := &tracking.Track{
		ID:       1,
		Position: geom.Vec3{X: 3, Y: 0, Z: 7},
		Momentum: geom.Vec3{Y: 1},
		VertexID: 3,
		Covariance: [9]float64{
			0.01, 0, 0,
			0, 0.04, 0,
			0, 0, 0.09,
		},
	}

	dca, err := ComputeDCA(tr, ev)
	if err != nil {
		t.Fatalf("ComputeDCA: %v", err)
	}
	if math.Abs(dca.XY-3) > dcaTol {
		t.Errorf("expected dcaXY 3, got %v", dca.XY)
	}
	if math.Abs(dca.Z-7) > dcaTol {
		t.Errorf("expected dcaZ 7, got %v", dca.Z)
	}
	if math.Abs(dca.SigmaXY-0.1) > dcaTol {
		t.Errorf("expected sigmaXY 0.1, got %v", dca.SigmaXY)
	}
	if math.Abs(dca.SigmaZ-0.3) > dcaTol {
		t.Errorf("expected sigmaZ 0.3, got %v", dca.SigmaZ)
	}
}

func TestComputeDCA_RotatedFrame(t *testing.T) {
	// Momentum along +x rotates the frame by a quarter turn: the y
	// offset becomes the transverse impact with positive sign, and the
	// covariance's yy entry becomes the transverse variance.
	ev := dcaEvent(geom.Vec3{})
	tr := &tracking.Track{
		ID:       1,
		Position: geom.Vec3{X: 0, Y: 5, Z: -2},
		Momentum: geom.Vec3{X: 1},
		VertexID: 3,
		Covariance: [9]float64{
			1, 2, 3,
			2, 5, 6,
			3, 6, 9,
		},
	}

	dca, err := ComputeDCA(tr, ev)
	if err != nil {
		t.Fatalf("ComputeDCA: %v", err)
	}
	if math.Abs(dca.XY-5) > dcaTol {
		t.Errorf("expected dcaXY 5, got %v", dca.XY)
	}
	if math.Abs(dca.Z-(-2)) > dcaTol {
		t.Errorf("expected dcaZ -2, got %v", dca.Z)
	}
	if math.Abs(dca.SigmaXY-math.Sqrt(5)) > dcaTol {
		t.Errorf("expected sigmaXY sqrt(5), got %v", dca.SigmaXY)
	}
	if math.Abs(dca.SigmaZ-3) > dcaTol {
		t.Errorf("expected sigmaZ 3, got %v", dca.SigmaZ)
	}
}

func TestComputeDCA_DiagonalMomentum(t *testing.T) {
	ev := dcaEvent(geom.Vec3{})
	mom := geom.Vec3{X: 1, Y: 1}

	// Offset along the momentum direction maps to sqrt(2) in this
	// frame; the perpendicular offset maps to zero.
	along := &tracking.Track{ID: 1, Position: geom.Vec3{X: 1, Y: 1}, Momentum: mom, VertexID: 3}
	perp := &tracking.Track{ID: 2, Position: geom.Vec3{X: 1, Y: -1}, Momentum: mom, VertexID: 3}

	dcaAlong, err := ComputeDCA(along, ev)
	if err != nil {
		t.Fatalf("ComputeDCA along: %v", err)
	}
	if math.Abs(dcaAlong.XY-math.Sqrt2) > dcaTol {
		t.Errorf("expected dcaXY sqrt(2), got %v", dcaAlong.XY)
	}

	dcaPerp, err := ComputeDCA(perp, ev)
	if err != nil {
		t.Fatalf("ComputeDCA perp: %v", err)
	}
	if math.Abs(dcaPerp.XY) > dcaTol {
		t.Errorf("expected dcaXY 0, got %v", dcaPerp.XY)
	}
}

func TestComputeDCA_VertexOffset(t *testing.T) {
	ev := dcaEvent(geom.Vec3{X: 1, Y: 1, Z: 1})
	tr := &tracking.Track{
		ID:       1,
		Position: geom.Vec3{X: 4, Y: 1, Z: 8},
		Momentum: geom.Vec3{Y: 2},
		VertexID: 3,
	}

	dca, err := ComputeDCA(tr, ev)
	if err != nil {
		t.Fatalf("ComputeDCA: %v", err)
	}
	if math.Abs(dca.XY-3) > dcaTol {
		t.Errorf("expected dcaXY 3, got %v", dca.XY)
	}
	if math.Abs(dca.Z-7) > dcaTol {
		t.Errorf("expected dcaZ 7, got %v", dca.Z)
	}
}

func TestComputeDCA_MissingVertex(t *testing.T) {
	ev := dcaEvent(geom.Vec3{})
	tr := &tracking.Track{ID: 1, Momentum: geom.Vec3{Y: 1}, VertexID: 99}

	_, err := ComputeDCA(tr, ev)
	if !errors.Is(err, ErrMissingVertex) {
		t.Errorf("expected ErrMissingVertex, got %v", err)
	}
}

func TestDCAInvalid(t *testing.T) {
	if (DCA{XY: 1, Z: 2}).Invalid() {
		t.Error("finite DCA reported invalid")
	}
	if !(DCA{XY: math.NaN(), Z: 2}).Invalid() {
		t.Error("NaN transverse component not reported invalid")
	}
	if !(DCA{XY: 1, Z: math.NaN()}).Invalid() {
		t.Error("NaN longitudinal component not reported invalid")
	}
}
