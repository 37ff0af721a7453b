package propagation

import (
	"fmt"
	"math"

	"github.com/banshee-data/vertex.report/internal/geom"
	"github.com/banshee-data/vertex.report/internal/tracking"
)

// LinePropagator propagates tracks as straight lines: the field-off
// case and the model for laser calibration tracks. Tests also use it
// to substitute for the helix where curvature is irrelevant.
type LinePropagator struct {
	EtaWindow float64
}

// NewLinePropagator returns a straight-line propagator with the
// default acceptance window.
func NewLinePropagator() *LinePropagator {
	return &LinePropagator{EtaWindow: DefaultEtaWindow}
}

var _ tracking.Propagator = (*LinePropagator)(nil)

// ToCylinder implements tracking.Propagator.
func (l *LinePropagator) ToCylinder(tr *tracking.Track, radius float64) (tracking.State, error) {
	return lineToCylinder(tr.ID, tr.Position, tr.Momentum, radius, CylinderHalfLength(radius, l.EtaWindow))
}

// ToPoint implements tracking.Propagator.
func (l *LinePropagator) ToPoint(tr *tracking.Track, point geom.Vec3) (tracking.State, error) {
	return lineToPoint(tr.ID, tr.Position, tr.Momentum, point)
}

// lineToCylinder advances a straight trajectory to its first forward
// crossing of the cylinder.
func lineToCylinder(trackID int, pos, mom geom.Vec3, radius, halfZ float64) (tracking.State, error) {
	dir := mom.Unit()
	t0, t1, ok := geom.IntersectLineCircle(pos, dir, radius)
	if !ok {
		return tracking.State{}, fmt.Errorf("track %d: line does not reach r=%g: %w", trackID, radius, tracking.ErrUnreachableSurface)
	}
	t := t0
	if t < 0 {
		t = t1
	}
	if t < 0 {
		// Both crossings lie behind the track.
		return tracking.State{}, fmt.Errorf("track %d: cylinder r=%g is behind the trajectory: %w", trackID, radius, tracking.ErrUnreachableSurface)
	}
	p := pos.Add(dir.Scale(t))
	if math.Abs(p.Z) > halfZ {
		return tracking.State{}, fmt.Errorf("track %d: crossing at z=%g outside half-length %g: %w", trackID, p.Z, halfZ, tracking.ErrUnreachableSurface)
	}
	return tracking.State{Position: p, Momentum: mom}, nil
}

// lineToPoint advances a straight trajectory to the foot of the
// perpendicular from the point.
func lineToPoint(trackID int, pos, mom geom.Vec3, point geom.Vec3) (tracking.State, error) {
	if mom.Norm() == 0 {
		return tracking.State{}, fmt.Errorf("track %d: zero momentum: %w", trackID, tracking.ErrUnreachableSurface)
	}
	_, t := geom.DistancePointLine(point, pos, mom)
	return tracking.State{Position: pos.Add(mom.Scale(t)), Momentum: mom}, nil
}
