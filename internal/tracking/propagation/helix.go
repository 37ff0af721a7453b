// Package propagation advances track trajectories to detector surfaces.
//
// HelixPropagator is the production implementation for a constant
// solenoid field along z: a charged track is a circle in the transverse
// plane and a line in z versus transverse arc length, so cylinder and
// perigee targets have closed-form crossings. LinePropagator serves
// field-off running and straight laser tracks. Both satisfy
// tracking.Propagator and never modify the input track.
package propagation

import (
	"fmt"
	"math"

	"github.com/banshee-data/vertex.report/internal/geom"
	"github.com/banshee-data/vertex.report/internal/tracking"
)

const (
	// curvatureConstant converts transverse momentum [GeV/c] and field
	// [T] into the transverse bend radius [cm]:
	// R = pT / (curvatureConstant * |q| * |Bz|).
	curvatureConstant = 0.000299792458

	// DefaultBz is the nominal solenoid field in tesla.
	DefaultBz = 1.4

	// DefaultEtaWindow is the pseudorapidity acceptance bounding target
	// cylinders: a cylinder of radius R extends to |z| = R/tan(theta)
	// at |eta| = DefaultEtaWindow.
	DefaultEtaWindow = 2.0
)

// CylinderHalfLength returns the half-length in z of a cylinder of the
// given radius spanning |eta| <= etaWindow. A non-positive window means
// an unbounded cylinder.
func CylinderHalfLength(radius, etaWindow float64) float64 {
	if etaWindow <= 0 {
		return math.Inf(1)
	}
	theta := 2 * math.Atan(math.Exp(-etaWindow))
	return radius / math.Tan(theta)
}

// HelixPropagator propagates tracks through a uniform field Bz along
// the beam axis.
type HelixPropagator struct {
	Bz        float64 // tesla
	EtaWindow float64 // acceptance window for cylinder targets
}

// NewHelixPropagator returns a propagator for the given field with the
// default acceptance window.
func NewHelixPropagator(bz float64) *HelixPropagator {
	return &HelixPropagator{Bz: bz, EtaWindow: DefaultEtaWindow}
}

var _ tracking.Propagator = (*HelixPropagator)(nil)

// helixGeometry describes the transverse circle of a track's motion:
// bend radius, centre, and rotation sense (+1 clockwise for q*Bz > 0,
// -1 counter-clockwise).
func (h *HelixPropagator) helixGeometry(tr *tracking.Track, pt float64) (rh float64, center geom.Vec2, srot float64) {
	srot = 1.0
	if float64(tr.Charge)*h.Bz < 0 {
		srot = -1.0
	}
	rh = pt / (curvatureConstant * math.Abs(float64(tr.Charge)) * math.Abs(h.Bz))

	// The centre sits one bend radius to the side of the momentum:
	// rotated -90 deg from pT-hat for clockwise motion, +90 deg for
	// counter-clockwise.
	ux := tr.Momentum.X / pt
	uy := tr.Momentum.Y / pt
	center = geom.Vec2{
		X: tr.Position.X + srot*rh*uy,
		Y: tr.Position.Y - srot*rh*ux,
	}
	return rh, center, srot
}

// ToCylinder implements tracking.Propagator. It returns the state at
// the first crossing of the cylinder along the direction of motion.
func (h *HelixPropagator) ToCylinder(tr *tracking.Track, radius float64) (tracking.State, error) {
	pt := tr.Pt()
	if pt == 0 {
		return tracking.State{}, fmt.Errorf("track %d: zero transverse momentum: %w", tr.ID, tracking.ErrUnreachableSurface)
	}
	halfZ := CylinderHalfLength(radius, h.EtaWindow)
	if tr.Charge == 0 || h.Bz == 0 {
		return lineToCylinder(tr.ID, tr.Position, tr.Momentum, radius, halfZ)
	}

	rh, center, srot := h.helixGeometry(tr, pt)
	crossings := geom.IntersectCircles(
		geom.Circle{R: rh, Center: center},
		geom.Circle{R: radius},
		0, // exact crossings only; a miss is a miss
	)
	if len(crossings) == 0 {
		return tracking.State{}, fmt.Errorf("track %d: helix does not reach r=%g: %w", tr.ID, radius, tracking.ErrUnreachableSurface)
	}

	// Pick the crossing with the smallest sweep angle in the motion
	// sense, measured from the current azimuth about the helix centre.
	phi0 := math.Atan2(tr.Position.Y-center.Y, tr.Position.X-center.X)
	bestSweep := math.Inf(1)
	var best geom.Vec2
	for _, p := range crossings {
		phi := math.Atan2(p.Y-center.Y, p.X-center.X)
		sweep := wrapTo2Pi(srot * (phi0 - phi))
		if sweep < bestSweep {
			bestSweep = sweep
			best = p
		}
	}

	arc := rh * bestSweep
	z := tr.Position.Z + arc*(tr.Momentum.Z/pt)
	if math.Abs(z) > halfZ {
		return tracking.State{}, fmt.Errorf("track %d: crossing at z=%g outside half-length %g: %w", tr.ID, z, halfZ, tracking.ErrUnreachableSurface)
	}

	return tracking.State{
		Position: geom.Vec3{X: best.X, Y: best.Y, Z: z},
		Momentum: rotateMomentum(tr.Momentum, -srot*bestSweep),
	}, nil
}

// ToPoint implements tracking.Propagator. It returns the state at the
// nearest passage (forward or backward) of the helix's transverse
// perigee about the point.
func (h *HelixPropagator) ToPoint(tr *tracking.Track, point geom.Vec3) (tracking.State, error) {
	pt := tr.Pt()
	if pt == 0 {
		return tracking.State{}, fmt.Errorf("track %d: zero transverse momentum: %w", tr.ID, tracking.ErrUnreachableSurface)
	}
	if tr.Charge == 0 || h.Bz == 0 {
		return lineToPoint(tr.ID, tr.Position, tr.Momentum, point)
	}

	rh, center, srot := h.helixGeometry(tr, pt)
	dx := point.X - center.X
	dy := point.Y - center.Y
	dn := math.Hypot(dx, dy)
	if dn == 0 {
		// The point sits on the helix axis: every azimuth is equally
		// close, so there is no perigee to pick.
		return tracking.State{}, fmt.Errorf("track %d: point on helix axis: %w", tr.ID, tracking.ErrUnreachableSurface)
	}

	phi0 := math.Atan2(tr.Position.Y-center.Y, tr.Position.X-center.X)
	phiT := math.Atan2(dy, dx)
	dAngle := geom.WrapPhi(phiT - phi0)
	arc := -srot * rh * dAngle // signed path length to the perigee

	return tracking.State{
		Position: geom.Vec3{
			X: center.X + rh*dx/dn,
			Y: center.Y + rh*dy/dn,
			Z: tr.Position.Z + arc*(tr.Momentum.Z/pt),
		},
		Momentum: rotateMomentum(tr.Momentum, dAngle),
	}, nil
}

// rotateMomentum rotates the transverse momentum components by dphi,
// leaving pz untouched.
func rotateMomentum(p geom.Vec3, dphi float64) geom.Vec3 {
	c, s := math.Cos(dphi), math.Sin(dphi)
	return geom.Vec3{
		X: p.X*c - p.Y*s,
		Y: p.X*s + p.Y*c,
		Z: p.Z,
	}
}

// wrapTo2Pi maps an angle onto [0, 2*pi).
func wrapTo2Pi(phi float64) float64 {
	for phi < 0 {
		phi += 2 * math.Pi
	}
	for phi >= 2*math.Pi {
		phi -= 2 * math.Pi
	}
	return phi
}
