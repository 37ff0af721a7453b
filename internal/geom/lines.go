package geom

import "errors"

// ErrParallelLines is returned by ClosestApproachLines when the two
// direction vectors are parallel (or one is zero), so no unique pair
// of closest points exists.
var ErrParallelLines = errors.New("geom: lines are parallel")

// parallelTol bounds |b1×b2| below which two directions are treated as
// parallel. Unit-normalised directions make this a sin(angle) cut.
const parallelTol = 1e-12

// ClosestApproach describes the mutual closest approach of two lines:
// the nearest point on each line and the signed distance between them.
type ClosestApproach struct {
	PointA   Vec3
	PointB   Vec3
	Distance float64 // signed: (dirA × dirB)·(b - a) / |dirA × dirB|
}

// ClosestApproachLines finds the points of closest approach of two
// infinite lines a + t*da and b + s*db.
//
// The signed distance keeps the orientation information of the
// (da × db) normal; downstream cuts take an absolute value of it.
func ClosestApproachLines(a, da, b, db Vec3) (ClosestApproach, error) {
	ua := da.Unit()
	ub := db.Unit()

	n := ua.Cross(ub)
	nn := n.Norm()
	if nn < parallelTol {
		return ClosestApproach{}, ErrParallelLines
	}

	signed := n.Dot(b.Sub(a)) / nn

	// Minimise |a + t*ua - b - s*ub|²: the normal equations in (t, s).
	w0 := a.Sub(b)
	A := ua.Dot(ua)
	B := ua.Dot(ub)
	C := ub.Dot(ub)
	D := w0.Dot(ua)
	E := w0.Dot(ub)
	den := A*C - B*B

	t := (B*E - C*D) / den
	s := (A*E - B*D) / den

	pa := a.Add(ua.Scale(t))
	pb := b.Add(ub.Scale(s))

	return ClosestApproach{PointA: pa, PointB: pb, Distance: signed}, nil
}

// DistancePointLine returns the perpendicular distance from point p to
// the infinite line through o with direction d, and the line parameter
// t of the foot of the perpendicular. A zero direction yields the
// plain point-to-point distance at t=0.
func DistancePointLine(p, o, d Vec3) (dist, t float64) {
	dd := d.Dot(d)
	if dd == 0 {
		return p.Sub(o).Norm(), 0
	}
	op := p.Sub(o)
	t = op.Dot(d) / dd
	foot := o.Add(d.Scale(t))
	return p.Sub(foot).Norm(), t
}
