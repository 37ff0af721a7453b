package geom

import "math"

// Circle is a circle in the transverse plane, the projection of a
// charged-particle helix onto x-y.
type Circle struct {
	R      float64 // radius
	Center Vec2
}

// IntersectCircles returns the intersection points of two circles in
// the transverse plane.
//
// Outcomes:
//   - one circle nested inside the other, or concentric: no points;
//   - circles separated by more than tangentTol beyond tangency: no
//     points;
//   - circles separated but within tangentTol of external tangency:
//     a single point midway between the two mutually nearest rim
//     points, so near-miss track pairs from a common vertex are not
//     discarded for resolution effects;
//   - otherwise: the two crossing points.
func IntersectCircles(a, b Circle, tangentTol float64) []Vec2 {
	d := a.Center.Sub(b.Center).Norm()

	// Concentric circles either coincide (infinite solutions) or never
	// touch; neither yields a usable vertex candidate.
	if d == 0 {
		return nil
	}
	if d < math.Abs(b.R-a.R) {
		return nil
	}
	if d > a.R+b.R {
		if math.Abs(d-(a.R+b.R)) >= tangentTol {
			return nil
		}
		// Almost tangent externally: take the midpoint of the two rim
		// points nearest each other along the center-to-center line.
		u := b.Center.Sub(a.Center).Scale(1 / d)
		pa := a.Center.Add(u.Scale(a.R))
		pb := b.Center.Sub(u.Scale(b.R))
		return []Vec2{pa.Add(pb).Scale(0.5)}
	}

	// Standard two-circle construction: walk distance t along the
	// center line from a, then ±h perpendicular to it.
	t := (a.R*a.R - b.R*b.R + d*d) / (2 * d)
	h2 := a.R*a.R - t*t
	if h2 < 0 {
		h2 = 0
	}
	h := math.Sqrt(h2)

	ex := (b.Center.X - a.Center.X) / d
	ey := (b.Center.Y - a.Center.Y) / d
	mx := a.Center.X + t*ex
	my := a.Center.Y + t*ey

	p1 := Vec2{X: mx + h*ey, Y: my - h*ex}
	p2 := Vec2{X: mx - h*ey, Y: my + h*ex}
	if h == 0 {
		return []Vec2{p1}
	}
	return []Vec2{p1, p2}
}

// IntersectLineCircle intersects the transverse projection of a line
// p + t*d with a circle of the given radius centred on the origin.
// It returns the two parameters t in ascending order. ok is false when
// the line misses the circle or has no transverse extent.
func IntersectLineCircle(p, d Vec3, radius float64) (t0, t1 float64, ok bool) {
	a := d.X*d.X + d.Y*d.Y
	if a == 0 {
		return 0, 0, false
	}
	b := 2 * (p.X*d.X + p.Y*d.Y)
	c := p.X*p.X + p.Y*p.Y - radius*radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, false
	}
	s := math.Sqrt(disc)
	t0 = (-b - s) / (2 * a)
	t1 = (-b + s) / (2 * a)
	return t0, t1, true
}
