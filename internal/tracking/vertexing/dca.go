package vertexing

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/vertex.report/internal/geom"
	"github.com/banshee-data/vertex.report/internal/tracking"
)

// ErrMissingVertex is returned when a track references a primary vertex
// the event does not contain.
var ErrMissingVertex = errors.New("vertexing: primary vertex not found")

// DCA is a track's distance of closest approach to its primary vertex,
// split into the transverse and longitudinal components of the frame
// whose x-axis lies along momentum × ẑ, with the uncertainties of the
// rotated position covariance.
type DCA struct {
	XY      float64
	Z       float64
	SigmaXY float64
	SigmaZ  float64
}

// Invalid reports whether either component came out NaN, which happens
// for degenerate momenta or covariances and must skip the track rather
// than reach the output.
func (d DCA) Invalid() bool {
	return math.IsNaN(d.XY) || math.IsNaN(d.Z)
}

// ComputeDCA resolves the track's primary vertex and returns the DCA of
// the track's fitted beamline state to it. The vertex-relative position
// and the position covariance are rotated about z so that x picks up
// the transverse impact and z the longitudinal offset.
func ComputeDCA(tr *tracking.Track, vertices tracking.VertexSource) (DCA, error) {
	vtx, ok := vertices.FindVertex(tr.VertexID)
	if !ok {
		return DCA{}, fmt.Errorf("track %d vertex %d: %w", tr.ID, tr.VertexID, ErrMissingVertex)
	}

	rel := tr.Position.Sub(vtx.Position)

	// Rotation angle from the transverse normal of the momentum.
	n := tr.Momentum.Cross(geom.Vec3{Z: 1})
	phi := math.Atan2(n.Y, n.X)
	c, s := math.Cos(phi), math.Sin(phi)

	rot := mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
	pos := mat.NewVecDense(3, []float64{rel.X, rel.Y, rel.Z})

	var rpos mat.VecDense
	rpos.MulVec(rot, pos)

	cov := mat.NewDense(3, 3, tr.Covariance[:])
	var rcov mat.Dense
	rcov.Product(rot, cov, rot.T())

	return DCA{
		XY:      rpos.AtVec(0),
		Z:       rpos.AtVec(2),
		SigmaXY: math.Sqrt(rcov.At(0, 0)),
		SigmaZ:  math.Sqrt(rcov.At(2, 2)),
	}, nil
}
