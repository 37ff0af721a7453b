package calib

import (
	"math"

	"github.com/banshee-data/vertex.report/internal/geom"
	"github.com/banshee-data/vertex.report/internal/tracking"
)

// DistortionCorrector undoes the solved space-charge distortion on
// measured outer-tracker cluster positions. Silicon clusters and
// positions outside the grid (or in unsolved cells) pass through
// unchanged.
type DistortionCorrector struct {
	grid        *MatrixContainer
	corrections map[int]CellDistortion
}

// NewDistortionCorrector solves the container's cells with at least
// minEntries residuals and builds the per-cell correction table.
func NewDistortionCorrector(container *MatrixContainer, minEntries int64) *DistortionCorrector {
	corrections := make(map[int]CellDistortion)
	for _, d := range container.Solve(minEntries) {
		corrections[d.Cell] = d
	}
	return &DistortionCorrector{grid: container, corrections: corrections}
}

// Corrections returns the number of cells carrying a solved
// correction.
func (c *DistortionCorrector) Corrections() int { return len(c.corrections) }

// Correct implements tracking.PositionCorrector. The distortion was
// measured as cluster-minus-track, so it is subtracted from the
// measured position.
func (c *DistortionCorrector) Correct(cl *tracking.Cluster) geom.Vec3 {
	if cl.Key.Detector() != tracking.DetGasOuter {
		return cl.Position
	}
	cell := c.grid.CellIndex(cl.Position)
	if cell < 0 {
		return cl.Position
	}
	d, ok := c.corrections[cell]
	if !ok {
		return cl.Position
	}

	r := cl.Position.Perp()
	phi := math.Atan2(cl.Position.Y, cl.Position.X) - d.DRPhi/r
	r -= d.DR
	z := cl.Position.Z - d.DZ

	sinphi, cosphi := math.Sincos(phi)
	return geom.Vec3{X: r * cosphi, Y: r * sinphi, Z: z}
}

var _ tracking.PositionCorrector = (*DistortionCorrector)(nil)
