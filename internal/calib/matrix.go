package calib

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/vertex.report/internal/geom"
	"github.com/banshee-data/vertex.report/internal/monitoring"
)

// Distortion grid extent, in detector global coordinates. The radial
// and longitudinal limits cover the active gas volume; positions
// outside map to no cell.
const (
	GridPhiMin = 0.0
	GridPhiMax = 2 * math.Pi
	GridRMin   = 20.0   // cm
	GridRMax   = 78.0   // cm
	GridZMin   = -105.5 // cm
	GridZMax   = 105.5  // cm
)

// Default grid granularity.
const (
	DefaultPhiBins = 36
	DefaultRBins   = 16
	DefaultZBins   = 80
)

// DefaultMinCellEntries is the default statistics floor below which a
// cell is not solved.
const DefaultMinCellEntries int64 = 10

// MatrixContainer accumulates, per grid cell, the 3x3 left-hand side
// and 3-vector right-hand side of the distortion normal equations,
// together with the number of contributing residuals. Containers from
// separate runs combine with Merge before solving.
type MatrixContainer struct {
	phiBins int
	rBins   int
	zBins   int

	lhs     [][9]float64 // row-major 3x3 per cell
	rhs     [][3]float64
	entries []int64
}

// NewMatrixContainer returns an empty container with the given grid
// granularity over the fixed Grid* extent.
func NewMatrixContainer(phiBins, rBins, zBins int) *MatrixContainer {
	n := phiBins * rBins * zBins
	return &MatrixContainer{
		phiBins: phiBins,
		rBins:   rBins,
		zBins:   zBins,
		lhs:     make([][9]float64, n),
		rhs:     make([][3]float64, n),
		entries: make([]int64, n),
	}
}

// DefaultMatrixContainer returns an empty container with the default
// granularity.
func DefaultMatrixContainer() *MatrixContainer {
	return NewMatrixContainer(DefaultPhiBins, DefaultRBins, DefaultZBins)
}

// Bins returns the grid granularity.
func (m *MatrixContainer) Bins() (phiBins, rBins, zBins int) {
	return m.phiBins, m.rBins, m.zBins
}

// Cells returns the total number of grid cells.
func (m *MatrixContainer) Cells() int { return len(m.entries) }

// CellOf flattens per-axis bin indices into a cell index, or -1 when
// any index is out of range.
func (m *MatrixContainer) CellOf(iphi, ir, iz int) int {
	if iphi < 0 || iphi >= m.phiBins {
		return -1
	}
	if ir < 0 || ir >= m.rBins {
		return -1
	}
	if iz < 0 || iz >= m.zBins {
		return -1
	}
	return iz + m.zBins*(ir+m.rBins*iphi)
}

// CellIndex maps a global position onto its grid cell. The azimuth
// wraps into [GridPhiMin, GridPhiMax); radius or z outside the grid
// extent yields -1.
func (m *MatrixContainer) CellIndex(p geom.Vec3) int {
	phi := math.Atan2(p.Y, p.X)
	for phi < GridPhiMin {
		phi += 2 * math.Pi
	}
	for phi >= GridPhiMax {
		phi -= 2 * math.Pi
	}
	iphi := int(float64(m.phiBins) * (phi - GridPhiMin) / (GridPhiMax - GridPhiMin))

	r := p.Perp()
	if r < GridRMin || r >= GridRMax {
		return -1
	}
	ir := int(float64(m.rBins) * (r - GridRMin) / (GridRMax - GridRMin))

	if p.Z < GridZMin || p.Z >= GridZMax {
		return -1
	}
	iz := int(float64(m.zBins) * (p.Z - GridZMin) / (GridZMax - GridZMin))

	return m.CellOf(iphi, ir, iz)
}

// CellCenter returns the centre coordinates of a cell.
func (m *MatrixContainer) CellCenter(cell int) (phi, r, z float64) {
	iphi := cell / (m.rBins * m.zBins)
	rem := cell % (m.rBins * m.zBins)
	ir := rem / m.zBins
	iz := rem % m.zBins

	phi = GridPhiMin + (float64(iphi)+0.5)*(GridPhiMax-GridPhiMin)/float64(m.phiBins)
	r = GridRMin + (float64(ir)+0.5)*(GridRMax-GridRMin)/float64(m.rBins)
	z = GridZMin + (float64(iz)+0.5)*(GridZMax-GridZMin)/float64(m.zBins)
	return phi, r, z
}

// AddToLHS accumulates into element (row, col) of a cell's left-hand
// side. Out-of-range cells are ignored.
func (m *MatrixContainer) AddToLHS(cell, row, col int, v float64) {
	if cell < 0 || cell >= len(m.lhs) {
		return
	}
	m.lhs[cell][3*row+col] += v
}

// AddToRHS accumulates into a row of a cell's right-hand side.
// Out-of-range cells are ignored.
func (m *MatrixContainer) AddToRHS(cell, row int, v float64) {
	if cell < 0 || cell >= len(m.rhs) {
		return
	}
	m.rhs[cell][row] += v
}

// AddEntries increments a cell's residual count.
func (m *MatrixContainer) AddEntries(cell int) {
	if cell < 0 || cell >= len(m.entries) {
		return
	}
	m.entries[cell]++
}

// Entries returns a cell's residual count, or 0 out of range.
func (m *MatrixContainer) Entries(cell int) int64 {
	if cell < 0 || cell >= len(m.entries) {
		return 0
	}
	return m.entries[cell]
}

// LHS returns a copy of a cell's accumulated row-major 3x3 left-hand
// side.
func (m *MatrixContainer) LHS(cell int) [9]float64 { return m.lhs[cell] }

// RHS returns a copy of a cell's accumulated right-hand side.
func (m *MatrixContainer) RHS(cell int) [3]float64 { return m.rhs[cell] }

// Merge adds another container's accumulated matrices into this one.
// The grids must have identical granularity.
func (m *MatrixContainer) Merge(o *MatrixContainer) error {
	if m.phiBins != o.phiBins || m.rBins != o.rBins || m.zBins != o.zBins {
		return fmt.Errorf("calib: grid mismatch: %dx%dx%d vs %dx%dx%d",
			m.phiBins, m.rBins, m.zBins, o.phiBins, o.rBins, o.zBins)
	}
	for cell := range m.lhs {
		for k := range m.lhs[cell] {
			m.lhs[cell][k] += o.lhs[cell][k]
		}
		for k := range m.rhs[cell] {
			m.rhs[cell][k] += o.rhs[cell][k]
		}
		m.entries[cell] += o.entries[cell]
	}
	return nil
}

// CellDistortion is the solved distortion of one grid cell.
type CellDistortion struct {
	Cell    int
	Phi     float64 // cell centre
	R       float64
	Z       float64
	DRPhi   float64 // azimuthal displacement r·dphi, cm
	DZ      float64 // longitudinal displacement, cm
	DR      float64 // radial displacement, cm
	Entries int64
}

// Solve inverts the normal equations of every cell holding at least
// minEntries residuals. Cells whose matrix is singular are skipped.
func (m *MatrixContainer) Solve(minEntries int64) []CellDistortion {
	var out []CellDistortion
	for cell := range m.lhs {
		if m.entries[cell] < minEntries {
			continue
		}

		lhs := mat.NewDense(3, 3, append([]float64(nil), m.lhs[cell][:]...))
		rhs := mat.NewVecDense(3, append([]float64(nil), m.rhs[cell][:]...))

		var x mat.VecDense
		if err := x.SolveVec(lhs, rhs); err != nil {
			// Covers singular and rank-deficient cells, such as a cell
			// fed from a single laser angle.
			monitoring.Debugf("calib: cell %d not solvable: %v", cell, err)
			continue
		}
		drphi, dz, dr := x.AtVec(0), x.AtVec(1), x.AtVec(2)
		if !finite(drphi) || !finite(dz) || !finite(dr) {
			monitoring.Debugf("calib: cell %d singular", cell)
			continue
		}

		phi, r, z := m.CellCenter(cell)
		out = append(out, CellDistortion{
			Cell:    cell,
			Phi:     phi,
			R:       r,
			Z:       z,
			DRPhi:   drphi,
			DZ:      dz,
			DR:      dr,
			Entries: m.entries[cell],
		})
	}
	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
