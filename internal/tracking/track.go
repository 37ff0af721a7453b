package tracking

import (
	"math"

	"github.com/banshee-data/vertex.report/internal/geom"
)

// Physics constants for the decay-mass hypothesis, in GeV/c².
const (
	PionMass     = 0.13957039
	ElectronMass = 0.000510999
)

// Cluster is a single detector hit with its corrected global position
// and pulse-height weight.
type Cluster struct {
	Key      ClusterKey
	Position geom.Vec3
	ADC      float64
}

// Track is one reconstructed charged-particle trajectory for an event.
// It is read-only to the vertex search: projections return separate
// State values and never write back into the track.
type Track struct {
	ID int

	// Fitted state at the point of closest approach to the beamline.
	Position geom.Vec3
	Momentum geom.Vec3
	Charge   int

	// Quality is the reconstruction chi²/ndf score; larger is worse.
	Quality float64

	// Covariance is the 3x3 position covariance, row-major.
	Covariance [9]float64

	// Hit cluster keys in upstream order, partitioned by sub-detector
	// group. SiliconKeys may be empty for outer-only tracks.
	SiliconKeys []ClusterKey
	OuterKeys   []ClusterKey

	// VertexID references the primary vertex this track was associated
	// to by upstream reconstruction.
	VertexID int
}

// Pt returns the transverse momentum.
func (t *Track) Pt() float64 { return t.Momentum.Perp() }

// P returns the total momentum.
func (t *Track) P() float64 { return t.Momentum.Norm() }

// Eta returns the pseudorapidity asinh(pz/pT). It is +Inf/-Inf for a
// purely longitudinal track.
func (t *Track) Eta() float64 { return math.Asinh(t.Momentum.Z / t.Pt()) }

// HasSilicon reports whether the track has any silicon hits.
func (t *Track) HasSilicon() bool { return len(t.SiliconKeys) > 0 }

// AllKeys returns the track's cluster keys, silicon group first,
// preserving the upstream ordering within each group.
func (t *Track) AllKeys() []ClusterKey {
	keys := make([]ClusterKey, 0, len(t.SiliconKeys)+len(t.OuterKeys))
	keys = append(keys, t.SiliconKeys...)
	keys = append(keys, t.OuterKeys...)
	return keys
}

// State is a pure (position, momentum) pair: the result of propagating
// a track to a surface or point.
type State struct {
	Position geom.Vec3
	Momentum geom.Vec3
}

// Vertex is a reconstructed primary interaction vertex.
type Vertex struct {
	ID       int
	Position geom.Vec3

	// NTracks counts the tracks upstream reconstruction associated to
	// this vertex. Zero marks the vertex bogus.
	NTracks int
}

// IsBogus reports whether the vertex carries no associated tracks and
// must not be used as a reference.
func (v *Vertex) IsBogus() bool { return v.NTracks == 0 }
