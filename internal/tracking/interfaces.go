package tracking

import (
	"errors"

	"github.com/banshee-data/vertex.report/internal/geom"
)

// ErrUnreachableSurface is returned by propagators when a track's
// trajectory never reaches the requested surface, or reaches it
// outside the detector acceptance.
var ErrUnreachableSurface = errors.New("tracking: trajectory does not reach surface")

// TrackSource enumerates the tracks of the current event in a stable
// order.
type TrackSource interface {
	TrackIDs() []int
}

// VertexSource resolves primary vertices by identifier.
type VertexSource interface {
	FindVertex(id int) (*Vertex, bool)
}

// ClusterSource resolves hit clusters by key.
type ClusterSource interface {
	FindCluster(key ClusterKey) (*Cluster, bool)
}

// Propagator advances a track's trajectory to a target surface and
// returns the state there. Implementations are pure: the input track
// is never modified.
type Propagator interface {
	// ToCylinder propagates to a beamline-centred cylinder of the
	// given radius and returns the state at the first crossing along
	// the direction of motion.
	ToCylinder(tr *Track, radius float64) (State, error)

	// ToPoint propagates to the trajectory's closest approach to the
	// given point.
	ToPoint(tr *Track, point geom.Vec3) (State, error)
}

// PositionCorrector applies detector-specific spatial distortion
// corrections to a cluster's global position before fitting.
type PositionCorrector interface {
	Correct(c *Cluster) geom.Vec3
}

// NopCorrector passes cluster positions through unchanged. It stands
// in wherever no distortion calibration is loaded.
type NopCorrector struct{}

// Correct implements PositionCorrector.
func (NopCorrector) Correct(c *Cluster) geom.Vec3 { return c.Position }

var _ PositionCorrector = NopCorrector{}
