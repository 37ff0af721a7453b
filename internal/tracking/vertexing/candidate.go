package vertexing

import "github.com/banshee-data/vertex.report/internal/geom"

// TrackSummary captures one leg of an accepted pair: the track's fitted
// beamline state and bookkeeping, its displacement from the primary
// vertex, and its point of closest approach to the other leg.
type TrackSummary struct {
	TrackID  int
	Position geom.Vec3
	Momentum geom.Vec3
	Eta      float64
	Charge   int
	Quality  float64

	OuterHits  int
	HasSilicon bool

	DCA DCA

	// PCA is this leg's closest-approach point to the other leg, in
	// global coordinates, from the projected trajectories.
	PCA geom.Vec3
}

// DecayCandidate is one accepted track pair: a displaced two-prong
// vertex with its kinematics under the configured mass hypothesis.
// Immutable once emitted by the finder.
type DecayCandidate struct {
	Run   int
	Event int

	Track1 TrackSummary
	Track2 TrackSummary

	// PrimaryVertex is the position of the first track's primary
	// vertex, the reference for the decay length.
	PrimaryVertexID int
	PrimaryVertex   geom.Vec3

	// SecondaryVertex is the decay point estimate: the midpoint of the
	// two per-track PCA points.
	SecondaryVertex geom.Vec3

	// PairDCA is the signed 3D closest-approach distance between the
	// two projected trajectories.
	PairDCA float64

	InvariantMass float64
	InvariantPt   float64

	// DecayLength is |SecondaryVertex - PrimaryVertex|.
	DecayLength float64
}
