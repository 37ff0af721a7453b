package vertexing

import (
	"github.com/banshee-data/vertex.report/internal/config"
	"github.com/banshee-data/vertex.report/internal/tracking"
)

// FinderConfig carries the pairwise-search cuts and the mass histogram
// binning. Lengths are centimetres, momenta GeV/c, masses GeV/c².
//
// The DCA thresholds are minimums: a decay product must be displaced
// from the primary vertex, so tracks whose |DCA| falls below them are
// rejected as prompt. Every other threshold is a ceiling.
type FinderConfig struct {
	// RequireSilicon drops tracks without silicon hits.
	RequireSilicon bool

	// MaxQuality is the chi²/ndf ceiling per track.
	MaxQuality float64

	// MinOuterHits is the minimum outer-tracker cluster count per track.
	MinOuterHits int

	// MinDCAXY and MinDCAZ are the minimum displacement of a track from
	// its primary vertex, transverse and longitudinal.
	MinDCAXY float64
	MinDCAZ  float64

	// MaxIntersectionRadius bounds the transverse radius of a circle
	// intersection candidate.
	MaxIntersectionRadius float64

	// MaxProjectedDZ bounds the z mismatch of the two projected tracks
	// at the candidate radius.
	MaxProjectedDZ float64

	// MaxPairDCA bounds the 3D closest-approach distance of the two
	// projected trajectories.
	MaxPairDCA float64

	// MinDecayLength is the strict lower bound on the distance from the
	// primary vertex to the averaged pair vertex.
	MinDecayLength float64

	// DecayMass is the per-track mass hypothesis entering the
	// invariant-mass computation.
	DecayMass float64

	// TangentTolerance is the gap below which two externally separated
	// circles count as tangent, yielding a single midpoint candidate.
	TangentTolerance float64

	// Mass histogram binning: x is pair pT, y is invariant mass, both
	// from zero.
	PtBins   int
	PtMax    float64
	MassBins int
	MassMax  float64
}

// DefaultFinderConfig returns the production cuts for the pion-pair
// hypothesis.
func DefaultFinderConfig() FinderConfig {
	return FinderConfigFromTuning(config.EmptyTuningConfig())
}

// FinderConfigFromTuning resolves a tuning config into concrete finder
// values, falling back to the documented defaults for unset fields.
func FinderConfigFromTuning(tc *config.TuningConfig) FinderConfig {
	return FinderConfig{
		RequireSilicon:        tc.GetRequireSilicon(),
		MaxQuality:            tc.GetMaxQuality(),
		MinOuterHits:          tc.GetMinOuterHits(),
		MinDCAXY:              tc.GetMinDCAXY(),
		MinDCAZ:               tc.GetMinDCAZ(),
		MaxIntersectionRadius: tc.GetMaxIntersectionRadius(),
		MaxProjectedDZ:        tc.GetMaxProjectedDZ(),
		MaxPairDCA:            tc.GetMaxPairDCA(),
		MinDecayLength:        tc.GetMinDecayLength(),
		DecayMass:             tc.GetDecayMass(),
		TangentTolerance:      tc.GetTangentTolerance(),
		PtBins:                tc.GetPtBins(),
		PtMax:                 tc.GetPtMax(),
		MassBins:              tc.GetMassBins(),
		MassMax:               tc.GetMassMax(),
	}
}

// UseElectronMass switches the mass hypothesis to the electron, for
// photon-conversion searches.
func (c *FinderConfig) UseElectronMass() {
	c.DecayMass = tracking.ElectronMass
}
