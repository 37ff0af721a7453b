package vertexing

import (
	"fmt"

	"go-hep.org/x/hep/hbook"
)

// SearchStats counts pairwise-search outcomes by rejection reason.
// Track-level counters tick once for a first track rejected in the
// outer loop and once per pair for a rejected second track.
type SearchStats struct {
	PairsConsidered int64
	Accepted        int64

	// Track-level cuts.
	BogusVertex  int64
	NoSilicon    int64
	SameCharge   int64
	PoorQuality  int64
	FewOuterHits int64
	InvalidDCA   int64 // DCA NaN or vertex missing
	PromptTrack  int64 // |dcaXY| or |dcaZ| below the displacement minimum

	// Pair- and candidate-level cuts.
	FitFailed        int64
	NoIntersection   int64
	RadiusTooLarge   int64
	ProjectionFailed int64
	ZMismatch        int64
	ParallelTracks   int64
	PairDCATooLarge  int64
	ShortDecayLength int64
}

// Summary returns a one-line account of the counters for run logs.
func (s *SearchStats) Summary() string {
	return fmt.Sprintf(
		"pairs %d accepted %d | tracks: vertex %d silicon %d charge %d quality %d hits %d dca %d prompt %d | pairs: fit %d intersect %d radius %d project %d dz %d parallel %d pairdca %d path %d",
		s.PairsConsidered, s.Accepted,
		s.BogusVertex, s.NoSilicon, s.SameCharge, s.PoorQuality, s.FewOuterHits, s.InvalidDCA, s.PromptTrack,
		s.FitFailed, s.NoIntersection, s.RadiusTooLarge, s.ProjectionFailed, s.ZMismatch, s.ParallelTracks, s.PairDCATooLarge, s.ShortDecayLength)
}

// Accumulator collects the finder's output across events: the candidate
// records, the pT versus invariant-mass histogram, and the cut
// statistics. The caller owns it and decides when to flush or reset;
// the finder only appends.
type Accumulator struct {
	Candidates []DecayCandidate
	MassVsPt   *hbook.H2D
	Stats      SearchStats

	cfg FinderConfig
}

// NewAccumulator returns an empty accumulator with the histogram binned
// per the config.
func NewAccumulator(cfg FinderConfig) *Accumulator {
	return &Accumulator{
		MassVsPt: newMassHist(cfg),
		cfg:      cfg,
	}
}

func newMassHist(cfg FinderConfig) *hbook.H2D {
	return hbook.NewH2D(cfg.PtBins, 0, cfg.PtMax, cfg.MassBins, 0, cfg.MassMax)
}

// add records an accepted candidate and fills the histogram.
func (a *Accumulator) add(c DecayCandidate) {
	a.Candidates = append(a.Candidates, c)
	a.MassVsPt.Fill(c.InvariantPt, c.InvariantMass, 1)
	a.Stats.Accepted++
}

// Reset clears candidates, histogram, and counters, keeping the
// configured binning.
func (a *Accumulator) Reset() {
	a.Candidates = a.Candidates[:0]
	a.MassVsPt = newMassHist(a.cfg)
	a.Stats = SearchStats{}
}
