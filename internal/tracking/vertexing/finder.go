// Package vertexing implements the pairwise secondary-vertex search.
// Every oppositely-charged track pair sufficiently displaced from its
// primary vertex is tested for a common crossing of the two fitted
// transverse circles; each crossing is refined by a skew-line closest
// approach of the projected trajectories and emitted as a
// DecayCandidate when the refined vertex sits far enough from the
// primary. Cuts run cheapest first, so most pairs never reach the fit
// or the propagation.
package vertexing

import (
	"errors"
	"math"

	"go-hep.org/x/hep/fmom"

	"github.com/banshee-data/vertex.report/internal/geom"
	"github.com/banshee-data/vertex.report/internal/monitoring"
	"github.com/banshee-data/vertex.report/internal/tracking"
	"github.com/banshee-data/vertex.report/internal/tracking/fit"
	"github.com/banshee-data/vertex.report/internal/tracking/propagation"
)

// Finder runs the pairwise search over one event at a time. It never
// modifies event data: projections produce separate states and all
// output goes through the accumulator.
type Finder struct {
	cfg  FinderConfig
	prop tracking.Propagator
	corr tracking.PositionCorrector
}

// NewFinder returns a finder with the given cuts. A nil propagator
// defaults to the constant-field helix at the nominal solenoid field; a
// nil corrector leaves cluster positions uncorrected.
func NewFinder(cfg FinderConfig, prop tracking.Propagator, corr tracking.PositionCorrector) *Finder {
	if prop == nil {
		prop = propagation.NewHelixPropagator(propagation.DefaultBz)
	}
	return &Finder{cfg: cfg, prop: prop, corr: corr}
}

// Config returns the finder's cuts.
func (f *Finder) Config() FinderConfig { return f.cfg }

// pair carries the per-pair state that survives the track cuts.
type pair struct {
	tr1, tr2   *tracking.Track
	vtx        *tracking.Vertex
	dca1, dca2 DCA
}

// FindVertices searches all ordered track pairs (i < j) of the event
// and appends accepted candidates to the accumulator. Every per-track
// or per-pair failure is a local skip counted in the accumulator's
// stats; only missing inputs return an error.
func (f *Finder) FindVertices(ev *tracking.Event, acc *Accumulator) error {
	if ev == nil {
		return errors.New("vertexing: nil event")
	}
	if acc == nil {
		return errors.New("vertexing: nil accumulator")
	}

	fits := newFitCache(fit.NewFitter(ev, f.corr))
	ids := ev.TrackIDs()

	for i, id1 := range ids {
		tr1 := ev.Tracks[id1]

		vtx1, ok := ev.FindVertex(tr1.VertexID)
		if !ok || vtx1.IsBogus() {
			acc.Stats.BogusVertex++
			continue
		}
		if f.cfg.RequireSilicon && !tr1.HasSilicon() {
			acc.Stats.NoSilicon++
			continue
		}
		dca1, ok := f.passTrackCuts(tr1, ev, acc)
		if !ok {
			continue
		}

		for _, id2 := range ids[i+1:] {
			tr2 := ev.Tracks[id2]
			acc.Stats.PairsConsidered++

			if f.cfg.RequireSilicon && !tr2.HasSilicon() {
				acc.Stats.NoSilicon++
				continue
			}
			if tr2.Charge == tr1.Charge {
				acc.Stats.SameCharge++
				continue
			}
			dca2, ok := f.passTrackCuts(tr2, ev, acc)
			if !ok {
				continue
			}

			f.searchPair(ev, acc, fits, pair{
				tr1: tr1, tr2: tr2, vtx: vtx1, dca1: dca1, dca2: dca2,
			})
		}
	}
	return nil
}

// passTrackCuts applies the per-track quality, hit-count, and
// displacement cuts, returning the track's DCA to its primary vertex
// when it survives.
func (f *Finder) passTrackCuts(tr *tracking.Track, vertices tracking.VertexSource, acc *Accumulator) (DCA, bool) {
	if tr.Quality > f.cfg.MaxQuality {
		acc.Stats.PoorQuality++
		return DCA{}, false
	}
	if len(tr.OuterKeys) < f.cfg.MinOuterHits {
		acc.Stats.FewOuterHits++
		return DCA{}, false
	}

	dca, err := ComputeDCA(tr, vertices)
	if err != nil || dca.Invalid() {
		acc.Stats.InvalidDCA++
		return DCA{}, false
	}
	// Minimum displacement: prompt tracks are not decay products.
	if math.Abs(dca.XY) < f.cfg.MinDCAXY {
		acc.Stats.PromptTrack++
		return DCA{}, false
	}
	if math.Abs(dca.Z) < f.cfg.MinDCAZ {
		acc.Stats.PromptTrack++
		return DCA{}, false
	}
	return dca, true
}

// searchPair fits both tracks, intersects the fitted transverse
// circles, and examines every crossing as a candidate decay vertex.
func (f *Finder) searchPair(ev *tracking.Event, acc *Accumulator, fits *fitCache, pr pair) {
	fit1, ok := fits.get(pr.tr1)
	if !ok {
		acc.Stats.FitFailed++
		return
	}
	fit2, ok := fits.get(pr.tr2)
	if !ok {
		acc.Stats.FitFailed++
		return
	}

	points := geom.IntersectCircles(fit1.Circle(), fit2.Circle(), f.cfg.TangentTolerance)
	if len(points) == 0 {
		acc.Stats.NoIntersection++
		return
	}
	for _, p := range points {
		f.examineCandidate(ev, acc, pr, p)
	}
}

// examineCandidate refines one circle-crossing point into a decay
// vertex, applying the radius, projection, pair-separation, and decay
// length cuts in order.
func (f *Finder) examineCandidate(ev *tracking.Event, acc *Accumulator, pr pair, point geom.Vec2) {
	radius := point.Norm()
	if radius > f.cfg.MaxIntersectionRadius {
		acc.Stats.RadiusTooLarge++
		return
	}

	st1, err := f.prop.ToCylinder(pr.tr1, radius)
	if err != nil {
		acc.Stats.ProjectionFailed++
		return
	}
	st2, err := f.prop.ToCylinder(pr.tr2, radius)
	if err != nil {
		acc.Stats.ProjectionFailed++
		return
	}
	if math.Abs(st1.Position.Z-st2.Position.Z) > f.cfg.MaxProjectedDZ {
		acc.Stats.ZMismatch++
		return
	}

	// True 3D closest approach of the local trajectories through the
	// projected states.
	ca, err := geom.ClosestApproachLines(st1.Position, st1.Momentum, st2.Position, st2.Momentum)
	if err != nil {
		acc.Stats.ParallelTracks++
		return
	}
	if math.Abs(ca.Distance) > f.cfg.MaxPairDCA {
		acc.Stats.PairDCATooLarge++
		return
	}

	m := f.cfg.DecayMass
	e1 := math.Sqrt(st1.Momentum.Dot(st1.Momentum) + m*m)
	e2 := math.Sqrt(st2.Momentum.Dot(st2.Momentum) + m*m)
	p1 := fmom.NewPxPyPzE(st1.Momentum.X, st1.Momentum.Y, st1.Momentum.Z, e1)
	p2 := fmom.NewPxPyPzE(st2.Momentum.X, st2.Momentum.Y, st2.Momentum.Z, e2)
	sum := fmom.Add(&p1, &p2)

	secondary := ca.PointA.Add(ca.PointB).Scale(0.5)
	length := secondary.Sub(pr.vtx.Position).Norm()
	if length <= f.cfg.MinDecayLength {
		acc.Stats.ShortDecayLength++
		return
	}

	monitoring.Debugf("vertexing: pair (%d,%d) mass %.4f pt %.4f decay length %.4f",
		pr.tr1.ID, pr.tr2.ID, sum.M(), sum.Pt(), length)

	acc.add(DecayCandidate{
		Run:             ev.Run,
		Event:           ev.ID,
		Track1:          summarize(pr.tr1, pr.dca1, ca.PointA),
		Track2:          summarize(pr.tr2, pr.dca2, ca.PointB),
		PrimaryVertexID: pr.vtx.ID,
		PrimaryVertex:   pr.vtx.Position,
		SecondaryVertex: secondary,
		PairDCA:         ca.Distance,
		InvariantMass:   sum.M(),
		InvariantPt:     sum.Pt(),
		DecayLength:     length,
	})
}

// summarize snapshots one leg for the candidate record.
func summarize(tr *tracking.Track, dca DCA, pca geom.Vec3) TrackSummary {
	return TrackSummary{
		TrackID:    tr.ID,
		Position:   tr.Position,
		Momentum:   tr.Momentum,
		Eta:        tr.Eta(),
		Charge:     tr.Charge,
		Quality:    tr.Quality,
		OuterHits:  len(tr.OuterKeys),
		HasSilicon: tr.HasSilicon(),
		DCA:        dca,
		PCA:        pca,
	}
}

// fitCache memoizes per-track fits within one event. A track is
// revisited in up to n-1 pairs and its fit inputs never change
// mid-event, so the first result (success or failure) is reused.
type fitCache struct {
	fitter *fit.Fitter
	fits   map[int]*fit.TrackFit // nil entry records a failed fit
}

func newFitCache(fitter *fit.Fitter) *fitCache {
	return &fitCache{fitter: fitter, fits: make(map[int]*fit.TrackFit)}
}

func (c *fitCache) get(tr *tracking.Track) (fit.TrackFit, bool) {
	if tf, cached := c.fits[tr.ID]; cached {
		if tf == nil {
			return fit.TrackFit{}, false
		}
		return *tf, true
	}
	tf, err := c.fitter.FitTrack(tr)
	if err != nil {
		monitoring.Debugf("vertexing: %v", err)
		c.fits[tr.ID] = nil
		return fit.TrackFit{}, false
	}
	c.fits[tr.ID] = &tf
	return tf, true
}
