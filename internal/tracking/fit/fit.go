// Package fit reconstructs the helix parameters of a track from its
// hit clusters: an algebraic (Taubin) circle fit in the transverse
// plane over all hits, and an ordinary least-squares line fit of z
// versus transverse radius that excludes silicon-strip hits, whose
// longitudinal resolution is too poor to constrain the line.
package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/vertex.report/internal/geom"
	"github.com/banshee-data/vertex.report/internal/monitoring"
	"github.com/banshee-data/vertex.report/internal/tracking"
)

const (
	// MinCircleFitHits is the minimum cluster count for the transverse
	// circle fit.
	MinCircleFitHits = 3
	// MinLineFitHits is the minimum non-strip cluster count for the
	// r-z line fit.
	MinLineFitHits = 3

	// taubinMaxIterations bounds the Newton refinement of the Taubin
	// characteristic polynomial root; convergence normally takes a
	// handful of steps.
	taubinMaxIterations = 99
)

// ErrTooFewClusters is returned when a track has too few usable hits
// for either fit.
var ErrTooFewClusters = errors.New("fit: too few clusters")

// ErrDegenerateFit is returned when the hits carry no curvature or no
// radial extent, so the fit parameters are undefined.
var ErrDegenerateFit = errors.New("fit: degenerate cluster geometry")

// TrackFit holds the fitted helix parameters of one track: the
// transverse circle and the r-z line z = ZSlope*r + ZIntercept.
type TrackFit struct {
	R  float64
	Cx float64
	Cy float64

	ZSlope     float64
	ZIntercept float64

	// Hit counts that entered each fit, after dropping missing
	// clusters and (for the line) strip hits.
	NCircleHits int
	NLineHits   int
}

// Circle returns the fitted transverse circle.
func (f TrackFit) Circle() geom.Circle {
	return geom.Circle{R: f.R, Center: geom.Vec2{X: f.Cx, Y: f.Cy}}
}

// ZAt returns the fitted z at transverse radius r.
func (f TrackFit) ZAt(r float64) float64 { return f.ZSlope*r + f.ZIntercept }

// Fitter fits tracks from a cluster source, applying the position
// corrector to every cluster before use.
type Fitter struct {
	Clusters  tracking.ClusterSource
	Corrector tracking.PositionCorrector
}

// NewFitter returns a fitter over the given source. A nil corrector
// means positions are used as stored.
func NewFitter(clusters tracking.ClusterSource, corrector tracking.PositionCorrector) *Fitter {
	if corrector == nil {
		corrector = tracking.NopCorrector{}
	}
	return &Fitter{Clusters: clusters, Corrector: corrector}
}

// FitTrack fits the track's clusters. Missing clusters are skipped
// with a diagnostic; too few surviving hits for either fit returns
// ErrTooFewClusters. The result is deterministic for a given key
// sequence.
func (f *Fitter) FitTrack(tr *tracking.Track) (TrackFit, error) {
	var (
		xy []geom.Vec2 // all hits, for the circle
		rs []float64   // non-strip hits, for the line
		zs []float64
	)
	for _, key := range tr.AllKeys() {
		c, ok := f.Clusters.FindCluster(key)
		if !ok {
			monitoring.Debugf("fit: track %d: cluster %v not found, skipping", tr.ID, key)
			continue
		}
		pos := f.Corrector.Correct(c)
		xy = append(xy, geom.Vec2{X: pos.X, Y: pos.Y})
		if key.Detector() != tracking.DetSiliconStrips {
			rs = append(rs, math.Hypot(pos.X, pos.Y))
			zs = append(zs, pos.Z)
		}
	}

	if len(xy) < MinCircleFitHits {
		return TrackFit{}, fmt.Errorf("track %d: %d hits for circle fit: %w", tr.ID, len(xy), ErrTooFewClusters)
	}
	if len(rs) < MinLineFitHits {
		return TrackFit{}, fmt.Errorf("track %d: %d non-strip hits for line fit: %w", tr.ID, len(rs), ErrTooFewClusters)
	}

	r, cx, cy, err := CircleFitTaubin(xy)
	if err != nil {
		return TrackFit{}, fmt.Errorf("track %d: %w", tr.ID, err)
	}

	intercept, slope := stat.LinearRegression(rs, zs, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) || math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return TrackFit{}, fmt.Errorf("track %d: hits have no radial extent: %w", tr.ID, ErrDegenerateFit)
	}

	return TrackFit{
		R:           r,
		Cx:          cx,
		Cy:          cy,
		ZSlope:      slope,
		ZIntercept:  intercept,
		NCircleHits: len(xy),
		NLineHits:   len(rs),
	}, nil
}

// CircleFitTaubin fits a circle to the points by Taubin's algebraic
// method: form the normalized moment matrix of the centred data, find
// the smallest root of its characteristic polynomial by Newton
// iteration starting from zero, and recover the centre from the
// resulting linear system. It needs no initial guess and is unbiased
// for arcs, which is what a track's hits form.
func CircleFitTaubin(pts []geom.Vec2) (r, cx, cy float64, err error) {
	n := float64(len(pts))
	if len(pts) < MinCircleFitHits {
		return 0, 0, 0, fmt.Errorf("%d points: %w", len(pts), ErrTooFewClusters)
	}

	var meanX, meanY float64
	for _, p := range pts {
		meanX += p.X
		meanY += p.Y
	}
	meanX /= n
	meanY /= n

	// Moments of the centred data; z = x² + y².
	var mxx, myy, mxy, mxz, myz, mzz float64
	for _, p := range pts {
		xi := p.X - meanX
		yi := p.Y - meanY
		zi := xi*xi + yi*yi
		mxx += xi * xi
		myy += yi * yi
		mxy += xi * yi
		mxz += xi * zi
		myz += yi * zi
		mzz += zi * zi
	}
	mxx /= n
	myy /= n
	mxy /= n
	mxz /= n
	myz /= n
	mzz /= n

	mz := mxx + myy
	covXY := mxx*myy - mxy*mxy
	varZ := mzz - mz*mz

	a3 := 4 * mz
	a2 := -3*mz*mz - mzz
	a1 := varZ*mz + 4*covXY*mz - mxz*mxz - myz*myz
	a0 := mxz*(mxz*myy-myz*mxy) + myz*(myz*mxx-mxz*mxy) - varZ*covXY
	a22 := a2 + a2
	a33 := a3 + a3 + a3

	// Newton iteration on the characteristic polynomial, starting at
	// zero where the smallest root of a circle-like point set lies.
	x := 0.0
	y := a0
	for i := 0; i < taubinMaxIterations; i++ {
		dy := a1 + x*(a22+a33*x)
		xnew := x - y/dy
		if xnew == x || math.IsNaN(xnew) || math.IsInf(xnew, 0) {
			break
		}
		ynew := a0 + xnew*(a1+xnew*(a2+xnew*a3))
		if math.Abs(ynew) >= math.Abs(y) {
			break
		}
		x, y = xnew, ynew
	}

	det := x*x - x*mz + covXY
	if det == 0 || math.IsNaN(det) {
		// Collinear hits: the circle degenerates into a line.
		return 0, 0, 0, ErrDegenerateFit
	}
	xc := (mxz*(myy-x) - myz*mxy) / det / 2
	yc := (myz*(mxx-x) - mxz*mxy) / det / 2

	r = math.Sqrt(xc*xc + yc*yc + mz)
	return r, xc + meanX, yc + meanY, nil
}
