package calib

import (
	"fmt"
	"math"
	"sort"

	"github.com/banshee-data/vertex.report/internal/config"
	"github.com/banshee-data/vertex.report/internal/geom"
	"github.com/banshee-data/vertex.report/internal/monitoring"
	"github.com/banshee-data/vertex.report/internal/tracking"
)

// lightTransitNsPerCm converts a laser path length to the pulse transit
// time: 1 / c in ns per cm.
const lightTransitNsPerCm = 1e9 / 3e10

// LayerGeometry describes the radial layering of the outer gas
// tracker: Layers concentric shells of equal thickness spanning
// [RMin, RMax].
type LayerGeometry struct {
	RMin   float64 // cm
	RMax   float64 // cm
	Layers int
}

// DefaultLayerGeometry returns the nominal outer-tracker layering.
func DefaultLayerGeometry() LayerGeometry {
	return LayerGeometry{RMin: 30, RMax: 78, Layers: 48}
}

// Thickness returns the radial thickness of one layer.
func (g LayerGeometry) Thickness() float64 {
	return (g.RMax - g.RMin) / float64(g.Layers)
}

// CenterRadius returns the centre radius of a layer.
func (g LayerGeometry) CenterRadius(layer int) float64 {
	return g.RMin + (float64(layer)+0.5)*g.Thickness()
}

// InnerRadius returns the inner shell radius of a layer.
func (g LayerGeometry) InnerRadius(layer int) float64 {
	return g.RMin + float64(layer)*g.Thickness()
}

// OuterRadius returns the outer shell radius of a layer.
func (g LayerGeometry) OuterRadius(layer int) float64 {
	return g.RMin + float64(layer+1)*g.Thickness()
}

// LaserConfig holds the laser reconstruction cuts and constants.
type LaserConfig struct {
	// MaxDCA is the point-to-line distance within which a raw hit is
	// associated to a laser track, in cm.
	MaxDCA float64

	// MaxZRange rejects hits whose z sits further than this from the
	// track's layer crossing, and whole layers whose surviving hits
	// span more than this in z. Both guard against a second traverse
	// of the same layer, in cm.
	MaxZRange float64

	// DriftVelocity of ionisation electrons, cm/ns. Used to correct
	// centroid z for the laser pulse transit time along the track.
	DriftVelocity float64

	// Cluster position errors entering the residual weights, in cm.
	ErrRPhi float64
	ErrZ    float64

	// Distortion grid granularity.
	PhiBins int
	RBins   int
	ZBins   int

	Geometry LayerGeometry
}

// DefaultLaserConfig returns the nominal cuts and constants.
func DefaultLaserConfig() LaserConfig {
	return LaserConfig{
		MaxDCA:        20.0,
		MaxZRange:     10.0,
		DriftVelocity: 0.008,
		ErrRPhi:       0.015,
		ErrZ:          0.075,
		PhiBins:       DefaultPhiBins,
		RBins:         DefaultRBins,
		ZBins:         DefaultZBins,
		Geometry:      DefaultLayerGeometry(),
	}
}

// LaserConfigFromTuning maps the tuning file onto a LaserConfig,
// falling back to the defaults for anything the file does not name.
func LaserConfigFromTuning(tc *config.TuningConfig) LaserConfig {
	cfg := DefaultLaserConfig()
	cfg.MaxDCA = tc.GetLaserMaxDCA()
	cfg.ErrRPhi = tc.GetLaserErrRPhi()
	cfg.ErrZ = tc.GetLaserErrZ()
	cfg.PhiBins = tc.GetLaserPhiBins()
	cfg.RBins = tc.GetLaserRBins()
	cfg.ZBins = tc.GetLaserZBins()
	return cfg
}

// LaserTrack is one straight laser shot through the gas volume.
type LaserTrack struct {
	ID        int
	Origin    geom.Vec3
	Direction geom.Vec3
}

// LaserStats counts the reconstruction's inputs and survivors.
type LaserStats struct {
	TotalHits        int64
	MatchedHits      int64
	AcceptedClusters int64
}

// Summary formats the counters as a single log line.
func (s *LaserStats) Summary() string {
	frac := 0.0
	if s.TotalHits > 0 {
		frac = float64(s.AcceptedClusters) / float64(s.TotalHits)
	}
	return fmt.Sprintf("hits %d matched %d clusters %d (%.4f clusters/hit)",
		s.TotalHits, s.MatchedHits, s.AcceptedClusters, frac)
}

// LaserReconstruction accumulates laser-track residuals into a
// space-charge matrix container. One instance serves a whole run; the
// container is read out (or merged) afterwards.
type LaserReconstruction struct {
	cfg       LaserConfig
	container *MatrixContainer

	Stats LaserStats
}

// NewLaserReconstruction returns a reconstruction with an empty
// container sized from the config's grid granularity.
func NewLaserReconstruction(cfg LaserConfig) *LaserReconstruction {
	return &LaserReconstruction{
		cfg:       cfg,
		container: NewMatrixContainer(cfg.PhiBins, cfg.RBins, cfg.ZBins),
	}
}

// Config returns the reconstruction's configuration.
func (r *LaserReconstruction) Config() LaserConfig { return r.cfg }

// Container returns the accumulated matrix container.
func (r *LaserReconstruction) Container() *MatrixContainer { return r.container }

// ProcessTracks runs every laser track of an event over the same raw
// hits.
func (r *LaserReconstruction) ProcessTracks(tracks []LaserTrack, hits []tracking.Cluster) {
	for _, tr := range tracks {
		r.ProcessTrack(tr, hits)
	}
}

// ProcessTrack associates raw outer-tracker hits to one laser track,
// forms per-layer ADC-weighted centroids, and accumulates the centroid
// residuals into the matrix container.
func (r *LaserReconstruction) ProcessTrack(tr LaserTrack, hits []tracking.Cluster) {
	if tr.Direction.Norm() == 0 {
		monitoring.Logf("calib: laser %d has zero direction, skipped", tr.ID)
		return
	}
	monitoring.Debugf("calib: laser %d origin (%.1f %.1f %.1f) direction (%.2f %.2f %.2f)",
		tr.ID, tr.Origin.X, tr.Origin.Y, tr.Origin.Z,
		tr.Direction.X, tr.Direction.Y, tr.Direction.Z)

	byLayer := make(map[int][]tracking.Cluster)
	for _, hit := range hits {
		if hit.Key.Detector() != tracking.DetGasOuter {
			continue
		}
		r.Stats.TotalHits++

		layer := int(hit.Key.Layer())
		if layer >= r.cfg.Geometry.Layers {
			monitoring.Debugf("calib: hit %v outside layer geometry", hit.Key)
			continue
		}

		dist, _ := geom.DistancePointLine(hit.Position, tr.Origin, tr.Direction)
		if dist > r.cfg.MaxDCA {
			continue
		}
		r.Stats.MatchedHits++
		byLayer[layer] = append(byLayer[layer], hit)
	}

	layers := make([]int, 0, len(byLayer))
	for layer := range byLayer {
		layers = append(layers, layer)
	}
	sort.Ints(layers)

	for _, layer := range layers {
		r.processLayer(tr, layer, byLayer[layer])
	}
}

func (r *LaserReconstruction) processLayer(tr LaserTrack, layer int, hits []tracking.Cluster) {
	g := r.cfg.Geometry

	// The track must pass completely through the layer shell, on the
	// forward branch of the line.
	if _, ok := firstCrossing(tr, g.OuterRadius(layer)); !ok {
		monitoring.Debugf("calib: laser %d does not cross layer %d outer shell", tr.ID, layer)
		return
	}
	if _, ok := firstCrossing(tr, g.InnerRadius(layer)); !ok {
		monitoring.Debugf("calib: laser %d does not cross layer %d inner shell", tr.ID, layer)
		return
	}
	t, ok := firstCrossing(tr, g.CenterRadius(layer))
	if !ok {
		monitoring.Debugf("calib: laser %d does not cross layer %d centre", tr.ID, layer)
		return
	}
	along := tr.Direction.Scale(t)
	projection := tr.Origin.Add(along)

	// ADC-weighted centroid of the hits near this crossing. Hits far
	// from the projected z belong to a second traverse of the layer.
	var centroid geom.Vec3
	var weight float64
	zmin, zmax := math.Inf(1), math.Inf(-1)
	for _, hit := range hits {
		if math.Abs(hit.Position.Z-projection.Z) > r.cfg.MaxZRange {
			continue
		}
		centroid = centroid.Add(hit.Position.Scale(hit.ADC))
		weight += hit.ADC
		zmin = math.Min(zmin, hit.Position.Z)
		zmax = math.Max(zmax, hit.Position.Z)
	}
	if weight <= 0 {
		return
	}
	centroid = centroid.Scale(1 / weight)
	if zmax-zmin > r.cfg.MaxZRange {
		monitoring.Debugf("calib: laser %d layer %d z spread %.1f exceeds %.1f",
			tr.ID, layer, zmax-zmin, r.cfg.MaxZRange)
		return
	}

	// The laser pulse reaches this layer after a light transit along
	// the path, shifting the apparent drift time. Undo it in z, toward
	// the readout plane of the track's hemisphere.
	transit := along.Norm() * lightTransitNsPerCm * r.cfg.DriftVelocity
	if tr.Origin.Z > 0 {
		centroid.Z += transit
	} else {
		centroid.Z -= transit
	}

	clusterR := centroid.Perp()
	clusterPhi := math.Atan2(centroid.Y, centroid.X)
	trackPhi := math.Atan2(projection.Y, projection.X)

	// Track tangent slopes in the cluster frame.
	sinphi, cosphi := math.Sincos(trackPhi)
	pphi := -tr.Direction.X*sinphi + tr.Direction.Y*cosphi
	pr := tr.Direction.X*cosphi + tr.Direction.Y*sinphi
	talpha := -pphi / pr
	tbeta := -tr.Direction.Z / pr
	if !finite(talpha) || !finite(tbeta) {
		monitoring.Logf("calib: laser %d layer %d tangent slopes undefined", tr.ID, layer)
		return
	}

	drp := clusterR * geom.WrapPhi(clusterPhi-trackPhi)
	dz := centroid.Z - projection.Z
	if !finite(drp) || !finite(dz) {
		monitoring.Logf("calib: laser %d layer %d residuals undefined", tr.ID, layer)
		return
	}

	cell := r.container.CellIndex(centroid)
	if cell < 0 {
		monitoring.Debugf("calib: laser %d layer %d centroid outside grid (r %.1f z %.1f)",
			tr.ID, layer, clusterR, centroid.Z)
		return
	}

	erp := r.cfg.ErrRPhi * r.cfg.ErrRPhi
	ez := r.cfg.ErrZ * r.cfg.ErrZ

	c := r.container
	c.AddToLHS(cell, 0, 0, 1/erp)
	c.AddToLHS(cell, 0, 2, talpha/erp)
	c.AddToLHS(cell, 1, 1, 1/ez)
	c.AddToLHS(cell, 1, 2, tbeta/ez)
	c.AddToLHS(cell, 2, 0, talpha/erp)
	c.AddToLHS(cell, 2, 1, tbeta/ez)
	c.AddToLHS(cell, 2, 2, talpha*talpha/erp+tbeta*tbeta/ez)
	c.AddToRHS(cell, 0, drp/erp)
	c.AddToRHS(cell, 1, dz/ez)
	c.AddToRHS(cell, 2, talpha*drp/erp+tbeta*dz/ez)
	c.AddEntries(cell)

	r.Stats.AcceptedClusters++
}

// firstCrossing returns the smallest non-negative line parameter at
// which the track crosses a beamline cylinder of the given radius.
func firstCrossing(tr LaserTrack, radius float64) (float64, bool) {
	t0, t1, ok := geom.IntersectLineCircle(tr.Origin, tr.Direction, radius)
	if !ok || t1 <= 0 {
		return 0, false
	}
	if t0 >= 0 {
		return t0, true
	}
	return t1, true
}
