package main

import (
	"math"
	"math/rand"

	"github.com/banshee-data/vertex.report/internal/geom"
	"github.com/banshee-data/vertex.report/internal/tracking"
	"github.com/banshee-data/vertex.report/internal/tracking/propagation"
)

// Detector layer radii in cm. Pixels and strips form the silicon
// volume; the pad rows span the outer gas tracker.
var (
	pixelRadii = []float64{2.5, 3.5, 4.5}
	stripRadii = []float64{8, 10, 12, 14}
	outerRadii = padRowRadii()
)

// padRowRadii returns 32 evenly spaced pad-row radii across the gas
// volume.
func padRowRadii() []float64 {
	radii := make([]float64, 32)
	for i := range radii {
		radii[i] = 21 + float64(i)*56/31
	}
	return radii
}

// Generator synthesizes events containing neutral two-body decays on
// top of prompt primary-vertex tracks. Daughters are propagated through
// the layer radii outside their birth point and leave Gaussian-smeared
// clusters, so the events carry enough detail for the full
// fit-and-search chain.
type Generator struct {
	ParentMass   float64 // GeV/c²
	DaughterMass float64 // GeV/c²
	PromptTracks int     // prompt tracks per event
	Decays       int     // decay pairs per event

	SiliconRes float64 // cm, silicon point resolution
	OuterResXY float64 // cm, pad-row r-phi resolution
	OuterResZ  float64 // cm, pad-row drift resolution

	run        int
	event      int
	clusterSeq uint64
	prop       *propagation.HelixPropagator
	rng        *rand.Rand
}

// NewGenerator returns a generator for the given run and field with
// K-short defaults.
func NewGenerator(run int, seed int64, bz float64) *Generator {
	return &Generator{
		ParentMass:   0.497611, // K0_S
		DaughterMass: tracking.PionMass,
		PromptTracks: 6,
		Decays:       1,
		SiliconRes:   0.002,
		OuterResXY:   0.015,
		OuterResZ:    0.075,
		run:          run,
		prop:         propagation.NewHelixPropagator(bz),
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Next synthesizes one event: a primary vertex, its prompt tracks, and
// the configured number of displaced decay pairs.
func (g *Generator) Next() *tracking.Event {
	g.event++
	g.clusterSeq = 0
	ev := tracking.NewEvent(g.run, g.event)

	pv := &tracking.Vertex{
		ID: 0,
		Position: geom.Vec3{
			X: g.rng.NormFloat64() * 0.01,
			Y: g.rng.NormFloat64() * 0.01,
			Z: g.rng.NormFloat64() * 5,
		},
		NTracks: g.PromptTracks + 2*g.Decays,
	}
	ev.AddVertex(pv)

	id := 1
	for i := 0; i < g.PromptTracks; i++ {
		origin := geom.Vec3{
			X: pv.Position.X + g.rng.NormFloat64()*0.005,
			Y: pv.Position.Y + g.rng.NormFloat64()*0.005,
			Z: pv.Position.Z + g.rng.NormFloat64()*0.005,
		}
		g.addTrack(ev, id, origin, g.randomMomentum(0.2, 2.0), g.randomCharge())
		id++
	}

	for i := 0; i < g.Decays; i++ {
		p1, p2, point := g.decay(pv.Position)
		g.addTrack(ev, id, point, p1, +1)
		id++
		g.addTrack(ev, id, point, p2, -1)
		id++
	}
	return ev
}

// decay picks a parent direction and flight distance from the primary
// vertex and splits it into two oppositely-charged daughters by exact
// two-body kinematics.
func (g *Generator) decay(pv geom.Vec3) (p1, p2, point geom.Vec3) {
	parent := g.randomMomentum(0.5, 3.0)
	flight := 1 + 7*g.rng.Float64() // cm
	point = pv.Add(parent.Unit().Scale(flight))

	estar := g.ParentMass / 2
	pstar := math.Sqrt(estar*estar - g.DaughterMass*g.DaughterMass)
	dir := g.randomDirection()

	p1 = boost(dir.Scale(pstar), estar, parent, g.ParentMass)
	p2 = boost(dir.Scale(-pstar), estar, parent, g.ParentMass)
	return p1, p2, point
}

// addTrack propagates a truth state born at origin through the layers
// outside it, records the smeared clusters, and adds a track carrying
// the smeared beamline perigee state.
func (g *Generator) addTrack(ev *tracking.Event, id int, origin, momentum geom.Vec3, charge int) {
	truth := &tracking.Track{ID: id, Position: origin, Momentum: momentum, Charge: charge}
	born := origin.Perp()

	var silicon, outer []tracking.ClusterKey
	for layer, r := range pixelRadii {
		if key, ok := g.addCluster(ev, truth, born, r, tracking.DetVertexPixels, uint8(layer), g.SiliconRes, g.SiliconRes); ok {
			silicon = append(silicon, key)
		}
	}
	for layer, r := range stripRadii {
		// Strips run along z, so their longitudinal position is barely
		// measured. The fitter ignores strip z; half a centimetre here.
		if key, ok := g.addCluster(ev, truth, born, r, tracking.DetSiliconStrips, uint8(layer), g.SiliconRes, 0.5); ok {
			silicon = append(silicon, key)
		}
	}
	for layer, r := range outerRadii {
		if key, ok := g.addCluster(ev, truth, born, r, tracking.DetGasOuter, uint8(layer), g.OuterResXY, g.OuterResZ); ok {
			outer = append(outer, key)
		}
	}

	perigee, err := g.prop.ToPoint(truth, geom.Vec3{})
	if err != nil {
		perigee = tracking.State{Position: origin, Momentum: momentum}
	}

	const posRes = 0.003 // cm beamline-state resolution
	ev.AddTrack(&tracking.Track{
		ID: id,
		Position: geom.Vec3{
			X: perigee.Position.X + g.rng.NormFloat64()*posRes,
			Y: perigee.Position.Y + g.rng.NormFloat64()*posRes,
			Z: perigee.Position.Z + g.rng.NormFloat64()*posRes,
		},
		Momentum: perigee.Momentum,
		Charge:   charge,
		Quality:  0.5 + 2*g.rng.Float64(),
		Covariance: [9]float64{
			posRes * posRes, 0, 0,
			0, posRes * posRes, 0,
			0, 0, posRes * posRes,
		},
		SiliconKeys: silicon,
		OuterKeys:   outer,
		VertexID:    pvID,
	})
}

// addCluster propagates the truth state to one layer radius and records
// the smeared hit. Layers inside the birth radius leave no hit, and an
// unreachable layer is silently skipped.
func (g *Generator) addCluster(ev *tracking.Event, truth *tracking.Track, born, r float64, det tracking.Detector, layer uint8, resXY, resZ float64) (tracking.ClusterKey, bool) {
	if r <= born {
		return 0, false
	}
	st, err := g.prop.ToCylinder(truth, r)
	if err != nil {
		return 0, false
	}
	key := tracking.NewClusterKey(det, layer, g.clusterSeq)
	g.clusterSeq++
	ev.AddCluster(&tracking.Cluster{
		Key: key,
		Position: geom.Vec3{
			X: st.Position.X + g.rng.NormFloat64()*resXY,
			Y: st.Position.Y + g.rng.NormFloat64()*resXY,
			Z: st.Position.Z + g.rng.NormFloat64()*resZ,
		},
		ADC: 50 + g.rng.Float64()*150,
	})
	return key, true
}

// pvID is the single primary vertex every generated track points at.
const pvID = 0

// randomMomentum draws a momentum with uniform pT in [ptMin, ptMax],
// uniform azimuth, and uniform pseudorapidity in [-1, 1].
func (g *Generator) randomMomentum(ptMin, ptMax float64) geom.Vec3 {
	pt := ptMin + (ptMax-ptMin)*g.rng.Float64()
	phi := 2 * math.Pi * g.rng.Float64()
	eta := 2*g.rng.Float64() - 1
	return geom.Vec3{
		X: pt * math.Cos(phi),
		Y: pt * math.Sin(phi),
		Z: pt * math.Sinh(eta),
	}
}

// randomDirection draws an isotropic unit vector.
func (g *Generator) randomDirection() geom.Vec3 {
	cosTheta := 2*g.rng.Float64() - 1
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	phi := 2 * math.Pi * g.rng.Float64()
	return geom.Vec3{
		X: sinTheta * math.Cos(phi),
		Y: sinTheta * math.Sin(phi),
		Z: cosTheta,
	}
}

func (g *Generator) randomCharge() int {
	if g.rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

// boost transforms a rest-frame momentum with energy estar into the lab
// frame of a parent with the given momentum and mass.
func boost(pstar geom.Vec3, estar float64, parent geom.Vec3, mass float64) geom.Vec3 {
	pmag := parent.Norm()
	if pmag == 0 {
		return pstar
	}
	eparent := math.Sqrt(pmag*pmag + mass*mass)
	gamma := eparent / mass
	beta := pmag / eparent
	n := parent.Scale(1 / pmag)
	ppar := pstar.Dot(n)
	return pstar.Sub(n.Scale(ppar)).Add(n.Scale(gamma * (ppar + beta*estar)))
}
