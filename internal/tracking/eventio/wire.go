package eventio

import (
	"github.com/banshee-data/vertex.report/internal/geom"
	"github.com/banshee-data/vertex.report/internal/tracking"
)

type wireEvent struct {
	Run      int           `json:"run"`
	Event    int           `json:"event"`
	Vertices []wireVertex  `json:"vertices,omitempty"`
	Tracks   []wireTrack   `json:"tracks,omitempty"`
	Clusters []wireCluster `json:"clusters,omitempty"`
}

type wireTrack struct {
	ID          int        `json:"id"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Z           float64    `json:"z"`
	Px          float64    `json:"px"`
	Py          float64    `json:"py"`
	Pz          float64    `json:"pz"`
	Charge      int        `json:"charge"`
	Quality     float64    `json:"quality"`
	Covariance  [9]float64 `json:"covariance"`
	SiliconKeys []uint64   `json:"silicon_keys,omitempty"`
	OuterKeys   []uint64   `json:"outer_keys,omitempty"`
	VertexID    int        `json:"vertex_id"`
}

type wireVertex struct {
	ID      int     `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	NTracks int     `json:"n_tracks"`
}

type wireCluster struct {
	Key uint64  `json:"key"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
	ADC float64 `json:"adc"`
}

func toWire(ev *tracking.Event) wireEvent {
	w := wireEvent{Run: ev.Run, Event: ev.ID}
	for _, id := range ev.VertexIDs() {
		v := ev.Vertices[id]
		w.Vertices = append(w.Vertices, wireVertex{
			ID: v.ID, X: v.Position.X, Y: v.Position.Y, Z: v.Position.Z,
			NTracks: v.NTracks,
		})
	}
	for _, id := range ev.TrackIDs() {
		tr := ev.Tracks[id]
		w.Tracks = append(w.Tracks, wireTrack{
			ID: tr.ID,
			X:  tr.Position.X, Y: tr.Position.Y, Z: tr.Position.Z,
			Px: tr.Momentum.X, Py: tr.Momentum.Y, Pz: tr.Momentum.Z,
			Charge:      tr.Charge,
			Quality:     tr.Quality,
			Covariance:  tr.Covariance,
			SiliconKeys: keysOut(tr.SiliconKeys),
			OuterKeys:   keysOut(tr.OuterKeys),
			VertexID:    tr.VertexID,
		})
	}
	for _, key := range ev.ClusterKeys() {
		c := ev.Clusters[key]
		w.Clusters = append(w.Clusters, wireCluster{
			Key: uint64(c.Key),
			X:   c.Position.X, Y: c.Position.Y, Z: c.Position.Z,
			ADC: c.ADC,
		})
	}
	return w
}

func fromWire(w wireEvent) *tracking.Event {
	ev := tracking.NewEvent(w.Run, w.Event)
	for _, v := range w.Vertices {
		ev.AddVertex(&tracking.Vertex{
			ID:       v.ID,
			Position: geom.Vec3{X: v.X, Y: v.Y, Z: v.Z},
			NTracks:  v.NTracks,
		})
	}
	for _, t := range w.Tracks {
		ev.AddTrack(&tracking.Track{
			ID:          t.ID,
			Position:    geom.Vec3{X: t.X, Y: t.Y, Z: t.Z},
			Momentum:    geom.Vec3{X: t.Px, Y: t.Py, Z: t.Pz},
			Charge:      t.Charge,
			Quality:     t.Quality,
			Covariance:  t.Covariance,
			SiliconKeys: keysIn(t.SiliconKeys),
			OuterKeys:   keysIn(t.OuterKeys),
			VertexID:    t.VertexID,
		})
	}
	for _, c := range w.Clusters {
		ev.AddCluster(&tracking.Cluster{
			Key:      tracking.ClusterKey(c.Key),
			Position: geom.Vec3{X: c.X, Y: c.Y, Z: c.Z},
			ADC:      c.ADC,
		})
	}
	return ev
}

func keysOut(keys []tracking.ClusterKey) []uint64 {
	if len(keys) == 0 {
		return nil
	}
	out := make([]uint64, len(keys))
	for i, k := range keys {
		out[i] = uint64(k)
	}
	return out
}

func keysIn(keys []uint64) []tracking.ClusterKey {
	if len(keys) == 0 {
		return nil
	}
	out := make([]tracking.ClusterKey, len(keys))
	for i, k := range keys {
		out[i] = tracking.ClusterKey(k)
	}
	return out
}
