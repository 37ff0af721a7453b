package tracking

import "sort"

// Event groups the per-event input collections: tracks, primary
// vertices, and hit clusters. All are read-shared across the pairwise
// vertex search.
type Event struct {
	Run int
	ID  int

	Tracks   map[int]*Track
	Vertices map[int]*Vertex
	Clusters map[ClusterKey]*Cluster
}

// NewEvent returns an empty event with initialized containers.
func NewEvent(run, id int) *Event {
	return &Event{
		Run:      run,
		ID:       id,
		Tracks:   make(map[int]*Track),
		Vertices: make(map[int]*Vertex),
		Clusters: make(map[ClusterKey]*Cluster),
	}
}

// AddTrack inserts or replaces a track by its ID.
func (ev *Event) AddTrack(tr *Track) { ev.Tracks[tr.ID] = tr }

// AddVertex inserts or replaces a vertex by its ID.
func (ev *Event) AddVertex(v *Vertex) { ev.Vertices[v.ID] = v }

// AddCluster inserts or replaces a cluster by its key.
func (ev *Event) AddCluster(c *Cluster) { ev.Clusters[c.Key] = c }

// TrackIDs returns the event's track identifiers in ascending order.
// The pairwise search iterates this slice, so candidate output is
// reproducible regardless of map layout.
func (ev *Event) TrackIDs() []int {
	ids := make([]int, 0, len(ev.Tracks))
	for id := range ev.Tracks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// VertexIDs returns the event's vertex identifiers in ascending order.
func (ev *Event) VertexIDs() []int {
	ids := make([]int, 0, len(ev.Vertices))
	for id := range ev.Vertices {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ClusterKeys returns the event's cluster keys in ascending order.
func (ev *Event) ClusterKeys() []ClusterKey {
	keys := make([]ClusterKey, 0, len(ev.Clusters))
	for key := range ev.Clusters {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// FindVertex implements VertexSource.
func (ev *Event) FindVertex(id int) (*Vertex, bool) {
	v, ok := ev.Vertices[id]
	return v, ok
}

// FindCluster implements ClusterSource.
func (ev *Event) FindCluster(key ClusterKey) (*Cluster, bool) {
	c, ok := ev.Clusters[key]
	return c, ok
}

var (
	_ VertexSource  = (*Event)(nil)
	_ ClusterSource = (*Event)(nil)
)
