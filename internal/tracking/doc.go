// Package tracking holds the domain data model for the vertex finder:
// reconstructed tracks, primary vertices, hit clusters and their keys,
// the per-event containers that group them, and the capability
// interfaces (Propagator, PositionCorrector, cluster/vertex sources)
// that the finder consumes.
//
// Units follow the detector convention throughout: positions and
// lengths in centimetres, momenta in GeV/c, magnetic field in tesla.
//
// Dependency rule: tracking may import geom and nothing else from this
// module. Subpackages (fit, propagation, vertexing, eventio, storage)
// import tracking; tracking never imports them.
package tracking
