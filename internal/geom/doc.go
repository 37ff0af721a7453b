// Package geom provides the analytic-geometry primitives used by the
// vertex finder and the laser calibration: 2D/3D vectors, circle-circle
// intersection in the transverse plane, closest approach of two skew
// lines, and line-circle (cylinder) intersection.
//
// Everything in this package is a pure function over value types; there
// is no state and no I/O. Degenerate inputs (concentric circles,
// parallel or zero-length directions) return empty results or sentinel
// errors rather than fabricated geometry.
//
// Dependency rule: geom depends only on the standard library.
package geom
