// Package calib reconstructs the space-charge distortion of the outer
// gas tracker from direct laser tracks.
//
// Laser tracks are straight lines of known origin and direction fired
// through the gas volume. Hits near each track are clustered per layer
// into ADC-weighted centroids, and the centroid residuals against the
// track crossing feed per-cell normal equations on a (phi, r, z) grid.
// Solving each cell yields the local (r·dphi, dz, dr) distortion, which
// DistortionCorrector then subtracts from measured cluster positions
// before track fitting.
package calib
