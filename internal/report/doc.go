// Package report renders vertex search output for humans: a PNG
// heatmap of the pT versus invariant-mass histogram and an interactive
// HTML scatter of the accepted candidates.
package report
