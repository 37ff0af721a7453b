// Package eventio streams tracking events as JSON Lines: one event per
// line with its tracks, primary vertices, and clusters.
//
// The wire layer is kept separate from the domain types. Domain structs
// carry no JSON tags; this package owns the flat snake_case wire shape
// and converts in both directions, emitting collections in sorted-ID
// order so identical events serialize to identical bytes.
package eventio
