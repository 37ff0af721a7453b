package tracking

import "fmt"

// Detector identifies a tracking sub-detector. It occupies the high
// byte of a ClusterKey so keys sort detector-first.
type Detector uint8

const (
	// DetVertexPixels is the innermost silicon pixel detector.
	DetVertexPixels Detector = 1
	// DetSiliconStrips is the intermediate silicon strip detector. Its
	// strips run along z, so strip hits carry poor longitudinal
	// resolution and are excluded from r-z line fits.
	DetSiliconStrips Detector = 2
	// DetGasOuter is the large outer gas tracker providing the bulk of
	// the hits on a track.
	DetGasOuter Detector = 3
)

// String returns a short human-readable detector name.
func (d Detector) String() string {
	switch d {
	case DetVertexPixels:
		return "pixels"
	case DetSiliconStrips:
		return "strips"
	case DetGasOuter:
		return "outer"
	default:
		return fmt.Sprintf("detector(%d)", uint8(d))
	}
}

// ClusterKey is a packed 64-bit hit identifier:
//
//	bits 56-63  detector
//	bits 48-55  layer within the detector
//	bits  0-47  hit index within the layer
type ClusterKey uint64

// NewClusterKey packs a detector, layer, and per-layer hit index into
// a single key.
func NewClusterKey(det Detector, layer uint8, index uint64) ClusterKey {
	return ClusterKey(uint64(det)<<56 | uint64(layer)<<48 | index&0xFFFFFFFFFFFF)
}

// Detector extracts the sub-detector field.
func (k ClusterKey) Detector() Detector { return Detector(k >> 56) }

// Layer extracts the layer field.
func (k ClusterKey) Layer() uint8 { return uint8(k >> 48) }

// Index extracts the per-layer hit index.
func (k ClusterKey) Index() uint64 { return uint64(k) & 0xFFFFFFFFFFFF }

// String formats the key as detector/layer/index for logs.
func (k ClusterKey) String() string {
	return fmt.Sprintf("%s/%d/%d", k.Detector(), k.Layer(), k.Index())
}
