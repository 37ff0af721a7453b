package eventio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/vertex.report/internal/tracking"
)

// Writer streams events to an output, one JSON object per line.
type Writer struct {
	bw  *bufio.Writer
	enc *json.Encoder
}

// NewWriter returns a Writer on w. Output is buffered; call Flush
// before closing the underlying writer.
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	return &Writer{bw: bw, enc: json.NewEncoder(bw)}
}

// Write appends one event as a single line.
func (w *Writer) Write(ev *tracking.Event) error {
	if ev == nil {
		return fmt.Errorf("eventio: nil event")
	}
	return w.enc.Encode(toWire(ev))
}

// Flush writes any buffered lines to the underlying writer.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}
