package eventio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/vertex.report/internal/tracking"
)

// maxLineBytes bounds a single event line. Full events carry every
// cluster of every track, so the default scanner token size is far too
// small.
const maxLineBytes = 16 << 20

// Reader streams events from JSON Lines input. Blank lines are
// skipped; a malformed line fails with its line number.
type Reader struct {
	scan *bufio.Scanner
	line int
}

// NewReader returns a Reader on r.
func NewReader(r io.Reader) *Reader {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Reader{scan: scan}
}

// Read returns the next event, or io.EOF at end of input.
func (r *Reader) Read() (*tracking.Event, error) {
	for r.scan.Scan() {
		r.line++
		line := bytes.TrimSpace(r.scan.Bytes())
		if len(line) == 0 {
			continue
		}
		var w wireEvent
		if err := json.Unmarshal(line, &w); err != nil {
			return nil, fmt.Errorf("eventio: line %d: %w", r.line, err)
		}
		return fromWire(w), nil
	}
	if err := r.scan.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
