package eventio

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/vertex.report/internal/geom"
	"github.com/banshee-data/vertex.report/internal/tracking"
)

func sampleEvent(run, id int) *tracking.Event {
	ev := tracking.NewEvent(run, id)

	ev.AddVertex(&tracking.Vertex{
		ID:       0,
		Position: geom.Vec3{X: 0.01, Y: -0.02, Z: 3.2},
		NTracks:  2,
	})

	siKeys := []tracking.ClusterKey{
		tracking.NewClusterKey(tracking.DetVertexPixels, 0, 7),
		tracking.NewClusterKey(tracking.DetSiliconStrips, 2, 19),
	}
	outerKeys := []tracking.ClusterKey{
		tracking.NewClusterKey(tracking.DetGasOuter, 0, 101),
		tracking.NewClusterKey(tracking.DetGasOuter, 1, 102),
		tracking.NewClusterKey(tracking.DetGasOuter, 2, 103),
	}

	ev.AddTrack(&tracking.Track{
		ID:          1,
		Position:    geom.Vec3{X: 0.02, Y: -0.01, Z: 3.1},
		Momentum:    geom.Vec3{X: 0.3, Y: 0.5, Z: 0.1},
		Charge:      1,
		Quality:     1.2,
		Covariance:  [9]float64{1e-4, 0, 0, 0, 1e-4, 0, 0, 0, 4e-4},
		SiliconKeys: siKeys,
		OuterKeys:   outerKeys,
		VertexID:    0,
	})
	ev.AddTrack(&tracking.Track{
		ID:         2,
		Position:   geom.Vec3{X: -0.03, Y: 0.02, Z: 3.3},
		Momentum:   geom.Vec3{X: 0.4, Y: -0.5, Z: 0.12},
		Charge:     -1,
		Quality:    2.4,
		Covariance: [9]float64{2e-4, 1e-6, 0, 1e-6, 2e-4, 0, 0, 0, 5e-4},
		OuterKeys:  outerKeys[:2],
		VertexID:   0,
	})

	for i, key := range outerKeys {
		ev.AddCluster(&tracking.Cluster{
			Key:      key,
			Position: geom.Vec3{X: 10 + float64(i), Y: 0.5, Z: 3.4},
			ADC:      120 + float64(i),
		})
	}
	return ev
}

func TestRoundTrip(t *testing.T) {
	want := []*tracking.Event{sampleEvent(1, 42), sampleEvent(1, 43)}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, ev := range want {
		if err := w.Write(ev); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReader(&buf)
	for i, wantEv := range want {
		got, err := r.Read()
		if err != nil {
			t.Fatalf("Read event %d: %v", i, err)
		}
		if diff := cmp.Diff(wantEv, got); diff != "" {
			t.Errorf("event %d round trip mismatch (-want +got):\n%s", i, diff)
		}
	}
	if _, err := r.Read(); err != io.EOF {
		t.Errorf("expected io.EOF after last event, got %v", err)
	}
}

func TestWriterOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for i := 0; i < 3; i++ {
		if err := w.Write(sampleEvent(1, i)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, line := range lines {
		var wire wireEvent
		if err := json.Unmarshal([]byte(line), &wire); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
		if wire.Event != i {
			t.Errorf("line %d: event = %d, want %d", i, wire.Event, i)
		}
	}
}

func TestWriterSortsCollections(t *testing.T) {
	ev := tracking.NewEvent(1, 0)
	for _, id := range []int{5, 1, 3} {
		ev.AddTrack(&tracking.Track{ID: id, Charge: 1})
	}
	for _, id := range []int{2, 0} {
		ev.AddVertex(&tracking.Vertex{ID: id, NTracks: 1})
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Write(ev); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	var wire wireEvent
	if err := json.Unmarshal(buf.Bytes(), &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	gotTracks := []int{wire.Tracks[0].ID, wire.Tracks[1].ID, wire.Tracks[2].ID}
	if gotTracks[0] != 1 || gotTracks[1] != 3 || gotTracks[2] != 5 {
		t.Errorf("track order = %v, want [1 3 5]", gotTracks)
	}
	if wire.Vertices[0].ID != 0 || wire.Vertices[1].ID != 2 {
		t.Errorf("vertex order = [%d %d], want [0 2]", wire.Vertices[0].ID, wire.Vertices[1].ID)
	}
}

func TestWriterNilEvent(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})
	if err := w.Write(nil); err == nil {
		t.Error("expected error for nil event")
	}
}

func TestReaderSkipsBlankLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Write(sampleEvent(1, 7)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	input := "\n\n" + buf.String() + "\n\n"
	r := NewReader(strings.NewReader(input))

	ev, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ev.ID != 7 {
		t.Errorf("event ID = %d, want 7", ev.ID)
	}
	if _, err := r.Read(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReaderMalformedLine(t *testing.T) {
	r := NewReader(strings.NewReader("{not valid json\n"))
	_, err := r.Read()
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("error should name the line: %v", err)
	}
}

func TestReaderEmptyInput(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	if _, err := r.Read(); err != io.EOF {
		t.Errorf("expected io.EOF on empty input, got %v", err)
	}
}
