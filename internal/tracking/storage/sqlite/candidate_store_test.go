package sqlite

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/vertex.report/internal/geom"
	"github.com/banshee-data/vertex.report/internal/tracking/vertexing"
)

// testCandidate builds a fully populated candidate so the round trip
// exercises every persisted column.
func testCandidate(event int) vertexing.DecayCandidate {
	return vertexing.DecayCandidate{
		Run:   7,
		Event: event,
		Track1: vertexing.TrackSummary{
			TrackID:    11,
			Position:   geom.Vec3{X: 0.01, Y: -0.02, Z: 3.5},
			Momentum:   geom.Vec3{X: 0.3, Y: 0.5, Z: 0.1},
			Eta:        0.171,
			Charge:     1,
			Quality:    1.5,
			OuterHits:  34,
			HasSilicon: true,
			DCA:        vertexing.DCA{XY: 0.12, Z: -0.08, SigmaXY: 0.004, SigmaZ: 0.006},
			PCA:        geom.Vec3{X: 2.99, Y: 0.01, Z: 4.01},
		},
		Track2: vertexing.TrackSummary{
			TrackID:    29,
			Position:   geom.Vec3{X: -0.015, Y: 0.03, Z: 3.4},
			Momentum:   geom.Vec3{X: 0.4, Y: -0.5, Z: 0.12},
			Eta:        0.187,
			Charge:     -1,
			Quality:    2.1,
			OuterHits:  41,
			HasSilicon: false,
			DCA:        vertexing.DCA{XY: -0.1, Z: 0.09, SigmaXY: 0.005, SigmaZ: 0.007},
			PCA:        geom.Vec3{X: 3.01, Y: -0.01, Z: 3.99},
		},
		PrimaryVertexID: 3,
		PrimaryVertex:   geom.Vec3{X: 0.002, Y: -0.004, Z: 3.2},
		SecondaryVertex: geom.Vec3{X: 3.0, Y: 0.0, Z: 4.0},
		PairDCA:         0.013,
		InvariantMass:   0.4976,
		InvariantPt:     0.71,
		DecayLength:     5.02,
	}
}

func TestCandidateStore_InsertBatchAndList(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, NewRunStore(db).Insert(&VertexRun{RunID: "run-1", Status: "running"}))

	store := NewCandidateStore(db)
	want := []vertexing.DecayCandidate{testCandidate(100), testCandidate(101)}
	require.NoError(t, store.InsertBatch("run-1", want))

	n, err := store.CountByRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := store.ListByRun("run-1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("candidate round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCandidateStore_EmptyBatch(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, NewRunStore(db).Insert(&VertexRun{RunID: "run-e", Status: "running"}))

	store := NewCandidateStore(db)
	require.NoError(t, store.InsertBatch("run-e", nil))

	n, err := store.CountByRun("run-e")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCandidateStore_UnknownRunRejected(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandidateStore(db)
	err := store.InsertBatch("no-such-run", []vertexing.DecayCandidate{testCandidate(1)})
	require.Error(t, err, "foreign key on run_id should reject orphan candidates")
}

func TestCandidateStore_CountScopedToRun(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	runs := NewRunStore(db)
	require.NoError(t, runs.Insert(&VertexRun{RunID: "run-a", Status: "running"}))
	require.NoError(t, runs.Insert(&VertexRun{RunID: "run-b", Status: "running"}))

	store := NewCandidateStore(db)
	require.NoError(t, store.InsertBatch("run-a", []vertexing.DecayCandidate{testCandidate(1)}))
	require.NoError(t, store.InsertBatch("run-b", []vertexing.DecayCandidate{
		testCandidate(2), testCandidate(3), testCandidate(4),
	}))

	na, err := store.CountByRun("run-a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), na)

	nb, err := store.CountByRun("run-b")
	require.NoError(t, err)
	assert.Equal(t, int64(3), nb)

	listed, err := store.ListByRun("run-b")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, 2, listed[0].Event)
	assert.Equal(t, 4, listed[2].Event)
}
