package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/banshee-data/vertex.report/internal/tracking/vertexing"
)

// CandidateStore provides persistence for accepted decay candidates,
// one row per track pair.
type CandidateStore struct {
	db *sql.DB
}

// NewCandidateStore creates a CandidateStore backed by the given database.
func NewCandidateStore(db *sql.DB) *CandidateStore {
	return &CandidateStore{db: db}
}

const insertCandidateSQL = `
	INSERT INTO decay_candidates (
		run_id, run_number, event_number,
		track1_id, track1_x, track1_y, track1_z, track1_px, track1_py, track1_pz,
		track1_eta, track1_charge, track1_quality, track1_outer_hits, track1_has_silicon,
		track1_dca_xy, track1_dca_z, track1_dca_xy_sigma, track1_dca_z_sigma,
		track1_pca_x, track1_pca_y, track1_pca_z,
		track2_id, track2_x, track2_y, track2_z, track2_px, track2_py, track2_pz,
		track2_eta, track2_charge, track2_quality, track2_outer_hits, track2_has_silicon,
		track2_dca_xy, track2_dca_z, track2_dca_xy_sigma, track2_dca_z_sigma,
		track2_pca_x, track2_pca_y, track2_pca_z,
		primary_vertex_id, primary_vertex_x, primary_vertex_y, primary_vertex_z,
		secondary_vertex_x, secondary_vertex_y, secondary_vertex_z,
		pair_dca, invariant_mass, invariant_pt, decay_length
	) VALUES (
		?, ?, ?,
		?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?,
		?, ?, ?, ?,
		?, ?, ?,
		?, ?, ?, ?, ?, ?, ?,
		?, ?, ?, ?, ?,
		?, ?, ?, ?,
		?, ?, ?,
		?, ?, ?, ?,
		?, ?, ?,
		?, ?, ?, ?
	)`

const selectCandidateSQL = `
	SELECT run_number, event_number,
	       track1_id, track1_x, track1_y, track1_z, track1_px, track1_py, track1_pz,
	       track1_eta, track1_charge, track1_quality, track1_outer_hits, track1_has_silicon,
	       track1_dca_xy, track1_dca_z, track1_dca_xy_sigma, track1_dca_z_sigma,
	       track1_pca_x, track1_pca_y, track1_pca_z,
	       track2_id, track2_x, track2_y, track2_z, track2_px, track2_py, track2_pz,
	       track2_eta, track2_charge, track2_quality, track2_outer_hits, track2_has_silicon,
	       track2_dca_xy, track2_dca_z, track2_dca_xy_sigma, track2_dca_z_sigma,
	       track2_pca_x, track2_pca_y, track2_pca_z,
	       primary_vertex_id, primary_vertex_x, primary_vertex_y, primary_vertex_z,
	       secondary_vertex_x, secondary_vertex_y, secondary_vertex_z,
	       pair_dca, invariant_mass, invariant_pt, decay_length
	FROM decay_candidates
	WHERE run_id = ?
	ORDER BY id`

// InsertBatch writes all candidates for a run in a single transaction.
// A failure rolls back every row; the whole batch is retried on
// SQLITE_BUSY.
func (s *CandidateStore) InsertBatch(runID string, cands []vertexing.DecayCandidate) error {
	if len(cands) == 0 {
		return nil
	}
	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin candidate batch: %w", err)
		}
		stmt, err := tx.Prepare(insertCandidateSQL)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("prepare candidate insert: %w", err)
		}
		defer stmt.Close()

		for i := range cands {
			if _, err := stmt.Exec(candidateArgs(runID, &cands[i])...); err != nil {
				tx.Rollback()
				return fmt.Errorf("insert candidate: %w", err)
			}
		}
		return tx.Commit()
	})
}

func candidateArgs(runID string, c *vertexing.DecayCandidate) []interface{} {
	args := make([]interface{}, 0, 52)
	args = append(args, runID, c.Run, c.Event)
	for _, t := range []*vertexing.TrackSummary{&c.Track1, &c.Track2} {
		args = append(args,
			t.TrackID, t.Position.X, t.Position.Y, t.Position.Z,
			t.Momentum.X, t.Momentum.Y, t.Momentum.Z,
			t.Eta, t.Charge, t.Quality, t.OuterHits, t.HasSilicon,
			t.DCA.XY, t.DCA.Z, t.DCA.SigmaXY, t.DCA.SigmaZ,
			t.PCA.X, t.PCA.Y, t.PCA.Z,
		)
	}
	args = append(args,
		c.PrimaryVertexID, c.PrimaryVertex.X, c.PrimaryVertex.Y, c.PrimaryVertex.Z,
		c.SecondaryVertex.X, c.SecondaryVertex.Y, c.SecondaryVertex.Z,
		c.PairDCA, c.InvariantMass, c.InvariantPt, c.DecayLength,
	)
	return args
}

// ListByRun returns all candidates recorded for a run, in insertion
// order.
func (s *CandidateStore) ListByRun(runID string) ([]vertexing.DecayCandidate, error) {
	rows, err := s.db.Query(selectCandidateSQL, runID)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var cands []vertexing.DecayCandidate
	for rows.Next() {
		var c vertexing.DecayCandidate
		dests := []interface{}{&c.Run, &c.Event}
		for _, t := range []*vertexing.TrackSummary{&c.Track1, &c.Track2} {
			dests = append(dests,
				&t.TrackID, &t.Position.X, &t.Position.Y, &t.Position.Z,
				&t.Momentum.X, &t.Momentum.Y, &t.Momentum.Z,
				&t.Eta, &t.Charge, &t.Quality, &t.OuterHits, &t.HasSilicon,
				&t.DCA.XY, &t.DCA.Z, &t.DCA.SigmaXY, &t.DCA.SigmaZ,
				&t.PCA.X, &t.PCA.Y, &t.PCA.Z,
			)
		}
		dests = append(dests,
			&c.PrimaryVertexID, &c.PrimaryVertex.X, &c.PrimaryVertex.Y, &c.PrimaryVertex.Z,
			&c.SecondaryVertex.X, &c.SecondaryVertex.Y, &c.SecondaryVertex.Z,
			&c.PairDCA, &c.InvariantMass, &c.InvariantPt, &c.DecayLength,
		)
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		cands = append(cands, c)
	}
	return cands, rows.Err()
}

// CountByRun returns the number of candidates recorded for a run.
func (s *CandidateStore) CountByRun(runID string) (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM decay_candidates WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count candidates: %w", err)
	}
	return n, nil
}
