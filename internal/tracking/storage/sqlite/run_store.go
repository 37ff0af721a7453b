package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VertexRun records one invocation of the pair finder over an event
// stream. ParamsJSON holds the serialized finder configuration so the
// run can be reproduced from its row alone.
type VertexRun struct {
	RunID        string          `json:"run_id"`
	CreatedAt    time.Time       `json:"created_at"`
	SourcePath   string          `json:"source_path,omitempty"`
	ParamsJSON   json.RawMessage `json:"params_json,omitempty"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`

	EventsProcessed    int64 `json:"events_processed"`
	PairsConsidered    int64 `json:"pairs_considered"`
	CandidatesAccepted int64 `json:"candidates_accepted"`
	ProcessingTimeMs   int64 `json:"processing_time_ms"`
}

// RunStats carries the totals written when a run completes.
type RunStats struct {
	EventsProcessed    int64
	PairsConsidered    int64
	CandidatesAccepted int64
	ProcessingTimeMs   int64
}

// RunStore provides persistence for vertex runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a RunStore backed by the given database.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// Insert persists a new run. If RunID is empty a UUID is generated; if
// CreatedAt is zero the current time is used.
func (s *RunStore) Insert(run *VertexRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	paramsStr := "{}"
	if len(run.ParamsJSON) > 0 {
		paramsStr = string(run.ParamsJSON)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO vertex_runs (
				run_id, created_at, source_path, params_json, status, error_message,
				events_processed, pairs_considered, candidates_accepted, processing_time_ms
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.CreatedAt.UnixNano(), run.SourcePath, paramsStr,
			run.Status, run.ErrorMessage,
			run.EventsProcessed, run.PairsConsidered, run.CandidatesAccepted, run.ProcessingTimeMs,
		)
		return err
	})
}

// Get returns a single run by ID.
func (s *RunStore) Get(runID string) (*VertexRun, error) {
	row := s.db.QueryRow(`
		SELECT run_id, created_at, source_path, params_json, status, error_message,
		       events_processed, pairs_considered, candidates_accepted, processing_time_ms
		FROM vertex_runs
		WHERE run_id = ?`, runID)

	var (
		run       VertexRun
		createdAt int64
		source    sql.NullString
		params    string
		errMsg    sql.NullString
	)
	err := row.Scan(
		&run.RunID, &createdAt, &source, &params, &run.Status, &errMsg,
		&run.EventsProcessed, &run.PairsConsidered, &run.CandidatesAccepted, &run.ProcessingTimeMs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.CreatedAt = time.Unix(0, createdAt)
	run.SourcePath = source.String
	run.ParamsJSON = json.RawMessage(params)
	run.ErrorMessage = errMsg.String
	return &run, nil
}

// List returns the most recent runs, newest first.
func (s *RunStore) List(limit int) ([]*VertexRun, error) {
	rows, err := s.db.Query(`
		SELECT run_id, created_at, source_path, params_json, status, error_message,
		       events_processed, pairs_considered, candidates_accepted, processing_time_ms
		FROM vertex_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*VertexRun
	for rows.Next() {
		var (
			run       VertexRun
			createdAt int64
			source    sql.NullString
			params    string
			errMsg    sql.NullString
		)
		err := rows.Scan(
			&run.RunID, &createdAt, &source, &params, &run.Status, &errMsg,
			&run.EventsProcessed, &run.PairsConsidered, &run.CandidatesAccepted, &run.ProcessingTimeMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		run.CreatedAt = time.Unix(0, createdAt)
		run.SourcePath = source.String
		run.ParamsJSON = json.RawMessage(params)
		run.ErrorMessage = errMsg.String
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// Complete marks a run as completed and writes its final totals.
func (s *RunStore) Complete(runID string, stats RunStats) error {
	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			UPDATE vertex_runs
			SET status = 'completed',
			    events_processed = ?,
			    pairs_considered = ?,
			    candidates_accepted = ?,
			    processing_time_ms = ?
			WHERE run_id = ?`,
			stats.EventsProcessed, stats.PairsConsidered,
			stats.CandidatesAccepted, stats.ProcessingTimeMs, runID)
		return err
	})
}

// Fail marks a run as failed with an error message.
func (s *RunStore) Fail(runID, errMsg string) error {
	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			UPDATE vertex_runs SET status = 'failed', error_message = ? WHERE run_id = ?`,
			errMsg, runID)
		return err
	})
}
