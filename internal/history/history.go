// Package history persists completed runs to a local SQLite database so
// plans generated for a client stay reviewable and diffable later. History
// is strictly write-after-the-fact: a failed run records nothing, and a
// history failure never invalidates an already-published artifact set.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"modplan/internal/errors"
	"modplan/internal/logging"
	"modplan/internal/output"
	"modplan/internal/plan"
)

// Store wraps the run-history database.
type Store struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Run is one recorded run summary.
type Run struct {
	RunID           string    `json:"run_id"`
	CreatedAt       time.Time `json:"created_at"`
	ProjectID       string    `json:"project_id"`
	ClientName      string    `json:"client_name,omitempty"`
	Edition         string    `json:"edition"`
	PlatformVersion string    `json:"platform_version"`
	RegistrySource  string    `json:"registry_source"`
	ModuleCount     int       `json:"module_count"`
	ArtifactDir     string    `json:"artifact_dir"`
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id           TEXT PRIMARY KEY,
	created_at       TEXT NOT NULL,
	project_id       TEXT NOT NULL,
	client_name      TEXT NOT NULL DEFAULT '',
	edition          TEXT NOT NULL,
	platform_version TEXT NOT NULL,
	registry_source  TEXT NOT NULL,
	module_count     INTEGER NOT NULL,
	artifact_dir     TEXT NOT NULL,
	plan_json        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project_id, created_at);
`

// Open opens or creates the history database under dir (usually .modplan).
func Open(dir string, logger *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New(errors.HistoryUnavailable, errors.StageHistory,
			fmt.Sprintf("cannot create %s", dir), err)
	}
	dbPath := filepath.Join(dir, "modplan.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.New(errors.HistoryUnavailable, errors.StageHistory,
			"cannot open history database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, errors.New(errors.HistoryUnavailable, errors.StageHistory,
				"cannot set pragma", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, errors.New(errors.HistoryUnavailable, errors.StageHistory,
			"cannot initialize history schema", err)
	}

	return &Store{conn: conn, logger: logger, dbPath: dbPath}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Record persists a completed run and its plan.
func (s *Store) Record(run Run, p *plan.Plan) error {
	planJSON, err := output.DeterministicEncode(p)
	if err != nil {
		return errors.New(errors.HistoryUnavailable, errors.StageHistory, "cannot encode plan", err)
	}

	_, err = s.conn.Exec(`
		INSERT INTO runs (run_id, created_at, project_id, client_name, edition,
			platform_version, registry_source, module_count, artifact_dir, plan_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.CreatedAt.UTC().Format(time.RFC3339),
		run.ProjectID,
		run.ClientName,
		run.Edition,
		run.PlatformVersion,
		run.RegistrySource,
		run.ModuleCount,
		run.ArtifactDir,
		string(planJSON),
	)
	if err != nil {
		return errors.New(errors.HistoryUnavailable, errors.StageHistory, "cannot record run", err)
	}

	s.logger.Debug("Run recorded", map[string]interface{}{
		"run_id":  run.RunID,
		"project": run.ProjectID,
	})
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(`
		SELECT run_id, created_at, project_id, client_name, edition,
			platform_version, registry_source, module_count, artifact_dir
		FROM runs ORDER BY created_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.New(errors.HistoryUnavailable, errors.StageHistory, "cannot list runs", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(&run.RunID, &createdAt, &run.ProjectID, &run.ClientName,
			&run.Edition, &run.PlatformVersion, &run.RegistrySource,
			&run.ModuleCount, &run.ArtifactDir); err != nil {
			return nil, errors.New(errors.HistoryUnavailable, errors.StageHistory, "cannot scan run", err)
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns one recorded run and its stored plan.
func (s *Store) Get(runID string) (*Run, *plan.Plan, error) {
	row := s.conn.QueryRow(`
		SELECT run_id, created_at, project_id, client_name, edition,
			platform_version, registry_source, module_count, artifact_dir, plan_json
		FROM runs WHERE run_id = ?`, runID)

	var run Run
	var createdAt, planJSON string
	err := row.Scan(&run.RunID, &createdAt, &run.ProjectID, &run.ClientName,
		&run.Edition, &run.PlatformVersion, &run.RegistrySource,
		&run.ModuleCount, &run.ArtifactDir, &planJSON)
	if err == sql.ErrNoRows {
		return nil, nil, errors.New(errors.HistoryUnavailable, errors.StageHistory,
			fmt.Sprintf("run %s not found", runID), nil)
	}
	if err != nil {
		return nil, nil, errors.New(errors.HistoryUnavailable, errors.StageHistory, "cannot read run", err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	var p plan.Plan
	if err := json.Unmarshal([]byte(planJSON), &p); err != nil {
		return nil, nil, errors.New(errors.HistoryUnavailable, errors.StageHistory, "stored plan is corrupt", err)
	}
	return &run, &p, nil
}
