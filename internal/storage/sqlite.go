package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"exflow/internal/diag"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNoRun is returned by LatestRun when nothing was stored for a root.
var ErrNoRun = errors.New("no stored run")

var _ FindingStore = (*SQLiteStore)(nil)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			root TEXT,
			started_at INTEGER,
			files INTEGER,
			units INTEGER,
			findings INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS findings (
			run_id TEXT,
			seq INTEGER,
			rule_id TEXT,
			severity TEXT,
			message TEXT,
			file TEXT,
			span JSON,
			unit JSON,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_root ON runs(root, started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_findings_file ON findings(run_id, file);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run Run, findings []diag.Diagnostic) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	run.Findings = len(findings)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, root, started_at, files, units, findings)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			root=excluded.root,
			started_at=excluded.started_at,
			files=excluded.files,
			units=excluded.units,
			findings=excluded.findings
	`, run.ID.String(), run.Root, run.StartedAt.UnixNano(), run.Files, run.Units, run.Findings); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM findings WHERE run_id = ?`, run.ID.String()); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO findings (run_id, seq, rule_id, severity, message, file, span, unit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, d := range findings {
		span, err := json.Marshal(d.Location.Span)
		if err != nil {
			return fmt.Errorf("failed to encode span of finding %d: %w", i, err)
		}
		unit, err := json.Marshal(d.Unit)
		if err != nil {
			return fmt.Errorf("failed to encode unit of finding %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, run.ID.String(), i, d.RuleID, d.Severity.String(), d.Message, d.Location.File, span, unit); err != nil {
			return fmt.Errorf("failed to save finding %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LatestRun(ctx context.Context, root string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, root, started_at, files, units, findings
		FROM runs WHERE root = ?
		ORDER BY started_at DESC LIMIT 1
	`, root)

	var (
		r       Run
		id      string
		started int64
	)
	if err := row.Scan(&id, &r.Root, &started, &r.Files, &r.Units, &r.Findings); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w for %s", ErrNoRun, root)
		}
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt run id %q: %w", id, err)
	}
	r.ID = parsed
	r.StartedAt = time.Unix(0, started)
	return &r, nil
}

func (s *SQLiteStore) Findings(ctx context.Context, runID uuid.UUID) ([]diag.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_id, severity, message, file, span, unit
		FROM findings WHERE run_id = ? ORDER BY seq
	`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFindings(rows)
}

func (s *SQLiteStore) FindingsByFile(ctx context.Context, runID uuid.UUID, file string) ([]diag.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_id, severity, message, file, span, unit
		FROM findings WHERE run_id = ? AND file = ? ORDER BY seq
	`, runID.String(), file)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFindings(rows)
}

func scanFindings(rows *sql.Rows) ([]diag.Diagnostic, error) {
	var out []diag.Diagnostic
	for rows.Next() {
		var (
			d          diag.Diagnostic
			severity   string
			span, unit []byte
		)
		if err := rows.Scan(&d.RuleID, &severity, &d.Message, &d.Location.File, &span, &unit); err != nil {
			return nil, err
		}
		sev, err := diag.ParseSeverity(severity)
		if err != nil {
			return nil, err
		}
		d.Severity = sev
		if err := json.Unmarshal(span, &d.Location.Span); err != nil {
			return nil, fmt.Errorf("corrupt span: %w", err)
		}
		if err := json.Unmarshal(unit, &d.Unit); err != nil {
			return nil, fmt.Errorf("corrupt unit: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
