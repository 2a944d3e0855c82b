// Package runlog persists topic reports to a SQLite archive, keyed by
// engine run id and ingest sequence number. It stores only the
// human-readable report artifact spec.md calls out as persistable — never
// particle weights, counts, or assignment-store state — keeping model
// persistence (a declared non-goal) out of scope.
package runlog

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cognicore/olda/pkg/olda/report"
)

// Archive is a SQLite-backed store of topic reports.
type Archive struct {
	db *sql.DB
}

// Open opens (and, if needed, creates) a SQLite archive at path, with WAL
// mode enabled, the same pattern korel/store/sqlite.OpenSQLite uses.
func Open(ctx context.Context, path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("open archive: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open archive: %w", err)
	}

	return &Archive{db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS reports (
	run_id   TEXT NOT NULL,
	seq      INTEGER NOT NULL,
	doc_id   INTEGER NOT NULL,
	retained INTEGER NOT NULL,
	body     TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Record archives the topic report produced after ingesting the seq-th
// document of runID.
func (a *Archive) Record(ctx context.Context, runID string, seq, docID int, retained bool, reports [][]report.TopicWords) error {
	var buf bytes.Buffer
	if err := report.WriteText(&buf, reports); err != nil {
		return fmt.Errorf("record report: %w", err)
	}

	retainedInt := 0
	if retained {
		retainedInt = 1
	}

	_, err := a.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reports (run_id, seq, doc_id, retained, body) VALUES (?, ?, ?, ?, ?)`,
		runID, seq, docID, retainedInt, buf.String())
	if err != nil {
		return fmt.Errorf("record report: %w", err)
	}
	return nil
}

// Replay returns the archived report bodies for runID, ordered by ingest
// sequence number.
func (a *Archive) Replay(ctx context.Context, runID string) ([]string, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT body FROM reports WHERE run_id = ? ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
		out = append(out, body)
	}
	return out, rows.Err()
}
