package report

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/roomload/core/calendar"
	"github.com/kilianp07/roomload/core/report"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    begin_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    workdays INTEGER NOT NULL,
    rooms INTEGER NOT NULL,
    failed INTEGER NOT NULL,
    generated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS room_occupancy (
    run_id TEXT NOT NULL REFERENCES runs(run_id),
    room_id TEXT NOT NULL,
    room_name TEXT NOT NULL,
    slot INTEGER NOT NULL,
    fraction REAL NOT NULL,
    failed INTEGER NOT NULL,
    PRIMARY KEY(run_id, room_id, slot)
);`

// SQLiteSink stores every run in a SQLite database so that runs can be
// compared over time.
type SQLiteSink struct {
	path string
	db   *sql.DB
}

// NewSQLiteSink opens or creates the database and ensures the schema.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite sink: path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteSink{path: path, db: db}, nil
}

func (s *SQLiteSink) Location() string { return "sqlite://" + s.path }

// Write inserts the run and its rows in one transaction. Writing the same
// run twice replaces it.
func (s *SQLiteSink) Write(ctx context.Context, r *report.Report) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM room_occupancy WHERE run_id = ?`, r.RunID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO runs
        (run_id, begin_date, end_date, workdays, rooms, failed, generated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, calendar.Format(r.Range.Begin), calendar.Format(r.Range.End),
		r.Workdays, r.Summary.Rooms, r.Summary.Failed, r.GeneratedAt.Unix()); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO room_occupancy
        (run_id, room_id, room_name, slot, fraction, failed) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, row := range r.Rows {
		for slot, v := range row.Occupancy.Map() {
			if _, err = stmt.ExecContext(ctx, r.RunID, row.RoomID, row.RoomName, slot, v, row.Failed); err != nil {
				return fmt.Errorf("insert room %s: %w", row.RoomID, err)
			}
		}
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteSink) Close() error { return s.db.Close() }
