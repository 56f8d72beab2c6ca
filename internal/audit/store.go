package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store archives records into SQLite so analysis queries do not have to
// re-scan the JSONL trail. Same append-only discipline: inserts only.
type Store struct {
	db *sql.DB
}

// NewStore creates or opens the archive database.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure archive database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize archive schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		ts INTEGER NOT NULL,
		phase TEXT NOT NULL,
		power TEXT NOT NULL,
		kind TEXT NOT NULL,
		raw_input TEXT NOT NULL,
		parse_ok INTEGER NOT NULL,
		extracted_json TEXT,
		final_json TEXT,
		fallback_used INTEGER NOT NULL,
		illegal_dropped INTEGER NOT NULL DEFAULT 0,
		discards_json TEXT,
		silent INTEGER NOT NULL DEFAULT 0,
		reason TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id, seq);
	CREATE INDEX IF NOT EXISTS idx_records_power ON records(power, phase);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append inserts one record. Called under the trail lock.
func (s *Store) Append(rec Record) error {
	extracted, err := json.Marshal(rec.Extracted)
	if err != nil {
		return fmt.Errorf("marshal extracted candidates: %w", err)
	}
	final, err := json.Marshal(rec.FinalResult)
	if err != nil {
		return fmt.Errorf("marshal final result: %w", err)
	}
	discards, err := json.Marshal(rec.Discards)
	if err != nil {
		return fmt.Errorf("marshal discards: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO records (
			id, run_id, seq, ts, phase, power, kind, raw_input, parse_ok,
			extracted_json, final_json, fallback_used, illegal_dropped,
			discards_json, silent, reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Seq, rec.Time, string(rec.Phase),
		string(rec.Power), string(rec.Kind), rec.RawInput, rec.ParseOK,
		string(extracted), string(final), rec.FallbackUsed, rec.Illegal,
		string(discards), rec.Silent, rec.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// CountByKind returns how many records of each kind a run produced.
func (s *Store) CountByKind(runID string) (map[Kind]int, error) {
	rows, err := s.db.Query(
		`SELECT kind, COUNT(*) FROM records WHERE run_id = ? GROUP BY kind`, runID)
	if err != nil {
		return nil, fmt.Errorf("query record counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan record count: %w", err)
		}
		counts[Kind(kind)] = n
	}
	return counts, rows.Err()
}
