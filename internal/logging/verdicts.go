// Package logging persists per-call verdict provenance to SQLite.
package logging

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS verdict_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	verdict_id    TEXT NOT NULL,
	claim         TEXT NOT NULL,
	label         TEXT NOT NULL,
	confidence    REAL NOT NULL,
	tao_status    TEXT,
	evidence_refs TEXT,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region open
// Open opens (or creates) the verdict log database and runs migrations.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// #endregion open

// #region verdict-entry
// VerdictEntry is a single row in the verdict_log table.
type VerdictEntry struct {
	VerdictID    string
	Claim        string
	Label        string
	Confidence   float64
	TAOStatus    string
	EvidenceRefs string // JSON array of source identifiers
	CreatedAt    time.Time
}

// #endregion verdict-entry

// #region log-verdict
// LogVerdict writes a provenance entry for one pipeline call.
func LogVerdict(db *sql.DB, entry VerdictEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO verdict_log (verdict_id, claim, label, confidence, tao_status, evidence_refs, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.VerdictID,
		entry.Claim,
		entry.Label,
		entry.Confidence,
		nullIfEmpty(entry.TAOStatus),
		nullIfEmpty(entry.EvidenceRefs),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log verdict: %w", err)
	}
	return nil
}

// #endregion log-verdict

// #region recent
// RecentVerdicts returns the newest entries, most recent first.
func RecentVerdicts(db *sql.DB, limit int) ([]VerdictEntry, error) {
	rows, err := db.Query(
		`SELECT verdict_id, claim, label, confidence, tao_status, evidence_refs, created_at
		 FROM verdict_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list verdicts: %w", err)
	}
	defer rows.Close()

	var entries []VerdictEntry
	for rows.Next() {
		var e VerdictEntry
		var taoStatus, evidenceRefs sql.NullString
		var createdStr string
		if err := rows.Scan(&e.VerdictID, &e.Claim, &e.Label, &e.Confidence, &taoStatus, &evidenceRefs, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if taoStatus.Valid {
			e.TAOStatus = taoStatus.String
		}
		if evidenceRefs.Valid {
			e.EvidenceRefs = evidenceRefs.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion recent

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
