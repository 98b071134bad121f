package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB tracks which sessions have already been exported so the export CLI
// can run incrementally. Completed sessions are immutable, so the set count
// doubles as a cheap consistency check.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS exported_sessions (
		session_id  TEXT PRIMARY KEY,
		set_count   INTEGER NOT NULL,
		exported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsExported checks if a session has already been exported with the same set count.
func (s *StateDB) IsExported(sessionID string, setCount int) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM exported_sessions WHERE session_id = ? AND set_count = ?`,
		sessionID, setCount,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkExported records that a session was successfully exported.
func (s *StateDB) MarkExported(sessionID string, setCount int) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO exported_sessions (session_id, set_count) VALUES (?, ?)`,
		sessionID, setCount,
	)
	return err
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}
