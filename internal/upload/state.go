package upload

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// journalTime sorts lexically in time order.
const journalTime = "2006-01-02T15:04:05.000000000Z"

// StateDB is the offline journal: finished sessions waiting for upload, and
// small sync markers.
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

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS finished_sessions (
		session_id  TEXT PRIMARY KEY,
		plan_name   TEXT NOT NULL DEFAULT '',
		finished_at TEXT NOT NULL,
		sets        INTEGER NOT NULL,
		payload     TEXT NOT NULL,
		uploaded_at TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal table: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sync_state (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sync_state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// SaveSession journals a finished session. Saving the same session again
// replaces it and marks it for upload.
func (s *StateDB) SaveSession(fs models.FinishedSession) error {
	payload, err := json.Marshal(fs)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO finished_sessions (session_id, plan_name, finished_at, sets, payload)
		 VALUES (?, ?, ?, ?, ?)`,
		fs.SessionID.String(), fs.PlanName, fs.FinishedAt.UTC().Format(journalTime), len(fs.Sets), string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", fs.SessionID, err)
	}
	return nil
}

// PendingSessions returns journaled sessions not yet uploaded, oldest first.
func (s *StateDB) PendingSessions() ([]models.FinishedSession, error) {
	rows, err := s.db.Query(
		`SELECT payload FROM finished_sessions WHERE uploaded_at IS NULL ORDER BY finished_at`)
	if err != nil {
		return nil, fmt.Errorf("querying pending sessions: %w", err)
	}
	defer rows.Close()

	var out []models.FinishedSession
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		var fs models.FinishedSession
		if err := json.Unmarshal([]byte(payload), &fs); err != nil {
			return nil, fmt.Errorf("decoding session: %w", err)
		}
		out = append(out, fs)
	}
	return out, rows.Err()
}

// MarkUploaded records that a session reached the server.
func (s *StateDB) MarkUploaded(sessionID uuid.UUID) error {
	_, err := s.db.Exec(
		`UPDATE finished_sessions SET uploaded_at = CURRENT_TIMESTAMP WHERE session_id = ?`,
		sessionID.String(),
	)
	return err
}

// GetSyncState returns the value for key, or "" when unset.
func (s *StateDB) GetSyncState(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM sync_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSyncState stores value under key.
func (s *StateDB) SetSyncState(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sync_state (key, value) VALUES (?, ?)`, key, value)
	return err
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}
