// file: internal/database/sqlite_store.go
// version: 1.2.0
// guid: 9b0c1d2e-3f4a-5b6c-7d8e-9f0a1b2c3d4e

package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements the Store interface using SQLite3.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	question TEXT NOT NULL,
	question_normalized TEXT NOT NULL,
	answer TEXT NOT NULL,
	source TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_normalized ON records(question_normalized);
CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at);
`

// NewSQLiteStore creates a new SQLite store at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Reset removes all records. Used by tests and administrative tooling only;
// the core contract is append-only.
func (s *SQLiteStore) Reset() error {
	_, err := s.db.Exec(`DELETE FROM records`)
	return err
}

// InsertRecord appends a record to the corpus. A missing ID or timestamp is
// assigned here so all write paths produce complete records.
func (s *SQLiteStore) InsertRecord(record *Record) error {
	if record.ID == "" {
		id, err := NewULID()
		if err != nil {
			return fmt.Errorf("failed to generate record ID: %w", err)
		}
		record.ID = id
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO records (id, question, question_normalized, answer, source, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.Question, record.QuestionNormalized, record.Answer, record.Source, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// GetAllRecords returns a snapshot of the full corpus ordered by insertion.
func (s *SQLiteStore) GetAllRecords() ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, question, question_normalized, answer, source, created_at FROM records ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetRecordByID returns a single record, or nil if it does not exist.
func (s *SQLiteStore) GetRecordByID(id string) (*Record, error) {
	row := s.db.QueryRow(
		`SELECT id, question, question_normalized, answer, source, created_at FROM records WHERE id = ?`, id,
	)

	var r Record
	err := row.Scan(&r.ID, &r.Question, &r.QuestionNormalized, &r.Answer, &r.Source, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindByNormalizedQuestion returns every record whose normalized question is
// an exact match, newest first. Used for the exact-match fast path.
func (s *SQLiteStore) FindByNormalizedQuestion(normalized string) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, question, question_normalized, answer, source, created_at
		 FROM records WHERE question_normalized = ? ORDER BY created_at DESC, id DESC`,
		normalized,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query records by normalized question: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// CountRecords returns the corpus size.
func (s *SQLiteStore) CountRecords() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Question, &r.QuestionNormalized, &r.Answer, &r.Source, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
