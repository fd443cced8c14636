// file: internal/database/store.go
// version: 1.3.0
// guid: 8a9b0c1d-2e3f-4a5b-6c7d-8e9f0a1b2c3d

package database

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	ulid "github.com/oklog/ulid/v2"
)

// Record sources. Every record carries the provenance of its question.
const (
	SourceManual = "manual"
	SourceOCR    = "ocr"
	SourceImport = "import"
)

// ErrNotInitialized is returned when the global store is used before
// InitializeStore has run.
var ErrNotInitialized = errors.New("database store not initialized")

// Record is one stored question/answer pair. Records are append-only:
// corrections insert a new record rather than mutating an existing one, and
// the resolver prefers newer records on score ties.
//
// Invariant: QuestionNormalized always equals normalizer.Normalize(Question).
// The engine enforces this on every write path.
type Record struct {
	ID                 string    `json:"id"` // ULID format
	Question           string    `json:"question"`
	QuestionNormalized string    `json:"question_normalized"`
	Answer             string    `json:"answer"`
	Source             string    `json:"source"`
	CreatedAt          time.Time `json:"created_at"`
}

// Store defines the persistence contract for the answer corpus.
// This abstraction supports both PebbleDB (default) and SQLite3 (opt-in),
// plus an in-memory implementation for tests.
type Store interface {
	// Lifecycle
	Close() error
	Reset() error

	// Records (append-only corpus)
	InsertRecord(record *Record) error
	GetAllRecords() ([]Record, error)
	GetRecordByID(id string) (*Record, error)
	FindByNormalizedQuestion(normalized string) ([]Record, error)
	CountRecords() (int, error)
}

// Global store instance
var GlobalStore Store

// NewULID generates a record ID. ULIDs are lexicographically ordered by
// creation time, which keeps corpus iteration roughly chronological.
func NewULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// InitializeStore initializes the database store based on configuration.
func InitializeStore(dbType, path string, enableSQLite bool) error {
	var err error

	switch dbType {
	case "sqlite", "sqlite3":
		if !enableSQLite {
			return fmt.Errorf("SQLite3 is not enabled. To use SQLite3, you must explicitly enable it with --enable-sqlite3-i-know-the-risks or set 'enable_sqlite3_i_know_the_risks: true' in your config file. PebbleDB is the recommended database for production use")
		}
		GlobalStore, err = NewSQLiteStore(path)
		if err != nil {
			return fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
	case "pebble", "":
		// PebbleDB is the default
		GlobalStore, err = NewPebbleStore(path)
		if err != nil {
			return fmt.Errorf("failed to initialize PebbleDB store: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database type: %s (supported: pebble, sqlite)", dbType)
	}

	return nil
}

// CloseStore closes the global store.
func CloseStore() error {
	if GlobalStore != nil {
		return GlobalStore.Close()
	}
	return nil
}
