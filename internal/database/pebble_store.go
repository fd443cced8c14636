// file: internal/database/pebble_store.go
// version: 1.1.0
// guid: 0c1d2e3f-4a5b-6c7d-8e9f-0a1b2c3d4e5f

package database

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/pebble/v2"
)

// PebbleStore implements the Store interface using PebbleDB (LSM key-value store)
//
// Key Schema:
// - record:<id>                    -> Record JSON
// - record:norm:<normalized>:<id>  -> record_id (exact-match lookups)
//
// ULID record IDs are time-ordered, so iterating record:<id> keys yields the
// corpus in rough insertion order. The norm index is append-only like the
// records themselves; multiple records may share one normalized question.
type PebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore creates a new PebbleDB store.
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open PebbleDB: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

// Close closes the database.
func (p *PebbleStore) Close() error {
	return p.db.Close()
}

// Reset removes all records and index entries.
func (p *PebbleStore) Reset() error {
	return p.db.DeleteRange([]byte("record:"), []byte("record;"), pebble.Sync)
}

func recordKey(id string) []byte {
	return []byte("record:" + id)
}

func normIndexKey(normalized, id string) []byte {
	return []byte("record:norm:" + normalized + ":" + id)
}

// InsertRecord appends a record and its normalized-question index entry in
// one atomic batch.
func (p *PebbleStore) InsertRecord(record *Record) error {
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

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	batch := p.db.NewBatch()
	if err := batch.Set(recordKey(record.ID), data, nil); err != nil {
		batch.Close()
		return err
	}
	if err := batch.Set(normIndexKey(record.QuestionNormalized, record.ID), []byte(record.ID), nil); err != nil {
		batch.Close()
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit record: %w", err)
	}
	return nil
}

// GetAllRecords returns a snapshot of the full corpus. The iterator reads a
// consistent view, so concurrent inserts never corrupt an in-flight scan.
func (p *PebbleStore) GetAllRecords() ([]Record, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("record:"),
		UpperBound: []byte("record;"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var records []Record
	for iter.First(); iter.Valid(); iter.Next() {
		// Skip index keys
		if strings.HasPrefix(string(iter.Key()), "record:norm:") {
			continue
		}

		var r Record
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// GetRecordByID returns a single record, or nil if it does not exist.
func (p *PebbleStore) GetRecordByID(id string) (*Record, error) {
	value, closer, err := p.db.Get(recordKey(id))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var r Record
	if err := json.Unmarshal(value, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// FindByNormalizedQuestion returns every record with the given normalized
// question, newest first.
func (p *PebbleStore) FindByNormalizedQuestion(normalized string) ([]Record, error) {
	// The ':' delimiter sorts below every ULID byte, so bumping it to ';'
	// forms a tight upper bound for the prefix scan.
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("record:norm:" + normalized + ":"),
		UpperBound: []byte("record:norm:" + normalized + ";"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var records []Record
	for iter.First(); iter.Valid(); iter.Next() {
		record, err := p.GetRecordByID(string(iter.Value()))
		if err != nil {
			return nil, err
		}
		if record != nil {
			records = append(records, *record)
		}
	}

	// ULID keys iterate oldest first; callers want newest first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// CountRecords returns the corpus size.
func (p *PebbleStore) CountRecords() (int, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("record:"),
		UpperBound: []byte("record;"),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	count := 0
	for iter.First(); iter.Valid(); iter.Next() {
		if strings.HasPrefix(string(iter.Key()), "record:norm:") {
			continue
		}
		count++
	}
	return count, nil
}
