// file: internal/database/mock.go
// version: 1.0.0
// guid: 1d2e3f4a-5b6c-7d8e-9f0a-1b2c3d4e5f6a

package database

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory Store for tests. Reads return copies so a
// snapshot taken by one goroutine is never affected by concurrent inserts,
// matching the snapshot-read discipline of the real stores.
type MockStore struct {
	mu      sync.RWMutex
	records map[string]Record

	// InsertErr, if set, is returned by InsertRecord to simulate storage
	// failures.
	InsertErr error
	// FetchErr, if set, is returned by the read methods.
	FetchErr error
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{records: make(map[string]Record)}
}

// Close is a no-op.
func (m *MockStore) Close() error { return nil }

// Reset removes all records.
func (m *MockStore) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]Record)
	return nil
}

// InsertRecord appends a record.
func (m *MockStore) InsertRecord(record *Record) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	if record.ID == "" {
		id, err := NewULID()
		if err != nil {
			return err
		}
		record.ID = id
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[record.ID]; exists {
		return fmt.Errorf("duplicate record ID %s", record.ID)
	}
	m.records[record.ID] = *record
	return nil
}

// GetAllRecords returns a copy of the corpus ordered by ID.
func (m *MockStore) GetAllRecords() ([]Record, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// GetRecordByID returns a record copy, or nil if absent.
func (m *MockStore) GetRecordByID(id string) (*Record, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// FindByNormalizedQuestion returns exact normalized matches, newest first.
func (m *MockStore) FindByNormalizedQuestion(normalized string) ([]Record, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []Record
	for _, r := range m.records {
		if r.QuestionNormalized == normalized {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})
	return records, nil
}

// CountRecords returns the corpus size.
func (m *MockStore) CountRecords() (int, error) {
	if m.FetchErr != nil {
		return 0, m.FetchErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}
