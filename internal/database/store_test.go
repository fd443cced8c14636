// file: internal/database/store_test.go
// version: 1.1.0
// guid: 2e3f4a5b-6c7d-8e9f-0a1b-2c3d4e5f6a7b

package database

import (
	"path/filepath"
	"testing"
	"time"
)

// openTestStores builds one of each persistent store implementation under a
// temp directory.
func openTestStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := NewSQLiteStore(filepath.Join(dir, "corpus.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	pebbleStore, err := NewPebbleStore(filepath.Join(dir, "corpus.pebble"))
	if err != nil {
		t.Fatalf("NewPebbleStore: %v", err)
	}
	t.Cleanup(func() { pebbleStore.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"pebble": pebbleStore,
		"mock":   NewMockStore(),
	}
}

func TestStore_InsertAndFetch(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			rec := &Record{
				Question:           "What is the capital of France?",
				QuestionNormalized: "what is the capital of france",
				Answer:             "Paris",
				Source:             SourceManual,
			}
			if err := store.InsertRecord(rec); err != nil {
				t.Fatalf("InsertRecord: %v", err)
			}
			if rec.ID == "" {
				t.Fatal("InsertRecord did not assign an ID")
			}
			if rec.CreatedAt.IsZero() {
				t.Fatal("InsertRecord did not assign a timestamp")
			}

			all, err := store.GetAllRecords()
			if err != nil {
				t.Fatalf("GetAllRecords: %v", err)
			}
			if len(all) != 1 {
				t.Fatalf("expected 1 record, got %d", len(all))
			}
			if all[0].Answer != "Paris" {
				t.Errorf("unexpected answer %q", all[0].Answer)
			}

			got, err := store.GetRecordByID(rec.ID)
			if err != nil {
				t.Fatalf("GetRecordByID: %v", err)
			}
			if got == nil || got.Question != rec.Question {
				t.Errorf("GetRecordByID returned %+v", got)
			}

			n, err := store.CountRecords()
			if err != nil || n != 1 {
				t.Errorf("CountRecords = %d, %v", n, err)
			}
		})
	}
}

func TestStore_GetRecordByID_Missing(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.GetRecordByID("01K00000000000000000000000")
			if err != nil {
				t.Fatalf("GetRecordByID: %v", err)
			}
			if got != nil {
				t.Errorf("expected nil for missing record, got %+v", got)
			}
		})
	}
}

func TestStore_FindByNormalizedQuestion(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
			older := &Record{
				Question:           "How do I reset my password?",
				QuestionNormalized: "how do i reset my password",
				Answer:             "Use the old portal",
				Source:             SourceImport,
				CreatedAt:          base,
			}
			newer := &Record{
				Question:           "How do I reset my password???",
				QuestionNormalized: "how do i reset my password",
				Answer:             "Use the new portal",
				Source:             SourceManual,
				CreatedAt:          base.Add(time.Hour),
			}
			other := &Record{
				Question:           "Unrelated",
				QuestionNormalized: "unrelated",
				Answer:             "n/a",
				Source:             SourceManual,
				CreatedAt:          base,
			}
			for _, r := range []*Record{older, newer, other} {
				if err := store.InsertRecord(r); err != nil {
					t.Fatalf("InsertRecord: %v", err)
				}
			}

			matches, err := store.FindByNormalizedQuestion("how do i reset my password")
			if err != nil {
				t.Fatalf("FindByNormalizedQuestion: %v", err)
			}
			if len(matches) != 2 {
				t.Fatalf("expected 2 matches, got %d", len(matches))
			}
			// Newest first
			if matches[0].Answer != "Use the new portal" {
				t.Errorf("expected newest record first, got %q", matches[0].Answer)
			}

			none, err := store.FindByNormalizedQuestion("no such question")
			if err != nil {
				t.Fatalf("FindByNormalizedQuestion: %v", err)
			}
			if len(none) != 0 {
				t.Errorf("expected no matches, got %d", len(none))
			}
		})
	}
}

func TestStore_Reset(t *testing.T) {
	for name, store := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			rec := &Record{
				Question:           "q",
				QuestionNormalized: "q",
				Answer:             "a",
				Source:             SourceManual,
			}
			if err := store.InsertRecord(rec); err != nil {
				t.Fatalf("InsertRecord: %v", err)
			}
			if err := store.Reset(); err != nil {
				t.Fatalf("Reset: %v", err)
			}
			n, err := store.CountRecords()
			if err != nil || n != 0 {
				t.Errorf("CountRecords after Reset = %d, %v", n, err)
			}
		})
	}
}

func TestInitializeStore_SQLiteRequiresOptIn(t *testing.T) {
	err := InitializeStore("sqlite", filepath.Join(t.TempDir(), "x.db"), false)
	if err == nil {
		t.Fatal("expected error when SQLite is not enabled")
	}
}

func TestInitializeStore_UnknownType(t *testing.T) {
	if err := InitializeStore("bigquery", "x", false); err == nil {
		t.Fatal("expected error for unsupported database type")
	}
}

func TestNewULID_Ordered(t *testing.T) {
	a, err := NewULID()
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	b, err := NewULID()
	if err != nil {
		t.Fatal(err)
	}
	if a >= b {
		t.Errorf("expected ULIDs to be time-ordered: %s >= %s", a, b)
	}
}
