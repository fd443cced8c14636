// file: cmd/root_test.go
// version: 1.1.0
// guid: 7eae8d0c-7fda-4f45-8f73-5d1e0c7c9f1a

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/answerbox/answerbox/internal/config"
	"github.com/answerbox/answerbox/internal/database"
	"github.com/answerbox/answerbox/internal/engine"
	"github.com/answerbox/answerbox/internal/importer"
	"github.com/answerbox/answerbox/internal/matcher"
)

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"ask":     false,
		"add":     false,
		"import":  false,
		"reindex": false,
		"serve":   false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestPersistentFlagsBound(t *testing.T) {
	for _, name := range []string{"config", "db", "db-type", "enable-sqlite3-i-know-the-risks", "index", "ocr-endpoint", "inbox"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag %q not defined", name)
		}
	}
}

func TestInitConfigCreatesDatabaseDirectory(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "db", "test.pebble")

	origCfgFile := cfgFile
	origDBPath := databasePath
	origConfig := config.AppConfig
	defer func() {
		cfgFile = origCfgFile
		databasePath = origDBPath
		config.AppConfig = origConfig
		viper.Reset()
	}()

	cfgFile = filepath.Join(tempDir, "config.yaml")
	databasePath = dbPath

	initConfig()

	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Fatalf("expected database directory to exist: %v", err)
	}
}

func TestImportInboxProcessesFiles(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "round1.csv")
	if err := os.WriteFile(csvPath, []byte("What is the capital of France?,Paris\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := database.NewMockStore()
	eng := engine.New(store, nil, nil, engine.Config{Strategies: []string{matcher.NameLexical}})
	importInbox(importer.New(eng), dir)

	if _, err := os.Stat(csvPath + ".done"); err != nil {
		t.Fatalf("expected processed file to be renamed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Fatalf("expected unrelated file untouched: %v", err)
	}
	if n, err := store.CountRecords(); err != nil || n != 1 {
		t.Fatalf("expected 1 record imported, got %d (err %v)", n, err)
	}
}
