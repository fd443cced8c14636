// file: internal/importer/importer.go
// version: 1.0.0
// guid: 7a8b9c0d-1e2f-3a4b-5c6d-7e8f9a0b1c2d

package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/answerbox/answerbox/internal/database"
	"github.com/answerbox/answerbox/internal/engine"
)

// Result summarizes a bulk import run.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Importer feeds question/answer rows through the engine's write path so
// imported records get the same normalization, identity, and indexing as
// manual ones.
type Importer struct {
	engine *engine.Engine
}

// New creates an importer over the given engine.
func New(eng *engine.Engine) *Importer {
	return &Importer{engine: eng}
}

// ImportCSV reads question,answer rows and ingests each with source
// "import". Rows with a missing answer or an unmatchable question are
// skipped and counted; a storage failure aborts the run.
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader) (Result, error) {
	return im.importRows(ctx, newRowReader(r, ','))
}

// ImportTSV is ImportCSV with tab-separated rows.
func (im *Importer) ImportTSV(ctx context.Context, r io.Reader) (Result, error) {
	return im.importRows(ctx, newRowReader(r, '\t'))
}

// ImportFile imports a single CSV or TSV file from disk, picking the
// delimiter from the extension.
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	var result Result
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		result, err = im.ImportTSV(ctx, f)
	} else {
		result, err = im.ImportCSV(ctx, f)
	}
	if err != nil {
		log.Printf("[ERROR] importer: %s failed after %d rows: %v", path, result.Imported, err)
		return result, err
	}
	log.Printf("[INFO] importer: %s imported=%d skipped=%d", path, result.Imported, result.Skipped)
	return result, nil
}

func newRowReader(r io.Reader, comma rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	return reader
}

func (im *Importer) importRows(ctx context.Context, reader *csv.Reader) (Result, error) {
	var result Result
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("reading row %d: %w", line, err)
		}

		if line == 1 && isHeaderRow(row) {
			continue
		}
		if len(row) < 2 || strings.TrimSpace(row[1]) == "" {
			result.Skipped++
			continue
		}

		question := strings.TrimSpace(row[0])
		answer := strings.TrimSpace(row[1])

		_, err = im.engine.Ingest(ctx, question, answer, database.SourceImport)
		if errors.Is(err, engine.ErrEmptyQuestion) {
			result.Skipped++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("ingesting row %d: %w", line, err)
		}
		result.Imported++
	}
	return result, nil
}

func isHeaderRow(row []string) bool {
	return len(row) >= 2 && strings.EqualFold(strings.TrimSpace(row[0]), "question") &&
		strings.EqualFold(strings.TrimSpace(row[1]), "answer")
}
