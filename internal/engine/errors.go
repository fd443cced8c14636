// file: internal/engine/errors.go
// version: 1.0.0
// guid: 2b3c4d5e-6f7a-8b9c-0d1e-2f3a4b5c6d7e

package engine

import "errors"

var (
	// ErrNoStrategies distinguishes "could not attempt to search" from "no
	// answer found": every requested strategy was disabled or unavailable.
	ErrNoStrategies = errors.New("no matching strategies available")

	// ErrUnknownStrategy is returned for a strategy name outside
	// {lexical, fuzzy, semantic}.
	ErrUnknownStrategy = errors.New("unknown matching strategy")

	// ErrEmptyQuestion rejects ingesting a question that normalizes to the
	// empty string; such a record could never be matched.
	ErrEmptyQuestion = errors.New("question is empty after normalization")

	// ErrInvalidSource rejects a provenance tag outside {manual, ocr, import}.
	ErrInvalidSource = errors.New("invalid record source")
)
