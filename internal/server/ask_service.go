// file: internal/server/ask_service.go
// version: 1.1.0
// guid: 5d6e7f8a-9b0c-1d2e-3f4a-5b6c7d8e9f0a

package server

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/answerbox/answerbox/internal/database"
	"github.com/answerbox/answerbox/internal/engine"
	"github.com/answerbox/answerbox/internal/ocr"
)

// AskService handles query resolution for the HTTP layer
type AskService struct {
	engine *engine.Engine
	ocr    *ocr.Client
}

// NewAskService creates a new ask service
func NewAskService(eng *engine.Engine, ocrClient *ocr.Client) *AskService {
	return &AskService{engine: eng, ocr: ocrClient}
}

// AskRequest is a text query with optional per-request tuning
type AskRequest struct {
	Question   string   `json:"question"`
	Strategies []string `json:"strategies,omitempty"`
	Threshold  float64  `json:"threshold,omitempty"`
}

// AskResponse reports the match decision for a query
type AskResponse struct {
	Matched       bool               `json:"matched"`
	Answer        string             `json:"answer,omitempty"`
	Record        *database.Record   `json:"record,omitempty"`
	Score         float64            `json:"score"`
	Scores        map[string]float64 `json:"scores,omitempty"`
	ExtractedText string             `json:"extracted_text,omitempty"`
	DurationMs    int64              `json:"duration_ms"`
}

// Ask resolves a text query through the matching engine.
func (as *AskService) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	start := time.Now()

	decision, err := as.engine.Match(ctx, req.Question, engine.Options{
		Strategies: req.Strategies,
		Threshold:  req.Threshold,
	})
	if err != nil {
		return nil, err
	}

	resp := &AskResponse{
		Matched:    decision.Matched,
		Record:     decision.Record,
		Score:      decision.Score,
		Scores:     decision.Scores,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if decision.Record != nil {
		resp.Answer = decision.Record.Answer
	}
	return resp, nil
}

// AskImage runs OCR on the image and resolves the extracted text with the
// OCR cleanup pass enabled. Empty extracted text yields a NoMatch response.
func (as *AskService) AskImage(ctx context.Context, image []byte) (*AskResponse, error) {
	start := time.Now()

	text, err := as.ocr.ExtractText(ctx, image)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return &AskResponse{
			Matched:    false,
			DurationMs: time.Since(start).Milliseconds(),
		}, nil
	}

	decision, err := as.engine.Match(ctx, text, engine.Options{OCRCleanup: true})
	if err != nil {
		return nil, err
	}

	resp := &AskResponse{
		Matched:       decision.Matched,
		Record:        decision.Record,
		Score:         decision.Score,
		Scores:        decision.Scores,
		ExtractedText: text,
		DurationMs:    time.Since(start).Milliseconds(),
	}
	if decision.Record != nil {
		resp.Answer = decision.Record.Answer
	}
	return resp, nil
}

// isClientError reports whether the error is the caller's fault rather than
// a backend failure.
func isClientError(err error) bool {
	return errors.Is(err, engine.ErrUnknownStrategy) ||
		errors.Is(err, engine.ErrNoStrategies) ||
		errors.Is(err, engine.ErrEmptyQuestion) ||
		errors.Is(err, engine.ErrInvalidSource) ||
		errors.Is(err, ocr.ErrBadImage) ||
		errors.Is(err, ocr.ErrNotConfigured)
}

func hasTSVName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".tsv")
}
