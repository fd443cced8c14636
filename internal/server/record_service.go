// file: internal/server/record_service.go
// version: 1.0.0
// guid: 6e7f8a9b-0c1d-2e3f-4a5b-6c7d8e9f0a1b

package server

import (
	"context"
	"time"

	"github.com/answerbox/answerbox/internal/database"
	"github.com/answerbox/answerbox/internal/engine"
)

// RecordService handles record creation and listing for the HTTP layer
type RecordService struct {
	engine *engine.Engine
	db     database.Store
}

// NewRecordService creates a new record service
func NewRecordService(eng *engine.Engine, db database.Store) *RecordService {
	return &RecordService{engine: eng, db: db}
}

// CreateRecordRequest is a manual question/answer submission
type CreateRecordRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
	Source   string `json:"source,omitempty"`
}

// HealthCheckResponse represents the health check response
type HealthCheckResponse struct {
	Status       string `json:"status"`
	Timestamp    int64  `json:"timestamp"`
	Records      int    `json:"records"`
	PartialError string `json:"partial_error,omitempty"`
}

// Create ingests a record through the engine write path. Source defaults
// to manual.
func (rs *RecordService) Create(ctx context.Context, req CreateRecordRequest) (*database.Record, error) {
	source := req.Source
	if source == "" {
		source = database.SourceManual
	}
	return rs.engine.Ingest(ctx, req.Question, req.Answer, source)
}

// List returns the full corpus.
func (rs *RecordService) List() ([]database.Record, error) {
	return rs.db.GetAllRecords()
}

// Get returns a record by ID, or nil if absent.
func (rs *RecordService) Get(id string) (*database.Record, error) {
	return rs.db.GetRecordByID(id)
}

// HealthResponse builds the health payload. A store error degrades the
// status instead of failing the endpoint.
func (rs *RecordService) HealthResponse() *HealthCheckResponse {
	resp := &HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
	}
	n, err := rs.db.CountRecords()
	if err != nil {
		resp.Status = "degraded"
		resp.PartialError = err.Error()
		return resp
	}
	resp.Records = n
	return resp
}
