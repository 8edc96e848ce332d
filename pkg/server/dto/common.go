// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// MaxTextLength bounds ingested text bodies.
const MaxTextLength = 100_000

// ErrTextTooLong is returned when an ingest body exceeds MaxTextLength.
var ErrTextTooLong = errors.New("text exceeds maximum length")

// ObserveRequest records one streaming entity sighting.
type ObserveRequest struct {
	Label     string     `json:"label" binding:"required"`
	Type      string     `json:"type" binding:"required"`
	Context   string     `json:"context,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Validate performs validation on ObserveRequest
func (r *ObserveRequest) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return errors.New("label cannot be empty")
	}
	if strings.TrimSpace(r.Type) == "" {
		return errors.New("type cannot be empty")
	}
	return nil
}

// At returns the observation time, defaulting to now.
func (r *ObserveRequest) At() time.Time {
	if r.Timestamp != nil {
		return *r.Timestamp
	}
	return time.Now()
}

// IngestTextRequest asks the engine to extract and merge free text.
type IngestTextRequest struct {
	Text       string `json:"text" binding:"required"`
	SourceKind string `json:"source_kind,omitempty"`
	SourceID   string `json:"source_id,omitempty"`
}

// Validate performs validation on IngestTextRequest
func (r *IngestTextRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return errors.New("text cannot be empty")
	}
	if len(r.Text) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}

// Source builds the provenance info for the request.
func (r *IngestTextRequest) Source() types.SourceInfo {
	kind := r.SourceKind
	if kind == "" {
		kind = "api"
	}
	return types.SourceInfo{Kind: kind, ID: r.SourceID, Timestamp: time.Now()}
}

// IngestBatchRequest merges a pre-extracted batch directly.
type IngestBatchRequest struct {
	Batch types.ExtractionResult `json:"batch" binding:"required"`
}

// Validate performs validation on IngestBatchRequest
func (r *IngestBatchRequest) Validate() error {
	if r.Batch.Empty() {
		return errors.New("batch cannot be empty")
	}
	return nil
}

// Result represents a generic API result
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
