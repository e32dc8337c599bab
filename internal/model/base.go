package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Money travels as JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Audit records the principal that created and last updated a record.
type Audit struct {
	CreatedBy *uuid.UUID `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	UpdatedBy *uuid.UUID `json:"updatedBy,omitempty" bson:"updated_by,omitempty"`
}

// Operation distinguishes the write that triggered a recompute.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
)

// ListResult is the envelope for collection responses.
type ListResult[T any] struct {
	Docs      []T `json:"docs"`
	TotalDocs int `json:"totalDocs"`
}

func NewListResult[T any](docs []T) ListResult[T] {
	if docs == nil {
		docs = []T{}
	}
	return ListResult[T]{Docs: docs, TotalDocs: len(docs)}
}

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time {
	return &t
}
