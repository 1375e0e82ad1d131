// Package models defines data structures for the total return service
package models

import "time"

// BatchKind distinguishes the two export types a brokerage produces.
type BatchKind string

const (
	BatchKindActivity BatchKind = "activity"
	BatchKindHoldings BatchKind = "holdings"
)

// RawRecord is one header-mapped row from an uploaded export file.
// Keys are the file's own column headers; exporters disagree on naming,
// so logical fields are resolved through ordered alias lists at
// normalization time rather than fixed to any one schema.
type RawRecord map[string]string

// RecordBatch is one uploaded export file, parsed into rows.
// Multiple batches of the same kind are merged at read time; overlapping
// files are expected and handled by exact-duplicate collapsing downstream.
type RecordBatch struct {
	ID         string      `json:"id" badgerhold:"key"`
	Kind       BatchKind   `json:"kind" badgerhold:"index"`
	FileName   string      `json:"file_name"`
	UploadedAt time.Time   `json:"uploaded_at"`
	Records    []RawRecord `json:"records"`
}
