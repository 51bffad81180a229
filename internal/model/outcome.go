package model

import "github.com/google/uuid"

// OutcomeStatus is the terminal state of a single (asset, profile) export.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "processed"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// ProcessingOutcome is the per-asset result of a batch export. It is created
// once per (asset, profile) pair and never mutated afterwards.
type ProcessingOutcome struct {
	AssetID    uuid.UUID     `json:"asset_id"`
	SourceName string        `json:"source_name"`
	OutputName string        `json:"output_name,omitempty"`
	Status     OutcomeStatus `json:"status"`
	Reason     string        `json:"reason,omitempty"` // set for skipped outcomes
	Error      string        `json:"error,omitempty"`  // set for failed outcomes
}

// Batch status values stored in the repository.
const (
	BatchPending   = "pending"
	BatchProcessed = "processed"
	BatchFailed    = "failed"
)

// Batch is the persisted record of one export request.
type Batch struct {
	ID          uuid.UUID           `json:"id"`
	Profile     string              `json:"profile"`
	Quality     float64             `json:"quality"`
	Status      string              `json:"status"`
	ArchivePath string              `json:"archive_path,omitempty"`
	Outcomes    []ProcessingOutcome `json:"outcomes,omitempty"`
}
