package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docs-extractor/constants"
)

// RunSummary is the audit row persisted for one run.
type RunSummary struct {
	ID                  uuid.UUID              `json:"id"`
	Kind                constants.DocumentKind `json:"kind"`
	Source              string                 `json:"source"`
	StartedAt           time.Time              `json:"started_at"`
	FinishedAt          *time.Time             `json:"finished_at,omitempty"`
	Outcome             *string                `json:"outcome,omitempty"`
	ErrorMessage        *string                `json:"error_message,omitempty"`
	SegmentsTotal       int                    `json:"segments_total"`
	SegmentsFailed      int                    `json:"segments_failed"`
	RecordCount         int                    `json:"record_count"`
	MissingFromModel    int                    `json:"missing_from_model"`
	UnexpectedFromModel int                    `json:"unexpected_from_model"`
	Alerts              json.RawMessage        `json:"alerts,omitempty"`
}
