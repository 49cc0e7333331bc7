package entity

import (
	"github.com/joseph-ayodele/docs-extractor/constants"
)

// Record is one validated extraction record: an invoice line or a deed
// inventory item.
type Record struct {
	Kind       constants.DocumentKind `json:"kind"`
	Seq        int                    `json:"seq"`
	Segment    int                    `json:"segment"`
	Fields     map[string]Value       `json:"fields"`
	References []string               `json:"references,omitempty"`
	Regime     constants.Regime       `json:"regime,omitempty"`
}

// Field returns the named field, absent when the record does not carry it.
func (r Record) Field(key string) Value {
	return r.Fields[key]
}

// FailureKind classifies a per-record or per-segment failure.
type FailureKind string

const (
	FailureMissingFields FailureKind = "MISSING_FIELDS"
	FailureInvalidAmount FailureKind = "INVALID_AMOUNT"
	FailureInvalidField  FailureKind = "INVALID_FIELD"
	FailureRecovery      FailureKind = "RECOVERY_FAILURE"
	FailureGateway       FailureKind = "GATEWAY_ERROR"
)

// Failure records something that was dropped. Record is the index of the
// record within its segment, or -1 when the whole segment is affected.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Segment int         `json:"segment"`
	Record  int         `json:"record"`
	Detail  string      `json:"detail"`
}

// AlertCode identifies where an alert came from.
type AlertCode string

const (
	AlertModelReported     AlertCode = "MODEL_REPORTED"
	AlertSegmentFailed     AlertCode = "SEGMENT_FAILED"
	AlertAllSegmentsFailed AlertCode = "ALL_SEGMENTS_FAILED"
)

// Alert is a human-readable note attached to a result. Segment is 0 for
// run-level alerts.
type Alert struct {
	Code    AlertCode `json:"code"`
	Segment int       `json:"segment,omitempty"`
	Message string    `json:"message"`
}
