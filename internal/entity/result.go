package entity

import (
	"strings"
	"time"

	"github.com/joseph-ayodele/docs-extractor/constants"
)

// Document is the ordered page text of one input file.
type Document struct {
	Source string
	Pages  []string
}

// Text joins the pages with a newline.
func (d Document) Text() string {
	return strings.Join(d.Pages, "\n")
}

// Empty reports whether the document carries no non-whitespace text.
func (d Document) Empty() bool {
	for _, p := range d.Pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

// SegmentOutcome is everything one worker produced for one segment.
type SegmentOutcome struct {
	Index    int
	Records  []Record
	Failures []Failure
	Alerts   []Alert
	// Title is the deed type the segment reported, if any.
	Title string
	// Err is the gateway or recovery error that ended the segment early.
	Err error
}

// Failed reports whether the segment contributed no records.
func (o SegmentOutcome) Failed() bool {
	return len(o.Records) == 0
}

// CrossValidationReport compares model-claimed references with the ones
// found lexically in the source text.
type CrossValidationReport struct {
	MissingFromModel    []string `json:"missing_from_model"`
	UnexpectedFromModel []string `json:"unexpected_from_model"`
}

// Clean reports whether both sides agree.
func (r CrossValidationReport) Clean() bool {
	return len(r.MissingFromModel) == 0 && len(r.UnexpectedFromModel) == 0
}

// Result is the merged output of one run.
type Result struct {
	RunID          string                 `json:"run_id"`
	Kind           constants.DocumentKind `json:"kind"`
	Title          string                 `json:"title,omitempty"`
	Records        []Record               `json:"records"`
	Alerts         []Alert                `json:"alerts"`
	Failures       []Failure              `json:"failures"`
	SegmentsTotal  int                    `json:"segments_total"`
	SegmentsFailed int                    `json:"segments_failed"`
	CrossCheck     CrossValidationReport  `json:"cross_check"`
	StartedAt      time.Time              `json:"started_at"`
	FinishedAt     time.Time              `json:"finished_at"`
}

// Outcome summarizes the segment counters.
func (r Result) Outcome() constants.RunOutcome {
	switch {
	case r.SegmentsTotal > 0 && r.SegmentsFailed == r.SegmentsTotal:
		return constants.RunFailed
	case r.SegmentsFailed > 0:
		return constants.RunPartial
	default:
		return constants.RunSucceeded
	}
}
