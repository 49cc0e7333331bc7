// Package aggregate merges per-segment outcomes into one ordered result.
package aggregate

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/joseph-ayodele/docs-extractor/constants"
	"github.com/joseph-ayodele/docs-extractor/internal/entity"
)

// Merge combines outcomes after every segment has finished. Records keep
// segment order then emission order and are numbered 1..N. A segment with no
// surviving records counts as failed.
func Merge(kind constants.DocumentKind, outcomes []entity.SegmentOutcome) entity.Result {
	ordered := slices.Clone(outcomes)
	slices.SortStableFunc(ordered, func(a, b entity.SegmentOutcome) int {
		return a.Index - b.Index
	})

	res := entity.Result{
		Kind:          kind,
		Records:       make([]entity.Record, 0),
		Alerts:        make([]entity.Alert, 0),
		Failures:      make([]entity.Failure, 0),
		SegmentsTotal: len(ordered),
	}

	for _, o := range ordered {
		if res.Title == "" && o.Title != "" {
			res.Title = o.Title
		}

		for _, r := range o.Records {
			rec := r
			rec.Seq = len(res.Records) + 1
			rec.Segment = o.Index
			rec.Fields = maps.Clone(r.Fields)
			if rec.Fields == nil {
				rec.Fields = make(map[string]entity.Value)
			}
			if kind == constants.Invoice {
				rec.Fields[constants.FieldOrderNumber] = entity.Of(rec.Seq)
			}
			rec.References = DedupReferences(r.References)
			res.Records = append(res.Records, rec)
		}

		res.Failures = append(res.Failures, o.Failures...)
		res.Alerts = append(res.Alerts, o.Alerts...)

		if o.Failed() {
			res.SegmentsFailed++
			res.Alerts = append(res.Alerts, entity.Alert{
				Code:    entity.AlertSegmentFailed,
				Segment: o.Index,
				Message: failureMessage(o),
			})
		}
	}

	if res.SegmentsTotal > 0 && res.SegmentsFailed == res.SegmentsTotal {
		res.Alerts = append(res.Alerts, entity.Alert{
			Code:    entity.AlertAllSegmentsFailed,
			Message: fmt.Sprintf("all %d segments failed; no records extracted", res.SegmentsTotal),
		})
	}
	return res
}

// DedupReferences uppercases and trims refs and drops repeats, keeping the
// first occurrence.
func DedupReferences(refs []string) []string {
	out := make([]string, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		key := strings.ToUpper(strings.TrimSpace(r))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func failureMessage(o entity.SegmentOutcome) string {
	switch {
	case o.Err != nil:
		return fmt.Sprintf("segment %d failed: %v", o.Index, o.Err)
	case len(o.Failures) > 0:
		return fmt.Sprintf("segment %d failed: %d records rejected", o.Index, len(o.Failures))
	default:
		return fmt.Sprintf("segment %d failed: no records extracted", o.Index)
	}
}
