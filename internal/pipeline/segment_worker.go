package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/docs-extractor/constants"
	"github.com/joseph-ayodele/docs-extractor/internal/entity"
	"github.com/joseph-ayodele/docs-extractor/internal/llm"
	"github.com/joseph-ayodele/docs-extractor/internal/segment"
	"github.com/joseph-ayodele/docs-extractor/internal/validate"
)

// processSegment never fails: every problem ends up in the outcome.
func (p *Pipeline) processSegment(ctx context.Context, log *slog.Logger, seg segment.Segment) entity.SegmentOutcome {
	log = log.With("segment", seg.Index, "offset", seg.Start)
	out := entity.SegmentOutcome{Index: seg.Index}
	start := time.Now()

	raw, err := p.invoke(ctx, seg)
	if err != nil {
		ge := llm.AsGatewayError(err)
		out.Err = ge
		out.Failures = append(out.Failures, entity.Failure{
			Kind:    entity.FailureGateway,
			Segment: seg.Index,
			Record:  -1,
			Detail:  ge.Error(),
		})
		log.Warn("pipeline.segment.gateway_error",
			"error", ge,
			"timeout", errors.Is(err, context.DeadlineExceeded),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return out
	}

	log.Debug("pipeline.run.state", "state", constants.RunStateRecovering)
	payload, err := llm.RecoverRecords(raw, p.kind)
	if err != nil {
		out.Err = err
		out.Failures = append(out.Failures, entity.Failure{
			Kind:    entity.FailureRecovery,
			Segment: seg.Index,
			Record:  -1,
			Detail:  err.Error(),
		})
		log.Warn("pipeline.segment.no_payload", "error", err, "bytes", len(raw))
		return out
	}

	out.Title = payload.Title
	for _, a := range payload.Alerts {
		out.Alerts = append(out.Alerts, entity.Alert{
			Code:    entity.AlertModelReported,
			Segment: seg.Index,
			Message: a,
		})
	}

	log.Debug("pipeline.run.state", "state", constants.RunStateValidating)
	for i, item := range payload.Items {
		if m, ok := item.(map[string]any); ok {
			item = llm.SanitizeRecord(m, p.kind, p.validator.Schema().AmountField, log)
		}
		rec, err := p.validator.Validate(item)
		if err != nil {
			out.Failures = append(out.Failures, entity.Failure{
				Kind:    failureKind(err),
				Segment: seg.Index,
				Record:  i,
				Detail:  err.Error(),
			})
			log.Info("pipeline.segment.record_rejected", "record", i, "error", err)
			continue
		}
		rec.Segment = seg.Index
		out.Records = append(out.Records, rec)
	}

	log.Info("pipeline.segment.ok",
		"records", len(out.Records),
		"rejected", len(out.Failures),
		"alerts", len(out.Alerts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out
}

type invokeResult struct {
	raw string
	err error
}

// invoke bounds one gateway call by the call timeout even when the gateway
// ignores its context, and turns a gateway panic into an error.
func (p *Pipeline) invoke(ctx context.Context, seg segment.Segment) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	done := make(chan invokeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- invokeResult{err: fmt.Errorf("gateway panic: %v", r)}
			}
		}()
		raw, err := p.gateway.Invoke(callCtx, p.prompt, seg.Prompt())
		done <- invokeResult{raw: raw, err: err}
	}()

	select {
	case r := <-done:
		return r.raw, r.err
	case <-callCtx.Done():
		return "", &llm.GatewayError{Err: callCtx.Err()}
	}
}

func failureKind(err error) entity.FailureKind {
	var (
		missing *validate.MissingFieldsError
		amount  *validate.InvalidAmountError
	)
	switch {
	case errors.As(err, &missing):
		return entity.FailureMissingFields
	case errors.As(err, &amount):
		return entity.FailureInvalidAmount
	default:
		return entity.FailureInvalidField
	}
}
