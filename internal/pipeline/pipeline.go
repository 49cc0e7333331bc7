// Package pipeline runs one document through segmentation, per-segment model
// extraction, recovery and validation, then merges and cross-checks the
// results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/docs-extractor/constants"
	"github.com/joseph-ayodele/docs-extractor/internal/aggregate"
	"github.com/joseph-ayodele/docs-extractor/internal/common"
	"github.com/joseph-ayodele/docs-extractor/internal/crosscheck"
	"github.com/joseph-ayodele/docs-extractor/internal/entity"
	"github.com/joseph-ayodele/docs-extractor/internal/llm"
	"github.com/joseph-ayodele/docs-extractor/internal/segment"
	"github.com/joseph-ayodele/docs-extractor/internal/validate"
)

var (
	// ErrEmptyInput is returned for a document with no text.
	ErrEmptyInput = errors.New("empty input document")
	// ErrRunCancelled wraps the context error of a run cancelled under CancelDiscard.
	ErrRunCancelled = errors.New("run cancelled")
)

// Pipeline is configured once per document kind and may run many documents.
// It holds no per-run state.
type Pipeline struct {
	gateway   llm.Gateway
	kind      constants.DocumentKind
	validator *validate.Validator
	scanner   *crosscheck.Scanner
	segmenter segment.Segmenter

	prompt       string
	workers      int
	callTimeout  time.Duration
	cancelPolicy CancelPolicy
	pattern      crosscheck.Pattern
	logger       *slog.Logger
}

func New(gw llm.Gateway, kind constants.DocumentKind, opts ...Option) (*Pipeline, error) {
	if gw == nil {
		return nil, errors.New("pipeline: nil gateway")
	}
	p := &Pipeline{
		gateway:      gw,
		kind:         kind,
		segmenter:    segment.Segmenter{Max: segment.DefaultMaxChars},
		prompt:       llm.PromptFor(kind),
		workers:      4,
		callTimeout:  60 * time.Second,
		cancelPolicy: CancelDiscard,
		pattern:      crosscheck.PatternStrict,
		logger:       slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}

	switch p.cancelPolicy {
	case CancelDiscard, CancelBestEffort:
	default:
		return nil, fmt.Errorf("pipeline: unknown cancel policy %q", p.cancelPolicy)
	}

	v, err := validate.ForKind(kind)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	p.validator = v

	s, err := crosscheck.NewScanner(p.pattern)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	p.scanner = s
	return p, nil
}

func (p *Pipeline) Kind() constants.DocumentKind {
	return p.kind
}

// Run processes doc. Below the run level every problem becomes bookkeeping
// in the result; Run itself fails only for empty input or, under
// CancelDiscard, a cancelled context.
func (p *Pipeline) Run(ctx context.Context, doc entity.Document) (entity.Result, error) {
	runID := common.RunIDFromContext(ctx)
	if runID == "" {
		runID = common.NewRunID()
		ctx = common.WithRunID(ctx, runID)
	}
	log := p.logger.With("run_id", runID, "kind", p.kind)
	started := time.Now()

	p.transition(log, constants.RunStateInit)
	if doc.Empty() {
		log.Warn("pipeline.run.empty_input", "source", doc.Source)
		return entity.Result{}, ErrEmptyInput
	}
	text := doc.Text()

	p.transition(log, constants.RunStateSegmenting)
	segs := p.segmenter.Split(text)
	log.Info("pipeline.run.segmented", "segments", len(segs), "chars", len([]rune(text)))

	p.transition(log, constants.RunStateExtracting)
	outcomes := make([]entity.SegmentOutcome, len(segs))
	finished := make([]bool, len(segs))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, seg := range segs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes[i] = p.processSegment(ctx, log, seg)
			finished[i] = true
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		if p.cancelPolicy == CancelDiscard {
			log.Warn("pipeline.run.cancelled", "policy", p.cancelPolicy, "error", err)
			return entity.Result{}, fmt.Errorf("%w: %w", ErrRunCancelled, err)
		}
		unfinished := 0
		for i, seg := range segs {
			if finished[i] {
				continue
			}
			unfinished++
			ge := &llm.GatewayError{Err: err}
			outcomes[i] = entity.SegmentOutcome{
				Index: seg.Index,
				Err:   ge,
				Failures: []entity.Failure{{
					Kind:    entity.FailureGateway,
					Segment: seg.Index,
					Record:  -1,
					Detail:  ge.Error(),
				}},
			}
		}
		log.Warn("pipeline.run.cancelled", "policy", p.cancelPolicy, "unfinished", unfinished, "error", err)
	}

	p.transition(log, constants.RunStateMerging)
	res := aggregate.Merge(p.kind, outcomes)

	p.transition(log, constants.RunStateCrossValidating)
	if p.kind == constants.Deed {
		res.CrossCheck = p.scanner.Check(text, res.Records)
	} else {
		// invoices carry no cadastral references to scan for
		res.CrossCheck = entity.CrossValidationReport{MissingFromModel: []string{}, UnexpectedFromModel: []string{}}
	}

	res.RunID = runID
	res.StartedAt = started
	res.FinishedAt = time.Now()

	p.transition(log, constants.RunStateDone)
	log.Info("pipeline.run.done",
		"records", len(res.Records),
		"segments_total", res.SegmentsTotal,
		"segments_failed", res.SegmentsFailed,
		"missing_from_model", len(res.CrossCheck.MissingFromModel),
		"unexpected_from_model", len(res.CrossCheck.UnexpectedFromModel),
		"elapsed_ms", res.FinishedAt.Sub(started).Milliseconds(),
	)
	return res, nil
}

func (p *Pipeline) transition(log *slog.Logger, s constants.RunState) {
	log.Debug("pipeline.run.state", "state", s)
}
