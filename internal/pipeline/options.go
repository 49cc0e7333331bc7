package pipeline

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/docs-extractor/internal/crosscheck"
)

// CancelPolicy decides what a cancelled run returns.
type CancelPolicy string

const (
	// CancelDiscard returns ErrRunCancelled and no result.
	CancelDiscard CancelPolicy = "discard"
	// CancelBestEffort records unfinished segments as gateway failures and
	// merges whatever completed.
	CancelBestEffort CancelPolicy = "best_effort"
)

func ParseCancelPolicy(s string) (CancelPolicy, error) {
	switch p := CancelPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return CancelDiscard, nil
	case CancelDiscard, CancelBestEffort:
		return p, nil
	default:
		return "", fmt.Errorf("unknown cancel policy %q", s)
	}
}

type Option func(*Pipeline)

func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithCallTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.callTimeout = d
		}
	}
}

func WithCancelPolicy(c CancelPolicy) Option {
	return func(p *Pipeline) {
		if c != "" {
			p.cancelPolicy = c
		}
	}
}

func WithSegmentSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.segmenter.Max = n
		}
	}
}

func WithOverlap(n int) Option {
	return func(p *Pipeline) {
		if n >= 0 {
			p.segmenter.Overlap = n
		}
	}
}

func WithPattern(pat crosscheck.Pattern) Option {
	return func(p *Pipeline) {
		if pat != "" {
			p.pattern = pat
		}
	}
}

// WithPromptTemplate overrides the kind's default prompt.
func WithPromptTemplate(tmpl string) Option {
	return func(p *Pipeline) {
		if strings.TrimSpace(tmpl) != "" {
			p.prompt = tmpl
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}
