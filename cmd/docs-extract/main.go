package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/docs-extractor/constants"
	"github.com/joseph-ayodele/docs-extractor/internal/common"
	"github.com/joseph-ayodele/docs-extractor/internal/crosscheck"
	"github.com/joseph-ayodele/docs-extractor/internal/entity"
	"github.com/joseph-ayodele/docs-extractor/internal/export"
	"github.com/joseph-ayodele/docs-extractor/internal/ingest"
	"github.com/joseph-ayodele/docs-extractor/internal/llm"
	"github.com/joseph-ayodele/docs-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/docs-extractor/internal/ocr"
	"github.com/joseph-ayodele/docs-extractor/internal/pipeline"
	repo "github.com/joseph-ayodele/docs-extractor/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		printError("Warning: loading .env: %v\n", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cfg := common.LoadConfig()
	err := run(ctx, os.Args[1:], cfg, os.Stdout, logger, func(c *common.Config) llm.Gateway {
		return openai.NewClient(openai.Config{
			APIKey:      c.LLM.APIKey,
			BaseURL:     c.LLM.BaseURL,
			Model:       c.LLM.Model,
			Temperature: c.LLM.Temperature,
			Timeout:     c.LLM.Timeout,
		}, logger)
	})
	stop()
	if err != nil {
		printError("Error: %v\n", err)
	}
	os.Exit(common.ExitCode(err))
}

type options struct {
	kind       constants.DocumentKind
	in         string
	out        string
	dsn        string
	inmem      bool
	skipHidden bool
}

func parseFlags(args []string, cfg *common.Config) (options, error) {
	fs := flag.NewFlagSet("docs-extract", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		kind       = fs.String("kind", "", "document kind: invoice|deed (required)")
		in         = fs.String("in", "", "input .pdf/.txt/.jpg/.png file or directory (required)")
		out        = fs.String("out", "", "output XLSX file, or directory when -in is a directory")
		dsn        = fs.String("db", cfg.Database.DSN, "audit store DSN (postgres:// URL or SQLite path)")
		inmem      = fs.Bool("inmem", false, "use an in-memory SQLite audit store")
		skipHidden = fs.Bool("skip-hidden", true, "skip hidden files when -in is a directory")
	)
	if err := fs.Parse(args); err != nil {
		return options{}, common.NewAppError(common.CodeInput, "invalid flags", err)
	}

	k, ok := constants.ParseKind(*kind)
	if !ok {
		return options{}, common.NewAppError(common.CodeInput, "--kind must be invoice or deed", common.ErrInvalidInput)
	}
	if strings.TrimSpace(*in) == "" {
		return options{}, common.NewAppError(common.CodeInput, "--in is required", common.ErrInvalidInput)
	}
	return options{kind: k, in: *in, out: *out, dsn: *dsn, inmem: *inmem, skipHidden: *skipHidden}, nil
}

// outputPath places the workbook next to the input unless -out says otherwise.
func outputPath(opts options, in ingest.Input, batch bool) string {
	name := strings.TrimSuffix(filepath.Base(in.Path), filepath.Ext(in.Path)) + ".xlsx"
	switch {
	case opts.out == "":
		return filepath.Join(filepath.Dir(in.Path), name)
	case batch:
		return filepath.Join(opts.out, name)
	default:
		return opts.out
	}
}

func run(ctx context.Context, args []string, cfg *common.Config, stdout io.Writer, logger *slog.Logger, newGateway func(*common.Config) llm.Gateway) error {
	if logger == nil {
		logger = slog.Default()
	}
	opts, err := parseFlags(args, cfg)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	info, err := os.Stat(opts.in)
	if err != nil {
		return common.NewAppError(common.CodeInput, "cannot read input", err)
	}
	batch := info.IsDir()

	inputs, stats, err := ingest.Collect(ctx, opts.in, opts.skipHidden)
	if err != nil {
		return common.NewAppError(common.CodeInput, "cannot read input", err)
	}
	if len(inputs) == 0 {
		return common.NewAppError(common.CodeInput, "no supported documents found", common.ErrInvalidInput)
	}
	if batch && opts.out != "" {
		if err := os.MkdirAll(opts.out, 0o755); err != nil {
			return common.NewAppError(common.CodeExport, "cannot create output directory", err)
		}
	}
	logger.Info("cli.inputs", "path", opts.in, "matched", stats.Matched, "failed", stats.Failed)

	var runs repo.RunRepository
	if opts.inmem || opts.dsn != "" {
		dsn := opts.dsn
		if opts.inmem {
			dsn = ":memory:"
		}
		db, err := repo.Open(ctx, repo.Config{DSN: dsn, DialTimeout: cfg.Database.DialTimeout}, logger)
		if err != nil {
			return common.NewAppError(common.CodeConfig, "cannot open audit store", err)
		}
		defer repo.Close(db, logger)
		runs = repo.NewRunRepository(db, logger)
	}

	policy, err := pipeline.ParseCancelPolicy(cfg.Pipeline.CancelPolicy)
	if err != nil {
		return common.NewAppError(common.CodeConfig, "invalid cancel policy", err)
	}
	pattern, err := crosscheck.ParsePattern(cfg.Pipeline.RefPattern)
	if err != nil {
		return common.NewAppError(common.CodeConfig, "invalid reference pattern", err)
	}
	p, err := pipeline.New(newGateway(cfg), opts.kind,
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithCallTimeout(cfg.Pipeline.CallTimeout),
		pipeline.WithCancelPolicy(policy),
		pipeline.WithSegmentSize(cfg.Segment.MaxChars),
		pipeline.WithOverlap(cfg.Segment.Overlap),
		pipeline.WithPattern(pattern),
		pipeline.WithLogger(logger),
	)
	if err != nil {
		return common.NewAppError(common.CodeConfig, "cannot build pipeline", err)
	}

	reader := ocr.NewReader(ocr.Config{
		MaxPages:      cfg.OCR.MaxPages,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MinPageChars:  cfg.OCR.MinPageChars,
		DisableOCR:    cfg.OCR.Disable,
	}, logger)
	exporter := export.NewService(logger)

	var failed int
	var lastErr error
	for _, in := range inputs {
		res, err := processOne(ctx, p, reader, exporter, runs, in, outputPath(opts, in, batch), logger)
		if err != nil {
			failed++
			lastErr = err
			logger.Error("cli.document.failed", "path", in.Path, "error", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		printSummary(stdout, in, res)
	}

	if failed == 0 {
		return nil
	}
	if !batch {
		return lastErr
	}
	return common.NewAppError(common.CodeInput, fmt.Sprintf("%d of %d documents failed", failed, len(inputs)), lastErr)
}

func processOne(
	ctx context.Context,
	p *pipeline.Pipeline,
	reader *ocr.Reader,
	exporter *export.Service,
	runs repo.RunRepository,
	in ingest.Input,
	out string,
	logger *slog.Logger,
) (entity.Result, error) {
	id := uuid.New()
	ctx = common.WithRunID(ctx, id.String())
	log := logger.With("run_id", id, "path", in.Path, "sha256", in.HashHex)

	if runs != nil {
		if _, err := runs.Start(ctx, id, p.Kind(), in.Path); err != nil {
			log.Warn("cli.audit.start_failed", "error", err)
			runs = nil
		}
	}
	fail := func(err error) (entity.Result, error) {
		if runs != nil {
			if ferr := runs.FinishFailure(context.WithoutCancel(ctx), id, err.Error()); ferr != nil {
				log.Warn("cli.audit.finish_failed", "error", ferr)
			}
		}
		return entity.Result{}, err
	}

	page, err := reader.Read(ctx, in.Path)
	if err != nil {
		return fail(common.NewAppError(common.CodeInput, "cannot read "+filepath.Base(in.Path), err))
	}

	res, err := p.Run(ctx, page.Document)
	if err != nil {
		return fail(common.NewAppError(common.CodeInput, "extraction aborted", err))
	}

	if runs != nil {
		if err := runs.Finish(context.WithoutCancel(ctx), id, res); err != nil {
			log.Warn("cli.audit.finish_failed", "error", err)
		}
	}

	if err := exporter.WriteFile(ctx, res, out); err != nil {
		return res, common.NewAppError(common.CodeExport, "cannot export "+filepath.Base(in.Path), err)
	}
	log.Info("cli.document.done", "output", out, "outcome", res.Outcome())
	return res, nil
}

func printSummary(w io.Writer, in ingest.Input, res entity.Result) {
	fmt.Fprintf(w, "%s: %s, %d records, %d/%d segments failed, %d alerts\n",
		filepath.Base(in.Path), res.Outcome(), len(res.Records), res.SegmentsFailed, res.SegmentsTotal, len(res.Alerts))
	if len(res.CrossCheck.MissingFromModel) > 0 {
		fmt.Fprintf(w, "- references in text but not extracted: %s\n", strings.Join(res.CrossCheck.MissingFromModel, ", "))
	}
	if len(res.CrossCheck.UnexpectedFromModel) > 0 {
		fmt.Fprintf(w, "- references extracted but not in text: %s\n", strings.Join(res.CrossCheck.UnexpectedFromModel, ", "))
	}
}
