// Package ocr reads the text pages of an input document. PDF pages come from
// the text layer, with a tesseract fallback for pages that have little or no
// text; images are recognized with tesseract as a single page.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/docs-extractor/constants"
	"github.com/joseph-ayodele/docs-extractor/internal/entity"
)

// ErrNoText means the document had no extractable text on any page.
var ErrNoText = errors.New("no extractable text")

// DefaultMinPageChars is the text-layer length below which a PDF page is
// treated as scanned.
const DefaultMinPageChars = 20

type Config struct {
	MaxPages int // 0 = no limit

	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "spa"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned pages, default 300

	MinPageChars int  // default DefaultMinPageChars
	DisableOCR   bool // text layer only; images are rejected
}

type ExtractionResult struct {
	Document   entity.Document
	SourceType string // constants.PDF | constants.TXT | constants.IMAGE
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr" | "text"
	OCRPages   []int  // 1-based pages recognized with tesseract
	Duration   time.Duration
	Warnings   []string
}

type Reader struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewReader(cfg Config, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "spa"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinPageChars <= 0 {
		cfg.MinPageChars = DefaultMinPageChars
	}
	return &Reader{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Read picks a strategy based on file extension and returns one normalized
// string per page, in page order.
func (r *Reader) Read(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	r.logger.Debug("ocr.read.start", "path", path, "ext", ext)

	var (
		res ExtractionResult
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = r.readPDF(ctx, path)
	case constants.TXT:
		res, err = r.readText(path)
	case constants.IMAGE:
		if r.cfg.DisableOCR {
			return ExtractionResult{}, fmt.Errorf("unsupported extension: %q (ocr disabled)", ext)
		}
		res, err = r.readImage(ctx, path)
	default:
		r.logger.Error("ocr.read.unsupported", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}

	res.Document.Source = path
	if res.Document.Empty() {
		r.logger.Warn("ocr.read.no_text", "path", path, "pages", len(res.Document.Pages))
		return res, ErrNoText
	}
	r.logger.Info("ocr.read.ok",
		"path", path,
		"type", res.SourceType,
		"method", res.Method,
		"ocr_pages", len(res.OCRPages),
		"pages", len(res.Document.Pages),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (r *Reader) readPDF(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.PDF, Method: "pdf-text"}

	f, pr, err := pdf.Open(path)
	if err != nil {
		return res, fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			r.logger.Warn("ocr.pdf.close_error", "path", path, "error", err)
		}
	}()

	n := pr.NumPage()
	if r.cfg.MaxPages > 0 && n > r.cfg.MaxPages {
		res.Warnings = append(res.Warnings, fmt.Sprintf("truncated to %d of %d pages", r.cfg.MaxPages, n))
		n = r.cfg.MaxPages
	}

	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var txt string
		if p := pr.Page(i); !p.V.IsNull() {
			t, err := p.GetPlainText(nil)
			if err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i, err))
			}
			txt = t
		}
		if r.needsOCR(txt) {
			scanned, err := r.ocrPDFPage(ctx, path, i)
			if err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("page %d ocr: %v", i, err))
			} else {
				txt = scanned
				res.OCRPages = append(res.OCRPages, i)
			}
		}
		pages = append(pages, Normalize(txt))
	}
	if len(res.OCRPages) > 0 {
		res.Method = "pdf-ocr"
	}
	res.Document.Pages = pages
	return res, nil
}

// readImage treats an image as a single scanned page.
func (r *Reader) readImage(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.IMAGE, Method: "image-ocr"}
	if _, err := os.Stat(path); err != nil {
		return res, err
	}
	txt, err := r.tesseract(ctx, path)
	if err != nil {
		return res, err
	}
	res.OCRPages = []int{1}
	res.Document.Pages = []string{Normalize(txt)}
	return res, nil
}

// readText treats form feeds as page breaks, as pdftotext emits them.
func (r *Reader) readText(path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.TXT, Method: "text"}
	b, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("read text: %w", err)
	}

	raw := strings.Split(string(b), "\f")
	if r.cfg.MaxPages > 0 && len(raw) > r.cfg.MaxPages {
		res.Warnings = append(res.Warnings, fmt.Sprintf("truncated to %d of %d pages", r.cfg.MaxPages, len(raw)))
		raw = raw[:r.cfg.MaxPages]
	}
	pages := make([]string, len(raw))
	for i, p := range raw {
		pages[i] = Normalize(p)
	}
	res.Document.Pages = pages
	return res, nil
}
