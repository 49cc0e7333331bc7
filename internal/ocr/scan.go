package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// reBoxNoise drops the box-drawing and form-feed debris tesseract leaves
// around table borders.
var reBoxNoise = regexp.MustCompile(`[│┃┆┇┊┋╎╏║▏▕|]{2,}|\f`)

// tesseract runs OCR over one image and returns its raw text.
func (r *Reader) tesseract(ctx context.Context, image string) (string, error) {
	args := []string{image, "stdout", "-l", r.cfg.TesseractLang}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}
	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 200))
	}
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}

// ocrPDFPage rasterizes one page (1-based) with pdftoppm and runs tesseract
// over the image.
func (r *Reader) ocrPDFPage(ctx context.Context, path string, page int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "docs-pp-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.logger.Warn("ocr.tmp.cleanup_error", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	n := strconv.Itoa(page)
	// pdftoppm -r 300 -png -f N -l N -singlefile <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm,
		"-r", strconv.Itoa(r.cfg.DPI), "-png", "-f", n, "-l", n, "-singlefile", path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 200))
	}
	image := prefix + ".png"
	if _, err := os.Stat(image); err != nil {
		return "", fmt.Errorf("pdftoppm produced no image for page %d: %w", page, err)
	}
	return r.tesseract(ctx, image)
}

// needsOCR reports whether a text-layer page is too short to trust.
func (r *Reader) needsOCR(text string) bool {
	return !r.cfg.DisableOCR && len([]rune(strings.TrimSpace(text))) < r.cfg.MinPageChars
}
