package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docs-extractor/internal/entity"
)

// ErrNothingToExport is returned for a result without records.
var ErrNothingToExport = errors.New("nothing to export")

const maxColWidth = 80

// Service produces XLSX workbooks from extraction results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportXLSX returns the workbook for res as bytes.
func (s *Service) ExportXLSX(ctx context.Context, res entity.Result) ([]byte, error) {
	start := time.Now()
	if len(res.Records) == 0 {
		return nil, ErrNothingToExport
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cols, rows := Table(res)
	sheet := SheetName(res.Kind)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, c.Header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		widths[i] = utf8.RuneCountInString(c.Header)
	}

	for r, row := range rows {
		for i, v := range row {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write %s: %w", cell, err)
			}
			if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, w := range widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, float64(min(w+2, maxColWidth))); err != nil {
			s.logger.Warn("export.xlsx.col_width_error", "sheet", sheet, "column", name, "error", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"run_id", res.RunID,
		"kind", res.Kind,
		"sheet", sheet,
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile exports res to path.
func (s *Service) WriteFile(ctx context.Context, res entity.Result, path string) error {
	b, err := s.ExportXLSX(ctx, res)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
