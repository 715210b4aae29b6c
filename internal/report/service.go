package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jmartens-dev/bulletin-harvester/internal/entity"
	"github.com/jmartens-dev/bulletin-harvester/internal/harvest"
)

const sheet = "Bulletins"

// Headers is the fixed logical header order of the report. Row order follows
// record accumulation order, never a sort.
var Headers = []string{
	"QA Number",
	"QA Number (Short)",
	"Models",
	"Part Numbers",
	"Serial Numbers",
	"Document Type",
	"Document Title",
	"Revision",
	"Language",
	"Subject",
	"Author",
	"Published Date",
	"Filename",
	"Status",
	"Review Notes",
}

// Service converts a finished record set into an XLSX artifact.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WriteXLSX returns workbook bytes for the records. An empty record list
// still produces a validly-structured, headers-only workbook.
func (s *Service) WriteXLSX(records []entity.Record) ([]byte, error) {
	f := excelize.NewFile()
	if err := s.fill(f, records); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteReport writes the final artifact to outPath. When templatePath is
// set, a timestamped copy of the template is produced first and filled in;
// the caller's original file is never mutated. Returns the written path.
func (s *Service) WriteReport(records []entity.Record, templatePath, outPath string) (string, error) {
	start := time.Now()
	if outPath == "" {
		outPath = "bulletin-report.xlsx"
	}

	var f *excelize.File
	target := outPath
	if templatePath != "" {
		target = timestamped(outPath)
		if err := copyFile(templatePath, target); err != nil {
			return "", fmt.Errorf("copy report template: %w", err)
		}
		opened, err := excelize.OpenFile(target)
		if err != nil {
			return "", fmt.Errorf("open report template copy: %w", err)
		}
		f = opened
	} else {
		f = excelize.NewFile()
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("closing workbook failed", "error", err)
		}
	}()

	if err := s.fill(f, records); err != nil {
		return "", err
	}
	if err := f.SaveAs(target); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}

	s.logger.Info("report written",
		"path", target,
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return target, nil
}

func (s *Service) fill(f *excelize.File, records []entity.Record) error {
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		fields := r.Fields
		write(1, harvest.Display(fields.QADisplay()))
		write(2, harvest.Display(fields.QANumberShort))
		write(3, harvest.DisplayList(fields.Models))
		write(4, harvest.DisplayList(fields.PartNumbers))
		write(5, harvest.DisplayList(fields.SerialNumbers))
		write(6, harvest.Display(fields.DocumentType))
		write(7, harvest.Display(fields.DocumentTitle))
		write(8, harvest.Display(fields.Revision))
		write(9, harvest.Display(fields.Language))
		write(10, harvest.Display(fields.Subject))
		write(11, harvest.Display(fields.Author))
		write(12, harvest.Display(fields.PublishedDate))
		write(13, r.Filename)
		write(14, string(r.Status))
		write(15, reviewNotes(r))

		row++
	}

	// Widen the columns that carry free text
	_ = f.SetColWidth(sheet, "A", "B", 22)
	_ = f.SetColWidth(sheet, "C", "E", 30)
	_ = f.SetColWidth(sheet, "F", "G", 26)
	_ = f.SetColWidth(sheet, "J", "J", 40)
	_ = f.SetColWidth(sheet, "M", "M", 34)
	_ = f.SetColWidth(sheet, "O", "O", 44)

	return nil
}

func reviewNotes(r entity.Record) string {
	var parts []string
	if r.ReviewReason != "" {
		parts = append(parts, r.ReviewReason)
	}
	if r.ReviewPath != "" {
		parts = append(parts, "text: "+r.ReviewPath)
	}
	if r.Err != "" {
		parts = append(parts, r.Err)
	}
	return strings.Join(parts, "; ")
}

// timestamped inserts a timestamp before the extension of path.
func timestamped(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%s%s", stem, time.Now().Format("20060102_150405"), ext)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
