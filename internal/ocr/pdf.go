package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jmartens-dev/bulletin-harvester/internal/common"
)

func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	if err := e.probe(path); err != nil {
		return ExtractionResult{}, err
	}

	text, pages, warns, err := e.pdfToText(ctx, path)
	if err != nil {
		return ExtractionResult{Warnings: warns}, common.NewExtractionError(common.ExtractCorrupt, path, err)
	}

	res := ExtractionResult{Text: text, Pages: pages, Method: MethodPDF, Warnings: warns}

	// Prefer the structural page count over the form-feed heuristic; the
	// heuristic stands in when the count is unavailable.
	if n, cntErr := e.pageCount(path); cntErr == nil && n > 0 {
		res.Pages = n
	}

	if len(strings.TrimSpace(text)) >= e.cfg.SparseThreshold {
		return res, nil
	}

	// Sparse embedded text: fall back to image recognition when a backend is
	// around, otherwise proceed with what we have.
	if e.OCRAvailable() {
		e.logger.Info("embedded text sparse, running recognition fallback",
			"path", path, "embedded_chars", len(strings.TrimSpace(text)))
		ocrText, ocrPages, ocrWarns, ocrErr := e.pdfToOCR(ctx, path)
		res.Warnings = append(res.Warnings, ocrWarns...)
		if ocrErr != nil {
			e.logger.Warn("recognition fallback failed, keeping embedded text", "path", path, "error", ocrErr)
		} else {
			res.Text = ocrText
			res.Pages = ocrPages
			res.Method = MethodPDFOCR
			return res, nil
		}
	}

	if strings.TrimSpace(res.Text) == "" {
		return res, common.NewExtractionError(common.ExtractUnreadable, path, nil)
	}
	return res, nil
}

// probePDF opens the document structurally. pdfcpu attempts an empty user
// password once by default, so a password error means Encrypted; any other
// validation failure means Corrupt.
func (e *Extractor) probePDF(path string) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		if isPasswordErr(err) {
			return common.NewExtractionError(common.ExtractEncrypted, path, err)
		}
		return common.NewExtractionError(common.ExtractCorrupt, path, err)
	}
	return nil
}

func isPasswordErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypt")
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{string(errb)}, err
	}
	text = string(out)
	// A form-feed \f is used as page separator by default
	pages = 1 + strings.Count(text, "\f")
	return text, pages, nil, nil
}

// pdfToOCR renders each page to a raster image and runs recognition per page.
// Per-page recognition failures are logged and skipped, never fatal for the
// document.
func (e *Extractor) pdfToOCR(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "bh-ocr-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove ocr temp dir", "path", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, []string{string(errb)}, err
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		txt, w, pageErr := e.recognizeImage(ctx, img)
		if pageErr != nil {
			e.logger.Warn("page recognition failed, skipping page", "image", img, "error", pageErr)
			warns = append(warns, pageErr.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
		warns = append(warns, w...)
	}
	return b.String(), len(matches), warns, nil
}

func (e *Extractor) recognizeImage(ctx context.Context, path string) (string, []string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.TesseractLang)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}

// PageCount is a structural page count for already-validated documents.
func PageCount(path string) (int, error) {
	return api.PageCountFile(path)
}
