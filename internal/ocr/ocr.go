package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jmartens-dev/bulletin-harvester/constants"
	"github.com/jmartens-dev/bulletin-harvester/internal/common"
)

// Method values carried in ExtractionResult, the provenance flag for the text.
const (
	MethodText   = "txt"      // plain-text source, embedded
	MethodPDF    = "pdf-text" // embedded PDF text layer
	MethodPDFOCR = "pdf-ocr"  // recognized from rendered page images
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang   string // default "eng"
	DPI             int    // rasterization DPI for scanned PDFs, default 300
	MaxPages        int    // 0 = no limit
	SparseThreshold int    // embedded text below this many chars is "sparse", default 100
}

type ExtractionResult struct {
	Text     string
	Pages    int
	Method   string
	Duration time.Duration
	Warnings []string
}

// Recognized reports whether the text came from image recognition rather
// than an embedded text layer.
func (r ExtractionResult) Recognized() bool { return r.Method == MethodPDFOCR }

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	// probe and pageCount are the structural PDF checks, replaceable in tests.
	probe     func(path string) error
	pageCount func(path string) (int, error)

	tessOnce sync.Once
	tessOK   bool
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI < 300 {
		cfg.DPI = 300
	}
	if cfg.SparseThreshold <= 0 {
		cfg.SparseThreshold = 100
	}
	e := &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
	e.probe = e.probePDF
	e.pageCount = PageCount
	return e
}

// Extract picks a strategy based on file extension. It never mutates the
// source document; failures come back as common.ExtractionError or raw I/O
// errors for the classifier to sort out.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text acquisition", "path", path, "ext", ext)

	switch constants.MapExtToFormat(ext) {
	case constants.TXT:
		res, err := e.extractText(path)
		res.Duration = time.Since(start)
		return res, err
	case constants.PDF:
		res, err := e.extractPDF(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	default:
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}
}

// extractText reads a plain-text source with lenient decoding: malformed
// byte sequences are dropped, not fatal.
func (e *Extractor) extractText(path string) (ExtractionResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{}, err
	}
	text := strings.ToValidUTF8(string(raw), "")
	if strings.TrimSpace(text) == "" {
		return ExtractionResult{}, common.NewExtractionError(common.ExtractUnreadable, path, nil)
	}
	return ExtractionResult{Text: text, Pages: 1, Method: MethodText}, nil
}

// OCRAvailable probes once for the recognition backend.
func (e *Extractor) OCRAvailable() bool {
	e.tessOnce.Do(func() {
		if _, err := e.runner.LookPath(e.cfg.Tesseract); err == nil {
			e.tessOK = true
		} else {
			e.logger.Warn("text recognition backend not found, OCR fallback disabled", "binary", e.cfg.Tesseract)
		}
	})
	return e.tessOK
}
