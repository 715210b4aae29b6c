package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"github.com/jmartens-dev/bulletin-harvester/internal/batch"
	"github.com/jmartens-dev/bulletin-harvester/internal/classify"
	"github.com/jmartens-dev/bulletin-harvester/internal/common"
	"github.com/jmartens-dev/bulletin-harvester/internal/entity"
	"github.com/jmartens-dev/bulletin-harvester/internal/harvest"
	"github.com/jmartens-dev/bulletin-harvester/internal/ocr"
	"github.com/jmartens-dev/bulletin-harvester/internal/report"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir       = flag.String("dir", "", "directory to scan recursively for PDF/text documents")
		files     = flag.String("files", "", "comma-separated explicit file list")
		rerun     = flag.Bool("rerun-review", false, "re-process the review holding area instead of new input")
		out       = flag.String("out", "", "output XLSX path (default bulletin-report.xlsx)")
		template  = flag.String("template", "", "XLSX template; a timestamped copy is filled, the original is untouched")
		reviewDir = flag.String("review-dir", "", "needs-review holding directory (overrides REVIEW_DIR)")
		lockedDir = flag.String("locked-dir", "", "locked-files holding directory (overrides LOCKED_DIR)")
		rules     = flag.String("rules", "", "YAML rule configuration (default: built-in rules)")
		quiet     = flag.Bool("quiet", false, "suppress the progress bar")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		printError("Warning: could not load .env: %v\n", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *reviewDir != "" {
		cfg.Batch.ReviewDir = *reviewDir
	}
	if *lockedDir != "" {
		cfg.Batch.LockedDir = *lockedDir
	}
	if *out != "" {
		cfg.Report.OutputPath = *out
	}
	if *template != "" {
		cfg.Report.TemplatePath = *template
	}

	// Input set: directory scan, explicit list, or the review re-run path.
	var (
		docs []entity.SourceDocument
		err  error
	)
	switch {
	case *rerun:
		docs, err = batch.EnumerateReviewDir(cfg.Batch.ReviewDir)
	case *dir != "":
		docs, err = batch.EnumerateDirectory(*dir)
	case *files != "":
		docs, err = batch.FromPaths(strings.Split(*files, ","))
	default:
		printError("Error: one of --dir, --files or --rerun-review is required\n")
		os.Exit(1)
	}
	if err != nil {
		logger.Error("failed to enumerate input set", "error", err)
		os.Exit(1)
	}
	logger.Info("input set ready", "documents", len(docs))

	// Pattern configuration is built once per run and injected.
	ruleCfg := harvest.DefaultRuleConfig()
	if *rules != "" {
		ruleCfg, err = harvest.LoadRuleConfig(*rules, logger)
		if err != nil {
			logger.Error("failed to load rule configuration", "path", *rules, "error", err)
			os.Exit(1)
		}
	}

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:       cfg.OCR.Pdftotext,
		Pdftoppm:        cfg.OCR.Pdftoppm,
		Tesseract:       cfg.OCR.Tesseract,
		TesseractLang:   cfg.OCR.TesseractLang,
		DPI:             cfg.OCR.DPI,
		MaxPages:        cfg.OCR.MaxPages,
		SparseThreshold: cfg.OCR.SparseThreshold,
	}, logger)
	classifier := classify.NewClassifier(cfg.Batch.ReviewDir, logger)
	reporter := report.NewService(logger)
	runner := batch.NewRunner(extractor, ruleCfg, classifier, reporter, cfg.Batch, cfg.Report, logger)

	msgs, err := runner.Start(docs)
	if err != nil {
		logger.Error("failed to start batch", "error", err)
		os.Exit(1)
	}

	// First interrupt cancels the job; the worker still finishes cleanly.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("interrupt received, cancelling batch")
		runner.Cancel()
	}()

	var bar *progressbar.ProgressBar
	if !*quiet && len(docs) > 0 {
		bar = progressbar.NewOptions(len(docs),
			progressbar.OptionSetDescription("processing"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWriter(os.Stderr),
		)
	}

	var (
		resultPath string
		summary    batch.Summary
		outcome    string
		jobErr     string
	)
	for m := range msgs {
		switch m.Kind {
		case batch.MsgStatus:
			logger.Info(m.Text)
		case batch.MsgProgress:
			if bar != nil {
				_ = bar.Set(int(m.Fraction * float64(len(docs))))
			}
		case batch.MsgLog:
			logger.Log(context.Background(), m.Severity, m.Text)
		case batch.MsgResultPath:
			resultPath = m.Path
		case batch.MsgFinished:
			summary = m.Summary
			outcome = string(m.Outcome)
			jobErr = m.Err
		}
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	fmt.Printf("Batch %s\n", strings.ToLower(outcome))
	fmt.Printf("- Documents processed: %d\n", summary.Total)
	fmt.Printf("- Pass: %d\n", summary.Pass)
	fmt.Printf("- Needs review: %d\n", summary.NeedsReview)
	fmt.Printf("- Locked: %d\n", summary.Locked)
	fmt.Printf("- Failed: %d\n", summary.Failed)
	if resultPath != "" {
		fmt.Printf("- Report: %s\n", resultPath)
	}
	if jobErr != "" {
		if strings.Contains(jobErr, common.ErrBatchFatal.Error()) {
			printError("Batch aborted: %s\n", jobErr)
		} else {
			printError("Report emission failed: %s\n", jobErr)
		}
		os.Exit(1)
	}
}
