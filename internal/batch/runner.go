package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jmartens-dev/bulletin-harvester/constants"
	"github.com/jmartens-dev/bulletin-harvester/internal/classify"
	"github.com/jmartens-dev/bulletin-harvester/internal/common"
	"github.com/jmartens-dev/bulletin-harvester/internal/entity"
	"github.com/jmartens-dev/bulletin-harvester/internal/harvest"
	"github.com/jmartens-dev/bulletin-harvester/internal/ocr"
	"github.com/jmartens-dev/bulletin-harvester/internal/report"
)

// Runner executes one batch job on a single background goroutine. All
// mutable job state is confined to that goroutine; callers interact through
// the message channel and the pause/cancel signals. Both signals are
// observed only between files, so a cancelled job has a precise completed-
// records boundary.
type Runner struct {
	logger     *slog.Logger
	extractor  *ocr.Extractor
	rules      *harvest.RuleConfig
	classifier *classify.Classifier
	reporter   *report.Service
	cfg        common.BatchConfig
	reportCfg  common.ReportConfig

	mu      sync.Mutex
	state   constants.BatchState
	records []entity.Record

	pause  atomic.Bool
	cancel atomic.Bool
	msgs   chan Message

	// onFileProcessed runs synchronously at the file boundary, after the
	// record is accumulated and before the next pause/cancel check. Test
	// seam for exercising the boundary deterministically; nil in production.
	onFileProcessed func(processed int)
}

func NewRunner(
	extractor *ocr.Extractor,
	rules *harvest.RuleConfig,
	classifier *classify.Classifier,
	reporter *report.Service,
	cfg common.BatchConfig,
	reportCfg common.ReportConfig,
	logger *slog.Logger,
) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PausePoll <= 0 {
		cfg.PausePoll = 200 * time.Millisecond
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	return &Runner{
		logger:     logger,
		extractor:  extractor,
		rules:      rules,
		classifier: classifier,
		reporter:   reporter,
		cfg:        cfg,
		reportCfg:  reportCfg,
		state:      constants.BatchIdle,
	}
}

// Start launches the worker for the given input set and returns the message
// channel. A second concurrent start is rejected.
func (r *Runner) Start(docs []entity.SourceDocument) (<-chan Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case constants.BatchRunning, constants.BatchPaused, constants.BatchCancelling:
		return nil, fmt.Errorf("batch already running (state %s)", r.state)
	}
	r.state = constants.BatchRunning
	r.records = nil
	r.pause.Store(false)
	r.cancel.Store(false)
	r.msgs = make(chan Message, r.cfg.QueueSize)

	go r.run(docs)
	return r.msgs, nil
}

// Pause raises the pause signal; the worker blocks at the next file boundary.
func (r *Runner) Pause() { r.pause.Store(true) }

// Resume clears the pause signal.
func (r *Runner) Resume() { r.pause.Store(false) }

// Cancel raises the cancellation signal, observed at the next file boundary
// (also while paused).
func (r *Runner) Cancel() { r.cancel.Store(true) }

// State returns the current orchestrator state.
func (r *Runner) State() constants.BatchState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Records returns a copy of the accumulated records. They stay available
// after the job finishes so a failed report emission can be retried.
func (r *Runner) Records() []entity.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Record, len(r.records))
	copy(out, r.records)
	return out
}

func (r *Runner) run(docs []entity.SourceDocument) {
	outcome := constants.OutcomeComplete

	scratch, scratchErr := os.MkdirTemp("", "bulletin-batch-*")
	if scratchErr != nil {
		// Batch-fatal: no scratch space. Skip the file loop, still clean up
		// and emit the finished signal.
		scratchErr = fmt.Errorf("%w: scratch space unavailable: %v", common.ErrBatchFatal, scratchErr)
		r.logger.Error("aborting batch", "error", scratchErr)
		r.send(Message{Kind: MsgLog, Severity: slog.LevelError, Text: scratchErr.Error()})
		outcome = constants.OutcomeCancelled
	} else {
		outcome = r.processAll(docs, scratch)
	}

	var reportErr error
	if scratchErr == nil && r.reporter != nil {
		reportErr = r.emitReport()
	}

	// Scratch teardown is synchronous, before the finished signal, so a
	// subsequent job never races with stale temporary files.
	if scratch != "" {
		if err := os.RemoveAll(scratch); err != nil {
			r.logger.Warn("failed to remove scratch dir", "path", scratch, "error", err)
		}
	}

	r.setState(constants.BatchFinished)
	fin := Message{Kind: MsgFinished, Outcome: outcome, Summary: r.summary()}
	if scratchErr != nil {
		fin.Err = scratchErr.Error()
	} else if reportErr != nil {
		fin.Err = reportErr.Error()
	}
	r.send(fin)
	close(r.msgs)
}

// processAll is the per-file worker loop. Pause and cancel are checked
// between files, never mid-file.
func (r *Runner) processAll(docs []entity.SourceDocument, scratch string) constants.BatchOutcome {
	total := len(docs)
	for i, doc := range docs {
		r.waitWhilePaused()
		if r.cancel.Load() {
			r.setState(constants.BatchCancelling)
			r.logger.Info("cancellation observed", "processed", i, "total", total)
			return constants.OutcomeCancelled
		}

		r.send(Message{Kind: MsgStatus, Text: "Processing: " + doc.Name})
		rec := r.processOne(doc, scratch)

		r.mu.Lock()
		r.records = append(r.records, rec)
		r.mu.Unlock()

		if r.onFileProcessed != nil {
			r.onFileProcessed(i + 1)
		}

		if rec.Status == constants.StatusLocked || rec.Status == constants.StatusFailed {
			r.send(Message{Kind: MsgLog, Severity: slog.LevelWarn,
				Text: fmt.Sprintf("%s: %s (%s)", doc.Name, rec.Status, rec.Err)})
		}
		r.send(Message{Kind: MsgProgress, Fraction: float64(i+1) / float64(total)})
	}
	return constants.OutcomeComplete
}

// processOne isolates every per-file failure, including panics: a thrown
// error from one document never terminates the batch.
func (r *Runner) processOne(doc entity.SourceDocument, scratch string) (rec entity.Record) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("panic while processing file", "filename", doc.Name, "panic", p)
			rec = entity.Record{
				ID:       uuid.New(),
				Filename: doc.Name,
				Status:   constants.StatusFailed,
				Err:      fmt.Sprintf("panic: %v", p),
			}
		}
	}()

	path := doc.Path
	if doc.Format == constants.PDF {
		// Copy-on-read: work on a scratch duplicate so the original is never
		// held open or locked by us.
		dup := filepath.Join(scratch, doc.Name)
		if err := copyFile(doc.Path, dup); err != nil {
			r.mirrorLocked(doc)
			return r.classifier.ClassifyFailure(doc, fmt.Errorf("%w: %v", common.ErrLocked, err))
		}
		path = dup
	}

	res, err := r.extractor.Extract(context.Background(), path)
	if err != nil {
		return r.classifier.ClassifyFailure(doc, err)
	}

	fields := harvest.Harvest(res.Text, doc.Name, r.rules, r.logger)
	return r.classifier.Classify(doc, res.Text, fields)
}

// waitWhilePaused is a bounded sleep-and-recheck loop: cancellation stays
// observable while paused.
func (r *Runner) waitWhilePaused() {
	paused := false
	for r.pause.Load() && !r.cancel.Load() {
		if !paused {
			paused = true
			r.setState(constants.BatchPaused)
			r.logger.Info("batch paused")
		}
		time.Sleep(r.cfg.PausePoll)
	}
	if paused {
		r.setState(constants.BatchRunning)
		r.logger.Info("batch resumed")
	}
}

func (r *Runner) emitReport() error {
	path, err := r.reporter.WriteReport(r.Records(), r.reportCfg.TemplatePath, r.reportCfg.OutputPath)
	if err != nil {
		r.logger.Error("report emission failed, records retained for retry", "error", err)
		r.send(Message{Kind: MsgLog, Severity: slog.LevelError,
			Text: fmt.Sprintf("report emission failed: %v", err)})
		return err
	}
	r.send(Message{Kind: MsgResultPath, Path: path})
	return nil
}

// mirrorLocked copies an unreadable original into the locked-files holding
// area for manual follow-up. Best effort, never fatal.
func (r *Runner) mirrorLocked(doc entity.SourceDocument) {
	if r.cfg.LockedDir == "" {
		return
	}
	if err := os.MkdirAll(r.cfg.LockedDir, 0o755); err != nil {
		r.logger.Warn("cannot create locked-files dir", "dir", r.cfg.LockedDir, "error", err)
		return
	}
	dst := filepath.Join(r.cfg.LockedDir, doc.Name)
	if err := copyFile(doc.Path, dst); err != nil {
		r.logger.Warn("cannot mirror locked file", "filename", doc.Name, "error", err)
		return
	}
	r.logger.Info("locked file mirrored for follow-up", "filename", doc.Name, "path", dst)
}

func (r *Runner) summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Summary{Total: len(r.records)}
	for _, rec := range r.records {
		switch rec.Status {
		case constants.StatusPass:
			s.Pass++
		case constants.StatusNeedsReview:
			s.NeedsReview++
		case constants.StatusLocked:
			s.Locked++
		case constants.StatusFailed:
			s.Failed++
		}
	}
	return s
}

func (r *Runner) setState(s constants.BatchState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Runner) send(m Message) {
	r.msgs <- m
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

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
