package classify

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jmartens-dev/bulletin-harvester/constants"
	"github.com/jmartens-dev/bulletin-harvester/internal/common"
	"github.com/jmartens-dev/bulletin-harvester/internal/entity"
	"github.com/jmartens-dev/bulletin-harvester/internal/harvest"
)

// Classifier turns one document's harvest outcome into a Record
// and handles the review-sink side effect. No retry loop lives here; re-runs
// happen at the batch level via the review holding area.
type Classifier struct {
	logger    *slog.Logger
	reviewDir string
}

func NewClassifier(reviewDir string, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger, reviewDir: reviewDir}
}

// Classify decides the status for a successfully acquired document.
// No harvested models, or an ambiguous QA number, means a human needs to
// look: the acquired text is persisted to the review sink keyed by the
// document stem and the sink path lands in the record.
func (c *Classifier) Classify(doc entity.SourceDocument, text string, fields harvest.Result) entity.Record {
	rec := entity.Record{
		ID:       uuid.New(),
		Filename: doc.Name,
		Fields:   fields,
		Status:   constants.StatusPass,
	}

	switch {
	case !fields.HasModels():
		rec.Status = constants.StatusNeedsReview
		rec.ReviewReason = "no models harvested"
	case fields.QAAmbiguous:
		rec.Status = constants.StatusNeedsReview
		rec.ReviewReason = "qa number matched more than one shape"
	default:
		return rec
	}

	rec.ReviewPath = c.persistReviewText(doc, text)
	return rec
}

// ClassifyFailure maps an acquisition error onto a record. Locked/IO errors
// become LOCKED and are not retried; extraction errors (encrypted, corrupt,
// unreadable) become NEEDS_REVIEW; anything else is an unexpected FAILED.
func (c *Classifier) ClassifyFailure(doc entity.SourceDocument, err error) entity.Record {
	rec := entity.Record{
		ID:       uuid.New(),
		Filename: doc.Name,
		Err:      err.Error(),
	}

	if common.IsLocked(err) {
		rec.Status = constants.StatusLocked
		c.logger.Error("source locked", "filename", doc.Name, "error", err)
		return rec
	}
	if ee, ok := common.IsExtraction(err); ok {
		rec.Status = constants.StatusNeedsReview
		rec.ReviewReason = fmt.Sprintf("text acquisition failed: %s", ee.Kind)
		c.logger.Warn("text acquisition failed", "filename", doc.Name, "kind", string(ee.Kind), "error", err)
		return rec
	}

	rec.Status = constants.StatusFailed
	c.logger.Error("unexpected per-file failure", "filename", doc.Name, "error", err)
	return rec
}

// persistReviewText writes the acquired text to <reviewDir>/<stem>.txt.
// An I/O failure here is logged and downgrades the path to "", never the
// whole document.
func (c *Classifier) persistReviewText(doc entity.SourceDocument, text string) string {
	if c.reviewDir == "" {
		return ""
	}
	if err := os.MkdirAll(c.reviewDir, 0o755); err != nil {
		c.logger.Error("cannot create review dir", "dir", c.reviewDir, "error", err)
		return ""
	}
	path := filepath.Join(c.reviewDir, doc.Stem()+".txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		c.logger.Error("cannot persist review text", "path", path, "error", err)
		return ""
	}
	c.logger.Info("review text persisted", "filename", doc.Name, "path", path)
	return path
}
