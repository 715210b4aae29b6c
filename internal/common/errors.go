package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ExtractKind classifies text-acquisition failures.
type ExtractKind string

const (
	ExtractEncrypted  ExtractKind = "ENCRYPTED"  // empty-credential authentication failed
	ExtractCorrupt    ExtractKind = "CORRUPT"    // structural read failure
	ExtractUnreadable ExtractKind = "UNREADABLE" // no embedded text and no fallback fired
)

// ExtractionError is returned by the text-acquisition layer. It never
// terminates a batch; the classifier converts it into a record status.
type ExtractionError struct {
	Kind  ExtractKind
	Path  string
	Cause error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Kind, e.Path, e.Cause)
	}
	return fmt.Sprintf("extract %s: %s", e.Kind, e.Path)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// NewExtractionError builds an ExtractionError for path.
func NewExtractionError(kind ExtractKind, path string, cause error) *ExtractionError {
	return &ExtractionError{Kind: kind, Path: path, Cause: cause}
}

// ErrLocked marks a source held by another process or otherwise unopenable.
var ErrLocked = errors.New("source file is locked")

// ErrBatchFatal marks a batch-level failure (e.g. scratch space unavailable).
// The file loop stops but cleanup and the finished signal still run.
var ErrBatchFatal = errors.New("batch fatal")

// IsLocked reports whether err means the source could not be opened or
// copied because of a lock or permission problem.
func IsLocked(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrLocked) {
		return true
	}
	if errors.Is(err, fs.ErrPermission) || os.IsPermission(err) {
		return true
	}
	var pe *fs.PathError
	return errors.As(err, &pe) && errors.Is(pe.Err, fs.ErrPermission)
}

// IsExtraction reports whether err carries an ExtractionError, returning it.
func IsExtraction(err error) (*ExtractionError, bool) {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// WrapError annotates err with message, preserving the chain.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
