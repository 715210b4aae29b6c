package batch

import (
	"log/slog"

	"github.com/jmartens-dev/bulletin-harvester/constants"
)

// MessageKind tags the typed progress/status channel the invoking context
// consumes. This channel plus the two control signals (pause, cancel) is the
// only communication path; no batch state is shared.
type MessageKind int

const (
	MsgStatus     MessageKind = iota // Text: "Processing: <name>"
	MsgProgress                      // Fraction: monotonic completed/total
	MsgLog                           // Text + Severity
	MsgResultPath                    // Path: written report artifact
	MsgFinished                      // Outcome + Summary; emitted exactly once
)

type Message struct {
	Kind     MessageKind
	Text     string
	Fraction float64
	Severity slog.Level
	Path     string
	Outcome  constants.BatchOutcome
	Summary  Summary

	// Err carries a job-level report emission failure on the finished
	// message; accumulated records are retained so emission can be retried.
	Err string
}

// Summary aggregates record counts for the finished signal.
type Summary struct {
	Total       int
	Pass        int
	NeedsReview int
	Locked      int
	Failed      int
}
