package constants

// RecordStatus is the canonical outcome for one processed document.
type RecordStatus string

// Stable values (these exact strings appear in the report).
const (
	StatusPass        RecordStatus = "PASS"
	StatusNeedsReview RecordStatus = "NEEDS_REVIEW" // automatic extraction insufficient, human follow-up
	StatusLocked      RecordStatus = "LOCKED"       // source could not be opened/copied
	StatusFailed      RecordStatus = "FAILED"       // unexpected per-file failure
)

// BatchState is the orchestrator state machine.
type BatchState string

const (
	BatchIdle       BatchState = "IDLE"
	BatchRunning    BatchState = "RUNNING"
	BatchPaused     BatchState = "PAUSED"
	BatchCancelling BatchState = "CANCELLING"
	BatchFinished   BatchState = "FINISHED"
)

// BatchOutcome is the terminal status carried by the finished signal.
type BatchOutcome string

const (
	OutcomeComplete  BatchOutcome = "COMPLETE"
	OutcomeCancelled BatchOutcome = "CANCELLED"
)
