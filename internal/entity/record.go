package entity

import (
	"github.com/google/uuid"

	"github.com/jmartens-dev/bulletin-harvester/constants"
	"github.com/jmartens-dev/bulletin-harvester/internal/harvest"
)

// Record is the per-document outcome. Created once by the classifier,
// immutable afterwards, consumed by the report emitter.
type Record struct {
	ID       uuid.UUID
	Filename string
	Fields   harvest.Result
	Status   constants.RecordStatus

	// Review metadata, set only when Status is NEEDS_REVIEW.
	ReviewReason string
	ReviewPath   string // persisted raw-text dump, "" if the write failed

	// Raw error text for LOCKED and FAILED records, preserved for the log.
	Err string
}
