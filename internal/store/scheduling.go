package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/domain"
)

// SchedulingRecordStore defines the interface for per-learner
// scheduling state persistence.
type SchedulingRecordStore interface {
	// Get retrieves the scheduling record for one (learner, item) pair.
	// Returns ErrRecordNotFound if the record does not exist.
	Get(ctx context.Context, learnerID, itemID uuid.UUID) (*domain.SchedulingRecord, error)

	// GetForItems retrieves the learner's records for the given items,
	// keyed by item ID. Items without a record are simply absent from
	// the map; that is how the composer recognizes new material.
	GetForItems(
		ctx context.Context,
		learnerID uuid.UUID,
		itemIDs []uuid.UUID,
	) (map[uuid.UUID]*domain.SchedulingRecord, error)

	// Save upserts a scheduling record: created on the learner's first
	// graded review of the item, replaced on every review after that.
	// Returns validation errors from the domain SchedulingRecord if
	// data is invalid.
	Save(ctx context.Context, record *domain.SchedulingRecord) error

	// WithTx returns a SchedulingRecordStore bound to the given transaction.
	WithTx(tx *sql.Tx) SchedulingRecordStore
}
