package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/domain"
)

// ContentItemStore defines the interface for content item persistence.
// Content items are authored outside the engine; the engine only reads
// them, except for seeding and test fixtures which use Create.
type ContentItemStore interface {
	// Create saves a new content item. Returns validation errors from
	// the domain ContentItem if data is invalid, ErrDuplicate if the ID
	// already exists.
	Create(ctx context.Context, item *domain.ContentItem) error

	// GetByID retrieves a content item by its ID.
	// Returns ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error)

	// LoadPool retrieves the candidate items for session composition:
	// all items in the topic, restricted to the given learning paths
	// when any are specified. Order is unspecified; the composer owns
	// ordering.
	LoadPool(
		ctx context.Context,
		topicID uuid.UUID,
		learningPathIDs []uuid.UUID,
	) ([]*domain.ContentItem, error)

	// WithTx returns a ContentItemStore bound to the given transaction.
	WithTx(tx *sql.Tx) ContentItemStore
}
