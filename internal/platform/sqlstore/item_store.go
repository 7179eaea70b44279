package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/domain"
	"github.com/lingora/practice-api/internal/store"
)

// ItemStore implements store.ContentItemStore on a SQL database.
type ItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewItemStore creates a SQL implementation of the ContentItemStore
// interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil,
// the default logger is used.
func NewItemStore(db store.DBTX, logger *slog.Logger) *ItemStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

// Ensure ItemStore implements store.ContentItemStore.
var _ store.ContentItemStore = (*ItemStore)(nil)

// WithTx implements store.ContentItemStore.WithTx.
func (s *ItemStore) WithTx(tx *sql.Tx) store.ContentItemStore {
	return &ItemStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ContentItemStore.Create.
func (s *ItemStore) Create(ctx context.Context, item *domain.ContentItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO content_items
			(id, topic_id, learning_path_id, variant, payload, hint, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.TopicID,
		item.LearningPathID,
		string(item.Variant),
		string(item.Payload),
		item.Hint,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		s.logger.DebugContext(ctx, "failed to insert content item",
			slog.String("item_id", item.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.ContentItemStore.GetByID.
func (s *ItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error) {
	query := `
		SELECT id, topic_id, learning_path_id, variant, payload, hint, created_at, updated_at
		FROM content_items
		WHERE id = $1`

	item, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			return nil, store.ErrItemNotFound
		}
		return nil, MapError(err)
	}

	return item, nil
}

// LoadPool implements store.ContentItemStore.LoadPool.
func (s *ItemStore) LoadPool(
	ctx context.Context,
	topicID uuid.UUID,
	learningPathIDs []uuid.UUID,
) ([]*domain.ContentItem, error) {
	query := `
		SELECT id, topic_id, learning_path_id, variant, payload, hint, created_at, updated_at
		FROM content_items
		WHERE topic_id = $1`
	args := []any{topicID}

	if len(learningPathIDs) > 0 {
		placeholders := make([]string, len(learningPathIDs))
		for i, pathID := range learningPathIDs {
			placeholders[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, pathID)
		}
		query += fmt.Sprintf(" AND learning_path_id IN (%s)", strings.Join(placeholders, ", "))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var items []*domain.ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, MapError(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	s.logger.DebugContext(ctx, "loaded candidate pool",
		slog.String("topic_id", topicID.String()),
		slog.Int("pool_size", len(items)))

	return items, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.ContentItem, error) {
	var (
		item    domain.ContentItem
		variant string
		payload string
	)

	err := row.Scan(
		&item.ID,
		&item.TopicID,
		&item.LearningPathID,
		&variant,
		&payload,
		&item.Hint,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Variant = domain.Variant(variant)
	item.Payload = []byte(payload)

	return &item, nil
}
