package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/domain"
	"github.com/lingora/practice-api/internal/store"
)

// SchedulingStore implements store.SchedulingRecordStore on a SQL
// database.
type SchedulingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSchedulingStore creates a SQL implementation of the
// SchedulingRecordStore interface. If logger is nil, the default
// logger is used.
func NewSchedulingStore(db store.DBTX, logger *slog.Logger) *SchedulingStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SchedulingStore{
		db:     db,
		logger: logger.With(slog.String("component", "scheduling_store")),
	}
}

// Ensure SchedulingStore implements store.SchedulingRecordStore.
var _ store.SchedulingRecordStore = (*SchedulingStore)(nil)

// WithTx implements store.SchedulingRecordStore.WithTx.
func (s *SchedulingStore) WithTx(tx *sql.Tx) store.SchedulingRecordStore {
	return &SchedulingStore{
		db:     tx,
		logger: s.logger,
	}
}

// Get implements store.SchedulingRecordStore.Get.
func (s *SchedulingStore) Get(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
) (*domain.SchedulingRecord, error) {
	query := `
		SELECT learner_id, item_id, ease_factor, repetition_count, interval_days,
			next_due_at, last_reviewed_at, created_at, updated_at
		FROM scheduling_records
		WHERE learner_id = $1 AND item_id = $2`

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, learnerID, itemID))
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			return nil, store.ErrRecordNotFound
		}
		return nil, MapError(err)
	}

	return record, nil
}

// GetForItems implements store.SchedulingRecordStore.GetForItems.
// Items the learner has never reviewed are simply absent from the map.
func (s *SchedulingStore) GetForItems(
	ctx context.Context,
	learnerID uuid.UUID,
	itemIDs []uuid.UUID,
) (map[uuid.UUID]*domain.SchedulingRecord, error) {
	records := make(map[uuid.UUID]*domain.SchedulingRecord, len(itemIDs))
	if len(itemIDs) == 0 {
		return records, nil
	}

	placeholders := make([]string, len(itemIDs))
	args := make([]any, 0, len(itemIDs)+1)
	args = append(args, learnerID)
	for i, itemID := range itemIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, itemID)
	}

	query := fmt.Sprintf(`
		SELECT learner_id, item_id, ease_factor, repetition_count, interval_days,
			next_due_at, last_reviewed_at, created_at, updated_at
		FROM scheduling_records
		WHERE learner_id = $1 AND item_id IN (%s)`,
		strings.Join(placeholders, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, MapError(err)
		}
		records[record.ItemID] = record
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return records, nil
}

// Save implements store.SchedulingRecordStore.Save. The write is an
// upsert keyed on (learner_id, item_id).
func (s *SchedulingStore) Save(ctx context.Context, record *domain.SchedulingRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO scheduling_records
			(learner_id, item_id, ease_factor, repetition_count, interval_days,
			next_due_at, last_reviewed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (learner_id, item_id) DO UPDATE SET
			ease_factor = EXCLUDED.ease_factor,
			repetition_count = EXCLUDED.repetition_count,
			interval_days = EXCLUDED.interval_days,
			next_due_at = EXCLUDED.next_due_at,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			updated_at = EXCLUDED.updated_at`

	var lastReviewedAt sql.NullTime
	if !record.LastReviewedAt.IsZero() {
		lastReviewedAt = sql.NullTime{Time: record.LastReviewedAt, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		record.LearnerID,
		record.ItemID,
		record.EaseFactor,
		record.RepetitionCount,
		record.IntervalDays,
		record.NextDueAt,
		lastReviewedAt,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		s.logger.DebugContext(ctx, "failed to save scheduling record",
			slog.String("learner_id", record.LearnerID.String()),
			slog.String("item_id", record.ItemID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

func scanRecord(row rowScanner) (*domain.SchedulingRecord, error) {
	var (
		record         domain.SchedulingRecord
		lastReviewedAt sql.NullTime
	)

	err := row.Scan(
		&record.LearnerID,
		&record.ItemID,
		&record.EaseFactor,
		&record.RepetitionCount,
		&record.IntervalDays,
		&record.NextDueAt,
		&lastReviewedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastReviewedAt.Valid {
		record.LastReviewedAt = lastReviewedAt.Time
	} else {
		record.LastReviewedAt = time.Time{}
	}

	return &record, nil
}
