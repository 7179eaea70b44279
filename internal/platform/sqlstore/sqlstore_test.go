package sqlstore_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // driver for "sqlite"

	"github.com/lingora/practice-api/internal/domain"
	"github.com/lingora/practice-api/internal/platform/sqlstore"
	"github.com/lingora/practice-api/internal/store"
)

const testSchema = `
CREATE TABLE content_items (
	id TEXT PRIMARY KEY,
	topic_id TEXT NOT NULL,
	learning_path_id TEXT NOT NULL,
	variant TEXT NOT NULL,
	payload TEXT NOT NULL,
	hint TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE scheduling_records (
	learner_id TEXT NOT NULL,
	item_id TEXT NOT NULL,
	ease_factor REAL NOT NULL,
	repetition_count INTEGER NOT NULL,
	interval_days INTEGER NOT NULL,
	next_due_at TIMESTAMP NOT NULL,
	last_reviewed_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (learner_id, item_id)
);

CREATE TABLE practice_sessions (
	id TEXT PRIMARY KEY,
	learner_id TEXT NOT NULL,
	config TEXT NOT NULL,
	execution TEXT NOT NULL,
	results TEXT,
	version INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// newTestDB opens an in-memory SQLite database with the application
// schema. The store SQL is written to the subset both drivers accept,
// so SQLite exercises the same statements production runs on Postgres.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

func testItem(t *testing.T, topicID, pathID uuid.UUID) *domain.ContentItem {
	t.Helper()

	payload, err := json.Marshal(domain.TrueFalsePayload{
		Statement: "Der Hund ist ein Tier.",
		Answer:    true,
	})
	require.NoError(t, err)

	item, err := domain.NewContentItem(
		topicID, pathID, domain.VariantTrueFalse, payload, "Think about animals.")
	require.NoError(t, err)

	return item
}

func TestItemStoreCreateAndGet(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	itemStore := sqlstore.NewItemStore(db, nil)
	ctx := context.Background()

	item := testItem(t, uuid.New(), uuid.New())
	require.NoError(t, itemStore.Create(ctx, item))

	got, err := itemStore.GetByID(ctx, item.ID)
	require.NoError(t, err)

	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, item.TopicID, got.TopicID)
	assert.Equal(t, item.LearningPathID, got.LearningPathID)
	assert.Equal(t, item.Variant, got.Variant)
	assert.JSONEq(t, string(item.Payload), string(got.Payload))
	assert.Equal(t, item.Hint, got.Hint)
	assert.WithinDuration(t, item.CreatedAt, got.CreatedAt, time.Second)
}

func TestItemStoreGetMissing(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	itemStore := sqlstore.NewItemStore(db, nil)

	_, err := itemStore.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrItemNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestItemStoreDuplicateCreate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	itemStore := sqlstore.NewItemStore(db, nil)
	ctx := context.Background()

	item := testItem(t, uuid.New(), uuid.New())
	require.NoError(t, itemStore.Create(ctx, item))

	err := itemStore.Create(ctx, item)
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestItemStoreLoadPool(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	itemStore := sqlstore.NewItemStore(db, nil)
	ctx := context.Background()

	topicID := uuid.New()
	pathA := uuid.New()
	pathB := uuid.New()

	inTopicA := testItem(t, topicID, pathA)
	inTopicB := testItem(t, topicID, pathB)
	otherTopic := testItem(t, uuid.New(), pathA)

	for _, item := range []*domain.ContentItem{inTopicA, inTopicB, otherTopic} {
		require.NoError(t, itemStore.Create(ctx, item))
	}

	// No path filter: everything in the topic.
	pool, err := itemStore.LoadPool(ctx, topicID, nil)
	require.NoError(t, err)
	assert.Len(t, pool, 2)

	// Path filter narrows the pool.
	pool, err = itemStore.LoadPool(ctx, topicID, []uuid.UUID{pathB})
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, inTopicB.ID, pool[0].ID)

	// Unknown topic: empty pool, no error.
	pool, err = itemStore.LoadPool(ctx, uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, pool)
}

func TestSchedulingStoreSaveAndGet(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	recordStore := sqlstore.NewSchedulingStore(db, nil)
	ctx := context.Background()

	learnerID := uuid.New()
	itemID := uuid.New()

	_, err := recordStore.Get(ctx, learnerID, itemID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	now := time.Now().UTC().Truncate(time.Second)
	record, err := domain.NewSchedulingRecord(learnerID, itemID, now)
	require.NoError(t, err)
	require.NoError(t, recordStore.Save(ctx, record))

	got, err := recordStore.Get(ctx, learnerID, itemID)
	require.NoError(t, err)
	assert.Equal(t, learnerID, got.LearnerID)
	assert.Equal(t, itemID, got.ItemID)
	assert.InDelta(t, domain.DefaultEaseFactor, got.EaseFactor, 1e-9)
	assert.Equal(t, 0, got.RepetitionCount)
	assert.True(t, got.LastReviewedAt.IsZero(), "never-reviewed record must round-trip as zero")
}

func TestSchedulingStoreUpsert(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	recordStore := sqlstore.NewSchedulingStore(db, nil)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	record, err := domain.NewSchedulingRecord(uuid.New(), uuid.New(), now)
	require.NoError(t, err)
	require.NoError(t, recordStore.Save(ctx, record))

	// Simulate a graded review and save again.
	record.EaseFactor = 2.6
	record.RepetitionCount = 1
	record.IntervalDays = 1
	record.LastReviewedAt = now
	record.NextDueAt = now.AddDate(0, 0, 1)
	record.UpdatedAt = now
	require.NoError(t, recordStore.Save(ctx, record))

	got, err := recordStore.Get(ctx, record.LearnerID, record.ItemID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RepetitionCount)
	assert.Equal(t, 1, got.IntervalDays)
	assert.InDelta(t, 2.6, got.EaseFactor, 1e-9)
	assert.WithinDuration(t, now, got.LastReviewedAt, time.Second)
}

func TestSchedulingStoreGetForItems(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	recordStore := sqlstore.NewSchedulingStore(db, nil)
	ctx := context.Background()

	learnerID := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	reviewed := uuid.New()
	unreviewed := uuid.New()

	record, err := domain.NewSchedulingRecord(learnerID, reviewed, now)
	require.NoError(t, err)
	require.NoError(t, recordStore.Save(ctx, record))

	// A different learner's record for the same item must not leak in.
	other, err := domain.NewSchedulingRecord(uuid.New(), unreviewed, now)
	require.NoError(t, err)
	require.NoError(t, recordStore.Save(ctx, other))

	records, err := recordStore.GetForItems(ctx, learnerID, []uuid.UUID{reviewed, unreviewed})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Contains(t, records, reviewed)
	assert.NotContains(t, records, unreviewed)

	records, err = recordStore.GetForItems(ctx, learnerID, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func testSession(t *testing.T, taskIDs []uuid.UUID) *domain.PracticeSession {
	t.Helper()

	session, err := domain.NewPracticeSession(uuid.New(), domain.SessionConfiguration{
		TopicID:       uuid.New(),
		TargetCount:   len(taskIDs),
		IncludeReview: true,
	}, taskIDs)
	require.NoError(t, err)

	return session
}

func TestSessionStoreCreateAndGet(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	sessionStore := sqlstore.NewSessionStore(db, nil)
	ctx := context.Background()

	taskIDs := []uuid.UUID{uuid.New(), uuid.New()}
	session := testSession(t, taskIDs)
	require.NoError(t, sessionStore.Create(ctx, session))

	got, err := sessionStore.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.LearnerID, got.LearnerID)
	assert.Equal(t, session.Config.TopicID, got.Config.TopicID)
	assert.Equal(t, taskIDs, got.Execution.TaskIDs)
	assert.Equal(t, domain.SessionNotStarted, got.Execution.Status)
	assert.Nil(t, got.Results)
	assert.Equal(t, 1, got.Version)

	_, err = sessionStore.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessionStoreUpdateIncrementsVersion(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	sessionStore := sqlstore.NewSessionStore(db, nil)
	ctx := context.Background()

	session := testSession(t, []uuid.UUID{uuid.New()})
	require.NoError(t, sessionStore.Create(ctx, session))

	session.Execution.Status = domain.SessionInProgress
	session.Execution.StartedAt = time.Now().UTC()
	session.UpdatedAt = time.Now().UTC()
	require.NoError(t, sessionStore.Update(ctx, session))
	assert.Equal(t, 2, session.Version)

	got, err := sessionStore.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, domain.SessionInProgress, got.Execution.Status)
}

func TestSessionStoreUpdateConflict(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	sessionStore := sqlstore.NewSessionStore(db, nil)
	ctx := context.Background()

	session := testSession(t, []uuid.UUID{uuid.New()})
	require.NoError(t, sessionStore.Create(ctx, session))

	// Two copies of the same session, as two concurrent readers.
	stale, err := sessionStore.GetByID(ctx, session.ID)
	require.NoError(t, err)

	session.Execution.Status = domain.SessionInProgress
	require.NoError(t, sessionStore.Update(ctx, session))

	stale.Execution.Status = domain.SessionCancelled
	err = sessionStore.Update(ctx, stale)
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.True(t, store.IsConflictError(err))
}

func TestSessionStoreUpdateMissing(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	sessionStore := sqlstore.NewSessionStore(db, nil)

	session := testSession(t, []uuid.UUID{uuid.New()})
	err := sessionStore.Update(context.Background(), session)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessionStoreResultsRoundTrip(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	sessionStore := sqlstore.NewSessionStore(db, nil)
	ctx := context.Background()

	session := testSession(t, []uuid.UUID{uuid.New(), uuid.New()})
	require.NoError(t, sessionStore.Create(ctx, session))

	session.Execution.Status = domain.SessionCompleted
	session.Execution.CompletedCount = 2
	session.Execution.CorrectCount = 1
	session.Results = &domain.SessionResults{
		Accuracy:      0.5,
		AverageTimeMs: 1800,
		PerVariant: map[domain.Variant]domain.VariantBreakdown{
			domain.VariantCloze: {Completed: 2, Correct: 1},
		},
	}
	require.NoError(t, sessionStore.Update(ctx, session))

	got, err := sessionStore.GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Results)
	assert.InDelta(t, 0.5, got.Results.Accuracy, 1e-9)
	assert.Equal(t, int64(1800), got.Results.AverageTimeMs)
	assert.Equal(t, domain.VariantBreakdown{Completed: 2, Correct: 1},
		got.Results.PerVariant[domain.VariantCloze])
}

func TestStoresInsideTransaction(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	itemStore := sqlstore.NewItemStore(db, nil)
	item := testItem(t, uuid.New(), uuid.New())

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return itemStore.WithTx(tx).Create(ctx, item)
	})
	require.NoError(t, err)

	_, err = itemStore.GetByID(ctx, item.ID)
	assert.NoError(t, err)

	// A failing transaction leaves nothing behind.
	rollback := testItem(t, uuid.New(), uuid.New())
	err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		if err := itemStore.WithTx(tx).Create(ctx, rollback); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	_, err = itemStore.GetByID(ctx, rollback.ID)
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}
