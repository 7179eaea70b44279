package practice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/domain"
	"github.com/lingora/practice-api/internal/domain/composer"
	"github.com/lingora/practice-api/internal/domain/eval"
	"github.com/lingora/practice-api/internal/domain/session"
	"github.com/lingora/practice-api/internal/domain/srs"
	"github.com/lingora/practice-api/internal/platform/logger"
	"github.com/lingora/practice-api/internal/store"
	"github.com/lingora/practice-api/internal/task"
)

// Verify interface compliance at compile time
var _ PracticeService = (*practiceServiceImpl)(nil)

// practiceServiceImpl implements the PracticeService interface.
type practiceServiceImpl struct {
	itemStore    store.ContentItemStore
	recordStore  store.SchedulingRecordStore
	sessionStore store.PracticeSessionStore
	srsService   srs.Service
	runner       *task.Runner
	registry     *registry
	logger       *slog.Logger

	// Injectable seams for tests: newRNG feeds the composer (nil rng
	// means deterministic ordering), timeFunc is the only clock.
	newRNG   func() *rand.Rand
	timeFunc func() time.Time
}

// NewPracticeService creates a new PracticeService implementation.
// runner may be nil, in which case session progress is persisted
// synchronously instead of through the background retry runner. If
// logger is nil, the default logger is used.
func NewPracticeService(
	itemStore store.ContentItemStore,
	recordStore store.SchedulingRecordStore,
	sessionStore store.PracticeSessionStore,
	srsService srs.Service,
	runner *task.Runner,
	logger *slog.Logger,
) PracticeService {
	if itemStore == nil {
		panic("itemStore cannot be nil")
	}
	if recordStore == nil {
		panic("recordStore cannot be nil")
	}
	if sessionStore == nil {
		panic("sessionStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &practiceServiceImpl{
		itemStore:    itemStore,
		recordStore:  recordStore,
		sessionStore: sessionStore,
		srsService:   srsService,
		runner:       runner,
		registry:     newRegistry(),
		logger:       logger.With(slog.String("component", "practice_service")),
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		timeFunc: time.Now,
	}
}

// CreateSession implements PracticeService.CreateSession.
func (s *practiceServiceImpl) CreateSession(
	ctx context.Context,
	learnerID uuid.UUID,
	config domain.SessionConfiguration,
) (*domain.PracticeSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	pool, err := s.itemStore.LoadPool(ctx, config.TopicID, config.LearningPathIDs)
	if err != nil {
		log.Error("failed to load item pool",
			slog.String("topic_id", config.TopicID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load item pool: %w", err)
	}

	itemIDs := make([]uuid.UUID, len(pool))
	for i, item := range pool {
		itemIDs[i] = item.ID
	}

	records, err := s.recordStore.GetForItems(ctx, learnerID, itemIDs)
	if err != nil {
		log.Error("failed to load scheduling records",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load scheduling records: %w", err)
	}

	now := s.timeFunc().UTC()
	taskIDs, err := composer.Compose(pool, records, config, now, s.newRNG())
	if err != nil {
		return nil, err
	}

	practiceSession, err := domain.NewPracticeSession(learnerID, config, taskIDs)
	if err != nil {
		return nil, err
	}

	if err := s.sessionStore.Create(ctx, practiceSession); err != nil {
		log.Error("failed to persist new session",
			slog.String("session_id", practiceSession.ID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to persist new session: %w", err)
	}

	machine, err := session.NewMachine(practiceSession)
	if err != nil {
		return nil, err
	}

	items := make(map[uuid.UUID]*domain.ContentItem, len(taskIDs))
	for _, item := range pool {
		items[item.ID] = item
	}

	s.registry.put(practiceSession.ID, &sessionHandle{
		machine: machine,
		items:   items,
	})

	log.Info("practice session created",
		slog.String("session_id", practiceSession.ID.String()),
		slog.String("learner_id", learnerID.String()),
		slog.Int("task_count", len(taskIDs)),
		slog.Int("pool_size", len(pool)))

	return practiceSession, nil
}

// GetSession implements PracticeService.GetSession.
func (s *practiceServiceImpl) GetSession(
	ctx context.Context,
	learnerID, sessionID uuid.UUID,
) (session.Snapshot, error) {
	if handle, ok := s.registry.get(sessionID); ok {
		handle.mu.Lock()
		defer handle.mu.Unlock()

		if handle.machine.Session().LearnerID != learnerID {
			return session.Snapshot{}, store.ErrSessionNotFound
		}
		return handle.machine.Snapshot(), nil
	}

	practiceSession, err := s.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}
	if practiceSession.LearnerID != learnerID {
		return session.Snapshot{}, store.ErrSessionNotFound
	}

	return session.Snapshot{Session: practiceSession}, nil
}

// CurrentItem implements PracticeService.CurrentItem.
func (s *practiceServiceImpl) CurrentItem(
	ctx context.Context,
	learnerID, sessionID uuid.UUID,
) (*domain.ContentItem, error) {
	handle, err := s.resolveHandle(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	taskID, ok := handle.machine.CurrentTaskID()
	if !ok {
		return nil, session.ErrInvalidTransition
	}

	return s.taskItem(ctx, handle, taskID)
}

// StartSession implements PracticeService.StartSession.
func (s *practiceServiceImpl) StartSession(
	ctx context.Context,
	learnerID, sessionID uuid.UUID,
) (session.Snapshot, error) {
	return s.command(ctx, learnerID, sessionID, func(m *session.Machine, now time.Time) error {
		return m.Start(now)
	})
}

// SubmitAnswer implements PracticeService.SubmitAnswer.
func (s *practiceServiceImpl) SubmitAnswer(
	ctx context.Context,
	learnerID, sessionID uuid.UUID,
	answer json.RawMessage,
	elapsedMs int64,
) (session.Snapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	handle, err := s.resolveHandle(ctx, learnerID, sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	machine := handle.machine
	taskID, ok := machine.CurrentTaskID()
	if !ok {
		return session.Snapshot{}, session.ErrInvalidTransition
	}

	// Double submission: feedback is already showing, so return the
	// unchanged snapshot with the cached result. No re-grading, no
	// second scheduling update.
	if machine.Micro() == session.MicroAnswered {
		log.Debug("duplicate answer ignored",
			slog.String("session_id", sessionID.String()),
			slog.String("task_id", taskID.String()))
		return machine.Snapshot(), nil
	}

	item, err := s.taskItem(ctx, handle, taskID)
	if err != nil {
		return session.Snapshot{}, err
	}

	submission, err := eval.DecodeSubmission(item.Variant, answer)
	if err != nil {
		return session.Snapshot{}, err
	}

	result, err := eval.Evaluate(item, submission, elapsedMs)
	if err != nil {
		return session.Snapshot{}, err
	}

	now := s.timeFunc().UTC()
	if err := s.applyScheduling(ctx, learnerID, item, result, now); err != nil {
		return session.Snapshot{}, err
	}

	if err := machine.RecordAnswer(item.Variant, result, now); err != nil {
		return session.Snapshot{}, err
	}

	s.persist(handle)

	log.Debug("answer graded",
		slog.String("session_id", sessionID.String()),
		slog.String("task_id", taskID.String()),
		slog.String("variant", string(item.Variant)),
		slog.Bool("correct", result.Correct),
		slog.Float64("score", result.Score))

	return machine.Snapshot(), nil
}

// SkipTask implements PracticeService.SkipTask.
func (s *practiceServiceImpl) SkipTask(
	ctx context.Context,
	learnerID, sessionID uuid.UUID,
) (session.Snapshot, error) {
	return s.command(ctx, learnerID, sessionID, func(m *session.Machine, now time.Time) error {
		return m.Skip(now)
	})
}

// AdvanceTask implements PracticeService.AdvanceTask.
func (s *practiceServiceImpl) AdvanceTask(
	ctx context.Context,
	learnerID, sessionID uuid.UUID,
) (session.Snapshot, error) {
	return s.command(ctx, learnerID, sessionID, func(m *session.Machine, now time.Time) error {
		return m.Advance(now)
	})
}

// ToggleHint implements PracticeService.ToggleHint. Hint visibility is
// runtime-only state, so nothing is persisted.
func (s *practiceServiceImpl) ToggleHint(
	ctx context.Context,
	learnerID, sessionID uuid.UUID,
) (session.Snapshot, error) {
	handle, err := s.resolveHandle(ctx, learnerID, sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	if err := handle.machine.ToggleHint(); err != nil {
		return session.Snapshot{}, err
	}
	return handle.machine.Snapshot(), nil
}

// CancelSession implements PracticeService.CancelSession.
func (s *practiceServiceImpl) CancelSession(
	ctx context.Context,
	learnerID, sessionID uuid.UUID,
) (session.Snapshot, error) {
	return s.command(ctx, learnerID, sessionID, func(m *session.Machine, now time.Time) error {
		return m.Cancel(now)
	})
}

// FinishSession implements PracticeService.FinishSession.
func (s *practiceServiceImpl) FinishSession(
	ctx context.Context,
	learnerID, sessionID uuid.UUID,
) (session.Snapshot, error) {
	return s.command(ctx, learnerID, sessionID, func(m *session.Machine, now time.Time) error {
		return m.Finish(now)
	})
}

// command runs one state machine command under the session's handle
// lock, persists the outcome, and releases terminal sessions from the
// registry.
func (s *practiceServiceImpl) command(
	ctx context.Context,
	learnerID, sessionID uuid.UUID,
	apply func(m *session.Machine, now time.Time) error,
) (session.Snapshot, error) {
	handle, err := s.resolveHandle(ctx, learnerID, sessionID)
	if err != nil {
		return session.Snapshot{}, err
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	now := s.timeFunc().UTC()
	if err := apply(handle.machine, now); err != nil {
		return session.Snapshot{}, err
	}

	s.persist(handle)

	if handle.machine.Session().Execution.Status.IsTerminal() {
		s.registry.remove(sessionID)
	}

	return handle.machine.Snapshot(), nil
}

// resolveHandle locates the runtime handle for a session, lazily
// creating one for sessions that have not started yet (they have no
// runtime state to lose). In-progress sessions without a resident
// handle cannot be commanded from this instance.
func (s *practiceServiceImpl) resolveHandle(
	ctx context.Context,
	learnerID, sessionID uuid.UUID,
) (*sessionHandle, error) {
	if handle, ok := s.registry.get(sessionID); ok {
		if handle.machine.Session().LearnerID != learnerID {
			return nil, store.ErrSessionNotFound
		}
		return handle, nil
	}

	practiceSession, err := s.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if practiceSession.LearnerID != learnerID {
		return nil, store.ErrSessionNotFound
	}

	switch practiceSession.Execution.Status {
	case domain.SessionNotStarted:
		machine, err := session.NewMachine(practiceSession)
		if err != nil {
			return nil, err
		}
		handle := &sessionHandle{
			machine: machine,
			items:   make(map[uuid.UUID]*domain.ContentItem),
		}
		s.registry.put(sessionID, handle)
		return handle, nil
	case domain.SessionInProgress:
		return nil, ErrSessionNotResident
	default:
		return nil, session.ErrInvalidTransition
	}
}

// taskItem returns the content item for a composed task, preferring the
// handle's cache and falling back to the store.
func (s *practiceServiceImpl) taskItem(
	ctx context.Context,
	handle *sessionHandle,
	taskID uuid.UUID,
) (*domain.ContentItem, error) {
	if item, ok := handle.items[taskID]; ok {
		return item, nil
	}

	item, err := s.itemStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	handle.items[taskID] = item
	return item, nil
}

// applyScheduling feeds a graded review into the SM-2 scheduler and
// saves the successor record. First reviews start from a fresh record.
func (s *practiceServiceImpl) applyScheduling(
	ctx context.Context,
	learnerID uuid.UUID,
	item *domain.ContentItem,
	result *domain.EvaluationResult,
	now time.Time,
) error {
	record, err := s.recordStore.Get(ctx, learnerID, item.ID)
	if errors.Is(err, store.ErrRecordNotFound) {
		record, err = domain.NewSchedulingRecord(learnerID, item.ID, now)
	}
	if err != nil {
		return fmt.Errorf("failed to load scheduling record: %w", err)
	}

	quality := qualityForResult(item.Variant, result)
	next, err := s.srsService.Update(record, quality, now)
	if err != nil {
		return fmt.Errorf("failed to compute next review: %w", err)
	}

	if err := s.recordStore.Save(ctx, next); err != nil {
		return fmt.Errorf("failed to save scheduling record: %w", err)
	}

	return nil
}

// qualityForResult maps a grading outcome to an SM-2 quality grade.
// Partial-credit variants grade through the score table; all-or-nothing
// variants grade as a binary; flashcards carry the learner's own
// assessment.
func qualityForResult(variant domain.Variant, result *domain.EvaluationResult) srs.Quality {
	switch variant {
	case domain.VariantFlashcard:
		return srs.QualityForSelfAssessment(result.Correct)
	case domain.VariantMultiSelect, domain.VariantCloze,
		domain.VariantMatching, domain.VariantErrorDetection:
		return srs.QualityForScore(result.Score)
	default:
		return srs.QualityForBinary(result.Correct)
	}
}

// persist saves the session's current state, through the retry runner
// when one is wired and synchronously otherwise. The task re-locks the
// handle at execution time so it always writes the latest state; a
// version conflict means an external writer owns the row now, which
// retrying cannot fix.
func (s *practiceServiceImpl) persist(handle *sessionHandle) {
	sessionID := handle.machine.Session().ID

	save := func(ctx context.Context) error {
		handle.mu.Lock()
		defer handle.mu.Unlock()

		err := s.sessionStore.Update(ctx, handle.machine.Session())
		switch {
		case err == nil:
			return nil
		case store.IsConflictError(err) || errors.Is(err, store.ErrInvalidEntity):
			return fmt.Errorf("%w: %v", task.ErrPermanent, err)
		default:
			return err
		}
	}

	if s.runner != nil {
		taskErr := s.runner.Submit(task.NewFuncTask("session_persist", save))
		if taskErr == nil {
			return
		}
		s.logger.Warn("falling back to synchronous session persistence",
			slog.String("session_id", sessionID.String()),
			slog.String("error", taskErr.Error()))
	}

	// Synchronous fallback. The handle lock is already held by the
	// caller, so write directly instead of through save.
	if err := s.sessionStore.Update(context.Background(), handle.machine.Session()); err != nil {
		s.logger.Error("failed to persist session",
			slog.String("session_id", sessionID.String()),
			slog.String("error", err.Error()))
	}
}
