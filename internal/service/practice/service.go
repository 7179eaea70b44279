// Package practice orchestrates practice sessions: composing the task
// list, driving the per-session state machine, grading submissions, and
// feeding graded reviews into the SM-2 scheduler.
//
// The domain packages under internal/domain stay pure; this package is
// the shell that binds them to storage, the clock, and the background
// persistence runner.
package practice

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/domain"
	"github.com/lingora/practice-api/internal/domain/session"
)

// Common error types for PracticeService.
var (
	// ErrSessionNotResident indicates the session exists but its
	// in-progress runtime state lives on another instance (or was lost
	// to a restart), so commands cannot be applied here.
	ErrSessionNotResident = errors.New("session is not active on this instance")
)

// PracticeService provides the command surface for practice sessions.
// Every method checks that the session belongs to the calling learner;
// foreign sessions are reported as not found rather than forbidden so
// session IDs are not probeable.
type PracticeService interface {
	// CreateSession composes a task list for the learner from the
	// topic's item pool (due reviews first, then new material) and
	// persists a not-yet-started session over it. A pool too small for
	// the target count yields a smaller session, not an error.
	CreateSession(
		ctx context.Context,
		learnerID uuid.UUID,
		config domain.SessionConfiguration,
	) (*domain.PracticeSession, error)

	// GetSession returns the current view of a session.
	GetSession(ctx context.Context, learnerID, sessionID uuid.UUID) (session.Snapshot, error)

	// CurrentItem returns the content item under the session's cursor,
	// for presenting the task. Returns session.ErrInvalidTransition
	// when the session has no current task.
	CurrentItem(ctx context.Context, learnerID, sessionID uuid.UUID) (*domain.ContentItem, error)

	// StartSession moves a session to InProgress and presents its first
	// task. Returns session.ErrEmptyTaskList if composition produced no
	// tasks.
	StartSession(ctx context.Context, learnerID, sessionID uuid.UUID) (session.Snapshot, error)

	// SubmitAnswer grades the raw submission against the current task,
	// updates the learner's scheduling record, and records the outcome
	// on the session. Submitting while feedback for the current task is
	// already showing is an idempotent no-op that returns the unchanged
	// snapshot.
	SubmitAnswer(
		ctx context.Context,
		learnerID, sessionID uuid.UUID,
		answer json.RawMessage,
		elapsedMs int64,
	) (session.Snapshot, error)

	// SkipTask passes over the presented task without grading it or
	// touching its scheduling record.
	SkipTask(ctx context.Context, learnerID, sessionID uuid.UUID) (session.Snapshot, error)

	// AdvanceTask moves past an answered task, finalizing the session
	// when the task list is exhausted.
	AdvanceTask(ctx context.Context, learnerID, sessionID uuid.UUID) (session.Snapshot, error)

	// ToggleHint flips hint visibility for the presented task.
	ToggleHint(ctx context.Context, learnerID, sessionID uuid.UUID) (session.Snapshot, error)

	// CancelSession abandons an in-progress session without results.
	CancelSession(ctx context.Context, learnerID, sessionID uuid.UUID) (session.Snapshot, error)

	// FinishSession ends an in-progress session early and computes its
	// results from the tasks completed so far.
	FinishSession(ctx context.Context, learnerID, sessionID uuid.UUID) (session.Snapshot, error)
}
