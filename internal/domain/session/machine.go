// Package session implements the progress state machine for one
// practice session: NotStarted → InProgress → {Completed, Cancelled},
// with a Presented/Answered micro-state per task and an orthogonal
// hint-visibility flag.
//
// The machine is pure and single-threaded: commands mutate in-memory
// state only, rejected commands leave the state exactly as it was, and
// the injected now is the only clock. Persistence and evaluation happen
// in the service shell around it.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/domain"
)

// Command errors.
var (
	// ErrInvalidTransition signals a command issued outside its valid
	// state. The session state is left untouched; the caller should
	// re-sync its view.
	ErrInvalidTransition = errors.New("command not valid in current session state")

	// ErrAlreadyAnswered signals an answer recorded while the current
	// task is already answered. Callers treat this as an idempotent
	// no-op (double-click protection), not a failure.
	ErrAlreadyAnswered = errors.New("current task already answered")

	// ErrEmptyTaskList signals an attempt to start a session whose
	// composition produced no tasks.
	ErrEmptyTaskList = errors.New("cannot start a session with no tasks")

	// ErrNilSession signals a missing session.
	ErrNilSession = errors.New("practice session cannot be nil")
)

// MicroState is the per-task progress within an in-progress session.
type MicroState string

// Per-task micro-states.
const (
	MicroPresented MicroState = "presented"
	MicroAnswered  MicroState = "answered"
)

// Machine drives a PracticeSession through its lifecycle. It owns the
// session value it was created with; callers read through Snapshot and
// persist through Session.
type Machine struct {
	session     *domain.PracticeSession
	cursor      int
	micro       MicroState
	hintVisible bool
	lastResult  *domain.EvaluationResult

	totalAnswerMs int64
	perVariant    map[domain.Variant]domain.VariantBreakdown
}

// Snapshot is a read-only view of the machine for the presentation
// layer.
type Snapshot struct {
	Session       *domain.PracticeSession
	Cursor        int
	CurrentTaskID uuid.UUID
	MicroState    MicroState
	HintVisible   bool
	LastResult    *domain.EvaluationResult
}

// NewMachine creates a machine over a session that has not started yet.
func NewMachine(session *domain.PracticeSession) (*Machine, error) {
	if session == nil {
		return nil, ErrNilSession
	}
	if session.Execution.Status != domain.SessionNotStarted {
		return nil, ErrInvalidTransition
	}

	return &Machine{
		session:    session,
		perVariant: make(map[domain.Variant]domain.VariantBreakdown),
	}, nil
}

// Session returns the underlying session for persistence.
func (m *Machine) Session() *domain.PracticeSession {
	return m.session
}

// Micro returns the current per-task micro-state; empty when the
// session is not in progress.
func (m *Machine) Micro() MicroState {
	return m.micro
}

// CurrentTaskID returns the task under the cursor, or false when the
// session is not in progress.
func (m *Machine) CurrentTaskID() (uuid.UUID, bool) {
	if m.session.Execution.Status != domain.SessionInProgress ||
		m.cursor >= len(m.session.Execution.TaskIDs) {
		return uuid.Nil, false
	}
	return m.session.Execution.TaskIDs[m.cursor], true
}

// Snapshot returns the current read-only view.
func (m *Machine) Snapshot() Snapshot {
	taskID, _ := m.CurrentTaskID()
	return Snapshot{
		Session:       m.session,
		Cursor:        m.cursor,
		CurrentTaskID: taskID,
		MicroState:    m.micro,
		HintVisible:   m.hintVisible,
		LastResult:    m.lastResult,
	}
}

// Start moves the session from NotStarted to InProgress and presents
// the first task. Requires a non-empty task list.
func (m *Machine) Start(now time.Time) error {
	if m.session.Execution.Status != domain.SessionNotStarted {
		return ErrInvalidTransition
	}
	if len(m.session.Execution.TaskIDs) == 0 {
		return ErrEmptyTaskList
	}

	m.session.Execution.Status = domain.SessionInProgress
	m.session.Execution.StartedAt = now
	m.cursor = 0
	m.micro = MicroPresented
	m.hintVisible = false
	return nil
}

// RecordAnswer applies an evaluation to the current task: counts it as
// completed (and correct if graded so), hides the hint, and moves the
// micro-state to Answered. The variant feeds the per-variant breakdown.
//
// Returns ErrAlreadyAnswered when the current task is already in the
// Answered micro-state so callers can make double submissions a no-op.
func (m *Machine) RecordAnswer(
	variant domain.Variant,
	result *domain.EvaluationResult,
	now time.Time,
) error {
	if m.session.Execution.Status != domain.SessionInProgress {
		return ErrInvalidTransition
	}
	if m.micro == MicroAnswered {
		return ErrAlreadyAnswered
	}
	if result == nil {
		return ErrInvalidTransition
	}

	m.session.Execution.CompletedCount++
	if result.Correct {
		m.session.Execution.CorrectCount++
	}

	breakdown := m.perVariant[variant]
	breakdown.Completed++
	if result.Correct {
		breakdown.Correct++
	}
	m.perVariant[variant] = breakdown

	m.totalAnswerMs += result.TimeSpentMs
	m.lastResult = result
	m.hintVisible = false // hint hidden during feedback
	m.micro = MicroAnswered
	m.session.UpdatedAt = now
	return nil
}

// Skip passes over the current task without grading it or touching its
// scheduling record. Skipping the final task finalizes the session the
// same way advancing past it does.
func (m *Machine) Skip(now time.Time) error {
	if m.session.Execution.Status != domain.SessionInProgress || m.micro != MicroPresented {
		return ErrInvalidTransition
	}

	m.moveCursor(now)
	return nil
}

// Advance moves past an answered task to the next one, or finalizes the
// session when the task list is exhausted.
func (m *Machine) Advance(now time.Time) error {
	if m.session.Execution.Status != domain.SessionInProgress || m.micro != MicroAnswered {
		return ErrInvalidTransition
	}

	m.moveCursor(now)
	return nil
}

// ToggleHint flips hint visibility for the presented task. Rejected
// while feedback for an answered task is showing.
func (m *Machine) ToggleHint() error {
	if m.session.Execution.Status != domain.SessionInProgress || m.micro != MicroPresented {
		return ErrInvalidTransition
	}

	m.hintVisible = !m.hintVisible
	return nil
}

// Cancel abandons an in-progress session without computing results.
func (m *Machine) Cancel(now time.Time) error {
	if m.session.Execution.Status != domain.SessionInProgress {
		return ErrInvalidTransition
	}

	m.session.Execution.Status = domain.SessionCancelled
	m.session.Execution.CompletedAt = now
	m.session.UpdatedAt = now
	m.hintVisible = false
	m.micro = ""
	return nil
}

// Finish ends an in-progress session early and computes its results.
// Reaching the end of the task list triggers the same finalization.
func (m *Machine) Finish(now time.Time) error {
	if m.session.Execution.Status != domain.SessionInProgress {
		return ErrInvalidTransition
	}

	m.finalize(now)
	return nil
}

// moveCursor advances to the next task, finalizing at the end of the
// list.
func (m *Machine) moveCursor(now time.Time) {
	m.cursor++
	m.hintVisible = false
	m.session.UpdatedAt = now

	if m.cursor >= len(m.session.Execution.TaskIDs) {
		m.finalize(now)
		return
	}
	m.micro = MicroPresented
}

// finalize computes the session results and moves to Completed.
func (m *Machine) finalize(now time.Time) {
	completed := m.session.Execution.CompletedCount

	results := &domain.SessionResults{
		PerVariant: make(map[domain.Variant]domain.VariantBreakdown, len(m.perVariant)),
	}
	for variant, breakdown := range m.perVariant {
		results.PerVariant[variant] = breakdown
	}
	if completed > 0 {
		results.Accuracy = float64(m.session.Execution.CorrectCount) / float64(completed)
		results.AverageTimeMs = m.totalAnswerMs / int64(completed)
	}

	m.session.Results = results
	m.session.Execution.Status = domain.SessionCompleted
	m.session.Execution.CompletedAt = now
	m.session.UpdatedAt = now
	m.hintVisible = false
	m.micro = ""
}
