package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a practice session.
type SessionStatus string

// Possible session statuses.
const (
	SessionNotStarted SessionStatus = "not_started"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

// IsTerminal reports whether the status permits no further commands.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// Practice session validation errors.
var (
	ErrSessionIDEmpty        = errors.New("practice session ID cannot be empty")
	ErrSessionLearnerIDEmpty = errors.New("practice session learner ID cannot be empty")
	ErrInvalidTargetCount    = errors.New("target count must be a positive integer")
	ErrInvalidSessionCounts  = errors.New("session counts are inconsistent with the task list")
)

// SessionConfiguration selects and sizes the material for one session.
// It is immutable once the session is created.
type SessionConfiguration struct {
	TopicID         uuid.UUID   `json:"topic_id"`
	LearningPathIDs []uuid.UUID `json:"learning_path_ids"`
	TargetCount     int         `json:"target_count"`
	IncludeReview   bool        `json:"include_review"`
}

// Validate checks if the SessionConfiguration has valid data.
func (c *SessionConfiguration) Validate() error {
	if c.TargetCount <= 0 {
		return ErrInvalidTargetCount
	}
	return nil
}

// SessionExecution is the mutable progress of a session. TaskIDs is
// fixed at composition time and never changes length or order.
type SessionExecution struct {
	TaskIDs        []uuid.UUID   `json:"task_ids"`
	CompletedCount int           `json:"completed_count"`
	CorrectCount   int           `json:"correct_count"`
	Status         SessionStatus `json:"status"`
	StartedAt      time.Time     `json:"started_at,omitempty"`
	CompletedAt    time.Time     `json:"completed_at,omitempty"`
}

// VariantBreakdown is the per-variant slice of the session results.
type VariantBreakdown struct {
	Completed int `json:"completed"`
	Correct   int `json:"correct"`
}

// SessionResults is computed once when a session finishes.
type SessionResults struct {
	Accuracy      float64                      `json:"accuracy"`
	AverageTimeMs int64                        `json:"average_time_ms"`
	PerVariant    map[Variant]VariantBreakdown `json:"per_variant"`
}

// PracticeSession is one learner's run through a composed task list.
// Version supports optimistic-concurrency checks on save.
type PracticeSession struct {
	ID        uuid.UUID            `json:"id"`
	LearnerID uuid.UUID            `json:"learner_id"`
	Config    SessionConfiguration `json:"config"`
	Execution SessionExecution     `json:"execution"`
	Results   *SessionResults      `json:"results,omitempty"`
	Version   int                  `json:"version"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// NewPracticeSession creates a not-yet-started session over a composed
// task list. Returns an error if validation fails.
func NewPracticeSession(
	learnerID uuid.UUID,
	config SessionConfiguration,
	taskIDs []uuid.UUID,
) (*PracticeSession, error) {
	now := time.Now().UTC()
	session := &PracticeSession{
		ID:        uuid.New(),
		LearnerID: learnerID,
		Config:    config,
		Execution: SessionExecution{
			TaskIDs: taskIDs,
			Status:  SessionNotStarted,
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the PracticeSession has valid data.
func (s *PracticeSession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSessionIDEmpty
	}

	if s.LearnerID == uuid.Nil {
		return ErrSessionLearnerIDEmpty
	}

	if err := s.Config.Validate(); err != nil {
		return err
	}

	if s.Execution.CompletedCount > len(s.Execution.TaskIDs) ||
		s.Execution.CorrectCount > s.Execution.CompletedCount {
		return ErrInvalidSessionCounts
	}

	return nil
}

// CanonicalAnswer is the display form of the right answer, returned for
// every evaluation regardless of correctness.
type CanonicalAnswer struct {
	Display string `json:"display"`
	Value   any    `json:"value,omitempty"`
}

// EvaluationResult is the ephemeral outcome of grading one submission.
// It is never persisted.
type EvaluationResult struct {
	Correct     bool            `json:"correct"`
	Score       float64         `json:"score"`
	Canonical   CanonicalAnswer `json:"canonical_answer"`
	TimeSpentMs int64           `json:"time_spent_ms"`
}
